package host

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-tapdelay/dsp/effects/tapdelay"
	"github.com/cwbudde/algo-tapdelay/dsp/tempo"
)

const barWidth = 10

// StatusLine renders the indicator lights and the delay time as one
// terminal line.
func StatusLine(st tapdelay.Status, snap tapdelay.Snapshot, sampleRate float64) string {
	lamp := "o"
	if st.Tempo > 0 {
		lamp = "*"
	}
	flags := ""
	if snap.Modulation == tapdelay.ModulationTremolo {
		flags += " trem"
	}
	if snap.Clearing {
		flags += " CLEAR"
	}
	return fmt.Sprintf("[%s] %7.1f ms %6.1f bpm  fb %s  mix %s  out %s%s",
		lamp,
		tempo.SamplesToMs(snap.DelaySamples, sampleRate),
		tempo.SamplesToBPM(snap.DelaySamples, sampleRate),
		bar(st.Feedback), bar(st.Mix), bar(st.Output), flags)
}

func bar(v float64) string {
	n := int(v*barWidth + 0.5)
	n = max(0, min(barWidth, n))
	return strings.Repeat("#", n) + strings.Repeat(".", barWidth-n)
}
