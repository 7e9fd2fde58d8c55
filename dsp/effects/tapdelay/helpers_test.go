package tapdelay

import (
	"testing"

	"github.com/cwbudde/algo-tapdelay/dsp/control"
)

const testRate = 48000

type panel struct {
	feedback *control.Knob
	mix      *control.Knob
	modulate *control.Switch
	clear    *control.Switch
	tap      *control.Switch
	time     *control.Encoder
}

func newPanel(feedback, mix float64) *panel {
	return &panel{
		feedback: control.NewKnob(testRate/4, control.WithSlewMs(0), control.WithInitial(feedback)),
		mix:      control.NewKnob(testRate/4, control.WithSlewMs(0), control.WithInitial(mix)),
		modulate: control.NewSwitch(),
		clear:    control.NewSwitch(),
		tap:      control.NewSwitch(),
		time:     control.NewEncoder(),
	}
}

func (p *panel) controls() Controls {
	return Controls{
		Feedback: p.feedback,
		Mix:      p.mix,
		Modulate: p.modulate,
		Clear:    p.clear,
		Tap:      p.tap,
		Time:     p.time,
	}
}

func newTestDelay(t *testing.T, p *panel, opts ...Option) *TapDelay {
	t.Helper()
	opts = append([]Option{WithControls(p.controls())}, opts...)
	td, err := New(testRate, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return td
}

// press holds sw long enough for a debounced press and releases it again,
// running the control stage only.
func press(td *TapDelay, sw *control.Switch) {
	sw.Set(true)
	for i := 0; i <= control.DebounceDepth; i++ {
		td.UpdateControls()
	}
	sw.Set(false)
	for i := 0; i <= control.DebounceDepth; i++ {
		td.UpdateControls()
	}
}

// run processes in through td in blocks of blockSize and returns the output.
func run(td *TapDelay, inL, inR []float64, blockSize int) (outL, outR []float64) {
	outL = make([]float64, len(inL))
	outR = make([]float64, len(inR))
	for start := 0; start < len(inL); start += blockSize {
		end := start + blockSize
		if end > len(inL) {
			end = len(inL)
		}
		td.Process(outL[start:end], outR[start:end], inL[start:end], inR[start:end])
	}
	return outL, outR
}

func lineEnergy(td *TapDelay) float64 {
	left, right := td.Lines()
	var sum float64
	for i := 0; i < left.Len(); i++ {
		l, r := left.ReadAt(i), right.ReadAt(i)
		sum += l*l + r*r
	}
	return sum
}

type fixedSource Snapshot

func (f *fixedSource) Snapshot() Snapshot { return Snapshot(*f) }
