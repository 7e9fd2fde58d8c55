package tapdelay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-tapdelay/internal/testutil"
)

func TestIndicatorBlinksOncePerRepeat(t *testing.T) {
	src := &fixedSource{DelaySamples: 24000, Feedback: 0.49, Mix: 0.5}
	ind := NewIndicator(src, testRate)

	steps := []struct {
		now  uint32
		want float64
	}{
		{now: 100, want: 0},
		{now: 501, want: 1},
		{now: 540, want: 1},
		{now: 552, want: 0},
		{now: 900, want: 0},
		{now: 1002, want: 1},
		{now: 1060, want: 0},
	}
	for _, s := range steps {
		if got := ind.Update(s.now).Tempo; got != s.want {
			t.Fatalf("Update(%d).Tempo = %v, want %v", s.now, got, s.want)
		}
	}
}

func TestIndicatorFollowsDelayChange(t *testing.T) {
	src := &fixedSource{DelaySamples: 4800}
	ind := NewIndicator(src, testRate)

	if ind.Update(101).Tempo != 1 {
		t.Fatal("expected blink after 100 ms")
	}
	src.DelaySamples = 48000
	if ind.Update(300).Tempo != 0 {
		t.Fatal("blink should be over")
	}
	if ind.Update(1000).Tempo != 0 {
		t.Fatal("no blink expected before a full second")
	}
	if ind.Update(1102).Tempo != 1 {
		t.Fatal("expected blink one second after the previous one")
	}
}

func TestIndicatorLevelsClamped(t *testing.T) {
	src := &fixedSource{DelaySamples: 0, Feedback: 0.98, Mix: -1, Level: 3}
	st := NewIndicator(src, testRate).Update(10)

	if st.Tempo != 0 {
		t.Fatal("zero delay must not blink")
	}
	if st.Feedback != 0.98 || st.Mix != 0 || st.Output != 1 {
		t.Fatalf("status = %+v", st)
	}
}

func TestSnapshotPublishedPerBlock(t *testing.T) {
	pn := newPanel(0.5, 0.25)
	td := newTestDelay(t, pn, WithModulation(ModulationTremolo))

	s := td.Snapshot()
	if s.TargetDelay != 24000 || s.DelaySamples != 24000 || s.Level != 0 {
		t.Fatalf("initial snapshot = %+v", s)
	}

	in := testutil.DC(0.5, 64)
	out := make([]float64, 64)
	outR := make([]float64, 64)
	td.Process(out, outR, in, in)

	s = td.Snapshot()
	if s.Mix != 0.25 || s.Feedback != 0.49 || s.Modulation != ModulationTremolo {
		t.Fatalf("snapshot = %+v", s)
	}
	// Lines are still empty: output is 0.5 * 0.75 on both channels.
	if math.Abs(s.Level-0.375) > 1e-12 {
		t.Fatalf("level = %v, want 0.375", s.Level)
	}
}

func TestSnapshotConcurrentRead(t *testing.T) {
	pn := newPanel(0.9, 0.5)
	td := newTestDelay(t, pn, WithMaxDelaySeconds(0.1))
	ind := NewIndicator(td, testRate)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ms := uint32(0); ms < 2000; ms++ {
			st := ind.Update(ms)
			if st.Output < 0 || st.Output > 1 {
				t.Errorf("output level %v out of range", st.Output)
				return
			}
		}
	}()

	in := testutil.DeterministicNoise(1, 0.5, 48)
	out := make([]float64, 48)
	outR := make([]float64, 48)
	for i := 0; i < 2000; i++ {
		td.Process(out, outR, in, in)
	}
	<-done
}
