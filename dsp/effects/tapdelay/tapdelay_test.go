package tapdelay

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-tapdelay/dsp/control"
	"github.com/cwbudde/algo-tapdelay/dsp/osc"
	"github.com/cwbudde/algo-tapdelay/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("expected ErrInvalidSampleRate, got %v", err)
	}
	if _, err := New(testRate, WithMaxDelaySeconds(0.001)); !errors.Is(err, ErrDelayTooShort) {
		t.Fatalf("expected ErrDelayTooShort, got %v", err)
	}

	invalid := []Option{
		WithMaxDelaySeconds(-1),
		WithInitialDelaySeconds(0),
		WithFeedbackCeiling(1),
		WithMinDelaySamples(0),
		WithEncoderStepSamples(0),
		WithSmoothing(0),
		WithModulationRatio(math.NaN()),
		WithTapWindowMs(0),
		WithInitialFeedback(2),
		WithInitialMix(-0.1),
		WithModulation(Modulation(7)),
		WithBlockSize(0),
		WithClock(nil),
	}
	for i, opt := range invalid {
		if _, err := New(testRate, opt); err == nil {
			t.Fatalf("option %d: expected error", i)
		}
	}

	if _, err := New(testRate, WithWaveform(osc.Waveform(42))); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
}

func TestInitialState(t *testing.T) {
	td, err := New(testRate)
	if err != nil {
		t.Fatal(err)
	}

	if td.Capacity() != 96000 {
		t.Fatalf("capacity = %d, want 96000", td.Capacity())
	}
	if td.MaxTargetDelay() != 95996 {
		t.Fatalf("max target = %v, want 95996", td.MaxTargetDelay())
	}

	p := td.Params()
	if p.TargetDelay != 24000 || td.CurrentDelay() != 24000 {
		t.Fatalf("initial delay target=%v current=%v, want 24000", p.TargetDelay, td.CurrentDelay())
	}
	if p.OscFreq != 8 {
		t.Fatalf("initial osc freq = %v, want 8", p.OscFreq)
	}
	if p.Modulation != ModulationOff || p.Clearing {
		t.Fatalf("unexpected modes: %+v", p)
	}
}

func TestFeedbackAndMixFromKnobs(t *testing.T) {
	pn := newPanel(1, 0.25)
	td := newTestDelay(t, pn)
	td.UpdateControls()

	p := td.Params()
	if p.Feedback != 0.98 {
		t.Fatalf("feedback = %v, want 0.98", p.Feedback)
	}
	if p.Mix != 0.25 {
		t.Fatalf("mix = %v, want 0.25", p.Mix)
	}
}

func TestTapTempo(t *testing.T) {
	tests := []struct {
		name  string
		gapMs uint32
		want  float64
	}{
		{name: "500ms", gapMs: 500, want: 24000},
		{name: "250ms", gapMs: 250, want: 12000},
		{name: "2500ms ignored", gapMs: 2500, want: 4800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &ManualClock{}
			pn := newPanel(0.5, 0.5)
			td := newTestDelay(t, pn, WithClock(clock), WithInitialDelaySeconds(0.1))

			clock.Set(10000)
			press(td, pn.tap)
			if got := td.Params().TargetDelay; got != 4800 {
				t.Fatalf("first tap changed target to %v", got)
			}

			clock.Advance(tt.gapMs)
			press(td, pn.tap)
			if got := td.Params().TargetDelay; got != tt.want {
				t.Fatalf("target = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncoderClampsTarget(t *testing.T) {
	pn := newPanel(0.5, 0.5)
	td := newTestDelay(t, pn)

	pn.time.Turn(-1000)
	td.UpdateControls()
	if got := td.Params().TargetDelay; got != 100 {
		t.Fatalf("target after large decrement = %v, want 100", got)
	}

	pn.time.Turn(3)
	td.UpdateControls()
	if got := td.Params().TargetDelay; got != 1600 {
		t.Fatalf("target after 3 steps = %v, want 1600", got)
	}

	pn.time.Turn(1000)
	td.UpdateControls()
	if got := td.Params().TargetDelay; got != 95996 {
		t.Fatalf("target after large increment = %v, want 95996", got)
	}
}

func TestOscillatorLockedToDelay(t *testing.T) {
	pn := newPanel(0.5, 0.5)
	td := newTestDelay(t, pn)

	for _, steps := range []int{-100, 1, 7, 40, 150, 500} {
		pn.time.Turn(steps)
		td.UpdateControls()

		p := td.Params()
		want := testRate / p.TargetDelay * 4.0
		if p.OscFreq != want {
			t.Fatalf("target %v: osc freq %v, want %v", p.TargetDelay, p.OscFreq, want)
		}
		if td.osc.Freq() != want {
			t.Fatalf("target %v: oscillator runs at %v, want %v", p.TargetDelay, td.osc.Freq(), want)
		}
	}
}

func TestModulateToggles(t *testing.T) {
	pn := newPanel(0.5, 0.5)
	td := newTestDelay(t, pn)

	press(td, pn.modulate)
	if got := td.Params().Modulation; got != ModulationTremolo {
		t.Fatalf("after first press: %v, want tremolo", got)
	}
	press(td, pn.modulate)
	if got := td.Params().Modulation; got != ModulationOff {
		t.Fatalf("after second press: %v, want off", got)
	}
}

func TestEchoArrivesAfterDelay(t *testing.T) {
	tests := []struct {
		seconds float64
		echo    int
	}{
		{0.0625, 3000},
		{0.125, 6000},
		{0.5, 24000},
	}
	for _, tt := range tests {
		pn := newPanel(0, 1)
		td := newTestDelay(t, pn, WithInitialDelaySeconds(tt.seconds))

		in := testutil.Impulse(tt.echo+2000, 0)
		outL, outR := run(td, in, in, 4)

		for i, v := range outL {
			want := 0.0
			if i == tt.echo {
				want = 1
			}
			if math.Abs(v-want) > 1e-9 || math.Abs(outR[i]-want) > 1e-9 {
				t.Fatalf("delay %vs sample %d: got (%v, %v), want %v", tt.seconds, i, v, outR[i], want)
			}
		}
	}
}

func TestFeedbackRepeats(t *testing.T) {
	pn := newPanel(0.5, 1)
	td := newTestDelay(t, pn, WithInitialDelaySeconds(0.0625))

	in := testutil.Impulse(12000, 0)
	outL, _ := run(td, in, in, 4)

	for k, idx := range []int{3000, 6000, 9000} {
		want := math.Pow(0.49, float64(k))
		if math.Abs(outL[idx]-want) > 1e-9 {
			t.Fatalf("repeat %d at %d: got %v want %v", k, idx, outL[idx], want)
		}
	}
}

func TestFeedbackLoopBounded(t *testing.T) {
	for _, mod := range []Modulation{ModulationOff, ModulationTremolo} {
		t.Run(mod.String(), func(t *testing.T) {
			pn := newPanel(1, 1)
			td := newTestDelay(t, pn, WithMaxDelaySeconds(0.05), WithModulation(mod))
			pn.time.Turn(-100)

			const amp = 1.0
			bound := amp / (1 - 0.98)
			in := testutil.DC(amp, 2048)
			out := make([]float64, len(in))
			outR := make([]float64, len(in))
			for iter := 0; iter < 100; iter++ {
				td.Process(out, outR, in, in)
				testutil.RequireFinite(t, out)
				for i, v := range out {
					if math.Abs(v) > bound+1e-9 {
						t.Fatalf("iteration %d sample %d: |%v| exceeds %v", iter, i, v, bound)
					}
				}
			}

			left, _ := td.Lines()
			for i := 0; i < left.Len(); i++ {
				if v := left.ReadAt(i); math.Abs(v) > bound+amp+1e-9 {
					t.Fatalf("line sample %d = %v exceeds bound", i, v)
				}
			}
		})
	}
}

func TestClearHeldPassesDryAndFlushes(t *testing.T) {
	pn := newPanel(1, 0.7)
	td := newTestDelay(t, pn, WithMaxDelaySeconds(0.05), WithModulation(ModulationTremolo))

	noise := testutil.DeterministicNoise(7, 0.8, 4800)
	run(td, noise, noise, 4)
	if lineEnergy(td) == 0 {
		t.Fatal("expected material in the lines before clearing")
	}

	pn.clear.Set(true)
	sawClearing := false
	prevEnergy := math.Inf(1)
	in := testutil.DeterministicSine(440, testRate, 0.5, 4)
	out := make([]float64, 4)
	outR := make([]float64, 4)
	for block := 0; block < 1200; block++ {
		td.Process(out, outR, in, in)
		if !td.Params().Clearing {
			continue
		}
		sawClearing = true
		for i := range in {
			if out[i] != in[i] || outR[i] != in[i] {
				t.Fatalf("block %d sample %d: out (%v, %v) != in %v", block, i, out[i], outR[i], in[i])
			}
		}
		e := lineEnergy(td)
		if e > prevEnergy {
			t.Fatalf("block %d: line energy grew from %v to %v", block, prevEnergy, e)
		}
		prevEnergy = e
	}
	if !sawClearing {
		t.Fatal("clear switch never registered as held")
	}
	if prevEnergy != 0 {
		t.Fatalf("line energy after a full buffer of silence = %v, want 0", prevEnergy)
	}

	pn.clear.Set(false)
	for i := 0; i <= control.DebounceDepth; i++ {
		td.UpdateControls()
	}
	if td.Params().Clearing {
		t.Fatal("clearing still active after release")
	}
}

func TestClearRisingEdgeFlushesImmediately(t *testing.T) {
	pn := newPanel(1, 1)
	td := newTestDelay(t, pn, WithMaxDelaySeconds(0.05))

	noise := testutil.DeterministicNoise(3, 0.5, 2400)
	run(td, noise, noise, 4)

	pn.clear.Set(true)
	for i := 0; i < control.DebounceDepth; i++ {
		td.UpdateControls()
	}
	if !pn.clear.RisingEdge() {
		t.Fatal("expected rising edge on this block")
	}
	if e := lineEnergy(td); e != 0 {
		t.Fatalf("line energy after rising edge = %v, want 0", e)
	}
}

func TestTremoloScalesWet(t *testing.T) {
	pn := newPanel(0, 1)
	td := newTestDelay(t, pn, WithInitialDelaySeconds(0.01), WithModulation(ModulationTremolo))

	in := testutil.DC(1, 20000)
	outL, outR := run(td, in, in, 4)

	minV, maxV := math.Inf(1), math.Inf(-1)
	for i := 1000; i < len(outL); i++ {
		if outL[i] != outR[i] {
			t.Fatalf("channels drifted at %d: %v vs %v", i, outL[i], outR[i])
		}
		minV = math.Min(minV, outL[i])
		maxV = math.Max(maxV, outL[i])
	}
	if minV < 0 || maxV > 1 {
		t.Fatalf("tremolo range [%v, %v] outside [0, 1]", minV, maxV)
	}
	if maxV-minV < 0.9 {
		t.Fatalf("tremolo depth %v too shallow", maxV-minV)
	}
}

func TestDelayTimeGlides(t *testing.T) {
	pn := newPanel(0.5, 0.5)
	td := newTestDelay(t, pn)

	pn.time.Turn(10) // 24000 -> 29000
	in := make([]float64, 4)
	prev := td.CurrentDelay()
	for block := 0; block < 20000; block++ {
		td.Process(in, in, in, in)
		cur := td.CurrentDelay()
		if cur < prev {
			t.Fatalf("block %d: delay moved backwards %v -> %v", block, prev, cur)
		}
		if cur-prev > 5000*0.0002*4+1e-9 {
			t.Fatalf("block %d: delay jumped by %v", block, cur-prev)
		}
		prev = cur
	}
	if math.Abs(prev-29000) > 1 {
		t.Fatalf("delay settled at %v, want 29000", prev)
	}
}

func TestProcessMatchesProcessSample(t *testing.T) {
	pa := newPanel(0.8, 0.4)
	pb := newPanel(0.8, 0.4)
	a := newTestDelay(t, pa, WithMaxDelaySeconds(0.1), WithModulation(ModulationTremolo))
	b := newTestDelay(t, pb, WithMaxDelaySeconds(0.1), WithModulation(ModulationTremolo))
	pa.time.Turn(-40)
	pb.time.Turn(-40)

	inL := testutil.DeterministicNoise(11, 0.5, 6000)
	inR := testutil.DeterministicSine(220, testRate, 0.5, 6000)
	gotL, gotR := run(a, inL, inR, 16)

	wantL := make([]float64, len(inL))
	wantR := make([]float64, len(inR))
	for start := 0; start < len(inL); start += 16 {
		b.UpdateControls()
		for i := start; i < start+16; i++ {
			wantL[i], wantR[i] = b.ProcessSample(inL[i], inR[i])
		}
	}

	testutil.RequireSliceNearlyEqual(t, gotL, wantL, 1e-12)
	testutil.RequireSliceNearlyEqual(t, gotR, wantR, 1e-12)
}

func TestProcessInPlace(t *testing.T) {
	pa := newPanel(0.6, 0.5)
	pb := newPanel(0.6, 0.5)
	a := newTestDelay(t, pa, WithMaxDelaySeconds(0.1))
	b := newTestDelay(t, pb, WithMaxDelaySeconds(0.1))
	pa.time.Turn(-45)
	pb.time.Turn(-45)

	in := testutil.DeterministicNoise(5, 0.5, 4096)
	want, _ := run(a, in, in, 64)

	bufL := append([]float64(nil), in...)
	bufR := append([]float64(nil), in...)
	for start := 0; start < len(bufL); start += 64 {
		b.Process(bufL[start:start+64], bufR[start:start+64], bufL[start:start+64], bufR[start:start+64])
	}
	testutil.RequireSliceNearlyEqual(t, bufL, want, 1e-12)
}

func TestAudioCallbackMonoInput(t *testing.T) {
	pn := newPanel(0.3, 0.5)
	td := newTestDelay(t, pn)

	in := [][]float64{testutil.DeterministicSine(1000, testRate, 0.5, 4)}
	out := [][]float64{make([]float64, 4), make([]float64, 4)}
	td.AudioCallback(in, out, 4)

	for i := range out[0] {
		if out[0][i] != out[1][i] {
			t.Fatalf("sample %d: mono input produced different channels", i)
		}
	}
	// Empty lines: only the dry part reaches the output.
	for i, v := range out[0] {
		if want := in[0][i] * 0.5; math.Abs(v-want) > 1e-12 {
			t.Fatalf("sample %d: got %v want %v", i, v, want)
		}
	}

	td.AudioCallback(nil, out, 4)
	td.AudioCallback(in, out[:1], 4)
}

func TestResetRestoresState(t *testing.T) {
	pn := newPanel(0.7, 0.5)
	td := newTestDelay(t, pn, WithMaxDelaySeconds(0.1))
	pn.time.Turn(-42)

	in := testutil.Impulse(3000, 0)
	out1, _ := run(td, in, in, 4)

	td.Reset()
	pn.time.Turn(-42)
	out2, _ := run(td, in, in, 4)

	testutil.RequireSliceNearlyEqual(t, out2, out1, 1e-12)
}

func TestWithoutControlsKeepsInitialParams(t *testing.T) {
	td, err := New(testRate, WithInitialFeedback(1), WithInitialMix(0.3))
	if err != nil {
		t.Fatal(err)
	}
	td.UpdateControls()
	p := td.Params()
	if p.Feedback != 0.98 || p.Mix != 0.3 {
		t.Fatalf("params = %+v", p)
	}
}

func BenchmarkProcess(b *testing.B) {
	td, _ := New(testRate, WithBlockSize(64), WithModulation(ModulationTremolo))
	in := testutil.DeterministicSine(220, testRate, 0.5, 64)
	outL := make([]float64, 64)
	outR := make([]float64, 64)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		td.Process(outL, outR, in, in)
	}
}
