package tapdelay

import (
	"github.com/cwbudde/algo-tapdelay/dsp/core"
)

// Knob is a continuous control in [0, 1], advanced once per block.
type Knob interface {
	Process() float64
}

// Trigger is a debounced momentary switch.
type Trigger interface {
	Debounce()
	RisingEdge() bool
	Pressed() bool
}

// Encoder reports signed detent steps since the previous poll.
type Encoder interface {
	Debounce()
	Increment() int
}

// Controls is the panel read by the control stage. Nil members are skipped
// and the matching parameter keeps its last value.
type Controls struct {
	Feedback Knob
	Mix      Knob
	Modulate Trigger // toggles the tremolo on each press
	Clear    Trigger // flushes on press, feeds silence while held
	Tap      Trigger
	Time     Encoder
}

// UpdateControls runs the control stage: it samples the panel, updates the
// parameter snapshot and re-derives the oscillator rate. It is called once
// at the start of every block by Process and AudioCallback.
func (t *TapDelay) UpdateControls() {
	p := &t.params
	c := &t.controls

	if c.Feedback != nil {
		p.Feedback = core.Clamp(c.Feedback.Process(), 0, 1) * t.cfg.feedbackCeiling
	}
	if c.Mix != nil {
		p.Mix = core.Clamp(c.Mix.Process(), 0, 1)
	}

	if c.Time != nil {
		c.Time.Debounce()
	}
	if c.Tap != nil {
		c.Tap.Debounce()
	}
	if c.Modulate != nil {
		c.Modulate.Debounce()
	}
	if c.Clear != nil {
		c.Clear.Debounce()
	}

	if c.Modulate != nil && c.Modulate.RisingEdge() {
		p.Modulation = p.Modulation.Toggle()
	}

	if c.Clear != nil {
		p.Clearing = c.Clear.Pressed()
		if c.Clear.RisingEdge() {
			t.left.Reset()
			t.right.Reset()
		}
	}

	if c.Tap != nil && c.Tap.RisingEdge() {
		if samples, ok := t.tap.Tap(t.clock.NowMs()); ok {
			p.TargetDelay = samples
		}
	}

	if c.Time != nil {
		if inc := c.Time.Increment(); inc != 0 {
			p.TargetDelay += float64(inc) * t.cfg.encoderStep
		}
	}

	t.setTarget(p.TargetDelay)
}

// setTarget clamps the delay goal and locks the oscillator to it.
func (t *TapDelay) setTarget(samples float64) {
	p := &t.params
	p.TargetDelay = core.Clamp(samples, t.cfg.minDelay, t.MaxTargetDelay())
	t.delay.SetTarget(p.TargetDelay)

	if p.TargetDelay > 0 {
		p.OscFreq = t.sampleRate / p.TargetDelay * t.cfg.modulationRatio
		t.osc.SetFreq(p.OscFreq)
	}
}
