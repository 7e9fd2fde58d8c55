// Package host maps a terminal keyboard onto the delay's front panel.
package host

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/algo-tapdelay/dsp/control"
	"github.com/cwbudde/algo-tapdelay/dsp/effects/tapdelay"
)

const (
	// DefaultPulse is how long a key press holds a momentary switch.
	DefaultPulse = 20 * time.Millisecond

	knobStep = 0.05
)

// ErrUnknownControl is returned for control names the panel does not have.
var ErrUnknownControl = errors.New("host: unknown control")

// Action is what a key press did.
type Action int

// Key actions.
const (
	ActionNone Action = iota
	ActionTap
	ActionClear
	ActionModulate
	ActionTime
	ActionFeedback
	ActionMix
	ActionQuit
)

// Panel is the software front panel: two knobs, three switches and the
// time encoder. Key handling may run on any goroutine.
type Panel struct {
	Feedback *control.Knob
	Mix      *control.Knob
	Modulate *control.Switch
	Clear    *control.Switch
	Tap      *control.Switch
	Time     *control.Encoder

	pulse    time.Duration
	mu       sync.Mutex
	clearing bool
}

// NewPanel creates a panel whose knobs are smoothed at updateRate (the
// block rate) and start at the given positions. Momentary keys are held for
// DefaultPulse, or longer when the block rate is too slow to debounce that.
func NewPanel(updateRate, feedback, mix float64) *Panel {
	return &Panel{
		Feedback: control.NewKnob(updateRate, control.WithInitial(feedback)),
		Mix:      control.NewKnob(updateRate, control.WithInitial(mix)),
		Modulate: control.NewSwitch(),
		Clear:    control.NewSwitch(),
		Tap:      control.NewSwitch(),
		Time:     control.NewEncoder(),
		pulse:    max(DefaultPulse, control.MinPress(updateRate)),
	}
}

// Pulse returns how long momentary keys hold their switch.
func (p *Panel) Pulse() time.Duration { return p.pulse }

// SetPulse changes how long momentary keys hold their switch. Values shorter
// than the debouncer needs make presses go unnoticed.
func (p *Panel) SetPulse(d time.Duration) {
	if d > 0 {
		p.pulse = d
	}
}

// Controls returns the panel as engine controls.
func (p *Panel) Controls() tapdelay.Controls {
	return tapdelay.Controls{
		Feedback: p.Feedback,
		Mix:      p.Mix,
		Modulate: p.Modulate,
		Clear:    p.Clear,
		Tap:      p.Tap,
		Time:     p.Time,
	}
}

// HandleKey applies one key press.
//
//	space    tap
//	t        toggle tremolo
//	c        hold / release clear
//	[ ]      delay time down / up one step, { } ten steps
//	- =      feedback down / up
//	, .      mix down / up
//	q ^C     quit
func (p *Panel) HandleKey(b byte) Action {
	switch b {
	case ' ':
		p.press(p.Tap)
		return ActionTap
	case 't', 'T':
		p.press(p.Modulate)
		return ActionModulate
	case 'c', 'C':
		p.mu.Lock()
		p.clearing = !p.clearing
		p.Clear.Set(p.clearing)
		p.mu.Unlock()
		return ActionClear
	case '[':
		p.Time.Turn(-1)
	case ']':
		p.Time.Turn(1)
	case '{':
		p.Time.Turn(-10)
	case '}':
		p.Time.Turn(10)
	case '-', '_':
		p.Feedback.Set(p.Feedback.Position() - knobStep)
		return ActionFeedback
	case '=', '+':
		p.Feedback.Set(p.Feedback.Position() + knobStep)
		return ActionFeedback
	case ',', '<':
		p.Mix.Set(p.Mix.Position() - knobStep)
		return ActionMix
	case '.', '>':
		p.Mix.Set(p.Mix.Position() + knobStep)
		return ActionMix
	case 'q', 'Q', 0x03:
		return ActionQuit
	default:
		return ActionNone
	}
	return ActionTime
}

// Clearing reports whether the clear key is latched.
func (p *Panel) Clearing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clearing
}

// press closes sw and opens it again after the pulse time, long enough for
// the debouncer to see a clean press.
func (p *Panel) press(sw *control.Switch) {
	sw.Set(true)
	time.AfterFunc(p.pulse, func() { sw.Set(false) })
}

// SetSwitch closes or opens the named switch: "tap", "modulate" or "clear".
func (p *Panel) SetSwitch(name string, closed bool) error {
	switch name {
	case "tap":
		p.Tap.Set(closed)
	case "modulate":
		p.Modulate.Set(closed)
	case "clear":
		p.mu.Lock()
		p.clearing = closed
		p.Clear.Set(closed)
		p.mu.Unlock()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}
	return nil
}

// SetKnob moves the named knob: "feedback" or "mix".
func (p *Panel) SetKnob(name string, value float64) error {
	switch name {
	case "feedback":
		p.Feedback.Set(value)
	case "mix":
		p.Mix.Set(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}
	return nil
}

// Turn moves the time encoder by steps detents.
func (p *Panel) Turn(steps int) { p.Time.Turn(steps) }
