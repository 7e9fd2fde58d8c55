// Package automation schedules panel gestures from Lua scripts so offline
// renders can tap, turn and press like a player would.
//
// A script calls these globals, with times in seconds:
//
//	tap(t)                    press the tap switch
//	press(name, t)            press "tap", "modulate" or "clear"
//	hold(name, from, to)      keep a switch closed over an interval
//	knob(name, t, value)      move "feedback" or "mix" to value in [0, 1]
//	turn(t, steps)            turn the time encoder
//
// The globals samplerate and duration are set before the script runs.
package automation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Errors returned while loading or applying a script.
var (
	ErrUnknownControl = errors.New("automation: unknown control")
	ErrBadTime        = errors.New("automation: time must be >= 0")
)

// DefaultPulse is how long press and tap keep a switch closed.
const DefaultPulse = 20 * time.Millisecond

// Kind is the type of an Event.
type Kind int

// Event kinds.
const (
	KindSwitch Kind = iota
	KindKnob
	KindTurn
)

// Event is one scheduled gesture.
type Event struct {
	AtMs  uint32
	Kind  Kind
	Name  string
	Value float64 // switch: 1 closed / 0 open, knob: position, turn: steps
}

// Panel receives gestures.
type Panel interface {
	SetSwitch(name string, closed bool) error
	SetKnob(name string, value float64) error
	Turn(steps int)
}

// Timeline is a time-ordered list of events.
type Timeline struct {
	events []Event
	next   int
}

// Options configure script loading.
type Options struct {
	SampleRate float64
	Duration   time.Duration
	Pulse      time.Duration
}

// Load runs a Lua script and returns the gestures it scheduled.
func Load(src string, opts Options) (*Timeline, error) {
	return load(func(L *lua.LState) error { return L.DoString(src) }, opts)
}

// LoadFile runs the Lua script at path.
func LoadFile(path string, opts Options) (*Timeline, error) {
	return load(func(L *lua.LState) error { return L.DoFile(path) }, opts)
}

func load(run func(*lua.LState) error, opts Options) (*Timeline, error) {
	if opts.Pulse <= 0 {
		opts.Pulse = DefaultPulse
	}
	b := &builder{pulseMs: uint32(opts.Pulse / time.Millisecond)}

	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("samplerate", lua.LNumber(opts.SampleRate))
	L.SetGlobal("duration", lua.LNumber(opts.Duration.Seconds()))
	L.SetGlobal("tap", L.NewFunction(b.luaTap))
	L.SetGlobal("press", L.NewFunction(b.luaPress))
	L.SetGlobal("hold", L.NewFunction(b.luaHold))
	L.SetGlobal("knob", L.NewFunction(b.luaKnob))
	L.SetGlobal("turn", L.NewFunction(b.luaTurn))

	if err := run(L); err != nil {
		return nil, fmt.Errorf("automation: script: %w", err)
	}
	return NewTimeline(b.events), nil
}

// NewTimeline orders events by time. Events at the same time keep their
// script order.
func NewTimeline(events []Event) *Timeline {
	sorted := append([]Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AtMs < sorted[j].AtMs })
	return &Timeline{events: sorted}
}

// Events returns all events in order.
func (t *Timeline) Events() []Event { return t.events }

// Len returns the number of events.
func (t *Timeline) Len() int { return len(t.events) }

// Advance applies every pending event due at or before nowMs to p.
func (t *Timeline) Advance(nowMs uint32, p Panel) error {
	for t.next < len(t.events) && t.events[t.next].AtMs <= nowMs {
		ev := t.events[t.next]
		t.next++

		var err error
		switch ev.Kind {
		case KindSwitch:
			err = p.SetSwitch(ev.Name, ev.Value != 0)
		case KindKnob:
			err = p.SetKnob(ev.Name, ev.Value)
		case KindTurn:
			p.Turn(int(ev.Value))
		}
		if err != nil {
			return fmt.Errorf("automation: event at %d ms: %w", ev.AtMs, err)
		}
	}
	return nil
}

// Done reports whether every event has been applied.
func (t *Timeline) Done() bool { return t.next >= len(t.events) }

// Rewind makes every event pending again.
func (t *Timeline) Rewind() { t.next = 0 }

type builder struct {
	events  []Event
	pulseMs uint32
}

func checkTime(L *lua.LState, n int) uint32 {
	sec := float64(L.CheckNumber(n))
	if sec < 0 || math.IsNaN(sec) || math.IsInf(sec, 0) {
		L.ArgError(n, ErrBadTime.Error())
	}
	return uint32(math.Round(sec * 1000))
}

func checkSwitch(L *lua.LState, n int) string {
	name := L.CheckString(n)
	switch name {
	case "tap", "modulate", "clear":
	default:
		L.ArgError(n, fmt.Sprintf("%v %q", ErrUnknownControl, name))
	}
	return name
}

func (b *builder) pulse(name string, at uint32) {
	b.events = append(b.events,
		Event{AtMs: at, Kind: KindSwitch, Name: name, Value: 1},
		Event{AtMs: at + b.pulseMs, Kind: KindSwitch, Name: name, Value: 0},
	)
}

func (b *builder) luaTap(L *lua.LState) int {
	b.pulse("tap", checkTime(L, 1))
	return 0
}

func (b *builder) luaPress(L *lua.LState) int {
	name := checkSwitch(L, 1)
	b.pulse(name, checkTime(L, 2))
	return 0
}

func (b *builder) luaHold(L *lua.LState) int {
	name := checkSwitch(L, 1)
	from, to := checkTime(L, 2), checkTime(L, 3)
	if to <= from {
		L.ArgError(3, "hold must end after it starts")
	}
	b.events = append(b.events,
		Event{AtMs: from, Kind: KindSwitch, Name: name, Value: 1},
		Event{AtMs: to, Kind: KindSwitch, Name: name, Value: 0},
	)
	return 0
}

func (b *builder) luaKnob(L *lua.LState) int {
	name := L.CheckString(1)
	if name != "feedback" && name != "mix" {
		L.ArgError(1, fmt.Sprintf("%v %q", ErrUnknownControl, name))
	}
	at := checkTime(L, 2)
	v := float64(L.CheckNumber(3))
	b.events = append(b.events, Event{AtMs: at, Kind: KindKnob, Name: name, Value: v})
	return 0
}

func (b *builder) luaTurn(L *lua.LState) int {
	at := checkTime(L, 1)
	steps := L.CheckInt(2)
	b.events = append(b.events, Event{AtMs: at, Kind: KindTurn, Name: "time", Value: float64(steps)})
	return 0
}
