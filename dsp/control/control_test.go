package control

import (
	"math"
	"sync"
	"testing"
	"time"
)

func TestKnobConvergesAndClamps(t *testing.T) {
	k := NewKnob(12000, WithInitial(0.2))
	if got := k.Process(); math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("initial value = %v, want 0.2", got)
	}

	k.Set(3)
	if k.Position() != 1 {
		t.Fatalf("Position = %v, want 1 (clamped)", k.Position())
	}

	prev := k.Value()
	for i := 0; i < 2000; i++ {
		v := k.Process()
		if v < prev {
			t.Fatalf("knob moved away from target at block %d", i)
		}
		prev = v
	}
	if math.Abs(prev-1) > 1e-6 {
		t.Fatalf("knob settled at %v, want 1", prev)
	}
}

func TestKnobWithoutSlewSnaps(t *testing.T) {
	k := NewKnob(12000, WithSlewMs(0))
	k.Set(0.7)
	if got := k.Process(); got != 0.7 {
		t.Fatalf("Process = %v, want 0.7", got)
	}
}

func TestSwitchEdges(t *testing.T) {
	s := NewSwitch()
	s.Set(true)

	rising := 0
	for i := 0; i < 20; i++ {
		s.Debounce()
		if s.RisingEdge() {
			rising++
			if i != DebounceDepth-1 {
				t.Fatalf("rising edge at call %d, want %d", i, DebounceDepth-1)
			}
		}
	}
	if rising != 1 {
		t.Fatalf("rising edges = %d, want 1", rising)
	}
	if !s.Pressed() {
		t.Fatal("expected Pressed after holding")
	}

	s.Set(false)
	s.Debounce()
	if s.Pressed() {
		t.Fatal("released switch still pressed")
	}
	for i := 1; i < DebounceDepth; i++ {
		if s.FallingEdge() {
			t.Fatalf("falling edge too early at call %d", i)
		}
		s.Debounce()
	}
	if !s.FallingEdge() {
		t.Fatal("expected falling edge after a stable release")
	}
}

func TestSwitchIgnoresBounce(t *testing.T) {
	s := NewSwitch()
	for i := 0; i < 32; i++ {
		s.Set(i%2 == 0)
		s.Debounce()
		if s.RisingEdge() || s.Pressed() {
			t.Fatalf("bouncing contact registered at %d", i)
		}
	}
}

func TestMinPress(t *testing.T) {
	tests := []struct {
		rate float64
		want time.Duration
	}{
		{12000, time.Millisecond},
		{48000.0 / 64, 11 * time.Millisecond},
		{48000.0 / 256, 43 * time.Millisecond},
		{0, 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := MinPress(tt.rate); got != tt.want {
			t.Errorf("MinPress(%v) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestMinPressRegisters(t *testing.T) {
	// A press lasting MinPress at the callback rate closes the switch for
	// enough Debounce calls to report Pressed.
	for _, block := range []int{4, 64, 256, 1024} {
		rate := 48000 / float64(block)
		calls := int(MinPress(rate).Seconds() * rate)

		s := NewSwitch()
		s.Set(true)
		rose := false
		for range calls {
			s.Debounce()
			rose = rose || s.RisingEdge()
		}
		if !rose || !s.Pressed() {
			t.Fatalf("block %d: %d calls, rising=%v pressed=%v", block, calls, rose, s.Pressed())
		}
	}
}

func TestEncoderLatchesTurns(t *testing.T) {
	e := NewEncoder()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Turn(1)
		}()
	}
	wg.Wait()
	e.Turn(-3)

	e.Debounce()
	if got := e.Increment(); got != 5 {
		t.Fatalf("Increment = %d, want 5", got)
	}
	e.Debounce()
	if got := e.Increment(); got != 0 {
		t.Fatalf("Increment after drain = %d, want 0", got)
	}
}
