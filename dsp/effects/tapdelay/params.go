package tapdelay

// Modulation selects what happens to the wet signal before it is mixed.
type Modulation int

const (
	// ModulationOff leaves the wet signal untouched.
	ModulationOff Modulation = iota
	// ModulationTremolo scales the wet signal with the unipolar oscillator.
	ModulationTremolo
)

// Toggle switches between off and tremolo.
func (m Modulation) Toggle() Modulation {
	if m == ModulationTremolo {
		return ModulationOff
	}
	return ModulationTremolo
}

// String returns the mode name.
func (m Modulation) String() string {
	switch m {
	case ModulationOff:
		return "off"
	case ModulationTremolo:
		return "tremolo"
	default:
		return "unknown"
	}
}

// Params is the parameter snapshot written by the control stage once per
// block and read by the sample pipeline for every sample of that block.
type Params struct {
	Feedback    float64 // wet gain fed back into the lines, below 1
	Mix         float64 // 0 = dry, 1 = wet
	TargetDelay float64 // delay length goal in samples
	OscFreq     float64 // tremolo rate in Hz, derived from TargetDelay
	Modulation  Modulation
	Clearing    bool // clear switch held
}

// Unipolar maps a bipolar oscillator value in [-1, 1] to [0, 1].
func Unipolar(x float64) float64 {
	return (x + 1) * 0.5
}
