// Package tapdelay implements a tempo-syncable stereo delay with feedback,
// dry/wet mix, a delay-locked tremolo and a clear path.
//
// The engine is driven by one callback per audio block. At the start of each
// block the control stage samples the panel (two knobs, three momentary
// switches and an encoder), updates the parameter snapshot and derives the
// tremolo rate from the delay target. The sample pipeline then runs once per
// sample of the block using that snapshot:
//
//	smooth delay length -> set both lines -> read wet -> [tremolo]
//	  -> write dry + wet*feedback -> out = wet*mix + dry*(1-mix)
//
// While the clear switch is held the lines are fed silence and audio passes
// through dry. The rising edge of the clear switch flushes both lines at once.
//
// Every input is clamped rather than rejected; processing never fails.
// Construction validates its options and returns errors.
package tapdelay
