// Package control provides software stand-ins for the panel hardware of the
// tap delay: knobs, momentary switches and a detented encoder.
//
// Each control has a host side (Set, Press, Turn) that may be called from
// any goroutine, and an audio side (Process, Debounce, RisingEdge, Pressed,
// Increment) that the engine samples once per block from the audio
// callback. The two sides only meet through atomics.
package control
