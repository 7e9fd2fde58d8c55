// Package resample converts recordings between integer sample rates with a
// Kaiser-windowed sinc polyphase filter.
//
// It is used to bring input files to the engine rate before processing:
//
//	c, err := resample.New(44100, 48000)
//	out := c.Convert(in)
//
// The filter is linear phase and its delay is compensated, so sample k of
// the input lines up with time k/from in the output.
package resample
