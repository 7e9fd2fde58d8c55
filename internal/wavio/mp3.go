package wavio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// ReadMP3 decodes an MP3 stream. The decoder always yields interleaved
// 16-bit little-endian stereo.
func ReadMP3(r io.Reader) (*Stereo, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("wavio: decode mp3: %w", err)
	}

	const bytesPerFrame = 4
	frames := len(pcm) / bytesPerFrame
	if frames == 0 {
		return nil, fmt.Errorf("%w: no mp3 frames", ErrInvalidFile)
	}
	s := NewStereo(dec.SampleRate(), frames)
	for i := range frames {
		off := i * bytesPerFrame
		s.Left[i] = float64(int16(binary.LittleEndian.Uint16(pcm[off:]))) / 32768
		s.Right[i] = float64(int16(binary.LittleEndian.Uint16(pcm[off+2:]))) / 32768
	}
	return s, nil
}
