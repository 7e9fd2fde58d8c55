// Package wavio reads and writes stereo WAV files as float64 channels.
// MP3 input is decoded as well.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-tapdelay/dsp/core"
)

// Errors returned while decoding or encoding.
var (
	ErrInvalidFile     = errors.New("wavio: not a valid WAV file")
	ErrUnsupportedBits = errors.New("wavio: unsupported bit depth")
	ErrChannelMismatch = errors.New("wavio: left and right differ in length")
)

const pcmFormat = 1

// Stereo is a decoded two-channel recording. Mono files are duplicated into
// both channels.
type Stereo struct {
	SampleRate int
	BitDepth   int
	Left       []float64
	Right      []float64
}

// NewStereo allocates frames of silence at sampleRate.
func NewStereo(sampleRate, frames int) *Stereo {
	return &Stereo{
		SampleRate: sampleRate,
		BitDepth:   16,
		Left:       make([]float64, frames),
		Right:      make([]float64, frames),
	}
}

// Frames returns the number of sample frames.
func (s *Stereo) Frames() int { return len(s.Left) }

// Duration returns the length in seconds.
func (s *Stereo) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(s.Frames()) / float64(s.SampleRate)
}

// Read decodes a PCM WAV stream. Channels beyond the second are dropped.
func Read(r io.ReadSeeker) (*Stereo, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wavio: decode: %w", err)
	}

	bits := int(dec.SampleBitDepth())
	if bits <= 0 || bits > 32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBits, bits)
	}
	nch := buf.Format.NumChannels
	if nch <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFile, nch)
	}

	frames := len(buf.Data) / nch
	s := NewStereo(buf.Format.SampleRate, frames)
	s.BitDepth = bits
	scale := 1 / math.Pow(2, float64(bits-1))
	fb := buf.AsFloatBuffer()
	for i := 0; i < frames; i++ {
		l := fb.Data[i*nch] * scale
		r := l
		if nch > 1 {
			r = fb.Data[i*nch+1] * scale
		}
		s.Left[i] = l
		s.Right[i] = r
	}
	return s, nil
}

// ReadFile decodes the file at path, as MP3 when the extension is .mp3 and
// as WAV otherwise.
func ReadFile(path string) (*Stereo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s *Stereo
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		s, err = ReadMP3(f)
	} else {
		s, err = Read(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Write encodes s as interleaved stereo PCM at s.BitDepth (16 or 24).
// Samples are clipped to [-1, 1].
func Write(w io.WriteSeeker, s *Stereo) error {
	if len(s.Left) != len(s.Right) {
		return ErrChannelMismatch
	}
	bits := s.BitDepth
	if bits == 0 {
		bits = 16
	}
	if bits != 16 && bits != 24 {
		return fmt.Errorf("%w: %d", ErrUnsupportedBits, bits)
	}

	interleaved := make([]float64, 2*s.Frames())
	core.Interleave(interleaved, s.Left, s.Right)

	peak := math.Pow(2, float64(bits-1)) - 1
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  s.SampleRate,
		},
		Data:           make([]int, len(interleaved)),
		SourceBitDepth: bits,
	}
	for i, v := range interleaved {
		buf.Data[i] = int(math.Round(core.Clamp(v, -1, 1) * peak))
	}

	enc := wav.NewEncoder(w, s.SampleRate, bits, 2, pcmFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: finalize: %w", err)
	}
	return nil
}

// WriteFile encodes s into a new file at path.
func WriteFile(path string, s *Stereo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
