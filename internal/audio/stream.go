// Package audio connects the delay engine to a real-time output device.
//
// Stream turns block callbacks into the interleaved float32 little-endian
// byte stream an output device pulls from. Player owns the device; the
// headless build tag swaps it for a paced reader without sound output.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

const (
	// Channels is the number of output channels.
	Channels = 2
	// BytesPerFrame is the size of one interleaved float32 stereo frame.
	BytesPerFrame = Channels * 4
)

// ErrInvalidBlockSize is returned for block sizes below one frame.
var ErrInvalidBlockSize = errors.New("audio: block size must be > 0")

// Callback processes one block of audio.
type Callback interface {
	AudioCallback(in, out [][]float64, size int)
}

// Source provides stereo input frames.
type Source interface {
	Fill(left, right []float64)
}

// Silence is a Source of zeros.
type Silence struct{}

// Fill zeroes both channels.
func (Silence) Fill(left, right []float64) {
	for i := range left {
		left[i] = 0
	}
	for i := range right {
		right[i] = 0
	}
}

// Stream renders blocks on demand. Read is called from the device goroutine
// only and must not be shared.
type Stream struct {
	cb    Callback
	src   Source
	block int

	in     [][]float64
	out    [][]float64
	pend   []byte
	offset int

	frames atomic.Uint64
}

// NewStream creates a stream that calls cb every blockSize frames with
// input taken from src. A nil src reads silence.
func NewStream(cb Callback, src Source, blockSize int) (*Stream, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	if src == nil {
		src = Silence{}
	}
	return &Stream{
		cb:    cb,
		src:   src,
		block: blockSize,
		in:    [][]float64{make([]float64, blockSize), make([]float64, blockSize)},
		out:   [][]float64{make([]float64, blockSize), make([]float64, blockSize)},
		pend:  make([]byte, blockSize*BytesPerFrame),
		// Start empty so the first Read renders.
		offset: blockSize * BytesPerFrame,
	}, nil
}

// Read fills p with interleaved float32 LE stereo frames. It never fails.
func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if s.offset == len(s.pend) {
			s.render()
		}
		c := copy(p[n:], s.pend[s.offset:])
		s.offset += c
		n += c
	}
	return n, nil
}

func (s *Stream) render() {
	s.src.Fill(s.in[0], s.in[1])
	s.cb.AudioCallback(s.in, s.out, s.block)

	left, right := s.out[0], s.out[1]
	for i := 0; i < s.block; i++ {
		binary.LittleEndian.PutUint32(s.pend[i*BytesPerFrame:], math.Float32bits(float32(left[i])))
		binary.LittleEndian.PutUint32(s.pend[i*BytesPerFrame+4:], math.Float32bits(float32(right[i])))
	}
	s.offset = 0
	s.frames.Add(uint64(s.block))
}

// Frames returns the number of frames rendered so far. It may be called
// from any goroutine.
func (s *Stream) Frames() uint64 { return s.frames.Load() }

// BlockSize returns the callback block size in frames.
func (s *Stream) BlockSize() int { return s.block }
