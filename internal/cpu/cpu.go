// Package cpu reports the SIMD extensions of the host processor. The block
// kernels pick their paths on their own; this is what the info command
// prints so users can tell which path runs.
package cpu

import (
	"strings"
	"sync"
)

// SIMDLevel is the widest vector extension available.
type SIMDLevel int

// SIMD levels, ordered within each architecture.
const (
	SIMDNone SIMDLevel = iota
	SIMDSSE2
	SIMDAVX
	SIMDAVX2
	SIMDAVX512
	SIMDNEON
)

// String returns the extension name.
func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "none"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX:
		return "AVX"
	case SIMDAVX2:
		return "AVX2"
	case SIMDAVX512:
		return "AVX-512"
	case SIMDNEON:
		return "NEON"
	default:
		return "unknown"
	}
}

// Features describes the host processor.
type Features struct {
	Architecture string
	HasSSE2      bool
	HasAVX       bool
	HasAVX2      bool
	HasAVX512    bool
	HasFMA       bool
	HasNEON      bool
}

var detect = sync.OnceValue(detectFeatures)

// Detect returns the host features. The result is cached.
func Detect() Features {
	return detect()
}

// Level returns the widest SIMD extension in f.
func (f Features) Level() SIMDLevel {
	switch {
	case f.HasNEON:
		return SIMDNEON
	case f.HasAVX512:
		return SIMDAVX512
	case f.HasAVX2:
		return SIMDAVX2
	case f.HasAVX:
		return SIMDAVX
	case f.HasSSE2:
		return SIMDSSE2
	default:
		return SIMDNone
	}
}

// Flags lists the detected extensions by name.
func (f Features) Flags() []string {
	var flags []string
	add := func(ok bool, name string) {
		if ok {
			flags = append(flags, name)
		}
	}
	add(f.HasSSE2, "sse2")
	add(f.HasAVX, "avx")
	add(f.HasAVX2, "avx2")
	add(f.HasAVX512, "avx512")
	add(f.HasFMA, "fma")
	add(f.HasNEON, "neon")
	return flags
}

// String formats f as "arch level [flags]".
func (f Features) String() string {
	return f.Architecture + " " + f.Level().String() + " [" + strings.Join(f.Flags(), " ") + "]"
}
