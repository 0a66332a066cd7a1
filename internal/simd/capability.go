package simd

import (
	"os"
	"runtime"
	"strings"
)

// ISA represents a SIMD instruction set architecture.
type ISA uint8

const (
	// Generic represents pure Go implementation (no SIMD).
	Generic ISA = iota
	// NEON represents ARM64 NEON (128-bit SIMD, ASIMD).
	NEON
	// AVX2 represents x86-64 AVX2 (256-bit SIMD with FMA).
	AVX2
	// AVX512 represents x86-64 AVX-512 (512-bit SIMD).
	AVX512
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case NEON:
		return "neon"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "neon":
		return NEON, true
	case "avx2":
		return AVX2, true
	case "avx512":
		return AVX512, true
	default:
		return Generic, false
	}
}

// EnvOverride names the environment variable that forces an ISA.
const EnvOverride = "VECKNN_SIMD"

// Package-level state, initialized once by the platform init.
var (
	activeISA   ISA
	hasOverride bool

	hasASIMD    bool // ARM64 NEON
	hasAVX2     bool // x86-64 AVX2 + FMA
	hasAVX512F  bool // x86-64 AVX-512 Foundation
	hasAVX512BW bool // x86-64 AVX-512 Byte/Word
)

// initCapabilities is called from platform-specific init functions
// after CPU features are detected.
func initCapabilities() {
	activeISA = selectBestISA()

	if override := os.Getenv(EnvOverride); override != "" {
		if isa, ok := ParseISA(override); ok && isISAAvailable(isa) {
			hasOverride = true
			activeISA = isa
		}
	}

	bindKernels(activeISA)
}

func isISAAvailable(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return hasASIMD
	case AVX2:
		return hasAVX2
	case AVX512:
		return hasAVX512F && hasAVX512BW
	default:
		return false
	}
}

func selectBestISA() ISA {
	switch runtime.GOARCH {
	case "arm64":
		if hasASIMD {
			return NEON
		}
	case "amd64":
		if hasAVX512F && hasAVX512BW {
			return AVX512
		}
		if hasAVX2 {
			return AVX2
		}
	}
	return Generic
}

// ActiveISA returns the currently active ISA.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden returns true if VECKNN_SIMD selected the active ISA.
func IsOverridden() bool {
	return hasOverride
}
