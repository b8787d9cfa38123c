package minify

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sys/cpu"
)

// SIMDLevel is the widest vector ISA the Eliminator may target (§4.9).
type SIMDLevel int

const (
	SIMDNone SIMDLevel = iota
	SIMDV128
	SIMDV256
	SIMDV512
	SIMDNeon
)

func (l SIMDLevel) String() string {
	switch l {
	case SIMDNone:
		return "none"
	case SIMDV128:
		return "v128"
	case SIMDV256:
		return "v256"
	case SIMDV512:
		return "v512"
	case SIMDNeon:
		return "neon"
	default:
		return "unknown"
	}
}

// Capabilities is the memoized result of the hardware probe (§4.9).
type Capabilities struct {
	SIMDLevel   SIMDLevel
	LogicalCPUs int
}

var (
	probeOnce   sync.Once
	probeResult Capabilities
)

// Probe runs the hardware capability detection once per process and
// memoizes the result, as §4.9/§9 ("Global state ... cache its result in
// process-local storage initialized lazily") requires.
func Probe() Capabilities {
	probeOnce.Do(func() {
		probeResult = detectCapabilities()
	})
	return probeResult
}

func detectCapabilities() Capabilities {
	c := Capabilities{LogicalCPUs: runtime.NumCPU()}

	if runtime.GOARCH == "arm64" || runtime.GOARCH == "arm" {
		// cpuid.v2 covers ARM too; x/sys/cpu is asked as well, and NEON is
		// reported when either library sees ASIMD.
		if cpuid.CPU.Has(cpuid.ASIMD) || cpu.ARM64.HasASIMD {
			c.SIMDLevel = SIMDNeon
		}
		return c
	}

	switch {
	case cpuid.CPU.Has(cpuid.AVX512F) && cpuid.CPU.Has(cpuid.AVX512BW):
		c.SIMDLevel = SIMDV512
	case cpuid.CPU.Has(cpuid.AVX2):
		c.SIMDLevel = SIMDV256
	case cpuid.CPU.Has(cpuid.SSE2):
		c.SIMDLevel = SIMDV128
	}
	return c
}
