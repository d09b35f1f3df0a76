package util

import "runtime"

// GetOptimalPoolSize returns min(max(NumCPU*2, 4), 32).
//
// Used for the parser pools and the content scanner's workers, which
// spend much of their time in cgo (tree-sitter) or page faults (mmap), so
// oversubscribing the cores by two keeps them busy.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when positive, otherwise
// GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
