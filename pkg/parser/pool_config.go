package parser

import (
	"github.com/gnana997/uitheme/pkg/util"
)

// getPoolSize returns override when positive, otherwise the CPU-aware size
// shared with the content scanner's worker pool so workers never wait on
// parsers.
func getPoolSize(override int) int {
	return util.GetOptimalPoolSizeWithOverride(override)
}
