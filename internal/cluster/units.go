package cluster

import (
	"strconv"
	"strings"
)

// ParseCPU converts a CPU quantity string to millicores.
//
// The metrics API reports container CPU usage in nanocores ("500000000n").
// Quantities without the nanocore suffix yield (0, false); callers keep the
// zero value, since the usage thresholds depend on this lossy-but-safe
// default, and may log the raw string for diagnosis.
func ParseCPU(quantity string) (float64, bool) {
	if !strings.HasSuffix(quantity, "n") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(quantity, "n"), 64)
	if err != nil {
		return 0, false
	}
	return v / 1_000_000, true
}

// ParseMemory converts a memory quantity string to mebibytes.
//
// The metrics API reports container memory usage in kibibytes ("1048576Ki").
// Quantities without the Ki suffix yield (0, false), same contract as ParseCPU.
func ParseMemory(quantity string) (float64, bool) {
	if !strings.HasSuffix(quantity, "Ki") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(quantity, "Ki"), 64)
	if err != nil {
		return 0, false
	}
	return v / 1024, true
}
