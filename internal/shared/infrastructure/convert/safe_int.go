// Package convert holds overflow-safe integer conversions.
package convert

import "math"

// IntToInt32Clamped converts v to int32, clamping at the int32 bounds.
func IntToInt32Clamped(v int) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}

// IntToUint32Clamped converts v to uint32, clamping negatives to zero.
func IntToUint32Clamped(v int) uint32 {
	switch {
	case v < 0:
		return 0
	case uint64(v) > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}
