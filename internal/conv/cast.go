package conv

import (
	"fmt"
	"math"
)

// IntToInt32 converts int to int32 safely.
func IntToInt32(v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int32", v)
	}
	return int32(v), nil
}

// IntToUint64 converts int to uint64 safely.
func IntToUint64(v int) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint64 (negative)", v)
	}
	return uint64(v), nil
}

// Int32s converts every value to int32, failing on the first overflow.
func Int32s(vs ...int) ([]int32, error) {
	out := make([]int32, len(vs))
	for i, v := range vs {
		c, err := IntToInt32(v)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
