package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrNotInteger is returned when a value does not hold a whole number that fits in an int64.
var ErrNotInteger = errors.New("not an int64 integer")

// ExactInt64 converts decoded numbers to int64. Fractions, exponents that leave the
// int64 range and non-numeric values are rejected instead of truncated.
func ExactInt64(val any) (int64, error) {
	switch v := val.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v", ErrNotInteger, v)
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrNotInteger, v)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotInteger, val)
	}
}
