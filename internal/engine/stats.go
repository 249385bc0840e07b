package engine

import "sort"

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// P95 returns the nearest-rank 95th percentile: values sorted ascending,
// index floor(0.95 * (n-1)), zero-based. No interpolation.
func P95(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(0.95 * float64(len(sorted)-1))
	return sorted[idx]
}

func meanPtr(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := Mean(values)
	return &v
}

func p95Ptr(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := P95(values)
	return &v
}
