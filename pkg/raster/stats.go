package raster

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Levels is the number of histogram buckets.
const Levels = 256

// Histogram counts occurrences of each level of channel ch. Values outside
// [0,255] are counted in the nearest end bucket.
func (m *Image) Histogram(ch Channel) []int {
	hist := make([]int, Levels)
	p := m.plane(ch)
	for x := 0; x < m.width; x++ {
		for y := 0; y < m.height; y++ {
			hist[clampInt(p[x][y], 0, Levels-1)]++
		}
	}
	return hist
}

// Range returns the smallest and largest value observed in channel ch.
// An empty image reports (0, 0).
func (m *Image) Range(ch Channel) (lo, hi int) {
	if m.width == 0 || m.height == 0 {
		return 0, 0
	}
	p := m.plane(ch)
	return Min(p), Max(p)
}

// Min returns the smallest value of a non-empty channel buffer.
func Min(p [][]int) int {
	lo := p[0][0]
	for _, col := range p {
		if len(col) == 0 {
			continue
		}
		if v := int(floats.Min(toFloats(col))); v < lo {
			lo = v
		}
	}
	return lo
}

// Max returns the largest value of a non-empty channel buffer.
func Max(p [][]int) int {
	hi := p[0][0]
	for _, col := range p {
		if len(col) == 0 {
			continue
		}
		if v := int(floats.Max(toFloats(col))); v > hi {
			hi = v
		}
	}
	return hi
}

// Median returns the median of values. For an even count the lower of the
// two middle values is returned. values is not modified; an empty slice
// yields 0.
func Median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := toFloats(values)
	sort.Float64s(sorted)
	return int(stat.Quantile(0.5, stat.Empirical, sorted, nil))
}

// CumulativeSum returns the running totals of counts.
func CumulativeSum(counts []int) []int {
	if len(counts) == 0 {
		return nil
	}
	cum := floats.CumSum(make([]float64, len(counts)), toFloats(counts))
	out := make([]int, len(cum))
	for i, v := range cum {
		out[i] = int(v)
	}
	return out
}

func toFloats(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
