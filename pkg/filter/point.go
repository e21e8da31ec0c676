package filter

import (
	"fmt"
	"math"

	"github.com/Fepozopo/imgproc/pkg/raster"
)

// Add sums two images channel by channel. Results may exceed 255.
func Add(a, b *raster.Image) (*raster.Image, error) {
	if !a.SameSize(b) {
		return nil, fmt.Errorf("add %dx%d and %dx%d: %w", a.Width(), a.Height(), b.Width(), b.Height(), ErrSizeMismatch)
	}
	return mapRGB(a, func(ch raster.Channel, x, y int) int {
		return a.At(ch, x, y) + b.At(ch, x, y)
	}), nil
}

// Subtract computes a - b channel by channel. Results may be negative.
func Subtract(a, b *raster.Image) (*raster.Image, error) {
	if !a.SameSize(b) {
		return nil, fmt.Errorf("subtract %dx%d and %dx%d: %w", a.Width(), a.Height(), b.Width(), b.Height(), ErrSizeMismatch)
	}
	return mapRGB(a, func(ch raster.Channel, x, y int) int {
		return a.At(ch, x, y) - b.At(ch, x, y)
	}), nil
}

// MultiplyScalar scales every channel, truncating toward zero.
func MultiplyScalar(img *raster.Image, scalar float64) *raster.Image {
	return mapRGB(img, func(ch raster.Channel, x, y int) int {
		return truncate(float64(img.At(ch, x, y)) * scalar)
	})
}

// CompressLinear maps the observed gray range [min,max] onto [0,255].
// A flat image has no range to stretch and is passed through.
func CompressLinear(img *raster.Image) *raster.Image {
	lo, hi := img.Range(raster.Gray)
	if hi == lo {
		return mapGray(img, img.Gray)
	}
	factor := 255.0 / float64(hi-lo)
	b := -factor * float64(lo)
	debugf("compressLinear: factor=%v b=%v", factor, b)
	return mapGray(img, func(x, y int) int {
		return truncate(float64(img.Gray(x, y))*factor + b)
	})
}

// CompressLog applies c*ln(v+1) with c = 255/ln(max) when the gray maximum
// exceeds 255, clamping negative results to 0. Otherwise the gray channel is
// passed through.
func CompressLog(img *raster.Image) *raster.Image {
	_, hi := img.Range(raster.Gray)
	if hi <= 255 {
		return mapGray(img, func(x, y int) int {
			return max(0, img.Gray(x, y))
		})
	}
	c := 255 / math.Log(float64(hi))
	return mapGray(img, func(x, y int) int {
		v := img.Gray(x, y)
		if v+1 <= 0 {
			return 0
		}
		return max(0, truncate(c*math.Log(float64(v+1))))
	})
}

// Negative inverts every channel: 255 - v.
func Negative(img *raster.Image) *raster.Image {
	return mapRGB(img, func(ch raster.Channel, x, y int) int {
		return 255 - img.At(ch, x, y)
	})
}

// Threshold maps each channel to 0 below cutoff and to 255 at or above it.
func Threshold(img *raster.Image, cutoff int) *raster.Image {
	return mapRGB(img, func(ch raster.Channel, x, y int) int {
		if img.At(ch, x, y) < cutoff {
			return 0
		}
		return 255
	})
}

// segment is the affine map through (x0,y0) and (x1,y1).
type segment struct {
	factor, b float64
}

func newSegment(x0, y0, x1, y1 int) segment {
	if x1 == x0 {
		return segment{factor: 0, b: float64(y1)}
	}
	f := float64(y1-y0) / float64(x1-x0)
	return segment{factor: f, b: float64(y0) - f*float64(x0)}
}

func (s segment) apply(v int) int { return truncate(float64(v)*s.factor + s.b) }

// Contrast applies the piecewise-linear stretch through (0,0), (r1,s1),
// (r2,s2) and (255,255) to the gray channel. Control points must satisfy
// 0 <= r1 <= r2 <= 255.
func Contrast(img *raster.Image, r1, r2, s1, s2 int) (*raster.Image, error) {
	if r1 < 0 || r1 > r2 || r2 > 255 {
		return nil, fmt.Errorf("contrast control points r1=%d r2=%d: %w", r1, r2, ErrInvalidParameter)
	}
	low := newSegment(0, 0, r1, s1)
	mid := newSegment(r1, s1, r2, s2)
	high := newSegment(r2, s2, 255, 255)
	debugf("contrast: low=%+v mid=%+v high=%+v", low, mid, high)
	return mapGray(img, func(x, y int) int {
		gray := img.Gray(x, y)
		switch {
		case gray <= r1:
			return low.apply(gray)
		case gray <= r2:
			return mid.apply(gray)
		default:
			return high.apply(gray)
		}
	}), nil
}

// EqualizationTable computes the gray-level lookup used by Equalize: level i
// maps to the level j whose ideal uniform cumulative count is closest to the
// observed cumulative count of i. Ties go to the lowest j.
func EqualizationTable(hist []int) []int {
	levels := len(hist)
	cuf := raster.CumulativeSum(hist)
	table := make([]int, levels)
	if levels == 0 {
		return table
	}
	total := cuf[levels-1]
	target := make([]int, levels)
	for i := range target {
		target[i] = i * total / levels
	}
	for i, n := range cuf {
		best, bestDiff := 0, abs(n-target[0])
		for j := 1; j < levels; j++ {
			if d := abs(n - target[j]); d < bestDiff {
				best, bestDiff = j, d
			}
		}
		table[i] = best
	}
	return table
}

// Equalize remaps gray levels so the histogram approaches a uniform one.
// Gray values outside [0,255] are looked up at the nearest end level.
func Equalize(img *raster.Image) *raster.Image {
	table := EqualizationTable(img.Histogram(raster.Gray))
	return mapGray(img, func(x, y int) int {
		return table[min(max(img.Gray(x, y), 0), raster.Levels-1)]
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
