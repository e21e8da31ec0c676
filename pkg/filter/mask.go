package filter

import (
	"fmt"
	"math"

	"github.com/Fepozopo/imgproc/pkg/raster"
)

// MaskType selects a factor mask for FactorMaskFilter.
type MaskType int

const (
	MaskAverage MaskType = iota + 1
	MaskHighPass
)

// Kernel is a rectangular grid of weights indexed [i][j], i along x.
type Kernel struct {
	Weights [][]float64
}

// MaxMaskSide bounds each side of a mask. A 255x255 median window already
// gathers 65025 values per output pixel.
const MaxMaskSide = 255

func checkMaskSize(width, height int) error {
	if width < 1 || height < 1 || width > MaxMaskSide || height > MaxMaskSide {
		return fmt.Errorf("mask %dx%d outside 1..%d: %w", width, height, MaxMaskSide, ErrInvalidMask)
	}
	return nil
}

// NewKernel returns a zeroed width x height kernel. Both sides must lie in
// [1, MaxMaskSide].
func NewKernel(width, height int) (Kernel, error) {
	if err := checkMaskSize(width, height); err != nil {
		return Kernel{}, err
	}
	k := Kernel{Weights: make([][]float64, width)}
	for i := range k.Weights {
		k.Weights[i] = make([]float64, height)
	}
	return k, nil
}

func (k Kernel) Width() int { return len(k.Weights) }

func (k Kernel) Height() int {
	if len(k.Weights) == 0 {
		return 0
	}
	return len(k.Weights[0])
}

// Offset returns the kernel cell aligned with the output pixel. For an even
// side the center sits left of (or above) the true middle: a width of 8
// centers on column 3.
func (k Kernel) Offset() (ox, oy int) {
	return centerOffset(k.Width()), centerOffset(k.Height())
}

// centerOffset is ceil(n/2) - 1.
func centerOffset(n int) int {
	return (n+1)/2 - 1
}

// Sum returns the total of all weights.
func (k Kernel) Sum() float64 {
	total := 0.0
	for _, col := range k.Weights {
		for _, w := range col {
			total += w
		}
	}
	return total
}

// ApplyMask convolves every color channel with k, multiplies each sum by
// factor and truncates toward zero. Reads near the border follow the
// image's clamp-to-edge policy.
func ApplyMask(img *raster.Image, k Kernel, factor float64) (*raster.Image, error) {
	kw, kh := k.Width(), k.Height()
	if err := checkMaskSize(kw, kh); err != nil {
		return nil, err
	}
	ox, oy := k.Offset()
	return mapRGB(img, func(ch raster.Channel, px, py int) int {
		sum := 0.0
		for i := 0; i < kw; i++ {
			for j := 0; j < kh; j++ {
				sum += k.Weights[i][j] * float64(img.At(ch, px-ox+i, py-oy+j))
			}
		}
		return truncate(sum * factor)
	}), nil
}

// FactorMaskFilter builds an average or high-pass mask of the given size and
// applies it with factor 1/(width*height).
//
// The high-pass mask puts 8 at the center cell and -1 everywhere else. That
// only sums to zero for a 3x3 mask; larger masks darken flat regions.
func FactorMaskFilter(img *raster.Image, width, height int, typ MaskType) (*raster.Image, error) {
	k, err := NewKernel(width, height)
	if err != nil {
		return nil, err
	}
	ox, oy := k.Offset()
	for i := 0; i < width; i++ {
		for j := 0; j < height; j++ {
			switch typ {
			case MaskAverage:
				k.Weights[i][j] = 1
			case MaskHighPass:
				if i == ox && j == oy {
					k.Weights[i][j] = 8
				} else {
					k.Weights[i][j] = -1
				}
			default:
				return nil, fmt.Errorf("mask type %d: %w", typ, ErrInvalidParameter)
			}
		}
	}
	return ApplyMask(img, k, 1/float64(width*height))
}

// Average is the box filter.
func Average(img *raster.Image, width, height int) (*raster.Image, error) {
	return FactorMaskFilter(img, width, height, MaskAverage)
}

// HighPass is the 8/-1 sharpening mask; see FactorMaskFilter.
func HighPass(img *raster.Image, width, height int) (*raster.Image, error) {
	return FactorMaskFilter(img, width, height, MaskHighPass)
}

// NewGaussianKernel weights cell (i,j) by exp(-d²/spread²), d being the
// distance to the center offset, and rescales the weights to sum to 1.
func NewGaussianKernel(width, height int, spread float64) (Kernel, error) {
	if !(spread > 0) {
		return Kernel{}, fmt.Errorf("gaussian spread %v: %w", spread, ErrInvalidParameter)
	}
	k, err := NewKernel(width, height)
	if err != nil {
		return Kernel{}, err
	}
	ox, oy := k.Offset()
	spread2 := spread * spread
	debugf("gaussian mask: analytic factor=%v", 1/(2*math.Pi*spread2))
	for i := 0; i < width; i++ {
		for j := 0; j < height; j++ {
			dx, dy := float64(i-ox), float64(j-oy)
			k.Weights[i][j] = math.Exp(-(dx*dx + dy*dy) / spread2)
		}
	}
	total := k.Sum()
	for i := range k.Weights {
		for j := range k.Weights[i] {
			k.Weights[i][j] /= total
		}
	}
	return k, nil
}

// GaussianBlur smooths every color channel with a normalized Gaussian mask.
func GaussianBlur(img *raster.Image, width, height int, spread float64) (*raster.Image, error) {
	k, err := NewGaussianKernel(width, height, spread)
	if err != nil {
		return nil, err
	}
	return ApplyMask(img, k, 1)
}

// MedianFilter replaces each color value with the median of its channel
// under a width x height window. Even-sized windows take the lower of the two
// middle values.
func MedianFilter(img *raster.Image, width, height int) (*raster.Image, error) {
	if err := checkMaskSize(width, height); err != nil {
		return nil, err
	}
	ox, oy := centerOffset(width), centerOffset(height)
	return mapRGB(img, func(ch raster.Channel, px, py int) int {
		values := make([]int, 0, width*height)
		for i := 0; i < width; i++ {
			for j := 0; j < height; j++ {
				values = append(values, img.At(ch, px-ox+i, py-oy+j))
			}
		}
		return raster.Median(values)
	}), nil
}
