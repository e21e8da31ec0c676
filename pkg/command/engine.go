package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/Fepozopo/imgproc/pkg/filter"
	"github.com/Fepozopo/imgproc/pkg/raster"
	"github.com/Fepozopo/imgproc/pkg/sample"
)

var (
	// ErrUnknownCommand is returned for names missing from Commands.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInputCount is returned when a command receives the wrong number of images.
	ErrInputCount = errors.New("wrong number of input images")
)

// Apply runs the named command over inputs with textual args. Arguments are
// validated with NormalizeArgs first. Noise commands draw from s; a nil s
// gets a randomly seeded sampler.
func Apply(name string, inputs []*raster.Image, args []string, s sample.Sampler) (*raster.Image, error) {
	c, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownCommand)
	}
	if len(inputs) != c.Inputs {
		return nil, fmt.Errorf("%s takes %d images, got %d: %w", name, c.Inputs, len(inputs), ErrInputCount)
	}
	for i, img := range inputs {
		if img == nil {
			return nil, fmt.Errorf("%s: source image %d is nil", name, i+1)
		}
	}
	norm, err := NormalizeArgs(c, args)
	if err != nil {
		return nil, err
	}
	v, err := values(norm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if s == nil {
		s = sample.New(0)
	}
	src := inputs[0]

	switch name {
	case "add":
		return filter.Add(src, inputs[1])

	case "subtract":
		return filter.Subtract(src, inputs[1])

	case "multiply":
		return filter.MultiplyScalar(src, v[0]), nil

	case "compressLinear":
		return filter.CompressLinear(src), nil

	case "compressLog":
		return filter.CompressLog(src), nil

	case "negative":
		return filter.Negative(src), nil

	case "threshold":
		return filter.Threshold(src, int(v[0])), nil

	case "contrast":
		return filter.Contrast(src, int(v[0]), int(v[1]), int(v[2]), int(v[3]))

	case "equalize":
		return filter.Equalize(src), nil

	case "gaussianNoise":
		return filter.AddGaussianNoise(src, s, v[0], v[1], v[2])

	case "rayleighNoise":
		return filter.MulRayleighNoise(src, s, v[0], v[1])

	case "exponentialNoise":
		return filter.MulExponentialNoise(src, s, v[0], v[1])

	case "saltPepper":
		return filter.SaltAndPepper(src, s, v[0], v[1])

	case "average":
		w, h := maskSize(v)
		return filter.Average(src, w, h)

	case "highPass":
		w, h := maskSize(v)
		return filter.HighPass(src, w, h)

	case "gaussianBlur":
		w, h := maskSize(v)
		return filter.GaussianBlur(src, w, h, v[2])

	case "median":
		w, h := maskSize(v)
		return filter.MedianFilter(src, w, h)

	case "roberts":
		return filter.Roberts(src), nil

	case "prewitt":
		return filter.Prewitt(src), nil

	case "sobel":
		return filter.Sobel(src), nil
	}
	return nil, fmt.Errorf("%s: registered but not dispatched: %w", name, ErrUnknownCommand)
}

// values parses normalized arguments. An empty string stands for an omitted
// optional argument without a default and parses as NaN.
func values(norm []string) ([]float64, error) {
	out := make([]float64, len(norm))
	for i, s := range norm {
		if s == "" {
			out[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// maskSize reads width and an optional height, defaulting height to width.
func maskSize(v []float64) (int, int) {
	w := int(v[0])
	if math.IsNaN(v[1]) {
		return w, w
	}
	return w, int(v[1])
}
