package filter

import (
	"fmt"

	"github.com/Fepozopo/imgproc/pkg/raster"
	"github.com/Fepozopo/imgproc/pkg/sample"
)

// Noise filters visit pixels column by column (x outer, y inner) and draw
// from the sampler in that order, one gate draw per pixel followed by the
// noise draw when the pixel is affected.

// checkProbability also rejects NaN, which fails every ordered comparison.
func checkProbability(name string, p float64) error {
	if !(p >= 0 && p <= 1) {
		return fmt.Errorf("%s=%v outside [0,1]: %w", name, p, ErrInvalidParameter)
	}
	return nil
}

// perturbGray applies fn to the gray value of every pixel selected with
// probability p and returns a gray-only image.
func perturbGray(img *raster.Image, s sample.Source, p float64, fn func(gray int) int) *raster.Image {
	w, h := img.Width(), img.Height()
	out := raster.NewPlane(w, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			gray := img.Gray(x, y)
			if s.Float64() <= p {
				out[x][y] = fn(gray)
			} else {
				out[x][y] = gray
			}
		}
	}
	return raster.NewGray(out)
}

// AddGaussianNoise adds a normal sample (standard deviation spread, the given
// mean), truncated toward zero, to the gray value of each pixel selected
// with probability p.
func AddGaussianNoise(img *raster.Image, s sample.Sampler, spread, mean, p float64) (*raster.Image, error) {
	if err := checkProbability("probability", p); err != nil {
		return nil, err
	}
	if !(spread >= 0) {
		return nil, fmt.Errorf("gaussian spread %v: %w", spread, ErrInvalidParameter)
	}
	return perturbGray(img, s, p, func(gray int) int {
		return gray + truncate(s.Gaussian(spread, mean))
	}), nil
}

// MulRayleighNoise multiplies the gray value of each selected pixel by a
// Rayleigh sample of scale xi.
func MulRayleighNoise(img *raster.Image, s sample.Sampler, xi, p float64) (*raster.Image, error) {
	if err := checkProbability("probability", p); err != nil {
		return nil, err
	}
	if !(xi > 0) {
		return nil, fmt.Errorf("rayleigh xi %v: %w", xi, ErrInvalidParameter)
	}
	return perturbGray(img, s, p, func(gray int) int {
		return truncate(float64(gray) * s.Rayleigh(xi))
	}), nil
}

// MulExponentialNoise multiplies the gray value of each selected pixel by an
// exponential sample of rate lambda.
func MulExponentialNoise(img *raster.Image, s sample.Sampler, lambda, p float64) (*raster.Image, error) {
	if err := checkProbability("probability", p); err != nil {
		return nil, err
	}
	if !(lambda > 0) {
		return nil, fmt.Errorf("exponential lambda %v: %w", lambda, ErrInvalidParameter)
	}
	return perturbGray(img, s, p, func(gray int) int {
		return truncate(float64(gray) * s.Exponential(lambda))
	}), nil
}

// SaltAndPepper turns a pixel black when its draw is <= p0, white when it is
// >= p1, and copies it otherwise. All three color channels are affected.
func SaltAndPepper(img *raster.Image, s sample.Source, p0, p1 float64) (*raster.Image, error) {
	if err := checkProbability("p0", p0); err != nil {
		return nil, err
	}
	if err := checkProbability("p1", p1); err != nil {
		return nil, err
	}
	if p0 > p1 {
		return nil, fmt.Errorf("p0=%v above p1=%v: %w", p0, p1, ErrInvalidParameter)
	}
	w, h := img.Width(), img.Height()
	red, green, blue := raster.NewPlane(w, h), raster.NewPlane(w, h), raster.NewPlane(w, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			switch u := s.Float64(); {
			case u <= p0:
				red[x][y], green[x][y], blue[x][y] = 0, 0, 0
			case u >= p1:
				red[x][y], green[x][y], blue[x][y] = 255, 255, 255
			default:
				red[x][y], green[x][y], blue[x][y] = img.Red(x, y), img.Green(x, y), img.Blue(x, y)
			}
		}
	}
	return raster.NewRGB(red, green, blue), nil
}
