package filter

import (
	"testing"

	"github.com/Fepozopo/imgproc/pkg/raster"
)

func makeSolidGray(w, h, v int) *raster.Image {
	p := raster.NewPlane(w, h)
	for x := range p {
		for y := range p[x] {
			p[x][y] = v
		}
	}
	return raster.NewGray(p)
}

// makeGrayFunc builds a gray image whose value at (x,y) is fn(x,y).
func makeGrayFunc(w, h int, fn func(x, y int) int) *raster.Image {
	p := raster.NewPlane(w, h)
	for x := range p {
		for y := range p[x] {
			p[x][y] = fn(x, y)
		}
	}
	return raster.NewGray(p)
}

func makeRGBFunc(w, h int, fn func(x, y int) (r, g, b int)) *raster.Image {
	red, green, blue := raster.NewPlane(w, h), raster.NewPlane(w, h), raster.NewPlane(w, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			red[x][y], green[x][y], blue[x][y] = fn(x, y)
		}
	}
	return raster.NewRGB(red, green, blue)
}

func assertSize(t *testing.T, img *raster.Image, w, h int) {
	t.Helper()
	if img.Width() != w || img.Height() != h {
		t.Fatalf("size = %dx%d, want %dx%d", img.Width(), img.Height(), w, h)
	}
}

// assertChannel checks every pixel of channel ch against want(x,y).
func assertChannel(t *testing.T, img *raster.Image, ch raster.Channel, want func(x, y int) int) {
	t.Helper()
	for x := 0; x < img.Width(); x++ {
		for y := 0; y < img.Height(); y++ {
			if got, w := img.At(ch, x, y), want(x, y); got != w {
				t.Fatalf("%s(%d,%d) = %d, want %d", ch, x, y, got, w)
			}
		}
	}
}

func constant(v int) func(x, y int) int {
	return func(int, int) int { return v }
}

func sameChannel(t *testing.T, a, b *raster.Image, ch raster.Channel) {
	t.Helper()
	assertSize(t, b, a.Width(), a.Height())
	assertChannel(t, b, ch, func(x, y int) int { return a.At(ch, x, y) })
}

// scriptedSource replays a fixed list of uniforms, wrapping around.
type scriptedSource struct {
	values []float64
	next   int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// fixedSampler gates with a scripted source and returns constant samples.
type fixedSampler struct {
	scriptedSource
	gaussian, rayleigh, exponential float64
}

func (s *fixedSampler) Gaussian(spread, mean float64) float64 { return s.gaussian }
func (s *fixedSampler) Rayleigh(xi float64) float64           { return s.rayleigh }
func (s *fixedSampler) Exponential(lambda float64) float64    { return s.exponential }
