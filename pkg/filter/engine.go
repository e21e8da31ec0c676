// Package filter is the filter engine: pure transforms that read one or two
// raster images and return a freshly allocated result.
//
// Filters never mutate their inputs and keep no state between calls. Pixel
// loops that do not consume randomness are split into column bands and run in
// parallel; the noise filters run sequentially so a seeded sampler yields a
// reproducible image.
package filter

import (
	"errors"
	"io"
	"log"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/klauspost/cpuid"
	"golang.org/x/sync/errgroup"

	"github.com/Fepozopo/imgproc/pkg/raster"
)

var (
	// ErrSizeMismatch is returned by binary operators whose operands differ in size.
	ErrSizeMismatch = errors.New("images must be the same size")
	// ErrInvalidMask is returned for a mask side outside [1, MaxMaskSide].
	ErrInvalidMask = errors.New("invalid mask dimensions")
	// ErrInvalidParameter is returned for out-of-domain scalar parameters.
	ErrInvalidParameter = errors.New("invalid filter parameter")
)

var debugLog atomic.Pointer[log.Logger]

func init() {
	debugLog.Store(log.New(io.Discard, "", 0))
}

// SetLogger installs the sink for debug output. A nil logger discards it.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	debugLog.Store(l)
}

func debugf(format string, args ...interface{}) {
	debugLog.Load().Printf(format, args...)
}

// workers is the number of column bands processed concurrently.
var workers = func() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}()

// forEachColumn calls fn for every x in [0,width). Columns are split into
// contiguous bands handled by separate goroutines; fn must only write to
// column x of its output buffers.
func forEachColumn(width int, fn func(x int)) {
	bands := workers
	if bands > width {
		bands = width
	}
	if bands <= 1 {
		for x := 0; x < width; x++ {
			fn(x)
		}
		return
	}
	step := (width + bands - 1) / bands
	var g errgroup.Group
	g.SetLimit(bands)
	for start := 0; start < width; start += step {
		lo, hi := start, start+step
		if hi > width {
			hi = width
		}
		g.Go(func() error {
			for x := lo; x < hi; x++ {
				fn(x)
			}
			return nil
		})
	}
	g.Wait()
}

// mapRGB builds a color image by evaluating fn independently per channel.
func mapRGB(img *raster.Image, fn func(ch raster.Channel, x, y int) int) *raster.Image {
	w, h := img.Width(), img.Height()
	red, green, blue := raster.NewPlane(w, h), raster.NewPlane(w, h), raster.NewPlane(w, h)
	forEachColumn(w, func(x int) {
		for y := 0; y < h; y++ {
			red[x][y] = fn(raster.Red, x, y)
			green[x][y] = fn(raster.Green, x, y)
			blue[x][y] = fn(raster.Blue, x, y)
		}
	})
	return raster.NewRGB(red, green, blue)
}

// mapGray builds a gray-only image from fn.
func mapGray(img *raster.Image, fn func(x, y int) int) *raster.Image {
	w, h := img.Width(), img.Height()
	gray := raster.NewPlane(w, h)
	forEachColumn(w, func(x int) {
		for y := 0; y < h; y++ {
			gray[x][y] = fn(x, y)
		}
	})
	return raster.NewGray(gray)
}

// truncate converts toward zero, absorbing floating point error below 1e-9
// so that exact results such as 900 * (1/9) land on 100 rather than 99.
// Values outside the int range saturate and NaN maps to 0.
func truncate(v float64) int {
	const eps = 1e-9
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	}
	if v >= 0 {
		return int(v + eps)
	}
	return int(v - eps)
}
