// Package raster holds the pixel buffer consumed and produced by the filter
// engine, together with the small numeric helpers every filter family uses.
//
// Channel buffers are indexed [x][y]. Values are plain ints and are allowed to
// leave the displayable [0,255] range while filters run; they are only clamped
// when the buffer is rendered back into an image.Image with ToNRGBA.
//
// Reads outside [0,width)x[0,height) are clamped to the nearest edge pixel, so
// neighborhood operators never need their own bounds checks.
//
// An [x][y] buffer with no columns cannot record a height, so every image with
// a zero side is normalized to 0x0. Filters given an empty image return an
// empty image.
package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Channel selects one of the per-pixel planes.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Gray
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Gray:
		return "gray"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// Image is an immutable multi-channel pixel buffer.
type Image struct {
	width, height int
	red           [][]int
	green         [][]int
	blue          [][]int
	gray          [][]int
	grayOnly      bool
}

// NewRGB builds an image from three color channels. The gray channel is
// derived from them. NewRGB panics if the channels differ in size. Channels
// with a zero side give a 0x0 image.
func NewRGB(red, green, blue [][]int) *Image {
	w, h := dims(red)
	if gw, gh := dims(green); gw != w || gh != h {
		panic(fmt.Sprintf("raster: green channel is %dx%d, red is %dx%d", gw, gh, w, h))
	}
	if bw, bh := dims(blue); bw != w || bh != h {
		panic(fmt.Sprintf("raster: blue channel is %dx%d, red is %dx%d", bw, bh, w, h))
	}
	gray := NewPlane(w, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			gray[x][y] = luma(red[x][y], green[x][y], blue[x][y])
		}
	}
	return &Image{width: w, height: h, red: red, green: green, blue: blue, gray: gray}
}

// NewGray builds a gray-only image. Every color read returns the gray value.
// A channel with a zero side gives a 0x0 image.
func NewGray(gray [][]int) *Image {
	w, h := dims(gray)
	return &Image{width: w, height: h, red: gray, green: gray, blue: gray, gray: gray, grayOnly: true}
}

// NewPlane allocates a zeroed w x h channel buffer.
func NewPlane(w, h int) [][]int {
	p := make([][]int, w)
	cells := make([]int, w*h)
	for x := range p {
		p[x], cells = cells[:h:h], cells[h:]
	}
	return p
}

// dims reports the size of a channel buffer, checking it is rectangular.
// A buffer with a zero side reports 0x0.
func dims(p [][]int) (int, int) {
	w := len(p)
	if w == 0 {
		return 0, 0
	}
	h := len(p[0])
	for x := 1; x < w; x++ {
		if len(p[x]) != h {
			panic(fmt.Sprintf("raster: ragged channel, column %d has %d rows, want %d", x, len(p[x]), h))
		}
	}
	if h == 0 {
		return 0, 0
	}
	return w, h
}

// luma is Rec.709 luminance, (2126r + 7152g + 722b + 5000) / 10000 truncated
// toward zero; r == g == b == v gives v. It is computed in float64 so large
// channel values never wrap: results are exact for magnitudes below about
// 1e11, approximate above that, and saturate at the int range.
func luma(r, g, b int) int {
	v := (2126*float64(r) + 7152*float64(g) + 722*float64(b) + 5000) / 10000
	switch {
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	}
	return int(v)
}

func (m *Image) Width() int  { return m.width }
func (m *Image) Height() int { return m.height }

// Bounds returns the image rectangle anchored at the origin.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

// IsGray reports whether the image was built from a single gray channel.
func (m *Image) IsGray() bool { return m.grayOnly }

// SameSize reports whether both images have identical dimensions.
func (m *Image) SameSize(o *Image) bool {
	return m.width == o.width && m.height == o.height
}

func (m *Image) Red(x, y int) int   { return m.read(m.red, x, y) }
func (m *Image) Green(x, y int) int { return m.read(m.green, x, y) }
func (m *Image) Blue(x, y int) int  { return m.read(m.blue, x, y) }
func (m *Image) Gray(x, y int) int  { return m.read(m.gray, x, y) }

// At reads channel ch at (x, y).
func (m *Image) At(ch Channel, x, y int) int {
	return m.read(m.plane(ch), x, y)
}

func (m *Image) plane(ch Channel) [][]int {
	switch ch {
	case Red:
		return m.red
	case Green:
		return m.green
	case Blue:
		return m.blue
	case Gray:
		return m.gray
	}
	panic(fmt.Sprintf("raster: unknown channel %d", int(ch)))
}

// read applies the clamp-to-edge policy.
func (m *Image) read(p [][]int, x, y int) int {
	if m.width == 0 || m.height == 0 {
		return 0
	}
	return p[clampInt(x, 0, m.width-1)][clampInt(y, 0, m.height-1)]
}

// GrayChannel returns a copy of the gray channel.
func (m *Image) GrayChannel() [][]int { return m.Channel(Gray) }

// Channel returns a copy of channel ch.
func (m *Image) Channel(ch Channel) [][]int {
	src := m.plane(ch)
	out := NewPlane(m.width, m.height)
	for x := range out {
		copy(out[x], src[x])
	}
	return out
}

// FromImage converts any image.Image into a pixel buffer. Alpha is dropped.
func FromImage(src image.Image) *Image {
	n := imaging.Clone(src)
	w, h := n.Rect.Dx(), n.Rect.Dy()
	r, g, b := NewPlane(w, h), NewPlane(w, h), NewPlane(w, h)
	gray := true
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := n.PixOffset(x+n.Rect.Min.X, y+n.Rect.Min.Y)
			r[x][y] = int(n.Pix[i+0])
			g[x][y] = int(n.Pix[i+1])
			b[x][y] = int(n.Pix[i+2])
			if r[x][y] != g[x][y] || r[x][y] != b[x][y] {
				gray = false
			}
		}
	}
	if gray {
		return NewGray(r)
	}
	return NewRGB(r, g, b)
}

// ToNRGBA renders the buffer as an opaque *image.NRGBA, clamping every
// channel into [0,255].
func (m *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(m.Bounds())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			i := out.PixOffset(x, y)
			out.Pix[i+0] = clampUint8(m.red[x][y])
			out.Pix[i+1] = clampUint8(m.green[x][y])
			out.Pix[i+2] = clampUint8(m.blue[x][y])
			out.Pix[i+3] = 255
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUint8(v int) uint8 {
	return uint8(clampInt(v, 0, 255))
}
