package raster

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func makePlane(w, h int, fn func(x, y int) int) [][]int {
	p := NewPlane(w, h)
	for x := range p {
		for y := range p[x] {
			p[x][y] = fn(x, y)
		}
	}
	return p
}

func TestNewPlaneShape(t *testing.T) {
	p := NewPlane(3, 5)
	if len(p) != 3 {
		t.Fatalf("len = %d, want 3", len(p))
	}
	for x := range p {
		if len(p[x]) != 5 {
			t.Fatalf("column %d has %d rows", x, len(p[x]))
		}
	}
	p[0][4] = 9
	if p[1][0] != 0 {
		t.Fatalf("columns share storage")
	}
}

func TestNewRGBDerivesGray(t *testing.T) {
	r := makePlane(2, 1, func(x, _ int) int { return []int{255, 80}[x] })
	g := makePlane(2, 1, func(x, _ int) int { return []int{0, 80}[x] })
	b := makePlane(2, 1, func(int, int) int { return 0 })
	img := NewRGB(r, g, b)
	if img.IsGray() {
		t.Fatalf("NewRGB image reported as gray")
	}
	// 0.2126 * 255 = 54.2
	if got := img.Gray(0, 0); got != 54 {
		t.Fatalf("gray(0,0) = %d, want 54", got)
	}
	if got := img.Gray(1, 0); got != 74 {
		t.Fatalf("gray(1,0) = %d, want 74", got)
	}
	if img.Width() != 2 || img.Height() != 1 {
		t.Fatalf("size = %dx%d", img.Width(), img.Height())
	}
}

func TestLumaOfNeutralIsIdentity(t *testing.T) {
	for v := 0; v <= 300; v += 7 {
		if got := luma(v, v, v); got != v {
			t.Fatalf("luma(%d) = %d", v, got)
		}
	}
}

func TestLumaLargeValuesDoNotWrap(t *testing.T) {
	cases := []struct{ r, g, b, want int }{
		{-7, -7, -7, -6},
		{1e11, 1e11, 1e11, 1e11},
		{2e15, 0, 0, 425200000000000},
		{0, 2e15, 0, 1430400000000000},
		{math.MaxInt, math.MaxInt, math.MaxInt, math.MaxInt},
		{math.MinInt, math.MinInt, math.MinInt, math.MinInt},
	}
	for _, c := range cases {
		if got := luma(c.r, c.g, c.b); got != c.want {
			t.Errorf("luma(%d, %d, %d) = %d, want %d", c.r, c.g, c.b, got, c.want)
		}
	}
}

func TestZeroSidedImagesAreEmpty(t *testing.T) {
	for _, size := range [][2]int{{0, 5}, {5, 0}, {0, 0}} {
		p := NewPlane(size[0], size[1])
		for _, img := range []*Image{NewGray(p), NewRGB(p, p, p)} {
			if img.Width() != 0 || img.Height() != 0 {
				t.Errorf("%dx%d plane gave a %dx%d image", size[0], size[1], img.Width(), img.Height())
			}
			if got := img.Red(0, 0); got != 0 {
				t.Errorf("%dx%d plane read %d", size[0], size[1], got)
			}
			if b := img.ToNRGBA().Bounds(); !b.Empty() {
				t.Errorf("%dx%d plane rendered %v", size[0], size[1], b)
			}
		}
	}
}

func TestNewRGBPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for mismatched channels")
		}
	}()
	NewRGB(NewPlane(2, 2), NewPlane(2, 3), NewPlane(2, 2))
}

func TestGrayOnlyReadsGrayForColor(t *testing.T) {
	img := NewGray(makePlane(3, 2, func(x, y int) int { return x*10 + y }))
	if !img.IsGray() {
		t.Fatalf("NewGray image not reported as gray")
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 2; y++ {
			v := x*10 + y
			if img.Red(x, y) != v || img.Green(x, y) != v || img.Blue(x, y) != v || img.Gray(x, y) != v {
				t.Fatalf("(%d,%d) reads %d/%d/%d/%d, want %d", x, y,
					img.Red(x, y), img.Green(x, y), img.Blue(x, y), img.Gray(x, y), v)
			}
		}
	}
}

func TestOutOfBoundsReadsClampToEdge(t *testing.T) {
	img := NewGray(makePlane(3, 3, func(x, y int) int { return x*3 + y }))
	cases := []struct{ x, y, want int }{
		{-1, -1, 0},
		{-5, 1, 1},
		{3, 0, 6},
		{1, 7, 5},
		{9, 9, 8},
	}
	for _, c := range cases {
		if got := img.At(Gray, c.x, c.y); got != c.want {
			t.Errorf("At(%d,%d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
	empty := NewGray(NewPlane(0, 0))
	if got := empty.Gray(1, 1); got != 0 {
		t.Fatalf("empty image read %d", got)
	}
}

func TestChannelReturnsCopy(t *testing.T) {
	img := NewGray(makePlane(2, 2, func(int, int) int { return 5 }))
	c := img.GrayChannel()
	c[0][0] = 99
	if img.Gray(0, 0) != 5 {
		t.Fatalf("mutating a channel copy changed the image")
	}
}

func TestSameSize(t *testing.T) {
	a := NewGray(NewPlane(4, 3))
	if !a.SameSize(NewGray(NewPlane(4, 3))) {
		t.Fatalf("4x3 vs 4x3 should match")
	}
	if a.SameSize(NewGray(NewPlane(3, 4))) {
		t.Fatalf("4x3 vs 3x4 should not match")
	}
	if a.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("bounds = %v", a.Bounds())
	}
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 12, 11))
	src.SetNRGBA(10, 10, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	src.SetNRGBA(11, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	img := FromImage(src)
	if img.Width() != 2 || img.Height() != 1 {
		t.Fatalf("size = %dx%d, want 2x1", img.Width(), img.Height())
	}
	if img.IsGray() {
		t.Fatalf("color source converted to gray")
	}
	if img.Red(0, 0) != 200 || img.Green(0, 0) != 100 || img.Blue(0, 0) != 50 {
		t.Fatalf("pixel 0 = %d/%d/%d", img.Red(0, 0), img.Green(0, 0), img.Blue(0, 0))
	}
	if img.Blue(1, 0) != 3 {
		t.Fatalf("pixel 1 blue = %d", img.Blue(1, 0))
	}
}

func TestFromImageGraySource(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 3))
	src.SetGray(1, 2, color.Gray{Y: 77})
	img := FromImage(src)
	if !img.IsGray() {
		t.Fatalf("gray source should produce a gray-only image")
	}
	if img.Gray(1, 2) != 77 {
		t.Fatalf("gray(1,2) = %d", img.Gray(1, 2))
	}
}

func TestToNRGBAClamps(t *testing.T) {
	r := makePlane(3, 1, func(x, _ int) int { return []int{-20, 128, 400}[x] })
	img := NewRGB(r, NewPlane(3, 1), NewPlane(3, 1))
	out := img.ToNRGBA()
	want := []uint8{0, 128, 255}
	for x, w := range want {
		c := out.NRGBAAt(x, 0)
		if c.R != w || c.A != 255 {
			t.Errorf("pixel %d = %+v, want R=%d A=255", x, c, w)
		}
	}
}

func TestChannelString(t *testing.T) {
	if Red.String() != "red" || Gray.String() != "gray" {
		t.Fatalf("unexpected names %q %q", Red, Gray)
	}
}
