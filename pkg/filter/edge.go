package filter

import (
	"math"

	"github.com/Fepozopo/imgproc/pkg/raster"
)

// The edge operators read the gray channel only and return raw gradient
// magnitudes as a gray image. No suppression or thresholding is applied;
// chain Threshold for a binary edge map.

func magnitude(gx, gy int) int {
	return int(math.Round(math.Sqrt(float64(gx*gx + gy*gy))))
}

// Roberts is the 2x2 Roberts cross anchored at (x,y).
func Roberts(img *raster.Image) *raster.Image {
	g := img.Gray
	return mapGray(img, func(x, y int) int {
		gx := g(x, y) - g(x+1, y+1)
		gy := g(x+1, y) - g(x, y+1)
		return magnitude(gx, gy)
	})
}

// Prewitt is the 3x3 Prewitt operator anchored at the top-left of the
// stencil: gx compares row y+2 against row y, gy column x+2 against column x.
func Prewitt(img *raster.Image) *raster.Image {
	return stencil3(img, 1)
}

// Sobel is Prewitt with the middle cell of each compared row and column
// weighted by 2.
func Sobel(img *raster.Image) *raster.Image {
	return stencil3(img, 2)
}

func stencil3(img *raster.Image, center int) *raster.Image {
	g := img.Gray
	return mapGray(img, func(x, y int) int {
		bottom := g(x, y+2) + center*g(x+1, y+2) + g(x+2, y+2)
		top := g(x, y) + center*g(x+1, y) + g(x+2, y)
		right := g(x+2, y) + center*g(x+2, y+1) + g(x+2, y+2)
		left := g(x, y) + center*g(x, y+1) + g(x, y+2)
		return magnitude(bottom-top, right-left)
	})
}
