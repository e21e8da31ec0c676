// Package imageio moves images between files or streams and raster buffers.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pbnjay/memory"
	_ "golang.org/x/image/webp"

	"github.com/Fepozopo/imgproc/pkg/raster"
)

// ErrTooLarge is returned when decoding an image would exceed the memory limit.
var ErrTooLarge = errors.New("image too large for available memory")

// bytesPerPixel is the footprint of one pixel in a raster.Image: four int
// planes (red, green, blue, gray).
const bytesPerPixel = 4 * 8

// Decoder decodes images into raster buffers, refusing images whose buffers
// would not fit in MaxBytes. A zero MaxBytes disables the check.
type Decoder struct {
	MaxBytes uint64
}

// NewDecoder limits decoded buffers to fraction of the machine's total
// memory. A fraction <= 0 disables the limit.
func NewDecoder(fraction float64) *Decoder {
	if fraction <= 0 {
		return &Decoder{}
	}
	return &Decoder{MaxBytes: uint64(float64(memory.TotalMemory()) * fraction)}
}

// Load reads the image at path, applying its EXIF orientation.
func (d *Decoder) Load(path string) (*raster.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	img, format, err := d.decode(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return img, format, nil
}

// Decode reads an image from r. The format name reported by the registered
// decoder is returned alongside.
func (d *Decoder) Decode(r io.Reader) (*raster.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	return d.decode(data)
}

func (d *Decoder) decode(data []byte) (*raster.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode config: %w", err)
	}
	if err := d.check(cfg.Width, cfg.Height); err != nil {
		return nil, "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", format, err)
	}
	return raster.FromImage(img), format, nil
}

func (d *Decoder) check(w, h int) error {
	if d == nil || d.MaxBytes == 0 {
		return nil
	}
	need := uint64(w) * uint64(h) * bytesPerPixel
	if need > d.MaxBytes {
		return fmt.Errorf("%dx%d needs %d bytes, limit %d: %w", w, h, need, d.MaxBytes, ErrTooLarge)
	}
	return nil
}

// Save writes img to path, choosing the format from the extension. Unknown
// extensions are written as PNG.
func Save(path string, img *raster.Image) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		format = imaging.PNG
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes img to w in the given format, clamping channels into [0,255].
func Encode(w io.Writer, img *raster.Image, format imaging.Format) error {
	if err := imaging.Encode(w, img.ToNRGBA(), format, imaging.JPEGQuality(92)); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// Info returns a short description of img: size, whether it is gray-only and
// the observed gray range.
func Info(img *raster.Image) string {
	if img == nil {
		return "no image"
	}
	kind := "RGB"
	if img.IsGray() {
		kind = "gray"
	}
	lo, hi := img.Range(raster.Gray)
	return fmt.Sprintf("Width: %d, Height: %d, Channels: %s, Gray range: [%d, %d]", img.Width(), img.Height(), kind, lo, hi)
}
