package cli

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/Fepozopo/imgproc/pkg/raster"
)

// Terminal previews. Supported protocols:
//   - inline: the iTerm2 OSC 1337 file sequence (iTerm2, WezTerm, VSCode and others)
//   - kitty: the kitty graphics protocol, chunked base64 inside ESC _G ... ESC \
//   - sixel: piped through img2sixel, falling back to chafa
//   - chafa: block-symbol approximation for any terminal
//
// The image is downscaled to the preview box before encoding so large
// results do not flood the terminal.

// Character cell assumptions and preview box limits.
const (
	cellWidth  = 8
	cellHeight = 16
	minCols    = 6
	minRows    = 3
	maxCols    = 80
	maxRows    = 40
)

// Previewer renders images in the terminal with one resolved backend.
type Previewer struct {
	out     io.Writer
	backend string
}

// NewPreviewer resolves backend, one of the config preview values. "auto"
// inspects the terminal through getenv.
func NewPreviewer(out io.Writer, backend string, getenv func(string) string) *Previewer {
	if backend == "" || backend == "auto" {
		backend = detectBackend(getenv)
	}
	debugf("preview backend: %s", backend)
	return &Previewer{out: out, backend: backend}
}

// Backend returns the resolved backend name.
func (p *Previewer) Backend() string { return p.backend }

func detectBackend(getenv func(string) string) string {
	term := strings.ToLower(getenv("TERM"))
	switch getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby", "Bobcat":
		return "inline"
	}
	if getenv("ITERM_SESSION_ID") != "" || strings.Contains(term, "wezterm") {
		return "inline"
	}
	// ghostty and konsole speak the kitty protocol
	if getenv("KITTY_WINDOW_ID") != "" || getenv("KONSOLE_VERSION") != "" ||
		strings.Contains(term, "kitty") || strings.Contains(term, "ghostty") {
		return "kitty"
	}
	if strings.Contains(term, "foot") || getenv("WT_SESSION") != "" {
		return "sixel"
	}
	if _, err := exec.LookPath("chafa"); err == nil {
		return "chafa"
	}
	return "none"
}

// previewBox is a target placement in character cells and pixels.
type previewBox struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

// previewSize fits a w x h image into the preview box keeping its aspect
// ratio. Images are never scaled up.
func previewSize(w, h int) previewBox {
	scale := math.Min(1, math.Min(float64(maxCols*cellWidth)/float64(w), float64(maxRows*cellHeight)/float64(h)))
	cols := int(math.Round(float64(w) * scale / cellWidth))
	rows := int(math.Round(float64(h) * scale / cellHeight))
	cols = min(max(cols, minCols), maxCols)
	rows = min(max(rows, minRows), maxRows)
	return previewBox{Cols: cols, Rows: rows, PixelWidth: cols * cellWidth, PixelHeight: rows * cellHeight}
}

// postImageNewlines keeps the prompt just below the rendered image.
func postImageNewlines(rows int) int {
	switch {
	case rows <= 2:
		return 1
	case rows <= 6:
		return 2
	case rows <= 20:
		return 3
	}
	return 4
}

// Preview renders img. It is a no-op for the "none" backend.
func (p *Previewer) Preview(img *raster.Image) error {
	if p == nil || p.backend == "none" || img == nil {
		return nil
	}
	if img.Width() == 0 || img.Height() == 0 {
		return errors.New("empty image")
	}
	box := previewSize(img.Width(), img.Height())
	small := imaging.Fit(img.ToNRGBA(), box.PixelWidth, box.PixelHeight, imaging.Box)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, small, imaging.PNG); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}

	var err error
	switch p.backend {
	case "inline":
		err = p.sendInline(buf.Bytes(), box)
	case "kitty":
		err = p.sendKitty(buf.Bytes(), box)
	case "sixel":
		if err = p.run(buf.Bytes(), "img2sixel", "-"); err != nil {
			debugf("img2sixel failed: %v", err)
			err = p.sendChafa(buf.Bytes(), box)
		}
	case "chafa":
		err = p.sendChafa(buf.Bytes(), box)
	default:
		return fmt.Errorf("unknown preview backend %q", p.backend)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(p.out, strings.Repeat("\n", postImageNewlines(box.Rows)))
	return nil
}

func (p *Previewer) sendInline(data []byte, box previewBox) error {
	enc := base64.StdEncoding.EncodeToString(data)
	_, err := fmt.Fprintf(p.out, "\x1b]1337;File=name=preview.png;inline=1;size=%d;width=%dpx;height=%dpx:%s\a",
		len(data), box.PixelWidth, box.PixelHeight, enc)
	return err
}

// sendKitty transmits and displays a PNG. The first chunk carries the
// control keys; later chunks carry only m=1 (more follows) or m=0 (last).
func (p *Previewer) sendKitty(data []byte, box previewBox) error {
	const chunkSize = 4096
	enc := base64.StdEncoding.EncodeToString(data)
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := 0
		if end < len(enc) {
			more = 1
		}
		var err error
		if pos == 0 {
			// a=T transmit+display, f=100 PNG, t=d direct, q=2 no replies
			_, err = fmt.Fprintf(p.out, "\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%d;%s\x1b\\", box.Cols, box.Rows, more, enc[pos:end])
		} else {
			_, err = fmt.Fprintf(p.out, "\x1b_Gm=%d;%s\x1b\\", more, enc[pos:end])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Previewer) sendChafa(data []byte, box previewBox) error {
	return p.run(data, "chafa", "--fill=block", "--symbols=block", "-s", fmt.Sprintf("%dx%d", box.Cols, box.Rows), "-")
}

// run pipes data into an external renderer writing to the preview output.
func (p *Previewer) run(data []byte, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = p.out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
