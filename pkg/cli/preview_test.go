package cli

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/Fepozopo/imgproc/pkg/raster"
)

func envFunc(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDetectBackend(t *testing.T) {
	cases := []struct {
		env  map[string]string
		want string
	}{
		{map[string]string{"TERM_PROGRAM": "WezTerm"}, "inline"},
		{map[string]string{"ITERM_SESSION_ID": "w0t0p0"}, "inline"},
		{map[string]string{"TERM": "xterm-kitty"}, "kitty"},
		{map[string]string{"TERM": "xterm-ghostty"}, "kitty"},
		{map[string]string{"KITTY_WINDOW_ID": "1", "TERM": "xterm-256color"}, "kitty"},
		{map[string]string{"TERM": "foot"}, "sixel"},
		{map[string]string{"WT_SESSION": "abc"}, "sixel"},
	}
	for _, c := range cases {
		if got := detectBackend(envFunc(c.env)); got != c.want {
			t.Errorf("detectBackend(%v) = %s, want %s", c.env, got, c.want)
		}
	}
	// plain terminals depend on chafa being installed
	if got := detectBackend(envFunc(map[string]string{"TERM": "xterm-256color"})); got != "chafa" && got != "none" {
		t.Errorf("plain xterm backend = %s", got)
	}
	if got := NewPreviewer(&bytes.Buffer{}, "kitty", envFunc(nil)).Backend(); got != "kitty" {
		t.Errorf("explicit backend = %s", got)
	}
}

func TestPreviewSize(t *testing.T) {
	cases := []struct {
		w, h int
		want previewBox
	}{
		{2, 2, previewBox{6, 3, 48, 48}},
		{100, 100, previewBox{13, 6, 104, 96}},
		{1600, 800, previewBox{80, 20, 640, 320}},
		{100, 4000, previewBox{6, 40, 48, 640}},
	}
	for _, c := range cases {
		if got := previewSize(c.w, c.h); got != c.want {
			t.Errorf("previewSize(%d, %d) = %+v, want %+v", c.w, c.h, got, c.want)
		}
	}
}

func gradient(w, h int) *raster.Image {
	g := make([][]int, w)
	for x := range g {
		g[x] = make([]int, h)
		for y := range g[x] {
			g[x][y] = (x + y) % 256
		}
	}
	return raster.NewGray(g)
}

func TestPreviewInlineSendsDownscaledPNG(t *testing.T) {
	var out bytes.Buffer
	p := &Previewer{out: &out, backend: "inline"}
	if err := p.Preview(gradient(100, 100)); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	s := out.String()
	const head = "\x1b]1337;File=name=preview.png;inline=1;"
	if !strings.HasPrefix(s, head) || !strings.Contains(s, "width=104px;height=96px:") {
		t.Fatalf("unexpected header: %q", s[:min(len(s), 80)])
	}
	_, rest, _ := strings.Cut(s, "px:")
	payload, tail, ok := strings.Cut(rest, "\a")
	if !ok || tail != "\n\n" {
		t.Fatalf("missing terminator or padding, tail %q", tail)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("payload is not PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 96 || b.Dy() != 96 {
		t.Fatalf("preview size %v, want 96x96", b)
	}
}

func TestSendKittyChunks(t *testing.T) {
	var out bytes.Buffer
	p := &Previewer{out: &out, backend: "kitty"}
	// 7000 bytes encode to 9336 base64 characters, three chunks
	if err := p.sendKitty(make([]byte, 7000), previewBox{Cols: 10, Rows: 5}); err != nil {
		t.Fatalf("sendKitty: %v", err)
	}
	s := out.String()
	if n := strings.Count(s, "\x1b_G"); n != 3 {
		t.Fatalf("%d chunks, want 3", n)
	}
	if !strings.HasPrefix(s, "\x1b_Ga=T,f=100,t=d,q=2,c=10,r=5,m=1;") {
		t.Fatalf("first chunk header: %q", s[:40])
	}
	if strings.Count(s, "\x1b_Gm=1;") != 1 || strings.Count(s, "\x1b_Gm=0;") != 1 {
		t.Fatalf("continuation chunks malformed")
	}
}

func TestPreviewNoneAndErrors(t *testing.T) {
	var out bytes.Buffer
	if err := (&Previewer{out: &out, backend: "none"}).Preview(gradient(4, 4)); err != nil || out.Len() != 0 {
		t.Fatalf("none backend: err %v, wrote %d bytes", err, out.Len())
	}
	var nilPreviewer *Previewer
	if err := nilPreviewer.Preview(gradient(4, 4)); err != nil {
		t.Fatalf("nil previewer: %v", err)
	}
	if err := (&Previewer{out: &out, backend: "hologram"}).Preview(gradient(4, 4)); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if err := (&Previewer{out: &out, backend: "inline"}).Preview(raster.NewGray(nil)); err == nil {
		t.Fatalf("expected error for empty image")
	}
}
