package cli

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fepozopo/imgproc/pkg/imageio"
	"github.com/Fepozopo/imgproc/pkg/raster"
)

// writeGray saves a w x h image filled with v and returns its path.
func writeGray(t *testing.T, dir, name string, w, h, v int) string {
	t.Helper()
	g := make([][]int, w)
	for x := range g {
		g[x] = make([]int, h)
		for y := range g[x] {
			g[x][y] = v
		}
	}
	path := filepath.Join(dir, name)
	if err := imageio.Save(path, raster.NewGray(g)); err != nil {
		t.Fatalf("Save %s: %v", path, err)
	}
	return path
}

func loadGray(t *testing.T, path string) *raster.Image {
	t.Helper()
	img, _, err := imageio.NewDecoder(0).Load(path)
	if err != nil {
		t.Fatalf("Load %s: %v", path, err)
	}
	return img
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestListShowsEveryFilter(t *testing.T) {
	code, out, _ := run("list")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	for _, name := range []string{"add", "equalize", "saltPepper", "sobel"} {
		if !strings.Contains(out, name) {
			t.Errorf("list output missing %s", name)
		}
	}
}

func TestHelp(t *testing.T) {
	code, out, _ := run("help", "gaussianNoise")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out, "spread") || !strings.Contains(out, "probability") {
		t.Fatalf("help output = %q", out)
	}
	if code, _, errOut := run("help", "nope"); code != 1 || !strings.Contains(errOut, "nope") {
		t.Fatalf("unknown help: exit %d, stderr %q", code, errOut)
	}
}

func TestApplyWritesDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeGray(t, dir, "in.png", 4, 4, 100)

	code, out, errOut := run("apply", "multiply", in, "2")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	want := filepath.Join(dir, "in-multiply.png")
	if !strings.Contains(out, want) {
		t.Fatalf("stdout = %q", out)
	}
	if g := loadGray(t, want).Gray(3, 3); g != 200 {
		t.Fatalf("gray = %d, want 200", g)
	}
}

func TestApplyBinaryWithOutputFlag(t *testing.T) {
	dir := t.TempDir()
	a := writeGray(t, dir, "a.png", 3, 3, 100)
	b := writeGray(t, dir, "b.png", 3, 3, 30)
	dest := filepath.Join(dir, "diff.png")

	if code, _, errOut := run("apply", "-o", dest, "subtract", a, b); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if g := loadGray(t, dest).Gray(1, 1); g != 70 {
		t.Fatalf("gray = %d, want 70", g)
	}
}

func TestApplySeedIsReproducible(t *testing.T) {
	dir := t.TempDir()
	in := writeGray(t, dir, "in.png", 8, 8, 128)
	first := filepath.Join(dir, "first.png")
	second := filepath.Join(dir, "second.png")
	for _, dest := range []string{first, second} {
		if code, _, errOut := run("apply", "-seed", "9", "-o", dest, "saltPepper", in, "0.3", "0.7"); code != 0 {
			t.Fatalf("exit %d: %s", code, errOut)
		}
	}
	a, b := loadGray(t, first), loadGray(t, second)
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			if a.Gray(x, y) != b.Gray(x, y) {
				t.Fatalf("pixel (%d,%d) differs: %d vs %d", x, y, a.Gray(x, y), b.Gray(x, y))
			}
		}
	}
}

func TestApplyErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeGray(t, dir, "in.png", 3, 3, 10)
	cases := []struct {
		name string
		args []string
		code int
	}{
		{"no arguments", []string{"apply"}, 2},
		{"unknown filter", []string{"apply", "blur", in}, 1},
		{"missing second input", []string{"apply", "add", in}, 1},
		{"missing file", []string{"apply", "negative", filepath.Join(dir, "none.png")}, 1},
		{"bad argument", []string{"apply", "threshold", in, "high"}, 1},
		{"bad flag", []string{"apply", "-z", "negative", in}, 2},
		{"seed too large", []string{"apply", "-seed", "4294967296", "negative", in}, 2},
		{"negative seed", []string{"apply", "-seed", "-1", "negative", in}, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if code, _, _ := run(c.args...); code != c.code {
				t.Fatalf("exit %d, want %d", code, c.code)
			}
		})
	}
}

func TestSeedValueRange(t *testing.T) {
	var s seedValue
	if err := s.Set("4294967295"); err != nil || s != math.MaxUint32 {
		t.Fatalf("max seed: %v, got %d", err, s)
	}
	for _, raw := range []string{"4294967296", "-1", "1e3", ""} {
		if err := s.Set(raw); err == nil {
			t.Errorf("seed %q accepted", raw)
		}
	}
	if s.String() != "4294967295" {
		t.Fatalf("failed Set changed the value to %s", s.String())
	}
}

func TestVersionAndUnknownSubcommand(t *testing.T) {
	code, out, _ := run("version")
	if code != 0 || strings.TrimSpace(out) != "imgproc "+Version {
		t.Fatalf("exit %d, out %q", code, out)
	}

	old := Version
	Version = "not-a-version"
	defer func() { Version = old }()
	if code, _, _ := run("version"); code != 1 {
		t.Fatalf("invalid version exit %d", code)
	}

	if code, _, _ := run("frobnicate"); code != 2 {
		t.Fatalf("unknown subcommand exit %d", code)
	}
	if code, _, _ := run(); code != 2 {
		t.Fatalf("no subcommand exit %d", code)
	}
}

func TestDefaultOutput(t *testing.T) {
	cases := map[string]string{
		"photo.png":         "photo-sobel.png",
		"dir/scan.tiff":     "dir/scan-sobel.tiff",
		"noext":             "noext-sobel",
		"a.b/with.dots.jpg": "a.b/with.dots-sobel.jpg",
	}
	for in, want := range cases {
		if got := defaultOutput(in, "sobel"); got != want {
			t.Errorf("defaultOutput(%q) = %q, want %q", in, got, want)
		}
	}
}
