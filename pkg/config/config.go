// Package config reads runtime settings from optional .env files and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables understood by Load.
const (
	EnvDebug          = "IMGPROC_DEBUG"
	EnvSeed           = "IMGPROC_SEED"
	EnvAddr           = "IMGPROC_ADDR"
	EnvMemoryFraction = "IMGPROC_MEMORY_FRACTION"
	EnvPreview        = "IMGPROC_PREVIEW"
)

// PreviewBackends lists the accepted IMGPROC_PREVIEW values. "auto" picks a
// backend from the terminal environment and "none" disables previews.
var PreviewBackends = []string{"auto", "none", "inline", "kitty", "sixel", "chafa"}

// Config holds the settings shared by the CLI and the HTTP server.
type Config struct {
	// Debug enables filter debug logging on stderr.
	Debug bool
	// Seed seeds noise samplers. Zero picks a random seed per run.
	Seed uint32
	// Addr is the listen address of the HTTP server.
	Addr string
	// MemoryFraction caps decoded image buffers at this share of total
	// memory. Zero disables the cap.
	MemoryFraction float64
	// Preview selects how the edit session renders images in the terminal.
	Preview string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{Addr: ":8080", MemoryFraction: 0.5, Preview: "auto"}
}

// Load reads each file with godotenv, skipping files that do not exist, then
// builds a Config from the environment. Variables already set in the
// environment win over values from files. With no files, ".env" is tried.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Default()
	if v, ok := lookup(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s=%q: expected a boolean", EnvDebug, v)
		}
		cfg.Debug = b
	}
	if v, ok := lookup(EnvSeed); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("%s=%q: expected an unsigned 32-bit integer", EnvSeed, v)
		}
		cfg.Seed = uint32(n)
	}
	if v, ok := lookup(EnvAddr); ok {
		cfg.Addr = v
	}
	if v, ok := lookup(EnvMemoryFraction); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return Config{}, fmt.Errorf("%s=%q: expected a fraction between 0 and 1", EnvMemoryFraction, v)
		}
		cfg.MemoryFraction = f
	}
	if v, ok := lookup(EnvPreview); ok {
		v = strings.ToLower(v)
		if !slices.Contains(PreviewBackends, v) {
			return Config{}, fmt.Errorf("%s=%q: expected one of %s", EnvPreview, v, strings.Join(PreviewBackends, ", "))
		}
		cfg.Preview = v
	}
	return cfg, nil
}

// lookup treats blank values as unset.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
