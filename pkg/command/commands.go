// Package command: authoritative registry of filter engine commands.
//
// This file mirrors the commands dispatched by Apply in
// pkg/command/engine.go. Keep this list up-to-date when you add or
// modify commands so callers (CLI, HTTP server, help text) can read a
// single source of truth.

package command

import "github.com/Fepozopo/imgproc/pkg/filter"

// ArgSpec describes a single argument for a command. Min and Max, when set,
// are enforced by NormalizeArgs.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "float" or "probability"
	Required    bool
	Default     string // textual default, used when the argument is omitted
	Description string
	Min         *float64
	Max         *float64
}

// CommandSpec defines a single command, how many images it consumes and its
// expected arguments.
type CommandSpec struct {
	Name        string
	Inputs      int
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
}

func bound(v float64) *float64 { return &v }

var (
	maskWidth  = ArgSpec{"width", "int", true, "", "mask width in pixels", bound(1), bound(filter.MaxMaskSide)}
	maskHeight = ArgSpec{"height", "int", false, "", "mask height in pixels (defaults to width)", bound(1), bound(filter.MaxMaskSide)}
	gate       = ArgSpec{"probability", "probability", false, "1", "chance that a pixel is affected, 0..1 or a percentage", bound(0), bound(1)}
	level      = func(name, desc string) ArgSpec {
		return ArgSpec{name, "int", true, "", desc, bound(0), bound(255)}
	}
)

// Commands is the authoritative list of commands implemented by the filter engine.
// Keep this synchronized with Apply in pkg/command/engine.go.
var Commands = []CommandSpec{
	{
		Name:        "add",
		Inputs:      2,
		Args:        []ArgSpec{},
		Usage:       "add",
		Description: "Add two images channel by channel (values may exceed 255).",
	},
	{
		Name:        "subtract",
		Inputs:      2,
		Args:        []ArgSpec{},
		Usage:       "subtract",
		Description: "Subtract the second image from the first (values may go negative).",
	},
	{
		Name:        "multiply",
		Inputs:      1,
		Args:        []ArgSpec{{"scalar", "float", true, "", "multiplier", nil, nil}},
		Usage:       "multiply <scalar>",
		Description: "Multiply every channel by a scalar, truncating toward zero.",
	},
	{
		Name:        "compressLinear",
		Inputs:      1,
		Args:        []ArgSpec{},
		Usage:       "compressLinear",
		Description: "Stretch the gray range [min,max] linearly onto [0,255].",
	},
	{
		Name:        "compressLog",
		Inputs:      1,
		Args:        []ArgSpec{},
		Usage:       "compressLog",
		Description: "Logarithmic dynamic range compression of the gray channel.",
	},
	{
		Name:        "negative",
		Inputs:      1,
		Args:        []ArgSpec{},
		Usage:       "negative",
		Description: "Invert every channel (255 - v).",
	},
	{
		Name:        "threshold",
		Inputs:      1,
		Args:        []ArgSpec{{"cutoff", "int", true, "", "values below become 0, others 255", nil, nil}},
		Usage:       "threshold <cutoff>",
		Description: "Binarize every channel at a cutoff.",
	},
	{
		Name:   "contrast",
		Inputs: 1,
		Args: []ArgSpec{
			level("r1", "first input control level"),
			level("r2", "second input control level (>= r1)"),
			{"s1", "int", true, "", "output level for r1", nil, nil},
			{"s2", "int", true, "", "output level for r2", nil, nil},
		},
		Usage:       "contrast <r1> <r2> <s1> <s2>",
		Description: "Piecewise-linear contrast stretch through (r1,s1) and (r2,s2).",
	},
	{
		Name:        "equalize",
		Inputs:      1,
		Args:        []ArgSpec{},
		Usage:       "equalize",
		Description: "Histogram equalization of the gray channel.",
	},
	{
		Name:   "gaussianNoise",
		Inputs: 1,
		Args: []ArgSpec{
			{"spread", "float", true, "", "standard deviation", bound(0), nil},
			{"mean", "float", false, "0", "mean of the added noise", nil, nil},
			gate,
		},
		Usage:       "gaussianNoise <spread> [mean] [probability]",
		Description: "Add Gaussian noise to the gray channel.",
	},
	{
		Name:   "rayleighNoise",
		Inputs: 1,
		Args: []ArgSpec{
			{"xi", "float", true, "", "Rayleigh scale", nil, nil},
			gate,
		},
		Usage:       "rayleighNoise <xi> [probability]",
		Description: "Multiply the gray channel by Rayleigh noise.",
	},
	{
		Name:   "exponentialNoise",
		Inputs: 1,
		Args: []ArgSpec{
			{"lambda", "float", true, "", "exponential rate", nil, nil},
			gate,
		},
		Usage:       "exponentialNoise <lambda> [probability]",
		Description: "Multiply the gray channel by exponential noise.",
	},
	{
		Name:   "saltPepper",
		Inputs: 1,
		Args: []ArgSpec{
			{"p0", "probability", true, "", "draws at or below p0 turn black", bound(0), bound(1)},
			{"p1", "probability", true, "", "draws at or above p1 turn white", bound(0), bound(1)},
		},
		Usage:       "saltPepper <p0> <p1>",
		Description: "Salt and pepper impulse noise.",
	},
	{
		Name:        "average",
		Inputs:      1,
		Args:        []ArgSpec{maskWidth, maskHeight},
		Usage:       "average <width> [height]",
		Description: "Box blur with a width x height averaging mask.",
	},
	{
		Name:        "highPass",
		Inputs:      1,
		Args:        []ArgSpec{maskWidth, maskHeight},
		Usage:       "highPass <width> [height]",
		Description: "Sharpening mask: 8 at the center, -1 elsewhere.",
	},
	{
		Name:   "gaussianBlur",
		Inputs: 1,
		Args: []ArgSpec{
			maskWidth,
			maskHeight,
			{"spread", "float", false, "1", "Gaussian spread", nil, nil},
		},
		Usage:       "gaussianBlur <width> [height] [spread]",
		Description: "Blur with a normalized Gaussian mask.",
	},
	{
		Name:        "median",
		Inputs:      1,
		Args:        []ArgSpec{maskWidth, maskHeight},
		Usage:       "median <width> [height]",
		Description: "Median filter over a width x height window.",
	},
	{
		Name:        "roberts",
		Inputs:      1,
		Args:        []ArgSpec{},
		Usage:       "roberts",
		Description: "Roberts cross gradient magnitude.",
	},
	{
		Name:        "prewitt",
		Inputs:      1,
		Args:        []ArgSpec{},
		Usage:       "prewitt",
		Description: "Prewitt gradient magnitude.",
	},
	{
		Name:        "sobel",
		Inputs:      1,
		Args:        []ArgSpec{},
		Usage:       "sobel",
		Description: "Sobel gradient magnitude.",
	},
}

var byName = func() map[string]CommandSpec {
	m := make(map[string]CommandSpec, len(Commands))
	for _, c := range Commands {
		m[c.Name] = c
	}
	return m
}()

// Lookup returns the command registered under name.
func Lookup(name string) (CommandSpec, bool) {
	c, ok := byName[name]
	return c, ok
}
