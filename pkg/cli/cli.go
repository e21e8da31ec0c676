// Package cli implements the imgproc command line.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/blang/semver"

	"github.com/Fepozopo/imgproc/pkg/command"
	"github.com/Fepozopo/imgproc/pkg/config"
	"github.com/Fepozopo/imgproc/pkg/filter"
	"github.com/Fepozopo/imgproc/pkg/imageio"
	"github.com/Fepozopo/imgproc/pkg/raster"
	"github.com/Fepozopo/imgproc/pkg/sample"
	"github.com/Fepozopo/imgproc/pkg/server"
)

// Version is set at build time with
// -ldflags "-X github.com/Fepozopo/imgproc/pkg/cli.Version=x.y.z".
var Version = "0.1.0"

var debugLog = log.New(io.Discard, "", 0)

func debugf(format string, args ...interface{}) {
	debugLog.Printf(format, args...)
}

// errUsage marks a malformed command line; the usage text has been printed.
var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: imgproc <subcommand> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  list                                   list available filters")
	fmt.Fprintln(w, "  help <filter>                          describe a filter and its arguments")
	fmt.Fprintln(w, "  apply [-o out] [-seed n] <filter> <input> [input2] [args...]")
	fmt.Fprintln(w, "                                         apply a filter to image files")
	fmt.Fprintln(w, "  edit [image]                           interactive editing session")
	fmt.Fprintln(w, "  serve [-addr host:port]                start the HTTP API")
	fmt.Fprintln(w, "  version                                print the version")
	fmt.Fprintln(w, "  update                                 check for a newer release")
}

type app struct {
	cfg    config.Config
	store  *command.MetaStore
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Run executes the subcommand named by args[0] and returns the process exit
// status: 0 on success, 1 on failure and 2 on a usage error.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "imgproc: %v\n", err)
		return 1
	}
	if cfg.Debug {
		debugLog = log.New(stderr, "imgproc: ", log.LstdFlags)
		filter.SetLogger(debugLog)
	}

	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	a := &app{
		cfg:    cfg,
		store:  command.NewMetaStore(command.Commands),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	switch args[0] {
	case "list":
		err = a.list()
	case "help", "-h", "--help":
		err = a.help(args[1:])
	case "apply":
		err = a.apply(args[1:])
	case "edit":
		err = a.edit(args[1:])
	case "serve":
		err = a.serve(args[1:])
	case "version":
		err = a.version()
	case "update":
		err = CheckForUpdates(NewPrompter(stdin, stdout))
	default:
		fmt.Fprintf(stderr, "imgproc: unknown subcommand %q\n", args[0])
		usage(stderr)
		return 2
	}

	switch {
	case errors.Is(err, errUsage):
		return 2
	case err != nil:
		fmt.Fprintf(stderr, "imgproc %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func (a *app) list() error {
	for _, c := range a.store.Commands {
		fmt.Fprintf(a.stdout, "%-18s %s\n", c.Name, c.Description)
	}
	return nil
}

func (a *app) help(args []string) error {
	if len(args) == 0 {
		usage(a.stdout)
		return nil
	}
	c, err := a.store.Spec(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", c.Name, c.Description)
	fmt.Fprintf(a.stdout, "Usage: imgproc apply %s\n", c.Usage)
	fmt.Fprintln(a.stdout, command.GenerateTooltip(c))
	return nil
}

// apply runs one filter over image files and writes the result.
func (a *app) apply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	out := fs.String("o", "", "output file (default <input>-<filter><ext>)")
	seed := seedValue(a.cfg.Seed)
	fs.Var(&seed, "seed", "random seed for noise filters, 0 for random")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	rest := fs.Args()
	if len(rest) < 2 {
		fmt.Fprintln(a.stderr, "Usage: imgproc apply [-o out] [-seed n] <filter> <input> [input2] [args...]")
		return errUsage
	}

	name := rest[0]
	c, err := a.store.Spec(name)
	if err != nil {
		return err
	}
	if len(rest) < 1+c.Inputs {
		return fmt.Errorf("%s needs %d input images: %w", name, c.Inputs, command.ErrInputCount)
	}

	decoder := imageio.NewDecoder(a.cfg.MemoryFraction)
	paths := rest[1 : 1+c.Inputs]
	inputs := make([]*raster.Image, len(paths))
	for i, p := range paths {
		img, format, err := decoder.Load(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		debugf("loaded %s (%s, %dx%d)", p, format, img.Width(), img.Height())
		inputs[i] = img
	}

	result, err := command.Apply(name, inputs, rest[1+c.Inputs:], sample.New(uint32(seed)))
	if err != nil {
		return err
	}

	dest := *out
	if dest == "" {
		dest = defaultOutput(paths[0], name)
	}
	if err := imageio.Save(dest, result); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	fmt.Fprintf(a.stdout, "Saved to %s\n", dest)
	return nil
}

// seedValue is a flag.Value accepting the uint32 range only.
type seedValue uint32

func (s *seedValue) String() string { return strconv.FormatUint(uint64(*s), 10) }

func (s *seedValue) Set(raw string) error {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("seed must be an integer in [0, %d]", uint32(math.MaxUint32))
	}
	*s = seedValue(v)
	return nil
}

// defaultOutput derives photo-negative.png from photo.png.
func defaultOutput(input, name string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "-" + name + ext
}

func (a *app) edit(args []string) error {
	s := NewSession(a.stdin, a.stdout, a.stderr, imageio.NewDecoder(a.cfg.MemoryFraction), sample.New(a.cfg.Seed))
	s.previewer = NewPreviewer(a.stdout, a.cfg.Preview, os.Getenv)
	if len(args) > 0 {
		if err := s.Open(args[0]); err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
	}
	return s.Run()
}

func (a *app) serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	addr := fs.String("addr", a.cfg.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	cfg := a.cfg
	cfg.Addr = *addr
	fmt.Fprintf(a.stdout, "Listening on %s\n", cfg.Addr)
	return server.New(cfg).Run()
}

func (a *app) version() error {
	v, err := semver.Parse(strings.TrimPrefix(Version, "v"))
	if err != nil {
		return fmt.Errorf("invalid build version %q: %w", Version, err)
	}
	fmt.Fprintf(a.stdout, "imgproc %s\n", v)
	return nil
}
