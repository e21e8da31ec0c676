package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Fepozopo/imgproc/pkg/command"
	"github.com/Fepozopo/imgproc/pkg/imageio"
	"github.com/Fepozopo/imgproc/pkg/raster"
	"github.com/Fepozopo/imgproc/pkg/sample"
)

func editUsage(w io.Writer) {
	fmt.Fprintln(w, "Commands available:")
	fmt.Fprintln(w, "  /  - select and apply a filter")
	fmt.Fprintln(w, "  o  - open another image")
	fmt.Fprintln(w, "  s  - save current image")
	fmt.Fprintln(w, "  i  - show image info")
	fmt.Fprintln(w, "  u  - check for updates")
	fmt.Fprintln(w, "  h  - show this help message")
	fmt.Fprintln(w, "  q  - quit")
}

// Session is an interactive editing loop over a single current image.
// Every applied filter replaces the current image with its result.
type Session struct {
	p       *Prompter
	out     io.Writer
	errOut  io.Writer
	store   *command.MetaStore
	decoder *imageio.Decoder
	sampler sample.Sampler
	// update runs the self-update check; replaceable for tests.
	update func() error
	// previewer, when set, renders the image after every change.
	previewer *Previewer

	cur     *raster.Image
	curPath string
}

// NewSession reads user input from in. Noise filters draw from sampler.
func NewSession(in io.Reader, out, errOut io.Writer, decoder *imageio.Decoder, sampler sample.Sampler) *Session {
	s := &Session{
		p:       NewPrompter(in, out),
		out:     out,
		errOut:  errOut,
		store:   command.NewMetaStore(command.Commands),
		decoder: decoder,
		sampler: sampler,
	}
	s.update = func() error { return CheckForUpdates(s.p) }
	return s
}

// Current returns the image being edited, or nil.
func (s *Session) Current() *raster.Image { return s.cur }

// Open replaces the current image with the file at path.
func (s *Session) Open(path string) error {
	img, format, err := s.decoder.Load(path)
	if err != nil {
		return err
	}
	s.cur, s.curPath = img, path
	debugf("opened %s (%s)", path, format)
	s.show()
	return nil
}

// show previews the current image and prints its summary.
func (s *Session) show() {
	if err := s.previewer.Preview(s.cur); err != nil {
		debugf("preview: %v", err)
	}
	fmt.Fprintln(s.out, imageio.Info(s.cur))
}

// Run processes one command per input line until q or end of input.
func (s *Session) Run() error {
	fmt.Fprintln(s.out, "Image Filter Editor")
	editUsage(s.out)
	for {
		line, err := s.p.PromptLine("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			continue
		}

		switch line[0] {
		case '/':
			if s.cur == nil {
				fmt.Fprintln(s.out, "No image loaded. Press 'o' to open an image first, or provide an image path as the first argument.")
				continue
			}
			name, err := s.selectCommand()
			if err != nil {
				fmt.Fprintln(s.out, err)
				continue
			}
			if err := s.applyCommand(name); err != nil {
				fmt.Fprintf(s.errOut, "apply command error: %v\n", err)
			}

		case 'o':
			path, _ := s.p.PromptPath("Enter path to image to open ('/' for fzf, empty to cancel): ")
			if path == "" {
				fmt.Fprintln(s.out, "open cancelled")
				continue
			}
			if err := s.Open(path); err != nil {
				fmt.Fprintf(s.errOut, "failed to read image %s: %v\n", path, err)
				continue
			}
			fmt.Fprintf(s.out, "Opened %s\n", path)

		case 's':
			if s.cur == nil {
				fmt.Fprintln(s.out, "No image loaded.")
				continue
			}
			out, _ := s.p.PromptLine("Enter output filename: ")
			if out == "" {
				fmt.Fprintln(s.out, "no filename provided")
				continue
			}
			if err := imageio.Save(out, s.cur); err != nil {
				fmt.Fprintf(s.errOut, "failed to write image: %v\n", err)
				continue
			}
			fmt.Fprintf(s.out, "Saved to %s\n", out)

		case 'i':
			if s.curPath != "" {
				fmt.Fprintf(s.out, "File: %s\n", s.curPath)
			}
			fmt.Fprintln(s.out, imageio.Info(s.cur))

		case 'u':
			if err := s.update(); err != nil {
				fmt.Fprintf(s.errOut, "update check error: %v\n", err)
			}

		case 'h':
			editUsage(s.out)

		case 'q':
			fmt.Fprintln(s.out, "Exiting...")
			return nil

		default:
			// ignore other keys
		}
	}
}

// selectCommand picks a filter with fzf when available, otherwise from a
// numbered list accepting a number, a full name or a unique prefix.
func (s *Session) selectCommand() (string, error) {
	if s.p.fzf {
		if name, err := SelectCommandWithFzf(s.store.Commands); err == nil && name != "" {
			return name, nil
		}
	}
	fmt.Fprintln(s.out, "Command selection:")
	for i, c := range s.store.Commands {
		fmt.Fprintf(s.out, "  %d) %s - %s\n", i+1, c.Name, c.Description)
	}
	selection, _ := s.p.PromptLine("Enter number or command name (leave empty to cancel): ")
	if selection == "" {
		return "", errors.New("selection cancelled")
	}
	return matchCommand(s.store.Commands, selection)
}

// matchCommand resolves a 1-based index, a case-insensitive name or a unique
// case-insensitive prefix.
func matchCommand(cmds []command.CommandSpec, selection string) (string, error) {
	if idx, err := strconv.Atoi(selection); err == nil {
		if idx < 1 || idx > len(cmds) {
			return "", errors.New("invalid selection")
		}
		return cmds[idx-1].Name, nil
	}
	sel := strings.ToLower(selection)
	var matches []string
	for _, c := range cmds {
		name := strings.ToLower(c.Name)
		if name == sel {
			return c.Name, nil
		}
		if strings.HasPrefix(name, sel) {
			matches = append(matches, c.Name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown command: %s", selection)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("ambiguous selection, candidates: %s", strings.Join(matches, ", "))
}

func (s *Session) applyCommand(name string) error {
	c, err := s.store.Spec(name)
	if err != nil {
		return err
	}
	tooltip, _ := s.store.GetTooltip(name)
	fmt.Fprintln(s.out, "\n"+tooltip+"\n")

	inputs := []*raster.Image{s.cur}
	if c.Inputs == 2 {
		path, _ := s.p.PromptPath("second image path ('/' for fzf): ")
		if path == "" {
			return errors.New("no second image given")
		}
		second, _, err := s.decoder.Load(path)
		if err != nil {
			return err
		}
		inputs = append(inputs, second)
	}

	rawArgs := make([]string, len(c.Args))
	for i, a := range c.Args {
		prompt := fmt.Sprintf("%s (%s): ", a.Name, a.Type)
		if a.Default != "" {
			prompt = fmt.Sprintf("%s (%s, default %s): ", a.Name, a.Type, a.Default)
		}
		val, perr := s.p.PromptLine(prompt)
		if perr != nil {
			fmt.Fprintf(s.errOut, "input error: %v\n", perr)
			val = ""
		}
		rawArgs[i] = val
	}

	normArgs, err := s.store.NormalizeArgs(name, rawArgs)
	if err != nil {
		return fmt.Errorf("input validation error: %w", err)
	}
	next, err := command.Apply(name, inputs, normArgs, s.sampler)
	if err != nil {
		return err
	}
	s.cur = next
	fmt.Fprintf(s.out, "Applied %s\n", name)
	s.show()
	return nil
}
