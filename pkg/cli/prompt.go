package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads whole lines of user input from a single buffered reader so
// that no input is lost between prompts.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fzf enables "/" as a request to pick a file with fzf.
	fzf bool
}

// NewPrompter wraps in and out. fzf selection is enabled when the fzf binary
// is on PATH.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, fzf: fzfAvailable()}
}

// PromptLine displays a prompt and reads a full line of input from the user.
// The returned string is trimmed of surrounding whitespace (including the newline).
// A final line without a newline is returned; io.EOF is only reported when
// nothing was read.
func (p *Prompter) PromptLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptPath reads a full line and treats a lone "/" as a request to select a
// file with fzf. When fzf is unavailable or the selection is cancelled the
// prompt is shown again.
//
// Reading the entire line preserves paths containing spaces.
func (p *Prompter) PromptPath(prompt string) (string, error) {
	input, err := p.PromptLine(prompt)
	if err != nil {
		return "", err
	}
	if input != "/" {
		return input, nil
	}
	if p.fzf {
		if sel, selErr := SelectFileWithFzf("."); selErr == nil && sel != "" {
			fmt.Fprintf(p.out, " [fzf] %s\n", sel)
			return sel, nil
		}
	}
	// fzf not available or selection cancelled: fall back to typed prompt.
	return p.PromptLine(prompt)
}
