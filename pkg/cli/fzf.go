package cli

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Fepozopo/imgproc/pkg/command"
)

func fzfAvailable() bool {
	_, err := exec.LookPath("fzf")
	return err == nil
}

// SelectCommandWithFzf displays the commands in fzf and returns the selected command name.
func SelectCommandWithFzf(commands []command.CommandSpec) (string, error) {
	var b strings.Builder
	for _, c := range commands {
		// format as "name: description"
		fmt.Fprintf(&b, "%s: %s\n", c.Name, c.Description)
	}

	cmd := exec.Command("fzf", "--prompt=Filter> ")
	cmd.Stdin = strings.NewReader(b.String())

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running fzf: %w", err)
	}
	return parseFzfSelection(out.String())
}

// parseFzfSelection extracts the command name from a "name: description" line.
func parseFzfSelection(selection string) (string, error) {
	name, _, _ := strings.Cut(strings.TrimSpace(selection), ":")
	if name = strings.TrimSpace(name); name != "" {
		return name, nil
	}
	return "", fmt.Errorf("no command selected")
}

// SelectFileWithFzf launches fzf over the image files found under startDir
// and returns the selected path.
//
// The preview pane renders the highlighted file with chafa when it is
// installed and falls back to `file` otherwise. This shells out to `find`
// piped into `fzf`, so both must be on PATH.
func SelectFileWithFzf(startDir string) (string, error) {
	previewCmd := "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null || file {}"
	cmdStr := fmt.Sprintf(
		"find %s -type f \\( -iname '*.jpg' -o -iname '*.jpeg' -o -iname '*.png' -o -iname '*.gif' -o -iname '*.bmp' -o -iname '*.tif' -o -iname '*.tiff' -o -iname '*.webp' \\) | fzf --height 100%% --border --prompt='Files> ' --ansi --preview=%q --preview-window='right:60%%'",
		strconv.Quote(startDir),
		previewCmd,
	)
	cmd := exec.Command("bash", "-lc", cmdStr)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running fzf for files: %w", err)
	}

	selection := strings.TrimSpace(out.String())
	if selection == "" {
		return "", fmt.Errorf("no file selected")
	}
	return selection, nil
}
