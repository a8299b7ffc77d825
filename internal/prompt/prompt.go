// Package prompt captures the task description from args, stdin, a file, or
// an interactive editor session.
package prompt

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/mgrey/vibe/internal/errors"
)

// Mode selects where the prompt text comes from.
type Mode string

const (
	ModeArgs   Mode = "args"
	ModeStdin  Mode = "stdin"
	ModeFile   Mode = "file"
	ModeEditor Mode = "editor"
)

const editorTemplate = "# Enter your message below. Lines starting with # will be ignored.\n" +
	"# Save and exit when done.\n\n"

// Capture reads the prompt according to mode. args feeds ModeArgs, file
// feeds ModeFile, and editor names the editor binary for ModeEditor.
func Capture(mode Mode, args []string, file, editor string) (string, error) {
	switch mode {
	case ModeArgs:
		return strings.TrimSpace(strings.Join(args, " ")), nil
	case ModeStdin:
		return readStdin()
	case ModeFile:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read prompt file %s", file)
		}
		return string(data), nil
	case ModeEditor:
		return openEditor(editor)
	}
	return "", nil
}

func readStdin() (string, error) {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return "", errors.New("stdin mode requires piped input")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "failed to read stdin")
	}
	return string(data), nil
}

// openEditor runs the editor against a seeded temp file and returns its
// contents with comment lines stripped.
func openEditor(editor string) (string, error) {
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vim"
	}

	tmp, err := os.CreateTemp("", "vibe.")
	if err != nil {
		return "", errors.Wrap(err, "failed to create prompt file")
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(editorTemplate); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "failed to seed prompt file")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "failed to seed prompt file")
	}

	cmd := exec.Command(editor, editorArgs(editor, path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "editor %s failed", editor)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to read edited prompt")
	}
	return StripComments(string(edited)), nil
}

// editorArgs positions the cursor below the template for editors that
// support it.
func editorArgs(editor string, path string) []string {
	switch editor {
	case "vim", "nvim", "nano", "emacs":
		return []string{path, "+4"}
	case "helix", "hx":
		return []string{path + ":4:1"}
	}
	return []string{path}
}

// StripComments drops lines starting with #.
func StripComments(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
