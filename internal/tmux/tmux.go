// Package tmux wraps the terminal multiplexer behind a narrow controller so
// the orchestrator's state machine can be tested against a fake without
// spawning processes.
//
// All commands honor an optional socket name (-L) so vibe sessions can run
// on a dedicated tmux server, isolated from the user's default one.
package tmux

import (
	"os"
	"os/exec"
	"strings"
)

// Runner abstracts tmux command execution for testability.
type Runner interface {
	// Run executes tmux with the given arguments and returns trimmed
	// combined output.
	Run(args ...string) (string, error)
	// RunInteractive executes tmux attached to the caller's terminal.
	// Used for attach-session, which takes over the tty.
	RunInteractive(args ...string) error
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	// Socket is the tmux socket name (-L); empty uses the default server.
	Socket string
}

func (e *ExecRunner) args(args []string) []string {
	if e.Socket == "" {
		return args
	}
	return append([]string{"-L", e.Socket}, args...)
}

// Run executes tmux and returns its trimmed combined output.
func (e *ExecRunner) Run(args ...string) (string, error) {
	cmd := exec.Command("tmux", e.args(args)...)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// RunInteractive executes tmux with the caller's stdio, for commands that
// need the terminal (attach-session).
func (e *ExecRunner) RunInteractive(args ...string) error {
	cmd := exec.Command("tmux", e.args(args)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Available reports whether the tmux binary is installed.
func Available() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}
