// Package worktree manages git worktrees for launched sessions.
//
// This file provides the command execution boundary. The concrete
// implementation shells out to git, while the interface allows tests to
// run against a fake without touching a real repository.
package worktree

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mgrey/vibe/internal/errors"
)

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes a command in dir and returns combined output.
	Run(dir string, name string, args ...string) ([]byte, error)
}

// CLICommandExecutor executes commands using os/exec.
type CLICommandExecutor struct{}

// NewCLICommandExecutor creates a new CLI command executor.
func NewCLICommandExecutor() *CLICommandExecutor {
	return &CLICommandExecutor{}
}

// Run executes a command in dir and returns combined output.
func (e *CLICommandExecutor) Run(dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// FindGitRoot finds the root of the git repository by traversing up from
// startDir. It returns the directory containing .git, which can be a
// directory (normal repo) or a file (worktree).
func FindGitRoot(startDir string) (string, error) {
	dir := startDir
	for {
		gitPath := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() || info.Mode().IsRegular() {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.NewWorktreeError("not a git repository", errors.ErrNotGitRepository).
				WithPath(startDir)
		}
		dir = parent
	}
}
