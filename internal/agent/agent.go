// Package agent builds the shell commands that launch coding agents inside
// session panes.
//
// The task context and prompt are staged in a temporary file and expanded by
// the shell at launch time, so arbitrarily long prompts survive the trip
// through tmux send-keys. The file removes itself once the agent has read it.
package agent

import (
	"fmt"
	"os"
	"strings"

	"github.com/mgrey/vibe/internal/config"
	"github.com/mgrey/vibe/internal/errors"
)

// Descriptor is a fully resolved agent launch: which pane it occupies and
// the exact shell command that starts it.
type Descriptor struct {
	Agent   string
	Title   string
	Dir     string
	Command string
}

// Builder constructs launch descriptors from the agent configuration.
type Builder struct {
	cfg *config.Config
}

// NewBuilder creates a Builder.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build produces the launch descriptor for agent in dir. contextText frames
// the task for the agent; prompt is the user's request and may be empty.
func (b *Builder) Build(agent, dir, contextText, prompt string) (Descriptor, error) {
	command, err := b.command(agent, contextText, prompt)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		Agent:   agent,
		Title:   agent,
		Dir:     dir,
		Command: command,
	}, nil
}

// command assembles "<bin> <flags> "$(cat <file>)" && rm -f <file>". The
// binary can be overridden per agent with VIBE_<AGENT>_BIN.
func (b *Builder) command(agent, contextText, prompt string) (string, error) {
	binary := os.Getenv("VIBE_" + strings.ToUpper(agent) + "_BIN")
	if binary == "" {
		binary = agent
	}

	message := contextText
	if prompt != "" {
		message = contextText + "\n\n" + prompt
	}

	file, err := os.CreateTemp("", "vibe-msg.")
	if err != nil {
		return "", errors.Wrap(err, "failed to stage agent message")
	}
	if _, err := file.WriteString(message); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", errors.Wrap(err, "failed to write agent message")
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", errors.Wrap(err, "failed to write agent message")
	}

	quoted := shellQuote(file.Name())
	parts := []string{binary}
	if flags := b.cfg.Agents.FlagsFor(agent); flags != "" {
		parts = append(parts, flags)
	}
	parts = append(parts, fmt.Sprintf("\"$(cat %s)\"", quoted))
	return strings.Join(parts, " ") + " && rm -f " + quoted, nil
}

// shellQuote wraps s in single quotes for POSIX shells.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// WorktreeContext frames a task running in an isolated worktree.
func WorktreeContext(branch, dir string) string {
	return fmt.Sprintf("You are working in a git worktree branch '%s' located at %s. "+
		"IMPORTANT: Do not write/edit/create files in the main repository root (outside this worktree). "+
		"You can write to this worktree directory and to other unrelated paths like ~/configs, "+
		"but avoid modifying the parent repository. You can read files from anywhere for context. "+
		"This ensures your changes are isolated to this feature branch.", branch, dir)
}

// CurrentDirContext frames a task running directly in the repository.
func CurrentDirContext(branch, dir string) string {
	return fmt.Sprintf("You are working in the current directory at %s on branch '%s'. "+
		"Please be mindful that any changes you make will affect the current working directory.", dir, branch)
}

// DuoSharedContext frames one of two agents collaborating in the same
// directory.
func DuoSharedContext(branch, dir, agent string) string {
	return fmt.Sprintf("You are working in the current directory at %s on branch '%s'. "+
		"Please be mindful that any changes you make will affect the current working directory. "+
		"A parallel agent is collaborating on the same prompt in another pane. "+
		"You are the %s agent.", dir, branch, agent)
}

// DuoWorktreeContext frames one of two agents working the same task on
// separate branches.
func DuoWorktreeContext(branch, dir, otherAgent, otherBranch string) string {
	return fmt.Sprintf("You are working in a git worktree branch '%s' located at %s. "+
		"IMPORTANT: Do not write/edit/create files in the main repository root (outside this worktree). "+
		"Another agent (%s) is simultaneously working on '%s'; coordinate by keeping your "+
		"changes isolated to this worktree.", branch, dir, otherAgent, otherBranch)
}
