package cmd

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRootCommandWiring(t *testing.T) {
	if rootCmd.Use != "vibe [prompt...]" {
		t.Errorf("rootCmd.Use = %q", rootCmd.Use)
	}

	expected := []string{"list", "attach", "clean"}
	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		if !registered[name] {
			t.Errorf("subcommand %q is not registered", name)
		}
	}
}

func TestRootFlags(t *testing.T) {
	for _, name := range []string{
		"session", "duo", "agent", "codex", "no-worktree",
		"from", "no-attach", "project", "stdin", "file", "editor",
	} {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s is not defined", name)
		}
	}
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("persistent flag --config is not defined")
	}
}

func TestSessionLine(t *testing.T) {
	short := sessionLine("vibe-fix-auth", 2, "/repo/worktrees/fix-auth")
	if !strings.Contains(short, "(2 windows)") || !strings.Contains(short, "/repo/worktrees/fix-auth") {
		t.Errorf("sessionLine = %q", short)
	}

	long := sessionLine("vibe-fix-auth", 2, "/repo/worktrees/"+strings.Repeat("a", 200))
	if lipgloss.Width(long) > maxListWidth {
		t.Errorf("line width = %d, want <= %d", lipgloss.Width(long), maxListWidth)
	}
	if !strings.HasSuffix(long, "...") {
		t.Errorf("truncated line %q does not end in ellipsis", long)
	}
}

func TestPromptModeSelection(t *testing.T) {
	reset := func() {
		flagStdin = false
		flagFile = ""
		flagEditor = false
	}
	t.Cleanup(reset)

	reset()
	if got := promptMode(); got != "args" {
		t.Errorf("default mode = %q, want args", got)
	}

	flagStdin = true
	if got := promptMode(); got != "stdin" {
		t.Errorf("mode = %q, want stdin", got)
	}

	reset()
	flagFile = "prompt.txt"
	if got := promptMode(); got != "file" {
		t.Errorf("mode = %q, want file", got)
	}

	reset()
	flagEditor = true
	if got := promptMode(); got != "editor" {
		t.Errorf("mode = %q, want editor", got)
	}
}
