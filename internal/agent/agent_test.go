package agent

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/mgrey/vibe/internal/config"
)

var tempFileRe = regexp.MustCompile(`\$\(cat '([^']+)'\)`)

func extractTempFile(t *testing.T, command string) string {
	t.Helper()
	m := tempFileRe.FindStringSubmatch(command)
	if m == nil {
		t.Fatalf("no temp file reference in command: %s", command)
	}
	return m[1]
}

func newTestBuilder() *Builder {
	cfg := config.Default()
	return NewBuilder(cfg)
}

func TestBuild_CommandShape(t *testing.T) {
	b := newTestBuilder()

	desc, err := b.Build("claude", "/wt/fix-auth", "context text", "fix the auth bug")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { os.Remove(extractTempFile(t, desc.Command)) })

	if desc.Agent != "claude" || desc.Title != "claude" || desc.Dir != "/wt/fix-auth" {
		t.Errorf("descriptor = %+v", desc)
	}
	if !strings.HasPrefix(desc.Command, "claude --dangerously-skip-permissions ") {
		t.Errorf("command = %q", desc.Command)
	}
	if !strings.Contains(desc.Command, `"$(cat '`) {
		t.Errorf("command does not expand the message file: %q", desc.Command)
	}
	if !strings.Contains(desc.Command, "&& rm -f '") {
		t.Errorf("command does not remove the message file: %q", desc.Command)
	}
}

func TestBuild_MessageFileContents(t *testing.T) {
	b := newTestBuilder()

	desc, err := b.Build("claude", "/wt/x", "the context", "the prompt")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	path := extractTempFile(t, desc.Command)
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading message file: %v", err)
	}
	if got := string(data); got != "the context\n\nthe prompt" {
		t.Errorf("message = %q", got)
	}
}

func TestBuild_NoPromptOmitsSeparator(t *testing.T) {
	b := newTestBuilder()

	desc, err := b.Build("claude", "/wt/x", "only context", "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	path := extractTempFile(t, desc.Command)
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "only context" {
		t.Errorf("message = %q", got)
	}
}

func TestBuild_CodexFlags(t *testing.T) {
	b := newTestBuilder()

	desc, err := b.Build("codex", "/wt/x", "ctx", "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { os.Remove(extractTempFile(t, desc.Command)) })

	if !strings.HasPrefix(desc.Command, "codex --dangerously-bypass-approvals-and-sandbox ") {
		t.Errorf("command = %q", desc.Command)
	}
}

func TestBuild_BinaryOverride(t *testing.T) {
	t.Setenv("VIBE_CLAUDE_BIN", "/opt/bin/claude-next")
	b := newTestBuilder()

	desc, err := b.Build("claude", "/wt/x", "ctx", "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { os.Remove(extractTempFile(t, desc.Command)) })

	if !strings.HasPrefix(desc.Command, "/opt/bin/claude-next ") {
		t.Errorf("command = %q", desc.Command)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/vibe-msg.123", "'/tmp/vibe-msg.123'"},
		{"", "''"},
		{"it's", `'it'\''s'`},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContexts(t *testing.T) {
	if got := WorktreeContext("fix-auth", "/wt/fix-auth"); !strings.Contains(got, "'fix-auth'") || !strings.Contains(got, "/wt/fix-auth") {
		t.Errorf("WorktreeContext = %q", got)
	}
	got := DuoWorktreeContext("fix-auth-claude", "/wt/a", "codex", "fix-auth-codex")
	if !strings.Contains(got, "codex") || !strings.Contains(got, "fix-auth-codex") {
		t.Errorf("DuoWorktreeContext = %q", got)
	}
}
