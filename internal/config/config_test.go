package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Session.Prefix != "vibe" {
		t.Errorf("Session.Prefix = %q, want %q", cfg.Session.Prefix, "vibe")
	}
	if cfg.Worktree.BaseRef != "HEAD" {
		t.Errorf("Worktree.BaseRef = %q, want %q", cfg.Worktree.BaseRef, "HEAD")
	}
	if cfg.Agents.Primary != "claude" || cfg.Agents.Secondary != "codex" {
		t.Errorf("default agents = %q/%q, want claude/codex", cfg.Agents.Primary, cfg.Agents.Secondary)
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("default config should validate cleanly, got: %v", ValidationErrors(errs))
	}
}

func TestFlagsFor(t *testing.T) {
	cfg := Default()

	if got := cfg.Agents.FlagsFor("codex"); got != "--dangerously-bypass-approvals-and-sandbox" {
		t.Errorf("FlagsFor(codex) = %q", got)
	}
	if got := cfg.Agents.FlagsFor("amp"); got != cfg.Agents.DefaultFlags {
		t.Errorf("FlagsFor(amp) = %q, want default flags", got)
	}
}

func TestResolveWorktreeDir(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		want string
	}{
		{name: "empty uses default sibling dir", dir: "", want: filepath.Join("/repo", "worktrees")},
		{name: "relative resolves against root", dir: "wt", want: filepath.Join("/repo", "wt")},
		{name: "absolute kept as-is", dir: "/fast-disk/wt", want: "/fast-disk/wt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WorktreeConfig{Dir: tt.dir}
			if got := w.ResolveWorktreeDir("/repo"); got != tt.want {
				t.Errorf("ResolveWorktreeDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "bad prefix",
			mutate: func(c *Config) { c.Session.Prefix = "1bad prefix" },
			field:  "session.prefix",
		},
		{
			name:   "name length too small",
			mutate: func(c *Config) { c.Session.MaxNameLength = 2 },
			field:  "session.max_name_length",
		},
		{
			name:   "zero suffix attempts",
			mutate: func(c *Config) { c.Session.MaxSuffixAttempts = 0 },
			field:  "session.max_suffix_attempts",
		},
		{
			name:   "zero naming timeout",
			mutate: func(c *Config) { c.Naming.TimeoutSeconds = 0 },
			field:  "naming.timeout_seconds",
		},
		{
			name:   "same primary and secondary agent",
			mutate: func(c *Config) { c.Agents.Secondary = c.Agents.Primary },
			field:  "agents.secondary",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
			field:  "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("expected validation errors, got none")
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error on field %q, got: %v", tt.field, ValidationErrors(errs))
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: 2, Message: "worse"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "2 validation errors") {
		t.Errorf("Error() = %q, want count header", msg)
	}
	if !strings.Contains(msg, "a: bad (got: 1)") {
		t.Errorf("Error() missing first entry: %q", msg)
	}
}
