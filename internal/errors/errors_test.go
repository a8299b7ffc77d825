package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIdentityError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *IdentityError
		want string
	}{
		{
			name: "message only",
			err:  NewIdentityError("no candidate found", nil),
			want: "identity error: no candidate found",
		},
		{
			name: "with cause",
			err:  NewIdentityError("disambiguation failed", ErrNameExhausted),
			want: "identity error: disambiguation failed: session name candidates exhausted",
		},
		{
			name: "with candidate and attempts",
			err: NewIdentityError("disambiguation failed", ErrNameExhausted).
				WithCandidate("fix-auth-3").WithAttempts(4),
			want: "identity error [candidate=fix-auth-3, attempts=4]: disambiguation failed: session name candidates exhausted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorktreeError_Is(t *testing.T) {
	err := NewWorktreeError("worktree add failed", ErrBranchConflict).WithBranch("fix-auth")

	if !errors.Is(err, ErrBranchConflict) {
		t.Error("expected errors.Is to match ErrBranchConflict")
	}
	if errors.Is(err, ErrGitTool) {
		t.Error("did not expect errors.Is to match ErrGitTool")
	}

	var wtErr *WorktreeError
	if !errors.As(err, &wtErr) {
		t.Fatal("expected errors.As to match *WorktreeError")
	}
	if wtErr.Branch != "fix-auth" {
		t.Errorf("Branch = %q, want %q", wtErr.Branch, "fix-auth")
	}
}

func TestWorktreeError_GitOutput(t *testing.T) {
	err := NewWorktreeError("worktree add failed", ErrGitTool).
		WithPath("/repo/worktrees/fix-auth").
		WithGitOutput("fatal: a branch named 'fix-auth' already exists\n")

	msg := err.Error()
	if !strings.Contains(msg, "path=/repo/worktrees/fix-auth") {
		t.Errorf("Error() missing path context: %q", msg)
	}
	if !strings.Contains(msg, "git output: fatal: a branch named 'fix-auth' already exists") {
		t.Errorf("Error() missing git output: %q", msg)
	}
}

func TestMultiplexerError_WrappedThroughFmt(t *testing.T) {
	inner := NewMultiplexerError("split 2 of 2 failed", ErrPaneSplitFailed).
		WithSession("vibe-fix-auth")
	outer := fmt.Errorf("creating session: %w", inner)

	if !errors.Is(outer, ErrPaneSplitFailed) {
		t.Error("expected sentinel to survive fmt.Errorf wrapping")
	}
	var muxErr *MultiplexerError
	if !errors.As(outer, &muxErr) {
		t.Fatal("expected errors.As to find *MultiplexerError")
	}
	if muxErr.Session != "vibe-fix-auth" {
		t.Errorf("Session = %q, want %q", muxErr.Session, "vibe-fix-auth")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{
			name: "race loser worktree error",
			err:  NewWorktreeError("branch created concurrently", ErrGitTool).WithRetryable(true),
			want: true,
		},
		{
			name: "attach failure",
			err:  NewMultiplexerError("attach failed", ErrSessionAttachFailed).WithRetryable(true),
			want: true,
		},
		{
			name: "non-retryable branch conflict",
			err:  NewWorktreeError("ambiguous branch", ErrBranchConflict),
			want: false,
		},
		{
			name: "naming timeout sentinel",
			err:  fmt.Errorf("resolve: %w", ErrNamingTimeout),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	err := Wrap(ErrGitTool, "listing worktrees")
	if got := err.Error(); got != "listing worktrees: git command failed" {
		t.Errorf("Wrap() = %q", got)
	}
	if !errors.Is(err, ErrGitTool) {
		t.Error("Wrap should preserve the sentinel")
	}
}
