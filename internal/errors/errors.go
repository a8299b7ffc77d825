// Package errors provides centralized error definitions for the vibe
// codebase. It defines domain-specific errors for the three subsystems that
// can fail a task launch (identity resolution, worktree provisioning, and
// tmux session realization) plus classification helpers so callers can
// decide what to retry and what to show the user.
//
// Creating errors:
//
//	err := errors.NewWorktreeError("branch exists outside a worktree", errors.ErrBranchConflict).
//		WithBranch("fix-auth")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrBranchConflict) { ... }
//
//	var wtErr *errors.WorktreeError
//	if errors.As(err, &wtErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience. Callers import only
// this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Identity-related sentinel errors
var (
	// ErrNameExhausted indicates that collision disambiguation ran out of
	// suffix attempts without finding a free name.
	ErrNameExhausted = New("session name candidates exhausted")
	// ErrNamingTimeout indicates that the naming service did not answer in time.
	ErrNamingTimeout = New("naming service timed out")
	// ErrNamingService indicates a non-timeout naming service failure.
	ErrNamingService = New("naming service failed")
	// ErrEmptyName indicates that sanitization produced an empty identifier.
	ErrEmptyName = New("sanitized name is empty")
)

// Worktree-related sentinel errors
var (
	// ErrNotGitRepository indicates that the directory is not a git repository.
	ErrNotGitRepository = New("not a git repository")
	// ErrBranchConflict indicates that a branch with the target name exists
	// but is not attached to any known worktree (ambiguous external state).
	ErrBranchConflict = New("branch exists outside a worktree")
	// ErrWorktreePathConflict indicates that the target worktree path is
	// occupied by something that is not the expected worktree.
	ErrWorktreePathConflict = New("worktree path conflict")
	// ErrGitTool indicates a git invocation failure.
	ErrGitTool = New("git command failed")
)

// Multiplexer-related sentinel errors
var (
	// ErrSessionCreateFailed indicates that tmux session creation failed.
	ErrSessionCreateFailed = New("session creation failed")
	// ErrSessionAttachFailed indicates that attach/switch-client failed.
	ErrSessionAttachFailed = New("session attach failed")
	// ErrPaneSplitFailed indicates that a pane split failed mid-layout.
	ErrPaneSplitFailed = New("pane split failed")
	// ErrTmuxUnavailable indicates that the tmux binary is not installed.
	ErrTmuxUnavailable = New("tmux not found")
)

// baseError provides common functionality for the domain error types.
type baseError struct {
	message   string
	cause     error
	retryable bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// IdentityError represents a failure to derive a session identity.
//
// Example:
//
//	err := errors.NewIdentityError("no free name after suffixing", errors.ErrNameExhausted).
//		WithCandidate("fix-auth-3")
type IdentityError struct {
	baseError
	Candidate string
	Attempts  int
}

// NewIdentityError creates a new IdentityError.
func NewIdentityError(message string, cause error) *IdentityError {
	return &IdentityError{baseError: baseError{message: message, cause: cause}}
}

// WithCandidate records the last candidate name that was tried.
func (e *IdentityError) WithCandidate(name string) *IdentityError {
	e.Candidate = name
	return e
}

// WithAttempts records how many disambiguation attempts were made.
func (e *IdentityError) WithAttempts(n int) *IdentityError {
	e.Attempts = n
	return e
}

// Error returns the formatted error message.
func (e *IdentityError) Error() string {
	var parts []string
	if e.Candidate != "" {
		parts = append(parts, fmt.Sprintf("candidate=%s", e.Candidate))
	}
	if e.Attempts > 0 {
		parts = append(parts, fmt.Sprintf("attempts=%d", e.Attempts))
	}
	return formatPrefixed("identity error", parts, e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *IdentityError) Is(target error) bool {
	if _, ok := target.(*IdentityError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// WorktreeError represents a failure during worktree provisioning or removal.
//
// Example:
//
//	err := errors.NewWorktreeError("worktree add failed", errors.ErrGitTool).
//		WithBranch("fix-auth").WithPath("/repo/worktrees/fix-auth").WithGitOutput(out)
type WorktreeError struct {
	baseError
	Branch    string
	Path      string
	GitOutput string
}

// NewWorktreeError creates a new WorktreeError.
func NewWorktreeError(message string, cause error) *WorktreeError {
	return &WorktreeError{baseError: baseError{message: message, cause: cause}}
}

// WithBranch adds a branch name to the error context.
func (e *WorktreeError) WithBranch(branch string) *WorktreeError {
	e.Branch = branch
	return e
}

// WithPath adds a worktree path to the error context.
func (e *WorktreeError) WithPath(path string) *WorktreeError {
	e.Path = path
	return e
}

// WithGitOutput adds captured git command output to the error context.
func (e *WorktreeError) WithGitOutput(output string) *WorktreeError {
	e.GitOutput = strings.TrimSpace(output)
	return e
}

// WithRetryable marks the error as retryable. Losing a creation race is
// retryable: re-resolving will find the now-existing worktree.
func (e *WorktreeError) WithRetryable(r bool) *WorktreeError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *WorktreeError) Error() string {
	var parts []string
	if e.Branch != "" {
		parts = append(parts, fmt.Sprintf("branch=%s", e.Branch))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	msg := formatPrefixed("worktree error", parts, e.message, e.cause)
	if e.GitOutput != "" {
		msg = fmt.Sprintf("%s\ngit output: %s", msg, e.GitOutput)
	}
	return msg
}

// Is checks if this error matches the target.
func (e *WorktreeError) Is(target error) bool {
	if _, ok := target.(*WorktreeError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// MultiplexerError represents a tmux operation failure.
//
// Example:
//
//	err := errors.NewMultiplexerError("split 2 of 2 failed", errors.ErrPaneSplitFailed).
//		WithSession("vibe-fix-auth")
type MultiplexerError struct {
	baseError
	Session    string
	TmuxOutput string
}

// NewMultiplexerError creates a new MultiplexerError.
func NewMultiplexerError(message string, cause error) *MultiplexerError {
	return &MultiplexerError{baseError: baseError{message: message, cause: cause}}
}

// WithSession adds a tmux session name to the error context.
func (e *MultiplexerError) WithSession(name string) *MultiplexerError {
	e.Session = name
	return e
}

// WithTmuxOutput adds captured tmux command output to the error context.
func (e *MultiplexerError) WithTmuxOutput(output string) *MultiplexerError {
	e.TmuxOutput = strings.TrimSpace(output)
	return e
}

// WithRetryable marks the error as retryable. Attach failures are retryable
// because the session survives them.
func (e *MultiplexerError) WithRetryable(r bool) *MultiplexerError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *MultiplexerError) Error() string {
	var parts []string
	if e.Session != "" {
		parts = append(parts, fmt.Sprintf("session=%s", e.Session))
	}
	msg := formatPrefixed("multiplexer error", parts, e.message, e.cause)
	if e.TmuxOutput != "" {
		msg = fmt.Sprintf("%s\ntmux output: %s", msg, e.TmuxOutput)
	}
	return msg
}

// Is checks if this error matches the target.
func (e *MultiplexerError) Is(target error) bool {
	if _, ok := target.(*MultiplexerError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// formatPrefixed renders "prefix [k=v, ...]: message: cause".
func formatPrefixed(prefix string, parts []string, message string, cause error) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, message, cause)
	}
	return fmt.Sprintf("%s: %s", prefix, message)
}

// retryer is implemented by domain errors that carry a retryable flag.
type retryer interface {
	error
	IsRetryable() bool
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsRetryable reports whether the operation that produced err may succeed if
// tried again. Race-loser worktree errors and attach failures qualify;
// everything else requires user action first.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var r retryer
	if As(err, &r) {
		return r.IsRetryable()
	}
	return Is(err, ErrNamingTimeout)
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
