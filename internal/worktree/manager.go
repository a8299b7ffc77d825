package worktree

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mgrey/vibe/internal/errors"
	"github.com/mgrey/vibe/internal/logging"
)

// Info describes a registered worktree.
type Info struct {
	Path   string
	Branch string
}

// Manager handles git worktree operations for a single repository.
type Manager struct {
	repoDir  string
	executor CommandExecutor
	logger   *logging.Logger
}

// New creates a Manager rooted at the git repository containing repoDir.
func New(repoDir string, logger *logging.Logger) (*Manager, error) {
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve repository path")
	}
	gitRoot, err := FindGitRoot(abs)
	if err != nil {
		return nil, err
	}
	return NewWithExecutor(gitRoot, NewCLICommandExecutor(), logger), nil
}

// NewWithExecutor creates a Manager with a custom executor.
// This is primarily useful for testing.
func NewWithExecutor(repoDir string, executor CommandExecutor, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Manager{
		repoDir:  repoDir,
		executor: executor,
		logger:   logger.WithState("worktree"),
	}
}

// RepoDir returns the repository root the manager operates on.
func (m *Manager) RepoDir() string {
	return m.repoDir
}

// ValidateBranchName checks that name is a well-formed git branch name.
func (m *Manager) ValidateBranchName(name string) error {
	output, err := m.executor.Run(m.repoDir, "git", "check-ref-format", "--branch", name)
	if err != nil {
		return errors.NewWorktreeError("invalid branch name", errors.ErrGitTool).
			WithBranch(name).
			WithGitOutput(string(output))
	}
	return nil
}

// BranchExists reports whether a local branch with the given name exists.
func (m *Manager) BranchExists(branch string) bool {
	_, err := m.executor.Run(m.repoDir, "git", "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// List returns all registered worktrees with their checked-out branches.
func (m *Manager) List() ([]Info, error) {
	output, err := m.executor.Run(m.repoDir, "git", "worktree", "list", "--porcelain")
	if err != nil {
		return nil, errors.NewWorktreeError("failed to list worktrees", errors.ErrGitTool).
			WithGitOutput(string(output))
	}

	var worktrees []Info
	var current Info
	for _, line := range strings.Split(string(output), "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			if current.Path != "" {
				worktrees = append(worktrees, current)
			}
			current = Info{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "branch "):
			ref := strings.TrimPrefix(line, "branch ")
			current.Branch = strings.TrimPrefix(ref, "refs/heads/")
		}
	}
	if current.Path != "" {
		worktrees = append(worktrees, current)
	}
	return worktrees, nil
}

// Find returns the registered worktree whose branch matches, if any.
func (m *Manager) Find(branch string) (Info, bool, error) {
	worktrees, err := m.List()
	if err != nil {
		return Info{}, false, err
	}
	for _, wt := range worktrees {
		if wt.Branch == branch {
			return wt, true, nil
		}
	}
	return Info{}, false, nil
}

// Ensure makes a worktree for branch exist at path, creating both the branch
// and the worktree from baseRef when needed. It is idempotent: an existing
// worktree already pairing branch and path is left untouched and reported
// with created=false.
func (m *Manager) Ensure(branch, path, baseRef string) (created bool, err error) {
	if err := m.ValidateBranchName(branch); err != nil {
		return false, err
	}

	worktrees, err := m.List()
	if err != nil {
		return false, err
	}

	for _, wt := range worktrees {
		if samePath(wt.Path, path) {
			if wt.Branch != branch {
				return false, errors.NewWorktreeError("path is checked out on another branch", errors.ErrWorktreePathConflict).
					WithBranch(branch).
					WithPath(path)
			}
			if _, statErr := os.Stat(wt.Path); statErr == nil {
				m.logger.Debug("worktree already exists", "branch", branch, "path", path)
				return false, nil
			}
			// Registered but deleted on disk. Prune the stale entry and recreate.
			m.logger.Warn("pruning stale worktree entry", "path", path)
			if pruneErr := m.prune(); pruneErr != nil {
				return false, pruneErr
			}
			return m.add(branch, path, baseRef, m.BranchExists(branch))
		}
		if wt.Branch == branch {
			return false, errors.NewWorktreeError("branch is checked out in another worktree", errors.ErrBranchConflict).
				WithBranch(branch).
				WithPath(wt.Path)
		}
	}

	if _, statErr := os.Stat(path); statErr == nil {
		return false, errors.NewWorktreeError("path exists but is not a registered worktree", errors.ErrWorktreePathConflict).
			WithBranch(branch).
			WithPath(path)
	}

	if m.BranchExists(branch) {
		return false, errors.NewWorktreeError("branch already exists without a worktree", errors.ErrBranchConflict).
			WithBranch(branch)
	}

	return m.add(branch, path, baseRef, false)
}

// add runs git worktree add, creating the branch unless it already exists.
func (m *Manager) add(branch, path, baseRef string, branchExists bool) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.NewWorktreeError("failed to create worktree parent directory", err).
			WithPath(path)
	}

	args := []string{"worktree", "add"}
	if branchExists {
		args = append(args, path, branch)
	} else {
		args = append(args, "-b", branch, path)
		if baseRef != "" {
			args = append(args, baseRef)
		}
	}

	output, err := m.executor.Run(m.repoDir, "git", args...)
	if err != nil {
		return false, errors.NewWorktreeError("failed to create worktree", errors.ErrGitTool).
			WithBranch(branch).
			WithPath(path).
			WithGitOutput(string(output))
	}

	m.logger.Info("worktree created", "branch", branch, "path", path, "base", baseRef)
	return true, nil
}

// Remove removes the worktree at path. When deleteBranch is true the branch
// is deleted as well; branch deletion failures are logged, not returned,
// since the worktree itself is already gone.
func (m *Manager) Remove(path, branch string, deleteBranch bool) error {
	output, err := m.executor.Run(m.repoDir, "git", "worktree", "remove", "--force", path)
	if err != nil {
		// Fall back to manual cleanup so a wedged worktree doesn't block removal.
		_ = os.RemoveAll(path)
		_ = m.prune()
		if _, statErr := os.Stat(path); statErr == nil {
			return errors.NewWorktreeError("failed to remove worktree", errors.ErrGitTool).
				WithPath(path).
				WithGitOutput(string(output))
		}
		m.logger.Warn("worktree removed via manual cleanup", "path", path)
	}

	if deleteBranch && branch != "" {
		if output, err := m.executor.Run(m.repoDir, "git", "branch", "-D", branch); err != nil {
			m.logger.Warn("failed to delete branch", "branch", branch, "output", strings.TrimSpace(string(output)))
		}
	}
	return nil
}

func (m *Manager) prune() error {
	output, err := m.executor.Run(m.repoDir, "git", "worktree", "prune")
	if err != nil {
		return errors.NewWorktreeError("failed to prune worktrees", errors.ErrGitTool).
			WithGitOutput(string(output))
	}
	return nil
}

// CurrentBranch returns the branch checked out in dir.
func (m *Manager) CurrentBranch(dir string) (string, error) {
	output, err := m.executor.Run(dir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.NewWorktreeError("failed to resolve current branch", errors.ErrGitTool).
			WithPath(dir).
			WithGitOutput(string(output))
	}
	return strings.TrimSpace(string(output)), nil
}

// HasUncommittedChanges reports whether dir has uncommitted changes.
func (m *Manager) HasUncommittedChanges(dir string) (bool, error) {
	output, err := m.executor.Run(dir, "git", "status", "--porcelain")
	if err != nil {
		return false, errors.NewWorktreeError("failed to check git status", errors.ErrGitTool).
			WithPath(dir).
			WithGitOutput(string(output))
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}

// PullRebase updates dir with git pull --rebase. Callers treat failures as
// advisory; a detached or offline repo should not block a launch.
func (m *Manager) PullRebase(dir string) error {
	output, err := m.executor.Run(dir, "git", "pull", "--rebase")
	if err != nil {
		return errors.NewWorktreeError("failed to pull with rebase", errors.ErrGitTool).
			WithPath(dir).
			WithGitOutput(string(output)).
			WithRetryable(true)
	}
	return nil
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	return filepath.Clean(absA) == filepath.Clean(absB)
}
