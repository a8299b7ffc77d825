package namer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mgrey/vibe/internal/errors"
	"github.com/mgrey/vibe/internal/logging"
)

// Identity is the canonical name shared by the tmux session and the git
// branch. Immutable once resolved.
type Identity struct {
	// Name is the branch name.
	Name string
	// Session is the tmux session name, Name with the configured prefix.
	Session string
	// Generated records whether the name came from the naming service or
	// fallback rather than an explicit user choice.
	Generated bool
}

// SessionChecker reports whether a tmux session with the given name exists.
type SessionChecker interface {
	HasSession(name string) bool
}

// BranchChecker reports whether a local git branch exists.
type BranchChecker interface {
	BranchExists(branch string) bool
}

// Resolver turns a task description, or an explicit name, into an Identity.
// Generated names are checked against live sessions and branches and
// disambiguated with a numeric suffix when taken.
type Resolver struct {
	service     NameService
	sessions    SessionChecker
	branches    BranchChecker
	prefix      string
	maxLen      int
	maxAttempts int
	logger      *logging.Logger
}

// NewResolver creates a Resolver. service may be nil, in which case generated
// names always use the local fallback.
func NewResolver(service NameService, sessions SessionChecker, branches BranchChecker,
	prefix string, maxLen, maxAttempts int, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Resolver{
		service:     service,
		sessions:    sessions,
		branches:    branches,
		prefix:      prefix,
		maxLen:      maxLen,
		maxAttempts: maxAttempts,
		logger:      logger.WithState("identity"),
	}
}

// SessionName returns the tmux session name for a branch name.
func (r *Resolver) SessionName(name string) string {
	return r.prefix + "-" + name
}

// Resolve produces the Identity for a task. An explicit name is sanitized
// and returned as-is with no service call and no disambiguation: reusing an
// existing session or branch by name is the resume path, and unrelated
// conflicts surface from the worktree layer. A missing explicit name routes
// the task text through the naming service, falling back to a local slug on
// failure, then disambiguates against live sessions and branches.
func (r *Resolver) Resolve(ctx context.Context, explicitName, taskText string) (Identity, error) {
	if explicitName != "" {
		name := Sanitize(explicitName, r.maxLen)
		if name == "" {
			return Identity{}, errors.NewIdentityError("explicit name has no usable characters", errors.ErrEmptyName).
				WithCandidate(explicitName)
		}
		return Identity{Name: name, Session: r.SessionName(name)}, nil
	}

	candidate := r.generate(ctx, taskText)
	name, err := r.disambiguate(candidate)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Name: name, Session: r.SessionName(name), Generated: true}, nil
}

func (r *Resolver) generate(ctx context.Context, taskText string) string {
	if r.service != nil {
		raw, err := r.service.NameFor(ctx, taskText)
		if err == nil {
			if name := Sanitize(raw, r.maxLen); name != "" {
				return name
			}
			r.logger.Warn("naming service produced an unusable name", "raw", raw)
		} else {
			r.logger.Warn("naming service unavailable, using fallback", "error", err)
		}
	}
	return r.fallback()
}

// fallback derives a name without the naming service.
func (r *Resolver) fallback() string {
	return "task-" + uuid.NewString()[:8]
}

// disambiguate appends a numeric suffix while the candidate collides with an
// existing session or branch, bounded by maxAttempts.
func (r *Resolver) disambiguate(candidate string) (string, error) {
	name := candidate
	for attempt := 0; attempt <= r.maxAttempts; attempt++ {
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d", candidate, attempt+1)
		}
		if !r.taken(name) {
			if attempt > 0 {
				r.logger.Info("name collision resolved", "candidate", candidate, "name", name)
			}
			return name, nil
		}
	}
	return "", errors.NewIdentityError("could not find a free name", errors.ErrNameExhausted).
		WithCandidate(candidate).
		WithAttempts(r.maxAttempts + 1)
}

func (r *Resolver) taken(name string) bool {
	if r.sessions != nil && r.sessions.HasSession(r.SessionName(name)) {
		return true
	}
	if r.branches != nil && r.branches.BranchExists(name) {
		return true
	}
	return false
}
