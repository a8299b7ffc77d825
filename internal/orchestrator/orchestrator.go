// Package orchestrator drives a task request through identity resolution,
// worktree provisioning, session realization, and attach.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mgrey/vibe/internal/agent"
	"github.com/mgrey/vibe/internal/config"
	"github.com/mgrey/vibe/internal/errors"
	"github.com/mgrey/vibe/internal/logging"
	"github.com/mgrey/vibe/internal/namer"
	"github.com/mgrey/vibe/internal/tmux"
)

// Mode selects how many agents the session runs.
type Mode int

const (
	// ModeSingle runs one agent in one pane.
	ModeSingle Mode = iota
	// ModeDuo runs two agents side by side, each on its own branch unless
	// fast mode is set.
	ModeDuo
)

// State tracks how far a launch progressed. Each state is reached only
// after the previous one completed, so a failure report names the exact
// resource left behind.
type State int

const (
	StateIdle State = iota
	StateIdentityResolved
	StateWorktreeReady
	StateSessionRealized
	StateAttached
)

func (s State) String() string {
	switch s {
	case StateIdentityResolved:
		return "identity_resolved"
	case StateWorktreeReady:
		return "worktree_ready"
	case StateSessionRealized:
		return "session_realized"
	case StateAttached:
		return "attached"
	default:
		return "idle"
	}
}

// Request describes one task launch.
type Request struct {
	Prompt       string
	ExplicitName string
	Mode         Mode
	// FastMode skips worktree provisioning and runs agents directly in the
	// repository.
	FastMode bool
	// BaseRef overrides the configured base ref for new branches. Setting it
	// also skips the pre-launch pull.
	BaseRef string
	// NoAttach realizes the session without attaching the caller.
	NoAttach bool
}

// Result reports what a launch produced.
type Result struct {
	Identity namer.Identity
	Session  string
	Branches []string
	Dirs     []string
	// Resumed is set when an existing session was attached instead of
	// creating anything.
	Resumed bool
	State   State
}

// IdentityResolver resolves a task into a session/branch identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, explicitName, taskText string) (namer.Identity, error)
}

// WorktreeManager provisions and inspects git worktrees.
type WorktreeManager interface {
	RepoDir() string
	Ensure(branch, path, baseRef string) (created bool, err error)
	CurrentBranch(dir string) (string, error)
	HasUncommittedChanges(dir string) (bool, error)
	PullRebase(dir string) error
}

// Multiplexer realizes and attaches tmux sessions.
type Multiplexer interface {
	HasSession(name string) bool
	CreateSession(name string, layout tmux.Layout) error
	Attach(name string) error
}

// AgentBuilder produces agent launch descriptors.
type AgentBuilder interface {
	Build(agentName, dir, contextText, prompt string) (agent.Descriptor, error)
}

// Orchestrator composes the launch pipeline.
type Orchestrator struct {
	cfg       *config.Config
	resolver  IdentityResolver
	worktrees WorktreeManager
	mux       Multiplexer
	agents    AgentBuilder
	logger    *logging.Logger

	// runInitScript is swappable for tests.
	runInitScript func(dir, script string) error
}

// New creates an Orchestrator.
func New(cfg *config.Config, resolver IdentityResolver, worktrees WorktreeManager,
	mux Multiplexer, agents AgentBuilder, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Orchestrator{
		cfg:           cfg,
		resolver:      resolver,
		worktrees:     worktrees,
		mux:           mux,
		agents:        agents,
		logger:        logger,
		runInitScript: runBashScript,
	}
}

// Launch drives a request to an attached session. An existing session with
// the resolved name is attached as-is. Worktrees created along the way are
// never rolled back on later failures: they hold no work yet, are cheap,
// and make a retried launch resume instead of starting over.
func (o *Orchestrator) Launch(ctx context.Context, req Request) (*Result, error) {
	result := &Result{State: StateIdle}

	if req.Mode == ModeDuo && o.cfg.Agents.Primary == o.cfg.Agents.Secondary {
		return result, errors.New(fmt.Sprintf(
			"duo mode needs two different agents, primary and secondary are both %q", o.cfg.Agents.Primary))
	}

	identity, err := o.resolver.Resolve(ctx, req.ExplicitName, req.Prompt)
	if err != nil {
		return result, err
	}
	result.Identity = identity
	result.Session = identity.Session
	result.State = StateIdentityResolved
	logger := o.logger.WithSession(identity.Session)
	logger.Info("identity resolved", "name", identity.Name, "generated", identity.Generated)

	// Switch-to-existing semantics: an already realized session short
	// circuits the rest of the pipeline.
	if o.mux.HasSession(identity.Session) {
		logger.Info("session already exists, attaching")
		return o.resume(req, identity.Session, result)
	}

	o.pullBase(req, logger)

	descriptors, err := o.provision(req, identity, result, logger)
	if err != nil {
		return result, err
	}
	result.State = StateWorktreeReady

	var layout tmux.Layout
	if len(descriptors) == 1 {
		d := descriptors[0]
		layout = tmux.SinglePane(d.Dir, d.Title, d.Command)
	} else {
		for _, d := range descriptors {
			layout.Panes = append(layout.Panes, tmux.Pane{Dir: d.Dir, Title: d.Title, Command: d.Command})
		}
	}
	if err := o.mux.CreateSession(identity.Session, layout); err != nil {
		// A concurrent launch may have realized the session between the
		// existence check and new-session. The loser of that race attaches
		// instead of failing.
		if o.mux.HasSession(identity.Session) {
			logger.Info("session appeared concurrently, attaching")
			return o.resume(req, identity.Session, result)
		}
		// The controller already tore down any partial session. Worktrees
		// stay: the next launch with the same name picks them up.
		logger.Error("session creation failed, worktrees kept", "error", err)
		return result, err
	}
	result.State = StateSessionRealized
	logger.Info("session realized", "panes", len(layout.Panes))

	if req.NoAttach {
		return result, nil
	}
	if err := o.mux.Attach(identity.Session); err != nil {
		// The session is live and reachable by name; nothing to unwind.
		return result, err
	}
	result.State = StateAttached
	return result, nil
}

// resume attaches to a session some other launch already realized.
func (o *Orchestrator) resume(req Request, session string, result *Result) (*Result, error) {
	result.Resumed = true
	result.State = StateSessionRealized
	if req.NoAttach {
		return result, nil
	}
	if err := o.mux.Attach(session); err != nil {
		return result, err
	}
	result.State = StateAttached
	return result, nil
}

// provision prepares working directories and agent descriptors for the
// requested mode.
func (o *Orchestrator) provision(req Request, identity namer.Identity, result *Result, logger *logging.Logger) ([]agent.Descriptor, error) {
	if req.FastMode {
		return o.provisionFast(req, result, logger)
	}

	baseRef := req.BaseRef
	if baseRef == "" {
		baseRef = o.cfg.Worktree.BaseRef
	}
	worktreeDir := o.cfg.Worktree.ResolveWorktreeDir(o.worktrees.RepoDir())

	if req.Mode == ModeDuo {
		return o.provisionDuo(req, identity, baseRef, worktreeDir, result, logger)
	}

	path := filepath.Join(worktreeDir, identity.Name)
	created, err := o.worktrees.Ensure(identity.Name, path, baseRef)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("worktree ready", "branch", identity.Name, "path", path)
		o.initWorktree(path, logger)
	}
	result.Branches = []string{identity.Name}
	result.Dirs = []string{path}

	desc, err := o.agents.Build(o.cfg.Agents.Primary, path, agent.WorktreeContext(identity.Name, path), req.Prompt)
	if err != nil {
		return nil, err
	}
	return []agent.Descriptor{desc}, nil
}

// provisionFast satisfies the worktree state trivially with the repository
// root.
func (o *Orchestrator) provisionFast(req Request, result *Result, logger *logging.Logger) ([]agent.Descriptor, error) {
	root := o.worktrees.RepoDir()
	branch, err := o.worktrees.CurrentBranch(root)
	if err != nil {
		logger.Warn("could not determine current branch", "error", err)
		branch = "detached"
	}
	result.Branches = []string{branch}
	result.Dirs = []string{root}
	o.initWorktree(root, logger)

	if req.Mode == ModeDuo {
		first, second := o.cfg.Agents.Primary, o.cfg.Agents.Secondary
		var descriptors []agent.Descriptor
		for _, name := range []string{first, second} {
			desc, err := o.agents.Build(name, root, agent.DuoSharedContext(branch, root, name), req.Prompt)
			if err != nil {
				return nil, err
			}
			descriptors = append(descriptors, desc)
		}
		return descriptors, nil
	}

	desc, err := o.agents.Build(o.cfg.Agents.Primary, root, agent.CurrentDirContext(branch, root), req.Prompt)
	if err != nil {
		return nil, err
	}
	return []agent.Descriptor{desc}, nil
}

// provisionDuo creates one worktree per agent on sibling branches. Pane
// order follows agent configuration: primary left, secondary right.
func (o *Orchestrator) provisionDuo(req Request, identity namer.Identity, baseRef, worktreeDir string, result *Result, logger *logging.Logger) ([]agent.Descriptor, error) {
	first, second := o.cfg.Agents.Primary, o.cfg.Agents.Secondary
	branches := []string{
		fmt.Sprintf("%s-%s", identity.Name, first),
		fmt.Sprintf("%s-%s", identity.Name, second),
	}

	var dirs []string
	for _, branch := range branches {
		path := filepath.Join(worktreeDir, branch)
		created, err := o.worktrees.Ensure(branch, path, baseRef)
		if err != nil {
			// An already created sibling stays; it is reusable on retry.
			return nil, err
		}
		if created {
			logger.Info("worktree ready", "branch", branch, "path", path)
			o.initWorktree(path, logger)
		}
		dirs = append(dirs, path)
	}
	result.Branches = branches
	result.Dirs = dirs

	if err := WriteDuoPrompt(worktreeDir, identity.Name, req.Prompt); err != nil {
		logger.Warn("could not record duo prompt", "error", err)
	}

	contexts := []string{
		agent.DuoWorktreeContext(branches[0], dirs[0], second, branches[1]),
		agent.DuoWorktreeContext(branches[1], dirs[1], first, branches[0]),
	}
	agents := []string{first, second}
	var descriptors []agent.Descriptor
	for i := range agents {
		desc, err := o.agents.Build(agents[i], dirs[i], contexts[i], req.Prompt)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}

// pullBase updates the repository before branching. Best-effort: an offline
// remote or dirty tree must not block a launch. Requests pinned to an
// explicit base ref skip the pull entirely.
func (o *Orchestrator) pullBase(req Request, logger *logging.Logger) {
	if req.BaseRef != "" || !o.cfg.Worktree.PullOnLaunch {
		return
	}
	root := o.worktrees.RepoDir()
	if dirty, err := o.worktrees.HasUncommittedChanges(root); err == nil && dirty {
		logger.Warn("uncommitted changes in the base checkout, skipping pull")
		return
	}
	if err := o.worktrees.PullRebase(root); err != nil {
		logger.Warn("could not pull latest changes, continuing", "error", err)
	}
}

// initWorktree runs the repository's init script in dir if one exists.
// Failures are logged, never fatal.
func (o *Orchestrator) initWorktree(dir string, logger *logging.Logger) {
	script := filepath.Join(dir, o.cfg.Worktree.InitScript)
	if info, err := os.Stat(script); err != nil || info.IsDir() {
		return
	}
	logger.Info("running init script", "script", script)
	if err := o.runInitScript(dir, script); err != nil {
		logger.Warn("init script failed, continuing", "script", script, "error", err)
	}
}

func runBashScript(dir, script string) error {
	cmd := exec.Command("bash", script)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// WriteDuoPrompt records the prompt a duo pair was started with so a later
// review can recover it.
func WriteDuoPrompt(worktreeDir, base, prompt string) error {
	if prompt == "" {
		return nil
	}
	dir := filepath.Join(worktreeDir, ".duo-prompts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, base+".txt"), []byte(prompt), 0o644)
}

// ReadDuoPrompt returns the recorded prompt for a duo pair, or empty when
// none was recorded.
func ReadDuoPrompt(worktreeDir, base string) string {
	data, err := os.ReadFile(filepath.Join(worktreeDir, ".duo-prompts", base+".txt"))
	if err != nil {
		return ""
	}
	return string(data)
}
