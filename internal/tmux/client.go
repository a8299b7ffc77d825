package tmux

import (
	"fmt"
	"os"
	"strings"

	"github.com/mgrey/vibe/internal/errors"
	"github.com/mgrey/vibe/internal/logging"
)

// Client is the multiplexer controller. It observes and mutates tmux
// sessions but never owns them: every existence check is re-validated by
// tmux itself at the mutating call, since the session namespace is shared
// with other processes.
type Client struct {
	runner Runner
	logger *logging.Logger
	getenv func(string) string
}

// NewClient creates a Client that talks to tmux on the given socket
// (empty for the default server).
func NewClient(socket string, logger *logging.Logger) *Client {
	return newClient(&ExecRunner{Socket: socket}, logger)
}

// NewClientWithRunner creates a Client with a custom Runner. Tests use this
// to substitute a fake.
func NewClientWithRunner(r Runner, logger *logging.Logger) *Client {
	return newClient(r, logger)
}

func newClient(r Runner, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Client{runner: r, logger: logger, getenv: os.Getenv}
}

// InsideTmux reports whether the calling process is already running inside
// a tmux client. This decides between switch-client and attach-session.
func (c *Client) InsideTmux() bool {
	return c.getenv("TMUX") != ""
}

// HasSession reports whether a session with the given name exists.
func (c *Client) HasSession(name string) bool {
	_, err := c.runner.Run("has-session", "-t", name)
	return err == nil
}

// CreateSession realizes a layout as a new detached session: the first pane
// is created with the session, additional panes are horizontal splits in
// layout order. If any step fails the partially created session is killed
// before the error is reported, so no half-built session is left behind.
func (c *Client) CreateSession(name string, layout Layout) error {
	if len(layout.Panes) == 0 {
		return errors.NewMultiplexerError("layout has no panes", errors.ErrSessionCreateFailed).
			WithSession(name)
	}

	first := layout.Panes[0]
	if out, err := c.runner.Run("new-session", "-d", "-s", name, "-c", first.Dir); err != nil {
		return errors.NewMultiplexerError("new-session failed", errors.ErrSessionCreateFailed).
			WithSession(name).WithTmuxOutput(out)
	}
	c.logger.Debug("created session", "session", name, "dir", first.Dir)

	paneIDs := make([]string, 0, len(layout.Panes))
	firstPane, err := c.runner.Run("display-message", "-p", "-t", name, "#{pane_id}")
	if err != nil {
		c.kill(name)
		return errors.NewMultiplexerError("resolving first pane failed", errors.ErrSessionCreateFailed).
			WithSession(name)
	}
	paneIDs = append(paneIDs, firstPane)

	for _, pane := range layout.Panes[1:] {
		id, err := c.runner.Run("split-window", "-h", "-t", name, "-c", pane.Dir, "-P", "-F", "#{pane_id}")
		if err != nil {
			c.kill(name)
			return errors.NewMultiplexerError(
				fmt.Sprintf("split %d of %d failed", len(paneIDs)+1, len(layout.Panes)),
				errors.ErrPaneSplitFailed).WithSession(name).WithTmuxOutput(id)
		}
		paneIDs = append(paneIDs, id)
	}

	for i, pane := range layout.Panes {
		if pane.Title != "" {
			// Best effort: a missing title never fails the launch.
			if _, err := c.runner.Run("select-pane", "-T", pane.Title, "-t", paneIDs[i]); err != nil {
				c.logger.Warn("could not set pane title", "pane", paneIDs[i], "title", pane.Title)
			}
		}
		if pane.Command == "" {
			continue
		}
		if err := c.sendCommand(paneIDs[i], pane.Command); err != nil {
			c.kill(name)
			return errors.NewMultiplexerError("injecting launch command failed", errors.ErrSessionCreateFailed).
				WithSession(name)
		}
	}

	// Keep focus on the first (primary) pane so resumes look identical.
	if len(paneIDs) > 1 {
		_, _ = c.runner.Run("select-pane", "-t", paneIDs[0])
	}

	c.logger.Info("session realized", "session", name, "panes", len(paneIDs))
	return nil
}

// sendCommand injects a command into a pane: the text literally, then Enter.
func (c *Client) sendCommand(pane, command string) error {
	if _, err := c.runner.Run("send-keys", "-t", pane, "-l", "--", command); err != nil {
		return err
	}
	_, err := c.runner.Run("send-keys", "-t", pane, "Enter")
	return err
}

// Attach connects the caller to the named session: switch-client when
// already inside tmux, attach-session -d otherwise so stale clients stop
// constraining the session size. A failed attach leaves the session intact
// for a manual retry.
func (c *Client) Attach(name string) error {
	if c.InsideTmux() {
		if out, err := c.runner.Run("switch-client", "-t", name); err != nil {
			return errors.NewMultiplexerError("switch-client failed", errors.ErrSessionAttachFailed).
				WithSession(name).WithTmuxOutput(out).WithRetryable(true)
		}
		return nil
	}
	if err := c.runner.RunInteractive("attach-session", "-d", "-t", name); err != nil {
		return errors.NewMultiplexerError("attach-session failed", errors.ErrSessionAttachFailed).
			WithSession(name).WithRetryable(true)
	}
	return nil
}

// KillSession terminates the named session.
func (c *Client) KillSession(name string) error {
	if out, err := c.runner.Run("kill-session", "-t", name); err != nil {
		return errors.NewMultiplexerError("kill-session failed", errors.ErrSessionCreateFailed).
			WithSession(name).WithTmuxOutput(out)
	}
	return nil
}

// kill is the rollback path; errors are logged, not surfaced, because the
// original failure is the one worth reporting.
func (c *Client) kill(name string) {
	if _, err := c.runner.Run("kill-session", "-t", name); err != nil {
		c.logger.Warn("rollback kill-session failed", "session", name, "error", err.Error())
	}
}

// SessionInfo describes one live session for list output.
type SessionInfo struct {
	Name    string
	Windows int
}

// ListSessions returns sessions whose names start with prefix. A missing
// tmux server is reported as an empty list, not an error.
func (c *Client) ListSessions(prefix string) ([]SessionInfo, error) {
	out, err := c.runner.Run("list-sessions", "-F", "#{session_name} #{session_windows}")
	if err != nil {
		return nil, nil
	}

	var sessions []SessionInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || !strings.HasPrefix(fields[0], prefix) {
			continue
		}
		info := SessionInfo{Name: fields[0]}
		_, _ = fmt.Sscanf(fields[1], "%d", &info.Windows)
		sessions = append(sessions, info)
	}
	return sessions, nil
}
