package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgrey/vibe/internal/config"
	"github.com/mgrey/vibe/internal/errors"
	"github.com/mgrey/vibe/internal/logging"
	"github.com/mgrey/vibe/internal/output"
	"github.com/mgrey/vibe/internal/tmux"
	"github.com/mgrey/vibe/internal/worktree"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [name]",
	Short: "Kill a session and remove its worktree",
	Long: `Kill a session and remove the worktree and branch it was working on.
Duo sibling branches are cleaned together. With --all, every prefixed
session is cleaned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

var (
	cleanAll        bool
	cleanKeepBranch bool
)

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "clean every session with the configured prefix")
	cleanCmd.Flags().BoolVar(&cleanKeepBranch, "keep-branch", false, "keep branches, remove only sessions and worktrees")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Close()

	client := tmux.NewClient(cfg.Tmux.Socket, logger)
	manager, err := worktree.New(".", logger)
	if err != nil {
		return err
	}

	var names []string
	switch {
	case cleanAll:
		sessions, err := client.ListSessions(cfg.Session.Prefix + "-")
		if err != nil {
			return err
		}
		for _, s := range sessions {
			names = append(names, strings.TrimPrefix(s.Name, cfg.Session.Prefix+"-"))
		}
		if len(names) == 0 {
			output.Info("Nothing to clean.")
			return nil
		}
	case len(args) == 1:
		names = []string{strings.TrimPrefix(args[0], cfg.Session.Prefix+"-")}
	default:
		return errors.New("a session name or --all is required")
	}

	for _, name := range names {
		if err := cleanOne(cfg, name, client, manager, logger); err != nil {
			return err
		}
	}
	return nil
}

// cleanOne tears down one task: its session, then the worktree on the task's
// branch plus any duo sibling branches.
func cleanOne(cfg *config.Config, name string, client *tmux.Client, manager *worktree.Manager, logger *logging.Logger) error {
	session := cfg.Session.Prefix + "-" + name
	if client.HasSession(session) {
		if err := client.KillSession(session); err != nil {
			return err
		}
		output.Success("Killed session %s", output.Session(session))
	}

	targets := []string{
		name,
		name + "-" + cfg.Agents.Primary,
		name + "-" + cfg.Agents.Secondary,
	}
	for _, branch := range targets {
		wt, found, err := manager.Find(branch)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		if err := manager.Remove(wt.Path, wt.Branch, !cleanKeepBranch); err != nil {
			return err
		}
		output.Success("Removed worktree %s (%s)", wt.Path, wt.Branch)
	}
	return nil
}
