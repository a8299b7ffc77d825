package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgrey/vibe/internal/output"
	"github.com/mgrey/vibe/internal/tmux"
	"github.com/mgrey/vibe/internal/worktree"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List live sessions and their worktrees",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Close()

	client := tmux.NewClient(cfg.Tmux.Socket, logger)
	sessions, err := client.ListSessions(cfg.Session.Prefix + "-")
	if err != nil {
		return err
	}

	byBranch := make(map[string]string)
	if manager, err := worktree.New(".", logger); err == nil {
		if worktrees, err := manager.List(); err == nil {
			for _, wt := range worktrees {
				byBranch[wt.Branch] = wt.Path
			}
		}
	}

	if len(sessions) == 0 {
		output.Info("No sessions running.")
		return nil
	}

	for _, s := range sessions {
		branch := strings.TrimPrefix(s.Name, cfg.Session.Prefix+"-")
		output.Info("%s", sessionLine(s.Name, s.Windows, byBranch[branch]))
	}
	return nil
}

// maxListWidth caps a rendered session line. Worktree paths routinely blow
// past it, so the line is truncated width-aware to keep the styled session
// name intact.
const maxListWidth = 100

func sessionLine(name string, windows int, path string) string {
	line := fmt.Sprintf("%s  (%d windows)", output.Session(name), windows)
	if path != "" {
		line += "  " + path
	}
	return output.TruncateANSI(line, maxListWidth)
}
