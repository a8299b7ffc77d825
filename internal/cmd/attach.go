package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgrey/vibe/internal/errors"
	"github.com/mgrey/vibe/internal/output"
	"github.com/mgrey/vibe/internal/tmux"
)

var attachCmd = &cobra.Command{
	Use:   "attach <name>",
	Short: "Attach to an existing session",
	Long:  `Attach to an existing session by name. The configured prefix is added automatically when missing.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)
}

func runAttach(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Close()

	client := tmux.NewClient(cfg.Tmux.Socket, logger)
	name := args[0]
	if !strings.HasPrefix(name, cfg.Session.Prefix+"-") {
		name = cfg.Session.Prefix + "-" + name
	}
	if !client.HasSession(name) {
		return errors.NewMultiplexerError("no such session", errors.ErrSessionAttachFailed).
			WithSession(name)
	}
	if err := client.Attach(name); err != nil {
		return err
	}
	output.Success("Attached to %s", output.Session(name))
	return nil
}
