// Package cmd wires the CLI: flag parsing, configuration, and the launch
// pipeline behind the root command.
package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mgrey/vibe/internal/agent"
	"github.com/mgrey/vibe/internal/config"
	"github.com/mgrey/vibe/internal/errors"
	"github.com/mgrey/vibe/internal/logging"
	"github.com/mgrey/vibe/internal/namer"
	"github.com/mgrey/vibe/internal/orchestrator"
	"github.com/mgrey/vibe/internal/output"
	"github.com/mgrey/vibe/internal/prompt"
	"github.com/mgrey/vibe/internal/tmux"
	"github.com/mgrey/vibe/internal/worktree"
)

var rootCmd = &cobra.Command{
	Use:   "vibe [prompt...]",
	Short: "Launch coding agents in tmux sessions backed by git worktrees",
	Long: `Vibe pairs a git worktree with a tmux session running one or two coding
agents. Each task gets an isolated branch and directory; launching the same
name twice attaches to the existing session instead of creating a new one.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runLaunch,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagSession    string
	flagDuo        bool
	flagAgent      string
	flagCodex      bool
	flagNoWorktree bool
	flagFrom       string
	flagNoAttach   bool
	flagProject    string
	flagStdin      bool
	flagFile       string
	flagEditor     bool
)

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		output.Error("%v", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default "+config.ConfigFile()+")")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.Flags().StringVarP(&flagSession, "session", "s", "", "explicit session/branch name")
	rootCmd.Flags().BoolVar(&flagDuo, "duo", false, "run two agents side by side on sibling branches")
	rootCmd.Flags().StringVar(&flagAgent, "agent", "", "agent to launch (overrides configured primary)")
	rootCmd.Flags().BoolVar(&flagCodex, "codex", false, "shorthand for --agent codex")
	rootCmd.Flags().BoolVar(&flagNoWorktree, "no-worktree", false, "run in the current directory, no worktree")
	rootCmd.Flags().StringVar(&flagFrom, "from", "", "base ref for new branches (skips the pre-launch pull)")
	rootCmd.Flags().BoolVar(&flagNoAttach, "no-attach", false, "create the session without attaching")
	rootCmd.Flags().StringVarP(&flagProject, "project", "P", "", "project directory (default: current directory)")
	rootCmd.Flags().BoolVarP(&flagStdin, "stdin", "i", false, "read the prompt from stdin")
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", "", "read the prompt from a file")
	rootCmd.Flags().BoolVarP(&flagEditor, "editor", "e", false, "compose the prompt in $EDITOR")
}

func initConfig() {
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/vibe")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("VIBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}

// loadConfig loads and validates the effective configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

// newLogger builds the file logger, or a nop logger when logging is off.
func newLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	dir := cfg.Logging.Dir
	if dir == "" {
		dir = filepath.Join(config.ConfigDir(), "logs")
	}
	logger, err := logging.NewLogger(dir, cfg.Logging.Level)
	if err != nil {
		output.Warning("Warning: could not open log file: %v", err)
		return logging.NopLogger()
	}
	return logger
}

func promptMode() prompt.Mode {
	switch {
	case flagStdin:
		return prompt.ModeStdin
	case flagFile != "":
		return prompt.ModeFile
	case flagEditor:
		return prompt.ModeEditor
	}
	return prompt.ModeArgs
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Close()

	if !tmux.Available() {
		return errors.NewMultiplexerError("tmux is required", errors.ErrTmuxUnavailable)
	}

	if flagCodex && flagAgent == "" {
		flagAgent = "codex"
	}
	if flagAgent != "" {
		cfg.Agents.Primary = flagAgent
	}

	taskPrompt, err := prompt.Capture(promptMode(), args, flagFile, "")
	if err != nil {
		return err
	}
	if taskPrompt == "" && flagSession == "" {
		return errors.New("a prompt or an explicit --session name is required")
	}

	projectDir := flagProject
	if projectDir == "" {
		projectDir = "."
	}
	manager, err := worktree.New(projectDir, logger)
	if err != nil {
		return err
	}

	client := tmux.NewClient(cfg.Tmux.Socket, logger)
	service := namer.NewOpenAIService(
		namer.FetchAPIKey(), cfg.Naming.BaseURL, cfg.Naming.Model, cfg.Naming.Timeout(), logger)
	resolver := namer.NewResolver(service, client, manager,
		cfg.Session.Prefix, cfg.Session.MaxNameLength, cfg.Session.MaxSuffixAttempts, logger)
	builder := agent.NewBuilder(cfg)

	orch := orchestrator.New(cfg, resolver, manager, client, builder, logger)
	mode := orchestrator.ModeSingle
	if flagDuo {
		mode = orchestrator.ModeDuo
	}

	result, err := orch.Launch(cmd.Context(), orchestrator.Request{
		Prompt:       taskPrompt,
		ExplicitName: flagSession,
		Mode:         mode,
		FastMode:     flagNoWorktree,
		BaseRef:      flagFrom,
		NoAttach:     flagNoAttach,
	})
	if err != nil {
		return err
	}

	if result.Resumed {
		output.Success("Attached to existing session %s", output.Session(result.Session))
		return nil
	}
	for i := range result.Branches {
		output.Success("Worktree ready: %s (%s)", result.Dirs[i], result.Branches[i])
	}
	output.Success("✓ Session %s is running", output.Session(result.Session))
	if flagNoAttach {
		output.Info("Attach with: vibe attach %s", result.Identity.Name)
	}
	return nil
}
