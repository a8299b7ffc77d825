package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete vibe configuration
type Config struct {
	Session  SessionConfig  `mapstructure:"session"`
	Worktree WorktreeConfig `mapstructure:"worktree"`
	Naming   NamingConfig   `mapstructure:"naming"`
	Agents   AgentsConfig   `mapstructure:"agents"`
	Tmux     TmuxConfig     `mapstructure:"tmux"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SessionConfig controls session naming
type SessionConfig struct {
	// Prefix is prepended to every session name (default: "vibe")
	// so `vibe list` can tell its sessions apart from unrelated ones.
	Prefix string `mapstructure:"prefix"`
	// MaxNameLength bounds the derived session/branch identifier length
	MaxNameLength int `mapstructure:"max_name_length"`
	// MaxSuffixAttempts bounds collision disambiguation before giving up
	MaxSuffixAttempts int `mapstructure:"max_suffix_attempts"`
}

// WorktreeConfig controls worktree placement and provisioning
type WorktreeConfig struct {
	// Dir is the directory where worktrees are created.
	// Relative paths resolve against the repository root.
	// Supports ~ for home directory expansion. (default: "worktrees")
	Dir string `mapstructure:"dir"`
	// BaseRef is the default ref new branches start from (default: "HEAD")
	BaseRef string `mapstructure:"base_ref"`
	// PullOnLaunch runs a best-effort `git pull --rebase` before provisioning
	PullOnLaunch bool `mapstructure:"pull_on_launch"`
	// InitScript is a path relative to a fresh worktree that is executed
	// after creation when present (default: "scripts/init.sh")
	InitScript string `mapstructure:"init_script"`
}

// NamingConfig controls the remote branch-name generation service
type NamingConfig struct {
	// Model is the chat model used for name generation
	Model string `mapstructure:"model"`
	// BaseURL overrides the API endpoint (also via VIBE_OPENAI_API_BASE)
	BaseURL string `mapstructure:"base_url"`
	// TimeoutSeconds bounds each naming request; on expiry the local
	// fallback slug is used instead
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// AgentsConfig controls which agents run and how they are invoked
type AgentsConfig struct {
	// Primary is the default agent (default: "claude")
	Primary string `mapstructure:"primary"`
	// Secondary is the second pane's agent in dual mode (default: "codex")
	Secondary string `mapstructure:"secondary"`
	// Flags maps agent name to the extra flags passed on launch.
	// Unknown agents fall back to DefaultFlags.
	Flags map[string]string `mapstructure:"flags"`
	// DefaultFlags is used for agents without an explicit Flags entry
	DefaultFlags string `mapstructure:"default_flags"`
}

// TmuxConfig controls how tmux is reached
type TmuxConfig struct {
	// Socket is the tmux socket name (-L); empty uses the default server.
	// Also settable via VIBE_TMUX_SOCKET.
	Socket string `mapstructure:"socket"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	// Enabled controls whether debug logging is on (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is "debug", "info", "warn", or "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is where the log file is written; empty means the CLI's default
	// log directory under the config dir
	Dir string `mapstructure:"dir"`
}

// Timeout returns the naming timeout as a time.Duration.
func (n *NamingConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// FlagsFor returns the launch flags for an agent, falling back to
// DefaultFlags when the agent has no explicit entry.
func (a *AgentsConfig) FlagsFor(agent string) string {
	if f, ok := a.Flags[agent]; ok {
		return f
	}
	return a.DefaultFlags
}

// ResolveWorktreeDir returns the resolved worktree directory path.
// If Dir starts with ~, it expands to the user's home directory.
// Relative paths resolve against repoRoot.
func (w *WorktreeConfig) ResolveWorktreeDir(repoRoot string) string {
	path := w.Dir
	if path == "" {
		path = "worktrees"
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(repoRoot, path)
	}

	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			Prefix:            "vibe",
			MaxNameLength:     40,
			MaxSuffixAttempts: 5,
		},
		Worktree: WorktreeConfig{
			Dir:          "worktrees",
			BaseRef:      "HEAD",
			PullOnLaunch: true,
			InitScript:   "scripts/init.sh",
		},
		Naming: NamingConfig{
			Model:          "gpt-4o",
			BaseURL:        "https://api.openai.com",
			TimeoutSeconds: 10,
		},
		Agents: AgentsConfig{
			Primary:   "claude",
			Secondary: "codex",
			Flags: map[string]string{
				"claude": "--dangerously-skip-permissions",
				"codex":  "--dangerously-bypass-approvals-and-sandbox",
			},
			DefaultFlags: "--dangerously-skip-permissions",
		},
		Tmux: TmuxConfig{
			Socket: "",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("session.prefix", defaults.Session.Prefix)
	viper.SetDefault("session.max_name_length", defaults.Session.MaxNameLength)
	viper.SetDefault("session.max_suffix_attempts", defaults.Session.MaxSuffixAttempts)

	viper.SetDefault("worktree.dir", defaults.Worktree.Dir)
	viper.SetDefault("worktree.base_ref", defaults.Worktree.BaseRef)
	viper.SetDefault("worktree.pull_on_launch", defaults.Worktree.PullOnLaunch)
	viper.SetDefault("worktree.init_script", defaults.Worktree.InitScript)

	viper.SetDefault("naming.model", defaults.Naming.Model)
	viper.SetDefault("naming.base_url", defaults.Naming.BaseURL)
	viper.SetDefault("naming.timeout_seconds", defaults.Naming.TimeoutSeconds)

	viper.SetDefault("agents.primary", defaults.Agents.Primary)
	viper.SetDefault("agents.secondary", defaults.Agents.Secondary)
	viper.SetDefault("agents.flags", defaults.Agents.Flags)
	viper.SetDefault("agents.default_flags", defaults.Agents.DefaultFlags)

	viper.SetDefault("tmux.socket", defaults.Tmux.Socket)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vibe")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vibe"
	}
	return filepath.Join(home, ".config", "vibe")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
