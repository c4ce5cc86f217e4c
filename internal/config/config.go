// Package config provides configuration management for taskboard.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (TASKBOARD_*)
// 3. Project config (.taskboard/config.yaml in cwd)
// 4. Home config (~/.taskboard/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/boshu2/taskboard/internal/adapter"
)

// Config holds all taskboard configuration.
type Config struct {
	// BaseDir is the taskboard data directory (default: ~/.local/share/taskboard).
	BaseDir string `yaml:"base_dir" json:"base_dir"`

	// WorktreesRootName is the directory name materialized alongside each
	// repo's parent directory to hold that repo's worktrees (§6 "Worktrees
	// layout"): <repo-parent>/<WorktreesRootName>/<repo-slug>/<branch-slug>.
	WorktreesRootName string `yaml:"worktrees_root_name" json:"worktrees_root_name"`

	// Verbose enables verbose CLI output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Commands names the external binaries the adapters shell out to.
	Commands CommandsConfig `yaml:"commands" json:"commands"`

	// Poll controls the status poller's (C9) cadence and pane capture size.
	Poll PollConfig `yaml:"poll" json:"poll"`

	// StatusPatternsFile, if set, points at a YAML file overriding the
	// three status-classification regex families (§4.1/§6). Takes
	// precedence over the AGENT_STATUS_*_RE environment variables read
	// directly by internal/adapter.LoadStatusPatterns.
	StatusPatternsFile string `yaml:"status_patterns_file" json:"status_patterns_file"`
}

// CommandsConfig names the external binaries the CreateTaskRuntime and
// RecoveryRuntime adapters invoke, mirroring the teacher's
// RPIConfig.{TmuxCommand,RuntimeCommand} fields one-for-one.
type CommandsConfig struct {
	// Git is the git binary name or path. Default: "git".
	Git string `yaml:"git" json:"git"`
	// Tmux is the terminal multiplexer binary name or path. Default: "tmux".
	Tmux string `yaml:"tmux" json:"tmux"`
	// Ps is the process-table probe binary. Default: "ps".
	Ps string `yaml:"ps" json:"ps"`
	// Agent is the interactive coding agent binary launched inside a
	// session. Default: "claude".
	Agent string `yaml:"agent" json:"agent"`
	// AgentServerURL is passed to the agent's attach invocation
	// (`<agent> attach <server-url> [--session <id>]`).
	AgentServerURL string `yaml:"agent_server_url" json:"agent_server_url"`
}

// PollConfig controls the status poller (C9).
type PollConfig struct {
	// BaseSeconds is the floor of the per-task stagger: wake interval for
	// task at index i is BaseSeconds+i seconds (§4.9). Must be >= 3.
	BaseSeconds int `yaml:"base_seconds" json:"base_seconds"`
	// JitterMillis bounds the random jitter added on top of the staggered
	// interval to avoid phase-lock across tasks.
	JitterMillis int `yaml:"jitter_millis" json:"jitter_millis"`
	// PaneCaptureLines bounds how many trailing lines of a pane are
	// captured for status classification (§6, default 50).
	PaneCaptureLines int `yaml:"pane_capture_lines" json:"pane_capture_lines"`
	// RetryInterval is how long the poller sleeps before retrying after
	// the store cannot be opened (§4.9).
	RetryInterval time.Duration `yaml:"retry_interval" json:"retry_interval"`
}

// Default config values (used in resolution and validation).
const (
	defaultWorktreesRootName = ".taskboard-worktrees"
	defaultBaseSeconds       = 3
	defaultJitterMillis      = 750
	defaultPaneCaptureLines  = 50
	defaultRetryInterval     = 5 * time.Second
)

func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/share/taskboard"
	}
	return filepath.Join(home, ".local", "share", "taskboard")
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BaseDir:           defaultBaseDir(),
		WorktreesRootName: defaultWorktreesRootName,
		Verbose:           false,
		Commands: CommandsConfig{
			Git:   "git",
			Tmux:  "tmux",
			Ps:    "ps",
			Agent: "claude",
		},
		Poll: PollConfig{
			BaseSeconds:      defaultBaseSeconds,
			JitterMillis:     defaultJitterMillis,
			PaneCaptureLines: defaultPaneCaptureLines,
			RetryInterval:    defaultRetryInterval,
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	if homeConfig, _ := loadFromPath(homeConfigPath()); homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}
	if projectConfig, _ := loadFromPath(projectConfigPath()); projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".taskboard", "config.yaml")
}

func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("TASKBOARD_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".taskboard", "config.yaml")
}

func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("TASKBOARD_BASE_DIR"); v != "" {
		cfg.BaseDir = v
	}
	if v := os.Getenv("TASKBOARD_WORKTREES_ROOT_NAME"); v != "" {
		cfg.WorktreesRootName = v
	}
	if os.Getenv("TASKBOARD_VERBOSE") == "true" || os.Getenv("TASKBOARD_VERBOSE") == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("TASKBOARD_GIT_COMMAND"); v != "" {
		cfg.Commands.Git = v
	}
	if v := os.Getenv("TASKBOARD_TMUX_COMMAND"); v != "" {
		cfg.Commands.Tmux = v
	}
	if v := os.Getenv("TASKBOARD_PS_COMMAND"); v != "" {
		cfg.Commands.Ps = v
	}
	if v := os.Getenv("TASKBOARD_AGENT_COMMAND"); v != "" {
		cfg.Commands.Agent = v
	}
	if v := os.Getenv("TASKBOARD_AGENT_SERVER_URL"); v != "" {
		cfg.Commands.AgentServerURL = v
	}
	if v := os.Getenv("TASKBOARD_POLL_BASE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Poll.BaseSeconds = n
		}
	}
	if v := os.Getenv("TASKBOARD_POLL_JITTER_MILLIS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Poll.JitterMillis = n
		}
	}
	if v := os.Getenv("TASKBOARD_STATUS_PATTERNS_FILE"); v != "" {
		cfg.StatusPatternsFile = v
	}
	return cfg
}

// merge merges src into dst, with src values taking precedence wherever src
// sets a non-zero value.
func merge(dst, src *Config) *Config {
	if src.BaseDir != "" {
		dst.BaseDir = src.BaseDir
	}
	if src.WorktreesRootName != "" {
		dst.WorktreesRootName = src.WorktreesRootName
	}
	if src.Verbose {
		dst.Verbose = true
	}
	if src.Commands.Git != "" {
		dst.Commands.Git = src.Commands.Git
	}
	if src.Commands.Tmux != "" {
		dst.Commands.Tmux = src.Commands.Tmux
	}
	if src.Commands.Ps != "" {
		dst.Commands.Ps = src.Commands.Ps
	}
	if src.Commands.Agent != "" {
		dst.Commands.Agent = src.Commands.Agent
	}
	if src.Commands.AgentServerURL != "" {
		dst.Commands.AgentServerURL = src.Commands.AgentServerURL
	}
	if src.Poll.BaseSeconds != 0 {
		dst.Poll.BaseSeconds = src.Poll.BaseSeconds
	}
	if src.Poll.JitterMillis != 0 {
		dst.Poll.JitterMillis = src.Poll.JitterMillis
	}
	if src.Poll.PaneCaptureLines != 0 {
		dst.Poll.PaneCaptureLines = src.Poll.PaneCaptureLines
	}
	if src.Poll.RetryInterval != 0 {
		dst.Poll.RetryInterval = src.Poll.RetryInterval
	}
	if src.StatusPatternsFile != "" {
		dst.StatusPatternsFile = src.StatusPatternsFile
	}
	return dst
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.taskboard/config.yaml"
	SourceProject Source = ".taskboard/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

type resolved struct {
	Value  string `json:"value"`
	Source Source `json:"source"`
}

// ResolvedConfig shows config values with their sources, for the `board
// config` diagnostic subcommand.
type ResolvedConfig struct {
	BaseDir           resolved `json:"base_dir"`
	WorktreesRootName resolved `json:"worktrees_root_name"`
	Verbose           resolved `json:"verbose"`
	GitCommand        resolved `json:"git_command"`
	TmuxCommand       resolved `json:"tmux_command"`
	AgentCommand      resolved `json:"agent_command"`
}

func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

// Resolve returns configuration with source tracking, used by `board config`
// to show the user where each effective value came from.
func Resolve(flagBaseDir string, flagVerbose bool) *ResolvedConfig {
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())

	var homeBaseDir, homeWorktrees, homeGit, homeTmux, homeAgent string
	var homeVerbose bool
	if homeConfig != nil {
		homeBaseDir = homeConfig.BaseDir
		homeWorktrees = homeConfig.WorktreesRootName
		homeVerbose = homeConfig.Verbose
		homeGit = homeConfig.Commands.Git
		homeTmux = homeConfig.Commands.Tmux
		homeAgent = homeConfig.Commands.Agent
	}

	var projBaseDir, projWorktrees, projGit, projTmux, projAgent string
	var projVerbose bool
	if projectConfig != nil {
		projBaseDir = projectConfig.BaseDir
		projWorktrees = projectConfig.WorktreesRootName
		projVerbose = projectConfig.Verbose
		projGit = projectConfig.Commands.Git
		projTmux = projectConfig.Commands.Tmux
		projAgent = projectConfig.Commands.Agent
	}

	envBaseDir := os.Getenv("TASKBOARD_BASE_DIR")
	envWorktrees := os.Getenv("TASKBOARD_WORKTREES_ROOT_NAME")
	envVerboseRaw := os.Getenv("TASKBOARD_VERBOSE")
	envVerbose := envVerboseRaw == "true" || envVerboseRaw == "1"
	envGit := os.Getenv("TASKBOARD_GIT_COMMAND")
	envTmux := os.Getenv("TASKBOARD_TMUX_COMMAND")
	envAgent := os.Getenv("TASKBOARD_AGENT_COMMAND")

	rc := &ResolvedConfig{
		BaseDir:           resolveStringField(homeBaseDir, projBaseDir, envBaseDir, flagBaseDir, defaultBaseDir()),
		WorktreesRootName: resolveStringField(homeWorktrees, projWorktrees, envWorktrees, "", defaultWorktreesRootName),
		Verbose:           resolved{Value: "false", Source: SourceDefault},
		GitCommand:        resolveStringField(homeGit, projGit, envGit, "", "git"),
		TmuxCommand:       resolveStringField(homeTmux, projTmux, envTmux, "", "tmux"),
		AgentCommand:      resolveStringField(homeAgent, projAgent, envAgent, "", "claude"),
	}

	if homeVerbose {
		rc.Verbose = resolved{Value: "true", Source: SourceHome}
	}
	if projVerbose {
		rc.Verbose = resolved{Value: "true", Source: SourceProject}
	}
	if envVerbose {
		rc.Verbose = resolved{Value: "true", Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: "true", Source: SourceFlag}
	}
	return rc
}

// LoadStatusPatterns resolves the three status-classification regex
// families. When cfg.StatusPatternsFile is set and can be read and parsed,
// its entries are used and any blank or non-compiling entry falls back to
// the builtin default; the environment is not consulted in that case.
// Otherwise the AGENT_STATUS_*_RE environment variables are read via
// adapter.LoadStatusPatterns, with the same per-family default fallback.
func (c *Config) LoadStatusPatterns() adapter.StatusPatterns {
	if c.StatusPatternsFile == "" {
		return adapter.LoadStatusPatterns()
	}
	data, err := os.ReadFile(c.StatusPatternsFile)
	if err != nil {
		return adapter.LoadStatusPatterns()
	}
	var override struct {
		Running string `yaml:"running"`
		Waiting string `yaml:"waiting"`
		Idle    string `yaml:"idle"`
	}
	if err := yaml.Unmarshal(data, &override); err != nil {
		return adapter.LoadStatusPatterns()
	}
	return adapter.PatternsFromOverride(override.Running, override.Waiting, override.Idle)
}

// WorktreesRoot returns the worktrees-root directory for a repo whose
// canonical path is repoPath: <repo-parent>/<WorktreesRootName> (§6).
func (c *Config) WorktreesRoot(repoPath string) string {
	return filepath.Join(filepath.Dir(repoPath), c.WorktreesRootName)
}
