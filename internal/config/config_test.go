package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.WorktreesRootName != ".taskboard-worktrees" {
		t.Errorf("Default WorktreesRootName = %q, want %q", cfg.WorktreesRootName, ".taskboard-worktrees")
	}
	if cfg.Verbose {
		t.Error("Default Verbose = true, want false")
	}
	if cfg.Commands.Git != "git" {
		t.Errorf("Default Commands.Git = %q, want %q", cfg.Commands.Git, "git")
	}
	if cfg.Commands.Tmux != "tmux" {
		t.Errorf("Default Commands.Tmux = %q, want %q", cfg.Commands.Tmux, "tmux")
	}
	if cfg.Commands.Agent != "claude" {
		t.Errorf("Default Commands.Agent = %q, want %q", cfg.Commands.Agent, "claude")
	}
	if cfg.Poll.BaseSeconds != 3 {
		t.Errorf("Default Poll.BaseSeconds = %d, want 3", cfg.Poll.BaseSeconds)
	}
	if cfg.Poll.PaneCaptureLines != 50 {
		t.Errorf("Default Poll.PaneCaptureLines = %d, want 50", cfg.Poll.PaneCaptureLines)
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{
		BaseDir:           "/custom/path",
		WorktreesRootName: "wt-root",
	}

	result := merge(dst, src)

	if result.BaseDir != "/custom/path" {
		t.Errorf("merge BaseDir = %q, want %q", result.BaseDir, "/custom/path")
	}
	if result.WorktreesRootName != "wt-root" {
		t.Errorf("merge WorktreesRootName = %q, want %q", result.WorktreesRootName, "wt-root")
	}
	if result.Commands.Git != "git" {
		t.Errorf("merge preserved Commands.Git = %q, want %q", result.Commands.Git, "git")
	}
}

func TestMerge_VerboseOverride(t *testing.T) {
	dst := Default()
	src := &Config{Verbose: true}

	result := merge(dst, src)

	if !result.Verbose {
		t.Error("merge Verbose = false, want true")
	}
}

func TestMerge_CommandsOverride(t *testing.T) {
	dst := Default()
	src := &Config{
		Commands: CommandsConfig{
			Git:   "/usr/local/bin/git",
			Tmux:  "/usr/local/bin/tmux",
			Agent: "codex",
		},
	}

	result := merge(dst, src)

	if result.Commands.Git != "/usr/local/bin/git" {
		t.Errorf("merge Commands.Git = %q, want %q", result.Commands.Git, "/usr/local/bin/git")
	}
	if result.Commands.Agent != "codex" {
		t.Errorf("merge Commands.Agent = %q, want %q", result.Commands.Agent, "codex")
	}
	if result.Commands.Ps != "ps" {
		t.Errorf("merge should preserve default Commands.Ps, got %q", result.Commands.Ps)
	}
}

func TestMerge_PollOverride(t *testing.T) {
	dst := Default()
	src := &Config{
		Poll: PollConfig{BaseSeconds: 10, JitterMillis: 1500},
	}

	result := merge(dst, src)

	if result.Poll.BaseSeconds != 10 {
		t.Errorf("merge Poll.BaseSeconds = %d, want 10", result.Poll.BaseSeconds)
	}
	if result.Poll.JitterMillis != 1500 {
		t.Errorf("merge Poll.JitterMillis = %d, want 1500", result.Poll.JitterMillis)
	}
	if result.Poll.PaneCaptureLines != 50 {
		t.Errorf("merge should preserve default Poll.PaneCaptureLines, got %d", result.Poll.PaneCaptureLines)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TASKBOARD_BASE_DIR", "/env/base")
	t.Setenv("TASKBOARD_VERBOSE", "true")
	t.Setenv("TASKBOARD_AGENT_COMMAND", "codex")
	t.Setenv("TASKBOARD_POLL_BASE_SECONDS", "7")

	cfg := Default()
	cfg = applyEnv(cfg)

	if cfg.BaseDir != "/env/base" {
		t.Errorf("applyEnv BaseDir = %q, want %q", cfg.BaseDir, "/env/base")
	}
	if !cfg.Verbose {
		t.Error("applyEnv Verbose = false, want true")
	}
	if cfg.Commands.Agent != "codex" {
		t.Errorf("applyEnv Commands.Agent = %q, want %q", cfg.Commands.Agent, "codex")
	}
	if cfg.Poll.BaseSeconds != 7 {
		t.Errorf("applyEnv Poll.BaseSeconds = %d, want 7", cfg.Poll.BaseSeconds)
	}
}

func TestApplyEnv_VerboseVariants(t *testing.T) {
	tests := []struct {
		name    string
		envVal  string
		wantVer bool
	}{
		{name: "true", envVal: "true", wantVer: true},
		{name: "1", envVal: "1", wantVer: true},
		{name: "false", envVal: "false", wantVer: false},
		{name: "empty", envVal: "", wantVer: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TASKBOARD_BASE_DIR", "")
			t.Setenv("TASKBOARD_VERBOSE", tt.envVal)

			cfg := Default()
			cfg = applyEnv(cfg)

			if cfg.Verbose != tt.wantVer {
				t.Errorf("applyEnv Verbose = %v, want %v for TASKBOARD_VERBOSE=%q", cfg.Verbose, tt.wantVer, tt.envVal)
			}
		})
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
base_dir: /custom/taskboard
verbose: true
worktrees_root_name: my-worktrees
commands:
  agent: codex
poll:
  base_seconds: 5
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() error = %v", err)
	}

	if cfg.BaseDir != "/custom/taskboard" {
		t.Errorf("loadFromPath BaseDir = %q, want %q", cfg.BaseDir, "/custom/taskboard")
	}
	if !cfg.Verbose {
		t.Error("loadFromPath Verbose = false, want true")
	}
	if cfg.WorktreesRootName != "my-worktrees" {
		t.Errorf("loadFromPath WorktreesRootName = %q, want %q", cfg.WorktreesRootName, "my-worktrees")
	}
	if cfg.Commands.Agent != "codex" {
		t.Errorf("loadFromPath Commands.Agent = %q, want %q", cfg.Commands.Agent, "codex")
	}
	if cfg.Poll.BaseSeconds != 5 {
		t.Errorf("loadFromPath Poll.BaseSeconds = %d, want 5", cfg.Poll.BaseSeconds)
	}
}

func TestLoadFromPath_NotExists(t *testing.T) {
	cfg, err := loadFromPath("/nonexistent/config.yaml")
	if cfg != nil {
		t.Errorf("loadFromPath for nonexistent file should return nil config")
	}
	if err == nil {
		t.Errorf("loadFromPath for nonexistent file should return error")
	}
}

func TestLoadFromPath_Empty(t *testing.T) {
	cfg, err := loadFromPath("")
	if cfg != nil || err != nil {
		t.Errorf("loadFromPath(\"\") = %v, %v; want nil, nil", cfg, err)
	}
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `{{{invalid yaml`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFromPath(configPath)
	if err == nil {
		t.Error("loadFromPath for invalid YAML should return error")
	}
	if cfg != nil {
		t.Error("loadFromPath for invalid YAML should return nil config")
	}
}

func TestResolve(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", "")
	rc := Resolve("/flag/path", true)

	if rc.BaseDir.Value != "/flag/path" {
		t.Errorf("Resolve BaseDir.Value = %v, want %q", rc.BaseDir.Value, "/flag/path")
	}
	if rc.BaseDir.Source != SourceFlag {
		t.Errorf("Resolve BaseDir.Source = %v, want %v", rc.BaseDir.Source, SourceFlag)
	}
	if rc.Verbose.Value != "true" {
		t.Errorf("Resolve Verbose.Value = %v, want true", rc.Verbose.Value)
	}
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", "")
	for _, key := range []string{"TASKBOARD_BASE_DIR", "TASKBOARD_VERBOSE", "TASKBOARD_GIT_COMMAND", "TASKBOARD_TMUX_COMMAND", "TASKBOARD_AGENT_COMMAND"} {
		t.Setenv(key, "")
	}

	rc := Resolve("", false)

	if rc.Verbose.Value != "false" {
		t.Errorf("Resolve default Verbose.Value = %v, want false", rc.Verbose.Value)
	}
	if rc.GitCommand.Value != "git" {
		t.Errorf("Resolve default GitCommand.Value = %v, want %q", rc.GitCommand.Value, "git")
	}
}

func TestResolve_EnvOverride(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", "")
	t.Setenv("TASKBOARD_BASE_DIR", "/env/path")
	t.Setenv("TASKBOARD_VERBOSE", "1")
	t.Setenv("TASKBOARD_GIT_COMMAND", "git-env")

	rc := Resolve("", false)

	if rc.BaseDir.Value != "/env/path" {
		t.Errorf("Resolve env BaseDir.Value = %v, want %q", rc.BaseDir.Value, "/env/path")
	}
	if rc.BaseDir.Source != SourceEnv {
		t.Errorf("Resolve env BaseDir.Source = %v, want %v", rc.BaseDir.Source, SourceEnv)
	}
	if rc.Verbose.Value != "true" {
		t.Errorf("Resolve env Verbose.Value = %v, want true", rc.Verbose.Value)
	}
	if rc.GitCommand.Value != "git-env" || rc.GitCommand.Source != SourceEnv {
		t.Errorf("Resolve env GitCommand = (%v, %v), want (git-env, %v)", rc.GitCommand.Value, rc.GitCommand.Source, SourceEnv)
	}
}

func TestResolveStringField(t *testing.T) {
	tests := []struct {
		name       string
		home       string
		project    string
		env        string
		flag       string
		def        string
		wantValue  string
		wantSource Source
	}{
		{name: "default only", def: "table", wantValue: "table", wantSource: SourceDefault},
		{name: "home overrides default", home: "json", def: "table", wantValue: "json", wantSource: SourceHome},
		{name: "project overrides home", home: "json", project: "yaml", def: "table", wantValue: "yaml", wantSource: SourceProject},
		{name: "env overrides project", home: "json", project: "yaml", env: "csv", def: "table", wantValue: "csv", wantSource: SourceEnv},
		{name: "flag overrides everything", home: "json", project: "yaml", env: "csv", flag: "text", def: "table", wantValue: "text", wantSource: SourceFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveStringField(tt.home, tt.project, tt.env, tt.flag, tt.def)
			if got.Value != tt.wantValue {
				t.Errorf("resolveStringField() Value = %v, want %v", got.Value, tt.wantValue)
			}
			if got.Source != tt.wantSource {
				t.Errorf("resolveStringField() Source = %v, want %v", got.Source, tt.wantSource)
			}
		})
	}
}

func TestProjectConfigPath_UsesTaskboardConfigEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")
	t.Setenv("TASKBOARD_CONFIG", configPath)

	got := projectConfigPath()
	if got != configPath {
		t.Fatalf("projectConfigPath() = %q, want %q", got, configPath)
	}
}

func TestProjectConfigPath_DefaultFromCwd(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", "")
	got := projectConfigPath()
	cwd, _ := os.Getwd()
	expected := filepath.Join(cwd, ".taskboard", "config.yaml")
	if got != expected {
		t.Errorf("projectConfigPath() = %q, want %q", got, expected)
	}
}

func TestResolve_WithProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
base_dir: /project/base
verbose: true
commands:
  agent: custom-claude
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TASKBOARD_CONFIG", configPath)
	for _, key := range []string{"TASKBOARD_BASE_DIR", "TASKBOARD_VERBOSE", "TASKBOARD_AGENT_COMMAND"} {
		t.Setenv(key, "")
	}

	rc := Resolve("", false)

	if rc.BaseDir.Value != "/project/base" || rc.BaseDir.Source != SourceProject {
		t.Errorf("BaseDir = (%v, %v), want (/project/base, %v)", rc.BaseDir.Value, rc.BaseDir.Source, SourceProject)
	}
	if rc.Verbose.Value != "true" || rc.Verbose.Source != SourceProject {
		t.Errorf("Verbose = (%v, %v), want (true, %v)", rc.Verbose.Value, rc.Verbose.Source, SourceProject)
	}
	if rc.AgentCommand.Value != "custom-claude" || rc.AgentCommand.Source != SourceProject {
		t.Errorf("AgentCommand = (%v, %v), want (custom-claude, %v)", rc.AgentCommand.Value, rc.AgentCommand.Source, SourceProject)
	}
}

func TestResolve_FlagOverridesProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
base_dir: /project/base
verbose: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TASKBOARD_CONFIG", configPath)
	t.Setenv("TASKBOARD_BASE_DIR", "")
	t.Setenv("TASKBOARD_VERBOSE", "")

	rc := Resolve("/flag/dir", true)

	if rc.BaseDir.Value != "/flag/dir" || rc.BaseDir.Source != SourceFlag {
		t.Errorf("Flag should override project: BaseDir = (%v, %v)", rc.BaseDir.Value, rc.BaseDir.Source)
	}
	if rc.Verbose.Value != "true" || rc.Verbose.Source != SourceFlag {
		t.Errorf("Flag should override project: Verbose = (%v, %v)", rc.Verbose.Value, rc.Verbose.Source)
	}
}

func TestLoad_WithFlagOverrides(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", "")
	t.Setenv("TASKBOARD_BASE_DIR", "")
	t.Setenv("TASKBOARD_VERBOSE", "")

	overrides := &Config{
		BaseDir: "/flag/base",
		Verbose: true,
	}

	cfg, err := Load(overrides)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BaseDir != "/flag/base" {
		t.Errorf("Load BaseDir = %q, want %q", cfg.BaseDir, "/flag/base")
	}
	if !cfg.Verbose {
		t.Error("Load Verbose = false, want true")
	}
}

func TestLoad_NilOverrides(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", "")
	t.Setenv("TASKBOARD_BASE_DIR", "")
	t.Setenv("TASKBOARD_VERBOSE", "")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WorktreesRootName != ".taskboard-worktrees" {
		t.Errorf("Load nil WorktreesRootName = %q, want %q", cfg.WorktreesRootName, ".taskboard-worktrees")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKBOARD_CONFIG", "")
	t.Setenv("TASKBOARD_BASE_DIR", "/env/dir")
	t.Setenv("TASKBOARD_VERBOSE", "1")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BaseDir != "/env/dir" {
		t.Errorf("Load env BaseDir = %q, want %q", cfg.BaseDir, "/env/dir")
	}
	if !cfg.Verbose {
		t.Error("Load env Verbose = false, want true")
	}
}

func TestWorktreesRoot(t *testing.T) {
	cfg := Default()
	cfg.WorktreesRootName = ".taskboard-worktrees"

	got := cfg.WorktreesRoot("/home/user/code/myrepo")
	want := filepath.Join("/home/user/code", ".taskboard-worktrees")
	if got != want {
		t.Errorf("WorktreesRoot() = %q, want %q", got, want)
	}
}

func TestLoadStatusPatterns_FallsBackWithoutFile(t *testing.T) {
	cfg := Default()
	patterns := cfg.LoadStatusPatterns()
	if patterns.Running == nil || patterns.Waiting == nil || patterns.Idle == nil {
		t.Fatal("expected all three pattern families to be populated")
	}
}

func TestLoadStatusPatterns_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	patternsPath := filepath.Join(tmpDir, "patterns.yaml")
	content := "running: 'custom-running'\nwaiting: 'custom-waiting'\nidle: 'custom-idle'\n"
	if err := os.WriteFile(patternsPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.StatusPatternsFile = patternsPath
	patterns := cfg.LoadStatusPatterns()

	if !patterns.Running.MatchString("custom-running") {
		t.Error("expected overridden running pattern to match")
	}
	if !patterns.Waiting.MatchString("custom-waiting") {
		t.Error("expected overridden waiting pattern to match")
	}
}
