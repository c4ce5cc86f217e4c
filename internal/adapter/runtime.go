package adapter

import (
	"fmt"
	"os"

	"github.com/boshu2/taskboard/internal/types"
)

// RecoveryRuntime is the capability set the attach pipeline and the
// reconciler/poller observation primitive depend on. Production wires
// *Runtime; tests wire a recording fake.
type RecoveryRuntime interface {
	RepoExists(path string) bool
	WorktreeExists(path string) bool
	SessionExists(name string) bool
	DetectStatus(sessionName string) types.ObservedStatus
	DetectStatusDetailed(sessionName string) (types.ObservedStatus, error)
	CreateSession(name, cwd, command string) error
	SendCommand(name, command string) error
	SwitchClient(name string) error
}

// CreateTaskRuntime is the capability set the create pipeline depends on.
type CreateTaskRuntime interface {
	GitIsValidRepo(path string) bool
	GitRepoRoot(dir string) (string, error)
	GitCurrentBranch(dir string) (string, error)
	GitDetectDefaultBranch(repoPath string) string
	GitFetch(repoPath string) error
	GitValidateBranch(name string) error
	GitCheckBranchUpToDate(repoPath, baseRef string) error
	GitCreateWorktree(repoPath, wtPath, newBranch, baseRef string) error
	GitRemoveWorktree(repoPath, wtPath string) error
	GitDeleteBranch(repoPath, name string) error
	SessionExists(name string) bool
	CreateSession(name, cwd, command string) error
	KillSession(name string) error
}

// Runtime is the production implementation of RecoveryRuntime and
// CreateTaskRuntime, backed by real git and tmux subprocesses.
type Runtime struct {
	Git             *Git
	Tmux            *Tmux
	Patterns        StatusPatterns
	AgentBinary     string
	AgentServerURL  string
	PaneCaptureLines int
}

// NewRuntime builds a production Runtime with default adapters and status
// patterns loaded from the environment.
func NewRuntime(agentBinary, agentServerURL string) *Runtime {
	return &Runtime{
		Git:              NewGit(),
		Tmux:             NewTmux(),
		Patterns:         LoadStatusPatterns(),
		AgentBinary:      agentBinary,
		AgentServerURL:   agentServerURL,
		PaneCaptureLines: 50,
	}
}

// RepoExists reports whether a repo's canonical path still exists on disk.
func (r *Runtime) RepoExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WorktreeExists reports whether a worktree path still exists on disk.
func (r *Runtime) WorktreeExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SessionExists reports whether a tmux session is alive.
func (r *Runtime) SessionExists(name string) bool {
	return r.Tmux.SessionExists(name)
}

// DetectStatus captures a bounded pane tail and classifies it; a failed
// capture is reported as dead.
func (r *Runtime) DetectStatus(sessionName string) types.ObservedStatus {
	pane, err := r.Tmux.CapturePane(sessionName, r.paneCaptureLines())
	if err != nil {
		return types.StatusDead
	}
	return ClassifyPane(r.Patterns, pane)
}

// DetectStatusDetailed is DetectStatus but surfaces the underlying capture
// error instead of collapsing it to dead, so the poller can record it in a
// task's status_error field without discarding the prior observed status.
func (r *Runtime) DetectStatusDetailed(sessionName string) (types.ObservedStatus, error) {
	pane, err := r.Tmux.CapturePane(sessionName, r.paneCaptureLines())
	if err != nil {
		return types.StatusUnknown, err
	}
	return ClassifyPane(r.Patterns, pane), nil
}

func (r *Runtime) paneCaptureLines() int {
	if r.PaneCaptureLines <= 0 {
		return 50
	}
	return r.PaneCaptureLines
}

// CreateSession starts a detached tmux session.
func (r *Runtime) CreateSession(name, cwd, command string) error {
	return r.Tmux.CreateSession(name, cwd, command)
}

// SendCommand types a command into a session's active pane.
func (r *Runtime) SendCommand(name, command string) error {
	return r.Tmux.SendCommand(name, command)
}

// SwitchClient attaches the current client to a session.
func (r *Runtime) SwitchClient(name string) error {
	return r.Tmux.SwitchClient(name)
}

// KillSession terminates a tmux session.
func (r *Runtime) KillSession(name string) error {
	return r.Tmux.KillSession(name)
}

// GitIsValidRepo reports whether path is a usable git checkout.
func (r *Runtime) GitIsValidRepo(path string) bool {
	return r.Git.IsValidRepo(path)
}

// GitRepoRoot resolves the top-level directory of the checkout containing dir.
func (r *Runtime) GitRepoRoot(dir string) (string, error) {
	return r.Git.RepoRoot(dir)
}

// GitCurrentBranch returns dir's checked-out branch name.
func (r *Runtime) GitCurrentBranch(dir string) (string, error) {
	return r.Git.CurrentBranch(dir)
}

// GitDetectDefaultBranch resolves a repo's default base ref.
func (r *Runtime) GitDetectDefaultBranch(repoPath string) string {
	return r.Git.DetectDefaultBranch(repoPath)
}

// GitFetch runs a best-effort "git fetch origin".
func (r *Runtime) GitFetch(repoPath string) error {
	return r.Git.Fetch(repoPath)
}

// GitValidateBranch validates a branch name against ref-format rules.
func (r *Runtime) GitValidateBranch(name string) error {
	return r.Git.ValidateBranchName(name)
}

// GitCheckBranchUpToDate verifies a local base ref matches its origin
// counterpart.
func (r *Runtime) GitCheckBranchUpToDate(repoPath, baseRef string) error {
	return r.Git.CheckBranchUpToDate(repoPath, baseRef)
}

// GitCreateWorktree materializes a new worktree on a new branch.
func (r *Runtime) GitCreateWorktree(repoPath, wtPath, newBranch, baseRef string) error {
	return r.Git.CreateWorktree(repoPath, wtPath, newBranch, baseRef)
}

// GitRemoveWorktree tears down a worktree.
func (r *Runtime) GitRemoveWorktree(repoPath, wtPath string) error {
	return r.Git.RemoveWorktree(repoPath, wtPath)
}

// GitDeleteBranch removes a local branch, tolerating an already-gone branch.
func (r *Runtime) GitDeleteBranch(repoPath, name string) error {
	return r.Git.DeleteBranch(repoPath, name)
}

// AgentAttachCommand builds the command line used to launch or resume the
// agent inside a session. The command is rebuilt from the server URL and
// optional session id on every attach; it is never persisted verbatim.
func (r *Runtime) AgentAttachCommand(agentSessionID string) string {
	binary := r.AgentBinary
	if binary == "" {
		binary = "opencode"
	}
	if agentSessionID == "" {
		return fmt.Sprintf("%s attach %s", binary, r.AgentServerURL)
	}
	return fmt.Sprintf("%s attach %s --session %s", binary, r.AgentServerURL, agentSessionID)
}
