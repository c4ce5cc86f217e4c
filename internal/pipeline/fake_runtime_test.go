package pipeline

import (
	"fmt"
	"os"

	"github.com/boshu2/taskboard/internal/types"
)

// fakeRuntime is a recording, in-memory stand-in for adapter.Runtime. It
// implements both CreateTaskRuntime and RecoveryRuntime so every pipeline
// test can wire the same fake.
type fakeRuntime struct {
	sessions      map[string]fakeSession
	branches      map[string]bool
	invalidRepos  map[string]bool
	defaultBranch string
	statuses      map[string]types.ObservedStatus
	detectErr     map[string]error

	failValidateBranch bool
	failFetch          bool
	failFreshness      bool
	failCreateWorktree bool
	failCreateSession  bool

	calls []string
}

type fakeSession struct {
	cwd     string
	command string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		sessions:     make(map[string]fakeSession),
		branches:     make(map[string]bool),
		invalidRepos: make(map[string]bool),
		statuses:     make(map[string]types.ObservedStatus),
		detectErr:    make(map[string]error),
	}
}

func (f *fakeRuntime) record(call string) { f.calls = append(f.calls, call) }

// CreateTaskRuntime

func (f *fakeRuntime) GitIsValidRepo(path string) bool {
	if f.invalidRepos[path] {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (f *fakeRuntime) GitRepoRoot(dir string) (string, error) { return dir, nil }

func (f *fakeRuntime) GitCurrentBranch(dir string) (string, error) { return "main", nil }

func (f *fakeRuntime) GitDetectDefaultBranch(repoPath string) string {
	if f.defaultBranch != "" {
		return f.defaultBranch
	}
	return "main"
}

func (f *fakeRuntime) GitFetch(repoPath string) error {
	f.record("fetch:" + repoPath)
	if f.failFetch {
		return fmt.Errorf("fake: fetch failed")
	}
	return nil
}

func (f *fakeRuntime) GitValidateBranch(name string) error {
	if f.failValidateBranch {
		return fmt.Errorf("fake: invalid branch %q", name)
	}
	return nil
}

func (f *fakeRuntime) GitCheckBranchUpToDate(repoPath, baseRef string) error {
	if f.failFreshness {
		return fmt.Errorf("fake: %s not up to date with origin", baseRef)
	}
	return nil
}

func (f *fakeRuntime) GitCreateWorktree(repoPath, wtPath, newBranch, baseRef string) error {
	f.record("create_worktree:" + wtPath)
	if f.failCreateWorktree {
		return fmt.Errorf("fake: create worktree failed")
	}
	f.branches[newBranch] = true
	return os.MkdirAll(wtPath, 0o755)
}

func (f *fakeRuntime) GitRemoveWorktree(repoPath, wtPath string) error {
	f.record("remove_worktree:" + wtPath)
	return os.RemoveAll(wtPath)
}

func (f *fakeRuntime) GitDeleteBranch(repoPath, name string) error {
	f.record("delete_branch:" + name)
	delete(f.branches, name)
	return nil
}

func (f *fakeRuntime) SessionExists(name string) bool {
	_, ok := f.sessions[name]
	return ok
}

func (f *fakeRuntime) CreateSession(name, cwd, command string) error {
	f.record("create_session:" + name)
	if f.failCreateSession {
		return fmt.Errorf("fake: create session failed")
	}
	f.sessions[name] = fakeSession{cwd: cwd, command: command}
	return nil
}

func (f *fakeRuntime) KillSession(name string) error {
	f.record("kill_session:" + name)
	delete(f.sessions, name)
	return nil
}

// RecoveryRuntime

func (f *fakeRuntime) RepoExists(path string) bool {
	if f.invalidRepos[path] {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (f *fakeRuntime) WorktreeExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (f *fakeRuntime) DetectStatus(sessionName string) types.ObservedStatus {
	if s, ok := f.statuses[sessionName]; ok {
		return s
	}
	return types.StatusIdle
}

func (f *fakeRuntime) DetectStatusDetailed(sessionName string) (types.ObservedStatus, error) {
	if err, ok := f.detectErr[sessionName]; ok {
		return types.StatusUnknown, err
	}
	return f.DetectStatus(sessionName), nil
}

func (f *fakeRuntime) SendCommand(name, command string) error {
	f.record("send_command:" + name)
	return nil
}

func (f *fakeRuntime) SwitchClient(name string) error {
	f.record("switch_client:" + name)
	if !f.SessionExists(name) {
		return fmt.Errorf("fake: no such session %q", name)
	}
	return nil
}
