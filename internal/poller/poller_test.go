package poller

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boshu2/taskboard/internal/store"
	"github.com/boshu2/taskboard/internal/types"
)

type fakeRuntime struct {
	missingSessions map[string]bool
	statuses        map[string]types.ObservedStatus
	detectErrs      map[string]error
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		missingSessions: make(map[string]bool),
		statuses:        make(map[string]types.ObservedStatus),
		detectErrs:      make(map[string]error),
	}
}

func (f *fakeRuntime) RepoExists(path string) bool    { return true }
func (f *fakeRuntime) WorktreeExists(path string) bool { return true }
func (f *fakeRuntime) SessionExists(name string) bool  { return !f.missingSessions[name] }

func (f *fakeRuntime) DetectStatus(name string) types.ObservedStatus {
	if s, ok := f.statuses[name]; ok {
		return s
	}
	return types.StatusIdle
}

func (f *fakeRuntime) DetectStatusDetailed(name string) (types.ObservedStatus, error) {
	if err, ok := f.detectErrs[name]; ok {
		return types.StatusUnknown, err
	}
	return f.DetectStatus(name), nil
}

func (f *fakeRuntime) CreateSession(name, cwd, command string) error { return nil }
func (f *fakeRuntime) SendCommand(name, command string) error       { return nil }
func (f *fakeRuntime) SwitchClient(name string) error                { return nil }

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPoller_ObservesLiveSession(t *testing.T) {
	st := openTestStore(t)
	rt := newFakeRuntime()
	rt.statuses["repo-feature-x"] = types.StatusRunning

	repo, err := st.AddRepo(t.TempDir())
	require.NoError(t, err)
	categories, err := st.ListCategories()
	require.NoError(t, err)
	task, err := st.AddTask(repo.ID, "feature/x", "Watch me", categories[0].ID)
	require.NoError(t, err)
	require.NoError(t, st.UpdateTaskSession(task.ID, "repo-feature-x", t.TempDir()))

	p := &Poller{Store: st, Runtime: rt, BaseSeconds: 3, JitterMillis: 1}
	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool {
		task, err := st.GetTask(task.ID)
		return err == nil && task.ObservedStatus == types.StatusRunning
	}, 5*time.Second, 50*time.Millisecond)
}

func TestPoller_MarksDeadWhenSessionGone(t *testing.T) {
	st := openTestStore(t)
	rt := newFakeRuntime()
	rt.missingSessions["repo-feature-y"] = true

	repo, err := st.AddRepo(t.TempDir())
	require.NoError(t, err)
	categories, err := st.ListCategories()
	require.NoError(t, err)
	task, err := st.AddTask(repo.ID, "feature/y", "Watch me too", categories[0].ID)
	require.NoError(t, err)
	require.NoError(t, st.UpdateTaskSession(task.ID, "repo-feature-y", t.TempDir()))

	p := &Poller{Store: st, Runtime: rt, BaseSeconds: 3, JitterMillis: 1}
	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool {
		task, err := st.GetTask(task.ID)
		return err == nil && task.ObservedStatus == types.StatusDead
	}, 5*time.Second, 50*time.Millisecond)
}

func TestPoller_RecordsDetectErrorWithoutMarkingDead(t *testing.T) {
	st := openTestStore(t)
	rt := newFakeRuntime()
	rt.detectErrs["repo-feature-z"] = fmt.Errorf("pane capture timed out")

	repo, err := st.AddRepo(t.TempDir())
	require.NoError(t, err)
	categories, err := st.ListCategories()
	require.NoError(t, err)
	task, err := st.AddTask(repo.ID, "feature/z", "Watch me thrice", categories[0].ID)
	require.NoError(t, err)
	require.NoError(t, st.UpdateTaskSession(task.ID, "repo-feature-z", t.TempDir()))

	p := &Poller{Store: st, Runtime: rt, BaseSeconds: 3, JitterMillis: 1}
	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool {
		task, err := st.GetTask(task.ID)
		return err == nil && task.StatusError != ""
	}, 5*time.Second, 50*time.Millisecond)

	task, err = st.GetTask(task.ID)
	require.NoError(t, err)
	require.NotEqual(t, types.StatusDead, task.ObservedStatus)
}

func TestPoller_StopIsIdempotentWithoutStart(t *testing.T) {
	p := &Poller{}
	p.Stop()
}
