// Package poller implements the long-running background status sweep (C9):
// one loop that wakes each task on its own staggered schedule, observes its
// session, and writes the result back to the store. It never promotes a
// transient adapter error to a dead status; errors land in a task's
// status_error metadata instead.
package poller

import (
	"log/slog"
	"time"

	"github.com/boshu2/taskboard/internal/adapter"
	"github.com/boshu2/taskboard/internal/store"
	"github.com/boshu2/taskboard/internal/types"
)

// step is the scheduler's internal granularity: how often the loop wakes to
// check whether any task's staggered interval has elapsed and whether the
// stop flag has been raised. It is independent of any single task's wake
// interval.
const step = 250 * time.Millisecond

// Poller runs the status sweep in a background goroutine until Stop is
// called.
type Poller struct {
	Store         *store.Store
	Runtime       adapter.RecoveryRuntime
	BaseSeconds   int
	JitterMillis  int
	RetryInterval time.Duration
	Logger        *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// Start launches the background loop. Calling Start twice without an
// intervening Stop is a programmer error.
func (p *Poller) Start() {
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	go p.loop()
}

// Stop signals the loop to exit and blocks until it has, mirroring the
// teacher's lease-heartbeat shutdown: close the stop channel, then wait for
// the goroutine to acknowledge on doneCh.
func (p *Poller) Stop() {
	if p.stopCh == nil {
		return
	}
	close(p.stopCh)
	<-p.doneCh
}

func (p *Poller) loop() {
	defer close(p.doneCh)

	ticker := time.NewTicker(step)
	defer ticker.Stop()

	nextWake := make(map[string]time.Time)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
		}

		tasks, err := p.Store.ListTasks()
		if err != nil {
			p.logger().Warn("poller: store unavailable, backing off", "error", err)
			if p.sleepOrStop(p.retryInterval()) {
				return
			}
			continue
		}

		now := time.Now()
		for i, task := range tasks {
			select {
			case <-p.stopCh:
				return
			default:
			}

			due, ok := nextWake[task.ID]
			if ok && now.Before(due) {
				continue
			}
			p.observeOne(task)
			nextWake[task.ID] = now.Add(p.wakeInterval(i))
		}

		p.pruneStale(nextWake, tasks)
	}
}

// observeOne computes one task's observed status and writes it back. Adapter
// errors are recorded as status_error metadata and never downgrade the
// status to dead; only a confirmed absent session does that.
func (p *Poller) observeOne(task types.Task) {
	if task.SessionName == "" {
		return
	}
	if !p.Runtime.SessionExists(task.SessionName) {
		_ = p.Store.UpdateTaskStatus(task.ID, types.StatusDead)
		return
	}

	status, err := p.Runtime.DetectStatusDetailed(task.SessionName)
	now := time.Now()
	if err != nil {
		_ = p.Store.UpdateTaskStatusMetadata(task.ID, types.StatusSourceMultiplexer, &now, err.Error())
		return
	}
	if err := p.Store.UpdateTaskStatus(task.ID, status); err != nil {
		p.logger().Warn("poller: write status failed", "task", task.ID, "error", err)
		return
	}
	_ = p.Store.UpdateTaskStatusMetadata(task.ID, types.StatusSourceMultiplexer, &now, "")
}

// wakeInterval is base+index seconds plus a bounded jitter derived from the
// wall clock, so tasks with adjacent indices don't phase-lock onto the same
// tick.
func (p *Poller) wakeInterval(index int) time.Duration {
	base := p.BaseSeconds
	if base < 3 {
		base = 3
	}
	jitterMillis := p.JitterMillis
	if jitterMillis <= 0 {
		jitterMillis = 750
	}
	jitter := time.Duration(time.Now().UnixNano()%int64(jitterMillis)) * time.Millisecond
	return time.Duration(base+index)*time.Second + jitter
}

func (p *Poller) retryInterval() time.Duration {
	if p.RetryInterval <= 0 {
		return 5 * time.Second
	}
	return p.RetryInterval
}

// sleepOrStop waits for d or an early stop signal, reporting whether the
// caller should return immediately.
func (p *Poller) sleepOrStop(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-p.stopCh:
		return true
	case <-timer.C:
		return false
	}
}

// pruneStale drops schedule entries for tasks that no longer exist, so a
// deleted task's slot doesn't linger in memory forever.
func (p *Poller) pruneStale(nextWake map[string]time.Time, tasks []types.Task) {
	live := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		live[t.ID] = struct{}{}
	}
	for id := range nextWake {
		if _, ok := live[id]; !ok {
			delete(nextWake, id)
		}
	}
}

func (p *Poller) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
