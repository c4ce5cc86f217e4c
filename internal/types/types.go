// Package types holds the entity shapes shared by the store, pipelines,
// reconciler, and poller: Repo, Category, Task, and the enums that describe
// a task's observed runtime state.
package types

import "time"

// ObservedStatus is the reconciled state of a task's bound session, as last
// written by the attach pipeline, the startup reconciler, or the poller.
type ObservedStatus string

const (
	StatusRunning         ObservedStatus = "running"
	StatusIdle            ObservedStatus = "idle"
	StatusWaiting         ObservedStatus = "waiting"
	StatusDead            ObservedStatus = "dead"
	StatusUnknown         ObservedStatus = "unknown"
	StatusRepoUnavailable ObservedStatus = "repo_unavailable"
	StatusBroken          ObservedStatus = "broken"
)

// StatusSource names what last produced a task's ObservedStatus.
type StatusSource string

const (
	StatusSourceNone        StatusSource = "none"
	StatusSourceMultiplexer StatusSource = "multiplexer"
	StatusSourceAgentServer StatusSource = "agent_server"
)

// Repo is a source repository the user has registered.
type Repo struct {
	ID         string
	Path       string
	Name       string
	DefaultBase string
	RemoteURL  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Category is a board column tasks are grouped under.
type Category struct {
	ID        string
	Name      string
	Position  int64
	Color     string
	CreatedAt time.Time
}

// Task is a unit of work bound to exactly one branch in one repo.
type Task struct {
	ID              string
	Title           string
	RepoID          string
	Branch          string
	CategoryID      string
	Position        int64
	SessionName     string
	AgentSessionID  string
	WorktreePath    string
	ObservedStatus  ObservedStatus
	StatusSource    StatusSource
	StatusFetchedAt *time.Time
	StatusError     string
	Archived        bool
	ArchivedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
