// Package store is the embedded relational persistence layer for repos,
// categories, and tasks (C2). It is backed by modernc.org/sqlite, a pure-Go
// sqlite driver, so the project needs no cgo toolchain to build or run.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/boshu2/taskboard/internal/types"
)

const (
	defaultTmuxStatus  = types.StatusUnknown
	defaultStatusSource = types.StatusSourceNone
)

// Store wraps a single sqlite connection for one project's data file.
// Writes are serialized with an in-process mutex in addition to capping the
// underlying connection pool at one connection, since modernc.org/sqlite
// does not tolerate concurrent writers well.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if absent) the sqlite file at path, enables foreign
// keys, runs idempotent migrations, and seeds the default TODO/IN
// PROGRESS/DONE categories on a fresh database. Passing ":memory:" opens a
// private in-memory database, used by tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create parent dir for %s: %w", path, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.seedDefaultCategories(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) runMigrations() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS repos (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			default_base TEXT,
			remote_url TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			position INTEGER NOT NULL,
			color TEXT,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			repo_id TEXT NOT NULL REFERENCES repos(id),
			branch TEXT NOT NULL,
			category_id TEXT NOT NULL REFERENCES categories(id),
			position INTEGER NOT NULL,
			session_name TEXT,
			agent_session_id TEXT,
			worktree_path TEXT,
			observed_status TEXT NOT NULL DEFAULT 'unknown',
			status_source TEXT NOT NULL DEFAULT 'none',
			status_fetched_at TEXT,
			status_error TEXT,
			archived INTEGER NOT NULL DEFAULT 0,
			archived_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(repo_id, branch)
		);

		CREATE TABLE IF NOT EXISTS command_usage (
			command_id TEXT PRIMARY KEY,
			use_count INTEGER NOT NULL DEFAULT 0,
			last_used TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}

	migrations := []string{
		"ALTER TABLE tasks ADD COLUMN status_source TEXT NOT NULL DEFAULT 'none'",
		"ALTER TABLE tasks ADD COLUMN status_fetched_at TEXT",
		"ALTER TABLE tasks ADD COLUMN status_error TEXT",
		"ALTER TABLE tasks ADD COLUMN archived INTEGER NOT NULL DEFAULT 0",
		"ALTER TABLE tasks ADD COLUMN archived_at TEXT",
		"ALTER TABLE categories ADD COLUMN color TEXT",
	}
	for _, stmt := range migrations {
		if _, err := s.db.Exec(stmt); err != nil && !isDuplicateColumnErr(err) {
			return fmt.Errorf("store: migrate %q: %w", stmt, err)
		}
	}

	if _, err := s.db.Exec(`UPDATE tasks SET status_source = 'none' WHERE status_source IS NULL`); err != nil {
		return fmt.Errorf("store: backfill status_source: %w", err)
	}
	return nil
}

func isDuplicateColumnErr(err error) bool {
	return strings.Contains(err.Error(), "duplicate column name")
}

func (s *Store) seedDefaultCategories() error {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("store: count categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i, name := range []string{"TODO", "IN PROGRESS", "DONE"} {
		if _, err := s.AddCategory(name, int64(i), ""); err != nil {
			return fmt.Errorf("store: seed category %q: %w", name, err)
		}
	}
	return nil
}

// AddRepo canonicalizes path, derives a display name from its final path
// segment, best-effort detects the repo's default base ref and origin
// remote URL via git, and inserts the row. Returns ErrRepoExists if a repo
// with the same canonical path is already registered.
func (s *Store) AddRepo(path string) (types.Repo, error) {
	canonical, err := filepath.Abs(path)
	if err != nil {
		return types.Repo{}, fmt.Errorf("store: resolve absolute path for %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(canonical); err == nil {
		canonical = resolved
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := deriveRepoName(canonical)
	defaultBase := detectDefaultBase(canonical)
	remoteURL := detectRemoteURL(canonical)
	now := nowISO()
	id := uuid.NewString()

	_, err = s.db.Exec(
		`INSERT INTO repos (id, path, name, default_base, remote_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, canonical, name, nullable(defaultBase), nullable(remoteURL), now, now,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return types.Repo{}, ErrRepoExists
		}
		return types.Repo{}, fmt.Errorf("store: insert repo: %w", err)
	}
	return s.GetRepo(id)
}

// GetRepo fetches a single repo by id.
func (s *Store) GetRepo(id string) (types.Repo, error) {
	row := s.db.QueryRow(
		`SELECT id, path, name, default_base, remote_url, created_at, updated_at
		 FROM repos WHERE id = ?`, id,
	)
	repo, err := scanRepo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Repo{}, ErrRepoNotFound
	}
	return repo, err
}

// ListRepos returns all repos ordered by registration time.
func (s *Store) ListRepos() ([]types.Repo, error) {
	rows, err := s.db.Query(
		`SELECT id, path, name, default_base, remote_url, created_at, updated_at
		 FROM repos ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list repos: %w", err)
	}
	defer rows.Close()

	var out []types.Repo
	for rows.Next() {
		repo, err := scanRepo(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan repo: %w", err)
		}
		out = append(out, repo)
	}
	return out, rows.Err()
}

// DeleteRepo removes a repo row. Fails with ErrRepoInUse if any task still
// references it.
func (s *Store) DeleteRepo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inUse int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE repo_id = ?`, id).Scan(&inUse); err != nil {
		return fmt.Errorf("store: count tasks for repo: %w", err)
	}
	if inUse > 0 {
		return ErrRepoInUse
	}
	_, err := s.db.Exec(`DELETE FROM repos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete repo: %w", err)
	}
	return nil
}

// AddCategory inserts a new board column.
func (s *Store) AddCategory(name string, position int64, color string) (types.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := nowISO()
	_, err := s.db.Exec(
		`INSERT INTO categories (id, name, position, color, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, position, nullable(color), now,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return types.Category{}, ErrCategoryExists
		}
		return types.Category{}, fmt.Errorf("store: insert category: %w", err)
	}
	return s.getCategory(id)
}

// ListCategories returns all categories ordered by position.
func (s *Store) ListCategories() ([]types.Category, error) {
	rows, err := s.db.Query(`SELECT id, name, position, color, created_at FROM categories ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	defer rows.Close()

	var out []types.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan category: %w", err)
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

// RenameCategory updates a category's display name.
func (s *Store) RenameCategory(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return ErrCategoryExists
		}
		return fmt.Errorf("store: rename category: %w", err)
	}
	return nil
}

// UpdateCategoryPosition rewrites a category's display position.
func (s *Store) UpdateCategoryPosition(id string, position int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE categories SET position = ? WHERE id = ?`, position, id)
	if err != nil {
		return fmt.Errorf("store: update category position: %w", err)
	}
	return nil
}

// UpdateCategoryColor sets a category's optional color tag.
func (s *Store) UpdateCategoryColor(id, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE categories SET color = ? WHERE id = ?`, nullable(color), id)
	if err != nil {
		return fmt.Errorf("store: update category color: %w", err)
	}
	return nil
}

// DeleteCategory removes a category row. Fails with ErrCategoryNotEmpty if
// any task is still assigned to it.
func (s *Store) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var taskCount int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE category_id = ?`, id).Scan(&taskCount); err != nil {
		return fmt.Errorf("store: count tasks in category: %w", err)
	}
	if taskCount > 0 {
		return ErrCategoryNotEmpty
	}
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete category: %w", err)
	}
	return nil
}

func (s *Store) getCategory(id string) (types.Category, error) {
	row := s.db.QueryRow(`SELECT id, name, position, color, created_at FROM categories WHERE id = ?`, id)
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Category{}, ErrCategoryNotFound
	}
	return cat, err
}

// AddTask inserts a new task row. position is max(position)+1 within the
// target category; title defaults to "<repo-name>:<branch>" when blank.
// Fails with ErrTaskExists on a (repo_id, branch) collision.
func (s *Store) AddTask(repoID, branch, title, categoryID string) (types.Task, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return types.Task{}, ErrBranchEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var position int64
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE category_id = ?`, categoryID,
	).Scan(&position)
	if err != nil {
		return types.Task{}, fmt.Errorf("store: compute task position: %w", err)
	}

	if strings.TrimSpace(title) == "" {
		var repoName string
		if err := s.db.QueryRow(`SELECT name FROM repos WHERE id = ?`, repoID).Scan(&repoName); err != nil {
			return types.Task{}, fmt.Errorf("store: resolve repo name for title: %w", err)
		}
		title = fmt.Sprintf("%s:%s", repoName, branch)
	}

	now := nowISO()
	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO tasks (
			id, title, repo_id, branch, category_id, position, session_name,
			agent_session_id, worktree_path, observed_status, status_source,
			status_fetched_at, status_error, archived, archived_at, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, NULL, ?, ?, NULL, NULL, 0, NULL, ?, ?)`,
		id, title, repoID, branch, categoryID, position, defaultTmuxStatus, defaultStatusSource, now, now,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return types.Task{}, ErrTaskExists
		}
		return types.Task{}, fmt.Errorf("store: insert task: %w", err)
	}
	return s.GetTask(id)
}

// GetTask fetches a single task by id.
func (s *Store) GetTask(id string) (types.Task, error) {
	row := s.db.QueryRow(taskSelectQuery+" WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Task{}, ErrTaskNotFound
	}
	return task, err
}

// ListTasks returns all non-archived tasks ordered for board display:
// category, then position, then creation order (ties in position are
// resolved by created_at, then id, matching the task ordering invariant).
func (s *Store) ListTasks() ([]types.Task, error) {
	return s.queryTasks(
		taskSelectQuery + ` WHERE archived = 0 ORDER BY category_id ASC, position ASC, created_at ASC, id ASC`,
	)
}

// ListArchivedTasks returns archived tasks, most recently archived first.
func (s *Store) ListArchivedTasks() ([]types.Task, error) {
	return s.queryTasks(
		taskSelectQuery + ` WHERE archived = 1 ORDER BY archived_at DESC, id ASC`,
	)
}

func (s *Store) queryTasks(query string) ([]types.Task, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("store: query tasks: %w", err)
	}
	defer rows.Close()

	var out []types.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan task: %w", err)
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// UpdateTaskCategory reassigns a task to a different category at a given
// position (used by move-left/move-right in C7).
func (s *Store) UpdateTaskCategory(id, categoryID string, position int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`UPDATE tasks SET category_id = ?, position = ?, updated_at = ? WHERE id = ?`,
		categoryID, position, nowISO(), id,
	)
	if err != nil {
		return fmt.Errorf("store: update task category: %w", err)
	}
	return nil
}

// UpdateTaskPosition rewrites a task's position within its current category.
func (s *Store) UpdateTaskPosition(id string, position int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE tasks SET position = ?, updated_at = ? WHERE id = ?`, position, nowISO(), id)
	if err != nil {
		return fmt.Errorf("store: update task position: %w", err)
	}
	return nil
}

// ReorderCategoryPositions rewrites every task position in a category to its
// dense index within orderedTaskIDs (0..n-1), in a single transaction. Used
// by the move up/down pipeline to guarantee no gaps accumulate after a swap.
func (s *Store) ReorderCategoryPositions(orderedTaskIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin reorder: %w", err)
	}
	defer tx.Rollback()

	now := nowISO()
	for i, id := range orderedTaskIDs {
		if _, err := tx.Exec(`UPDATE tasks SET position = ?, updated_at = ? WHERE id = ?`, int64(i), now, id); err != nil {
			return fmt.Errorf("store: reorder task %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit reorder: %w", err)
	}
	return nil
}

// UpdateTaskSession persists the bound multiplexer session name and
// worktree path. Either may be passed empty to clear the column.
func (s *Store) UpdateTaskSession(id, sessionName, worktreePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`UPDATE tasks SET session_name = ?, worktree_path = ?, updated_at = ? WHERE id = ?`,
		nullable(sessionName), nullable(worktreePath), nowISO(), id,
	)
	if err != nil {
		return fmt.Errorf("store: update task session: %w", err)
	}
	return nil
}

// UpdateTaskAgent persists the resumable agent session token.
func (s *Store) UpdateTaskAgent(id, agentSessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`UPDATE tasks SET agent_session_id = ?, updated_at = ? WHERE id = ?`,
		nullable(agentSessionID), nowISO(), id,
	)
	if err != nil {
		return fmt.Errorf("store: update task agent session: %w", err)
	}
	return nil
}

// UpdateTaskStatus writes the task's observed status.
func (s *Store) UpdateTaskStatus(id string, status types.ObservedStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE tasks SET observed_status = ?, updated_at = ? WHERE id = ?`, string(status), nowISO(), id)
	if err != nil {
		return fmt.Errorf("store: update task status: %w", err)
	}
	return nil
}

// UpdateTaskStatusMetadata writes the provenance of the last status
// observation: its source, fetch timestamp, and any error message.
func (s *Store) UpdateTaskStatusMetadata(id string, source types.StatusSource, fetchedAt *time.Time, statusErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fetchedAtStr any
	if fetchedAt != nil {
		fetchedAtStr = fetchedAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET status_source = ?, status_fetched_at = ?, status_error = ?, updated_at = ? WHERE id = ?`,
		string(source), fetchedAtStr, nullable(statusErr), nowISO(), id,
	)
	if err != nil {
		return fmt.Errorf("store: update task status metadata: %w", err)
	}
	return nil
}

// ArchiveTask flips the archived flag and stamps archived_at. All other
// fields (session, worktree, branch) are left untouched.
func (s *Store) ArchiveTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := nowISO()
	_, err := s.db.Exec(`UPDATE tasks SET archived = 1, archived_at = ?, updated_at = ? WHERE id = ?`, now, now, id)
	if err != nil {
		return fmt.Errorf("store: archive task: %w", err)
	}
	return nil
}

// UnarchiveTask clears the archived flag and timestamp.
func (s *Store) UnarchiveTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE tasks SET archived = 0, archived_at = NULL, updated_at = ? WHERE id = ?`, nowISO(), id)
	if err != nil {
		return fmt.Errorf("store: unarchive task: %w", err)
	}
	return nil
}

// DeleteTask removes a task row outright.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete task: %w", err)
	}
	return nil
}

// IncrementCommandUsage records one more use of a repo-selection or other
// ranked command id, for internal/resolver's recency/frequency scoring.
// Best-effort by design: callers should not fail their own operation when
// this returns an error.
func (s *Store) IncrementCommandUsage(commandID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO command_usage (command_id, use_count, last_used) VALUES (?, 1, ?)
		 ON CONFLICT(command_id) DO UPDATE SET use_count = use_count + 1, last_used = excluded.last_used`,
		commandID, nowISO(),
	)
	if err != nil {
		return fmt.Errorf("store: increment command usage: %w", err)
	}
	return nil
}

// CommandFrequency is one row of usage history for a ranked command id.
type CommandFrequency struct {
	CommandID string
	UseCount  int64
	LastUsed  *time.Time
}

// GetCommandFrequencies returns all recorded usage rows.
func (s *Store) GetCommandFrequencies() ([]CommandFrequency, error) {
	rows, err := s.db.Query(`SELECT command_id, use_count, last_used FROM command_usage`)
	if err != nil {
		return nil, fmt.Errorf("store: list command usage: %w", err)
	}
	defer rows.Close()

	var out []CommandFrequency
	for rows.Next() {
		var f CommandFrequency
		var lastUsed sql.NullString
		if err := rows.Scan(&f.CommandID, &f.UseCount, &lastUsed); err != nil {
			return nil, fmt.Errorf("store: scan command usage: %w", err)
		}
		if lastUsed.Valid {
			t, err := time.Parse(time.RFC3339, lastUsed.String)
			if err == nil {
				f.LastUsed = &t
			}
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

const taskSelectQuery = `SELECT id, title, repo_id, branch, category_id, position, session_name,
	agent_session_id, worktree_path, observed_status, status_source,
	status_fetched_at, status_error, archived, archived_at, created_at, updated_at
	FROM tasks`

type scanner interface {
	Scan(dest ...any) error
}

func scanRepo(row scanner) (types.Repo, error) {
	var r types.Repo
	var defaultBase, remoteURL sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.Path, &r.Name, &defaultBase, &remoteURL, &createdAt, &updatedAt); err != nil {
		return types.Repo{}, err
	}
	r.DefaultBase = defaultBase.String
	r.RemoteURL = remoteURL.String
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

func scanCategory(row scanner) (types.Category, error) {
	var c types.Category
	var color sql.NullString
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.Position, &color, &createdAt); err != nil {
		return types.Category{}, err
	}
	c.Color = color.String
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

func scanTask(row scanner) (types.Task, error) {
	var t types.Task
	var sessionName, agentSessionID, worktreePath, statusFetchedAt, statusError, archivedAt sql.NullString
	var observedStatus, statusSource string
	var archived bool
	var createdAt, updatedAt string

	err := row.Scan(
		&t.ID, &t.Title, &t.RepoID, &t.Branch, &t.CategoryID, &t.Position,
		&sessionName, &agentSessionID, &worktreePath, &observedStatus, &statusSource,
		&statusFetchedAt, &statusError, &archived, &archivedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return types.Task{}, err
	}

	t.SessionName = sessionName.String
	t.AgentSessionID = agentSessionID.String
	t.WorktreePath = worktreePath.String
	t.ObservedStatus = types.ObservedStatus(observedStatus)
	t.StatusSource = types.StatusSource(statusSource)
	t.StatusError = statusError.String
	t.Archived = archived
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	if statusFetchedAt.Valid {
		ts := parseTime(statusFetchedAt.String)
		t.StatusFetchedAt = &ts
	}
	if archivedAt.Valid {
		ts := parseTime(archivedAt.String)
		t.ArchivedAt = &ts
	}
	return t, nil
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func isUniqueConstraintErr(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func deriveRepoName(path string) string {
	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return path
	}
	return name
}

func detectDefaultBase(repoPath string) string {
	out, err := runGit(repoPath, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(out, "refs/remotes/origin/")
}

func detectRemoteURL(repoPath string) string {
	out, err := runGit(repoPath, "remote", "get-url", "origin")
	if err != nil {
		return ""
	}
	return out
}

func runGit(repoPath string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", repoPath}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return "", fmt.Errorf("store: git %s produced no output", strings.Join(args, " "))
	}
	return trimmed, nil
}
