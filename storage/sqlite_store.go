package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"worktime/worklog"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps concurrent requests from hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL CHECK(role IN ('USER', 'ADMIN')),
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS time_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id TEXT NOT NULL REFERENCES users(id),
	occurs_on TEXT NOT NULL,
	start_at TEXT NOT NULL,
	end_at TEXT NOT NULL,
	description TEXT NOT NULL,
	created_at TEXT NOT NULL,
	CONSTRAINT time_entries_interval CHECK(end_at > start_at)
);
CREATE INDEX IF NOT EXISTS idx_time_entries_owner_day ON time_entries(owner_id, occurs_on);
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	occurs_on TEXT NOT NULL,
	start_at TEXT NOT NULL,
	end_at TEXT NOT NULL,
	assignee_id TEXT NOT NULL REFERENCES users(id),
	creator_id TEXT NOT NULL REFERENCES users(id),
	created_at TEXT NOT NULL,
	CONSTRAINT tasks_interval CHECK(end_at > start_at)
);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee_day ON tasks(assignee_id, occurs_on);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func classifySQLiteError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "CHECK constraint failed") && IsIntervalConstraint(msg):
		return fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTimestamp(*value)
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

// InsertUser stores a new user. ID and CreatedAt must be set by the caller.
func (s *SQLiteStore) InsertUser(ctx context.Context, user worklog.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, role, created_at) VALUES (?, ?, ?, ?, ?);`,
		user.ID, user.Name, user.Email, string(user.Role), formatTimestamp(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", classifySQLiteError(err))
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (worklog.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, email, role, created_at FROM users WHERE id = ?;`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.User{}, ErrNotFound
		}
		return worklog.User{}, fmt.Errorf("query user %s: %w", id, err)
	}
	return user, nil
}

func (s *SQLiteStore) FindUserByEmail(ctx context.Context, email string) (worklog.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, email, role, created_at FROM users WHERE email = ?;`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.User{}, ErrNotFound
		}
		return worklog.User{}, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// ListUsers returns users ordered by name. An empty role lists everyone.
func (s *SQLiteStore) ListUsers(ctx context.Context, role worklog.Role) ([]worklog.User, error) {
	query := `SELECT id, name, email, role, created_at FROM users`
	args := []any{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, string(role))
	}
	query += ` ORDER BY name, id;`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]worklog.User, 0, 16)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// InsertEntry stores entry and fills in its ID.
func (s *SQLiteStore) InsertEntry(ctx context.Context, entry *worklog.Entry) error {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO time_entries (owner_id, occurs_on, start_at, end_at, description, created_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		entry.OwnerID,
		formatTimestamp(entry.OccursOn),
		formatTimestamp(entry.StartAt),
		formatTimestamp(entry.EndAt),
		entry.Description,
		formatTimestamp(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert time entry: %w", classifySQLiteError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted row id: %w", err)
	}
	if id <= 0 {
		return fmt.Errorf("invalid inserted row id %d", id)
	}
	entry.ID = id
	return nil
}

const entrySelect = `
SELECT
	e.id,
	e.owner_id,
	e.occurs_on,
	e.start_at,
	e.end_at,
	e.description,
	e.created_at,
	COALESCE(u.name, ''),
	COALESCE(u.email, '')
FROM time_entries e
LEFT JOIN users u ON u.id = e.owner_id`

func (s *SQLiteStore) ListEntries(ctx context.Context, q EntryQuery) ([]worklog.EntryWithOwner, error) {
	query := entrySelect + `
WHERE e.occurs_on >= ? AND e.occurs_on ` + upperBoundOp(q.Range) + ` ?`
	args := []any{formatTimestamp(q.Range.Start), formatTimestamp(q.Range.End)}
	if q.OwnerID != "" {
		query += ` AND e.owner_id = ?`
		args = append(args, q.OwnerID)
	}
	if q.NewestFirst {
		query += ` ORDER BY e.occurs_on DESC, e.start_at DESC, e.id DESC;`
	} else {
		query += ` ORDER BY e.occurs_on, e.start_at, e.id;`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]worklog.EntryWithOwner, 0, 64)
	for rows.Next() {
		entry, err := scanEntryWithOwner(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}
	return entries, nil
}

// LatestEntry returns the most recently created entry of owner.
func (s *SQLiteStore) LatestEntry(ctx context.Context, ownerID string) (worklog.Entry, error) {
	row := s.db.QueryRowContext(ctx, entrySelect+`
WHERE e.owner_id = ?
ORDER BY e.created_at DESC, e.id DESC
LIMIT 1;`, ownerID)
	entry, err := scanEntryWithOwner(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.Entry{}, ErrNotFound
		}
		return worklog.Entry{}, err
	}
	return entry.Entry, nil
}

// UpdateEntry applies patch to the entry with id owned by ownerID in a single
// statement. Missing and foreign rows both yield ErrNotFound.
func (s *SQLiteStore) UpdateEntry(ctx context.Context, ownerID string, id int64, patch worklog.EntryPatch) (worklog.Entry, error) {
	const updateStmt = `
UPDATE time_entries
SET occurs_on = COALESCE(?, occurs_on),
	start_at = COALESCE(?, start_at),
	end_at = COALESCE(?, end_at),
	description = COALESCE(?, description)
WHERE id = ? AND owner_id = ?
RETURNING id, owner_id, occurs_on, start_at, end_at, description, created_at;`

	row := s.db.QueryRowContext(ctx, updateStmt,
		nullableTime(patch.OccursOn),
		nullableTime(patch.StartAt),
		nullableTime(patch.EndAt),
		nullableString(patch.Description),
		id,
		ownerID,
	)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.Entry{}, ErrNotFound
		}
		return worklog.Entry{}, fmt.Errorf("update time entry %d: %w", id, classifySQLiteError(err))
	}
	return entry, nil
}

// DeleteEntry removes the entry with id owned by ownerID.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, ownerID string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ? AND owner_id = ?;`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete time entry %d: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertTask stores task and fills in its ID.
func (s *SQLiteStore) InsertTask(ctx context.Context, task *worklog.Task) error {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO tasks (title, description, occurs_on, start_at, end_at, assignee_id, creator_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		task.Title,
		task.Description,
		formatTimestamp(task.OccursOn),
		formatTimestamp(task.StartAt),
		formatTimestamp(task.EndAt),
		task.AssigneeID,
		task.CreatorID,
		formatTimestamp(task.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", classifySQLiteError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted row id: %w", err)
	}
	task.ID = id
	return nil
}

const taskSelect = `
SELECT
	t.id,
	t.title,
	t.description,
	t.occurs_on,
	t.start_at,
	t.end_at,
	t.assignee_id,
	t.creator_id,
	t.created_at,
	COALESCE(a.name, ''),
	COALESCE(a.email, ''),
	COALESCE(c.name, ''),
	COALESCE(c.email, '')
FROM tasks t
LEFT JOIN users a ON a.id = t.assignee_id
LEFT JOIN users c ON c.id = t.creator_id`

// ListTasks returns tasks ordered by date and start time.
func (s *SQLiteStore) ListTasks(ctx context.Context, q TaskQuery) ([]worklog.TaskWithUsers, error) {
	var (
		conditions []string
		args       []any
	)
	if q.Range != nil {
		conditions = append(conditions, `t.occurs_on >= ?`, `t.occurs_on `+upperBoundOp(*q.Range)+` ?`)
		args = append(args, formatTimestamp(q.Range.Start), formatTimestamp(q.Range.End))
	}
	if q.AssigneeID != "" {
		conditions = append(conditions, `t.assignee_id = ?`)
		args = append(args, q.AssigneeID)
	}

	query := taskSelect
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY t.occurs_on, t.start_at, t.id;"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]worklog.TaskWithUsers, 0, 32)
	for rows.Next() {
		task, err := scanTaskWithUsers(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (worklog.TaskWithUsers, error) {
	row := s.db.QueryRowContext(ctx, taskSelect+"\nWHERE t.id = ?;", id)
	task, err := scanTaskWithUsers(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.TaskWithUsers{}, ErrNotFound
		}
		return worklog.TaskWithUsers{}, err
	}
	return task, nil
}

// UpdateTask applies patch to the task with id in a single statement.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, patch worklog.TaskPatch) (worklog.Task, error) {
	const updateStmt = `
UPDATE tasks
SET title = COALESCE(?, title),
	description = COALESCE(?, description),
	occurs_on = COALESCE(?, occurs_on),
	start_at = COALESCE(?, start_at),
	end_at = COALESCE(?, end_at),
	assignee_id = COALESCE(?, assignee_id)
WHERE id = ?
RETURNING id, title, description, occurs_on, start_at, end_at, assignee_id, creator_id, created_at;`

	row := s.db.QueryRowContext(ctx, updateStmt,
		nullableString(patch.Title),
		nullableString(patch.Description),
		nullableTime(patch.OccursOn),
		nullableTime(patch.StartAt),
		nullableTime(patch.EndAt),
		nullableString(patch.AssigneeID),
		id,
	)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.Task{}, ErrNotFound
		}
		return worklog.Task{}, fmt.Errorf("update task %d: %w", id, classifySQLiteError(err))
	}
	return task, nil
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (worklog.User, error) {
	var (
		user       worklog.User
		role       string
		createdRaw string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &role, &createdRaw); err != nil {
		return worklog.User{}, err
	}
	user.Role = worklog.Role(role)
	createdAt, err := parseTimestamp(createdRaw)
	if err != nil {
		return worklog.User{}, err
	}
	user.CreatedAt = createdAt
	return user, nil
}

type entryTimes struct {
	occursOn, start, end, created string
}

func (r entryTimes) apply(occursOn, start, end, created *time.Time) error {
	for _, pair := range []struct {
		raw string
		dst *time.Time
	}{{r.occursOn, occursOn}, {r.start, start}, {r.end, end}, {r.created, created}} {
		parsed, err := parseTimestamp(pair.raw)
		if err != nil {
			return err
		}
		*pair.dst = parsed
	}
	return nil
}

func scanEntry(row rowScanner) (worklog.Entry, error) {
	var (
		entry worklog.Entry
		raw   entryTimes
	)
	if err := row.Scan(&entry.ID, &entry.OwnerID, &raw.occursOn, &raw.start, &raw.end, &entry.Description, &raw.created); err != nil {
		return worklog.Entry{}, err
	}
	if err := raw.apply(&entry.OccursOn, &entry.StartAt, &entry.EndAt, &entry.CreatedAt); err != nil {
		return worklog.Entry{}, fmt.Errorf("scan time entry %d: %w", entry.ID, err)
	}
	return entry, nil
}

func scanEntryWithOwner(row rowScanner) (worklog.EntryWithOwner, error) {
	var (
		entry worklog.EntryWithOwner
		raw   entryTimes
	)
	if err := row.Scan(
		&entry.ID,
		&entry.OwnerID,
		&raw.occursOn,
		&raw.start,
		&raw.end,
		&entry.Description,
		&raw.created,
		&entry.Owner.Name,
		&entry.Owner.Email,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.EntryWithOwner{}, err
		}
		return worklog.EntryWithOwner{}, fmt.Errorf("scan time entry: %w", err)
	}
	if err := raw.apply(&entry.OccursOn, &entry.StartAt, &entry.EndAt, &entry.CreatedAt); err != nil {
		return worklog.EntryWithOwner{}, fmt.Errorf("scan time entry %d: %w", entry.ID, err)
	}
	entry.Owner.ID = entry.OwnerID
	return entry, nil
}

func scanTask(row rowScanner) (worklog.Task, error) {
	var (
		task worklog.Task
		raw  entryTimes
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&raw.occursOn,
		&raw.start,
		&raw.end,
		&task.AssigneeID,
		&task.CreatorID,
		&raw.created,
	); err != nil {
		return worklog.Task{}, err
	}
	if err := raw.apply(&task.OccursOn, &task.StartAt, &task.EndAt, &task.CreatedAt); err != nil {
		return worklog.Task{}, fmt.Errorf("scan task %d: %w", task.ID, err)
	}
	return task, nil
}

func scanTaskWithUsers(row rowScanner) (worklog.TaskWithUsers, error) {
	var (
		task worklog.TaskWithUsers
		raw  entryTimes
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&raw.occursOn,
		&raw.start,
		&raw.end,
		&task.AssigneeID,
		&task.CreatorID,
		&raw.created,
		&task.Assignee.Name,
		&task.Assignee.Email,
		&task.Creator.Name,
		&task.Creator.Email,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.TaskWithUsers{}, err
		}
		return worklog.TaskWithUsers{}, fmt.Errorf("scan task: %w", err)
	}
	if err := raw.apply(&task.OccursOn, &task.StartAt, &task.EndAt, &task.CreatedAt); err != nil {
		return worklog.TaskWithUsers{}, fmt.Errorf("scan task %d: %w", task.ID, err)
	}
	task.Assignee.ID = task.AssigneeID
	task.Creator.ID = task.CreatorID
	return task, nil
}
