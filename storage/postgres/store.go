// Package postgres is the PostgreSQL implementation of the tracker store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"worktime/storage"
	"worktime/worklog"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to connString, sizes the pool and ensures the schema exists.
func Open(ctx context.Context, connString string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL CHECK (role IN ('USER', 'ADMIN')),
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS time_entries (
	id BIGSERIAL PRIMARY KEY,
	owner_id TEXT NOT NULL REFERENCES users(id),
	occurs_on TIMESTAMPTZ NOT NULL,
	start_at TIMESTAMPTZ NOT NULL,
	end_at TIMESTAMPTZ NOT NULL,
	description TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT time_entries_interval CHECK (end_at > start_at)
);
CREATE INDEX IF NOT EXISTS idx_time_entries_owner_day ON time_entries(owner_id, occurs_on);
CREATE TABLE IF NOT EXISTS tasks (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	occurs_on TIMESTAMPTZ NOT NULL,
	start_at TIMESTAMPTZ NOT NULL,
	end_at TIMESTAMPTZ NOT NULL,
	assignee_id TEXT NOT NULL REFERENCES users(id),
	creator_id TEXT NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT tasks_interval CHECK (end_at > start_at)
);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee_day ON tasks(assignee_id, occurs_on);
`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514":
			if !storage.IsIntervalConstraint(pgErr.ConstraintName) {
				break
			}
			return fmt.Errorf("%w: %v", storage.ErrInvalidInterval, err)
		case "23505":
			return fmt.Errorf("%w: %v", storage.ErrConflict, err)
		}
	}
	return err
}

func upperBound(inclusive bool) string {
	if inclusive {
		return "<="
	}
	return "<"
}

func (s *Store) InsertUser(ctx context.Context, user worklog.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, user.Email, string(user.Role), user.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", classify(err))
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (worklog.User, error) {
	return s.queryUser(ctx, `SELECT id, name, email, role, created_at FROM users WHERE id = $1`, id)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (worklog.User, error) {
	return s.queryUser(ctx, `SELECT id, name, email, role, created_at FROM users WHERE email = $1`, email)
}

func (s *Store) queryUser(ctx context.Context, query string, arg string) (worklog.User, error) {
	var (
		user worklog.User
		role string
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.User{}, storage.ErrNotFound
		}
		return worklog.User{}, fmt.Errorf("query user: %w", err)
	}
	user.Role = worklog.Role(role)
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, role worklog.Role) ([]worklog.User, error) {
	query := `SELECT id, name, email, role, created_at FROM users`
	args := []any{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, string(role))
	}
	query += ` ORDER BY name, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]worklog.User, 0, 16)
	for rows.Next() {
		var (
			user     worklog.User
			userRole string
		)
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &userRole, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.Role = worklog.Role(userRole)
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *Store) InsertEntry(ctx context.Context, entry *worklog.Entry) error {
	err := s.pool.QueryRow(ctx, `
INSERT INTO time_entries (owner_id, occurs_on, start_at, end_at, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		entry.OwnerID, entry.OccursOn.UTC(), entry.StartAt.UTC(), entry.EndAt.UTC(), entry.Description, entry.CreatedAt.UTC(),
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("insert time entry: %w", classify(err))
	}
	return nil
}

const entrySelect = `
SELECT e.id, e.owner_id, e.occurs_on, e.start_at, e.end_at, e.description, e.created_at,
	COALESCE(u.name, ''), COALESCE(u.email, '')
FROM time_entries e
LEFT JOIN users u ON u.id = e.owner_id`

func (s *Store) ListEntries(ctx context.Context, q storage.EntryQuery) ([]worklog.EntryWithOwner, error) {
	query := entrySelect + `
WHERE e.occurs_on >= $1 AND e.occurs_on ` + upperBound(q.Range.EndInclusive) + ` $2`
	args := []any{q.Range.Start.UTC(), q.Range.End.UTC()}
	if q.OwnerID != "" {
		query += ` AND e.owner_id = $3`
		args = append(args, q.OwnerID)
	}
	if q.NewestFirst {
		query += ` ORDER BY e.occurs_on DESC, e.start_at DESC, e.id DESC`
	} else {
		query += ` ORDER BY e.occurs_on, e.start_at, e.id`
	}

	rows, err := s.pool.Query(ctx, query, args...)
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

func (s *Store) LatestEntry(ctx context.Context, ownerID string) (worklog.Entry, error) {
	row := s.pool.QueryRow(ctx, entrySelect+`
WHERE e.owner_id = $1
ORDER BY e.created_at DESC, e.id DESC
LIMIT 1`, ownerID)
	entry, err := scanEntryWithOwner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.Entry{}, storage.ErrNotFound
		}
		return worklog.Entry{}, err
	}
	return entry.Entry, nil
}

func (s *Store) UpdateEntry(ctx context.Context, ownerID string, id int64, patch worklog.EntryPatch) (worklog.Entry, error) {
	var entry worklog.Entry
	err := s.pool.QueryRow(ctx, `
UPDATE time_entries
SET occurs_on = COALESCE($1, occurs_on),
	start_at = COALESCE($2, start_at),
	end_at = COALESCE($3, end_at),
	description = COALESCE($4, description)
WHERE id = $5 AND owner_id = $6
RETURNING id, owner_id, occurs_on, start_at, end_at, description, created_at`,
		utcPtr(patch.OccursOn), utcPtr(patch.StartAt), utcPtr(patch.EndAt), patch.Description, id, ownerID,
	).Scan(&entry.ID, &entry.OwnerID, &entry.OccursOn, &entry.StartAt, &entry.EndAt, &entry.Description, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.Entry{}, storage.ErrNotFound
		}
		return worklog.Entry{}, fmt.Errorf("update time entry %d: %w", id, classify(err))
	}
	normalizeEntry(&entry)
	return entry, nil
}

func (s *Store) DeleteEntry(ctx context.Context, ownerID string, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM time_entries WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete time entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) InsertTask(ctx context.Context, task *worklog.Task) error {
	err := s.pool.QueryRow(ctx, `
INSERT INTO tasks (title, description, occurs_on, start_at, end_at, assignee_id, creator_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`,
		task.Title, task.Description, task.OccursOn.UTC(), task.StartAt.UTC(), task.EndAt.UTC(),
		task.AssigneeID, task.CreatorID, task.CreatedAt.UTC(),
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("insert task: %w", classify(err))
	}
	return nil
}

const taskSelect = `
SELECT t.id, t.title, t.description, t.occurs_on, t.start_at, t.end_at,
	t.assignee_id, t.creator_id, t.created_at,
	COALESCE(a.name, ''), COALESCE(a.email, ''), COALESCE(c.name, ''), COALESCE(c.email, '')
FROM tasks t
LEFT JOIN users a ON a.id = t.assignee_id
LEFT JOIN users c ON c.id = t.creator_id`

func (s *Store) ListTasks(ctx context.Context, q storage.TaskQuery) ([]worklog.TaskWithUsers, error) {
	var (
		conditions []string
		args       []any
	)
	if q.Range != nil {
		args = append(args, q.Range.Start.UTC(), q.Range.End.UTC())
		conditions = append(conditions,
			fmt.Sprintf("t.occurs_on >= $%d", len(args)-1),
			fmt.Sprintf("t.occurs_on %s $%d", upperBound(q.Range.EndInclusive), len(args)),
		)
	}
	if q.AssigneeID != "" {
		args = append(args, q.AssigneeID)
		conditions = append(conditions, fmt.Sprintf("t.assignee_id = $%d", len(args)))
	}

	query := taskSelect
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY t.occurs_on, t.start_at, t.id"

	rows, err := s.pool.Query(ctx, query, args...)
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

func (s *Store) GetTask(ctx context.Context, id int64) (worklog.TaskWithUsers, error) {
	task, err := scanTaskWithUsers(s.pool.QueryRow(ctx, taskSelect+"\nWHERE t.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.TaskWithUsers{}, storage.ErrNotFound
		}
		return worklog.TaskWithUsers{}, err
	}
	return task, nil
}

func (s *Store) UpdateTask(ctx context.Context, id int64, patch worklog.TaskPatch) (worklog.Task, error) {
	var task worklog.Task
	err := s.pool.QueryRow(ctx, `
UPDATE tasks
SET title = COALESCE($1, title),
	description = COALESCE($2, description),
	occurs_on = COALESCE($3, occurs_on),
	start_at = COALESCE($4, start_at),
	end_at = COALESCE($5, end_at),
	assignee_id = COALESCE($6, assignee_id)
WHERE id = $7
RETURNING id, title, description, occurs_on, start_at, end_at, assignee_id, creator_id, created_at`,
		patch.Title, patch.Description, utcPtr(patch.OccursOn), utcPtr(patch.StartAt), utcPtr(patch.EndAt), patch.AssigneeID, id,
	).Scan(&task.ID, &task.Title, &task.Description, &task.OccursOn, &task.StartAt, &task.EndAt, &task.AssigneeID, &task.CreatorID, &task.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.Task{}, storage.ErrNotFound
		}
		return worklog.Task{}, fmt.Errorf("update task %d: %w", id, classify(err))
	}
	normalizeTask(&task)
	return task, nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}

func normalizeEntry(entry *worklog.Entry) {
	entry.OccursOn = entry.OccursOn.UTC()
	entry.StartAt = entry.StartAt.UTC()
	entry.EndAt = entry.EndAt.UTC()
	entry.CreatedAt = entry.CreatedAt.UTC()
}

func normalizeTask(task *worklog.Task) {
	task.OccursOn = task.OccursOn.UTC()
	task.StartAt = task.StartAt.UTC()
	task.EndAt = task.EndAt.UTC()
	task.CreatedAt = task.CreatedAt.UTC()
}

func scanEntryWithOwner(row pgx.Row) (worklog.EntryWithOwner, error) {
	var entry worklog.EntryWithOwner
	if err := row.Scan(
		&entry.ID, &entry.OwnerID, &entry.OccursOn, &entry.StartAt, &entry.EndAt, &entry.Description, &entry.CreatedAt,
		&entry.Owner.Name, &entry.Owner.Email,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.EntryWithOwner{}, err
		}
		return worklog.EntryWithOwner{}, fmt.Errorf("scan time entry: %w", err)
	}
	normalizeEntry(&entry.Entry)
	entry.Owner.ID = entry.OwnerID
	return entry, nil
}

func scanTaskWithUsers(row pgx.Row) (worklog.TaskWithUsers, error) {
	var task worklog.TaskWithUsers
	if err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.OccursOn, &task.StartAt, &task.EndAt,
		&task.AssigneeID, &task.CreatorID, &task.CreatedAt,
		&task.Assignee.Name, &task.Assignee.Email, &task.Creator.Name, &task.Creator.Email,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.TaskWithUsers{}, err
		}
		return worklog.TaskWithUsers{}, fmt.Errorf("scan task: %w", err)
	}
	normalizeTask(&task.Task)
	task.Assignee.ID = task.AssigneeID
	task.Creator.ID = task.CreatorID
	return task, nil
}
