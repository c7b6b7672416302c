package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"worktime/service"
	"worktime/storage"
	"worktime/worklog"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) InsertEntry(ctx context.Context, entry *worklog.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockStore) ListEntries(ctx context.Context, q storage.EntryQuery) ([]worklog.EntryWithOwner, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]worklog.EntryWithOwner), args.Error(1)
}

func (m *MockStore) LatestEntry(ctx context.Context, ownerID string) (worklog.Entry, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(worklog.Entry), args.Error(1)
}

func (m *MockStore) UpdateEntry(ctx context.Context, ownerID string, id int64, patch worklog.EntryPatch) (worklog.Entry, error) {
	args := m.Called(ctx, ownerID, id, patch)
	return args.Get(0).(worklog.Entry), args.Error(1)
}

func (m *MockStore) DeleteEntry(ctx context.Context, ownerID string, id int64) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockStore) InsertTask(ctx context.Context, task *worklog.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockStore) ListTasks(ctx context.Context, q storage.TaskQuery) ([]worklog.TaskWithUsers, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]worklog.TaskWithUsers), args.Error(1)
}

func (m *MockStore) GetTask(ctx context.Context, id int64) (worklog.TaskWithUsers, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(worklog.TaskWithUsers), args.Error(1)
}

func (m *MockStore) UpdateTask(ctx context.Context, id int64, patch worklog.TaskPatch) (worklog.Task, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(worklog.Task), args.Error(1)
}

func (m *MockStore) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) InsertUser(ctx context.Context, user worklog.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStore) GetUser(ctx context.Context, id string) (worklog.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(worklog.User), args.Error(1)
}

func (m *MockStore) FindUserByEmail(ctx context.Context, email string) (worklog.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(worklog.User), args.Error(1)
}

func (m *MockStore) ListUsers(ctx context.Context, role worklog.Role) ([]worklog.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]worklog.User), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

var _ service.Store = (*MockStore)(nil)

type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) IsAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

var _ service.Authorizer = (*MockAuthorizer)(nil)

func mustParseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339Nano, value)
	require.NoError(t, err)
	return parsed
}

func strPtr(value string) *string { return &value }

// sqliteFixture is a real store seeded with one admin and two users.
type sqliteFixture struct {
	store *storage.SQLiteStore
	admin worklog.Identity
	alice worklog.Identity
	bob   worklog.Identity
}

func newSQLiteFixture(t *testing.T) sqliteFixture {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "service_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	created := mustParseRFC3339(t, "2025-01-01T00:00:00Z")
	for _, user := range []worklog.User{
		{ID: "admin", Name: "Ada Admin", Email: "ada@example.com", Role: worklog.RoleAdmin, CreatedAt: created},
		{ID: "alice", Name: "Alice", Email: "alice@example.com", Role: worklog.RoleUser, CreatedAt: created},
		{ID: "bob", Name: "Bob", Email: "bob@example.com", Role: worklog.RoleUser, CreatedAt: created},
	} {
		require.NoError(t, store.InsertUser(ctx, user))
	}

	return sqliteFixture{
		store: store,
		admin: worklog.Identity{UserID: "admin"},
		alice: worklog.Identity{UserID: "alice"},
		bob:   worklog.Identity{UserID: "bob"},
	}
}
