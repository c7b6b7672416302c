package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"worktime/calendar"
	"worktime/service"
	"worktime/worklog"
)

func TestTaskService_NonAdminIsRejectedBeforeDataAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := new(MockStore)
	authz := new(MockAuthorizer)
	authz.On("IsAdmin", mock.Anything, "alice").Return(false, nil)
	svc := service.NewTaskService(store, store, authz)
	caller := worklog.Identity{UserID: "alice"}

	_, err := svc.Create(ctx, caller, service.TaskInput{Title: "x", Date: "2025-08-05", StartTime: "09:00", EndTime: "10:00", AssignedToID: "bob"})
	assert.Equal(t, service.CodeAuthorization, service.CodeOf(err))

	_, err = svc.Update(ctx, caller, 1, service.TaskUpdate{Title: strPtr("y")})
	assert.Equal(t, service.CodeAuthorization, service.CodeOf(err))

	err = svc.Delete(ctx, caller, 1)
	assert.Equal(t, service.CodeAuthorization, service.CodeOf(err))

	_, err = svc.Get(ctx, caller, 1)
	assert.Equal(t, service.CodeAuthorization, service.CodeOf(err))

	_, err = svc.ListAll(ctx, caller)
	assert.Equal(t, service.CodeAuthorization, service.CodeOf(err))

	_, err = svc.ListForDay(ctx, caller, time.Now(), true)
	assert.Equal(t, service.CodeAuthorization, service.CodeOf(err))

	_, err = svc.ListForWeek(ctx, caller, service.WeekQuery{Date: time.Now(), AssigneeID: "bob"})
	assert.Equal(t, service.CodeAuthorization, service.CodeOf(err))

	// Even a malformed payload reports the authorization failure.
	_, err = svc.Create(ctx, caller, service.TaskInput{})
	assert.Equal(t, service.CodeAuthorization, service.CodeOf(err))

	store.AssertNotCalled(t, "InsertTask", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeleteTask", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "GetTask", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestTaskService_CreateValidatesAssignee(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newSQLiteFixture(t)
	svc := service.NewTaskService(fx.store, fx.store, service.RoleAuthorizer{Users: fx.store})

	_, err := svc.Create(ctx, fx.admin, service.TaskInput{
		Title: "Inventory", Date: "2025-08-06", StartTime: "08:00", EndTime: "09:00", AssignedToID: "nobody",
	})
	assert.Equal(t, service.CodeValidation, service.CodeOf(err))
	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "assignedToId", svcErr.Details["field"])

	_, err = svc.Create(ctx, fx.admin, service.TaskInput{
		Title: "Inventory", Date: "2025-08-06", StartTime: "08:00", AssignedToID: "alice",
	})
	assert.Equal(t, service.CodeValidation, service.CodeOf(err))
}

func TestTaskService_WeekScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newSQLiteFixture(t)
	svc := service.NewTaskService(fx.store, fx.store, service.RoleAuthorizer{Users: fx.store})

	for _, in := range []service.TaskInput{
		{Title: "Wednesday late", Date: "2025-08-06", StartTime: "13:00", EndTime: "14:00", AssignedToID: "alice"},
		{Title: "Wednesday early", Date: "2025-08-06", StartTime: "08:00", EndTime: "09:00", AssignedToID: "alice"},
		{Title: "Sunday", Date: "2025-08-10", StartTime: "08:00", EndTime: "09:00", AssignedToID: "alice"},
		{Title: "Bob's", Date: "2025-08-06", StartTime: "08:00", EndTime: "09:00", AssignedToID: "bob"},
		{Title: "Next Monday", Date: "2025-08-11", StartTime: "08:00", EndTime: "09:00", AssignedToID: "alice"},
	} {
		task, err := svc.Create(ctx, fx.admin, in)
		require.NoError(t, err)
		assert.Equal(t, "admin", task.CreatorID)
	}

	week, err := svc.ListForWeek(ctx, fx.alice, service.WeekQuery{Date: mustParseRFC3339(t, "2025-08-08T12:00:00Z")})
	require.NoError(t, err)

	wednesday := week.Days.Day(calendar.Wednesday)
	require.Len(t, wednesday, 2)
	assert.Equal(t, "Wednesday early", wednesday[0].Title)
	assert.Equal(t, "Wednesday late", wednesday[1].Title)
	assert.Len(t, week.Days.Day(calendar.Sunday), 1)
	assert.Empty(t, week.Days.Day(calendar.Monday))
	assert.Equal(t, 3, week.Days.Len())

	next, err := svc.ListForWeek(ctx, fx.alice, service.WeekQuery{Date: mustParseRFC3339(t, "2025-08-08T12:00:00Z"), Offset: 1})
	require.NoError(t, err)
	assert.Len(t, next.Days.Day(calendar.Monday), 1)

	// Admin may look at another user's week.
	bobWeek, err := svc.ListForWeek(ctx, fx.admin, service.WeekQuery{Date: mustParseRFC3339(t, "2025-08-06T00:00:00Z"), AssigneeID: "bob"})
	require.NoError(t, err)
	assert.Len(t, bobWeek.Days.Day(calendar.Wednesday), 1)

	day, err := svc.ListForDay(ctx, fx.admin, mustParseRFC3339(t, "2025-08-06T00:00:00Z"), true)
	require.NoError(t, err)
	assert.Len(t, day, 3)

	own, err := svc.ListForDay(ctx, fx.bob, mustParseRFC3339(t, "2025-08-06T00:00:00Z"), false)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Ada Admin", own[0].Creator.Name)

	month, err := svc.ListForMonth(ctx, fx.alice, 2025, 8)
	require.NoError(t, err)
	assert.Len(t, month, 4)

	all, err := svc.ListAll(ctx, fx.admin)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestTaskService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newSQLiteFixture(t)
	svc := service.NewTaskService(fx.store, fx.store, service.RoleAuthorizer{Users: fx.store})

	task, err := svc.Create(ctx, fx.admin, service.TaskInput{
		Title: "Inventory", Description: "count boxes", Date: "2025-08-06", StartTime: "08:00", EndTime: "09:00", AssignedToID: "alice",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, fx.admin, task.ID, service.TaskUpdate{AssignedToID: strPtr("bob")})
	require.NoError(t, err)
	assert.Equal(t, "bob", updated.AssigneeID)
	assert.Equal(t, "Inventory", updated.Title)
	assert.Equal(t, "count boxes", updated.Description)

	got, err := svc.Get(ctx, fx.admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Assignee.Name)

	require.NoError(t, svc.Delete(ctx, fx.admin, task.ID))

	_, err = svc.Get(ctx, fx.admin, task.ID)
	assert.Equal(t, service.CodeNotFound, service.CodeOf(err))
	err = svc.Delete(ctx, fx.admin, task.ID)
	assert.Equal(t, service.CodeNotFound, service.CodeOf(err))
}
