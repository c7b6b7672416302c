package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"worktime/internal/timeutil"
	"worktime/service"
	"worktime/storage"
	"worktime/worklog"
)

func TestTimeEntryService_CreateNormalizesToUTC(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	svc := service.NewTimeEntryService(store)
	caller := worklog.Identity{UserID: "alice"}

	store.On("InsertEntry", mock.Anything, mock.MatchedBy(func(e *worklog.Entry) bool {
		return e.OwnerID == "alice" &&
			e.OccursOn.Equal(mustParseRFC3339(t, "2025-08-05T00:00:00Z")) &&
			e.StartAt.Equal(mustParseRFC3339(t, "2025-08-05T07:00:00Z")) &&
			e.EndAt.Equal(mustParseRFC3339(t, "2025-08-05T10:00:00Z")) &&
			e.Description == "Wrote report"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*worklog.Entry).ID = 42
	}).Return(nil).Once()

	entry, err := svc.Create(context.Background(), caller, service.EntryInput{
		Description: "Wrote report",
		Date:        "2025-08-05",
		StartTime:   "09:00",
		EndTime:     "12:00",
		Location:    time.FixedZone("CEST", 2*3600),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), entry.ID)
	assert.Equal(t, "alice", entry.OwnerID)
	store.AssertExpectations(t)
}

func TestTimeEntryService_CreateFilesInstantDateUnderUTCDate(t *testing.T) {
	t.Parallel()

	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	store := new(MockStore)
	svc := service.NewTimeEntryService(store)

	store.On("InsertEntry", mock.Anything, mock.MatchedBy(func(e *worklog.Entry) bool {
		return e.OccursOn.Equal(mustParseRFC3339(t, "2025-08-05T00:00:00Z"))
	})).Return(nil).Once()

	_, err = svc.Create(context.Background(), worklog.Identity{UserID: "alice"}, service.EntryInput{
		Description: "Night shift",
		Date:        "2025-08-05T00:00:00.000Z",
		StartTime:   "2025-08-05T01:00:00Z",
		EndTime:     "2025-08-05T03:00:00Z",
		Location:    newYork,
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestTimeEntryService_CreateRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input service.EntryInput
		code  string
	}{
		{
			name:  "missing description",
			input: service.EntryInput{Date: "2025-08-05", StartTime: "09:00", EndTime: "10:00"},
			code:  service.CodeValidation,
		},
		{
			name:  "garbage date",
			input: service.EntryInput{Description: "x", Date: "garbage", StartTime: "09:00", EndTime: "10:00"},
			code:  service.CodeInvalidFormat,
		},
		{
			name:  "garbage time",
			input: service.EntryInput{Description: "x", Date: "2025-08-05", StartTime: "9", EndTime: "10:00"},
			code:  service.CodeInvalidFormat,
		},
		{
			name:  "five digit year",
			input: service.EntryInput{Description: "x", Date: "10000-01-01", StartTime: "09:00", EndTime: "10:00"},
			code:  service.CodeInvalidFormat,
		},
		{
			name:  "end before start",
			input: service.EntryInput{Description: "x", Date: "2025-08-05", StartTime: "12:00", EndTime: "09:00"},
			code:  service.CodeValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := new(MockStore)
			svc := service.NewTimeEntryService(store)
			_, err := svc.Create(context.Background(), worklog.Identity{UserID: "alice"}, tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.code, service.CodeOf(err))
			store.AssertNotCalled(t, "InsertEntry", mock.Anything, mock.Anything)
		})
	}
}

func TestTimeEntryService_RequiresIdentity(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	svc := service.NewTimeEntryService(store)

	_, err := svc.ListForMonth(context.Background(), worklog.Identity{}, 2025, 8)
	assert.Equal(t, service.CodeAuthorization, service.CodeOf(err))
	store.AssertNotCalled(t, "ListEntries", mock.Anything, mock.Anything)
}

func TestTimeEntryService_ListForMonthValidatesMonth(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	svc := service.NewTimeEntryService(store)
	caller := worklog.Identity{UserID: "alice"}

	for _, tc := range []struct{ year, month int }{{2025, 0}, {2025, 13}, {1969, 5}, {10000, 1}} {
		_, err := svc.ListForMonth(context.Background(), caller, tc.year, tc.month)
		assert.Equal(t, service.CodeValidation, service.CodeOf(err), "year %d month %d", tc.year, tc.month)
	}
	store.AssertNotCalled(t, "ListEntries", mock.Anything, mock.Anything)
}

func TestTimeEntryService_ListForMonthQueriesHalfOpenOwnerRange(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	svc := service.NewTimeEntryService(store)

	store.On("ListEntries", mock.Anything, mock.MatchedBy(func(q storage.EntryQuery) bool {
		return q.OwnerID == "alice" &&
			q.NewestFirst &&
			!q.Range.EndInclusive &&
			q.Range.Start.Equal(mustParseRFC3339(t, "2025-12-01T00:00:00Z")) &&
			q.Range.End.Equal(mustParseRFC3339(t, "2026-01-01T00:00:00Z"))
	})).Return([]worklog.EntryWithOwner{{Entry: worklog.Entry{ID: 1, OwnerID: "alice"}}}, nil).Once()

	entries, err := svc.ListForMonth(context.Background(), worklog.Identity{UserID: "alice"}, 2025, 12)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	store.AssertExpectations(t)
}

func TestTimeEntryService_UpdateMapsStoreErrors(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	svc := service.NewTimeEntryService(store)
	caller := worklog.Identity{UserID: "bob"}

	store.On("UpdateEntry", mock.Anything, "bob", int64(7), mock.Anything).Return(worklog.Entry{}, storage.ErrNotFound).Once()
	store.On("UpdateEntry", mock.Anything, "bob", int64(8), mock.Anything).Return(worklog.Entry{}, errors.New("disk on fire")).Once()

	_, err := svc.Update(context.Background(), caller, 7, service.EntryUpdate{Description: strPtr("x")})
	assert.Equal(t, service.CodeNotFound, service.CodeOf(err))

	_, err = svc.Update(context.Background(), caller, 8, service.EntryUpdate{Description: strPtr("x")})
	assert.Equal(t, service.CodeInternal, service.CodeOf(err))
	store.AssertExpectations(t)
}

func TestTimeEntryService_UpdatePassesOnlySuppliedFields(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	svc := service.NewTimeEntryService(store)

	store.On("UpdateEntry", mock.Anything, "alice", int64(3), mock.MatchedBy(func(p worklog.EntryPatch) bool {
		return p.Description != nil && *p.Description == "Reviewed" && p.StartAt == nil && p.EndAt == nil && p.OccursOn == nil
	})).Return(worklog.Entry{ID: 3, Description: "Reviewed"}, nil).Once()

	entry, err := svc.Update(context.Background(), worklog.Identity{UserID: "alice"}, 3, service.EntryUpdate{Description: strPtr("Reviewed")})
	require.NoError(t, err)
	assert.Equal(t, "Reviewed", entry.Description)
	store.AssertExpectations(t)
}

func TestTimeEntryService_UpdateRejectsTimeOfDayWithoutDate(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	svc := service.NewTimeEntryService(store)

	_, err := svc.Update(context.Background(), worklog.Identity{UserID: "alice"}, 3, service.EntryUpdate{StartTime: strPtr("09:00")})
	assert.Equal(t, service.CodeValidation, service.CodeOf(err))

	_, err = svc.Update(context.Background(), worklog.Identity{UserID: "alice"}, 3, service.EntryUpdate{Description: strPtr("")})
	assert.Equal(t, service.CodeValidation, service.CodeOf(err))
	store.AssertNotCalled(t, "UpdateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTimeEntryService_LatestReturnsNilWithoutEntries(t *testing.T) {
	t.Parallel()

	store := new(MockStore)
	svc := service.NewTimeEntryService(store)
	store.On("LatestEntry", mock.Anything, "alice").Return(worklog.Entry{}, storage.ErrNotFound).Once()

	latest, err := svc.Latest(context.Background(), worklog.Identity{UserID: "alice"})
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestTimeEntryService_OwnershipScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newSQLiteFixture(t)
	svc := service.NewTimeEntryService(fx.store)

	created, err := svc.Create(ctx, fx.alice, service.EntryInput{
		Description: "Wrote report",
		Date:        "2025-08-05",
		StartTime:   "09:00",
		EndTime:     "12:00",
		Location:    time.FixedZone("CEST", 2*3600),
	})
	require.NoError(t, err)

	month, err := svc.ListForMonth(ctx, fx.alice, 2025, 8)
	require.NoError(t, err)
	require.Len(t, month, 1)
	assert.True(t, month[0].StartAt.Equal(mustParseRFC3339(t, "2025-08-05T07:00:00Z")))
	assert.True(t, month[0].EndAt.Equal(mustParseRFC3339(t, "2025-08-05T10:00:00Z")))

	others, err := svc.ListForMonth(ctx, fx.bob, 2025, 8)
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = svc.Update(ctx, fx.bob, created.ID, service.EntryUpdate{Description: strPtr("mine now")})
	assert.Equal(t, service.CodeNotFound, service.CodeOf(err))
	err = svc.Delete(ctx, fx.bob, created.ID)
	assert.Equal(t, service.CodeNotFound, service.CodeOf(err))

	// A foreign id and a missing id are indistinguishable.
	_, missingErr := svc.Update(ctx, fx.bob, created.ID+1000, service.EntryUpdate{Description: strPtr("x")})
	assert.Equal(t, service.CodeOf(err), service.CodeOf(missingErr))

	unchanged, err := svc.Update(ctx, fx.alice, created.ID, service.EntryUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Wrote report", unchanged.Description)
	assert.True(t, unchanged.StartAt.Equal(created.StartAt))

	end := "2025-08-05T06:00:00Z"
	_, err = svc.Update(ctx, fx.alice, created.ID, service.EntryUpdate{EndTime: &end})
	assert.Equal(t, service.CodeValidation, service.CodeOf(err))

	week, err := svc.ListForWeek(ctx, fx.alice, mustParseRFC3339(t, "2025-08-07T00:00:00Z"), 0)
	require.NoError(t, err)
	assert.Len(t, week.Days.Day("tuesday"), 1)
	assert.Equal(t, 1, week.Days.Len())

	day, err := svc.ListForDay(ctx, fx.alice, mustParseRFC3339(t, "2025-08-05T00:00:00Z"))
	require.NoError(t, err)
	assert.Len(t, day, 1)

	groups, err := svc.GroupForMonth(ctx, fx.alice, 2025, 8, timeutil.LocaleGerman)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Dienstag, 5. August 2025", groups[0].Label)

	latest, err := svc.Latest(ctx, fx.alice)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, created.ID, latest.ID)

	require.NoError(t, svc.Delete(ctx, fx.alice, created.ID))
	month, err = svc.ListForMonth(ctx, fx.alice, 2025, 8)
	require.NoError(t, err)
	assert.Empty(t, month)
}

func TestWeekViewEncodesSevenDays(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newSQLiteFixture(t)
	svc := service.NewTimeEntryService(fx.store)

	week, err := svc.ListForWeek(ctx, fx.alice, mustParseRFC3339(t, "2025-08-07T00:00:00Z"), 1)
	require.NoError(t, err)

	encoded, err := json.Marshal(week.Days)
	require.NoError(t, err)

	var decoded map[string][]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Len(t, decoded, 7)
	assert.True(t, week.Range.Start.Equal(mustParseRFC3339(t, "2025-08-11T00:00:00Z")))
}
