package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"worktime/calendar"
	"worktime/internal/logger"
	"worktime/internal/timeutil"
	"worktime/storage"
	"worktime/worklog"
)

// EntryInput is a new time entry as submitted by its owner. Date is
// YYYY-MM-DD or an instant; StartTime and EndTime are HH:MM wall-clock values
// in Location or complete RFC 3339 instants.
type EntryInput struct {
	Description string         `json:"description" validate:"required"`
	Date        string         `json:"date" validate:"required"`
	StartTime   string         `json:"startTime" validate:"required"`
	EndTime     string         `json:"endTime" validate:"required"`
	Location    *time.Location `json:"-" validate:"-"`
}

// EntryUpdate lists the fields to change. Nil fields stay as stored.
type EntryUpdate struct {
	Description *string        `json:"description,omitempty"`
	Date        *string        `json:"date,omitempty"`
	StartTime   *string        `json:"startTime,omitempty"`
	EndTime     *string        `json:"endTime,omitempty"`
	Location    *time.Location `json:"-"`
}

type TimeEntryService struct {
	store EntryStore
	now   func() time.Time
}

func NewTimeEntryService(store EntryStore) *TimeEntryService {
	return &TimeEntryService{store: store, now: time.Now}
}

func (s *TimeEntryService) list(ctx context.Context, caller worklog.Identity, bucket calendar.Bucket, newestFirst bool) ([]worklog.Entry, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	rows, err := s.store.ListEntries(ctx, storage.EntryQuery{OwnerID: caller.UserID, Range: bucket, NewestFirst: newestFirst})
	if err != nil {
		return nil, NewInternal("list time entries", err)
	}
	entries := make([]worklog.Entry, len(rows))
	for i, row := range rows {
		entries[i] = row.Entry
	}
	return entries, nil
}

// ListForDay returns the caller's entries on the UTC day of date.
func (s *TimeEntryService) ListForDay(ctx context.Context, caller worklog.Identity, date time.Time) ([]worklog.Entry, error) {
	return s.list(ctx, caller, calendar.DayBounds(date), false)
}

// ListForWeek returns the caller's entries of the Monday-anchored week
// containing date shifted by offsetWeeks, keyed by weekday.
func (s *TimeEntryService) ListForWeek(ctx context.Context, caller worklog.Identity, date time.Time, offsetWeeks int) (WeekView[worklog.Entry], error) {
	bucket := calendar.WeekBounds(date, offsetWeeks)
	entries, err := s.list(ctx, caller, bucket, false)
	if err != nil {
		return WeekView[worklog.Entry]{}, err
	}
	return WeekView[worklog.Entry]{
		Range: bucket,
		Days:  calendar.GroupByWeekday(entries, entryDate),
	}, nil
}

// ListForMonth returns the caller's entries of the month, newest day first.
func (s *TimeEntryService) ListForMonth(ctx context.Context, caller worklog.Identity, year, month int) ([]worklog.Entry, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	return s.list(ctx, caller, calendar.MonthBounds(year, month), true)
}

// GroupForMonth returns the month's entries grouped under date labels.
func (s *TimeEntryService) GroupForMonth(ctx context.Context, caller worklog.Identity, year, month int, locale timeutil.Locale) ([]calendar.Group[worklog.Entry], error) {
	entries, err := s.ListForMonth(ctx, caller, year, month)
	if err != nil {
		return nil, err
	}
	return calendar.GroupByDate(entries, entryDate, locale), nil
}

// Latest returns the caller's most recently created entry, or nil.
func (s *TimeEntryService) Latest(ctx context.Context, caller worklog.Identity) (*worklog.Entry, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	entry, err := s.store.LatestEntry(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, NewInternal("load latest time entry", err)
	}
	return &entry, nil
}

func (s *TimeEntryService) Create(ctx context.Context, caller worklog.Identity, in EntryInput) (worklog.Entry, error) {
	if err := requireCaller(caller); err != nil {
		return worklog.Entry{}, err
	}
	if err := validateInput(in); err != nil {
		return worklog.Entry{}, err
	}
	occursOn, startAt, endAt, err := interval(in.Date, in.StartTime, in.EndTime, in.Location)
	if err != nil {
		return worklog.Entry{}, err
	}

	entry := worklog.Entry{
		OwnerID:     caller.UserID,
		OccursOn:    occursOn,
		StartAt:     startAt,
		EndAt:       endAt,
		Description: in.Description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.InsertEntry(ctx, &entry); err != nil {
		return worklog.Entry{}, storeError("create time entry", "timeEntry", nil, err)
	}

	logger.Info("time entry created",
		zap.Int64("id", entry.ID),
		zap.String("owner_id", entry.OwnerID),
		zap.Time("date", entry.OccursOn),
	)
	return entry, nil
}

// Update changes only the supplied fields of an entry the caller owns.
func (s *TimeEntryService) Update(ctx context.Context, caller worklog.Identity, id int64, in EntryUpdate) (worklog.Entry, error) {
	if err := requireCaller(caller); err != nil {
		return worklog.Entry{}, err
	}
	if err := validateID(id); err != nil {
		return worklog.Entry{}, err
	}
	if in.Description != nil && *in.Description == "" {
		return worklog.Entry{}, NewValidationError("description", "must not be empty")
	}
	occursOn, startAt, endAt, err := patchTimes(in.Date, in.StartTime, in.EndTime, in.Location)
	if err != nil {
		return worklog.Entry{}, err
	}

	patch := worklog.EntryPatch{
		OccursOn:    occursOn,
		StartAt:     startAt,
		EndAt:       endAt,
		Description: in.Description,
	}
	entry, err := s.store.UpdateEntry(ctx, caller.UserID, id, patch)
	if err != nil {
		return worklog.Entry{}, storeError("update time entry", "timeEntry", id, err)
	}
	return entry, nil
}

// Delete removes an entry the caller owns.
func (s *TimeEntryService) Delete(ctx context.Context, caller worklog.Identity, id int64) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.store.DeleteEntry(ctx, caller.UserID, id); err != nil {
		return storeError("delete time entry", "timeEntry", id, err)
	}
	return nil
}

func entryDate(e worklog.Entry) time.Time { return e.OccursOn }
