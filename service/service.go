// Package service implements the tracker operations on top of a store: owner
// scoped time entries, admin managed tasks and admin reports.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"worktime/calendar"
	"worktime/internal/timeutil"
	"worktime/storage"
	"worktime/worklog"
)

type EntryStore interface {
	InsertEntry(ctx context.Context, entry *worklog.Entry) error
	ListEntries(ctx context.Context, q storage.EntryQuery) ([]worklog.EntryWithOwner, error)
	LatestEntry(ctx context.Context, ownerID string) (worklog.Entry, error)
	UpdateEntry(ctx context.Context, ownerID string, id int64, patch worklog.EntryPatch) (worklog.Entry, error)
	DeleteEntry(ctx context.Context, ownerID string, id int64) error
}

type TaskStore interface {
	InsertTask(ctx context.Context, task *worklog.Task) error
	ListTasks(ctx context.Context, q storage.TaskQuery) ([]worklog.TaskWithUsers, error)
	GetTask(ctx context.Context, id int64) (worklog.TaskWithUsers, error)
	UpdateTask(ctx context.Context, id int64, patch worklog.TaskPatch) (worklog.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

type UserStore interface {
	InsertUser(ctx context.Context, user worklog.User) error
	GetUser(ctx context.Context, id string) (worklog.User, error)
	FindUserByEmail(ctx context.Context, email string) (worklog.User, error)
	ListUsers(ctx context.Context, role worklog.Role) ([]worklog.User, error)
}

// Store is everything the services need from persistence.
type Store interface {
	EntryStore
	TaskStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}

// Authorizer answers whether a user holds the admin capability.
type Authorizer interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RoleAuthorizer reads the capability from the stored user role.
type RoleAuthorizer struct {
	Users interface {
		GetUser(ctx context.Context, id string) (worklog.User, error)
	}
}

func (a RoleAuthorizer) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := a.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load user %s: %w", userID, err)
	}
	return user.Role == worklog.RoleAdmin, nil
}

// WeekView is a Monday..Sunday bucket with its records keyed by weekday.
type WeekView[T any] struct {
	Range calendar.Bucket  `json:"range"`
	Days  calendar.Week[T] `json:"days"`
}

func requireCaller(caller worklog.Identity) error {
	if strings.TrimSpace(caller.UserID) == "" {
		return NewAuthorizationError("act without an identity")
	}
	return nil
}

func requireAdmin(ctx context.Context, authz Authorizer, caller worklog.Identity, operation string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	ok, err := authz.IsAdmin(ctx, caller.UserID)
	if err != nil {
		return NewInternal("check admin role", err)
	}
	if !ok {
		return NewAuthorizationError(operation)
	}
	return nil
}

func validateMonth(year, month int) error {
	if year < timeutil.MinYear || year > timeutil.MaxYear {
		return NewValidationError("year", fmt.Sprintf("must be between %d and %d", timeutil.MinYear, timeutil.MaxYear))
	}
	if month < 1 || month > 12 {
		return NewValidationError("month", "must be between 1 and 12")
	}
	return nil
}

func validateID(id int64) error {
	if id <= 0 {
		return NewValidationError("id", "must be a positive integer")
	}
	return nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator reports field names the way clients send them.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func validateInput(in any) error {
	err := structValidator().Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		reason := first.Tag()
		if first.Tag() == "required" {
			reason = "is required"
		}
		return NewValidationError(first.Field(), reason)
	}
	return NewInternal("validate input", err)
}

// interval normalizes a date plus start and end values into UTC instants.
func interval(date, start, end string, loc *time.Location) (time.Time, time.Time, time.Time, error) {
	occursOn, err := timeutil.ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, NewInvalidFormat("date", err)
	}
	startAt, err := timeutil.ResolveInstant(date, start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, NewInvalidFormat("startTime", err)
	}
	endAt, err := timeutil.ResolveInstant(date, end, loc)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, NewInvalidFormat("endTime", err)
	}
	if !endAt.After(startAt) {
		return time.Time{}, time.Time{}, time.Time{}, NewValidationError("endTime", "must be after startTime")
	}
	return occursOn, startAt, endAt, nil
}

// patchTimes normalizes the optional date, start and end of an update.
// A start or end given as a time of day needs the date in the same request.
func patchTimes(date, start, end *string, loc *time.Location) (*time.Time, *time.Time, *time.Time, error) {
	var occursOn, startAt, endAt *time.Time
	if date != nil {
		parsed, err := timeutil.ParseDate(*date)
		if err != nil {
			return nil, nil, nil, NewInvalidFormat("date", err)
		}
		occursOn = &parsed
	}

	resolve := func(field string, value *string) (*time.Time, error) {
		if value == nil {
			return nil, nil
		}
		if !strings.Contains(*value, "T") && date == nil {
			return nil, NewValidationError(field, "a time of day requires the date field")
		}
		day := ""
		if date != nil {
			day = *date
		}
		parsed, err := timeutil.ResolveInstant(day, *value, loc)
		if err != nil {
			return nil, NewInvalidFormat(field, err)
		}
		return &parsed, nil
	}

	var err error
	if startAt, err = resolve("startTime", start); err != nil {
		return nil, nil, nil, err
	}
	if endAt, err = resolve("endTime", end); err != nil {
		return nil, nil, nil, err
	}
	if startAt != nil && endAt != nil && !endAt.After(*startAt) {
		return nil, nil, nil, NewValidationError("endTime", "must be after startTime")
	}
	return occursOn, startAt, endAt, nil
}
