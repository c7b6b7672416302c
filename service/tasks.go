package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"worktime/calendar"
	"worktime/internal/logger"
	"worktime/storage"
	"worktime/worklog"
)

type TaskInput struct {
	Title        string         `json:"title" validate:"required"`
	Description  string         `json:"description"`
	Date         string         `json:"date" validate:"required"`
	StartTime    string         `json:"startTime" validate:"required"`
	EndTime      string         `json:"endTime" validate:"required"`
	AssignedToID string         `json:"assignedToId" validate:"required"`
	Location     *time.Location `json:"-" validate:"-"`
}

type TaskUpdate struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Date         *string        `json:"date,omitempty"`
	StartTime    *string        `json:"startTime,omitempty"`
	EndTime      *string        `json:"endTime,omitempty"`
	AssignedToID *string        `json:"assignedToId,omitempty"`
	Location     *time.Location `json:"-"`
}

// WeekQuery selects one week of tasks. An empty AssigneeID means the caller.
type WeekQuery struct {
	Date       time.Time
	Offset     int
	AssigneeID string
}

type TaskService struct {
	store TaskStore
	users UserStore
	authz Authorizer
	now   func() time.Time
}

func NewTaskService(store TaskStore, users UserStore, authz Authorizer) *TaskService {
	return &TaskService{store: store, users: users, authz: authz, now: time.Now}
}

func (s *TaskService) list(ctx context.Context, q storage.TaskQuery) ([]worklog.TaskWithUsers, error) {
	tasks, err := s.store.ListTasks(ctx, q)
	if err != nil {
		return nil, NewInternal("list tasks", err)
	}
	return tasks, nil
}

// ListForDay returns the caller's tasks on the UTC day of date. With allUsers
// an admin sees every user's tasks of that day.
func (s *TaskService) ListForDay(ctx context.Context, caller worklog.Identity, date time.Time, allUsers bool) ([]worklog.TaskWithUsers, error) {
	assignee := caller.UserID
	if allUsers {
		if err := requireAdmin(ctx, s.authz, caller, "list tasks of all users"); err != nil {
			return nil, err
		}
		assignee = ""
	} else if err := requireCaller(caller); err != nil {
		return nil, err
	}
	bucket := calendar.DayBounds(date)
	return s.list(ctx, storage.TaskQuery{AssigneeID: assignee, Range: &bucket})
}

// ListForWeek returns a week of tasks keyed by weekday. Looking at another
// user's week requires admin.
func (s *TaskService) ListForWeek(ctx context.Context, caller worklog.Identity, q WeekQuery) (WeekView[worklog.TaskWithUsers], error) {
	assignee := q.AssigneeID
	if assignee == "" || assignee == caller.UserID {
		if err := requireCaller(caller); err != nil {
			return WeekView[worklog.TaskWithUsers]{}, err
		}
		assignee = caller.UserID
	} else if err := requireAdmin(ctx, s.authz, caller, "list tasks of another user"); err != nil {
		return WeekView[worklog.TaskWithUsers]{}, err
	}

	bucket := calendar.WeekBounds(q.Date, q.Offset)
	tasks, err := s.list(ctx, storage.TaskQuery{AssigneeID: assignee, Range: &bucket})
	if err != nil {
		return WeekView[worklog.TaskWithUsers]{}, err
	}
	return WeekView[worklog.TaskWithUsers]{
		Range: bucket,
		Days:  calendar.GroupByWeekday(tasks, taskDate),
	}, nil
}

// ListForMonth returns the caller's tasks of the month in date order.
func (s *TaskService) ListForMonth(ctx context.Context, caller worklog.Identity, year, month int) ([]worklog.TaskWithUsers, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	bucket := calendar.MonthBounds(year, month)
	return s.list(ctx, storage.TaskQuery{AssigneeID: caller.UserID, Range: &bucket})
}

// ListAll returns every task of every user.
func (s *TaskService) ListAll(ctx context.Context, caller worklog.Identity) ([]worklog.TaskWithUsers, error) {
	if err := requireAdmin(ctx, s.authz, caller, "list all tasks"); err != nil {
		return nil, err
	}
	return s.list(ctx, storage.TaskQuery{})
}

func (s *TaskService) Get(ctx context.Context, caller worklog.Identity, id int64) (worklog.TaskWithUsers, error) {
	if err := requireAdmin(ctx, s.authz, caller, "read tasks"); err != nil {
		return worklog.TaskWithUsers{}, err
	}
	if err := validateID(id); err != nil {
		return worklog.TaskWithUsers{}, err
	}
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return worklog.TaskWithUsers{}, storeError("get task", "task", id, err)
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, caller worklog.Identity, in TaskInput) (worklog.Task, error) {
	if err := requireAdmin(ctx, s.authz, caller, "create tasks"); err != nil {
		return worklog.Task{}, err
	}
	if err := validateInput(in); err != nil {
		return worklog.Task{}, err
	}
	occursOn, startAt, endAt, err := interval(in.Date, in.StartTime, in.EndTime, in.Location)
	if err != nil {
		return worklog.Task{}, err
	}
	if err := s.requireUser(ctx, in.AssignedToID); err != nil {
		return worklog.Task{}, err
	}

	task := worklog.Task{
		Title:       in.Title,
		Description: in.Description,
		OccursOn:    occursOn,
		StartAt:     startAt,
		EndAt:       endAt,
		AssigneeID:  in.AssignedToID,
		CreatorID:   caller.UserID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.InsertTask(ctx, &task); err != nil {
		return worklog.Task{}, storeError("create task", "task", nil, err)
	}

	logger.Info("task created",
		zap.Int64("id", task.ID),
		zap.String("assignee_id", task.AssigneeID),
		zap.String("creator_id", task.CreatorID),
	)
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, caller worklog.Identity, id int64, in TaskUpdate) (worklog.Task, error) {
	if err := requireAdmin(ctx, s.authz, caller, "update tasks"); err != nil {
		return worklog.Task{}, err
	}
	if err := validateID(id); err != nil {
		return worklog.Task{}, err
	}
	if in.Title != nil && *in.Title == "" {
		return worklog.Task{}, NewValidationError("title", "must not be empty")
	}
	occursOn, startAt, endAt, err := patchTimes(in.Date, in.StartTime, in.EndTime, in.Location)
	if err != nil {
		return worklog.Task{}, err
	}
	if in.AssignedToID != nil {
		if err := s.requireUser(ctx, *in.AssignedToID); err != nil {
			return worklog.Task{}, err
		}
	}

	task, err := s.store.UpdateTask(ctx, id, worklog.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
		OccursOn:    occursOn,
		StartAt:     startAt,
		EndAt:       endAt,
		AssigneeID:  in.AssignedToID,
	})
	if err != nil {
		return worklog.Task{}, storeError("update task", "task", id, err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, caller worklog.Identity, id int64) error {
	if err := requireAdmin(ctx, s.authz, caller, "delete tasks"); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return storeError("delete task", "task", id, err)
	}
	return nil
}

func (s *TaskService) requireUser(ctx context.Context, id string) error {
	if _, err := s.users.GetUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewValidationError("assignedToId", "unknown user")
		}
		return NewInternal("load assignee", err)
	}
	return nil
}

func taskDate(t worklog.TaskWithUsers) time.Time { return t.OccursOn }
