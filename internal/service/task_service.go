package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/unitime-app/unitime-api/internal/models"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
)

type taskEventRepository interface {
	ListByUser(ctx context.Context, userID string, filter models.EventFilter) ([]models.ScheduleEvent, error)
	FindByID(ctx context.Context, userID, id string) (*models.ScheduleEvent, error)
	SetCompletion(ctx context.Context, userID, id string, completed bool) error
}

// summaryInvalidator drops cached dashboard summaries after a mutation.
type summaryInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// TaskService presents and mutates the subset of events that count as
// tasks: deadlines, exams and study blocks.
type TaskService struct {
	repo      taskEventRepository
	dashboard summaryInvalidator
	logger    *zap.Logger
}

// NewTaskService constructs the service. The invalidator may be nil.
func NewTaskService(repo taskEventRepository, dashboard summaryInvalidator, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, dashboard: dashboard, logger: logger}
}

// List fetches the user's events and returns the task subset matching the
// status filter, sorted by ascending start time.
func (s *TaskService) List(ctx context.Context, userID string, status models.TaskStatus) ([]models.ScheduleEvent, error) {
	if status == "" {
		status = models.TaskStatusAll
	}
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of all, pending, completed")
	}
	events, err := s.repo.ListByUser(ctx, userID, models.EventFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return SortByStart(FilterByStatus(SelectTasks(events), status)), nil
}

// SelectTasks filters events to task types, preserving input order.
func SelectTasks(events []models.ScheduleEvent) []models.ScheduleEvent {
	tasks := make([]models.ScheduleEvent, 0, len(events))
	for _, ev := range events {
		if ev.Type.IsTask() {
			tasks = append(tasks, ev)
		}
	}
	return tasks
}

// FilterByStatus keeps tasks matching the status; "all" passes through.
func FilterByStatus(tasks []models.ScheduleEvent, status models.TaskStatus) []models.ScheduleEvent {
	if status == models.TaskStatusAll || status == "" {
		return tasks
	}
	wantCompleted := status == models.TaskStatusCompleted
	filtered := make([]models.ScheduleEvent, 0, len(tasks))
	for _, t := range tasks {
		if t.IsCompleted == wantCompleted {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// SortByStart orders tasks by ascending start time. The sort is stable so
// ties keep their input order.
func SortByStart(tasks []models.ScheduleEvent) []models.ScheduleEvent {
	sorted := make([]models.ScheduleEvent, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}

// IsOverdue reports whether an incomplete task's end time has passed.
// Completed tasks are never overdue.
func IsOverdue(task models.ScheduleEvent, now time.Time) bool {
	return !task.IsCompleted && task.EndTime.Before(now)
}

// ToggleCompletion flips the completion flag of the identified task and
// persists only that field. Calling it twice toggles twice; callers must
// not blindly retry.
func (s *TaskService) ToggleCompletion(ctx context.Context, userID, taskID string) (*models.ScheduleEvent, error) {
	event, err := s.repo.FindByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}

	event.IsCompleted = !event.IsCompleted
	if err := s.repo.SetCompletion(ctx, userID, taskID, event.IsCompleted); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}

	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx, userID)
	}
	return event, nil
}
