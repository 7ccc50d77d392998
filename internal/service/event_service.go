package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unitime-app/unitime-api/internal/models"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
)

type eventRepository interface {
	ListByUser(ctx context.Context, userID string, filter models.EventFilter) ([]models.ScheduleEvent, error)
	FindByID(ctx context.Context, userID, id string) (*models.ScheduleEvent, error)
	Create(ctx context.Context, event *models.ScheduleEvent) error
	Patch(ctx context.Context, userID, id string, patch models.EventPatch) error
	Delete(ctx context.Context, userID, id string) error
}

// CreateEventRequest describes the create payload. End before start is
// accepted, matching the lenient source behavior.
type CreateEventRequest struct {
	SubjectID   *string          `json:"subject_id"`
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description"`
	StartTime   time.Time        `json:"start_time" validate:"required"`
	EndTime     time.Time        `json:"end_time" validate:"required"`
	Type        models.EventType `json:"type" validate:"required"`
	Priority    models.Priority  `json:"priority"`
	IsCompleted bool             `json:"is_completed"`
}

// EventService handles schedule event workflows.
type EventService struct {
	repo      eventRepository
	dashboard summaryInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService creates a new event service. The invalidator may be nil.
func NewEventService(repo eventRepository, dashboard summaryInvalidator, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, dashboard: dashboard, validator: validate, logger: logger}
}

// List returns a user's events ordered by start time, optionally windowed.
func (s *EventService) List(ctx context.Context, userID string, filter models.EventFilter) ([]models.ScheduleEvent, error) {
	events, err := s.repo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// Get returns an event by identifier.
func (s *EventService) Get(ctx context.Context, userID, id string) (*models.ScheduleEvent, error) {
	event, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// Create registers a new event.
func (s *EventService) Create(ctx context.Context, userID string, req CreateEventRequest) (*models.ScheduleEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown event type")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
	}

	subjectID := req.SubjectID
	if subjectID != nil && *subjectID == "" {
		subjectID = nil
	}

	event := &models.ScheduleEvent{
		UserID:      userID,
		SubjectID:   subjectID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Type:        req.Type,
		Priority:    priority,
		IsCompleted: req.IsCompleted,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx, userID)
	}
	return event, nil
}

// Patch applies a partial update. Nil fields stay untouched.
func (s *EventService) Patch(ctx context.Context, userID, id string, patch models.EventPatch) (*models.ScheduleEvent, error) {
	if patch.Title != nil && *patch.Title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title must not be empty")
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown event type")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
	}

	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	if !patch.Empty() {
		if err := s.repo.Patch(ctx, userID, id, patch); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
		}
	}

	event, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx, userID)
	}
	return event, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx, userID)
	}
	return nil
}
