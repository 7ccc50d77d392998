package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unitime-app/unitime-api/internal/models"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
)

type mockEventRepo struct {
	items   map[string]*models.ScheduleEvent
	patches []models.EventPatch
	deleted []string
}

func (m *mockEventRepo) ListByUser(ctx context.Context, userID string, filter models.EventFilter) ([]models.ScheduleEvent, error) {
	out := make([]models.ScheduleEvent, 0, len(m.items))
	for _, ev := range m.items {
		out = append(out, *ev)
	}
	return out, nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, userID, id string) (*models.ScheduleEvent, error) {
	if ev, ok := m.items[id]; ok {
		cp := *ev
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.ScheduleEvent) error {
	if m.items == nil {
		m.items = make(map[string]*models.ScheduleEvent)
	}
	if event.ID == "" {
		event.ID = "generated"
	}
	cp := *event
	m.items[event.ID] = &cp
	return nil
}

func (m *mockEventRepo) Patch(ctx context.Context, userID, id string, patch models.EventPatch) error {
	ev, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.patches = append(m.patches, patch)
	if patch.Title != nil {
		ev.Title = *patch.Title
	}
	if patch.Priority != nil {
		ev.Priority = *patch.Priority
	}
	if patch.IsCompleted != nil {
		ev.IsCompleted = *patch.IsCompleted
	}
	if patch.SubjectID != nil {
		if *patch.SubjectID == "" {
			ev.SubjectID = nil
		} else {
			ev.SubjectID = patch.SubjectID
		}
	}
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, userID, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func validCreateEvent() CreateEventRequest {
	start := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	return CreateEventRequest{
		Title:     "Nộp bài tập lớn",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Type:      models.EventTypeDeadline,
	}
}

func TestEventServiceCreateDefaultsPriority(t *testing.T) {
	repo := &mockEventRepo{}
	invalidator := &recordingInvalidator{}
	svc := NewEventService(repo, invalidator, validator.New(), zap.NewNop())

	event, err := svc.Create(context.Background(), "u1", validCreateEvent())
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, event.Priority)
	assert.False(t, event.IsCompleted)
	assert.Nil(t, event.SubjectID)
	assert.Equal(t, []string{"u1"}, invalidator.users)
}

func TestEventServiceCreateBlankSubjectMeansNone(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, nil, validator.New(), zap.NewNop())

	req := validCreateEvent()
	blank := ""
	req.SubjectID = &blank

	event, err := svc.Create(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Nil(t, event.SubjectID)
}

func TestEventServiceCreateAcceptsInvertedRange(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, nil, validator.New(), zap.NewNop())

	req := validCreateEvent()
	req.EndTime = req.StartTime.Add(-time.Hour)

	_, err := svc.Create(context.Background(), "u1", req)
	require.NoError(t, err)
}

func TestEventServiceCreateRejectsUnknownType(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, nil, validator.New(), zap.NewNop())

	req := validCreateEvent()
	req.Type = models.EventType("PARTY")

	_, err := svc.Create(context.Background(), "u1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEventServiceCreateRejectsUnknownPriority(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, nil, validator.New(), zap.NewNop())

	req := validCreateEvent()
	req.Priority = models.Priority("WHENEVER")

	_, err := svc.Create(context.Background(), "u1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEventServicePatch(t *testing.T) {
	repo := &mockEventRepo{}
	invalidator := &recordingInvalidator{}
	svc := NewEventService(repo, invalidator, validator.New(), zap.NewNop())

	created, err := svc.Create(context.Background(), "u1", validCreateEvent())
	require.NoError(t, err)

	title := "Renamed"
	priority := models.PriorityHigh
	updated, err := svc.Patch(context.Background(), "u1", created.ID, models.EventPatch{Title: &title, Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	require.Len(t, repo.patches, 1)
	assert.Len(t, invalidator.users, 2)
}

func TestEventServicePatchValidatesBeforeLookup(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, nil, validator.New(), zap.NewNop())

	bad := models.EventType("PARTY")
	_, err := svc.Patch(context.Background(), "u1", "missing", models.EventPatch{Type: &bad})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEventServicePatchUnknownEvent(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, nil, validator.New(), zap.NewNop())

	title := "anything"
	_, err := svc.Patch(context.Background(), "u1", "missing", models.EventPatch{Title: &title})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEventServicePatchClearsSubjectLink(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, nil, validator.New(), zap.NewNop())

	req := validCreateEvent()
	subjectID := "sub-1"
	req.SubjectID = &subjectID
	created, err := svc.Create(context.Background(), "u1", req)
	require.NoError(t, err)
	require.NotNil(t, created.SubjectID)

	none := ""
	updated, err := svc.Patch(context.Background(), "u1", created.ID, models.EventPatch{SubjectID: &none})
	require.NoError(t, err)
	assert.Nil(t, updated.SubjectID)
}

func TestEventServiceDelete(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, nil, validator.New(), zap.NewNop())

	created, err := svc.Create(context.Background(), "u1", validCreateEvent())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u1", created.ID))
	assert.Equal(t, []string{created.ID}, repo.deleted)

	err = svc.Delete(context.Background(), "u1", created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
