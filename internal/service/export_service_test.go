package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unitime-app/unitime-api/internal/models"
)

type staticSubjectLister struct {
	subjects []models.Subject
}

func (s *staticSubjectLister) ListByUser(ctx context.Context, userID string) ([]models.Subject, error) {
	return s.subjects, nil
}

func TestExportEventsCSV(t *testing.T) {
	subjectID := "sub-1"
	gone := "sub-gone"
	start := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	events := &mockCalendarRepo{events: []models.ScheduleEvent{
		{ID: "e1", SubjectID: &subjectID, Title: "Thi giữa kỳ", StartTime: start, EndTime: start.Add(2 * time.Hour), Type: models.EventTypeExam, Priority: models.PriorityHigh},
		{ID: "e2", SubjectID: &gone, Title: "Orphaned", StartTime: start, EndTime: start.Add(time.Hour), Type: models.EventTypeDeadline, Priority: models.PriorityMedium, IsCompleted: true},
		{ID: "e3", Title: "No subject", StartTime: start, EndTime: start.Add(time.Hour), Type: models.EventTypeOther, Priority: models.PriorityLow},
	}}
	subjects := &staticSubjectLister{subjects: []models.Subject{
		{ID: subjectID, Name: "Giải tích 1", Code: "M01"},
	}}
	svc := NewExportService(events, subjects, zap.NewNop())

	data, err := svc.EventsCSV(context.Background(), "u1")
	require.NoError(t, err)

	body := string(data)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Title")
	assert.Contains(t, body, "Giải tích 1")
	assert.Contains(t, body, MissingSubjectLabel)
	assert.Contains(t, body, "2024-03-10 09:00")
	assert.Contains(t, body, "yes")
}

func TestExportEventsPDF(t *testing.T) {
	start := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	events := &mockCalendarRepo{events: []models.ScheduleEvent{
		{ID: "e1", Title: "Lecture", StartTime: start, EndTime: start.Add(time.Hour), Type: models.EventTypeClass, Priority: models.PriorityMedium},
	}}
	svc := NewExportService(events, &staticSubjectLister{}, zap.NewNop())

	data, err := svc.EventsPDF(context.Background(), "u1")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestExportEmptySchedule(t *testing.T) {
	svc := NewExportService(&mockCalendarRepo{}, &staticSubjectLister{}, zap.NewNop())

	data, err := svc.EventsCSV(context.Background(), "u1")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Title")
}
