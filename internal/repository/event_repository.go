package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unitime-app/unitime-api/internal/models"
)

// EventRepository handles persistence for schedule events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new repository instance.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListByUser returns a user's events ordered by ascending start time,
// optionally restricted to a window.
func (r *EventRepository) ListByUser(ctx context.Context, userID string, filter models.EventFilter) ([]models.ScheduleEvent, error) {
	query := "SELECT id, user_id, subject_id, title, description, start_time, end_time, type, priority, is_completed, created_at, updated_at FROM schedule_events WHERE user_id = $1"
	args := []interface{}{userID}

	if filter.Start != nil {
		query += fmt.Sprintf(" AND start_time >= $%d", len(args)+1)
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		query += fmt.Sprintf(" AND end_time <= $%d", len(args)+1)
		args = append(args, *filter.End)
	}
	query += " ORDER BY start_time ASC"

	var events []models.ScheduleEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// FindByID returns an event owned by the given user.
func (r *EventRepository) FindByID(ctx context.Context, userID, id string) (*models.ScheduleEvent, error) {
	const query = `SELECT id, user_id, subject_id, title, description, start_time, end_time, type, priority, is_completed, created_at, updated_at FROM schedule_events WHERE id = $1 AND user_id = $2`
	var event models.ScheduleEvent
	if err := r.db.GetContext(ctx, &event, query, id, userID); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create persists a new event.
func (r *EventRepository) Create(ctx context.Context, event *models.ScheduleEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO schedule_events (id, user_id, subject_id, title, description, start_time, end_time, type, priority, is_completed, created_at, updated_at) VALUES (:id, :user_id, :subject_id, :title, :description, :start_time, :end_time, :type, :priority, :is_completed, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Patch updates only the fields set on the patch, building the SET list
// dynamically so untouched columns keep their values.
func (r *EventRepository) Patch(ctx context.Context, userID, id string, patch models.EventPatch) error {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.SubjectID != nil {
		if *patch.SubjectID == "" {
			sets = append(sets, "subject_id = NULL")
		} else {
			add("subject_id", *patch.SubjectID)
		}
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.StartTime != nil {
		add("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		add("end_time", *patch.EndTime)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.IsCompleted != nil {
		add("is_completed", *patch.IsCompleted)
	}
	if len(sets) == 0 {
		return nil
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id, userID)
	query := fmt.Sprintf("UPDATE schedule_events SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("patch event: %w", err)
	}
	return nil
}

// SetCompletion updates only the completion flag of an event.
func (r *EventRepository) SetCompletion(ctx context.Context, userID, id string, completed bool) error {
	const query = `UPDATE schedule_events SET is_completed = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`
	if _, err := r.db.ExecContext(ctx, query, completed, time.Now().UTC(), id, userID); err != nil {
		return fmt.Errorf("set event completion: %w", err)
	}
	return nil
}

// Delete removes an event record.
func (r *EventRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_events WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
