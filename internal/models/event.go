package models

import "time"

// EventType classifies a schedule event. Closed enumeration.
type EventType string

const (
	EventTypeClass    EventType = "CLASS"
	EventTypeExam     EventType = "EXAM"
	EventTypeDeadline EventType = "DEADLINE"
	EventTypeStudy    EventType = "STUDY"
	EventTypeOther    EventType = "OTHER"
)

// Valid reports whether the value is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeClass, EventTypeExam, EventTypeDeadline, EventTypeStudy, EventTypeOther:
		return true
	default:
		return false
	}
}

// IsTask reports whether events of this type appear in the task list.
func (t EventType) IsTask() bool {
	switch t {
	case EventTypeDeadline, EventTypeExam, EventTypeStudy:
		return true
	default:
		return false
	}
}

// Priority ranks tasks in the task view.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Valid reports whether the value is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// ScheduleEvent represents a single calendar entry: a class meeting, exam,
// deadline, study block or anything else the student tracks.
type ScheduleEvent struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"-"`
	SubjectID   *string   `db:"subject_id" json:"subject_id,omitempty"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description,omitempty"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	Type        EventType `db:"type" json:"type"`
	Priority    Priority  `db:"priority" json:"priority"`
	IsCompleted bool      `db:"is_completed" json:"is_completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// EventFilter narrows an event listing to a time window.
type EventFilter struct {
	Start *time.Time
	End   *time.Time
}

// EventPatch carries a partial event update. Nil fields are left
// unchanged; a non-nil SubjectID pointing at an empty string clears the
// subject link.
type EventPatch struct {
	SubjectID   *string    `json:"subject_id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Type        *EventType `json:"type"`
	Priority    *Priority  `json:"priority"`
	IsCompleted *bool      `json:"is_completed"`
}

// Empty reports whether the patch would change nothing.
func (p EventPatch) Empty() bool {
	return p.SubjectID == nil && p.Title == nil && p.Description == nil &&
		p.StartTime == nil && p.EndTime == nil && p.Type == nil &&
		p.Priority == nil && p.IsCompleted == nil
}

// TypeCount pairs an event type with its occurrence count. A slice of
// these preserves first-occurrence order, which a map would not.
type TypeCount struct {
	Type  EventType `json:"type"`
	Count int       `json:"count"`
}

// TaskStatus selects a slice of the task list.
type TaskStatus string

const (
	TaskStatusAll       TaskStatus = "all"
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid reports whether the value is a known task status filter.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusAll, TaskStatusPending, TaskStatusCompleted:
		return true
	default:
		return false
	}
}
