package models

import "time"

// Subject represents a course a student is enrolled in.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Location  *string   `db:"location" json:"location,omitempty"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectPatch carries a partial subject update. Nil fields are left
// unchanged.
type SubjectPatch struct {
	Name     *string `json:"name"`
	Code     *string `json:"code"`
	Location *string `json:"location"`
	Color    *string `json:"color"`
}

// Empty reports whether the patch would change nothing.
func (p SubjectPatch) Empty() bool {
	return p.Name == nil && p.Code == nil && p.Location == nil && p.Color == nil
}
