package dto

import "github.com/unitime-app/unitime-api/internal/models"

// DayCell is one date of the month grid together with the events that
// start on it.
type DayCell struct {
	Date    string                 `json:"date"`
	InMonth bool                   `json:"in_month"`
	IsToday bool                   `json:"is_today"`
	Events  []models.ScheduleEvent `json:"events"`
}

// WeekRow is a full displayed week of exactly seven day cells.
type WeekRow struct {
	Days []DayCell `json:"days"`
}

// MonthGrid is the renderable month view: every week row touching the
// reference month, including lead and trail days of adjacent months.
type MonthGrid struct {
	Reference string    `json:"reference"`
	Weeks     []WeekRow `json:"weeks"`
}
