package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unitime-app/unitime-api/internal/dto"
	"github.com/unitime-app/unitime-api/internal/models"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
)

type calendarEventLister interface {
	ListByUser(ctx context.Context, userID string, filter models.EventFilter) ([]models.ScheduleEvent, error)
}

// Granularity selects the step size for period navigation.
type Granularity string

const (
	GranularityMonth Granularity = "month"
	GranularityWeek  Granularity = "week"
)

// Direction selects which way period navigation moves.
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

const dayKeyLayout = "2006-01-02"

// CalendarService derives the month grid view from the flat event list.
type CalendarService struct {
	repo         calendarEventLister
	location     *time.Location
	weekStartsOn time.Weekday
	logger       *zap.Logger
}

// NewCalendarService constructs the service. An unknown timezone name
// falls back to the server's local zone.
func NewCalendarService(repo calendarEventLister, timezone string, weekStartsOn time.Weekday, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("unknown calendar timezone, using server local", zap.String("timezone", timezone))
		loc = time.Local
	}
	return &CalendarService{repo: repo, location: loc, weekStartsOn: weekStartsOn, logger: logger}
}

// WithWeekStart returns a copy of the service whose grids begin weeks on
// the given day. Used for per-request overrides of the configured default.
func (s *CalendarService) WithWeekStart(weekStartsOn time.Weekday) *CalendarService {
	clone := *s
	clone.weekStartsOn = weekStartsOn
	return &clone
}

// MonthGridFor fetches the user's events and lays out the month
// containing the reference date.
func (s *CalendarService) MonthGridFor(ctx context.Context, userID string, reference time.Time) (*dto.MonthGrid, error) {
	events, err := s.repo.ListByUser(ctx, userID, models.EventFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	grid := s.MonthGrid(reference, events, time.Now())
	return &grid, nil
}

// MonthGrid lays out the month containing reference as full displayed
// weeks. Cells run from the start of the week holding the 1st through the
// end of the week holding the last day, so lead and trail days of
// adjacent months are included and every row has exactly seven cells.
// Events land on the cell whose calendar day (in the configured zone)
// matches their start time; end times play no part in bucketing.
func (s *CalendarService) MonthGrid(reference time.Time, events []models.ScheduleEvent, now time.Time) dto.MonthGrid {
	ref := reference.In(s.location)
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, s.location)
	monthEnd := monthStart.AddDate(0, 1, -1)

	gridStart := s.startOfWeek(monthStart)
	gridEnd := s.startOfWeek(monthEnd).AddDate(0, 0, 6)

	byDay := make(map[string][]models.ScheduleEvent)
	for _, ev := range events {
		key := ev.StartTime.In(s.location).Format(dayKeyLayout)
		byDay[key] = append(byDay[key], ev)
	}

	todayKey := now.In(s.location).Format(dayKeyLayout)

	grid := dto.MonthGrid{Reference: monthStart.Format(dayKeyLayout)}
	var week dto.WeekRow
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayKeyLayout)
		cell := dto.DayCell{
			Date:    key,
			InMonth: day.Month() == monthStart.Month(),
			IsToday: key == todayKey,
			Events:  byDay[key],
		}
		week.Days = append(week.Days, cell)
		if len(week.Days) == 7 {
			grid.Weeks = append(grid.Weeks, week)
			week = dto.WeekRow{}
		}
	}
	return grid
}

// AdvancePeriod moves the reference date one step. Month steps shift one
// calendar month, clamping to the last valid day of the target month
// (Jan 31 forward lands on Feb 28/29); week steps shift exactly 7 days.
func (s *CalendarService) AdvancePeriod(reference time.Time, granularity Granularity, direction Direction) time.Time {
	delta := 1
	if direction == DirectionBackward {
		delta = -1
	}
	if granularity == GranularityWeek {
		return reference.AddDate(0, 0, 7*delta)
	}
	return addMonthsClamped(reference, delta)
}

// startOfWeek returns midnight of the first day of the displayed week
// containing t.
func (s *CalendarService) startOfWeek(t time.Time) time.Time {
	t = t.In(s.location)
	offset := (int(t.Weekday()) - int(s.weekStartsOn) + 7) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.location)
	return day.AddDate(0, 0, -offset)
}

// addMonthsClamped shifts by whole calendar months without AddDate's
// overflow normalization: a day-of-month past the end of the target month
// clamps to its last day.
func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, months, 0)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
