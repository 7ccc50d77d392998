package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unitime-app/unitime-api/internal/dto"
	"github.com/unitime-app/unitime-api/internal/models"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
)

// Defaults for the dashboard widgets.
const (
	UpcomingHorizonDays = 7
	UpcomingLimit       = 5
	DeadlineLimit       = 5
)

type dashboardEventLister interface {
	ListByUser(ctx context.Context, userID string, filter models.EventFilter) ([]models.ScheduleEvent, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DashboardService computes the landing-page summary widgets.
type DashboardService struct {
	repo     dashboardEventLister
	cache    dashboardCache
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewDashboardService constructs the service. Cache and metrics may be
// nil, in which case every summary is computed fresh.
func NewDashboardService(repo dashboardEventLister, cache dashboardCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// Summary returns the dashboard widgets for a user, served from cache
// when a fresh enough copy exists.
func (s *DashboardService) Summary(ctx context.Context, userID string) (*dto.DashboardSummary, error) {
	key := summaryCacheKey(userID)

	if s.cache != nil {
		var cached dto.DashboardSummary
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheHit()
			}
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	events, err := s.repo.ListByUser(ctx, userID, models.EventFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	now := time.Now()
	summary := &dto.DashboardSummary{
		Upcoming:         Upcoming(events, now, UpcomingHorizonDays, UpcomingLimit),
		PendingDeadlines: PendingDeadlines(events, DeadlineLimit),
		TypeCounts:       CountByType(events),
		GeneratedAt:      now,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// Invalidate drops a user's cached summary after an event mutation.
func (s *DashboardService) Invalidate(ctx context.Context, userID string) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, summaryCacheKey(userID)); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func summaryCacheKey(userID string) string {
	return fmt.Sprintf("dashboard:summary:%s", userID)
}

// Upcoming returns incomplete events starting within [now, now+horizon),
// sorted by ascending start time and truncated to limit.
func Upcoming(events []models.ScheduleEvent, now time.Time, horizonDays, limit int) []models.ScheduleEvent {
	horizon := now.AddDate(0, 0, horizonDays)
	upcoming := make([]models.ScheduleEvent, 0, limit)
	for _, ev := range events {
		if ev.IsCompleted {
			continue
		}
		if ev.StartTime.Before(now) || !ev.StartTime.Before(horizon) {
			continue
		}
		upcoming = append(upcoming, ev)
	}
	upcoming = SortByStart(upcoming)
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

// PendingDeadlines returns incomplete deadline events in input order,
// truncated to limit.
func PendingDeadlines(events []models.ScheduleEvent, limit int) []models.ScheduleEvent {
	deadlines := make([]models.ScheduleEvent, 0, limit)
	for _, ev := range events {
		if ev.Type != models.EventTypeDeadline || ev.IsCompleted {
			continue
		}
		deadlines = append(deadlines, ev)
		if len(deadlines) == limit {
			break
		}
	}
	return deadlines
}

// CountByType tallies events per type. Only types actually present
// appear, in order of first occurrence.
func CountByType(events []models.ScheduleEvent) []models.TypeCount {
	index := make(map[models.EventType]int)
	counts := make([]models.TypeCount, 0)
	for _, ev := range events {
		if i, ok := index[ev.Type]; ok {
			counts[i].Count++
			continue
		}
		index[ev.Type] = len(counts)
		counts = append(counts, models.TypeCount{Type: ev.Type, Count: 1})
	}
	return counts
}
