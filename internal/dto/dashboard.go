package dto

import (
	"time"

	"github.com/unitime-app/unitime-api/internal/models"
)

// DashboardSummary aggregates the widgets shown on the landing page.
type DashboardSummary struct {
	Upcoming         []models.ScheduleEvent `json:"upcoming"`
	PendingDeadlines []models.ScheduleEvent `json:"pending_deadlines"`
	TypeCounts       []models.TypeCount     `json:"type_counts"`
	GeneratedAt      time.Time              `json:"generated_at"`
}
