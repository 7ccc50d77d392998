package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unitime-app/unitime-api/internal/service"
	"github.com/unitime-app/unitime-api/pkg/config"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
	"github.com/unitime-app/unitime-api/pkg/response"
)

const calendarDateLayout = "2006-01-02"

// CalendarHandler serves the month grid view.
type CalendarHandler struct {
	service *service.CalendarService
}

// NewCalendarHandler constructs a calendar handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// MonthGrid godoc
// @Summary Month calendar grid
// @Description Full displayed weeks for the month containing the given date, today when omitted.
// @Tags Calendar
// @Produce json
// @Param date query string false "Reference date (YYYY-MM-DD)"
// @Param week_starts_on query string false "First day of week (sunday|monday|...)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /calendar/month [get]
func (h *CalendarHandler) MonthGrid(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reference := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(calendarDateLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
			return
		}
		reference = parsed
	}

	svc := h.service
	if raw := c.Query("week_starts_on"); raw != "" {
		svc = svc.WithWeekStart(config.ParseWeekday(raw, time.Monday))
	}

	grid, err := svc.MonthGridFor(c.Request.Context(), claims.UserID, reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}
