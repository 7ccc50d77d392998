package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unitime-app/unitime-api/internal/service"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
	"github.com/unitime-app/unitime-api/pkg/response"
)

// DashboardHandler serves the aggregated dashboard summary.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Upcoming events, pending deadlines and per-type counts.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
