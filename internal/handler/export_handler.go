package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unitime-app/unitime-api/internal/service"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
	"github.com/unitime-app/unitime-api/pkg/response"
)

// ExportHandler serves schedule downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// EventsCSV godoc
// @Summary Export events as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {file} file
// @Security BearerAuth
// @Router /export/events.csv [get]
func (h *ExportHandler) EventsCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payload, err := h.service.EventsCSV(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, "text/csv", "csv", payload)
}

// EventsPDF godoc
// @Summary Export events as PDF
// @Tags Export
// @Produce application/pdf
// @Success 200 {file} file
// @Security BearerAuth
// @Router /export/events.pdf [get]
func (h *ExportHandler) EventsPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payload, err := h.service.EventsPDF(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, "application/pdf", "pdf", payload)
}

func serveDownload(c *gin.Context, contentType, ext string, payload []byte) {
	filename := fmt.Sprintf("schedule_%s.%s", time.Now().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
