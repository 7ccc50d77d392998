package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unitime-app/unitime-api/internal/models"
	"github.com/unitime-app/unitime-api/internal/service"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
	"github.com/unitime-app/unitime-api/pkg/response"
)

// TaskHandler serves the task list view over schedule events.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler constructs a task handler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// List godoc
// @Summary List tasks
// @Description Deadline, exam and study events sorted by start time.
// @Tags Tasks
// @Produce json
// @Param status query string false "all | pending | completed" default(all)
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	status := models.TaskStatus(c.DefaultQuery("status", string(models.TaskStatusAll)))
	if !status.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be all, pending or completed"))
		return
	}

	tasks, err := h.service.List(c.Request.Context(), claims.UserID, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}

// Toggle godoc
// @Summary Toggle task completion
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	task, err := h.service.ToggleCompletion(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}
