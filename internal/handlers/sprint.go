package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/huangang/sprintdesk/backend/internal/services"
	"github.com/huangang/sprintdesk/backend/pkg/response"
	"gorm.io/gorm"
)

type SprintHandler struct {
	sprintService *services.SprintService
}

func NewSprintHandler(db *gorm.DB, region string) *SprintHandler {
	return &SprintHandler{
		sprintService: services.NewSprintService(db, region),
	}
}

// Create creates a sprint after date and overlap validation.
// POST /api/sprints
func (h *SprintHandler) Create(c *gin.Context) {
	var req services.CreateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sprint, err := h.sprintService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("sprint", "create", fmt.Sprintf("sprint %d created for project %d", sprint.ID, sprint.ProjectID), nil, c.ClientIP(), nil)
	response.Created(c, sprint)
}

// GetByID returns a sprint.
// GET /api/sprints/:id
func (h *SprintHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid sprint id")
		return
	}

	sprint, err := h.sprintService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sprint)
}

// ListByProject lists a project's sprints ordered by start date.
// GET /api/projects/:id/sprints
func (h *SprintHandler) ListByProject(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	sprints, err := h.sprintService.ListByProject(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sprints)
}

// Update applies a partial update; date changes re-run overlap validation.
// PUT /api/sprints/:id
func (h *SprintHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid sprint id")
		return
	}

	var req services.UpdateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sprint, err := h.sprintService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("sprint", "update", fmt.Sprintf("sprint %d updated", id), nil, c.ClientIP(), nil)
	response.Success(c, sprint)
}

// End closes the sprint and sets its end date to today.
// POST /api/sprints/:id/end
func (h *SprintHandler) End(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid sprint id")
		return
	}

	sprint, err := h.sprintService.End(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("sprint", "end", fmt.Sprintf("sprint %d ended", id), nil, c.ClientIP(), nil)
	response.Success(c, gin.H{"message": "sprint ended successfully", "sprint": sprint})
}

// Stats reports working days and task rollups for a sprint.
// GET /api/sprints/:id/stats
func (h *SprintHandler) Stats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid sprint id")
		return
	}

	stats, err := h.sprintService.Stats(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// Delete removes a sprint; its tasks return to the unsprinted state.
// DELETE /api/sprints/:id
func (h *SprintHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid sprint id")
		return
	}

	if err := h.sprintService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("sprint", "delete", fmt.Sprintf("sprint %d deleted", id), nil, c.ClientIP(), nil)
	response.Success(c, gin.H{"message": "sprint deleted successfully"})
}
