package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/huangang/sprintdesk/backend/internal/services"
	"github.com/huangang/sprintdesk/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
	}
}

// Create creates a project with its initial member list.
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("project", "create", fmt.Sprintf("project %d created: %s", project.ID, project.Title), nil, c.ClientIP(), nil)
	response.Created(c, project)
}

// GetByID returns a project with members.
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	project, err := h.projectService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// ListByUser lists the projects a user belongs to.
// GET /api/users/:id/projects
func (h *ProjectHandler) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}

	projects, err := h.projectService.ListByUser(userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

// Update applies a partial update.
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("project", "update", fmt.Sprintf("project %d updated", id), nil, c.ClientIP(), nil)
	response.Success(c, project)
}

// Delete removes a project that has no remaining sprints or tasks.
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	if err := h.projectService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("project", "delete", fmt.Sprintf("project %d deleted", id), nil, c.ClientIP(), nil)
	response.Success(c, gin.H{"message": "project deleted successfully"})
}
