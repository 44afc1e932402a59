package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/huangang/sprintdesk/backend/internal/services"
	"github.com/huangang/sprintdesk/backend/pkg/response"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskService   *services.TaskService
	searchService *services.SearchService
}

func NewTaskHandler(db *gorm.DB, gen services.Generator) *TaskHandler {
	return &TaskHandler{
		taskService:   services.NewTaskService(db, gen),
		searchService: services.NewSearchService(db),
	}
}

// Create creates a task with an auto-assigned code.
// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("task", "create", fmt.Sprintf("task %d created: %s", task.Code, task.Title), nil, c.ClientIP(), nil)
	response.Created(c, task)
}

// GetByID returns a task.
// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid task id")
		return
	}

	task, err := h.taskService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, task)
}

// ListByProject lists a project's tasks with optional sprint/user filters.
// GET /api/projects/:id/tasks?sprint_id=&user_id=
func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}
	sprintID, ok := queryUint(c, "sprint_id")
	if !ok {
		response.BadRequest(c, "invalid sprint_id")
		return
	}
	userID, ok := queryUint(c, "user_id")
	if !ok {
		response.BadRequest(c, "invalid user_id")
		return
	}

	tasks, err := h.taskService.ListByProject(projectID, sprintID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tasks)
}

// ListUnassigned lists partially-assigned tasks for a project. The filters
// user_id, sprint_id and backlog are mutually exclusive.
// GET /api/projects/:id/tasks/unassigned?user_id=|sprint_id=|backlog=true
func (h *TaskHandler) ListUnassigned(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}
	userID, ok := queryUint(c, "user_id")
	if !ok {
		response.BadRequest(c, "invalid user_id")
		return
	}
	sprintID, ok := queryUint(c, "sprint_id")
	if !ok {
		response.BadRequest(c, "invalid sprint_id")
		return
	}

	mode := services.UnassignedMode{
		UserID:      userID,
		SprintID:    sprintID,
		BacklogOnly: c.Query("backlog") == "true",
	}

	tasks, err := h.taskService.ListUnassigned(projectID, mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tasks)
}

// Update applies a partial update; only supplied fields change.
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("task", "update", fmt.Sprintf("task %d updated", task.Code), nil, c.ClientIP(), nil)
	response.Success(c, task)
}

type regenerateRequest struct {
	Prompt string `json:"prompt"`
}

// RegenerateDescription overwrites the task's description with freshly
// generated text, using the supplied prompt or the default template.
// POST /api/tasks/:id/description
func (h *TaskHandler) RegenerateDescription(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req regenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	task, err := h.taskService.RegenerateDescription(c.Request.Context(), id, req.Prompt)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("task", "regenerate_description", fmt.Sprintf("task %d description regenerated", task.Code), nil, c.ClientIP(), nil)
	response.Success(c, task)
}

// Delete removes a task; children lose their parent link.
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid task id")
		return
	}

	if err := h.taskService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("task", "delete", fmt.Sprintf("task %d deleted", id), nil, c.ClientIP(), nil)
	response.Success(c, gin.H{"message": "task deleted successfully"})
}

// Search resolves a free-text query: all digits is an exact code lookup,
// anything else a case-insensitive title match. No match is an empty 200.
// GET /api/tasks/search?q=
func (h *TaskHandler) Search(c *gin.Context) {
	tasks, err := h.searchService.Search(c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tasks)
}
