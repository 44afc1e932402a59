package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/huangang/sprintdesk/backend/internal/config"
	"github.com/huangang/sprintdesk/backend/internal/services"
	"github.com/huangang/sprintdesk/backend/pkg/response"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(db *gorm.DB, jwtCfg *config.JWTConfig) *UserHandler {
	return &UserHandler{
		userService: services.NewUserService(db, jwtCfg),
	}
}

// Create registers a user; duplicate email or mobile is a 409.
// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("user", "create", fmt.Sprintf("user %d registered: %s", user.ID, user.Email), &user.ID, c.ClientIP(), nil)
	response.Created(c, user)
}

// GetByID returns a user.
// GET /api/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// ValidateCredentials checks email and password and issues a token.
// POST /api/users/validate
func (h *UserHandler) ValidateCredentials(c *gin.Context) {
	var req services.ValidateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.ValidateCredentials(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListByProject lists a project's members.
// GET /api/projects/:id/users
func (h *UserHandler) ListByProject(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	users, err := h.userService.ListByProject(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// ListNotInProject lists users who are not yet members of a project.
// GET /api/projects/:id/users/available
func (h *UserHandler) ListNotInProject(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	users, err := h.userService.ListNotInProject(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// Update applies a partial update.
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("user", "update", fmt.Sprintf("user %d updated", id), &id, c.ClientIP(), nil)
	response.Success(c, user)
}

// Delete removes a user, their memberships, and unassigns their tasks.
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := h.userService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	services.RecordInfo("user", "delete", fmt.Sprintf("user %d deleted", id), nil, c.ClientIP(), nil)
	response.Success(c, gin.H{"message": "user deleted successfully"})
}
