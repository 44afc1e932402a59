package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/huangang/sprintdesk/backend/internal/models"
	"github.com/huangang/sprintdesk/backend/pkg/response"
	"gorm.io/gorm"
)

// firstTaskCode is one below the code assigned to the very first task.
const firstTaskCode = 1000

// TaskService owns task creation, assignment moves and description
// generation. Code allocation runs under codeMu so concurrent creations
// cannot hand out the same code.
type TaskService struct {
	db     *gorm.DB
	gen    Generator
	codeMu sync.Mutex
}

func NewTaskService(db *gorm.DB, gen Generator) *TaskService {
	return &TaskService{db: db, gen: gen}
}

type CreateTaskRequest struct {
	Title        string `json:"title" binding:"required"`
	WorkType     string `json:"work_type" binding:"required"`
	Workflow     string `json:"work_flow"`
	Priority     string `json:"priority"`
	StoryPoints  *int   `json:"story_points"`
	Description  string `json:"description"`
	ProjectID    uint   `json:"project_id" binding:"required"`
	SprintID     *uint  `json:"sprint_id"`
	UserID       *uint  `json:"user_id"`
	ParentTaskID *uint  `json:"parent_task_id"`
}

type UpdateTaskRequest struct {
	Title        *string `json:"title"`
	WorkType     *string `json:"work_type"`
	Workflow     *string `json:"work_flow"`
	Priority     *string `json:"priority"`
	StoryPoints  *int    `json:"story_points"`
	Description  *string `json:"description"`
	ProjectID    *uint   `json:"project_id"`
	SprintID     *uint   `json:"sprint_id"`
	UserID       *uint   `json:"user_id"`
	ParentTaskID *uint   `json:"parent_task_id"`
	// JSON cannot distinguish an absent pointer from an explicit null, so
	// moving a task back to the backlog uses these flags.
	RemoveSprint bool `json:"remove_sprint"`
	RemoveUser   bool `json:"remove_user"`
}

func validateVocabulary(workType, workflow, priority string) error {
	if workType != "" && !models.ValidWorkType(workType) {
		return response.NewValidation("invalid work_type: " + workType)
	}
	if workflow != "" && !models.ValidWorkflow(workflow) {
		return response.NewValidation("invalid work_flow: " + workflow)
	}
	if priority != "" && !models.ValidPriority(priority) {
		return response.NewValidation("invalid priority: " + priority)
	}
	return nil
}

// checkTaskRefs validates the referenced entities inside tx. A sprint must
// belong to the same project the task does.
func checkTaskRefs(tx *gorm.DB, projectID uint, sprintID, userID, parentID *uint) error {
	var project models.Project
	if err := tx.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("project not found")
		}
		return err
	}
	if sprintID != nil {
		var sprint models.Sprint
		if err := tx.First(&sprint, *sprintID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("sprint not found")
			}
			return err
		}
		if sprint.ProjectID != projectID {
			return response.NewValidation("sprint belongs to a different project")
		}
	}
	if userID != nil {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", *userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return response.NewNotFound("user not found")
		}
	}
	if parentID != nil {
		var count int64
		if err := tx.Model(&models.Task{}).Where("id = ?", *parentID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return response.NewNotFound("parent task not found")
		}
	}
	return nil
}

// Create inserts a task with the next global code. An empty description is
// generated up front; a generation failure aborts the whole creation and
// nothing is persisted.
func (s *TaskService) Create(ctx context.Context, req *CreateTaskRequest) (*models.Task, error) {
	if err := validateVocabulary(req.WorkType, req.Workflow, req.Priority); err != nil {
		return nil, err
	}

	workflow := req.Workflow
	if workflow == "" {
		workflow = models.WorkflowBacklog
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	// Referential checks run again inside the transaction; this early pass
	// keeps a doomed create from paying for an upstream generation call.
	if err := checkTaskRefs(s.db, req.ProjectID, req.SprintID, req.UserID, req.ParentTaskID); err != nil {
		return nil, err
	}

	description := req.Description
	if strings.TrimSpace(description) == "" {
		generated, err := s.gen.Generate(ctx, DescriptionPrompt(req.Title))
		if err != nil {
			return nil, response.NewGeneration("description generation failed: " + err.Error())
		}
		description = generated
	}

	task := &models.Task{
		Title:        req.Title,
		WorkType:     req.WorkType,
		Workflow:     workflow,
		Priority:     priority,
		StoryPoints:  req.StoryPoints,
		Description:  description,
		ProjectID:    req.ProjectID,
		SprintID:     req.SprintID,
		UserID:       req.UserID,
		ParentTaskID: req.ParentTaskID,
	}

	s.codeMu.Lock()
	defer s.codeMu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkTaskRefs(tx, req.ProjectID, req.SprintID, req.UserID, req.ParentTaskID); err != nil {
			return err
		}

		// Codes of soft-deleted tasks stay reserved, so the max is unscoped.
		var maxCode int
		if err := tx.Unscoped().Model(&models.Task{}).
			Select("COALESCE(MAX(code), ?)", firstTaskCode).
			Scan(&maxCode).Error; err != nil {
			return err
		}
		task.Code = maxCode + 1

		return tx.Create(task).Error
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// GetByID returns a task by internal id.
func (s *TaskService) GetByID(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}
	return &task, nil
}

// ListByProject returns the project's tasks ordered by code, optionally
// filtered by sprint and assignee.
func (s *TaskService) ListByProject(projectID uint, sprintID, userID *uint) ([]models.Task, error) {
	query := s.db.Where("project_id = ?", projectID)
	if sprintID != nil {
		query = query.Where("sprint_id = ?", *sprintID)
	}
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var tasks []models.Task
	if err := query.Order("code ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UnassignedMode selects which unassigned slice of a project to list. The
// three modes are mutually exclusive; with none set, all tasks without a
// sprint are returned.
type UnassignedMode struct {
	UserID      *uint
	SprintID    *uint
	BacklogOnly bool
}

// ListUnassigned returns tasks in one of the partially-assigned states:
// byUser (user set, no sprint), bySprint (sprint set, no assignee) or
// backlog only (neither set).
func (s *TaskService) ListUnassigned(projectID uint, mode UnassignedMode) ([]models.Task, error) {
	set := 0
	if mode.UserID != nil {
		set++
	}
	if mode.SprintID != nil {
		set++
	}
	if mode.BacklogOnly {
		set++
	}
	if set > 1 {
		return nil, response.NewValidation("user_id, sprint_id and backlog filters are mutually exclusive")
	}

	query := s.db.Where("project_id = ?", projectID)
	switch {
	case mode.UserID != nil:
		query = query.Where("user_id = ? AND sprint_id IS NULL", *mode.UserID)
	case mode.SprintID != nil:
		query = query.Where("sprint_id = ? AND user_id IS NULL", *mode.SprintID)
	case mode.BacklogOnly:
		query = query.Where("sprint_id IS NULL AND user_id IS NULL")
	default:
		query = query.Where("sprint_id IS NULL")
	}

	var tasks []models.Task
	if err := query.Order("code ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update applies the supplied fields only. If the resulting description is
// empty, generation runs exactly as on create; a failure aborts and leaves
// the task untouched.
func (s *TaskService) Update(ctx context.Context, id uint, req *UpdateTaskRequest) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}

	var workType, workflow, priority string
	if req.WorkType != nil {
		workType = *req.WorkType
	}
	if req.Workflow != nil {
		workflow = *req.Workflow
	}
	if req.Priority != nil {
		priority = *req.Priority
	}
	if err := validateVocabulary(workType, workflow, priority); err != nil {
		return nil, err
	}
	if req.RemoveSprint && req.SprintID != nil {
		return nil, response.NewValidation("cannot set and remove sprint in one update")
	}
	if req.RemoveUser && req.UserID != nil {
		return nil, response.NewValidation("cannot set and remove assignee in one update")
	}

	// Effective references after the update. Validating these, not just the
	// supplied ones, is what keeps a project move from leaving the task
	// attached to a sprint of its old project.
	projectID := task.ProjectID
	if req.ProjectID != nil {
		projectID = *req.ProjectID
	}
	sprintID := task.SprintID
	if req.RemoveSprint {
		sprintID = nil
	} else if req.SprintID != nil {
		sprintID = req.SprintID
	}
	userID := task.UserID
	if req.RemoveUser {
		userID = nil
	} else if req.UserID != nil {
		userID = req.UserID
	}
	parentID := task.ParentTaskID
	if req.ParentTaskID != nil {
		parentID = req.ParentTaskID
	}

	if err := checkTaskRefs(s.db, projectID, sprintID, userID, parentID); err != nil {
		return nil, err
	}

	title := task.Title
	if req.Title != nil {
		title = *req.Title
	}

	// The description the task would end up with after this update; empty
	// means generation must run before anything is persisted.
	description := task.Description
	if req.Description != nil {
		description = *req.Description
	}
	if strings.TrimSpace(description) == "" {
		generated, err := s.gen.Generate(ctx, DescriptionPrompt(title))
		if err != nil {
			return nil, response.NewGeneration("description generation failed: " + err.Error())
		}
		description = generated
		forced := description
		req.Description = &forced
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.WorkType != nil {
		updates["work_type"] = *req.WorkType
	}
	if req.Workflow != nil {
		updates["work_flow"] = *req.Workflow
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.StoryPoints != nil {
		updates["story_points"] = *req.StoryPoints
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ProjectID != nil {
		updates["project_id"] = *req.ProjectID
	}
	if req.SprintID != nil {
		updates["sprint_id"] = *req.SprintID
	}
	if req.UserID != nil {
		updates["user_id"] = *req.UserID
	}
	if req.ParentTaskID != nil {
		updates["parent_task_id"] = *req.ParentTaskID
	}
	if req.RemoveSprint {
		updates["sprint_id"] = nil
	}
	if req.RemoveUser {
		updates["user_id"] = nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkTaskRefs(tx, projectID, sprintID, userID, parentID); err != nil {
			return err
		}
		return tx.Model(&task).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// RegenerateDescription overwrites the description unconditionally, using
// the caller's prompt when given and the default template otherwise.
func (s *TaskService) RegenerateDescription(ctx context.Context, id uint, customPrompt string) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}

	prompt := strings.TrimSpace(customPrompt)
	if prompt == "" {
		prompt = DescriptionPrompt(task.Title)
	}

	generated, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, response.NewGeneration("description generation failed: " + err.Error())
	}

	if err := s.db.Model(&task).Update("description", generated).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task. Children keep existing but their parent link is
// cleared, so no dangling references remain.
func (s *TaskService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("task not found")
			}
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("parent_task_id = ?", id).
			Update("parent_task_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&task).Error
	})
}
