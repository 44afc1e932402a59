package services

import (
	"errors"

	"github.com/huangang/sprintdesk/backend/internal/models"
	"github.com/huangang/sprintdesk/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type CreateProjectRequest struct {
	Title   string `json:"title" binding:"required"`
	UserIDs []uint `json:"users"`
}

type UpdateProjectRequest struct {
	Title *string `json:"title"`
}

// Create inserts a project with its initial member list. Every supplied user
// id must exist.
func (s *ProjectService) Create(req *CreateProjectRequest) (*models.Project, error) {
	project := &models.Project{Title: req.Title}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(req.UserIDs) > 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id IN ?", req.UserIDs).Count(&count).Error; err != nil {
				return err
			}
			if count != int64(len(dedupe(req.UserIDs))) {
				return response.NewNotFound("one or more users not found")
			}
		}

		if err := tx.Create(project).Error; err != nil {
			return err
		}

		for _, userID := range dedupe(req.UserIDs) {
			member := models.ProjectMember{ProjectID: project.ID, UserID: userID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(project.ID)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// GetByID returns a project with its members preloaded.
func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Members").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// ListByUser returns the projects the user is a member of.
func (s *ProjectService) ListByUser(userID uint) ([]models.Project, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("user not found")
	}

	var projects []models.Project
	err := s.db.
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Order("projects.id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Update applies partial changes; only the title is mutable.
func (s *ProjectService) Update(id uint, req *UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	if req.Title != nil {
		if err := s.db.Model(&project).Update("title", *req.Title).Error; err != nil {
			return nil, err
		}
	}
	return &project, nil
}

// Delete removes a project and its membership rows. A project that still has
// sprints or tasks cannot be deleted; callers must clean those up first so
// no records are left pointing at a missing project.
func (s *ProjectService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("project not found")
			}
			return err
		}

		var sprintCount, taskCount int64
		if err := tx.Model(&models.Sprint{}).Where("project_id = ?", id).Count(&sprintCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("project_id = ?", id).Count(&taskCount).Error; err != nil {
			return err
		}
		if sprintCount > 0 || taskCount > 0 {
			return response.NewConflict("project still has sprints or tasks")
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
}
