package services

import (
	"errors"
	"time"

	"github.com/huangang/sprintdesk/backend/internal/config"
	"github.com/huangang/sprintdesk/backend/internal/models"
	"github.com/huangang/sprintdesk/backend/internal/utils"
	"github.com/huangang/sprintdesk/backend/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db     *gorm.DB
	jwtCfg *config.JWTConfig
}

func NewUserService(db *gorm.DB, jwtCfg *config.JWTConfig) *UserService {
	return &UserService{db: db, jwtCfg: jwtCfg}
}

type CreateUserRequest struct {
	FullName     string  `json:"full_name"`
	Email        string  `json:"email" binding:"required"`
	Password     string  `json:"password" binding:"required"`
	Mobile       *string `json:"mobile"`
	Role         string  `json:"role"`
	Location     string  `json:"location"`
	Organisation string  `json:"organisation"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Mobile   *string `json:"mobile"`
	Role     *string `json:"role"`
	Location *string `json:"location"`
}

type ValidateCredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ValidateCredentialsResponse struct {
	Token    string       `json:"token"`
	ExpireAt time.Time    `json:"expire_at"`
	User     *models.User `json:"user"`
}

// Create registers a user. Duplicate email or mobile is a conflict and
// nothing is inserted. The password is stored as a bcrypt hash only.
func (s *UserService) Create(req *CreateUserRequest) (*models.User, error) {
	if !utils.ValidEmail(req.Email) {
		return nil, response.NewValidation("invalid email format")
	}
	if req.Mobile != nil && !utils.ValidMobile(*req.Mobile) {
		return nil, response.NewValidation("mobile number must be exactly 10 digits")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("email is already registered")
	}
	if req.Mobile != nil {
		if err := s.db.Model(&models.User{}).Where("mobile = ?", *req.Mobile).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, response.NewConflict("mobile number is already registered")
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	organisation := req.Organisation
	if organisation == "" {
		organisation = utils.OrganisationFromEmail(req.Email)
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Mobile:       req.Mobile,
		Role:         req.Role,
		Location:     req.Location,
		Organisation: organisation,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID returns a user by id.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// ValidateCredentials checks email plus password against the stored hash and
// issues an access token on success.
func (s *UserService) ValidateCredentials(req *ValidateCredentialsRequest) (*ValidateCredentialsResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, response.NewCredential("please check your password")
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, s.jwtCfg.ExpireHour)
	if err != nil {
		return nil, err
	}

	return &ValidateCredentialsResponse{
		Token:    token,
		ExpireAt: time.Now().Add(time.Duration(s.jwtCfg.ExpireHour) * time.Hour),
		User:     &user,
	}, nil
}

// ListByProject returns the project's members.
func (s *UserService) ListByProject(projectID uint) ([]models.User, error) {
	var count int64
	if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("project not found")
	}

	var users []models.User
	err := s.db.
		Joins("JOIN project_members ON project_members.user_id = users.id").
		Where("project_members.project_id = ?", projectID).
		Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListNotInProject returns users who are not members of the project, for
// member-picker UIs.
func (s *UserService) ListNotInProject(projectID uint) ([]models.User, error) {
	var count int64
	if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("project not found")
	}

	subquery := s.db.Table("project_members").Select("user_id").Where("project_id = ?", projectID)

	var users []models.User
	if err := s.db.Where("id NOT IN (?)", subquery).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies the supplied fields. Email and mobile changes re-run the
// format and uniqueness checks; a new password is re-hashed.
func (s *UserService) Update(id uint, req *UpdateUserRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Email != nil {
		if !utils.ValidEmail(*req.Email) {
			return nil, response.NewValidation("invalid email format")
		}
		var count int64
		if err := s.db.Model(&models.User{}).Where("email = ? AND id <> ?", *req.Email, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, response.NewConflict("email is already registered")
		}
		updates["email"] = *req.Email
	}
	if req.Mobile != nil {
		if !utils.ValidMobile(*req.Mobile) {
			return nil, response.NewValidation("mobile number must be exactly 10 digits")
		}
		var count int64
		if err := s.db.Model(&models.User{}).Where("mobile = ? AND id <> ?", *req.Mobile, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, response.NewConflict("mobile number is already registered")
		}
		updates["mobile"] = *req.Mobile
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// Delete removes the user, their membership rows, and unassigns their tasks.
// The row is gone for good, which frees the email and mobile for a fresh
// registration.
func (s *UserService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("user not found")
			}
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}
