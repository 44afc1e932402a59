package models

import (
	"time"
)

// ProjectMember is the user-project membership relation. Managed explicitly
// so deletions can cascade membership rows without touching users.
type ProjectMember struct {
	ProjectID uint      `gorm:"primaryKey" json:"project_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProjectMember) TableName() string { return "project_members" }
