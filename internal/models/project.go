package models

import (
	"time"

	"gorm.io/gorm"
)

// Project groups sprints and tasks and carries a member list through
// ProjectMember rows.
type Project struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Members   []*User        `gorm:"many2many:project_members;" json:"members,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
