package models

import (
	"time"

	"gorm.io/gorm"
)

// Sprint is a dated iteration within a project. Date ranges of a project's
// sprints never overlap, boundaries included.
type Sprint struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"index;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	StartDate time.Time      `gorm:"not null;index" json:"start_date"`
	EndDate   time.Time      `gorm:"not null;index" json:"end_date"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Sprint) TableName() string { return "sprints" }
