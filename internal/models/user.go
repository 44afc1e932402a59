package models

import (
	"time"
)

// User represents a tracker account. Organisation is derived from the email
// domain at signup when not supplied. Deletion is hard: the unique indexes on
// email and mobile must only ever cover live rows, so a deleted user's email
// can be registered again.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:200" json:"full_name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Mobile       *string   `gorm:"uniqueIndex;size:20" json:"mobile"`
	Role         string    `gorm:"size:100;index" json:"role"`
	Location     string    `gorm:"size:200" json:"location"`
	Organisation string    `gorm:"size:200;index" json:"organisation"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
