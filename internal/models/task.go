package models

import (
	"time"

	"gorm.io/gorm"
)

// Work type, workflow and priority vocabularies, as exposed over the API.
const (
	WorkTypeBug    = "Bug"
	WorkTypeTask   = "Task"
	WorkTypeStory  = "Story"
	WorkTypeReview = "Review"

	WorkflowBacklog    = "Backlog"
	WorkflowToDo       = "To Do"
	WorkflowInProgress = "In Progress"
	WorkflowOnHold     = "On Hold"
	WorkflowDone       = "Done"

	PriorityBlocker  = "Blocker"
	PriorityCritical = "Critical"
	PriorityMajor    = "Major"
	PriorityMedium   = "Medium"
	PriorityMinor    = "Minor"
	PriorityTrivial  = "Trivial"
)

var (
	workTypes  = map[string]bool{WorkTypeBug: true, WorkTypeTask: true, WorkTypeStory: true, WorkTypeReview: true}
	workflows  = map[string]bool{WorkflowBacklog: true, WorkflowToDo: true, WorkflowInProgress: true, WorkflowOnHold: true, WorkflowDone: true}
	priorities = map[string]bool{PriorityBlocker: true, PriorityCritical: true, PriorityMajor: true, PriorityMedium: true, PriorityMinor: true, PriorityTrivial: true}
)

func ValidWorkType(v string) bool { return workTypes[v] }
func ValidWorkflow(v string) bool { return workflows[v] }
func ValidPriority(v string) bool { return priorities[v] }

// Task is a unit of work. Code is the human-facing sequence number, global
// across projects, immutable once assigned. SprintID and UserID together
// derive the assignment state: both unset = backlog, sprint only, user only,
// or assigned in sprint.
type Task struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Code         int            `gorm:"uniqueIndex;not null" json:"code"`
	Title        string         `gorm:"size:300;index;not null" json:"title"`
	WorkType     string         `gorm:"size:20;not null" json:"work_type"`
	Workflow     string         `gorm:"size:20;index" json:"work_flow"`
	Priority     string         `gorm:"size:20;index" json:"priority"`
	StoryPoints  *int           `json:"story_points"`
	Description  string         `gorm:"type:text" json:"description"`
	ProjectID    uint           `gorm:"index;not null" json:"project_id"`
	Project      *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	SprintID     *uint          `gorm:"index" json:"sprint_id"`
	Sprint       *Sprint        `gorm:"foreignKey:SprintID" json:"sprint,omitempty"`
	UserID       *uint          `gorm:"index" json:"user_id"`
	User         *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ParentTaskID *uint          `gorm:"index" json:"parent_task_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }
