package services

import (
	"errors"
	"sync"
	"time"

	"github.com/huangang/sprintdesk/backend/internal/models"
	"github.com/huangang/sprintdesk/backend/pkg/response"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/us"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// SprintService enforces the non-overlapping date-range invariant for a
// project's sprints. Overlap validation and insertion run as one unit under
// mu so concurrent creations cannot slip past each other.
type SprintService struct {
	db        *gorm.DB
	mu        sync.Mutex
	calendars map[string]*cal.BusinessCalendar
	region    string
}

func NewSprintService(db *gorm.DB, region string) *SprintService {
	s := &SprintService{
		db:     db,
		region: region,
		calendars: map[string]*cal.BusinessCalendar{
			"US": newCalendar(us.Holidays...),
			"GB": newCalendar(gb.Holidays...),
			"DE": newCalendar(de.Holidays...),
			"FR": newCalendar(fr.Holidays...),
			"JP": newCalendar(jp.Holidays...),
			"CA": newCalendar(ca.Holidays...),
			"AU": newCalendar(au.HolidaysNSW...),
		},
	}
	return s
}

func newCalendar(holidays ...*cal.Holiday) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(holidays...)
	return c
}

func (s *SprintService) calendar() *cal.BusinessCalendar {
	if c, ok := s.calendars[s.region]; ok {
		return c
	}
	return cal.NewBusinessCalendar()
}

type CreateSprintRequest struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type UpdateSprintRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	IsActive  *bool   `json:"is_active"`
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, response.NewValidation("invalid date " + value + ", expected YYYY-MM-DD")
	}
	return t, nil
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// checkOverlap fails when [start, end] shares at least one day with another
// sprint of the project. Boundaries count, so back-to-back sprints sharing a
// date are rejected. Closed sprints are included.
func checkOverlap(tx *gorm.DB, projectID uint, start, end time.Time, excludeID uint) error {
	query := tx.Model(&models.Sprint{}).
		Where("project_id = ? AND start_date <= ? AND end_date >= ?", projectID, end, start)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return response.NewValidation("sprint overlaps with an existing sprint")
	}
	return nil
}

// Create validates the project, the date order and the overlap invariant,
// then inserts the sprint as active.
func (s *SprintService) Create(req *CreateSprintRequest) (*models.Sprint, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, response.NewValidation("end date must be after start date")
	}

	sprint := &models.Sprint{
		ProjectID: req.ProjectID,
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("id = ?", req.ProjectID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return response.NewNotFound("project not found")
		}

		if err := checkOverlap(tx, req.ProjectID, start, end, 0); err != nil {
			return err
		}

		return tx.Create(sprint).Error
	})
	if err != nil {
		return nil, err
	}

	return sprint, nil
}

// GetByID returns a sprint by id.
func (s *SprintService) GetByID(id uint) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := s.db.First(&sprint, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("sprint not found")
		}
		return nil, err
	}
	return &sprint, nil
}

// ListByProject returns the project's sprints ordered by start date.
func (s *SprintService) ListByProject(projectID uint) ([]models.Sprint, error) {
	var sprints []models.Sprint
	if err := s.db.Where("project_id = ?", projectID).Order("start_date ASC").Find(&sprints).Error; err != nil {
		return nil, err
	}
	return sprints, nil
}

// Update applies partial changes. Touching either date re-runs the full date
// and overlap validation against the project's other sprints.
func (s *SprintService) Update(id uint, req *UpdateSprintRequest) (*models.Sprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sprint models.Sprint

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sprint, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("sprint not found")
			}
			return err
		}

		start := sprint.StartDate
		end := sprint.EndDate
		datesChanged := false

		if req.StartDate != nil {
			parsed, err := parseDate(*req.StartDate)
			if err != nil {
				return err
			}
			start = parsed
			datesChanged = true
		}
		if req.EndDate != nil {
			parsed, err := parseDate(*req.EndDate)
			if err != nil {
				return err
			}
			end = parsed
			datesChanged = true
		}

		if datesChanged {
			if !end.After(start) {
				return response.NewValidation("end date must be after start date")
			}
			if err := checkOverlap(tx, sprint.ProjectID, start, end, sprint.ID); err != nil {
				return err
			}
		}

		updates := make(map[string]interface{})
		if req.StartDate != nil {
			updates["start_date"] = start
		}
		if req.EndDate != nil {
			updates["end_date"] = end
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if len(updates) == 0 {
			return nil
		}

		return tx.Model(&sprint).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return &sprint, nil
}

// End closes the sprint and moves its end date to today, even when the
// scheduled end lies in the future. Calling it twice only re-sets the end
// date to today.
func (s *SprintService) End(id uint) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := s.db.First(&sprint, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("sprint not found")
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"is_active": false,
		"end_date":  today(),
	}
	if err := s.db.Model(&sprint).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &sprint, nil
}

// Delete removes a sprint; its tasks return to the unsprinted state.
func (s *SprintService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var sprint models.Sprint
		if err := tx.First(&sprint, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("sprint not found")
			}
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("sprint_id = ?", id).
			Update("sprint_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&sprint).Error
	})
}

type SprintStats struct {
	SprintID         uint           `json:"sprint_id"`
	TotalDays        int            `json:"total_days"`
	WorkingDays      int            `json:"working_days"`
	TaskCount        int64          `json:"task_count"`
	TasksByWorkflow  map[string]int `json:"tasks_by_workflow"`
	TotalStoryPoints int            `json:"total_story_points"`
	DoneStoryPoints  int            `json:"done_story_points"`
}

// Stats reports the sprint's calendar span, its working days according to
// the configured region's business calendar, and task rollups.
func (s *SprintService) Stats(id uint) (*SprintStats, error) {
	sprint, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := s.db.Where("sprint_id = ?", id).Find(&tasks).Error; err != nil {
		return nil, err
	}

	stats := &SprintStats{
		SprintID:        sprint.ID,
		TotalDays:       int(sprint.EndDate.Sub(sprint.StartDate).Hours()/24) + 1,
		WorkingDays:     s.calendar().WorkdaysInRange(sprint.StartDate, sprint.EndDate),
		TaskCount:       int64(len(tasks)),
		TasksByWorkflow: make(map[string]int),
	}

	for _, task := range tasks {
		stats.TasksByWorkflow[task.Workflow]++
		if task.StoryPoints != nil {
			stats.TotalStoryPoints += *task.StoryPoints
			if task.Workflow == models.WorkflowDone {
				stats.DoneStoryPoints += *task.StoryPoints
			}
		}
	}

	return stats, nil
}
