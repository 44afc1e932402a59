package services

import (
	"encoding/json"
	"time"

	"github.com/huangang/sprintdesk/backend/internal/config"
	"github.com/huangang/sprintdesk/backend/internal/models"
	"github.com/huangang/sprintdesk/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var activityDB *gorm.DB

// InitActivityLogger wires the database used by the package-level Record*
// helpers. Recording is a no-op until this is called.
func InitActivityLogger(db *gorm.DB) {
	activityDB = db
}

func RecordInfo(module, action, message string, userID *uint, ip string, extra interface{}) {
	record("info", module, action, message, userID, ip, extra)
}

func RecordWarning(module, action, message string, userID *uint, ip string, extra interface{}) {
	record("warning", module, action, message, userID, ip, extra)
}

func RecordError(module, action, message string, userID *uint, ip string, extra interface{}) {
	record("error", module, action, message, userID, ip, extra)
}

func record(level, module, action, message string, userID *uint, ip string, extra interface{}) {
	if activityDB == nil {
		return
	}

	var extraStr string
	if extra != nil {
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := &models.ActivityLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		Extra:     extraStr,
		CreatedAt: time.Now(),
	}
	activityDB.Create(entry)
}

type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

type ActivityListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Level     string `form:"level"`
	Module    string `form:"module"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type ActivityListResponse struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Items    []models.ActivityLog `json:"items"`
}

func (s *ActivityService) List(req *ActivityListRequest) (*ActivityListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var entries []models.ActivityLog
	var total int64

	query := s.db.Model(&models.ActivityLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}

	return &ActivityListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    entries,
	}, nil
}

// Cleanup removes entries older than retentionDays and returns the number of
// rows deleted.
func (s *ActivityService) Cleanup(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	return result.RowsAffected, result.Error
}

var cleanupCron *cron.Cron

// StartCleanupScheduler purges old activity entries on the configured cron
// schedule.
func StartCleanupScheduler(db *gorm.DB, cfg *config.ActivityConfig) error {
	service := NewActivityService(db)

	cleanupCron = cron.New()
	_, err := cleanupCron.AddFunc(cfg.CleanupCron, func() {
		deleted, err := service.Cleanup(cfg.RetentionDays)
		if err != nil {
			logger.Errorf("[Activity] cleanup failed: %v", err)
			return
		}
		if deleted > 0 {
			logger.Infof("[Activity] cleanup removed %d entries older than %d days", deleted, cfg.RetentionDays)
		}
	})
	if err != nil {
		return err
	}

	cleanupCron.Start()
	logger.Infof("[Activity] cleanup scheduler started: %q, retention %d days", cfg.CleanupCron, cfg.RetentionDays)
	return nil
}

// StopCleanupScheduler stops the purge scheduler.
func StopCleanupScheduler() {
	if cleanupCron != nil {
		cleanupCron.Stop()
	}
}
