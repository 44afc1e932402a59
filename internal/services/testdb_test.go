package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangang/sprintdesk/backend/internal/models"
	"github.com/huangang/sprintdesk/backend/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// setupTestDB opens a throwaway sqlite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.SetupJoinTable(&models.Project{}, "Members", &models.ProjectMember{}); err != nil {
		t.Fatalf("failed to set up join table: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Sprint{},
		&models.Task{},
		&models.ActivityLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// stubGenerator records every prompt it receives and returns a fixed reply.
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func mkUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		FullName:     "Test User",
		Email:        email,
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceholde",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user fixture: %v", err)
	}
	return user
}

func mkProject(t *testing.T, db *gorm.DB, title string) *models.Project {
	t.Helper()
	project := &models.Project{Title: title}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create project fixture: %v", err)
	}
	return project
}

func mkSprint(t *testing.T, db *gorm.DB, projectID uint, start, end string) *models.Sprint {
	t.Helper()
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		t.Fatalf("bad start date %q: %v", start, err)
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		t.Fatalf("bad end date %q: %v", end, err)
	}
	sprint := &models.Sprint{
		ProjectID: projectID,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  true,
	}
	if err := db.Create(sprint).Error; err != nil {
		t.Fatalf("failed to create sprint fixture: %v", err)
	}
	return sprint
}

// wantKind asserts that err is an *response.AppError of the given kind.
func wantKind(t *testing.T, err error, kind string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	if appErr.Kind != kind {
		t.Errorf("error kind = %q, expected %q", appErr.Kind, kind)
	}
}
