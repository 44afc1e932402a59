package services

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/huangang/sprintdesk/backend/internal/models"
	"github.com/huangang/sprintdesk/backend/pkg/response"
	"gorm.io/gorm"
)

const maxQueryLength = 50

// SearchService resolves a free-text query to either an exact code lookup or
// a fuzzy title match. It returns the plain result set; whether an empty
// result is an error is the boundary's call, not the resolver's.
type SearchService struct {
	db *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Search trims the query and dispatches: all digits means an exact match on
// the task code, anything else a case-insensitive substring match on titles.
func (s *SearchService) Search(query string) ([]models.Task, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, response.NewValidation("search query must not be empty")
	}
	if utf8.RuneCountInString(q) > maxQueryLength {
		return nil, response.NewValidation("search query must not exceed 50 characters")
	}

	tasks := []models.Task{}

	if isAllDigits(q) {
		code, err := strconv.Atoi(q)
		if err != nil {
			// Too many digits to be a real code; nothing can match.
			return tasks, nil
		}
		if err := s.db.Where("code = ?", code).Find(&tasks).Error; err != nil {
			return nil, err
		}
		return tasks, nil
	}

	pattern := "%" + strings.ToLower(q) + "%"
	if err := s.db.Where("LOWER(title) LIKE ?", pattern).Order("code ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
