package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/models"
)

// ===== SHARED ERRORS =====

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate record")
	// ErrDirectoryUnavailable wraps failures to reach the campus directory
	ErrDirectoryUnavailable = errors.New("directory unavailable")
)

// IsNotFoundError reports whether err means the record does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique constraint violation
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey)
}

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	// Query matches name, login or email
	Query  string           `json:"query"`
	Role   *models.UserRole `json:"role"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type JobFilters struct {
	Active       *bool  `json:"active"`
	DepartmentID *uint  `json:"department_id"`
	UserID       *uint  `json:"user_id"`
	Query        string `json:"query"`
	Limit        int    `json:"limit"`
	Offset       int    `json:"offset"`
	SortBy       string `json:"sort_by"`    // "created_at", "title", "end_date"
	SortOrder    string `json:"sort_order"` // "asc", "desc"
}
