package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/models"
)

// JobRepository interface for job postings and their sponsorships
type JobRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, job *models.Job) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Job, error) // Includes department and sponsors
	Update(ctx context.Context, tx *gorm.DB, job *models.Job) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters JobFilters) ([]*models.Job, int64, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*models.Job, error)

	// Sponsorships
	ClearSponsorships(ctx context.Context, tx *gorm.DB, jobID uint) error
	AddSponsorship(ctx context.Context, tx *gorm.DB, jobID, facultyID uint) error
	GetSponsorships(ctx context.Context, tx *gorm.DB, jobID uint) ([]models.Sponsorship, error)

	// Writes on a transaction leave the cache alone; invalidate after commit
	InvalidateCache(ctx context.Context, jobID uint)
}

type FacultyRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Faculty, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Faculty, error)
	// FindOrInit returns the faculty matching name and email, or an unsaved one
	FindOrInit(ctx context.Context, tx *gorm.DB, name, email string) (*models.Faculty, error)
	Save(ctx context.Context, tx *gorm.DB, faculty *models.Faculty) error
}

type DepartmentRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error)
	First(ctx context.Context, tx *gorm.DB) (*models.Department, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Department, error)
	FindOrCreate(ctx context.Context, tx *gorm.DB, name, abbrev string) (*models.Department, error)
}
