package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
)

type facultyRepository struct {
	db *gorm.DB
}

func NewFacultyRepository(db *gorm.DB) repositories.FacultyRepository {
	return &facultyRepository{db: db}
}

func (r *facultyRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Faculty, error) {
	db := getDB(r.db, tx)
	var faculty models.Faculty

	if err := db.WithContext(ctx).Preload("Department").First(&faculty, id).Error; err != nil {
		return nil, handleDBError(err, "get faculty by id")
	}

	return &faculty, nil
}

func (r *facultyRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.Faculty, error) {
	db := getDB(r.db, tx)
	var faculties []*models.Faculty

	if err := db.WithContext(ctx).
		Preload("Department").
		Order("name ASC").
		Find(&faculties).Error; err != nil {
		return nil, handleDBError(err, "list faculties")
	}

	return faculties, nil
}

// FindOrInit never writes; the returned faculty has ID 0 when it is new
func (r *facultyRepository) FindOrInit(ctx context.Context, tx *gorm.DB, name, email string) (*models.Faculty, error) {
	db := getDB(r.db, tx)
	var faculty models.Faculty

	err := db.WithContext(ctx).
		Where("name = ? AND email = ?", name, email).
		First(&faculty).Error
	if err == nil {
		return &faculty, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, handleDBError(err, "find faculty")
	}

	return &models.Faculty{Name: name, Email: email}, nil
}

func (r *facultyRepository) Save(ctx context.Context, tx *gorm.DB, faculty *models.Faculty) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Department").Save(faculty).Error; err != nil {
		return handleDBError(err, "save faculty")
	}
	return nil
}
