package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/cache"
	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
)

type departmentRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDepartmentRepository(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DepartmentRepository {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &departmentRepository{db: db, cacheManager: cacheManager}
}

func (r *departmentRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error) {
	db := getDB(r.db, tx)
	var department models.Department

	if err := db.WithContext(ctx).First(&department, id).Error; err != nil {
		return nil, handleDBError(err, "get department by id")
	}

	return &department, nil
}

func (r *departmentRepository) First(ctx context.Context, tx *gorm.DB) (*models.Department, error) {
	db := getDB(r.db, tx)
	var department models.Department

	if err := db.WithContext(ctx).Order("id ASC").First(&department).Error; err != nil {
		return nil, handleDBError(err, "get first department")
	}

	return &department, nil
}

func (r *departmentRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.Department, error) {
	db := getDB(r.db, tx)
	var departments []*models.Department

	fetch := func() (interface{}, error) {
		var rows []*models.Department
		if err := db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
			return nil, handleDBError(err, "list departments")
		}
		return rows, nil
	}

	if tx != nil {
		rows, err := fetch()
		if err != nil {
			return nil, err
		}
		return rows.([]*models.Department), nil
	}

	err := r.cacheManager.Department.CacheOrExecute(ctx, cache.DepartmentListKey, &departments, cache.DepartmentCacheConfig.TTL, fetch)
	if err != nil {
		return nil, err
	}

	return departments, nil
}

// FindOrCreate returns the department with exactly this name and abbrev, creating it if missing
func (r *departmentRepository) FindOrCreate(ctx context.Context, tx *gorm.DB, name, abbrev string) (*models.Department, error) {
	db := getDB(r.db, tx)
	var department models.Department

	err := db.WithContext(ctx).
		Where("name = ? AND abbrev = ?", name, abbrev).
		First(&department).Error
	if err == nil {
		return &department, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, handleDBError(err, "find department")
	}

	department = models.Department{Name: name, Abbrev: abbrev}
	if err := db.WithContext(ctx).Create(&department).Error; err != nil {
		return nil, handleDBError(err, "create department")
	}

	cache.InvalidateDepartmentCache(ctx, r.cacheManager)
	return &department, nil
}
