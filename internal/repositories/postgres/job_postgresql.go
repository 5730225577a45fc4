package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/researchmatch/job-service/internal/cache"
	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
)

type JobPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewJobPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.JobRepository {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &JobPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (j *JobPostgreSQL) Create(ctx context.Context, tx *gorm.DB, job *models.Job) error {
	db := getDB(j.db, tx)
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(job).Error; err != nil {
		return handleDBError(err, "create job")
	}
	return nil
}

// GetByID retrieves a job with its department and sponsors. Reads on a
// transaction bypass the cache so they observe uncommitted writes.
func (j *JobPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Job, error) {
	if tx != nil {
		return j.fetchByID(ctx, tx, id)
	}

	var job models.Job
	err := j.cacheManager.Job.CacheOrExecute(ctx, cache.JobKey(id), &job, cache.JobCacheConfig.TTL, func() (interface{}, error) {
		return j.fetchByID(ctx, j.db, id)
	})
	if err != nil {
		return nil, err
	}

	return &job, nil
}

func (j *JobPostgreSQL) Update(ctx context.Context, tx *gorm.DB, job *models.Job) error {
	db := getDB(j.db, tx)
	if err := db.WithContext(ctx).Omit(clause.Associations).Save(job).Error; err != nil {
		return handleDBError(err, "update job")
	}

	j.invalidateOutsideTx(ctx, tx, job.ID)
	return nil
}

// ===== QUERY OPERATIONS =====

func (j *JobPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.JobFilters) ([]*models.Job, int64, error) {
	db := getDB(j.db, tx)
	var jobs []*models.Job
	var total int64

	query := db.WithContext(ctx).Model(&models.Job{})

	if filters.Active != nil {
		query = query.Where("active = ?", *filters.Active)
	}
	if filters.DepartmentID != nil {
		query = query.Where("department_id = ?", *filters.DepartmentID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count jobs")
	}

	sortColumns := map[string]string{
		"created_at": "created_at",
		"title":      "title",
		"end_date":   "end_date",
		"id":         "id",
	}
	query = applySort(query, sortColumns, filters.SortBy, filters.SortOrder, "created_at")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := j.withDetails(query).Find(&jobs).Error; err != nil {
		return nil, 0, handleDBError(err, "list jobs")
	}

	return jobs, total, nil
}

// ListActive returns every active job, newest first
func (j *JobPostgreSQL) ListActive(ctx context.Context, tx *gorm.DB) ([]*models.Job, error) {
	db := getDB(j.db, tx)
	var jobs []*models.Job

	if err := j.withDetails(db.WithContext(ctx)).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, handleDBError(err, "list active jobs")
	}

	return jobs, nil
}

// ===== SPONSORSHIPS =====

func (j *JobPostgreSQL) ClearSponsorships(ctx context.Context, tx *gorm.DB, jobID uint) error {
	db := getDB(j.db, tx)
	if err := db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Delete(&models.Sponsorship{}).Error; err != nil {
		return handleDBError(err, "clear sponsorships")
	}

	j.invalidateOutsideTx(ctx, tx, jobID)
	return nil
}

func (j *JobPostgreSQL) AddSponsorship(ctx context.Context, tx *gorm.DB, jobID, facultyID uint) error {
	db := getDB(j.db, tx)
	sponsorship := &models.Sponsorship{JobID: jobID, FacultyID: facultyID}

	if err := db.WithContext(ctx).Create(sponsorship).Error; err != nil {
		return handleDBError(err, "add sponsorship")
	}

	j.invalidateOutsideTx(ctx, tx, jobID)
	return nil
}

func (j *JobPostgreSQL) GetSponsorships(ctx context.Context, tx *gorm.DB, jobID uint) ([]models.Sponsorship, error) {
	db := getDB(j.db, tx)
	var sponsorships []models.Sponsorship

	if err := db.WithContext(ctx).
		Preload("Faculty").
		Where("job_id = ?", jobID).
		Order("id ASC").
		Find(&sponsorships).Error; err != nil {
		return nil, handleDBError(err, "get sponsorships")
	}

	return sponsorships, nil
}

// InvalidateCache drops the cached job. Callers writing on a transaction
// call it once the transaction has committed.
func (j *JobPostgreSQL) InvalidateCache(ctx context.Context, jobID uint) {
	cache.InvalidateJobCache(ctx, j.cacheManager, jobID)
}

// ===== HELPER METHODS =====

// invalidateOutsideTx drops the cached job unless the write is still
// uncommitted; a reader could otherwise re-cache the old row before commit.
func (j *JobPostgreSQL) invalidateOutsideTx(ctx context.Context, tx *gorm.DB, jobID uint) {
	if tx != nil {
		return
	}
	j.InvalidateCache(ctx, jobID)
}

func (j *JobPostgreSQL) fetchByID(ctx context.Context, db *gorm.DB, id uint) (*models.Job, error) {
	var job models.Job
	if err := j.withDetails(db.WithContext(ctx)).First(&job, id).Error; err != nil {
		return nil, handleDBError(err, "get job by id")
	}
	return &job, nil
}

func (j *JobPostgreSQL) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Department").
		Preload("Sponsorships", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Sponsorships.Faculty")
}
