package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
	"github.com/researchmatch/job-service/internal/repositories/postgres"
	"github.com/researchmatch/job-service/internal/validator"
)

// readingJobRepository reads the job outside the transaction after every
// sponsorship write, like a concurrent request would
type readingJobRepository struct {
	repositories.JobRepository
	t *testing.T
}

func (r *readingJobRepository) AddSponsorship(ctx context.Context, tx *gorm.DB, jobID, facultyID uint) error {
	if err := r.JobRepository.AddSponsorship(ctx, tx, jobID, facultyID); err != nil {
		return err
	}
	job, err := r.JobRepository.GetByID(ctx, nil, jobID)
	require.NoError(r.t, err)
	assert.Nil(r.t, job.Sponsor(), "uncommitted sponsorship must not be visible")
	return nil
}

type readingRepository struct {
	repositories.Repository
	job repositories.JobRepository
}

func (r *readingRepository) Job() repositories.JobRepository {
	return r.job
}

// openWALDatabase returns a file database that serves readers while a
// transaction is open
func openWALDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "jobs.db") + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func TestHandleSponsorships_ConcurrentReaderDoesNotCacheStaleJob(t *testing.T) {
	ctx := context.Background()
	db := openWALDatabase(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	base := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, RedisClient: client})
	repo := &readingRepository{
		Repository: base,
		job:        &readingJobRepository{JobRepository: base.Job(), t: t},
	}

	dept := &models.Department{Name: "Electrical Engineering and Computer Science", Abbrev: "EECS"}
	require.NoError(t, db.Create(dept).Error)
	faculty := &models.Faculty{Name: "Grace Hopper", Email: "hopper@berkeley.edu"}
	require.NoError(t, db.Create(faculty).Error)
	job := &models.Job{Title: "Robot arm calibration", Desc: "desc", DepartmentID: dept.ID, Active: true}
	require.NoError(t, db.Create(job).Error)

	// Warm the cache with the unsponsored job
	cached, err := base.Job().GetByID(ctx, nil, job.ID)
	require.NoError(t, err)
	require.Nil(t, cached.Sponsor())

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewJobService(repo, db, log, validator.New(), nil)

	require.NoError(t, svc.HandleSponsorships(ctx, job.ID, faculty.ID, 0))

	loaded, err := base.Job().GetByID(ctx, nil, job.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Sponsor())
	assert.Equal(t, faculty.ID, loaded.Sponsor().ID)
}
