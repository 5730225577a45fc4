package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/cache"
	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
)

func seedJob(t *testing.T, db *gorm.DB, title string, active bool) (*models.Job, *models.Faculty) {
	t.Helper()
	dept := &models.Department{Name: "Electrical Engineering and Computer Science", Abbrev: "EECS"}
	require.NoError(t, db.FirstOrCreate(dept, models.Department{Name: dept.Name, Abbrev: dept.Abbrev}).Error)

	faculty := &models.Faculty{Name: "Prof " + title, Email: "prof@berkeley.edu", DepartmentID: &dept.ID}
	require.NoError(t, db.Create(faculty).Error)

	job := &models.Job{Title: title, Desc: "desc", DepartmentID: dept.ID, Active: active}
	require.NoError(t, db.Create(job).Error)
	return job, faculty
}

func TestJobRepository_GetByIDWithSponsors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostgreSQL(db, nil)
	ctx := context.Background()
	job, faculty := seedJob(t, db, "Robot arm calibration", true)

	require.NoError(t, repo.AddSponsorship(ctx, nil, job.ID, faculty.ID))

	loaded, err := repo.GetByID(ctx, nil, job.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Department)
	assert.Equal(t, "EECS", loaded.Department.Abbrev)
	require.NotNil(t, loaded.Sponsor())
	assert.Equal(t, faculty.ID, loaded.Sponsor().ID)

	_, err = repo.GetByID(ctx, nil, 999)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestJobRepository_ClearSponsorships(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostgreSQL(db, nil)
	ctx := context.Background()
	job, faculty := seedJob(t, db, "Robot arm calibration", true)
	other, _ := seedJob(t, db, "Sensor network study", true)

	require.NoError(t, repo.AddSponsorship(ctx, nil, job.ID, faculty.ID))
	require.NoError(t, repo.AddSponsorship(ctx, nil, other.ID, faculty.ID))
	require.NoError(t, repo.ClearSponsorships(ctx, nil, job.ID))

	sponsorships, err := repo.GetSponsorships(ctx, nil, job.ID)
	require.NoError(t, err)
	assert.Empty(t, sponsorships)

	sponsorships, err = repo.GetSponsorships(ctx, nil, other.ID)
	require.NoError(t, err)
	assert.Len(t, sponsorships, 1)
}

func TestJobRepository_ListAndActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostgreSQL(db, nil)
	ctx := context.Background()

	seedJob(t, db, "Robot arm calibration", true)
	seedJob(t, db, "Sensor network study", false)
	seedJob(t, db, "Robot learning benchmarks", true)

	active, err := repo.ListActive(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	jobs, total, err := repo.List(ctx, nil, repositories.JobFilters{Query: "robot", SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Robot arm calibration", jobs[0].Title)

	inactive := false
	_, total, err = repo.List(ctx, nil, repositories.JobFilters{Active: &inactive})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestJobRepository_CacheInvalidatedOnSponsorshipChange(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewJobPostgreSQL(db, cache.NewCacheManager(client))
	ctx := context.Background()
	job, faculty := seedJob(t, db, "Robot arm calibration", true)

	loaded, err := repo.GetByID(ctx, nil, job.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.Sponsor())
	assert.True(t, mr.Exists("job:"+cache.JobKey(job.ID)))

	require.NoError(t, repo.AddSponsorship(ctx, nil, job.ID, faculty.ID))
	assert.False(t, mr.Exists("job:"+cache.JobKey(job.ID)))

	loaded, err = repo.GetByID(ctx, nil, job.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Sponsor())
	assert.Equal(t, faculty.Email, loaded.Sponsor().Email)
}

func TestJobRepository_TransactionalWriteDefersInvalidation(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewJobPostgreSQL(db, cache.NewCacheManager(client))
	ctx := context.Background()
	job, faculty := seedJob(t, db, "Robot arm calibration", true)
	key := "job:" + cache.JobKey(job.ID)

	_, err := repo.GetByID(ctx, nil, job.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(key))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := repo.ClearSponsorships(ctx, tx, job.ID); err != nil {
			return err
		}
		return repo.AddSponsorship(ctx, tx, job.ID, faculty.ID)
	}))
	assert.True(t, mr.Exists(key), "uncommitted writes must leave the cache alone")

	repo.InvalidateCache(ctx, job.ID)
	assert.False(t, mr.Exists(key))

	loaded, err := repo.GetByID(ctx, nil, job.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Sponsor())
	assert.Equal(t, faculty.ID, loaded.Sponsor().ID)
}

func TestJobRepository_UpdateLeavesSponsorships(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobPostgreSQL(db, nil)
	ctx := context.Background()
	job, faculty := seedJob(t, db, "Robot arm calibration", true)
	require.NoError(t, repo.AddSponsorship(ctx, nil, job.ID, faculty.ID))

	loaded, err := repo.GetByID(ctx, nil, job.ID)
	require.NoError(t, err)
	end := time.Now().Add(24 * time.Hour)
	loaded.EndDate = &end
	loaded.Sponsorships = nil
	require.NoError(t, repo.Update(ctx, nil, loaded))

	sponsorships, err := repo.GetSponsorships(ctx, nil, job.ID)
	require.NoError(t, err)
	assert.Len(t, sponsorships, 1)
}

func TestDepartmentAndFacultyRepositories(t *testing.T) {
	db := setupTestDB(t)
	departments := NewDepartmentRepository(db, nil)
	faculties := NewFacultyRepository(db)
	ctx := context.Background()

	first, err := departments.FindOrCreate(ctx, nil, "Electrical Engineering and Computer Science", "EECS")
	require.NoError(t, err)
	again, err := departments.FindOrCreate(ctx, nil, "Electrical Engineering and Computer Science", "EECS")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	list, err := departments.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	head, err := departments.First(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, head.ID)

	faculty, err := faculties.FindOrInit(ctx, nil, "Test Faculty", "test@faculty.com")
	require.NoError(t, err)
	assert.Zero(t, faculty.ID)

	faculty.DepartmentID = &first.ID
	require.NoError(t, faculties.Save(ctx, nil, faculty))

	found, err := faculties.FindOrInit(ctx, nil, "Test Faculty", "test@faculty.com")
	require.NoError(t, err)
	assert.Equal(t, faculty.ID, found.ID)

	byID, err := faculties.GetByID(ctx, nil, faculty.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.Department)
	assert.Equal(t, "EECS", byID.Department.Abbrev)
}
