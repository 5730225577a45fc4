package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/researchmatch/job-service/internal/config"
	"github.com/researchmatch/job-service/internal/events"
	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
	"github.com/researchmatch/job-service/internal/repositories/postgres"
	"github.com/researchmatch/job-service/internal/validator"
)

// stubDirectory answers lookups from a map
type stubDirectory struct {
	people map[string]*models.DirectoryPerson
	err    error
	calls  int
}

func (d *stubDirectory) FindByLogin(ctx context.Context, login string) (*models.DirectoryPerson, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.people[login], nil
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	directory *stubDirectory
	publisher *events.MockEventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := &stubDirectory{people: map[string]*models.DirectoryPerson{}}

	return &testEnv{
		db:        db,
		repo:      postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, Directory: directory}),
		directory: directory,
		publisher: events.NewMockEventPublisher(log),
		logger:    log,
		validator: validator.New(),
	}
}

func (e *testEnv) tagService(cfg config.TagConfig) TagService {
	return NewTagService(e.repo, e.db, e.logger, cfg)
}

func (e *testEnv) classifier() RoleClassifier {
	return NewRoleClassifier(e.repo, e.publisher, e.logger)
}

func (e *testEnv) userService() UserService {
	return NewUserService(e.repo, e.db, e.logger, e.validator, e.tagService(config.TagConfig{}), e.classifier())
}

func (e *testEnv) jobService() JobService {
	return NewJobService(e.repo, e.db, e.logger, e.validator, e.publisher)
}

func (e *testEnv) createUser(t *testing.T, login string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Name: "User " + login, Login: login, Role: role}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createDepartment(t *testing.T) *models.Department {
	t.Helper()
	dept := &models.Department{Name: "Electrical Engineering and Computer Science", Abbrev: "EECS"}
	require.NoError(t, e.db.Create(dept).Error)
	return dept
}

func (e *testEnv) createFaculty(t *testing.T, name, email string) *models.Faculty {
	t.Helper()
	faculty := &models.Faculty{Name: name, Email: email}
	require.NoError(t, e.db.Create(faculty).Error)
	return faculty
}

func (e *testEnv) countRows(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Table(table).Count(&n).Error)
	return n
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
