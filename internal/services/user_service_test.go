package services

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researchmatch/job-service/internal/config"
	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
	"github.com/researchmatch/job-service/internal/repositories/postgres"
)

func TestSyncAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions and classifies a new login", func(t *testing.T) {
		env := newTestEnv(t)
		env.directory.people["200"] = &models.DirectoryPerson{
			UID:       "200",
			FirstName: "ADA",
			LastName:  "LOVELACE",
			Email:     "Ada@Berkeley.edu",
			Student:   true,
		}

		user, err := env.userService().SyncAccount(ctx, AccountClaims{Login: "200", Name: "ignored"})
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "Ada Lovelace", user.Name)
		assert.Equal(t, "ada@berkeley.edu", user.Email)
		assert.Equal(t, models.RoleUndergrad, user.Role)
		assert.NotEmpty(t, user.DirectorySnapshot)
	})

	t.Run("unknown person becomes affiliate named from claims", func(t *testing.T) {
		env := newTestEnv(t)

		user, err := env.userService().SyncAccount(ctx, AccountClaims{Login: "201", Name: "Visiting Scholar", Email: "VS@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "Visiting Scholar", user.Name)
		assert.Equal(t, "vs@example.com", user.Email)
		assert.Equal(t, models.RoleAffiliate, user.Role)
	})

	t.Run("existing users keep their role", func(t *testing.T) {
		env := newTestEnv(t)
		existing := env.createUser(t, "202", models.RoleFaculty)
		env.directory.people["202"] = &models.DirectoryPerson{UID: "202", Student: true}

		user, err := env.userService().SyncAccount(ctx, AccountClaims{Login: "202"})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)
		assert.Equal(t, models.RoleFaculty, user.Role)
		assert.Zero(t, env.directory.calls)
	})

	t.Run("directory failure creates nothing", func(t *testing.T) {
		env := newTestEnv(t)
		env.directory.err = repositories.ErrDirectoryUnavailable

		_, err := env.userService().SyncAccount(ctx, AccountClaims{Login: "203"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDirectoryUnavailable))
		assert.EqualValues(t, 0, env.countRows(t, "users"))
	})

	t.Run("blank login is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.userService().SyncAccount(ctx, AccountClaims{Login: "  "})
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, []string{"login"}, verrs.Fields())
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("updates fields and tags", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "300", models.RoleUndergrad)

		resp, err := env.userService().UpdateProfile(ctx, user.ID, &ProfileUpdateRequest{
			Email:         strPtr("Student@Berkeley.EDU"),
			Year:          intPtr(3),
			CourseNames:   strPtr("cs61a,CS61B"),
			CategoryNames: strPtr("Robotics"),
			ProglangNames: strPtr("python"),
		})
		require.NoError(t, err)
		assert.Equal(t, "student@berkeley.edu", resp.Email)
		assert.Equal(t, 3, *resp.Year)
		assert.Equal(t, "CS61A, CS61B", resp.CourseNames)
		assert.Equal(t, "robotics", resp.CategoryNames)
		assert.Equal(t, "Python", resp.ProglangNames)
		assert.True(t, resp.CanApply)
		assert.Equal(t, "Undergraduate", resp.RoleLabel)
	})

	t.Run("omitted email keeps the previous one", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "301", models.RoleGrad)
		require.NoError(t, env.db.Model(user).Update("email", "keep@berkeley.edu").Error)
		summer := true

		resp, err := env.userService().UpdateProfile(ctx, user.ID, &ProfileUpdateRequest{Summer: &summer})
		require.NoError(t, err)
		assert.Equal(t, "keep@berkeley.edu", resp.Email)
		assert.True(t, resp.Summer)
	})

	t.Run("invalid year is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "302", models.RoleUndergrad)

		_, err := env.userService().UpdateProfile(ctx, user.ID, &ProfileUpdateRequest{
			Year:        intPtr(7),
			CourseNames: strPtr("CS61A"),
		})
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Contains(t, verrs.Fields(), "year")
		assert.EqualValues(t, 0, env.countRows(t, "courses"))
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.userService().UpdateProfile(ctx, 999, &ProfileUpdateRequest{})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRecomputeRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "400", models.RoleAffiliate)
	env.directory.people["400"] = &models.DirectoryPerson{UID: "400", Employee: true, EmployeeAcademic: true}

	resp, err := env.userService().RecomputeRole(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, resp.Role)
	assert.True(t, resp.CanPost)
	assert.Len(t, env.publisher.GetPublishedEvents(), 1)

	_, err = env.userService().RecomputeRole(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecomputeRole_BypassesDirectoryCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	env.repo = postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: env.db, RedisClient: client, Directory: env.directory})

	env.directory.people["410"] = &models.DirectoryPerson{UID: "410", Student: true}
	user, err := env.userService().SyncAccount(ctx, AccountClaims{Login: "410"})
	require.NoError(t, err)
	require.Equal(t, models.RoleUndergrad, user.Role)
	require.Equal(t, 1, env.directory.calls)

	// Graduated and hired; the cached entry still says student
	env.directory.people["410"] = &models.DirectoryPerson{UID: "410", Employee: true}

	resp, err := env.userService().RecomputeRole(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, resp.Role)
	assert.Equal(t, 2, env.directory.calls)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("classifies the login from the directory", func(t *testing.T) {
		env := newTestEnv(t)
		env.directory.people["500"] = &models.DirectoryPerson{UID: "500", FirstName: "grace", LastName: "hopper", Employee: true, EmployeeAcademic: true}

		resp, err := env.userService().CreateUser(ctx, &CreateUserRequest{Login: " 500 ", Email: "Hopper@Berkeley.edu"})
		require.NoError(t, err)
		assert.NotZero(t, resp.ID)
		assert.Equal(t, "500", resp.Login)
		assert.Equal(t, "Grace Hopper", resp.Name)
		assert.Equal(t, "hopper@berkeley.edu", resp.Email)
		assert.Equal(t, models.RoleFaculty, resp.Role)
	})

	t.Run("taken login is a validation error", func(t *testing.T) {
		env := newTestEnv(t)
		env.createUser(t, "501", models.RoleGrad)

		_, err := env.userService().CreateUser(ctx, &CreateUserRequest{Login: "501", Name: "Someone Else"})
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		require.Len(t, verrs, 1)
		assert.Equal(t, "login", verrs[0].Field)
		assert.Equal(t, "has already been taken", verrs[0].Message)
		assert.Zero(t, env.directory.calls)
		assert.EqualValues(t, 1, env.countRows(t, "users"))
	})

	t.Run("request is validated", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.userService().CreateUser(ctx, &CreateUserRequest{})
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, []string{"login"}, verrs.Fields())
	})

	t.Run("directory failure creates nothing", func(t *testing.T) {
		env := newTestEnv(t)
		env.directory.err = repositories.ErrDirectoryUnavailable

		_, err := env.userService().CreateUser(ctx, &CreateUserRequest{Login: "502"})
		assert.ErrorIs(t, err, ErrDirectoryUnavailable)
		assert.EqualValues(t, 0, env.countRows(t, "users"))
	})
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tags := env.tagService(config.TagConfig{})

	student := env.createUser(t, "600", models.RoleUndergrad)
	require.NoError(t, tags.HandleCourses(ctx, nil, student, strPtr("cs61a,cs61b")))
	env.createUser(t, "601", models.RoleFaculty)
	env.createUser(t, "602", models.RoleFaculty)

	resp, err := env.userService().ListUsers(ctx, repositories.UserFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
	assert.Equal(t, defaultUserPageSize, resp.Size)
	require.Len(t, resp.Users, 3)
	assert.Equal(t, "CS61A, CS61B", resp.Users[0].CourseNames)

	faculty := models.RoleFaculty
	resp, err = env.userService().ListUsers(ctx, repositories.UserFilters{Role: &faculty, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Total)
	assert.Equal(t, 2, resp.Page)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "Faculty", resp.Users[0].RoleLabel)

	resp, err = env.userService().ListUsers(ctx, repositories.UserFilters{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, maxUserPageSize, resp.Size)
}
