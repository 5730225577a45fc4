package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
	"github.com/researchmatch/job-service/internal/validator"
)

const (
	defaultUserPageSize = 20
	maxUserPageSize     = 100
)

type userService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	validator  *validator.Validator
	tags       TagService
	classifier RoleClassifier
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, tags TagService, classifier RoleClassifier) UserService {
	return &userService{
		repo:       repo,
		db:         db,
		logger:     logger,
		validator:  validator,
		tags:       tags,
		classifier: classifier,
	}
}

// SyncAccount returns the user for the login, creating and classifying it on
// first sight. Existing users keep their role.
func (s *userService) SyncAccount(ctx context.Context, claims AccountClaims) (*models.User, error) {
	login := strings.TrimSpace(claims.Login)
	if login == "" {
		return nil, ValidationErrors{{Field: "login", Message: "can't be blank", Rule: "required"}}
	}

	user, err := s.repo.User().GetByLogin(ctx, nil, login)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user, err = s.newAccount(ctx, login, claims)
	if err != nil {
		return nil, err
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		// A concurrent first request may have provisioned the same login
		if repositories.IsDuplicateError(err) {
			return s.repo.User().GetByLogin(ctx, nil, login)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User account provisioned", "user_id", user.ID, "login", login, "role", user.Role.String())
	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest) (*UserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	login := strings.TrimSpace(req.Login)
	taken, err := s.repo.User().ExistsByLogin(ctx, nil, login, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check login: %w", err)
	}
	if errs := s.validator.ValidateLoginUnique(login, taken); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.newAccount(ctx, login, AccountClaims{Login: login, Name: req.Name, Email: req.Email})
	if err != nil {
		return nil, err
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, s.validator.ValidateLoginUnique(login, true)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User account created", "user_id", user.ID, "login", login, "role", user.Role.String())
	return s.toResponse(user), nil
}

// newAccount classifies the login and builds the unsaved user
func (s *userService) newAccount(ctx context.Context, login string, claims AccountClaims) (*models.User, error) {
	role, person, err := s.classifier.Classify(ctx, login)
	if err != nil {
		return nil, err
	}

	snapshot, err := directorySnapshot(person)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Login:             login,
		Name:              accountName(person, claims),
		Role:              role,
		DirectorySnapshot: snapshot,
	}
	user.SetEmail(claims.Email)
	if person != nil {
		user.SetEmail(person.Email)
	}

	if errs := s.validator.ValidateUser(user); len(errs) > 0 {
		return nil, errs
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultUserPageSize
	}
	if filters.Limit > maxUserPageSize {
		filters.Limit = maxUserPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]*UserResponse, len(users))
	for i, user := range users {
		responses[i] = s.toResponse(user)
	}

	return &UserListResponse{
		Users: responses,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	}, nil
}

func accountName(person *models.DirectoryPerson, claims AccountClaims) string {
	if person != nil {
		if name := person.FullName(); name != "" {
			return name
		}
	}
	if name := strings.TrimSpace(claims.Name); name != "" {
		return name
	}
	return claims.Login
}

func (s *userService) RecomputeRole(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	// An explicit recompute must not classify from a stale directory entry
	if _, err := s.classifier.UpdateUserType(repositories.WithDirectoryRefresh(ctx), user, true); err != nil {
		return nil, err
	}

	return s.toResponse(user), nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return s.toResponse(user), nil
}

// UpdateProfile saves the profile fields and replaces any tag lists supplied,
// all in one transaction.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, req *ProfileUpdateRequest) (*UserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	applyProfileUpdate(user, req)

	if errs := s.validator.ValidateUser(user); len(errs) > 0 {
		return nil, errs
	}

	s.logger.Info("Updating user profile", "user_id", userID)

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.User().Update(ctx, tx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if err := s.tags.HandleCourses(ctx, tx, user, req.CourseNames); err != nil {
			return err
		}
		if err := s.tags.HandleCategories(ctx, tx, user, req.CategoryNames); err != nil {
			return err
		}
		return s.tags.HandleProglangs(ctx, tx, user, req.ProglangNames)
	})
	if err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}

func applyProfileUpdate(user *models.User, req *ProfileUpdateRequest) {
	if req.Email != nil {
		user.SetEmail(*req.Email)
	}
	if req.Units != nil {
		user.Units = req.Units
	}
	if req.FreeHours != nil {
		user.FreeHours = req.FreeHours
	}
	if req.ResearchBlurb != nil {
		user.ResearchBlurb = req.ResearchBlurb
	}
	if req.Experience != nil {
		user.Experience = req.Experience
	}
	if req.Summer != nil {
		user.Summer = *req.Summer
	}
	if req.URL != nil {
		user.URL = req.URL
	}
	if req.Year != nil {
		user.Year = req.Year
	}
}

func (s *userService) toResponse(user *models.User) *UserResponse {
	if !user.Role.IsValid() {
		s.logger.Warn("Unknown user type", "user_id", user.ID, "user_type", int(user.Role))
	}
	return &UserResponse{
		User:          user,
		RoleLabel:     user.Role.Label(),
		CanApply:      user.Role.CanApply(),
		CanPost:       user.Role.CanPost(),
		CourseNames:   user.CourseList(true),
		CategoryNames: user.CategoryList(true),
		ProglangNames: user.ProglangList(true),
	}
}

func (s *userService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
