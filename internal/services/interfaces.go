package services

import (
	"context"
	"io"

	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
	"github.com/researchmatch/job-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type ProfileUpdateRequest = validator.ProfileUpdateRequest
type CreateJobRequest = validator.JobCreateRequest
type UpdateJobRequest = validator.JobUpdateRequest
type SponsorRequest = validator.SponsorRequest
type CreateUserRequest = validator.UserCreateRequest

// AccountClaims is what the identity provider tells us about a login
type AccountClaims struct {
	Login string
	Name  string
	Email string
}

type UserResponse struct {
	*models.User
	RoleLabel     string `json:"role_label"`
	CanApply      bool   `json:"can_apply"`
	CanPost       bool   `json:"can_post"`
	CourseNames   string `json:"course_names"`
	CategoryNames string `json:"category_names"`
	ProglangNames string `json:"proglang_names"`
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type JobResponse struct {
	*models.Job
	Sponsor *models.Faculty `json:"sponsor"`
	CanEdit bool            `json:"can_edit"`
}

type JobListResponse struct {
	Jobs  []*JobResponse `json:"jobs"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// ===== SERVICE INTERFACES =====

type TagService interface {
	// Each handler replaces one tag kind. A nil tx runs in its own transaction.
	HandleCourses(ctx context.Context, tx *gorm.DB, user *models.User, raw *string) error
	HandleCategories(ctx context.Context, tx *gorm.DB, user *models.User, raw *string) error
	HandleProglangs(ctx context.Context, tx *gorm.DB, user *models.User, raw *string) error
}

type RoleClassifier interface {
	Classify(ctx context.Context, login string) (models.UserRole, *models.DirectoryPerson, error)
	UpdateUserType(ctx context.Context, user *models.User, save bool) (models.UserRole, error)
}

type UserService interface {
	// Account lifecycle
	SyncAccount(ctx context.Context, claims AccountClaims) (*models.User, error)
	// CreateUser provisions a login that has not signed in yet. Admin only.
	CreateUser(ctx context.Context, req *CreateUserRequest) (*UserResponse, error)
	RecomputeRole(ctx context.Context, userID uint) (*UserResponse, error)

	// Directory of accounts. Admin only.
	ListUsers(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)

	// Profile
	GetProfile(ctx context.Context, userID uint) (*UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req *ProfileUpdateRequest) (*UserResponse, error)
}

type JobService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateJobRequest, posterID uint) (*JobResponse, error)
	GetByID(ctx context.Context, id uint, viewerID uint) (*JobResponse, error)
	Update(ctx context.Context, id uint, req *UpdateJobRequest, userID uint) (*JobResponse, error)
	List(ctx context.Context, filters repositories.JobFilters, viewerID uint) (*JobListResponse, error)

	// Sponsorship
	SetSponsor(ctx context.Context, id uint, req *SponsorRequest, userID uint) (*JobResponse, error)
	// HandleSponsorships clears the job's sponsors, then links the faculty if it exists
	HandleSponsorships(ctx context.Context, jobID, facultyID, actorID uint) error

	// Catalog
	ListDepartments(ctx context.Context) ([]*models.Department, error)
	GetDepartment(ctx context.Context, id uint) (*models.Department, error)
	ListFaculties(ctx context.Context) ([]*models.Faculty, error)
	GetFaculty(ctx context.Context, id uint) (*models.Faculty, error)
}

type ExportService interface {
	// ExportActiveJobs writes an XLSX workbook of every active job
	ExportActiveJobs(ctx context.Context, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	User() UserService
	Job() JobService
	Tag() TagService
	Role() RoleClassifier
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
