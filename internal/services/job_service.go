package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/events"
	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
	"github.com/researchmatch/job-service/internal/validator"
)

const (
	defaultJobPageSize = 20
	maxJobPageSize     = 100
)

type jobService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewJobService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) JobService {
	return &jobService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *jobService) Create(ctx context.Context, req *CreateJobRequest, posterID uint) (*JobResponse, error) {
	s.logger.Info("Creating job", "title", req.Title, "poster_id", posterID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	poster, err := s.repo.User().GetByID(ctx, nil, posterID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if !poster.Role.CanPost() {
		return nil, NewPermissionError(posterID, 0, "job", "create", "undergraduates cannot post jobs")
	}

	if err := s.checkDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	job := &models.Job{
		Title:        req.Title,
		Desc:         req.Desc,
		DepartmentID: req.DepartmentID,
		UserID:       &poster.ID,
		NumPositions: req.NumPositions,
		EndDate:      req.EndDate,
		Active:       req.Active,
	}
	if errs := s.validator.ValidateJob(job); len(errs) > 0 {
		return nil, errs
	}

	var sponsorID *uint
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Job().Create(ctx, tx, job); err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
		if req.FacultyID == nil {
			return nil
		}
		id, err := s.replaceSponsorship(ctx, tx, job.ID, *req.FacultyID)
		sponsorID = id
		return err
	})
	if err != nil {
		return nil, err
	}

	if req.FacultyID != nil {
		s.publishSponsorship(ctx, job.ID, sponsorID, posterID)
	}

	s.logger.Info("Job created successfully", "job_id", job.ID)
	return s.GetByID(ctx, job.ID, posterID)
}

func (s *jobService) GetByID(ctx context.Context, id uint, viewerID uint) (*JobResponse, error) {
	job, err := s.repo.Job().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrJobNotFound)
	}

	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	return buildJobResponse(job, viewer), nil
}

func (s *jobService) Update(ctx context.Context, id uint, req *UpdateJobRequest, userID uint) (*JobResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	job, user, err := s.loadForAdmin(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Desc != nil {
		job.Desc = *req.Desc
	}
	if req.DepartmentID != nil && *req.DepartmentID != job.DepartmentID {
		if err := s.checkDepartment(ctx, *req.DepartmentID); err != nil {
			return nil, err
		}
		job.DepartmentID = *req.DepartmentID
		job.Department = nil
	}
	if req.NumPositions != nil {
		job.NumPositions = req.NumPositions
	}
	if req.EndDate != nil {
		job.EndDate = req.EndDate
	}
	if req.Active != nil {
		job.Active = *req.Active
	}

	if errs := s.validator.ValidateJob(job); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Job().Update(ctx, nil, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	s.logger.Info("Job updated successfully", "job_id", id, "user_id", userID)
	return s.GetByID(ctx, id, user.ID)
}

func (s *jobService) List(ctx context.Context, filters repositories.JobFilters, viewerID uint) (*JobListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultJobPageSize
	}
	if filters.Limit > maxJobPageSize {
		filters.Limit = maxJobPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	jobs, total, err := s.repo.Job().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	responses := make([]*JobResponse, len(jobs))
	for i, job := range jobs {
		responses[i] = buildJobResponse(job, viewer)
	}

	return &JobListResponse{
		Jobs:  responses,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	}, nil
}

func (s *jobService) SetSponsor(ctx context.Context, id uint, req *SponsorRequest, userID uint) (*JobResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, _, err := s.loadForAdmin(ctx, id, userID, "sponsor"); err != nil {
		return nil, err
	}

	if err := s.HandleSponsorships(ctx, id, req.FacultyID, userID); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id, userID)
}

func (s *jobService) HandleSponsorships(ctx context.Context, jobID, facultyID, actorID uint) error {
	var sponsorID *uint
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.Job().GetByID(ctx, tx, jobID); err != nil {
			return notFound(err, ErrJobNotFound)
		}

		id, err := s.replaceSponsorship(ctx, tx, jobID, facultyID)
		sponsorID = id
		return err
	})
	if err != nil {
		return err
	}

	s.repo.Job().InvalidateCache(ctx, jobID)
	s.publishSponsorship(ctx, jobID, sponsorID, actorID)
	return nil
}

// replaceSponsorship clears every sponsorship of the job and links the faculty.
// An unknown faculty leaves the job unsponsored and returns nil.
func (s *jobService) replaceSponsorship(ctx context.Context, tx *gorm.DB, jobID, facultyID uint) (*uint, error) {
	if err := s.repo.Job().ClearSponsorships(ctx, tx, jobID); err != nil {
		return nil, fmt.Errorf("failed to clear sponsorships: %w", err)
	}

	faculty, err := s.repo.Faculty().GetByID(ctx, tx, facultyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Info("Sponsor not found, job left unsponsored", "job_id", jobID, "faculty_id", facultyID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get faculty: %w", err)
	}

	if err := s.repo.Job().AddSponsorship(ctx, tx, jobID, faculty.ID); err != nil {
		return nil, fmt.Errorf("failed to add sponsorship: %w", err)
	}

	return &faculty.ID, nil
}

func (s *jobService) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	return s.repo.Department().List(ctx, nil)
}

func (s *jobService) GetDepartment(ctx context.Context, id uint) (*models.Department, error) {
	department, err := s.repo.Department().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrDepartmentNotFound)
	}
	return department, nil
}

func (s *jobService) ListFaculties(ctx context.Context) ([]*models.Faculty, error) {
	return s.repo.Faculty().List(ctx, nil)
}

func (s *jobService) GetFaculty(ctx context.Context, id uint) (*models.Faculty, error) {
	faculty, err := s.repo.Faculty().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrFacultyNotFound)
	}
	return faculty, nil
}

// ===== HELPERS =====

func (s *jobService) loadForAdmin(ctx context.Context, id, userID uint, action string) (*models.Job, *models.User, error) {
	job, err := s.repo.Job().GetByID(ctx, nil, id)
	if err != nil {
		return nil, nil, notFound(err, ErrJobNotFound)
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		return nil, nil, notFound(err, ErrUserNotFound)
	}

	if !user.Role.IsAdmin() && !job.AllowAdminBy(user) {
		return nil, nil, NewPermissionError(userID, id, "job", action, "not the poster or a sponsor")
	}

	return job, user, nil
}

func (s *jobService) checkDepartment(ctx context.Context, departmentID uint) error {
	if _, err := s.repo.Department().GetByID(ctx, nil, departmentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ValidationErrors{{
				Field:   "department_id",
				Message: "does not exist",
				Value:   departmentID,
				Rule:    "exists",
			}}
		}
		return fmt.Errorf("failed to get department: %w", err)
	}
	return nil
}

// viewer loads the requesting user; zero means anonymous
func (s *jobService) viewer(ctx context.Context, viewerID uint) (*models.User, error) {
	if viewerID == 0 {
		return nil, nil
	}
	user, err := s.repo.User().GetByID(ctx, nil, viewerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *jobService) publishSponsorship(ctx context.Context, jobID uint, facultyID *uint, actorID uint) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(events.EventJobSponsorshipChanged, events.SponsorshipChangedEvent{
		JobID:     jobID,
		FacultyID: facultyID,
		ChangedBy: actorID,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "job_id", jobID, "error", err)
	}
}

func buildJobResponse(job *models.Job, viewer *models.User) *JobResponse {
	resp := &JobResponse{Job: job, Sponsor: job.Sponsor()}
	if viewer != nil {
		resp.CanEdit = viewer.Role.IsAdmin() || job.AllowAdminBy(viewer)
	}
	return resp
}

func (s *jobService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
