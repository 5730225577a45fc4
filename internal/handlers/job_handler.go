package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/researchmatch/job-service/internal/repositories"
	"github.com/researchmatch/job-service/internal/services"
	"github.com/researchmatch/job-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type JobHandler struct {
	BaseHandler
	jobService    services.JobService
	exportService services.ExportService
}

func NewJobHandler(jobService services.JobService, exportService services.ExportService, logger utils.Logger) *JobHandler {
	return &JobHandler{
		BaseHandler:   NewBaseHandler(logger),
		jobService:    jobService,
		exportService: exportService,
	}
}

// ListJobs lists jobs with optional filtering
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Title search"
// @Param active query bool false "Only active or inactive jobs"
// @Param department_id query int false "Department filter"
// @Param sort_by query string false "created_at, title, end_date"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} services.JobListResponse
// @Router /jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	filters, err := parseJobFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	viewerID, _ := GetUserIDFromContext(c)

	jobs, err := h.jobService.List(c.Request.Context(), filters, viewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// CreateJob posts a new job
// @Summary Create job
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body services.CreateJobRequest true "Job data"
// @Success 201 {object} services.JobResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req services.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.currentUserID(c)
	if userID == 0 {
		return
	}

	h.LogRequest(c, "Creating job", "user_id", userID)

	job, err := h.jobService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// GetJob retrieves a job by ID
// @Summary Get job
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} services.JobResponse
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	viewerID, _ := GetUserIDFromContext(c)

	job, err := h.jobService.GetByID(c.Request.Context(), id, viewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// UpdateJob edits a job. Only the poster, a sponsor or an admin may do this.
// @Summary Update job
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path int true "Job ID"
// @Param job body services.UpdateJobRequest true "Job changes"
// @Success 200 {object} services.JobResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{id} [put]
func (h *JobHandler) UpdateJob(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.currentUserID(c)
	if userID == 0 {
		return
	}

	h.LogRequest(c, "Updating job", "job_id", id, "user_id", userID)

	job, err := h.jobService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// SponsorJob replaces the job's sponsoring faculty
// @Summary Set job sponsor
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path int true "Job ID"
// @Param sponsor body services.SponsorRequest true "Faculty"
// @Success 200 {object} services.JobResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{id}/sponsor [put]
func (h *JobHandler) SponsorJob(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.currentUserID(c)
	if userID == 0 {
		return
	}

	h.LogRequest(c, "Setting job sponsor", "job_id", id, "faculty_id", req.FacultyID)

	job, err := h.jobService.SetSponsor(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ExportJobs downloads every active job as a spreadsheet. Admin only.
// @Summary Export active jobs
// @Tags jobs
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /jobs/export [get]
func (h *JobHandler) ExportJobs(c *gin.Context) {
	h.LogRequest(c, "Exporting active jobs")

	var buf bytes.Buffer
	if err := h.exportService.ExportActiveJobs(c.Request.Context(), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("jobs-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func parseJobFilters(c *gin.Context) (repositories.JobFilters, error) {
	filters := repositories.JobFilters{
		Query:     c.Query("q"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		return filters, err
	}
	size, err := queryInt(c, "size", 20)
	if err != nil {
		return filters, err
	}
	if page < 1 {
		page = 1
	}
	filters.Limit = size
	filters.Offset = (page - 1) * size

	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, fmt.Errorf("active: %w", err)
		}
		filters.Active = &active
	}

	if raw := c.Query("department_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filters, fmt.Errorf("department_id: %w", err)
		}
		departmentID := uint(id)
		filters.DepartmentID = &departmentID
	}

	return filters, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
