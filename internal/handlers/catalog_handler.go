package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/researchmatch/job-service/internal/services"
	"github.com/researchmatch/job-service/internal/utils"
)

// CatalogHandler serves the department and faculty pick lists
type CatalogHandler struct {
	BaseHandler
	jobService services.JobService
}

func NewCatalogHandler(jobService services.JobService, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(logger),
		jobService:  jobService,
	}
}

// ListDepartments
// @Summary List departments
// @Tags catalog
// @Produce json
// @Router /departments [get]
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	departments, err := h.jobService.ListDepartments(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

// GetDepartment
// @Summary Get department
// @Tags catalog
// @Produce json
// @Param id path int true "Department ID"
// @Failure 404 {object} ErrorResponse
// @Router /departments/{id} [get]
func (h *CatalogHandler) GetDepartment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	department, err := h.jobService.GetDepartment(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, department)
}

// ListFaculties
// @Summary List faculty
// @Tags catalog
// @Produce json
// @Router /faculties [get]
func (h *CatalogHandler) ListFaculties(c *gin.Context) {
	faculties, err := h.jobService.ListFaculties(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"faculties": faculties})
}

// GetFaculty
// @Summary Get faculty
// @Tags catalog
// @Produce json
// @Param id path int true "Faculty ID"
// @Failure 404 {object} ErrorResponse
// @Router /faculties/{id} [get]
func (h *CatalogHandler) GetFaculty(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	faculty, err := h.jobService.GetFaculty(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, faculty)
}
