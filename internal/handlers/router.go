package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/services"
	"github.com/researchmatch/job-service/internal/utils"
)

const serviceName = "job-service"

type HandlerManager struct {
	serviceManager services.ServiceManager
	userHandler    *UserHandler
	jobHandler     *JobHandler
	catalogHandler *CatalogHandler
	authMiddleware *CasdoorAuthMiddleware
	logger         utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	authMiddleware *CasdoorAuthMiddleware,
) *HandlerManager {
	return &HandlerManager{
		serviceManager: serviceManager,
		userHandler:    NewUserHandler(serviceManager.User(), logger),
		jobHandler:     NewJobHandler(serviceManager.Job(), serviceManager.Export(), logger),
		catalogHandler: NewCatalogHandler(serviceManager.Job(), logger),
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.health)

	requireAdmin := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		users := v1.Group("/users")
		{
			users.GET("", requireAdmin, hm.userHandler.ListUsers)
			users.POST("", requireAdmin, hm.userHandler.CreateUser)
			users.GET("/me", hm.userHandler.GetMe)
			users.PUT("/me", hm.userHandler.UpdateMe)
			users.POST("/me/role", hm.userHandler.RecomputeMyRole)
			users.GET("/:id", hm.userHandler.GetUser)
			users.POST("/:id/role", requireAdmin, hm.userHandler.RecomputeUserRole)
		}

		// Posting and editing rights are checked per job by the service
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", hm.jobHandler.ListJobs)
			jobs.POST("", hm.jobHandler.CreateJob)
			jobs.GET("/export", requireAdmin, hm.jobHandler.ExportJobs)
			jobs.GET("/:id", hm.jobHandler.GetJob)
			jobs.PUT("/:id", hm.jobHandler.UpdateJob)
			jobs.PUT("/:id/sponsor", hm.jobHandler.SponsorJob)
		}

		v1.GET("/departments", hm.catalogHandler.ListDepartments)
		v1.GET("/departments/:id", hm.catalogHandler.GetDepartment)
		v1.GET("/faculties", hm.catalogHandler.ListFaculties)
		v1.GET("/faculties/:id", hm.catalogHandler.GetFaculty)
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.FromContext(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
