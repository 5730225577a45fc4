package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
	"github.com/researchmatch/job-service/internal/services"
	"github.com/researchmatch/job-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// GetMe returns the signed-in user's profile
// @Summary Get my profile
// @Tags users
// @Produce json
// @Success 200 {object} services.UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := h.currentUserID(c)
	if userID == 0 {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMe saves profile fields and comma separated tag lists
// @Summary Update my profile
// @Tags users
// @Accept json
// @Produce json
// @Param profile body services.ProfileUpdateRequest true "Profile data"
// @Success 200 {object} services.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req services.ProfileUpdateRequest
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

	h.LogRequest(c, "Updating profile", "user_id", userID)

	profile, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RecomputeMyRole reclassifies the signed-in user from the directory
// @Summary Recompute my role
// @Tags users
// @Produce json
// @Success 200 {object} services.UserResponse
// @Failure 502 {object} ErrorResponse "Directory unavailable"
// @Router /users/me/role [post]
func (h *UserHandler) RecomputeMyRole(c *gin.Context) {
	userID := h.currentUserID(c)
	if userID == 0 {
		return
	}

	h.recomputeRole(c, userID)
}

// GetUser returns another user's profile
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} services.UserResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RecomputeUserRole reclassifies any user. Admin only.
// @Summary Recompute user role
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} services.UserResponse
// @Failure 403 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "Directory unavailable"
// @Router /users/{id}/role [post]
func (h *UserHandler) RecomputeUserRole(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.recomputeRole(c, id)
}

// ListUsers searches accounts. Admin only.
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Name, login or email search"
// @Param role query string false "undergrad, grad, faculty, staff, affiliate or admin"
// @Success 200 {object} services.UserListResponse
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	filters, err := parseUserFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// CreateUser provisions an account before its first sign in. Admin only.
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.CreateUserRequest true "Account"
// @Success 201 {object} services.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "Directory unavailable"
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating user", "login", req.Login)

	user, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) recomputeRole(c *gin.Context, userID uint) {
	h.LogRequest(c, "Recomputing user role", "user_id", userID)

	profile, err := h.userService.RecomputeRole(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func parseUserFilters(c *gin.Context) (repositories.UserFilters, error) {
	filters := repositories.UserFilters{Query: c.Query("q")}

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

	if raw := c.Query("role"); raw != "" {
		role, ok := models.ParseUserRole(raw)
		if !ok {
			return filters, fmt.Errorf("role: unknown role %q", raw)
		}
		filters.Role = &role
	}

	return filters, nil
}
