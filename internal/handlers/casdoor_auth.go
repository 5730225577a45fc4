package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/researchmatch/job-service/internal/config"
	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/services"
	"github.com/researchmatch/job-service/internal/utils"
)

// TokenParser verifies a bearer token. *casdoorsdk.Client implements it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthMiddleware authenticates requests with Casdoor JWTs and maps the
// token's user name onto a local account
type CasdoorAuthMiddleware struct {
	parser TokenParser
	users  services.UserService
	logger utils.Logger
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, users services.UserService, logger utils.Logger) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return NewAuthMiddlewareWithParser(client, users, logger)
}

func NewAuthMiddlewareWithParser(parser TokenParser, users services.UserService, logger utils.Logger) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		parser: parser,
		users:  users,
		logger: logger,
	}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication.
// Unknown logins are provisioned on their first request.
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "unauthorized",
				Details: err.Error(),
			})
			return
		}

		claims, err := cam.parser.ParseJwtToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "unauthorized",
				Details: fmt.Sprintf("invalid token: %v", err),
			})
			return
		}

		user, err := cam.users.SyncAccount(c.Request.Context(), services.AccountClaims{
			Login: claims.User.Name,
			Name:  claims.User.DisplayName,
			Email: claims.User.Email,
		})
		if err != nil {
			cam.abortSyncError(c, err)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

func (cam *CasdoorAuthMiddleware) abortSyncError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	switch {
	case errors.Is(err, services.ErrDirectoryUnavailable):
		utils.FromContext(c, cam.logger).Error("Account sync failed", "error", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, ErrorResponse{Message: "directory unavailable"})
	case errors.As(err, &validationErrors):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Message: "unauthorized",
			Details: validationErrors,
		})
	default:
		utils.FromContext(c, cam.logger).Error("Account sync failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}

// RequireRoleMiddleware checks if user has required role. Admins always pass.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "forbidden",
				Details: err.Error(),
			})
			return
		}

		if role.IsAdmin() {
			c.Next()
			return
		}
		for _, required := range requiredRoles {
			if role == required {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "forbidden",
			Details: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
		})
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

func setUser(c *gin.Context, user *models.User) {
	c.Set("user_id", user.ID)
	c.Set("user", user)
	c.Set("user_role", user.Role)
	c.Set("user_email", user.Email)
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, errors.New("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, errors.New("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (uint, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, errors.New("user ID not found in context")
	}

	id, ok := userID.(uint)
	if !ok || id == 0 {
		return 0, errors.New("invalid user ID type in context")
	}

	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return 0, errors.New("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return 0, errors.New("invalid user role type in context")
	}

	return role, nil
}
