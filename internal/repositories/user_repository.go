package repositories

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/models"
)

// UserRepository interface for user operations
type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)         // Includes tags
	GetByLogin(ctx context.Context, tx *gorm.DB, login string) (*models.User, error) // Includes tags
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error                // Leaves tag associations alone

	// Role
	UpdateRole(ctx context.Context, tx *gorm.DB, id uint, role models.UserRole, snapshot datatypes.JSON) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	ExistsByLogin(ctx context.Context, tx *gorm.DB, login string, excludeID *uint) (bool, error)
}

// TagRepository covers the course, category and proglang tables, selected by kind
type TagRepository interface {
	FindByName(ctx context.Context, tx *gorm.DB, kind models.TagKind, name string) (*models.Tag, error)
	Create(ctx context.Context, tx *gorm.DB, kind models.TagKind, name string) (*models.Tag, error)
	// FindOrCreate tolerates a concurrent insert of the same name
	FindOrCreate(ctx context.Context, tx *gorm.DB, kind models.TagKind, name string) (*models.Tag, error)

	// ReplaceUserTags clears the user's tags of the kind, then links tagIDs
	ReplaceUserTags(ctx context.Context, tx *gorm.DB, kind models.TagKind, userID uint, tagIDs []uint) error
	GetUserTags(ctx context.Context, tx *gorm.DB, kind models.TagKind, userID uint) ([]*models.Tag, error)
}

// DirectoryRepository looks people up in the campus directory.
// A missing entry is (nil, nil); errors mean the lookup itself failed.
type DirectoryRepository interface {
	FindByLogin(ctx context.Context, login string) (*models.DirectoryPerson, error)
}

type directoryRefreshKey struct{}

// WithDirectoryRefresh marks lookups made with ctx as needing a fresh answer.
// Caches skip their read but still store what the directory returns.
func WithDirectoryRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, directoryRefreshKey{}, true)
}

func DirectoryRefreshRequested(ctx context.Context) bool {
	refresh, _ := ctx.Value(directoryRefreshKey{}).(bool)
	return refresh
}
