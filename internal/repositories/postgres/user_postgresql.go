package postgres

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repositories.UserRepository {
	return &userRepository{db: db}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	db := getDB(r.db, tx)
	var user models.User

	if err := r.withTags(db.WithContext(ctx)).First(&user, id).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}

	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, tx *gorm.DB, login string) (*models.User, error) {
	db := getDB(r.db, tx)
	var user models.User

	if err := r.withTags(db.WithContext(ctx)).
		Where("login = ?", login).
		First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by login")
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		return handleDBError(err, "update user")
	}
	return nil
}

// ===== ROLE =====

func (r *userRepository) UpdateRole(ctx context.Context, tx *gorm.DB, id uint, role models.UserRole, snapshot datatypes.JSON) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"user_type":          role,
			"directory_snapshot": snapshot,
		})
	if result.Error != nil {
		return handleDBError(result.Error, "update user role")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update user role")
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *userRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := getDB(r.db, tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})

	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(login) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}
	if filters.Role != nil {
		query = query.Where("user_type = ?", *filters.Role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	query = applyPagination(query.Order("name ASC"), filters.Limit, filters.Offset)

	if err := r.withTags(query).Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}

	return users, total, nil
}

func (r *userRepository) ExistsByLogin(ctx context.Context, tx *gorm.DB, login string, excludeID *uint) (bool, error) {
	db := getDB(r.db, tx)
	var count int64

	query := db.WithContext(ctx).Model(&models.User{}).Where("login = ?", login)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, handleDBError(err, "check login exists")
	}

	return count > 0, nil
}

// ===== HELPER METHODS =====

func (r *userRepository) withTags(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Courses", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Proglangs", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") })
}
