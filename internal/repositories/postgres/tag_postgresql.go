package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
)

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) repositories.TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindByName(ctx context.Context, tx *gorm.DB, kind models.TagKind, name string) (*models.Tag, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	db := getDB(r.db, tx)
	var tag models.Tag

	if err := db.WithContext(ctx).
		Table(kind.Table()).
		Select("id, name").
		Where("name = ?", name).
		Take(&tag).Error; err != nil {
		return nil, handleDBError(err, fmt.Sprintf("find %s by name", kind))
	}

	tag.Kind = kind
	return &tag, nil
}

// Create inserts a tag row. A row already holding the name is left alone
// and returned, so concurrent creators converge on the same id.
func (r *tagRepository) Create(ctx context.Context, tx *gorm.DB, kind models.TagKind, name string) (*models.Tag, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	db := getDB(r.db, tx)
	now := time.Now()

	if err := db.WithContext(ctx).
		Table(kind.Table()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(map[string]interface{}{
			"name":       name,
			"created_at": now,
			"updated_at": now,
		}).Error; err != nil {
		return nil, handleDBError(err, fmt.Sprintf("create %s", kind))
	}

	return r.FindByName(ctx, tx, kind, name)
}

func (r *tagRepository) FindOrCreate(ctx context.Context, tx *gorm.DB, kind models.TagKind, name string) (*models.Tag, error) {
	tag, err := r.FindByName(ctx, tx, kind, name)
	if err == nil {
		return tag, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}
	return r.Create(ctx, tx, kind, name)
}

func (r *tagRepository) ReplaceUserTags(ctx context.Context, tx *gorm.DB, kind models.TagKind, userID uint, tagIDs []uint) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	db := getDB(r.db, tx).WithContext(ctx)
	join := kind.JoinTable()

	if err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE user_id = ?", join), userID).Error; err != nil {
		return handleDBError(err, fmt.Sprintf("clear user %s tags", kind))
	}

	ids := uniqueIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}

	rows := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		rows[i] = map[string]interface{}{
			"user_id":         userID,
			kind.ForeignKey(): id,
		}
	}

	if err := db.Table(join).Create(rows).Error; err != nil {
		return handleDBError(err, fmt.Sprintf("link user %s tags", kind))
	}

	return nil
}

func (r *tagRepository) GetUserTags(ctx context.Context, tx *gorm.DB, kind models.TagKind, userID uint) ([]*models.Tag, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	db := getDB(r.db, tx)
	var tags []*models.Tag

	table := kind.Table()
	join := kind.JoinTable()

	if err := db.WithContext(ctx).
		Table(table).
		Select(fmt.Sprintf("%s.id, %s.name", table, table)).
		Joins(fmt.Sprintf("INNER JOIN %s ON %s.%s = %s.id", join, join, kind.ForeignKey(), table)).
		Where(fmt.Sprintf("%s.user_id = ?", join), userID).
		Order(fmt.Sprintf("%s.name ASC", table)).
		Find(&tags).Error; err != nil {
		return nil, handleDBError(err, fmt.Sprintf("get user %s tags", kind))
	}

	for _, tag := range tags {
		tag.Kind = kind
	}
	return tags, nil
}

// checkKind guards the table names interpolated into raw SQL
func checkKind(kind models.TagKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("unknown tag kind %q", kind)
	}
	return nil
}
