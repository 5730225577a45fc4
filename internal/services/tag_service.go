package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/researchmatch/job-service/internal/config"
	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
	"github.com/researchmatch/job-service/internal/validator"
)

type tagService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	config config.TagConfig
}

func NewTagService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cfg config.TagConfig) TagService {
	if cfg.DedupeMode == "" {
		cfg.DedupeMode = config.DedupeNormalized
	}
	if cfg.CategoryGuard == "" {
		cfg.CategoryGuard = config.CategoryGuardConsistent
	}
	return &tagService{
		repo:   repo,
		db:     db,
		logger: logger,
		config: cfg,
	}
}

// ParseTagList splits a comma separated list into normalized tag names.
// Blank items are dropped. In normalized mode duplicates are removed after
// case folding; in raw mode only identical items collapse, so names that
// differ in case survive as repeated entries.
func ParseTagList(raw string, kind models.TagKind, mode config.TagDedupeMode) []string {
	items := strings.Split(raw, ",")
	names := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}

		name := kind.Normalize(trimmed)
		key := name
		if mode == config.DedupeRaw {
			key = trimmed
		}

		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	return names
}

func (s *tagService) HandleCourses(ctx context.Context, tx *gorm.DB, user *models.User, raw *string) error {
	if skipTagUpdate(user, raw) {
		return nil
	}
	return s.replace(ctx, tx, user, models.TagCourse, *raw)
}

// HandleCategories replaces the user's categories. The legacy guard skips when
// names are supplied and clears the categories when they are not.
func (s *tagService) HandleCategories(ctx context.Context, tx *gorm.DB, user *models.User, raw *string) error {
	if s.config.CategoryGuard == config.CategoryGuardLegacy {
		if !user.Role.CanApply() || raw != nil {
			return nil
		}
		return s.replace(ctx, tx, user, models.TagCategory, "")
	}

	if skipTagUpdate(user, raw) {
		return nil
	}
	return s.replace(ctx, tx, user, models.TagCategory, *raw)
}

func (s *tagService) HandleProglangs(ctx context.Context, tx *gorm.DB, user *models.User, raw *string) error {
	if skipTagUpdate(user, raw) {
		return nil
	}
	return s.replace(ctx, tx, user, models.TagProglang, *raw)
}

// skipTagUpdate reports whether the list leaves the tags untouched. A list
// holding only blanks and separators counts as not supplied.
func skipTagUpdate(user *models.User, raw *string) bool {
	if raw == nil || !hasTagItems(*raw) {
		return true
	}
	return !user.Role.CanApply()
}

func hasTagItems(raw string) bool {
	for _, item := range strings.Split(raw, ",") {
		if strings.TrimSpace(item) != "" {
			return true
		}
	}
	return false
}

// checkTagNames rejects names that do not fit the tag column
func checkTagNames(kind models.TagKind, names []string) error {
	var errs ValidationErrors
	for _, name := range names {
		if utf8.RuneCountInString(name) > models.MaxTagNameLength {
			errs = append(errs, validator.ValidationError{
				Field:   tagField(kind),
				Message: fmt.Sprintf("contains an item that is too long (maximum is %d characters)", models.MaxTagNameLength),
				Value:   name,
				Rule:    "max",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// tagField is the profile request field carrying the kind
func tagField(kind models.TagKind) string {
	return string(kind) + "_names"
}

// replace finds or creates every tag, then swaps the user's whole set of the kind
func (s *tagService) replace(ctx context.Context, tx *gorm.DB, user *models.User, kind models.TagKind, raw string) error {
	names := ParseTagList(raw, kind, s.config.DedupeMode)
	if err := checkTagNames(kind, names); err != nil {
		return err
	}

	s.logger.Info("Updating user tags", "user_id", user.ID, "kind", kind, "count", len(names))

	apply := func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(names))
		for _, name := range names {
			tag, err := s.repo.Tag().FindOrCreate(ctx, tx, kind, name)
			if err != nil {
				return fmt.Errorf("failed to find or create %s %q: %w", kind, name, err)
			}
			ids = append(ids, tag.ID)
		}

		if err := s.repo.Tag().ReplaceUserTags(ctx, tx, kind, user.ID, ids); err != nil {
			return fmt.Errorf("failed to replace %s tags: %w", kind, err)
		}
		return nil
	}

	if tx != nil {
		return apply(tx)
	}
	return s.db.WithContext(ctx).Transaction(apply)
}
