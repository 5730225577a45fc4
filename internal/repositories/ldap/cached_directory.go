package ldap

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/researchmatch/job-service/internal/cache"
	"github.com/researchmatch/job-service/internal/models"
	"github.com/researchmatch/job-service/internal/repositories"
)

// absentMarker is cached for logins the directory does not know
const absentMarker = "absent"

// CachedDirectory is a read-through redis cache in front of a DirectoryRepository.
// Lookup failures are never cached. A context from repositories.WithDirectoryRefresh
// goes to the directory and overwrites the entry.
type CachedDirectory struct {
	inner  repositories.DirectoryRepository
	helper *cache.CacheHelper
}

func NewCachedDirectory(inner repositories.DirectoryRepository, helper *cache.CacheHelper) repositories.DirectoryRepository {
	if !helper.Enabled() {
		return inner
	}
	return &CachedDirectory{inner: inner, helper: helper}
}

func (c *CachedDirectory) FindByLogin(ctx context.Context, login string) (*models.DirectoryPerson, error) {
	key := cache.DirectoryKey(login)

	if !repositories.DirectoryRefreshRequested(ctx) {
		if person, hit := c.fromCache(ctx, key); hit {
			return person, nil
		}
	}

	person, err := c.inner.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, person)
	return person, nil
}

func (c *CachedDirectory) fromCache(ctx context.Context, key string) (*models.DirectoryPerson, bool) {
	raw, err := c.helper.GetString(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheNotFound) {
			slog.WarnContext(ctx, "Directory cache read failed", "error", err)
		}
		return nil, false
	}

	if raw == absentMarker {
		return nil, true
	}

	var person models.DirectoryPerson
	if err := json.Unmarshal([]byte(raw), &person); err != nil {
		slog.WarnContext(ctx, "Discarding unreadable directory cache entry", "error", err)
		cache.SafeDelete(ctx, c.helper, key)
		return nil, false
	}

	return &person, true
}

func (c *CachedDirectory) store(ctx context.Context, key string, person *models.DirectoryPerson) {
	var err error
	if person == nil {
		err = c.helper.SetString(ctx, key, absentMarker, cache.DirectoryMissCacheConfig.TTL)
	} else {
		err = c.helper.Set(ctx, key, person, cache.DirectoryCacheConfig.TTL)
	}

	if err != nil {
		slog.ErrorContext(ctx, "Directory cache write failed", "error", err)
	}
}
