package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeDelete deletes cache keys, logging instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// JobKey is the cache key of a single job
func JobKey(jobID uint) string {
	return fmt.Sprintf("id:%d", jobID)
}

// DirectoryKey is the cache key of a directory lookup
func DirectoryKey(login string) string {
	return fmt.Sprintf("login:%s", login)
}

// DepartmentListKey caches the full department list
const DepartmentListKey = "list"

// InvalidateJobCache drops the cached job after it or its sponsorships change
func InvalidateJobCache(ctx context.Context, cm *CacheManager, jobID uint) {
	SafeDelete(ctx, cm.Job, JobKey(jobID))
}

// InvalidateDepartmentCache drops the cached department list
func InvalidateDepartmentCache(ctx context.Context, cm *CacheManager) {
	SafeDelete(ctx, cm.Department, DepartmentListKey)
}
