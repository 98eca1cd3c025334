package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateAccessCache drops cached access checks for a student. Called on
// every restriction mutation so the IsRestricted query never serves a stale
// verdict longer than one invalidation round-trip.
func InvalidateAccessCache(ctx context.Context, cm *CacheManager, studentID string) {
	SafeInvalidatePattern(ctx, cm.Access, fmt.Sprintf("student:%s:*", studentID))
}
