package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a cache pattern, logging instead of
// propagating failures. Stale cache entries expire on their own.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys, logging instead of propagating failures.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateAssessmentCache drops every cache entry tied to one
// assessment: the record itself and its question set.
func InvalidateAssessmentCache(ctx context.Context, cm *CacheManager, assessmentID uint) {
	SafeDelete(ctx, cm.Assessment, fmt.Sprintf("id:%d", assessmentID))
	SafeInvalidatePattern(ctx, cm.Question, fmt.Sprintf("assessment:%d*", assessmentID))
}

// InvalidateEnrollmentCache drops the cached enrollment check for one
// student and class pair.
func InvalidateEnrollmentCache(ctx context.Context, cm *CacheManager, studentID, classID uint) {
	SafeDelete(ctx, cm.Exists, fmt.Sprintf("enrollment:%d:%d", studentID, classID))
}
