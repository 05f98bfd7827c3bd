package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/valcoin/internal/infrastructure/metrics"
)

// CacheInvalidator eagerly drops cached views after a committed ledger
// mutation. Invalidation is best effort: a failure degrades read
// freshness only, so errors are logged and swallowed, never returned.
type CacheInvalidator struct {
	cache   Cache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCacheInvalidator creates a new CacheInvalidator.
func NewCacheInvalidator(cache Cache, m *metrics.Metrics, logger zerolog.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, metrics: m, logger: logger}
}

// InvalidateForTransaction drops the global listing and summary views
// plus the per-user dashboards of both parties. Either id may be empty.
func (i *CacheInvalidator) InvalidateForTransaction(ctx context.Context, originID, destinationID string) {
	keys := []string{CacheKeyUsers, CacheKeyAdminDashboard}

	for _, id := range []string{originID, destinationID} {
		if id == "" {
			continue
		}

		keys = append(keys,
			CacheKeyTeacherDashboardPrefix+id,
			CacheKeyStudentDashboardPrefix+id,
		)
	}

	i.deleteAll(ctx, keys)
}

// InvalidateRules drops the cached rule listing together with the
// aggregate views that embed rule-derived data.
func (i *CacheInvalidator) InvalidateRules(ctx context.Context) {
	i.deleteAll(ctx, []string{CacheKeyRules, CacheKeyUsers, CacheKeyAdminDashboard})
}

func (i *CacheInvalidator) deleteAll(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := i.cache.Delete(ctx, key); err != nil {
			i.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")

			continue
		}

		if i.metrics != nil {
			i.metrics.CacheInvalidated.Inc()
		}
	}
}
