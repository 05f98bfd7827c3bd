package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/valcoin/internal/usecase"
	"github.com/iho/valcoin/internal/usecase/mocks"
)

func TestCacheInvalidator_InvalidateForTransaction(t *testing.T) {
	cache := mocks.NewMockCache()
	invalidator := usecase.NewCacheInvalidator(cache, nil, zerolog.Nop())

	ctx := context.Background()

	keys := []string{
		usecase.CacheKeyUsers,
		usecase.CacheKeyAdminDashboard,
		usecase.CacheKeyTeacherDashboardPrefix + "u-1",
		usecase.CacheKeyStudentDashboardPrefix + "u-1",
		usecase.CacheKeyTeacherDashboardPrefix + "u-2",
		usecase.CacheKeyStudentDashboardPrefix + "u-2",
	}
	for _, key := range keys {
		cache.Set(ctx, key, []byte("cached"), time.Minute)
	}

	// A bystander's dashboard survives.
	cache.Set(ctx, usecase.CacheKeyStudentDashboardPrefix+"u-3", []byte("cached"), time.Minute)

	invalidator.InvalidateForTransaction(ctx, "u-1", "u-2")

	for _, key := range keys {
		if cache.Has(key) {
			t.Errorf("expected %q to be dropped", key)
		}
	}

	if !cache.Has(usecase.CacheKeyStudentDashboardPrefix + "u-3") {
		t.Error("unrelated dashboard was dropped")
	}
}

func TestCacheInvalidator_EmptyIDsSkipped(t *testing.T) {
	cache := mocks.NewMockCache()
	invalidator := usecase.NewCacheInvalidator(cache, nil, zerolog.Nop())

	var deleted []string
	cache.DeleteFunc = func(ctx context.Context, key string) error {
		deleted = append(deleted, key)
		return nil
	}

	invalidator.InvalidateForTransaction(context.Background(), "u-1", "")

	// Global keys plus both of u-1's dashboards, nothing for the empty id.
	if len(deleted) != 4 {
		t.Errorf("expected 4 deletions, got %d: %v", len(deleted), deleted)
	}
}

func TestCacheInvalidator_SwallowsErrors(t *testing.T) {
	cache := mocks.NewMockCache()
	cache.DeleteFunc = func(ctx context.Context, key string) error {
		return errors.New("redis down")
	}

	invalidator := usecase.NewCacheInvalidator(cache, nil, zerolog.Nop())

	// Must not panic or propagate anything.
	invalidator.InvalidateForTransaction(context.Background(), "u-1", "u-2")
	invalidator.InvalidateRules(context.Background())
}

func TestCacheInvalidator_InvalidateRules(t *testing.T) {
	cache := mocks.NewMockCache()
	invalidator := usecase.NewCacheInvalidator(cache, nil, zerolog.Nop())

	ctx := context.Background()
	for _, key := range []string{usecase.CacheKeyRules, usecase.CacheKeyUsers, usecase.CacheKeyAdminDashboard} {
		cache.Set(ctx, key, []byte("cached"), time.Minute)
	}

	invalidator.InvalidateRules(ctx)

	for _, key := range []string{usecase.CacheKeyRules, usecase.CacheKeyUsers, usecase.CacheKeyAdminDashboard} {
		if cache.Has(key) {
			t.Errorf("expected %q to be dropped", key)
		}
	}
}
