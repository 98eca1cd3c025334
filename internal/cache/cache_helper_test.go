package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, prefix), mr
}

func TestCacheHelper_SetGetDelete(t *testing.T) {
	helper, _ := newTestCache(t, "access:")
	ctx := context.Background()

	type accessCheck struct {
		Restricted bool `json:"restricted"`
	}

	if err := helper.Set(ctx, "student:s1:course:10", accessCheck{Restricted: true}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got accessCheck
	if err := helper.Get(ctx, "student:s1:course:10", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Restricted {
		t.Error("Cached value should round-trip")
	}

	if err := helper.Delete(ctx, "student:s1:course:10"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := helper.Get(ctx, "student:s1:course:10", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Expected ErrCacheNotFound after delete, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestCache(t, "access:")
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return true, nil
	}

	var restricted bool
	if err := helper.CacheOrExecute(ctx, "student:s1:course:10", &restricted, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if !restricted || calls != 1 {
		t.Errorf("Expected fetch on cache miss, got restricted=%v calls=%d", restricted, calls)
	}

	restricted = false
	if err := helper.CacheOrExecute(ctx, "student:s1:course:10", &restricted, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if !restricted || calls != 1 {
		t.Errorf("Expected cache hit without a second fetch, got restricted=%v calls=%d", restricted, calls)
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "access:")
	ctx := context.Background()

	if err := helper.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}

	var out string
	if err := helper.Get(ctx, "key", &out); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Expected ErrCacheNotAvailable, got %v", err)
	}

	// CacheOrExecute must fall through to the fetch function
	calls := 0
	var restricted bool
	err := helper.CacheOrExecute(ctx, "key", &restricted, time.Minute, func() (interface{}, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if calls != 1 || !restricted {
		t.Errorf("Fetch should run on every call without a cache, got calls=%d restricted=%v", calls, restricted)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestCache(t, AccessCacheConfig.Prefix)
	ctx := context.Background()

	for course := 1; course <= 5; course++ {
		key := fmt.Sprintf("student:s1:course:%d", course)
		if err := helper.Set(ctx, key, true, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := helper.Set(ctx, "student:s2:course:1", true, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := helper.InvalidatePattern(ctx, "student:s1:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	var out bool
	if err := helper.Get(ctx, "student:s1:course:3", &out); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Expected s1 keys invalidated, got %v", err)
	}
	if err := helper.Get(ctx, "student:s2:course:1", &out); err != nil {
		t.Errorf("Other students' keys must survive, got %v", err)
	}
}

func TestCacheManager_HealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cm := NewCacheManager(client)
	if err := cm.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck should pass against a live server, got %v", err)
	}

	if err := NewCacheManager(nil).HealthCheck(context.Background()); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Expected ErrCacheNotAvailable without a client, got %v", err)
	}
}
