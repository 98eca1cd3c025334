package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/SAP-F-2025/course-access-service/internal/cache"
	"github.com/SAP-F-2025/course-access-service/internal/events"
	"github.com/SAP-F-2025/course-access-service/internal/validator"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(logger)

	sm := NewDefaultServiceManager(repo, cache.NewCacheManager(nil), publisher, logger, validator.New())
	ctx := context.Background()

	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck should fail before initialization")
	}

	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// Idempotent
	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Repeated Initialize should be a no-op: %v", err)
	}

	if sm.Restriction() == nil || sm.Enrollment() == nil || sm.ChatSync() == nil || sm.Notification() == nil {
		t.Error("All services should be available after initialization")
	}

	if err := sm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}

	if err := sm.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck should fail after shutdown")
	}
}
