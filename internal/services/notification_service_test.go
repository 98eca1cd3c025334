package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/SAP-F-2025/course-access-service/internal/events"
	"github.com/SAP-F-2025/course-access-service/internal/models"
)

func TestNotificationService_PublishEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	service := NewNotificationService(mockPublisher, logger)
	ctx := context.Background()

	courseID := uint(10)
	restriction := &models.Restriction{
		ID:        1,
		TeacherID: "teacher-1",
		StudentID: "student-1",
		CourseID:  &courseID,
		Reason:    "test reason",
	}

	t.Run("RestrictionApplied", func(t *testing.T) {
		mockPublisher.ClearEvents()

		service.NotifyRestrictionApplied(ctx, restriction, []uint{10})

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]
		if event.Type != events.EventRestrictionApplied {
			t.Errorf("Expected event type %s, got %s", events.EventRestrictionApplied, event.Type)
		}
		if event.ID == "" {
			t.Error("Event ID should not be empty")
		}
		if event.Source != "course-access-service" {
			t.Errorf("Expected source 'course-access-service', got '%s'", event.Source)
		}
		if event.Version != "1.0" {
			t.Errorf("Expected version '1.0', got '%s'", event.Version)
		}
		if event.Timestamp.IsZero() {
			t.Error("Event timestamp should not be zero")
		}

		payload, ok := event.Data.(*events.AccessNotificationEvent)
		if !ok {
			t.Fatalf("Expected AccessNotificationEvent payload, got %T", event.Data)
		}
		if payload.UserID != "student-1" {
			t.Errorf("Notification should target the student, got %s", payload.UserID)
		}
		if payload.Scope != models.ScopeCourse {
			t.Errorf("Expected scope %s, got %s", models.ScopeCourse, payload.Scope)
		}
		if payload.Reason != "test reason" {
			t.Errorf("Payload should carry the restriction reason, got %q", payload.Reason)
		}
	})

	t.Run("RestrictionLifted", func(t *testing.T) {
		mockPublisher.ClearEvents()

		service.NotifyRestrictionLifted(ctx, "teacher-1", "student-1", models.ScopeAllCourses, []uint{10, 11})

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.EventRestrictionLifted {
			t.Errorf("Expected event type %s, got %s", events.EventRestrictionLifted, published[0].Type)
		}

		payload := published[0].Data.(*events.AccessNotificationEvent)
		if len(payload.CourseIDs) != 2 {
			t.Errorf("Expected 2 course ids, got %v", payload.CourseIDs)
		}
	})

	t.Run("EnrollmentChanged", func(t *testing.T) {
		mockPublisher.ClearEvents()

		service.NotifyEnrollmentChanged(ctx, "student-1", 10, true)
		service.NotifyEnrollmentChanged(ctx, "student-1", 10, false)

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(published))
		}
		if published[0].Type != events.EventEnrollmentActivated {
			t.Errorf("Expected %s, got %s", events.EventEnrollmentActivated, published[0].Type)
		}
		if published[1].Type != events.EventEnrollmentDeactivated {
			t.Errorf("Expected %s, got %s", events.EventEnrollmentDeactivated, published[1].Type)
		}
	})

	t.Run("PublishFailureIsSwallowed", func(t *testing.T) {
		mockPublisher.ClearEvents()
		mockPublisher.FailNext = true

		// Must not panic or propagate
		service.NotifyEnrollmentChanged(ctx, "student-1", 10, true)

		if len(mockPublisher.GetPublishedEvents()) != 0 {
			t.Error("Failed publish should not be recorded")
		}
	})
}
