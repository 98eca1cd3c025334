package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/course-access-service/internal/events"
	"github.com/SAP-F-2025/course-access-service/internal/models"
)

// notificationService renders settled state changes into notification events
// and hands them to the messaging layer. Publish failures are logged and
// swallowed: the state transition already committed and must not be undone or
// retried by the caller.
type notificationService struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewNotificationService(publisher events.EventPublisher, logger *slog.Logger) NotificationService {
	return &notificationService{
		publisher: publisher,
		logger:    logger,
	}
}

func (s *notificationService) NotifyRestrictionApplied(ctx context.Context, restriction *models.Restriction, courseIDs []uint) {
	payload := &events.AccessNotificationEvent{
		UserID:    restriction.StudentID,
		Title:     "Course access restricted",
		Scope:     restriction.Scope(),
		TeacherID: restriction.TeacherID,
		CourseIDs: courseIDs,
		Reason:    restriction.Reason,
	}

	if restriction.CourseID != nil {
		payload.Message = fmt.Sprintf("Your access to a course has been restricted by the teacher. Reason: %s", restriction.Reason)
		payload.ActionURL = fmt.Sprintf("/courses/%d", *restriction.CourseID)
	} else {
		payload.Message = fmt.Sprintf("Your access to all of this teacher's courses has been restricted. Reason: %s", restriction.Reason)
		payload.ActionURL = "/courses"
	}

	s.publish(ctx, events.EventRestrictionApplied, payload)
}

func (s *notificationService) NotifyRestrictionLifted(ctx context.Context, teacherID, studentID string, scope models.RestrictionScope, courseIDs []uint) {
	payload := &events.AccessNotificationEvent{
		UserID:    studentID,
		Title:     "Course access restored",
		Scope:     scope,
		TeacherID: teacherID,
		CourseIDs: courseIDs,
		ActionURL: "/courses",
	}

	if scope == models.ScopeAllCourses {
		payload.Message = "A restriction on all of this teacher's courses has been lifted. Your eligible enrollments are active again."
	} else {
		payload.Message = "A course access restriction has been lifted. Your enrollment is active again if nothing else blocks it."
	}
	if len(courseIDs) == 1 {
		payload.ActionURL = fmt.Sprintf("/courses/%d", courseIDs[0])
	}

	s.publish(ctx, events.EventRestrictionLifted, payload)
}

func (s *notificationService) NotifyEnrollmentChanged(ctx context.Context, studentID string, courseID uint, active bool) {
	payload := &events.AccessNotificationEvent{
		UserID:    studentID,
		CourseIDs: []uint{courseID},
		ActionURL: fmt.Sprintf("/courses/%d", courseID),
	}

	eventType := events.EventEnrollmentDeactivated
	if active {
		eventType = events.EventEnrollmentActivated
		payload.Title = "Enrollment confirmed"
		payload.Message = "You are enrolled in the course."
	} else {
		payload.Title = "Enrollment ended"
		payload.Message = "You are no longer enrolled in the course."
	}

	s.publish(ctx, eventType, payload)
}

func (s *notificationService) publish(ctx context.Context, eventType string, payload *events.AccessNotificationEvent) {
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, payload)); err != nil {
		s.logger.Warn("Failed to publish notification event",
			"event_type", eventType,
			"user_id", payload.UserID,
			"error", err)
	}
}
