package events

import "github.com/SAP-F-2025/course-access-service/internal/models"

// Event types emitted by the access engine.
const (
	EventRestrictionApplied    = "access.restriction_applied"
	EventRestrictionLifted     = "access.restriction_lifted"
	EventEnrollmentActivated   = "access.enrollment_activated"
	EventEnrollmentDeactivated = "access.enrollment_deactivated"
)

// AccessNotificationEvent is the fire-and-forget notification payload handed
// to the messaging layer. The notification service renders it into whatever
// channel the platform uses (in-app, socket announcement, email digest).
type AccessNotificationEvent struct {
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	ActionURL string `json:"action_url,omitempty"`

	// Restriction context, present on restriction events
	Scope     models.RestrictionScope `json:"scope,omitempty"`
	TeacherID string                  `json:"teacher_id,omitempty"`
	CourseIDs []uint                  `json:"course_ids,omitempty"`
	Reason    string                  `json:"reason,omitempty"`
}
