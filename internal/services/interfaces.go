package services

import (
	"context"

	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
	"github.com/SAP-F-2025/course-access-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateRestrictionRequest = validator.RestrictionCreateRequest

type RestrictionResponse struct {
	*models.Restriction
	// AffectedEnrollments counts the enrollments deactivated by this
	// restriction in the same transaction.
	AffectedEnrollments int `json:"affected_enrollments"`
}

type RestrictionListResponse struct {
	Restrictions []*models.Restriction `json:"restrictions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Size         int                   `json:"size"`
}

type EnrollmentResponse struct {
	*models.Enrollment
	Reactivated bool `json:"reactivated"`
}

// AccessCheckResponse answers the IsRestricted query other subsystems use to
// gate lessons, feedback and course listings.
type AccessCheckResponse struct {
	StudentID  string `json:"student_id"`
	CourseID   uint   `json:"course_id"`
	Restricted bool   `json:"restricted"`
}

// ===== SERVICE INTERFACES =====

// RestrictionService owns the restriction lifecycle and orchestrates the
// cascade onto enrollments and chat membership. Both mutations run their
// entire effect set in one transaction; notification dispatch happens after
// commit and never fails the operation.
type RestrictionService interface {
	Create(ctx context.Context, req *CreateRestrictionRequest, teacherID string) (*RestrictionResponse, error)
	Delete(ctx context.Context, restrictionID uint, teacherID string) error
	GetByID(ctx context.Context, restrictionID uint, teacherID string) (*models.Restriction, error)
	ListByTeacher(ctx context.Context, teacherID string, filters repositories.RestrictionFilters) (*RestrictionListResponse, error)
}

// EnrollmentService is the enrollment state machine. It is the only writer of
// Enrollment.IsActive; the restriction engine drives the system-invoked
// transitions, users drive the rest.
type EnrollmentService interface {
	// EnrollOrReactivate moves (student, course) to Active, creating the row
	// on first enrollment. Fails with RestrictionBlockedError while any
	// restriction covers the pair.
	EnrollOrReactivate(ctx context.Context, studentID string, courseID uint) (*EnrollmentResponse, error)

	// Unenroll moves (student, course) to Inactive on behalf of requestedBy,
	// who must be the student or the course teacher.
	Unenroll(ctx context.Context, studentID string, courseID uint, requestedBy string) error

	// IsRestricted is the canonical access predicate exposed to the rest of
	// the platform.
	IsRestricted(ctx context.Context, studentID string, courseID uint) (bool, error)

	ListByStudent(ctx context.Context, studentID string, activeOnly bool) ([]*models.Enrollment, error)

	// System-invoked transitions, called by RestrictionService inside its
	// transaction with the transaction-bound repository. No authorization
	// checks: the engine, not a user, is the actor.

	// DeactivateForRestriction flips an active enrollment to Inactive and
	// mirrors the change into chat. Inactive rows are left untouched.
	DeactivateForRestriction(ctx context.Context, repo repositories.Repository, enrollment *models.Enrollment) error

	// ReactivateIfUnblocked re-evaluates IsRestricted for an inactive
	// enrollment and, only when it comes back false, flips it to Active and
	// mirrors the change. Returns whether a reactivation happened.
	ReactivateIfUnblocked(ctx context.Context, repo repositories.Repository, enrollment *models.Enrollment) (bool, error)
}

// ChatSyncService mirrors enrollment transitions into course-chat
// participant rows. It is never a source of truth: it only follows the
// enrollment state it is handed, inside the caller's transaction.
type ChatSyncService interface {
	Mirror(ctx context.Context, repo repositories.Repository, studentID string, courseID uint, active bool) error
}

// NotificationService announces settled state changes. Strictly best-effort:
// implementations log failures and never propagate them.
type NotificationService interface {
	NotifyRestrictionApplied(ctx context.Context, restriction *models.Restriction, courseIDs []uint)
	NotifyRestrictionLifted(ctx context.Context, teacherID, studentID string, scope models.RestrictionScope, courseIDs []uint)
	NotifyEnrollmentChanged(ctx context.Context, studentID string, courseID uint, active bool)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Restriction() RestrictionService
	Enrollment() EnrollmentService
	ChatSync() ChatSyncService
	Notification() NotificationService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
