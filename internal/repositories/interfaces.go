package repositories

import (
	"context"

	"github.com/SAP-F-2025/course-access-service/internal/models"
)

// RestrictionOverlap is the result of FindOverlapping: the global restriction
// for a (teacher, student) pair, if any, plus all course-scoped ones.
type RestrictionOverlap struct {
	Global *models.Restriction
	Scoped []*models.Restriction
}

// RestrictionFilters narrows restriction listings.
type RestrictionFilters struct {
	StudentID *string
	CourseID  *uint
	Limit     int
	Offset    int
}

// RestrictionRepository persists restriction records. It performs no
// cascading: side effects on enrollments and chat membership belong to the
// service layer.
type RestrictionRepository interface {
	Create(ctx context.Context, restriction *models.Restriction) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Restriction, error)
	ListByTeacher(ctx context.Context, teacherID string, filters RestrictionFilters) ([]*models.Restriction, int64, error)

	// IsRestricted is the canonical "may this student be active in this
	// course right now" predicate: true if a course-scoped restriction
	// matches (student, course) or a global one matches (student, course's
	// teacher).
	IsRestricted(ctx context.Context, studentID string, courseID uint) (bool, error)

	// FindBlocking returns the restriction that currently blocks the pair,
	// preferring the global one when both exist, or nil when unblocked.
	FindBlocking(ctx context.Context, studentID string, courseID uint) (*models.Restriction, error)

	FindOverlapping(ctx context.Context, teacherID, studentID string) (*RestrictionOverlap, error)

	// LockPair serializes access-state mutations for a (teacher, student)
	// pair for the rest of the transaction, covering the case where the pair
	// has no rows to lock yet. Must be called inside WithTransaction.
	LockPair(ctx context.Context, teacherID, studentID string) error

	// DeleteScopedForPair removes all course-scoped restrictions for the
	// pair. Used by the supersede rule when a global restriction is created.
	DeleteScopedForPair(ctx context.Context, teacherID, studentID string) (int64, error)
}

// EnrollmentRepository persists enrollment rows. The ForUpdate variants take
// row-level locks and must only be called inside WithTransaction.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	GetByStudentAndCourse(ctx context.Context, studentID string, courseID uint) (*models.Enrollment, error)
	GetByStudentAndCourseForUpdate(ctx context.Context, studentID string, courseID uint) (*models.Enrollment, error)

	// ListForPairsForUpdate locks and returns the enrollment rows for
	// (student, courseIDs[i]) pairs that exist. Missing pairs are simply
	// absent from the result.
	ListForPairsForUpdate(ctx context.Context, studentID string, courseIDs []uint) ([]*models.Enrollment, error)

	ListByStudent(ctx context.Context, studentID string, activeOnly bool) ([]*models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID uint, activeOnly bool) ([]*models.Enrollment, error)
}

// ChatRepository reads course chat rooms and maintains participant mirrors.
type ChatRepository interface {
	// CourseChatRoomFor returns the course-type room for a course, or a
	// not-found error when the course has no chat yet.
	CourseChatRoomFor(ctx context.Context, courseID uint) (*models.ChatRoom, error)

	GetParticipant(ctx context.Context, chatRoomID uint, userID string) (*models.ChatParticipant, error)
	GetParticipantForUpdate(ctx context.Context, chatRoomID uint, userID string) (*models.ChatParticipant, error)
	CreateParticipant(ctx context.Context, participant *models.ChatParticipant) error
	UpdateParticipant(ctx context.Context, participant *models.ChatParticipant) error
}

// CourseRepository is the course directory consumed by the engine.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Course, error)

	// CoursesTaughtBy expands a teacher into course ids; used to compute
	// global-restriction impact sets.
	CoursesTaughtBy(ctx context.Context, teacherID string) ([]uint, error)
}

// UserRepository is a read-only user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}
