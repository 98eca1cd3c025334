package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/validator"
)

// Use business validator types
type ValidationErrors = validator.ValidationErrors

// Sentinel errors recovered at the handler boundary.
var (
	ErrRestrictionNotFound = errors.New("restriction not found")

	// ErrRestrictionExists: identical (teacher, student, course) restriction already stored
	ErrRestrictionExists = errors.New("restriction already exists")

	// ErrGlobalRestrictionExists: course-scoped create rejected because a
	// global restriction already covers the pair; narrowing is disallowed
	ErrGlobalRestrictionExists = errors.New("a global restriction already covers this student; delete it first")

	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseNotPublished = errors.New("course is not published")
	ErrStudentNotFound    = errors.New("student not found")

	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrAlreadyEnrolled     = errors.New("student is already actively enrolled")
	ErrEnrollmentNotActive = errors.New("enrollment is not active")

	ErrForbidden = errors.New("forbidden")
)

// PermissionError carries enough context to explain a denied action.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

// RestrictionBlockedError is returned when enroll/reactivate is attempted
// while a restriction applies. It carries the scope and reason so the student
// sees why access was denied, not just that it was.
type RestrictionBlockedError struct {
	Scope     models.RestrictionScope
	TeacherID string
	CourseID  *uint
	Reason    string
}

func (e *RestrictionBlockedError) Error() string {
	if e.Scope == models.ScopeAllCourses {
		return fmt.Sprintf("enrollment blocked: restricted from all courses by teacher %s: %s", e.TeacherID, e.Reason)
	}
	return fmt.Sprintf("enrollment blocked: restricted from this course by teacher %s: %s", e.TeacherID, e.Reason)
}

// NewRestrictionBlockedError builds the error from the offending restriction.
func NewRestrictionBlockedError(restriction *models.Restriction) *RestrictionBlockedError {
	return &RestrictionBlockedError{
		Scope:     restriction.Scope(),
		TeacherID: restriction.TeacherID,
		CourseID:  restriction.CourseID,
		Reason:    restriction.Reason,
	}
}

// BusinessRuleError reports an internal invariant violation. These are
// defects: the operation is rolled back and the error logged loudly rather
// than coercing state.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %q violated: %s", e.Rule, e.Message)
}
