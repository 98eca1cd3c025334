package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
	"github.com/SAP-F-2025/course-access-service/internal/validator"
)

type enrollmentService struct {
	repo      repositories.Repository
	chatSync  ChatSyncService
	notifier  NotificationService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewEnrollmentService(
	repo repositories.Repository,
	chatSync ChatSyncService,
	notifier NotificationService,
	logger *slog.Logger,
	v *validator.Validator,
) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		chatSync:  chatSync,
		notifier:  notifier,
		logger:    logger,
		validator: v,
	}
}

// ===== USER-INVOKED TRANSITIONS =====

func (s *enrollmentService) EnrollOrReactivate(ctx context.Context, studentID string, courseID uint) (*EnrollmentResponse, error) {
	if errs := s.validator.GetBusinessValidator().Validate(&validator.EnrollRequest{CourseID: courseID}); errs != nil {
		return nil, errs
	}

	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !course.IsPublished {
		return nil, ErrCourseNotPublished
	}

	exists, err := s.repo.User().Exists(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return nil, ErrStudentNotFound
	}

	var response *EnrollmentResponse
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		// On a first enrollment there is no row to lock, so the pair lock is
		// what keeps a concurrent restriction cascade from racing the access
		// check below
		if err := txRepo.Restriction().LockPair(ctx, course.TeacherID, studentID); err != nil {
			return err
		}

		enrollment, err := txRepo.Enrollment().GetByStudentAndCourseForUpdate(ctx, studentID, courseID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to get enrollment: %w", err)
		}
		if err != nil {
			enrollment = nil
		}

		if enrollment != nil && enrollment.IsActive {
			return ErrAlreadyEnrolled
		}

		// The access check happens under the row lock so a concurrent
		// restriction create cannot slip between check and activation.
		blocking, err := txRepo.Restriction().FindBlocking(ctx, studentID, courseID)
		if err != nil {
			return fmt.Errorf("failed to check restrictions: %w", err)
		}
		if blocking != nil {
			return NewRestrictionBlockedError(blocking)
		}

		if enrollment == nil {
			enrollment = &models.Enrollment{
				StudentID:  studentID,
				CourseID:   courseID,
				IsActive:   true,
				EnrolledAt: time.Now(),
			}
			if err := txRepo.Enrollment().Create(ctx, enrollment); err != nil {
				return fmt.Errorf("failed to create enrollment: %w", err)
			}
			response = &EnrollmentResponse{Enrollment: enrollment, Reactivated: false}
		} else {
			enrollment.IsActive = true
			enrollment.UnenrolledAt = nil
			if err := txRepo.Enrollment().Update(ctx, enrollment); err != nil {
				return fmt.Errorf("failed to reactivate enrollment: %w", err)
			}
			response = &EnrollmentResponse{Enrollment: enrollment, Reactivated: true}
		}

		return s.chatSync.Mirror(ctx, txRepo, studentID, courseID, true)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student enrolled",
		"student_id", studentID,
		"course_id", courseID,
		"reactivated", response.Reactivated)

	s.notifier.NotifyEnrollmentChanged(ctx, studentID, courseID, true)

	return response, nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, studentID string, courseID uint, requestedBy string) error {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	if requestedBy != studentID && requestedBy != course.TeacherID {
		return NewPermissionError(requestedBy, "enrollment", "unenroll",
			"only the student or the course teacher may unenroll")
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		enrollment, err := txRepo.Enrollment().GetByStudentAndCourseForUpdate(ctx, studentID, courseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrEnrollmentNotFound
			}
			return fmt.Errorf("failed to get enrollment: %w", err)
		}

		if !enrollment.IsActive {
			return ErrEnrollmentNotActive
		}

		now := time.Now()
		enrollment.IsActive = false
		enrollment.UnenrolledAt = &now
		if err := txRepo.Enrollment().Update(ctx, enrollment); err != nil {
			return fmt.Errorf("failed to deactivate enrollment: %w", err)
		}

		return s.chatSync.Mirror(ctx, txRepo, studentID, courseID, false)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Student unenrolled",
		"student_id", studentID,
		"course_id", courseID,
		"requested_by", requestedBy)

	s.notifier.NotifyEnrollmentChanged(ctx, studentID, courseID, false)

	return nil
}

// ===== ACCESS CHECK =====

func (s *enrollmentService) IsRestricted(ctx context.Context, studentID string, courseID uint) (bool, error) {
	return s.repo.Restriction().IsRestricted(ctx, studentID, courseID)
}

func (s *enrollmentService) ListByStudent(ctx context.Context, studentID string, activeOnly bool) ([]*models.Enrollment, error) {
	enrollments, err := s.repo.Enrollment().ListByStudent(ctx, studentID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// ===== SYSTEM-INVOKED TRANSITIONS =====

// DeactivateForRestriction runs inside the restriction engine's transaction.
// Already-inactive rows are skipped so replayed cascades converge instead of
// erroring.
func (s *enrollmentService) DeactivateForRestriction(ctx context.Context, repo repositories.Repository, enrollment *models.Enrollment) error {
	if !enrollment.IsActive {
		return nil
	}

	now := time.Now()
	enrollment.IsActive = false
	enrollment.UnenrolledAt = &now
	if err := repo.Enrollment().Update(ctx, enrollment); err != nil {
		return fmt.Errorf("failed to deactivate enrollment: %w", err)
	}

	return s.chatSync.Mirror(ctx, repo, enrollment.StudentID, enrollment.CourseID, false)
}

// ReactivateIfUnblocked re-checks the access predicate before flipping the
// row back. The check is mandatory: another restriction (the same teacher's
// global one, or a different course-scoped one) may still cover the pair.
func (s *enrollmentService) ReactivateIfUnblocked(ctx context.Context, repo repositories.Repository, enrollment *models.Enrollment) (bool, error) {
	if enrollment.IsActive {
		return false, nil
	}

	restricted, err := repo.Restriction().IsRestricted(ctx, enrollment.StudentID, enrollment.CourseID)
	if err != nil {
		return false, fmt.Errorf("failed to re-check restrictions: %w", err)
	}
	if restricted {
		return false, nil
	}

	enrollment.IsActive = true
	enrollment.UnenrolledAt = nil
	if err := repo.Enrollment().Update(ctx, enrollment); err != nil {
		return false, fmt.Errorf("failed to reactivate enrollment: %w", err)
	}

	if err := s.chatSync.Mirror(ctx, repo, enrollment.StudentID, enrollment.CourseID, true); err != nil {
		return false, err
	}

	return true, nil
}
