package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/course-access-service/internal/cache"
	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
	"github.com/SAP-F-2025/course-access-service/internal/validator"
)

type restrictionService struct {
	repo         repositories.Repository
	enrollment   EnrollmentService
	notifier     NotificationService
	cacheManager *cache.CacheManager
	logger       *slog.Logger
	validator    *validator.Validator
}

func NewRestrictionService(
	repo repositories.Repository,
	enrollment EnrollmentService,
	notifier NotificationService,
	cacheManager *cache.CacheManager,
	logger *slog.Logger,
	v *validator.Validator,
) RestrictionService {
	return &restrictionService{
		repo:         repo,
		enrollment:   enrollment,
		notifier:     notifier,
		cacheManager: cacheManager,
		logger:       logger,
		validator:    v,
	}
}

// Create stores a restriction and cascades it onto every covered enrollment
// in one transaction: deactivate the enrollment, mirror the change into chat.
// A global restriction supersedes the pair's course-scoped ones, which are
// deleted without their usual lift cascade since the global record covers
// everything they did.
func (s *restrictionService) Create(ctx context.Context, req *CreateRestrictionRequest, teacherID string) (*RestrictionResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateRestrictionCreate(req); errs != nil {
		return nil, errs
	}

	exists, err := s.repo.User().Exists(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return nil, ErrStudentNotFound
	}

	if req.CourseID != nil {
		course, err := s.repo.Course().GetByID(ctx, *req.CourseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
		if course.TeacherID != teacherID {
			return nil, NewPermissionError(teacherID, "course", "restrict",
				"teachers may only restrict students in their own courses")
		}
	}

	var restriction *models.Restriction
	var deactivated []uint

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		// Serializes against concurrent creates for the same pair even when
		// no restriction row exists yet to lock
		if err := txRepo.Restriction().LockPair(ctx, teacherID, req.StudentID); err != nil {
			return err
		}

		overlap, err := txRepo.Restriction().FindOverlapping(ctx, teacherID, req.StudentID)
		if err != nil {
			return fmt.Errorf("failed to check existing restrictions: %w", err)
		}

		if req.CourseID != nil {
			if overlap.Global != nil {
				return ErrGlobalRestrictionExists
			}
			for _, scoped := range overlap.Scoped {
				if scoped.CourseID != nil && *scoped.CourseID == *req.CourseID {
					return ErrRestrictionExists
				}
			}
		} else {
			if overlap.Global != nil {
				return ErrRestrictionExists
			}
			if len(overlap.Scoped) > 0 {
				deleted, err := txRepo.Restriction().DeleteScopedForPair(ctx, teacherID, req.StudentID)
				if err != nil {
					return fmt.Errorf("failed to supersede scoped restrictions: %w", err)
				}
				s.logger.Info("Scoped restrictions superseded by global restriction",
					"teacher_id", teacherID,
					"student_id", req.StudentID,
					"deleted", deleted)
			}
		}

		restriction = &models.Restriction{
			TeacherID: teacherID,
			StudentID: req.StudentID,
			CourseID:  req.CourseID,
			Reason:    req.Reason,
		}
		if err := txRepo.Restriction().Create(ctx, restriction); err != nil {
			return fmt.Errorf("failed to create restriction: %w", err)
		}

		deactivated, err = s.applyRestriction(ctx, txRepo, restriction)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateRestriction) {
			return nil, ErrRestrictionExists
		}
		return nil, err
	}

	s.logger.Info("Restriction created",
		"restriction_id", restriction.ID,
		"teacher_id", teacherID,
		"student_id", req.StudentID,
		"scope", restriction.Scope(),
		"deactivated_enrollments", len(deactivated))

	cache.InvalidateAccessCache(ctx, s.cacheManager, req.StudentID)
	s.notifier.NotifyRestrictionApplied(ctx, restriction, deactivated)

	return &RestrictionResponse{
		Restriction:         restriction,
		AffectedEnrollments: len(deactivated),
	}, nil
}

// Delete removes a restriction and reverses its effects: every enrollment it
// covered is re-evaluated and reactivated only if no other restriction still
// blocks it.
func (s *restrictionService) Delete(ctx context.Context, restrictionID uint, teacherID string) error {
	restriction, err := s.repo.Restriction().GetByID(ctx, restrictionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrRestrictionNotFound
		}
		return fmt.Errorf("failed to get restriction: %w", err)
	}

	if restriction.TeacherID != teacherID {
		return NewPermissionError(teacherID, "restriction", "delete",
			"restrictions may only be deleted by the teacher who created them")
	}

	var reactivated []uint

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Restriction().LockPair(ctx, restriction.TeacherID, restriction.StudentID); err != nil {
			return err
		}

		// Delete first: the access re-check below must not see the record
		// being lifted.
		if err := txRepo.Restriction().Delete(ctx, restrictionID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrRestrictionNotFound
			}
			return fmt.Errorf("failed to delete restriction: %w", err)
		}

		courseIDs, err := s.impactSet(ctx, txRepo, restriction)
		if err != nil {
			return err
		}

		enrollments, err := txRepo.Enrollment().ListForPairsForUpdate(ctx, restriction.StudentID, courseIDs)
		if err != nil {
			return fmt.Errorf("failed to lock covered enrollments: %w", err)
		}

		for _, enrollment := range enrollments {
			ok, err := s.enrollment.ReactivateIfUnblocked(ctx, txRepo, enrollment)
			if err != nil {
				return err
			}
			if ok {
				reactivated = append(reactivated, enrollment.CourseID)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Restriction deleted",
		"restriction_id", restrictionID,
		"teacher_id", teacherID,
		"student_id", restriction.StudentID,
		"scope", restriction.Scope(),
		"reactivated_enrollments", len(reactivated))

	cache.InvalidateAccessCache(ctx, s.cacheManager, restriction.StudentID)
	s.notifier.NotifyRestrictionLifted(ctx, teacherID, restriction.StudentID, restriction.Scope(), reactivated)

	return nil
}

func (s *restrictionService) GetByID(ctx context.Context, restrictionID uint, teacherID string) (*models.Restriction, error) {
	restriction, err := s.repo.Restriction().GetByID(ctx, restrictionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRestrictionNotFound
		}
		return nil, fmt.Errorf("failed to get restriction: %w", err)
	}

	if restriction.TeacherID != teacherID {
		return nil, NewPermissionError(teacherID, "restriction", "read",
			"restrictions are only visible to the teacher who created them")
	}

	return restriction, nil
}

func (s *restrictionService) ListByTeacher(ctx context.Context, teacherID string, filters repositories.RestrictionFilters) (*RestrictionListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	restrictions, total, err := s.repo.Restriction().ListByTeacher(ctx, teacherID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list restrictions: %w", err)
	}

	return &RestrictionListResponse{
		Restrictions: restrictions,
		Total:        total,
		Page:         (filters.Offset / filters.Limit) + 1,
		Size:         filters.Limit,
	}, nil
}

// applyRestriction computes the impact set, locks the covered enrollment rows
// and deactivates the active ones. Returns the course ids that actually
// changed state.
func (s *restrictionService) applyRestriction(ctx context.Context, txRepo repositories.Repository, restriction *models.Restriction) ([]uint, error) {
	courseIDs, err := s.impactSet(ctx, txRepo, restriction)
	if err != nil {
		return nil, err
	}

	enrollments, err := txRepo.Enrollment().ListForPairsForUpdate(ctx, restriction.StudentID, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock covered enrollments: %w", err)
	}

	var deactivated []uint
	for _, enrollment := range enrollments {
		if !enrollment.IsActive {
			continue
		}
		if err := s.enrollment.DeactivateForRestriction(ctx, txRepo, enrollment); err != nil {
			return nil, err
		}
		deactivated = append(deactivated, enrollment.CourseID)
	}

	return deactivated, nil
}

// impactSet expands a restriction into the course ids it covers. The set is
// captured inside the transaction, before any enrollment is touched, so the
// cascade and its later reversal see the same teacher catalog.
func (s *restrictionService) impactSet(ctx context.Context, txRepo repositories.Repository, restriction *models.Restriction) ([]uint, error) {
	if restriction.CourseID != nil {
		return []uint{*restriction.CourseID}, nil
	}

	courseIDs, err := txRepo.Course().CoursesTaughtBy(ctx, restriction.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to expand teacher courses: %w", err)
	}
	return courseIDs, nil
}
