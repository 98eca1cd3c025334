package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (r *EnrollmentPostgreSQL) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	return nil
}

func (r *EnrollmentPostgreSQL) Update(ctx context.Context, enrollment *models.Enrollment) error {
	// Save the flag and timestamp columns explicitly; UnenrolledAt must be
	// written even when it transitions back to NULL.
	err := r.db.WithContext(ctx).Model(enrollment).
		Select("is_active", "unenrolled_at", "updated_at").
		Updates(map[string]interface{}{
			"is_active":     enrollment.IsActive,
			"unenrolled_at": enrollment.UnenrolledAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}

	return nil
}

func (r *EnrollmentPostgreSQL) GetByStudentAndCourse(ctx context.Context, studentID string, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return &enrollment, nil
}

// GetByStudentAndCourseForUpdate locks the enrollment row so a concurrent
// restriction cascade and a manual enroll/unenroll serialize on it.
func (r *EnrollmentPostgreSQL) GetByStudentAndCourseForUpdate(ctx context.Context, studentID string, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment for update: %w", err)
	}

	return &enrollment, nil
}

func (r *EnrollmentPostgreSQL) ListForPairsForUpdate(ctx context.Context, studentID string, courseIDs []uint) ([]*models.Enrollment, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	var enrollments []*models.Enrollment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND course_id IN ?", studentID, courseIDs).
		Order("course_id ASC"). // stable lock order prevents deadlocks between overlapping cascades
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments for update: %w", err)
	}

	return enrollments, nil
}

func (r *EnrollmentPostgreSQL) ListByStudent(ctx context.Context, studentID string, activeOnly bool) ([]*models.Enrollment, error) {
	query := r.db.WithContext(ctx).
		Where("student_id = ?", studentID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var enrollments []*models.Enrollment
	if err := query.Preload("Course").Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to list enrollments by student: %w", err)
	}

	return enrollments, nil
}

func (r *EnrollmentPostgreSQL) ListByCourse(ctx context.Context, courseID uint, activeOnly bool) ([]*models.Enrollment, error) {
	query := r.db.WithContext(ctx).
		Where("course_id = ?", courseID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var enrollments []*models.Enrollment
	if err := query.Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to list enrollments by course: %w", err)
	}

	return enrollments, nil
}
