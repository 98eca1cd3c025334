package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/course-access-service/internal/cache"
	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
)

type RestrictionPostgreSQL struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewRestrictionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.RestrictionRepository {
	return &RestrictionPostgreSQL{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.AccessCacheConfig.Prefix),
	}
}

// Create stores a restriction. Pure insert: the supersede rule and all
// cascading live in the service layer. The unique indexes are the real
// uniqueness guard; an insert racing a concurrent create for the same pair
// surfaces here as a duplicate-key error even when the service's overlap
// check saw nothing.
func (r *RestrictionPostgreSQL) Create(ctx context.Context, restriction *models.Restriction) error {
	if err := r.db.WithContext(ctx).Create(restriction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicateRestriction
		}
		return fmt.Errorf("failed to create restriction: %w", err)
	}

	return nil
}

// LockPair takes a transaction-scoped advisory lock on a (teacher, student)
// pair. Row locks cannot cover pairs that have no restriction or enrollment
// rows yet, so restriction mutations and first-time enrollments serialize on
// this lock instead. Released when the transaction ends.
func (r *RestrictionPostgreSQL) LockPair(ctx context.Context, teacherID, studentID string) error {
	err := r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", teacherID+":"+studentID).Error
	if err != nil {
		return fmt.Errorf("failed to lock restriction pair: %w", err)
	}

	return nil
}

// Delete hard-deletes the restriction row. The record must be gone before
// effect reversal re-evaluates IsRestricted.
func (r *RestrictionPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Restriction{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete restriction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *RestrictionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Restriction, error) {
	var restriction models.Restriction
	err := r.db.WithContext(ctx).
		Preload("Course").
		First(&restriction, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get restriction: %w", err)
	}

	return &restriction, nil
}

func (r *RestrictionPostgreSQL) ListByTeacher(ctx context.Context, teacherID string, filters repositories.RestrictionFilters) ([]*models.Restriction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Restriction{}).
		Where("teacher_id = ?", teacherID)

	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count restrictions: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var restrictions []*models.Restriction
	err := query.
		Preload("Course").
		Order("created_at DESC").
		Find(&restrictions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list restrictions: %w", err)
	}

	return restrictions, total, nil
}

// blockingScope matches restrictions that cover (student, course): either a
// course-scoped row for the pair, or a global row issued by the course's
// teacher.
func (r *RestrictionPostgreSQL) blockingScope(ctx context.Context, studentID string, courseID uint) *gorm.DB {
	teacherSubquery := r.db.Model(&models.Course{}).
		Select("teacher_id").
		Where("id = ?", courseID)

	return r.db.WithContext(ctx).Model(&models.Restriction{}).
		Where("student_id = ?", studentID).
		Where("course_id = ? OR (course_id IS NULL AND teacher_id = (?))", courseID, teacherSubquery)
}

// IsRestricted serves boundary access checks through a short-lived cache.
// Transaction-bound instances carry no cache client, so in-cascade checks
// always hit the database.
func (r *RestrictionPostgreSQL) IsRestricted(ctx context.Context, studentID string, courseID uint) (bool, error) {
	cacheKey := fmt.Sprintf("student:%s:course:%d", studentID, courseID)

	var restricted bool
	err := r.cacheHelper.CacheOrExecute(ctx, cacheKey, &restricted, cache.AccessCacheConfig.TTL, func() (interface{}, error) {
		var count int64
		if err := r.blockingScope(ctx, studentID, courseID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to evaluate restriction predicate: %w", err)
		}
		return count > 0, nil
	})
	if err != nil {
		return false, err
	}

	return restricted, nil
}

func (r *RestrictionPostgreSQL) FindBlocking(ctx context.Context, studentID string, courseID uint) (*models.Restriction, error) {
	var restrictions []*models.Restriction
	err := r.blockingScope(ctx, studentID, courseID).
		Order("course_id IS NULL DESC"). // global supersedes for messaging
		Limit(1).
		Find(&restrictions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find blocking restriction: %w", err)
	}
	if len(restrictions) == 0 {
		return nil, nil
	}

	return restrictions[0], nil
}

// FindOverlapping locks and returns every restriction the (teacher, student)
// pair currently has. The row locks only cover existing rows; callers hold
// the pair's advisory lock (LockPair) so concurrent creates serialize even
// when the pair has no restriction yet, and the unique indexes backstop any
// insert that races past this check regardless.
func (r *RestrictionPostgreSQL) FindOverlapping(ctx context.Context, teacherID, studentID string) (*repositories.RestrictionOverlap, error) {
	var restrictions []*models.Restriction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("teacher_id = ? AND student_id = ?", teacherID, studentID).
		Find(&restrictions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping restrictions: %w", err)
	}

	overlap := &repositories.RestrictionOverlap{}
	for _, restriction := range restrictions {
		if restriction.IsGlobal() {
			overlap.Global = restriction
		} else {
			overlap.Scoped = append(overlap.Scoped, restriction)
		}
	}

	return overlap, nil
}

func (r *RestrictionPostgreSQL) DeleteScopedForPair(ctx context.Context, teacherID, studentID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("teacher_id = ? AND student_id = ? AND course_id IS NOT NULL", teacherID, studentID).
		Delete(&models.Restriction{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete scoped restrictions: %w", result.Error)
	}

	return result.RowsAffected, nil
}
