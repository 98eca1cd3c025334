package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-access-service/internal/cache"
	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var course models.Course

	err := r.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := r.db.WithContext(ctx).First(&dbCourse, id).Error; err != nil {
			return nil, err
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return &course, nil
}

// CoursesTaughtBy expands a teacher into course ids. Global-restriction
// cascades call this through a transaction-bound repository, which carries no
// cache, so the impact set always reflects the committed course directory.
func (r *CoursePostgreSQL) CoursesTaughtBy(ctx context.Context, teacherID string) ([]uint, error) {
	cacheKey := fmt.Sprintf("teacher:%s:ids", teacherID)
	var courseIDs []uint

	err := r.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &courseIDs, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var ids []uint
		err := r.db.WithContext(ctx).Model(&models.Course{}).
			Where("teacher_id = ?", teacherID).
			Order("id ASC").
			Pluck("id", &ids).Error
		if err != nil {
			return nil, err
		}
		return ids, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses taught by teacher: %w", err)
	}

	return courseIDs, nil
}
