package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/course-access-service/internal/cache"
	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
)

type ChatPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewChatPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ChatRepository {
	return &ChatPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// CourseChatRoomFor resolves the course-type chat room for a course. Room ids
// are stable once created, so the lookup is cached.
func (r *ChatPostgreSQL) CourseChatRoomFor(ctx context.Context, courseID uint) (*models.ChatRoom, error) {
	cacheKey := fmt.Sprintf("course:%d", courseID)
	var room models.ChatRoom

	err := r.cacheManager.ChatRoom.CacheOrExecute(ctx, cacheKey, &room, cache.ChatRoomCacheConfig.TTL, func() (interface{}, error) {
		var dbRoom models.ChatRoom
		err := r.db.WithContext(ctx).
			Where("type = ? AND course_id = ?", models.ChatRoomCourse, courseID).
			First(&dbRoom).Error
		if err != nil {
			return nil, err
		}
		return &dbRoom, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get course chat room: %w", err)
	}

	return &room, nil
}

func (r *ChatPostgreSQL) GetParticipant(ctx context.Context, chatRoomID uint, userID string) (*models.ChatParticipant, error) {
	var participant models.ChatParticipant
	err := r.db.WithContext(ctx).
		Where("chat_room_id = ? AND user_id = ?", chatRoomID, userID).
		First(&participant).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get chat participant: %w", err)
	}

	return &participant, nil
}

func (r *ChatPostgreSQL) GetParticipantForUpdate(ctx context.Context, chatRoomID uint, userID string) (*models.ChatParticipant, error) {
	var participant models.ChatParticipant
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("chat_room_id = ? AND user_id = ?", chatRoomID, userID).
		First(&participant).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get chat participant for update: %w", err)
	}

	return &participant, nil
}

func (r *ChatPostgreSQL) CreateParticipant(ctx context.Context, participant *models.ChatParticipant) error {
	if err := r.db.WithContext(ctx).Create(participant).Error; err != nil {
		return fmt.Errorf("failed to create chat participant: %w", err)
	}

	return nil
}

func (r *ChatPostgreSQL) UpdateParticipant(ctx context.Context, participant *models.ChatParticipant) error {
	err := r.db.WithContext(ctx).Model(participant).
		Updates(map[string]interface{}{
			"is_active": participant.IsActive,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update chat participant: %w", err)
	}

	return nil
}
