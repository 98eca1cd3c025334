package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
)

type chatSyncService struct {
	logger *slog.Logger
}

func NewChatSyncService(logger *slog.Logger) ChatSyncService {
	return &chatSyncService{logger: logger}
}

// Mirror copies an enrollment transition into the course chat. It runs on
// the caller's (usually transaction-bound) repository so enrollment and chat
// state commit together. It never creates rooms, never changes roles and
// never deletes rows.
func (s *chatSyncService) Mirror(ctx context.Context, repo repositories.Repository, studentID string, courseID uint, active bool) error {
	room, err := repo.Chat().CourseChatRoomFor(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Course has no chat yet; nothing to mirror
			return nil
		}
		return fmt.Errorf("failed to resolve course chat room: %w", err)
	}

	participant, err := repo.Chat().GetParticipantForUpdate(ctx, room.ID, studentID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to get chat participant: %w", err)
		}

		if !active {
			// Nothing to deactivate
			return nil
		}

		participant = &models.ChatParticipant{
			ChatRoomID: room.ID,
			UserID:     studentID,
			Role:       models.ParticipantRoleParticipant,
			IsActive:   true,
		}
		if err := repo.Chat().CreateParticipant(ctx, participant); err != nil {
			return fmt.Errorf("failed to create chat participant: %w", err)
		}

		s.logger.Info("Chat participant created",
			"chat_room_id", room.ID,
			"user_id", studentID,
			"course_id", courseID)
		return nil
	}

	if participant.IsActive == active {
		return nil
	}

	participant.IsActive = active
	if err := repo.Chat().UpdateParticipant(ctx, participant); err != nil {
		return fmt.Errorf("failed to update chat participant: %w", err)
	}

	s.logger.Info("Chat participant mirrored",
		"chat_room_id", room.ID,
		"user_id", studentID,
		"course_id", courseID,
		"is_active", active)

	return nil
}
