package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestChatSyncService_Mirror(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	chatSync := NewChatSyncService(logger)
	ctx := context.Background()

	t.Run("creates participant on first activation", func(t *testing.T) {
		repo := newFakeRepository()
		room := repo.addChatRoom(10)

		if err := chatSync.Mirror(ctx, repo, "student-1", 10, true); err != nil {
			t.Fatalf("Mirror failed: %v", err)
		}

		participant := repo.participants[participantKey(room.ID, "student-1")]
		if participant == nil {
			t.Fatal("Participant should be created")
		}
		if !participant.IsActive || participant.Role != "participant" {
			t.Errorf("Expected active participant role, got active=%v role=%s", participant.IsActive, participant.Role)
		}
	})

	t.Run("deactivation without participant row is a no-op", func(t *testing.T) {
		repo := newFakeRepository()
		room := repo.addChatRoom(10)

		if err := chatSync.Mirror(ctx, repo, "student-1", 10, false); err != nil {
			t.Fatalf("Mirror failed: %v", err)
		}
		if _, ok := repo.participants[participantKey(room.ID, "student-1")]; ok {
			t.Error("Mirror must not create a participant just to deactivate it")
		}
	})

	t.Run("missing room is a no-op", func(t *testing.T) {
		repo := newFakeRepository()

		if err := chatSync.Mirror(ctx, repo, "student-1", 10, true); err != nil {
			t.Errorf("Mirror should ignore courses without a chat room, got %v", err)
		}
	})

	t.Run("same-state mirror leaves the row untouched", func(t *testing.T) {
		repo := newFakeRepository()
		room := repo.addChatRoom(10)
		repo.addParticipant(room.ID, "student-1", true)

		if err := chatSync.Mirror(ctx, repo, "student-1", 10, true); err != nil {
			t.Fatalf("Mirror failed: %v", err)
		}
		if !repo.participants[participantKey(room.ID, "student-1")].IsActive {
			t.Error("Participant should remain active")
		}
	})

	t.Run("moderator role is preserved across transitions", func(t *testing.T) {
		repo := newFakeRepository()
		room := repo.addChatRoom(10)
		participant := repo.addParticipant(room.ID, "student-1", true)
		participant.Role = "moderator"

		if err := chatSync.Mirror(ctx, repo, "student-1", 10, false); err != nil {
			t.Fatalf("Mirror failed: %v", err)
		}

		got := repo.participants[participantKey(room.ID, "student-1")]
		if got.IsActive {
			t.Error("Participant should be inactive")
		}
		if got.Role != "moderator" {
			t.Errorf("Mirror must never change roles, got %s", got.Role)
		}
	})
}
