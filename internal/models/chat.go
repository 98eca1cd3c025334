package models

import (
	"time"
)

type ChatRoomType string

const (
	ChatRoomCourse ChatRoomType = "course"
	ChatRoomDirect ChatRoomType = "direct"
)

// ChatRoom is the room record this service reads. Course-type rooms are 1:1
// with a course; the room itself is created by the chat service, never here.
type ChatRoom struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	Type     ChatRoomType `json:"type" gorm:"not null;size:20;index"`
	CourseID *uint        `json:"course_id" gorm:"uniqueIndex"`
	Name     string       `json:"name" gorm:"not null;size:200"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

type ParticipantRole string

const (
	ParticipantRoleParticipant ParticipantRole = "participant"
	ParticipantRoleModerator   ParticipantRole = "moderator"
)

// ChatParticipant mirrors enrollment state into course chats. For a course
// room, IsActive must equal the matching Enrollment.IsActive once a
// transition settles; rows are soft-deactivated, never deleted.
type ChatParticipant struct {
	ChatRoomID uint            `json:"chat_room_id" gorm:"primaryKey;autoIncrement:false"`
	UserID     string          `json:"user_id" gorm:"primaryKey;size:255"`
	Role       ParticipantRole `json:"role" gorm:"not null;size:20;default:participant"`
	IsActive   bool            `json:"is_active" gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	ChatRoom ChatRoom `json:"chat_room" gorm:"foreignKey:ChatRoomID"`
	User     User     `json:"user" gorm:"foreignKey:UserID"`
}

func (ChatParticipant) TableName() string {
	return "chat_participants"
}
