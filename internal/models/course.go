package models

import (
	"time"

	"gorm.io/gorm"
)

// Course is the minimal course record this service needs: the teacher who
// owns it (global restrictions expand over a teacher's courses) and the
// published flag consulted at the enrollment entry point. Full course CRUD
// lives in the course service.
type Course struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:200;index"`
	TeacherID   string `json:"teacher_id" gorm:"not null;index;size:255"`
	IsPublished bool   `json:"is_published" gorm:"not null;default:false;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Teacher User `json:"teacher" gorm:"foreignKey:TeacherID"`
}

func (Course) TableName() string {
	return "courses"
}
