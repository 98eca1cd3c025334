package models

import (
	"time"
)

// Enrollment is the per (student, course) membership row and the single
// source of truth for "is this student currently in this course". IsActive
// may only be flipped through the enrollment service so the restriction
// engine can keep the chat mirror in lockstep.
type Enrollment struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollments_student_course;size:255"`
	CourseID  uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollments_student_course"`

	IsActive     bool       `json:"is_active" gorm:"not null;default:true;index"`
	EnrolledAt   time.Time  `json:"enrolled_at" gorm:"not null"`
	UnenrolledAt *time.Time `json:"unenrolled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Student User   `json:"student" gorm:"foreignKey:StudentID"`
	Course  Course `json:"course" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
