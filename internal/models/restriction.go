package models

import (
	"time"
)

// RestrictionScope distinguishes a single-course block from an
// all-courses-by-teacher block in user-facing messages and events.
type RestrictionScope string

const (
	ScopeCourse     RestrictionScope = "course"
	ScopeAllCourses RestrictionScope = "all_courses"
)

// Restriction is a teacher-issued access block against a student.
// CourseID == nil means the block covers every course taught by the teacher.
// Rows are hard-deleted: effect reversal runs after the record is gone, so a
// soft-deleted row must never be visible to the IsRestricted predicate.
//
// Uniqueness is enforced in the database, not only in the service's overlap
// check. NULLs are distinct in the identity index, so the partial index on
// course-null rows is what keeps a pair to at most one global restriction.
type Restriction struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	TeacherID string `json:"teacher_id" gorm:"not null;uniqueIndex:idx_restrictions_identity;uniqueIndex:idx_restrictions_global,where:course_id IS NULL;size:255"`
	StudentID string `json:"student_id" gorm:"not null;uniqueIndex:idx_restrictions_identity;uniqueIndex:idx_restrictions_global,where:course_id IS NULL;size:255"`
	CourseID  *uint  `json:"course_id" gorm:"uniqueIndex:idx_restrictions_identity"`
	Reason    string `json:"reason" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teacher User    `json:"teacher" gorm:"foreignKey:TeacherID"`
	Student User    `json:"student" gorm:"foreignKey:StudentID"`
	Course  *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Restriction) TableName() string {
	return "restrictions"
}

// IsGlobal reports whether the restriction covers all of the teacher's courses.
func (r *Restriction) IsGlobal() bool {
	return r.CourseID == nil
}

// Scope returns the user-facing scope of the restriction.
func (r *Restriction) Scope() RestrictionScope {
	if r.IsGlobal() {
		return ScopeAllCourses
	}
	return ScopeCourse
}
