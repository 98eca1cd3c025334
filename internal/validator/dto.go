package validator

// RestrictionCreateRequest represents the request structure for restricting a student
type RestrictionCreateRequest struct {
	StudentID string `json:"student_id" validate:"required,max=255"`
	CourseID  *uint  `json:"course_id" validate:"omitempty,min=1"`
	Reason    string `json:"reason" validate:"required,restriction_reason"`
}

// EnrollRequest represents the request structure for enrolling in a course
type EnrollRequest struct {
	CourseID uint `json:"course_id" validate:"required,min=1"`
}
