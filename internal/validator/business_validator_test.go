package validator

import (
	"strings"
	"testing"
)

func TestBusinessValidator_ValidateRestrictionCreate(t *testing.T) {
	bv := NewBusinessValidator()
	courseID := uint(10)

	tests := []struct {
		name    string
		req     *RestrictionCreateRequest
		wantErr bool
		field   string
	}{
		{
			name: "valid course-scoped request",
			req:  &RestrictionCreateRequest{StudentID: "student-1", CourseID: &courseID, Reason: "repeated spam"},
		},
		{
			name: "valid global request",
			req:  &RestrictionCreateRequest{StudentID: "student-1", Reason: "academic dishonesty"},
		},
		{
			name:    "missing student",
			req:     &RestrictionCreateRequest{Reason: "valid reason text"},
			wantErr: true,
			field:   "studentid",
		},
		{
			name:    "missing reason",
			req:     &RestrictionCreateRequest{StudentID: "student-1"},
			wantErr: true,
			field:   "reason",
		},
		{
			name:    "reason too short",
			req:     &RestrictionCreateRequest{StudentID: "student-1", Reason: "no"},
			wantErr: true,
			field:   "reason",
		},
		{
			name:    "reason only whitespace",
			req:     &RestrictionCreateRequest{StudentID: "student-1", Reason: "        "},
			wantErr: true,
			field:   "reason",
		},
		{
			name:    "reason too long",
			req:     &RestrictionCreateRequest{StudentID: "student-1", Reason: strings.Repeat("a", 1001)},
			wantErr: true,
			field:   "reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateRestrictionCreate(tt.req)
			if !tt.wantErr {
				if errs != nil {
					t.Fatalf("Expected no errors, got %v", errs)
				}
				return
			}

			if errs == nil {
				t.Fatal("Expected validation errors, got none")
			}

			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected an error on field %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "reason", Message: "is required", Rule: "required"},
		{Field: "studentid", Message: "is required", Rule: "required"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "reason") || !strings.Contains(msg, "studentid") {
		t.Errorf("Error message should mention every failed field, got %q", msg)
	}

	if (ValidationErrors{}).Error() != "validation failed" {
		t.Error("Empty error collection should fall back to a generic message")
	}
}
