package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
	"github.com/SAP-F-2025/course-access-service/internal/services"
	"github.com/SAP-F-2025/course-access-service/internal/utils"
	"github.com/SAP-F-2025/course-access-service/internal/validator"
)

// stubEnrollmentService records which student ids reach the access predicate.
type stubEnrollmentService struct {
	restricted bool
	checked    []string
}

func (s *stubEnrollmentService) EnrollOrReactivate(ctx context.Context, studentID string, courseID uint) (*services.EnrollmentResponse, error) {
	return nil, nil
}

func (s *stubEnrollmentService) Unenroll(ctx context.Context, studentID string, courseID uint, requestedBy string) error {
	return nil
}

func (s *stubEnrollmentService) IsRestricted(ctx context.Context, studentID string, courseID uint) (bool, error) {
	s.checked = append(s.checked, studentID)
	return s.restricted, nil
}

func (s *stubEnrollmentService) ListByStudent(ctx context.Context, studentID string, activeOnly bool) ([]*models.Enrollment, error) {
	return nil, nil
}

func (s *stubEnrollmentService) DeactivateForRestriction(ctx context.Context, repo repositories.Repository, enrollment *models.Enrollment) error {
	return nil
}

func (s *stubEnrollmentService) ReactivateIfUnblocked(ctx context.Context, repo repositories.Repository, enrollment *models.Enrollment) (bool, error) {
	return false, nil
}

func newAccessCheckContext(t *testing.T, target, requesterID string, role models.UserRole) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	c.Params = gin.Params{{Key: "course_id", Value: "10"}}
	c.Set("user_id", requesterID)
	c.Set("user_role", role)
	return c, w
}

func TestEnrollmentHandler_CheckAccess_RoleGate(t *testing.T) {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	tests := []struct {
		name       string
		target     string
		requester  string
		role       models.UserRole
		wantStatus int
	}{
		{
			name:       "student checks own access",
			target:     "/api/v1/enrollments/10/access",
			requester:  "student-1",
			role:       models.RoleStudent,
			wantStatus: http.StatusOK,
		},
		{
			name:       "student names themselves explicitly",
			target:     "/api/v1/enrollments/10/access?student_id=student-1",
			requester:  "student-1",
			role:       models.RoleStudent,
			wantStatus: http.StatusOK,
		},
		{
			name:       "student checks another student",
			target:     "/api/v1/enrollments/10/access?student_id=student-2",
			requester:  "student-1",
			role:       models.RoleStudent,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "teacher checks a student",
			target:     "/api/v1/enrollments/10/access?student_id=student-2",
			requester:  "teacher-1",
			role:       models.RoleTeacher,
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin checks a student",
			target:     "/api/v1/enrollments/10/access?student_id=student-2",
			requester:  "admin-1",
			role:       models.RoleAdmin,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubEnrollmentService{}
			handler := NewEnrollmentHandler(service, validator.New(), logger)

			c, w := newAccessCheckContext(t, tt.target, tt.requester, tt.role)
			handler.CheckAccess(c)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusForbidden && len(service.checked) != 0 {
				t.Error("A refused request must not reach the access predicate")
			}
		})
	}
}
