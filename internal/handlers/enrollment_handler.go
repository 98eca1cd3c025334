package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/services"
	"github.com/SAP-F-2025/course-access-service/internal/utils"
	"github.com/SAP-F-2025/course-access-service/internal/validator"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
	validator         *validator.Validator
}

func NewEnrollmentHandler(
	enrollmentService services.EnrollmentService,
	validator *validator.Validator,
	logger utils.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
		validator:         validator,
	}
}

// Enroll enrolls the requesting student into a course, reactivating a
// previous enrollment when one exists
// @Summary Enroll in course
// @Description Enrolls the authenticated student; fails when a restriction covers the pair
// @Tags enrollments
// @Accept json
// @Produce json
// @Param enrollment body validator.EnrollRequest true "Enrollment data"
// @Success 201 {object} services.EnrollmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req validator.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Enrolling student",
		"student_id", studentID,
		"course_id", req.CourseID)

	enrollment, err := h.enrollmentService.EnrollOrReactivate(c.Request.Context(), studentID, req.CourseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if enrollment.Reactivated {
		status = http.StatusOK
	}
	c.JSON(status, enrollment)
}

// Unenroll deactivates an enrollment. Students unenroll themselves; course
// teachers may remove a student by passing student_id
// @Summary Unenroll from course
// @Tags enrollments
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param student_id query string false "Student to unenroll (teachers only)"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/{course_id} [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	requestedBy, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	studentID := c.DefaultQuery("student_id", requestedBy)

	h.LogRequest(c, "Unenrolling student",
		"student_id", studentID,
		"course_id", courseID,
		"requested_by", requestedBy)

	if err := h.enrollmentService.Unenroll(c.Request.Context(), studentID, courseID, requestedBy); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Unenrolled from course",
	})
}

// CheckAccess answers whether a student is currently restricted from a
// course. Other platform services call this before serving lessons or
// feedback forms
// @Summary Check course access
// @Tags enrollments
// @Produce json
// @Param course_id path uint true "Course ID"
// @Param student_id query string false "Student to check (teachers and admins only; defaults to the requester)"
// @Success 200 {object} services.AccessCheckResponse
// @Failure 403 {object} ErrorResponse
// @Router /enrollments/{course_id}/access [get]
func (h *EnrollmentHandler) CheckAccess(c *gin.Context) {
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	requesterID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	studentID := c.DefaultQuery("student_id", requesterID)

	// Students may only query themselves
	if studentID != requesterID {
		role, err := GetUserRoleFromContext(c)
		if err != nil || (role != models.RoleTeacher && role != models.RoleAdmin) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Only teachers may check another student's access",
			})
			return
		}
	}

	restricted, err := h.enrollmentService.IsRestricted(c.Request.Context(), studentID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.AccessCheckResponse{
		StudentID:  studentID,
		CourseID:   courseID,
		Restricted: restricted,
	})
}

// ListMyEnrollments lists the requesting student's enrollments
// @Summary List own enrollments
// @Tags enrollments
// @Produce json
// @Param active_only query bool false "Only active enrollments"
// @Success 200 {array} models.Enrollment
// @Router /enrollments [get]
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	activeOnly := c.DefaultQuery("active_only", "false") == "true"

	enrollments, err := h.enrollmentService.ListByStudent(c.Request.Context(), studentID, activeOnly)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}
