package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-access-service/internal/repositories"
	"github.com/SAP-F-2025/course-access-service/internal/services"
	"github.com/SAP-F-2025/course-access-service/internal/utils"
	"github.com/SAP-F-2025/course-access-service/internal/validator"
)

type RestrictionHandler struct {
	BaseHandler
	restrictionService services.RestrictionService
	validator          *validator.Validator
}

func NewRestrictionHandler(
	restrictionService services.RestrictionService,
	validator *validator.Validator,
	logger utils.Logger,
) *RestrictionHandler {
	return &RestrictionHandler{
		BaseHandler:        NewBaseHandler(logger),
		restrictionService: restrictionService,
		validator:          validator,
	}
}

// CreateRestriction restricts a student from one course or from all of the
// teacher's courses
// @Summary Create restriction
// @Description Restricts a student; omit course_id to cover all of the teacher's courses
// @Tags restrictions
// @Accept json
// @Produce json
// @Param restriction body services.CreateRestrictionRequest true "Restriction data"
// @Success 201 {object} services.RestrictionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /restrictions [post]
func (h *RestrictionHandler) CreateRestriction(c *gin.Context) {
	var req services.CreateRestrictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	teacherID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Creating restriction",
		"teacher_id", teacherID,
		"student_id", req.StudentID)

	restriction, err := h.restrictionService.Create(c.Request.Context(), &req, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, restriction)
}

// DeleteRestriction lifts a restriction and reactivates eligible enrollments
// @Summary Delete restriction
// @Description Lifts a restriction; covered enrollments reactivate unless another restriction still blocks them
// @Tags restrictions
// @Accept json
// @Produce json
// @Param id path uint true "Restriction ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /restrictions/{id} [delete]
func (h *RestrictionHandler) DeleteRestriction(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	teacherID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Deleting restriction",
		"restriction_id", id,
		"teacher_id", teacherID)

	if err := h.restrictionService.Delete(c.Request.Context(), id, teacherID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Restriction deleted",
	})
}

// GetRestriction retrieves a restriction by ID
// @Summary Get restriction
// @Tags restrictions
// @Produce json
// @Param id path uint true "Restriction ID"
// @Success 200 {object} models.Restriction
// @Failure 404 {object} ErrorResponse
// @Router /restrictions/{id} [get]
func (h *RestrictionHandler) GetRestriction(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	teacherID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	restriction, err := h.restrictionService.GetByID(c.Request.Context(), id, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, restriction)
}

// ListRestrictions lists the requesting teacher's restrictions
// @Summary List restrictions
// @Tags restrictions
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param course_id query uint false "Filter by course"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.RestrictionListResponse
// @Router /restrictions [get]
func (h *RestrictionHandler) ListRestrictions(c *gin.Context) {
	teacherID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := repositories.RestrictionFilters{}

	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}
	if rawCourseID := c.Query("course_id"); rawCourseID != "" {
		courseID, err := strconv.ParseUint(rawCourseID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid course_id parameter",
				Details: rawCourseID,
			})
			return
		}
		id := uint(courseID)
		filters.CourseID = &id
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	filters.Limit = size
	filters.Offset = (page - 1) * size

	restrictions, err := h.restrictionService.ListByTeacher(c.Request.Context(), teacherID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, restrictions)
}
