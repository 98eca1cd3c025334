package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-access-service/internal/config"
	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
	"github.com/SAP-F-2025/course-access-service/internal/services"
	"github.com/SAP-F-2025/course-access-service/internal/utils"
	"github.com/SAP-F-2025/course-access-service/internal/validator"
)

type HandlerManager struct {
	restrictionHandler *RestrictionHandler
	enrollmentHandler  *EnrollmentHandler
	authMiddleware     *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		restrictionHandler: NewRestrictionHandler(serviceManager.Restriction(), validator, logger),
		enrollmentHandler:  NewEnrollmentHandler(serviceManager.Enrollment(), validator, logger),
		authMiddleware:     authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Restriction routes - Teachers and Admins only
		restrictions := v1.Group("/restrictions")
		restrictions.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
		{
			restrictions.POST("", hm.restrictionHandler.CreateRestriction)
			restrictions.GET("", hm.restrictionHandler.ListRestrictions)
			restrictions.GET("/:id", hm.restrictionHandler.GetRestriction)
			restrictions.DELETE("/:id", hm.restrictionHandler.DeleteRestriction)
		}

		// Enrollment routes - All authenticated users; the service layer
		// enforces who may act on whose enrollment
		enrollments := v1.Group("/enrollments")
		{
			enrollments.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.enrollmentHandler.Enroll)
			enrollments.GET("", hm.enrollmentHandler.ListMyEnrollments)
			enrollments.DELETE("/:course_id", hm.enrollmentHandler.Unenroll)
			enrollments.GET("/:course_id/access", hm.enrollmentHandler.CheckAccess)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "course-access-service",
		})
	})
}
