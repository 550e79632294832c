package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/facilityhub/internal/app/controllers"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/middleware"
	"github.com/yigit/facilityhub/internal/pkg/logger"
)

// Controllers groups the HTTP handlers mounted under /api/v1.
type Controllers struct {
	Auth         *controllers.AuthController
	Organization *controllers.OrganizationController
	Facility     *controllers.FacilityController
	Department   *controllers.DepartmentController
	QuartersType *controllers.QuartersTypeController
	Quarters     *controllers.QuartersController
	Faculty      *controllers.FacultyController
	Settings     *controllers.SettingsController
	Image        *controllers.ImageController
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
		auth.POST("/register", c.Auth.Register)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	organizations := authenticated.Group("/organizations")
	{
		organizations.GET("", c.Organization.ListOrganizations)
		organizations.GET("/:org", c.Organization.GetOrganization)
		organizations.GET("/:org/facilities", c.Facility.ListOrganizationFacilities)
		organizations.GET("/:org/quarters-types", c.QuartersType.ListOrganizationQuartersTypes)
		organizations.GET("/:org/faculty", c.Faculty.ListOrganizationFaculty)
	}

	facilities := authenticated.Group("/facilities")
	{
		facilities.GET("", c.Facility.ListFacilities)
		facilities.POST("", c.Facility.CreateFacility)
		facilities.GET("/manage", c.Facility.ManageFacility)
		facilities.GET("/:facility", c.Facility.GetFacility)
		facilities.PUT("/:facility", c.Facility.UpdateFacility)
		facilities.DELETE("/:facility", c.Facility.DeleteFacility)
		facilities.PUT("/:facility/image", c.Image.UploadFacilityImage)
		facilities.GET("/:facility/root-organization", c.Facility.GetRootOrganization)

		facilities.GET("/:facility/departments", c.Department.ListFacilityDepartments)
		facilities.POST("/:facility/departments", c.Department.CreateDepartment)
		facilities.GET("/:facility/departments/:department", c.Department.GetFacilityDepartment)
		facilities.PUT("/:facility/departments/:department", c.Department.UpdateDepartment)
		facilities.DELETE("/:facility/departments/:department", c.Department.DeleteDepartment)

		facilities.GET("/:facility/quarters", c.Quarters.ListFacilityQuarters)
		facilities.POST("/:facility/quarters", c.Quarters.CreateQuarters)

		facilities.GET("/:facility/faculty", c.Faculty.ListFacilityFaculty)
	}

	departments := authenticated.Group("/departments")
	{
		departments.GET("", c.Department.ListDepartments)
		departments.GET("/:department", c.Department.GetDepartment)
	}

	quarters := authenticated.Group("/quarters")
	{
		quarters.GET("", c.Quarters.ListQuarters)
		quarters.GET("/:quarters", c.Quarters.GetQuarters)
		quarters.PUT("/:quarters", c.Quarters.UpdateQuarters)
		quarters.DELETE("/:quarters", c.Quarters.DeleteQuarters)
	}

	quartersTypes := authenticated.Group("/quarters-types")
	{
		quartersTypes.GET("", c.QuartersType.ListQuartersTypes)
		quartersTypes.POST("", c.QuartersType.CreateQuartersType)
		quartersTypes.GET("/:type", c.QuartersType.GetQuartersType)
		quartersTypes.PUT("/:type", c.QuartersType.UpdateQuartersType)
		quartersTypes.DELETE("/:type", c.QuartersType.DeleteQuartersType)
		quartersTypes.GET("/:type/quarters", c.Quarters.ListTypeQuarters)
	}

	faculty := authenticated.Group("/faculty")
	{
		faculty.GET("", c.Faculty.ListFaculty)
		faculty.GET("/widget", c.Faculty.FacultyWidget)
		faculty.GET("/:faculty", c.Faculty.GetFaculty)

		// Writes are refused early for non-admins; the service still checks the tree.
		admin := faculty.Group("")
		admin.Use(authMiddleware.FacultyAdminRequired())
		{
			admin.POST("", c.Faculty.CreateFaculty)
			admin.GET("/manage", c.Faculty.ManageFaculty)
			admin.PUT("/:faculty", c.Faculty.UpdateFaculty)
			admin.DELETE("/:faculty", c.Faculty.DeleteFaculty)
			admin.POST("/:faculty/promote", c.Faculty.PromoteFaculty)
			admin.POST("/:faculty/department", c.Faculty.AssignFacultyDepartment)
			admin.POST("/:faculty/quarters", c.Faculty.ChangeFacultyQuarters)
		}
	}

	// GET /settings/:kind/:id/chain is served by GetSetting.
	settings := authenticated.Group("/settings/:kind/:id")
	{
		settings.GET("", c.Settings.GetEffectiveSettings)
		settings.GET("/:key", c.Settings.GetSetting)
		settings.PUT("/:key", c.Settings.PutSetting)
		settings.DELETE("/:key", c.Settings.DeleteSetting)
	}
}

// SetupHealth registers the liveness endpoint backed by a database ping.
func SetupHealth(router *gin.Engine, db Pinger) {
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Database unavailable")))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})
}
