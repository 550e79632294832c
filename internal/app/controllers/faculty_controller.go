package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/services"
	"github.com/yigit/facilityhub/internal/middleware"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// FacultyService is the faculty use case behind FacultyController
type FacultyService interface {
	List(ctx context.Context, actor *auth.Principal, facility *slug.Lookup, page helpers.PageRequest) (*services.Page[models.FacultyProfile], error)
	ListByOrganization(ctx context.Context, orgLookup slug.Lookup, page helpers.PageRequest) (*services.Page[models.FacultyProfile], error)
	ListByFacility(ctx context.Context, actor *auth.Principal, facilityLookup slug.Lookup, page helpers.PageRequest) (*services.Page[models.FacultyProfile], error)
	Widget(ctx context.Context, actor *auth.Principal) (*services.Page[models.FacultyProfile], error)
	Manage(ctx context.Context, actor *auth.Principal, page helpers.PageRequest) (*services.Page[models.FacultyProfile], error)
	Get(ctx context.Context, lookup slug.Lookup) (*models.FacultyProfile, error)
	Create(ctx context.Context, actor *auth.Principal, req dto.CreateFacultyRequest) (*models.FacultyProfile, error)
	Update(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, req dto.UpdateFacultyRequest) (*models.FacultyProfile, error)
	Promote(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, isAdmin bool) (*models.FacultyProfile, error)
	AssignDepartment(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, departmentID *int64) (*models.FacultyProfile, error)
	ChangeQuarters(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, quartersID *int64) (*models.FacultyProfile, error)
	Delete(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) error
}

var _ FacultyService = (*services.FacultyService)(nil)

// FacultyController handles faculty member endpoints
type FacultyController struct {
	facultyService FacultyService
}

// NewFacultyController creates a new FacultyController
func NewFacultyController(facultyService FacultyService) *FacultyController {
	return &FacultyController{facultyService: facultyService}
}

func (c *FacultyController) respondPage(ctx *gin.Context, page *services.Page[models.FacultyProfile], err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, paginated(page, dto.FromFacultyProfiles))
}

func (c *FacultyController) respondProfile(ctx *gin.Context, status int, profile *models.FacultyProfile, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(status, dto.NewSuccessResponse(dto.FromFacultyProfile(profile)))
}

// ListFaculty lists faculty members
// @Summary List faculty
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param facility query string false "Limit to a facility (ID or slug)"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.FacultyResponse}}
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /faculty [get]
func (c *FacultyController) ListFaculty(ctx *gin.Context) {
	var facility *slug.Lookup
	if raw := ctx.Query("facility"); raw != "" {
		lookup, err := slug.ParseLookup(raw)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid facility identifier").WithField("facility")
			ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		facility = &lookup
	}
	page, err := c.facultyService.List(ctx.Request.Context(), actor(ctx), facility, helpers.ParsePaginationParams(ctx))
	c.respondPage(ctx, page, err)
}

// ListOrganizationFaculty lists the faculty of an organization and its children
// @Summary List organization faculty
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param org path string true "Organization ID or slug"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.FacultyResponse}}
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{org}/faculty [get]
func (c *FacultyController) ListOrganizationFaculty(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "org")
	if !ok {
		return
	}
	page, err := c.facultyService.ListByOrganization(ctx.Request.Context(), lookup, helpers.ParsePaginationParams(ctx))
	c.respondPage(ctx, page, err)
}

// ListFacilityFaculty lists the faculty of a facility
// @Summary List facility faculty
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.FacultyResponse}}
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /facilities/{facility}/faculty [get]
func (c *FacultyController) ListFacilityFaculty(ctx *gin.Context) {
	facility, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	page, err := c.facultyService.ListByFacility(ctx.Request.Context(), actor(ctx), facility, helpers.ParsePaginationParams(ctx))
	c.respondPage(ctx, page, err)
}

// FacultyWidget lists the first page of faculty of the current user's facility
// @Summary Faculty widget
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.FacultyResponse}}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /faculty/widget [get]
func (c *FacultyController) FacultyWidget(ctx *gin.Context) {
	page, err := c.facultyService.Widget(ctx.Request.Context(), actor(ctx))
	c.respondPage(ctx, page, err)
}

// ManageFaculty lists the faculty of the admin's own facility
// @Summary Manage faculty
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.FacultyResponse}}
// @Failure 403 {object} dto.ErrorResponse "Not a faculty admin"
// @Failure 404 {object} dto.ErrorResponse "Facility not found for current user"
// @Router /faculty/manage [get]
func (c *FacultyController) ManageFaculty(ctx *gin.Context) {
	pageReq := helpers.ParsePaginationParams(ctx)
	page, err := c.facultyService.Manage(ctx.Request.Context(), actor(ctx), helpers.NewPageRequest(pageReq.Page, helpers.ManagePageSize))
	c.respondPage(ctx, page, err)
}

// GetFaculty retrieves a faculty member by profile ID or username
// @Summary Get faculty member
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param faculty path string true "Profile ID or username"
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse}
// @Failure 404 {object} dto.ErrorResponse "Faculty member not found"
// @Router /faculty/{faculty} [get]
func (c *FacultyController) GetFaculty(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "faculty")
	if !ok {
		return
	}
	profile, err := c.facultyService.Get(ctx.Request.Context(), lookup)
	c.respondProfile(ctx, http.StatusOK, profile, err)
}

// CreateFaculty creates a faculty user with its profile
// @Summary Create faculty member
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFacultyRequest true "Faculty member"
// @Success 201 {object} dto.APIResponse{data=dto.FacultyResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Username or email already exists"
// @Router /faculty [post]
func (c *FacultyController) CreateFaculty(ctx *gin.Context) {
	var req dto.CreateFacultyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	profile, err := c.facultyService.Create(ctx.Request.Context(), actor(ctx), req)
	c.respondProfile(ctx, http.StatusCreated, profile, err)
}

// UpdateFaculty updates a faculty member
// @Summary Update faculty member
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param faculty path string true "Profile ID or username"
// @Param request body dto.UpdateFacultyRequest true "Faculty member"
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /faculty/{faculty} [put]
func (c *FacultyController) UpdateFaculty(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "faculty")
	if !ok {
		return
	}
	var req dto.UpdateFacultyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	profile, err := c.facultyService.Update(ctx.Request.Context(), actor(ctx), lookup, req)
	c.respondProfile(ctx, http.StatusOK, profile, err)
}

// PromoteFaculty grants or revokes the admin flag
// @Summary Promote or demote faculty member
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param faculty path string true "Profile ID or username"
// @Param request body dto.PromoteFacultyRequest true "Admin flag"
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or self-demotion"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /faculty/{faculty}/promote [post]
func (c *FacultyController) PromoteFaculty(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "faculty")
	if !ok {
		return
	}
	var req dto.PromoteFacultyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	profile, err := c.facultyService.Promote(ctx.Request.Context(), actor(ctx), lookup, *req.IsAdmin)
	c.respondProfile(ctx, http.StatusOK, profile, err)
}

// AssignFacultyDepartment sets or clears the department of a faculty member
// @Summary Assign department
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param faculty path string true "Profile ID or username"
// @Param request body dto.AssignDepartmentRequest true "Department, null to clear"
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse}
// @Failure 400 {object} dto.ErrorResponse "Department outside the member's facility"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /faculty/{faculty}/department [post]
func (c *FacultyController) AssignFacultyDepartment(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "faculty")
	if !ok {
		return
	}
	var req dto.AssignDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	profile, err := c.facultyService.AssignDepartment(ctx.Request.Context(), actor(ctx), lookup, req.DepartmentID)
	c.respondProfile(ctx, http.StatusOK, profile, err)
}

// ChangeFacultyQuarters sets or clears the quarters of a faculty member
// @Summary Change quarters
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param faculty path string true "Profile ID or username"
// @Param request body dto.ChangeQuartersRequest true "Quarters, null to clear"
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse}
// @Failure 400 {object} dto.ErrorResponse "Quarters outside the member's facility"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Quarters are full"
// @Router /faculty/{faculty}/quarters [post]
func (c *FacultyController) ChangeFacultyQuarters(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "faculty")
	if !ok {
		return
	}
	var req dto.ChangeQuartersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	profile, err := c.facultyService.ChangeQuarters(ctx.Request.Context(), actor(ctx), lookup, req.QuartersID)
	c.respondProfile(ctx, http.StatusOK, profile, err)
}

// DeleteFaculty deletes a faculty member
// @Summary Delete faculty member
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param faculty path string true "Profile ID or username"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Faculty member not found"
// @Router /faculty/{faculty} [delete]
func (c *FacultyController) DeleteFaculty(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "faculty")
	if !ok {
		return
	}
	if err := c.facultyService.Delete(ctx.Request.Context(), actor(ctx), lookup); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Faculty member deleted successfully")
}
