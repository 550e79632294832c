package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/services"
	"github.com/yigit/facilityhub/internal/middleware"
	"github.com/yigit/facilityhub/internal/pkg/filestorage"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// FacilityService is the facility use case behind FacilityController
type FacilityService interface {
	List(ctx context.Context, page helpers.PageRequest) (*services.Page[models.Facility], error)
	ListByOrganization(ctx context.Context, orgLookup slug.Lookup, page helpers.PageRequest) (*services.Page[models.Facility], error)
	Detail(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, page helpers.PageRequest) (*services.FacilityDetail, error)
	Manage(ctx context.Context, actor *auth.Principal, page helpers.PageRequest) (*services.FacilityDetail, error)
	Create(ctx context.Context, actor *auth.Principal, req dto.CreateFacilityRequest) (*models.Facility, error)
	RootOrganization(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.Organization, error)
	Update(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, req dto.UpdateFacilityRequest) (*models.Facility, string, error)
	Delete(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) error
}

var _ FacilityService = (*services.FacilityService)(nil)

// FacilityController handles facility endpoints
type FacilityController struct {
	facilityService FacilityService
	titles          DepartmentTitler
	images          filestorage.ImageStore
}

// NewFacilityController creates a new FacilityController. titles labels the
// departments embedded in facility pages; images removes files an update
// replaces or clears.
func NewFacilityController(facilityService FacilityService, titles DepartmentTitler, images filestorage.ImageStore) *FacilityController {
	return &FacilityController{facilityService: facilityService, titles: titles, images: images}
}

func (c *FacilityController) detailResponse(ctx context.Context, d *services.FacilityDetail) dto.FacilityDetailResponse {
	resp := dto.FacilityDetailResponse{
		FacilityResponse: dto.FromFacility(d.Facility),
		Departments: paginated(d.Departments, func(items []*models.Department) []dto.DepartmentResponse {
			return departmentResponses(ctx, c.titles, items)
		}),
		Quarters: paginated(d.Quarters, dto.FromQuartersList),
		Faculty:  paginated(d.Faculty, dto.FromFacultyProfiles),
	}
	if d.RootOrganization != nil {
		root := dto.FromOrganization(d.RootOrganization)
		resp.RootOrganization = &root
	}
	return resp
}

// ListFacilities lists every facility
// @Summary List facilities
// @Tags facilities
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.FacilityResponse}}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /facilities [get]
func (c *FacilityController) ListFacilities(ctx *gin.Context) {
	page, err := c.facilityService.List(ctx.Request.Context(), helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, paginated(page, dto.FromFacilities))
}

// ListOrganizationFacilities lists the facilities of one organization
// @Summary List organization facilities
// @Tags facilities
// @Produce json
// @Security BearerAuth
// @Param org path string true "Organization ID or slug"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.FacilityResponse}}
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{org}/facilities [get]
func (c *FacilityController) ListOrganizationFacilities(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "org")
	if !ok {
		return
	}
	page, err := c.facilityService.ListByOrganization(ctx.Request.Context(), lookup, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, paginated(page, dto.FromFacilities))
}

// GetFacility returns a facility with its departments, quarters and faculty
// @Summary Get facility
// @Tags facilities
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param page query int false "Page of the embedded tables" default(1)
// @Param size query int false "Page size of the embedded tables" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.FacilityDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /facilities/{facility} [get]
func (c *FacilityController) GetFacility(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	detail, err := c.facilityService.Detail(ctx.Request.Context(), actor(ctx), lookup, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, c.detailResponse(ctx.Request.Context(), detail))
}

// ManageFacility returns the admin's own facility page
// @Summary Manage own facility
// @Description Returns the facility of the current faculty admin with short embedded tables
// @Tags facilities
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page of the embedded tables" default(1)
// @Success 200 {object} dto.APIResponse{data=dto.FacilityDetailResponse}
// @Failure 403 {object} dto.ErrorResponse "Not a faculty admin"
// @Failure 404 {object} dto.ErrorResponse "Facility not found for current user"
// @Router /facilities/manage [get]
func (c *FacilityController) ManageFacility(ctx *gin.Context) {
	pageReq := helpers.ParsePaginationParams(ctx)
	detail, err := c.facilityService.Manage(ctx.Request.Context(), actor(ctx), helpers.NewPageRequest(pageReq.Page, helpers.ManagePageSize))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, c.detailResponse(ctx.Request.Context(), detail))
}

// CreateFacility creates a facility
// @Summary Create facility
// @Tags facilities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFacilityRequest true "Facility"
// @Success 201 {object} dto.APIResponse{data=dto.FacilityResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Facility already exists"
// @Router /facilities [post]
func (c *FacilityController) CreateFacility(ctx *gin.Context) {
	var req dto.CreateFacilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	facility, err := c.facilityService.Create(ctx.Request.Context(), actor(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, dto.FromFacility(facility))
}

// UpdateFacility updates a facility
// @Summary Update facility
// @Tags facilities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param request body dto.UpdateFacilityRequest true "Facility"
// @Success 200 {object} dto.APIResponse{data=dto.FacilityResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /facilities/{facility} [put]
func (c *FacilityController) UpdateFacility(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	var req dto.UpdateFacilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	facility, replaced, err := c.facilityService.Update(ctx.Request.Context(), actor(ctx), lookup, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if replaced != "" {
		discardImage(ctx.Request.Context(), c.images, replaced)
	}
	respondOK(ctx, dto.FromFacility(facility))
}

// GetRootOrganization returns the top organization of a facility's tree
// @Summary Get facility root organization
// @Tags facilities
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /facilities/{facility}/root-organization [get]
func (c *FacilityController) GetRootOrganization(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	root, err := c.facilityService.RootOrganization(ctx.Request.Context(), actor(ctx), lookup)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.FromOrganization(root))
}

// DeleteFacility soft-deletes a facility
// @Summary Delete facility
// @Tags facilities
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /facilities/{facility} [delete]
func (c *FacilityController) DeleteFacility(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	if err := c.facilityService.Delete(ctx.Request.Context(), actor(ctx), lookup); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Facility deleted successfully")
}
