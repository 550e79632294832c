package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/services"
	"github.com/yigit/facilityhub/internal/middleware"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// QuartersTypeService is the quarters type use case behind QuartersTypeController
type QuartersTypeService interface {
	List(ctx context.Context, actor *auth.Principal, page helpers.PageRequest) (*services.Page[models.QuartersType], error)
	ListByOrganization(ctx context.Context, orgLookup slug.Lookup, page helpers.PageRequest) (*services.Page[models.QuartersType], error)
	Get(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.QuartersType, error)
	Create(ctx context.Context, actor *auth.Principal, req dto.CreateQuartersTypeRequest) (*models.QuartersType, error)
	Update(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, req dto.UpdateQuartersTypeRequest) (*models.QuartersType, error)
	Delete(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) error
}

var _ QuartersTypeService = (*services.QuartersTypeService)(nil)

// QuartersTypeController handles quarters type endpoints
type QuartersTypeController struct {
	typeService QuartersTypeService
}

// NewQuartersTypeController creates a new QuartersTypeController
func NewQuartersTypeController(typeService QuartersTypeService) *QuartersTypeController {
	return &QuartersTypeController{typeService: typeService}
}

// ListQuartersTypes lists the quarters types visible to the current user
// @Summary List quarters types
// @Description Lists the types of the user's organization tree together with shared types
// @Tags quarters-types
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.QuartersTypeResponse}}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /quarters-types [get]
func (c *QuartersTypeController) ListQuartersTypes(ctx *gin.Context) {
	page, err := c.typeService.List(ctx.Request.Context(), actor(ctx), helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, paginated(page, dto.FromQuartersTypes))
}

// ListOrganizationQuartersTypes lists the types owned by one organization
// @Summary List organization quarters types
// @Tags quarters-types
// @Produce json
// @Security BearerAuth
// @Param org path string true "Organization ID or slug"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.QuartersTypeResponse}}
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{org}/quarters-types [get]
func (c *QuartersTypeController) ListOrganizationQuartersTypes(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "org")
	if !ok {
		return
	}
	page, err := c.typeService.ListByOrganization(ctx.Request.Context(), lookup, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, paginated(page, dto.FromQuartersTypes))
}

// GetQuartersType retrieves a quarters type
// @Summary Get quarters type
// @Tags quarters-types
// @Produce json
// @Security BearerAuth
// @Param type path string true "Quarters type ID or slug"
// @Success 200 {object} dto.APIResponse{data=dto.QuartersTypeResponse}
// @Failure 404 {object} dto.ErrorResponse "Quarters type not found"
// @Router /quarters-types/{type} [get]
func (c *QuartersTypeController) GetQuartersType(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "type")
	if !ok {
		return
	}
	qt, err := c.typeService.Get(ctx.Request.Context(), actor(ctx), lookup)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.FromQuartersType(qt))
}

// CreateQuartersType creates a quarters type
// @Summary Create quarters type
// @Tags quarters-types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateQuartersTypeRequest true "Quarters type"
// @Success 201 {object} dto.APIResponse{data=dto.QuartersTypeResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /quarters-types [post]
func (c *QuartersTypeController) CreateQuartersType(ctx *gin.Context) {
	var req dto.CreateQuartersTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	qt, err := c.typeService.Create(ctx.Request.Context(), actor(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, dto.FromQuartersType(qt))
}

// UpdateQuartersType updates a quarters type
// @Summary Update quarters type
// @Tags quarters-types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Quarters type ID or slug"
// @Param request body dto.UpdateQuartersTypeRequest true "Quarters type"
// @Success 200 {object} dto.APIResponse{data=dto.QuartersTypeResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden or shared type"
// @Failure 404 {object} dto.ErrorResponse "Quarters type not found"
// @Router /quarters-types/{type} [put]
func (c *QuartersTypeController) UpdateQuartersType(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "type")
	if !ok {
		return
	}
	var req dto.UpdateQuartersTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	qt, err := c.typeService.Update(ctx.Request.Context(), actor(ctx), lookup, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.FromQuartersType(qt))
}

// DeleteQuartersType soft-deletes a quarters type
// @Summary Delete quarters type
// @Tags quarters-types
// @Produce json
// @Security BearerAuth
// @Param type path string true "Quarters type ID or slug"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Forbidden or shared type"
// @Failure 404 {object} dto.ErrorResponse "Quarters type not found"
// @Failure 409 {object} dto.ErrorResponse "Type still referenced by quarters"
// @Router /quarters-types/{type} [delete]
func (c *QuartersTypeController) DeleteQuartersType(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "type")
	if !ok {
		return
	}
	if err := c.typeService.Delete(ctx.Request.Context(), actor(ctx), lookup); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Quarters type deleted successfully")
}
