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

// QuartersService is the quarters use case behind QuartersController
type QuartersService interface {
	List(ctx context.Context, actor *auth.Principal, page helpers.PageRequest) (*services.Page[models.Quarters], error)
	ListByFacility(ctx context.Context, actor *auth.Principal, facilityLookup slug.Lookup, page helpers.PageRequest) (*services.Page[models.Quarters], error)
	ListByType(ctx context.Context, actor *auth.Principal, typeLookup slug.Lookup, page helpers.PageRequest) (*services.Page[models.Quarters], error)
	Get(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.Quarters, error)
	Create(ctx context.Context, actor *auth.Principal, facilityLookup slug.Lookup, req dto.CreateQuartersRequest) (*models.Quarters, error)
	Update(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, req dto.UpdateQuartersRequest) (*models.Quarters, error)
	Delete(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) error
}

var _ QuartersService = (*services.QuartersService)(nil)

// QuartersController handles quarters endpoints
type QuartersController struct {
	quartersService QuartersService
}

// NewQuartersController creates a new QuartersController
func NewQuartersController(quartersService QuartersService) *QuartersController {
	return &QuartersController{quartersService: quartersService}
}

func (c *QuartersController) respondPage(ctx *gin.Context, page *services.Page[models.Quarters], err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, paginated(page, dto.FromQuartersList))
}

// ListQuarters lists the quarters of the current user's organization tree
// @Summary List quarters
// @Tags quarters
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.QuartersResponse}}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /quarters [get]
func (c *QuartersController) ListQuarters(ctx *gin.Context) {
	page, err := c.quartersService.List(ctx.Request.Context(), actor(ctx), helpers.ParsePaginationParams(ctx))
	c.respondPage(ctx, page, err)
}

// ListFacilityQuarters lists the quarters of a facility
// @Summary List facility quarters
// @Tags quarters
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.QuartersResponse}}
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /facilities/{facility}/quarters [get]
func (c *QuartersController) ListFacilityQuarters(ctx *gin.Context) {
	facility, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	page, err := c.quartersService.ListByFacility(ctx.Request.Context(), actor(ctx), facility, helpers.ParsePaginationParams(ctx))
	c.respondPage(ctx, page, err)
}

// ListTypeQuarters lists the quarters of one type
// @Summary List quarters of a type
// @Tags quarters
// @Produce json
// @Security BearerAuth
// @Param type path string true "Quarters type ID or slug"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.QuartersResponse}}
// @Failure 404 {object} dto.ErrorResponse "Quarters type not found"
// @Router /quarters-types/{type}/quarters [get]
func (c *QuartersController) ListTypeQuarters(ctx *gin.Context) {
	qt, ok := lookupParam(ctx, "type")
	if !ok {
		return
	}
	page, err := c.quartersService.ListByType(ctx.Request.Context(), actor(ctx), qt, helpers.ParsePaginationParams(ctx))
	c.respondPage(ctx, page, err)
}

// GetQuarters retrieves quarters by ID or slug
// @Summary Get quarters
// @Tags quarters
// @Produce json
// @Security BearerAuth
// @Param quarters path string true "Quarters ID or slug"
// @Success 200 {object} dto.APIResponse{data=dto.QuartersResponse}
// @Failure 404 {object} dto.ErrorResponse "Quarters not found"
// @Router /quarters/{quarters} [get]
func (c *QuartersController) GetQuarters(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "quarters")
	if !ok {
		return
	}
	q, err := c.quartersService.Get(ctx.Request.Context(), actor(ctx), lookup)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.FromQuarters(q))
}

// CreateQuarters creates quarters in a facility
// @Summary Create quarters
// @Tags quarters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param request body dto.CreateQuartersRequest true "Quarters"
// @Success 201 {object} dto.APIResponse{data=dto.QuartersResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /facilities/{facility}/quarters [post]
func (c *QuartersController) CreateQuarters(ctx *gin.Context) {
	facility, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	var req dto.CreateQuartersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	q, err := c.quartersService.Create(ctx.Request.Context(), actor(ctx), facility, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, dto.FromQuarters(q))
}

// UpdateQuarters updates quarters
// @Summary Update quarters
// @Tags quarters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quarters path string true "Quarters ID or slug"
// @Param request body dto.UpdateQuartersRequest true "Quarters"
// @Success 200 {object} dto.APIResponse{data=dto.QuartersResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Capacity below occupancy"
// @Router /quarters/{quarters} [put]
func (c *QuartersController) UpdateQuarters(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "quarters")
	if !ok {
		return
	}
	var req dto.UpdateQuartersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	q, err := c.quartersService.Update(ctx.Request.Context(), actor(ctx), lookup, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.FromQuarters(q))
}

// DeleteQuarters soft-deletes quarters
// @Summary Delete quarters
// @Tags quarters
// @Produce json
// @Security BearerAuth
// @Param quarters path string true "Quarters ID or slug"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Quarters not found"
// @Router /quarters/{quarters} [delete]
func (c *QuartersController) DeleteQuarters(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "quarters")
	if !ok {
		return
	}
	if err := c.quartersService.Delete(ctx.Request.Context(), actor(ctx), lookup); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Quarters deleted successfully")
}
