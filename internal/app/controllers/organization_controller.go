package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/services"
	"github.com/yigit/facilityhub/internal/middleware"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// OrganizationService is the read side of organizations
type OrganizationService interface {
	Get(ctx context.Context, lookup slug.Lookup) (*models.Organization, error)
	List(ctx context.Context, page helpers.PageRequest) (*services.Page[models.Organization], error)
}

var _ OrganizationService = (*services.OrganizationService)(nil)

// OrganizationController handles organization lookups
type OrganizationController struct {
	orgService OrganizationService
}

// NewOrganizationController creates a new OrganizationController
func NewOrganizationController(orgService OrganizationService) *OrganizationController {
	return &OrganizationController{orgService: orgService}
}

func fromOrganizations(items []*models.Organization) []dto.OrganizationResponse {
	out := make([]dto.OrganizationResponse, 0, len(items))
	for _, o := range items {
		out = append(out, dto.FromOrganization(o))
	}
	return out
}

// ListOrganizations lists organizations
// @Summary List organizations
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.OrganizationResponse}}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /organizations [get]
func (c *OrganizationController) ListOrganizations(ctx *gin.Context) {
	page, err := c.orgService.List(ctx.Request.Context(), helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, paginated(page, fromOrganizations))
}

// GetOrganization retrieves an organization by ID or slug
// @Summary Get organization
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param org path string true "Organization ID or slug"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{org} [get]
func (c *OrganizationController) GetOrganization(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "org")
	if !ok {
		return
	}
	org, err := c.orgService.Get(ctx.Request.Context(), lookup)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.FromOrganization(org))
}
