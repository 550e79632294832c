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

// DepartmentTitler returns the label a facility uses for its departments.
type DepartmentTitler interface {
	Title(ctx context.Context, d *models.Department) string
}

// DepartmentService is the department use case behind DepartmentController
type DepartmentService interface {
	DepartmentTitler
	List(ctx context.Context, page helpers.PageRequest) (*services.Page[models.Department], error)
	ListByFacility(ctx context.Context, actor *auth.Principal, facilityLookup slug.Lookup, page helpers.PageRequest) (*services.Page[models.Department], error)
	Get(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.Department, error)
	GetInFacility(ctx context.Context, actor *auth.Principal, facilityLookup, lookup slug.Lookup) (*models.Department, error)
	Create(ctx context.Context, actor *auth.Principal, facilityLookup slug.Lookup, req dto.CreateDepartmentRequest) (*models.Department, error)
	Update(ctx context.Context, actor *auth.Principal, facilityLookup, lookup slug.Lookup, req dto.UpdateDepartmentRequest) (*models.Department, error)
	Delete(ctx context.Context, actor *auth.Principal, facilityLookup, lookup slug.Lookup) error
}

var _ DepartmentService = (*services.DepartmentService)(nil)

// DepartmentController handles department-related operations
type DepartmentController struct {
	departmentService DepartmentService
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(departmentService DepartmentService) *DepartmentController {
	return &DepartmentController{departmentService: departmentService}
}

func departmentResponse(ctx context.Context, titles DepartmentTitler, d *models.Department) dto.DepartmentResponse {
	resp := dto.FromDepartment(d)
	if titles != nil {
		resp.Title = titles.Title(ctx, d)
	}
	return resp
}

// departmentResponses resolves the title once per facility.
func departmentResponses(ctx context.Context, titles DepartmentTitler, items []*models.Department) []dto.DepartmentResponse {
	out := make([]dto.DepartmentResponse, 0, len(items))
	byFacility := make(map[int64]string)
	for _, d := range items {
		resp := dto.FromDepartment(d)
		if titles != nil {
			title, ok := byFacility[d.FacilityID]
			if !ok {
				title = titles.Title(ctx, d)
				byFacility[d.FacilityID] = title
			}
			resp.Title = title
		}
		out = append(out, resp)
	}
	return out
}

func (c *DepartmentController) page(ctx *gin.Context, page *services.Page[models.Department]) dto.PaginatedResponse {
	return paginated(page, func(items []*models.Department) []dto.DepartmentResponse {
		return departmentResponses(ctx.Request.Context(), c.departmentService, items)
	})
}

// ListDepartments lists every department
// @Summary List departments
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.DepartmentResponse}}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /departments [get]
func (c *DepartmentController) ListDepartments(ctx *gin.Context) {
	page, err := c.departmentService.List(ctx.Request.Context(), helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, c.page(ctx, page))
}

// GetDepartment retrieves a department by ID or slug
// @Summary Get department
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param department path string true "Department ID or slug"
// @Success 200 {object} dto.APIResponse{data=dto.DepartmentResponse}
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /departments/{department} [get]
func (c *DepartmentController) GetDepartment(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "department")
	if !ok {
		return
	}
	department, err := c.departmentService.Get(ctx.Request.Context(), actor(ctx), lookup)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, departmentResponse(ctx.Request.Context(), c.departmentService, department))
}

// ListFacilityDepartments lists the departments of a facility
// @Summary List facility departments
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.DepartmentResponse}}
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /facilities/{facility}/departments [get]
func (c *DepartmentController) ListFacilityDepartments(ctx *gin.Context) {
	facility, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	page, err := c.departmentService.ListByFacility(ctx.Request.Context(), actor(ctx), facility, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, c.page(ctx, page))
}

// GetFacilityDepartment retrieves a department of a facility
// @Summary Get facility department
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param department path string true "Department ID or slug"
// @Success 200 {object} dto.APIResponse{data=dto.DepartmentResponse}
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /facilities/{facility}/departments/{department} [get]
func (c *DepartmentController) GetFacilityDepartment(ctx *gin.Context) {
	facility, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	lookup, ok := lookupParam(ctx, "department")
	if !ok {
		return
	}
	department, err := c.departmentService.GetInFacility(ctx.Request.Context(), actor(ctx), facility, lookup)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, departmentResponse(ctx.Request.Context(), c.departmentService, department))
}

// CreateDepartment creates a department in a facility
// @Summary Create department
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param request body dto.CreateDepartmentRequest true "Department"
// @Success 201 {object} dto.APIResponse{data=dto.DepartmentResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /facilities/{facility}/departments [post]
func (c *DepartmentController) CreateDepartment(ctx *gin.Context) {
	facility, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	var req dto.CreateDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	department, err := c.departmentService.Create(ctx.Request.Context(), actor(ctx), facility, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, departmentResponse(ctx.Request.Context(), c.departmentService, department))
}

// UpdateDepartment updates a department
// @Summary Update department
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param department path string true "Department ID or slug"
// @Param request body dto.UpdateDepartmentRequest true "Department"
// @Success 200 {object} dto.APIResponse{data=dto.DepartmentResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /facilities/{facility}/departments/{department} [put]
func (c *DepartmentController) UpdateDepartment(ctx *gin.Context) {
	facility, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	lookup, ok := lookupParam(ctx, "department")
	if !ok {
		return
	}
	var req dto.UpdateDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	department, err := c.departmentService.Update(ctx.Request.Context(), actor(ctx), facility, lookup, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, departmentResponse(ctx.Request.Context(), c.departmentService, department))
}

// DeleteDepartment soft-deletes a department
// @Summary Delete department
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param department path string true "Department ID or slug"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /facilities/{facility}/departments/{department} [delete]
func (c *DepartmentController) DeleteDepartment(ctx *gin.Context) {
	facility, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	lookup, ok := lookupParam(ctx, "department")
	if !ok {
		return
	}
	if err := c.departmentService.Delete(ctx.Request.Context(), actor(ctx), facility, lookup); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Department deleted successfully")
}
