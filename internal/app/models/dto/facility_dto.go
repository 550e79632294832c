package dto

import (
	"time"

	"github.com/yigit/facilityhub/internal/app/models"
)

// CreateFacilityRequest represents facility creation data
type CreateFacilityRequest struct {
	OrganizationID *int64 `json:"organizationId" binding:"omitempty,gt=0" example:"1"`
	Name           string `json:"name" binding:"required,min=2,max=100" example:"Main Campus"`
	Slug           string `json:"slug" binding:"omitempty,max=50,slug" example:"main-campus"`
	Description    string `json:"description" binding:"max=2000"`
	Address        string `json:"address" binding:"max=255" example:"1 College Road"`
	ImageURL       string `json:"imageUrl" binding:"omitempty,uri,max=500"`
	IsActive       *bool  `json:"isActive" example:"true"`
}

// UpdateFacilityRequest represents facility update data
type UpdateFacilityRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100" example:"Main Campus"`
	Slug        string `json:"slug" binding:"omitempty,max=50,slug" example:"main-campus"`
	Description string `json:"description" binding:"max=2000"`
	Address     string `json:"address" binding:"max=255"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,uri,max=500"`
	IsActive    *bool  `json:"isActive"`
}

// FacilityResponse represents a facility row
type FacilityResponse struct {
	ID               int64        `json:"id" example:"1"`
	OrganizationID   int64        `json:"organizationId" example:"1"`
	OrganizationName string       `json:"organizationName,omitempty" example:"Northfield Academy"`
	Name             string       `json:"name" example:"Main Campus"`
	Slug             string       `json:"slug" example:"main-campus"`
	Description      string       `json:"description"`
	Address          string       `json:"address"`
	ImageURL         string       `json:"imageUrl,omitempty"`
	IsActive         bool         `json:"isActive" example:"true"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
	Path             string       `json:"path" example:"/api/v1/facilities/main-campus"`
	Actions          []ActionLink `json:"actions,omitempty"`
}

// FacilityDetailResponse is a facility together with its embedded tables
type FacilityDetailResponse struct {
	FacilityResponse
	RootOrganization *OrganizationResponse `json:"rootOrganization,omitempty"`
	Departments      PaginatedResponse     `json:"departments"`
	Quarters         PaginatedResponse     `json:"quarters"`
	Faculty          PaginatedResponse     `json:"faculty"`
}

// FromFacility converts a models.Facility to a FacilityResponse
func FromFacility(f *models.Facility) FacilityResponse {
	return FacilityResponse{
		ID:               f.ID,
		OrganizationID:   f.OrganizationID,
		OrganizationName: f.OrganizationName,
		Name:             f.Name,
		Slug:             f.Slug,
		Description:      f.Description,
		Address:          f.Address,
		ImageURL:         f.ImageURL,
		IsActive:         f.IsActive,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
		Path:             f.Path(),
		Actions:          RowActions(f.Path()),
	}
}

// FromFacilities converts a slice of facilities
func FromFacilities(items []*models.Facility) []FacilityResponse {
	out := make([]FacilityResponse, 0, len(items))
	for _, f := range items {
		out = append(out, FromFacility(f))
	}
	return out
}
