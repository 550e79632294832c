package dto

import "github.com/yigit/facilityhub/internal/app/models"

// OrganizationResponse represents an organization
type OrganizationResponse struct {
	ID          int64  `json:"id" example:"1"`
	ParentID    *int64 `json:"parentId,omitempty"`
	Name        string `json:"name" example:"Northfield Academy"`
	Slug        string `json:"slug" example:"northfield-academy"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive" example:"true"`
	Path        string `json:"path" example:"/api/v1/organizations/northfield-academy"`
}

// FromOrganization converts a models.Organization to an OrganizationResponse
func FromOrganization(o *models.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:          o.ID,
		ParentID:    o.ParentID,
		Name:        o.Name,
		Slug:        o.Slug,
		Description: o.Description,
		IsActive:    o.IsActive,
		Path:        o.Path(),
	}
}
