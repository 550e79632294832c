package dto

import (
	"time"

	"github.com/yigit/facilityhub/internal/app/models"
)

// CreateQuartersTypeRequest represents quarters type creation data
type CreateQuartersTypeRequest struct {
	OrganizationID *int64 `json:"organizationId" binding:"omitempty,gt=0" example:"1"`
	ParentID       *int64 `json:"parentId" binding:"omitempty,gt=0"`
	Name           string `json:"name" binding:"required,min=2,max=100" example:"Staff Flat"`
	Slug           string `json:"slug" binding:"omitempty,max=50,slug" example:"staff-flat"`
	Description    string `json:"description" binding:"max=2000"`
	ImageURL       string `json:"imageUrl" binding:"omitempty,uri,max=500"`
	IsActive       *bool  `json:"isActive"`
}

// UpdateQuartersTypeRequest represents quarters type update data
type UpdateQuartersTypeRequest struct {
	ParentID    *int64 `json:"parentId" binding:"omitempty,gt=0"`
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=50,slug"`
	Description string `json:"description" binding:"max=2000"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,uri,max=500"`
	IsActive    *bool  `json:"isActive"`
}

// QuartersTypeResponse represents a quarters type row
type QuartersTypeResponse struct {
	ID             int64        `json:"id" example:"1"`
	OrganizationID *int64       `json:"organizationId,omitempty" example:"1"`
	ParentID       *int64       `json:"parentId,omitempty"`
	Name           string       `json:"name" example:"Staff Flat"`
	Slug           string       `json:"slug" example:"staff-flat"`
	Description    string       `json:"description"`
	ImageURL       string       `json:"imageUrl,omitempty"`
	IsActive       bool         `json:"isActive" example:"true"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	Path           string       `json:"path" example:"/api/v1/quarters-types/staff-flat"`
	Actions        []ActionLink `json:"actions,omitempty"`
}

// FromQuartersType converts a models.QuartersType to a QuartersTypeResponse
func FromQuartersType(t *models.QuartersType) QuartersTypeResponse {
	return QuartersTypeResponse{
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		ParentID:       t.ParentID,
		Name:           t.Name,
		Slug:           t.Slug,
		Description:    t.Description,
		ImageURL:       t.ImageURL,
		IsActive:       t.IsActive,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Path:           t.Path(),
		Actions:        RowActions(t.Path()),
	}
}

// FromQuartersTypes converts a slice of quarters types
func FromQuartersTypes(items []*models.QuartersType) []QuartersTypeResponse {
	out := make([]QuartersTypeResponse, 0, len(items))
	for _, t := range items {
		out = append(out, FromQuartersType(t))
	}
	return out
}

// CreateQuartersRequest represents quarters creation data. The facility comes from the path.
type CreateQuartersRequest struct {
	TypeID      int64  `json:"typeId" binding:"required,gt=0" example:"1"`
	ParentID    *int64 `json:"parentId" binding:"omitempty,gt=0"`
	Name        string `json:"name" binding:"required,min=2,max=100" example:"Block A - 101"`
	Slug        string `json:"slug" binding:"omitempty,max=50,slug"`
	Description string `json:"description" binding:"max=2000"`
	Capacity    int    `json:"capacity" binding:"gte=0,lte=10000" example:"4"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,uri,max=500"`
	IsActive    *bool  `json:"isActive"`
}

// UpdateQuartersRequest represents quarters update data
type UpdateQuartersRequest CreateQuartersRequest

// QuartersResponse represents a quarters row
type QuartersResponse struct {
	ID           int64        `json:"id" example:"1"`
	FacilityID   int64        `json:"facilityId" example:"1"`
	FacilityName string       `json:"facilityName,omitempty"`
	TypeID       int64        `json:"typeId" example:"1"`
	TypeName     string       `json:"typeName,omitempty" example:"Staff Flat"`
	ParentID     *int64       `json:"parentId,omitempty"`
	Name         string       `json:"name" example:"Block A - 101"`
	Slug         string       `json:"slug" example:"block-a-101"`
	Description  string       `json:"description"`
	Capacity     int          `json:"capacity" example:"4"`
	Occupancy    int          `json:"occupancy" example:"2"`
	Available    int          `json:"available" example:"2"`
	ImageURL     string       `json:"imageUrl,omitempty"`
	IsActive     bool         `json:"isActive" example:"true"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Path         string       `json:"path" example:"/api/v1/quarters/block-a-101"`
	Actions      []ActionLink `json:"actions,omitempty"`
}

// FromQuarters converts a models.Quarters to a QuartersResponse
func FromQuarters(q *models.Quarters) QuartersResponse {
	return QuartersResponse{
		ID:           q.ID,
		FacilityID:   q.FacilityID,
		FacilityName: q.FacilityName,
		TypeID:       q.TypeID,
		TypeName:     q.TypeName,
		ParentID:     q.ParentID,
		Name:         q.Name,
		Slug:         q.Slug,
		Description:  q.Description,
		Capacity:     q.Capacity,
		Occupancy:    q.Occupancy,
		Available:    q.Available(),
		ImageURL:     q.ImageURL,
		IsActive:     q.IsActive,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
		Path:         q.Path(),
		Actions:      RowActions(q.Path()),
	}
}

// FromQuartersList converts a slice of quarters
func FromQuartersList(items []*models.Quarters) []QuartersResponse {
	out := make([]QuartersResponse, 0, len(items))
	for _, q := range items {
		out = append(out, FromQuarters(q))
	}
	return out
}
