package dto

import (
	"time"

	"github.com/yigit/facilityhub/internal/app/models"
)

// CreateDepartmentRequest represents department creation data. The facility comes from the path.
type CreateDepartmentRequest struct {
	ParentID     *int64 `json:"parentId" binding:"omitempty,gt=0"`
	Name         string `json:"name" binding:"required,min=2,max=100" example:"Mathematics"`
	Slug         string `json:"slug" binding:"omitempty,max=50,slug" example:"mathematics"`
	Abbreviation string `json:"abbreviation" binding:"max=50" example:"MATH"`
	Description  string `json:"description" binding:"max=2000"`
	ImageURL     string `json:"imageUrl" binding:"omitempty,uri,max=500"`
	IsActive     *bool  `json:"isActive"`
}

// UpdateDepartmentRequest represents department update data
type UpdateDepartmentRequest CreateDepartmentRequest

// DepartmentResponse represents a department row. Title is the facility's label for departments.
type DepartmentResponse struct {
	ID           int64        `json:"id" example:"1"`
	FacilityID   int64        `json:"facilityId" example:"1"`
	FacilityName string       `json:"facilityName,omitempty" example:"Main Campus"`
	ParentID     *int64       `json:"parentId,omitempty"`
	ParentName   string       `json:"parentName,omitempty"`
	Name         string       `json:"name" example:"Mathematics"`
	Slug         string       `json:"slug" example:"mathematics"`
	Abbreviation string       `json:"abbreviation" example:"MATH"`
	Description  string       `json:"description"`
	ImageURL     string       `json:"imageUrl,omitempty"`
	IsActive     bool         `json:"isActive" example:"true"`
	Title        string       `json:"title,omitempty" example:"Department"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Path         string       `json:"path" example:"/api/v1/facilities/main-campus/departments/mathematics"`
	Actions      []ActionLink `json:"actions,omitempty"`
}

// FromDepartment converts a models.Department to a DepartmentResponse
func FromDepartment(d *models.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:           d.ID,
		FacilityID:   d.FacilityID,
		FacilityName: d.FacilityName,
		ParentID:     d.ParentID,
		ParentName:   d.ParentName,
		Name:         d.Name,
		Slug:         d.Slug,
		Abbreviation: d.Abbreviation,
		Description:  d.Description,
		ImageURL:     d.ImageURL,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		Path:         d.Path(),
		Actions:      RowActions(d.Path()),
	}
}

// FromDepartments converts a slice of departments
func FromDepartments(items []*models.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(items))
	for _, d := range items {
		out = append(out, FromDepartment(d))
	}
	return out
}
