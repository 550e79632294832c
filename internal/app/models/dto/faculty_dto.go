package dto

import (
	"time"

	"github.com/yigit/facilityhub/internal/app/models"
)

// CreateFacultyRequest creates a faculty user and profile in one step.
// When Password is empty the account gets an unusable random password.
type CreateFacultyRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=50,alphanum" example:"jdoe"`
	Email        string `json:"email" binding:"required,email,max=255" example:"jdoe@northfield.edu"`
	FirstName    string `json:"firstName" binding:"required,max=100" example:"John"`
	LastName     string `json:"lastName" binding:"required,max=100" example:"Doe"`
	Password     string `json:"password" binding:"omitempty,min=8,max=72"`
	IsAdmin      bool   `json:"isAdmin" example:"false"`
	FacilityID   *int64 `json:"facilityId" binding:"omitempty,gt=0" example:"1"`
	DepartmentID *int64 `json:"departmentId" binding:"omitempty,gt=0"`
	QuartersID   *int64 `json:"quartersId" binding:"omitempty,gt=0"`
	Address      string `json:"address" binding:"max=255"`
}

// UpdateFacultyRequest updates the user fields of a faculty member
type UpdateFacultyRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Address   string `json:"address" binding:"max=255"`
}

// PromoteFacultyRequest toggles the admin flag
type PromoteFacultyRequest struct {
	IsAdmin *bool `json:"isAdmin" binding:"required" example:"true"`
}

// AssignDepartmentRequest sets or clears (null) the faculty member's department
type AssignDepartmentRequest struct {
	DepartmentID *int64 `json:"departmentId" binding:"omitempty,gt=0" example:"1"`
}

// ChangeQuartersRequest sets or clears (null) the faculty member's quarters
type ChangeQuartersRequest struct {
	QuartersID *int64 `json:"quartersId" binding:"omitempty,gt=0" example:"1"`
}

// FacultyResponse represents a faculty profile row
type FacultyResponse struct {
	ID             int64         `json:"id" example:"1"`
	User           *UserResponse `json:"user,omitempty"`
	OrganizationID int64         `json:"organizationId" example:"1"`
	FacilityID     *int64        `json:"facilityId,omitempty"`
	FacilityName   string        `json:"facilityName,omitempty"`
	DepartmentID   *int64        `json:"departmentId,omitempty"`
	DepartmentName string        `json:"departmentName,omitempty"`
	QuartersID     *int64        `json:"quartersId,omitempty"`
	QuartersName   string        `json:"quartersName,omitempty"`
	Address        string        `json:"address"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	Path           string        `json:"path" example:"/api/v1/faculty/jdoe"`
	Actions        []ActionLink  `json:"actions,omitempty"`
}

// FromFacultyProfile converts a models.FacultyProfile to a FacultyResponse
func FromFacultyProfile(p *models.FacultyProfile) FacultyResponse {
	resp := FacultyResponse{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		FacilityID:     p.FacilityID,
		FacilityName:   p.FacilityName,
		DepartmentID:   p.DepartmentID,
		DepartmentName: p.DepartmentName,
		QuartersID:     p.QuartersID,
		QuartersName:   p.QuartersName,
		Address:        p.Address,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Path:           p.Path(),
		Actions:        RowActions(p.Path()),
	}
	if p.User != nil {
		u := FromUser(p.User)
		resp.User = &u
	}
	return resp
}

// FromFacultyProfiles converts a slice of faculty profiles
func FromFacultyProfiles(items []*models.FacultyProfile) []FacultyResponse {
	out := make([]FacultyResponse, 0, len(items))
	for _, p := range items {
		out = append(out, FromFacultyProfile(p))
	}
	return out
}
