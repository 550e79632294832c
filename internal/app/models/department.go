package models

// Department represents an organizational subunit within a facility.
// Departments nest through ParentID; parent and child share a facility.
type Department struct {
	ID           int64  `json:"id" db:"id" example:"1"`
	FacilityID   int64  `json:"facilityId" db:"facility_id" example:"1"`
	ParentID     *int64 `json:"parentId,omitempty" db:"parent_id" example:"2"`
	Name         string `json:"name" db:"name" example:"Mathematics"`
	Slug         string `json:"slug" db:"slug" example:"mathematics"`
	Abbreviation string `json:"abbreviation" db:"abbreviation" example:"MATH"`
	Description  string `json:"description" db:"description"`
	ImageURL     string `json:"imageUrl,omitempty" db:"image_url"`
	IsActive     bool   `json:"isActive" db:"is_active" example:"true"`
	Audit
	SoftDelete

	FacilityName string `json:"facilityName,omitempty" db:"-"`
	FacilitySlug string `json:"facilitySlug,omitempty" db:"-"`
	ParentName   string `json:"parentName,omitempty" db:"-"`
}

// Path returns the canonical API path of the department, nested under its facility.
func (d *Department) Path() string {
	return APIPrefix + "/facilities/" + d.FacilitySlug + "/departments/" + d.Slug
}
