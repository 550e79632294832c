package models

// QuartersType classifies quarters (dormitory, staff flat, ...). A type without
// an organization is shared by every organization.
type QuartersType struct {
	ID             int64  `json:"id" db:"id" example:"1"`
	OrganizationID *int64 `json:"organizationId,omitempty" db:"organization_id" example:"1"`
	ParentID       *int64 `json:"parentId,omitempty" db:"parent_id"`
	Name           string `json:"name" db:"name" example:"Staff Flat"`
	Slug           string `json:"slug" db:"slug" example:"staff-flat"`
	Description    string `json:"description" db:"description"`
	ImageURL       string `json:"imageUrl,omitempty" db:"image_url"`
	IsActive       bool   `json:"isActive" db:"is_active" example:"true"`
	Audit
	SoftDelete
}

// Path returns the canonical API path of the quarters type.
func (t *QuartersType) Path() string {
	return APIPrefix + "/quarters-types/" + t.Slug
}

// Quarters is a housing unit within a facility.
type Quarters struct {
	ID          int64  `json:"id" db:"id" example:"1"`
	FacilityID  int64  `json:"facilityId" db:"facility_id" example:"1"`
	TypeID      int64  `json:"typeId" db:"type_id" example:"1"`
	ParentID    *int64 `json:"parentId,omitempty" db:"parent_id"`
	Name        string `json:"name" db:"name" example:"Block A - 101"`
	Slug        string `json:"slug" db:"slug" example:"block-a-101"`
	Description string `json:"description" db:"description"`
	Capacity    int    `json:"capacity" db:"capacity" example:"4"`
	ImageURL    string `json:"imageUrl,omitempty" db:"image_url"`
	IsActive    bool   `json:"isActive" db:"is_active" example:"true"`
	Audit
	SoftDelete

	// Occupancy is the number of live faculty profiles assigned to the quarters.
	Occupancy    int    `json:"occupancy" db:"-" example:"2"`
	FacilityName string `json:"facilityName,omitempty" db:"-"`
	FacilitySlug string `json:"facilitySlug,omitempty" db:"-"`
	TypeName     string `json:"typeName,omitempty" db:"-"`
}

// Available returns the number of free places.
func (q *Quarters) Available() int {
	if q.Occupancy >= q.Capacity {
		return 0
	}
	return q.Capacity - q.Occupancy
}

// Path returns the canonical API path of the quarters.
func (q *Quarters) Path() string {
	return APIPrefix + "/quarters/" + q.Slug
}
