package models

// Facility is a physical site belonging to an organization.
// Slug and name are unique among the organization's live facilities.
type Facility struct {
	ID             int64  `json:"id" db:"id" example:"1"`
	OrganizationID int64  `json:"organizationId" db:"organization_id" example:"1"`
	Name           string `json:"name" db:"name" example:"Main Campus"`
	Slug           string `json:"slug" db:"slug" example:"main-campus"`
	Description    string `json:"description" db:"description"`
	Address        string `json:"address" db:"address" example:"1 College Road"`
	ImageURL       string `json:"imageUrl,omitempty" db:"image_url"`
	IsActive       bool   `json:"isActive" db:"is_active" example:"true"`
	Audit
	SoftDelete

	OrganizationName string `json:"organizationName,omitempty" db:"-"`
}

// Path returns the canonical API path of the facility.
func (f *Facility) Path() string {
	return APIPrefix + "/facilities/" + f.Slug
}
