package models

// Organization is the tenant that owns facilities and quarters types.
// Organizations nest through ParentID; the top of the tree is the root organization.
type Organization struct {
	ID          int64  `json:"id" db:"id" example:"1"`
	ParentID    *int64 `json:"parentId,omitempty" db:"parent_id" example:"1"`
	Name        string `json:"name" db:"name" example:"Northfield Academy"`
	Slug        string `json:"slug" db:"slug" example:"northfield-academy"`
	Description string `json:"description" db:"description"`
	IsActive    bool   `json:"isActive" db:"is_active" example:"true"`
	Audit
}

// Path returns the canonical API path of the organization.
func (o *Organization) Path() string {
	return APIPrefix + "/organizations/" + o.Slug
}

// IsRoot reports whether the organization has no parent.
func (o *Organization) IsRoot() bool { return o.ParentID == nil }
