package models

// FacultyProfile is a staff member's role and assignment record, linked to a
// facility, a department and optionally the quarters they live in.
type FacultyProfile struct {
	ID             int64  `json:"id" db:"id" example:"1"`
	UserID         int64  `json:"userId" db:"user_id" example:"1"`
	OrganizationID int64  `json:"organizationId" db:"organization_id" example:"1"`
	FacilityID     *int64 `json:"facilityId,omitempty" db:"facility_id" example:"1"`
	DepartmentID   *int64 `json:"departmentId,omitempty" db:"department_id" example:"1"`
	QuartersID     *int64 `json:"quartersId,omitempty" db:"quarters_id" example:"1"`
	Address        string `json:"address" db:"address"`
	Audit
	SoftDelete

	User           *User  `json:"user,omitempty" db:"-"`
	FacilityName   string `json:"facilityName,omitempty" db:"-"`
	FacilitySlug   string `json:"facilitySlug,omitempty" db:"-"`
	DepartmentName string `json:"departmentName,omitempty" db:"-"`
	QuartersName   string `json:"quartersName,omitempty" db:"-"`
}

// Path returns the canonical API path of the faculty member, keyed by username.
func (p *FacultyProfile) Path() string {
	if p.User == nil {
		return ""
	}
	return APIPrefix + "/faculty/" + p.User.Username
}
