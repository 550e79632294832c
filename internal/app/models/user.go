package models

import "strings"

// User defines the user model based on the 'users' table
type User struct {
	ID             int64    `json:"id" db:"id" example:"1"`
	OrganizationID *int64   `json:"organizationId,omitempty" db:"organization_id" example:"1"`
	Username       string   `json:"username" db:"username" example:"jdoe"`
	Email          string   `json:"email" db:"email" example:"jdoe@northfield.edu"`
	PasswordHash   string   `json:"-" db:"password_hash"`
	FirstName      string   `json:"firstName" db:"first_name" example:"John"`
	LastName       string   `json:"lastName" db:"last_name" example:"Doe"`
	UserType       UserType `json:"userType" db:"user_type" example:"FACULTY"`
	IsAdmin        bool     `json:"isAdmin" db:"is_admin" example:"false"`
	IsActive       bool     `json:"isActive" db:"is_active" example:"true"`
	Audit
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
