package models

import "time"

// APIPrefix is the mount point of every canonical resource path.
const APIPrefix = "/api/v1"

// UserType defines the kind of account
type UserType string

const (
	UserTypeFaculty UserType = "FACULTY"
	UserTypeStudent UserType = "STUDENT"
	UserTypeStaff   UserType = "STAFF"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeFaculty, UserTypeStudent, UserTypeStaff:
		return true
	}
	return false
}

// Audit carries the timestamp and actor columns shared by every managed table.
type Audit struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at" example:"2024-08-18T16:13:00Z"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" example:"2024-08-18T16:13:00Z"`
	CreatedBy *int64    `json:"createdBy,omitempty" db:"created_by" example:"1"`
	UpdatedBy *int64    `json:"updatedBy,omitempty" db:"updated_by" example:"1"`
}

// SoftDelete is embedded by records that are hidden instead of removed.
type SoftDelete struct {
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// IsDeleted reports whether the record has been soft deleted.
func (s SoftDelete) IsDeleted() bool { return s.DeletedAt != nil }
