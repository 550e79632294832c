package apperrors

import "errors"

// Generic error classes. HandleAPIError maps these to HTTP status codes; every
// domain error below unwraps to exactly one of them.
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Organization errors
var (
	ErrOrganizationNotFound = newKind(ErrResourceNotFound, "organization not found")
)

// User errors
var (
	ErrUserNotFound       = newKind(ErrResourceNotFound, "user not found")
	ErrUsernameExists     = newKind(ErrResourceAlreadyExists, "username already exists")
	ErrEmailAlreadyExists = newKind(ErrResourceAlreadyExists, "email already exists")
)

// Facility errors
var (
	ErrFacilityNotFound      = newKind(ErrResourceNotFound, "facility not found")
	ErrFacilityAlreadyExists = newKind(ErrResourceAlreadyExists, "a facility with this name already exists in the organization")
	ErrNoFacilityAssigned    = newKind(ErrResourceNotFound, "facility not found for current user")
)

// Department errors
var (
	ErrDepartmentNotFound      = newKind(ErrResourceNotFound, "department not found")
	ErrDepartmentParentInvalid = newKind(ErrValidationFailed, "department parent must belong to the same facility and must not create a cycle")
)

// Quarters errors
var (
	ErrQuartersNotFound       = newKind(ErrResourceNotFound, "quarters not found")
	ErrQuartersTypeNotFound   = newKind(ErrResourceNotFound, "quarters type not found")
	ErrQuartersTypeInUse      = newKind(ErrConflict, "quarters type is referenced by quarters and cannot be deleted")
	ErrQuartersTypeNotAllowed = newKind(ErrValidationFailed, "quarters type is not available to the facility's organization")
	ErrQuartersFull           = newKind(ErrConflict, "quarters are at full capacity")
	ErrCapacityBelowOccupancy = newKind(ErrConflict, "capacity cannot be lower than current occupancy")
)

// Faculty errors
var (
	ErrFacultyNotFound      = newKind(ErrResourceNotFound, "faculty member not found")
	ErrFacultyAlreadyExists = newKind(ErrResourceAlreadyExists, "faculty profile already exists for this user")
	ErrAssignmentOutOfScope = newKind(ErrValidationFailed, "department and quarters must belong to the faculty member's facility")
)

// Settings errors
var (
	ErrSettingNotFound  = newKind(ErrResourceNotFound, "setting not found")
	ErrUnknownOwnerKind = newKind(ErrBadRequest, "unknown settings owner kind")
)

func newKind(class error, message string) *CustomError {
	return &CustomError{Err: class, Message: message}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return newKind(ErrResourceNotFound, message)
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return newKind(ErrConflict, message)
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return newKind(ErrPermissionDenied, message)
}

// NewValidationError creates a validation error bound to a field.
func NewValidationError(field, message string) error {
	e := newKind(ErrValidationFailed, message)
	e.Field = field
	return e
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string
	Code    string
	Details map[string]interface{}

	// kind is the package-level error this one was derived from.
	kind *CustomError
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is matches copies made by WithDetails/WithCode against the error they came from.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	return ok && e.kind != nil && e.kind == t
}

func (e *CustomError) derive() *CustomError {
	c := *e
	if e.kind == nil {
		c.kind = e
	}
	return &c
}

// WithDetails returns a copy of the error carrying context details
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	c := e.derive()
	c.Details = details
	return c
}

// WithCode returns a copy of the error carrying a code
func (e *CustomError) WithCode(code string) *CustomError {
	c := e.derive()
	c.Code = code
	return c
}

// Details returns the details attached to err, if any.
func Details(err error) map[string]interface{} {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}

// Message returns the most specific user-facing message carried by err.
func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return ""
}

// Field returns the field name attached to a validation error, if any.
func Field(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Field
	}
	return ""
}
