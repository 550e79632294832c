package dto

import "time"

// ErrorCode is the stable, machine-readable part of an error response.
type ErrorCode string

// Codes are grouped by prefix: AUTH for identity, RES for records,
// VAL for input and SRV for server failures.
const (
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeAccountDisabled    ErrorCode = "AUTH_002"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken       ErrorCode = "AUTH_006"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_008"
	ErrorCodeForbidden          ErrorCode = "AUTH_009"

	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"
	ErrorCodeResourceConflict      ErrorCode = "RES_004"

	ErrorCodeValidationFailed ErrorCode = "VAL_001"
	ErrorCodeBadRequest       ErrorCode = "VAL_002"

	ErrorCodeInternalServer ErrorCode = "SRV_001"
)

// ErrorDetail describes a single failure. Field names the offending input
// when there is one; Details carries per-field messages or domain context
// such as the current occupancy of a quarters.
type ErrorDetail struct {
	Code      ErrorCode   `json:"code" example:"RES_001"`
	Message   string      `json:"message" example:"facility not found"`
	Field     string      `json:"field,omitempty" example:"name"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty" example:"5f0c6a52-3f7e-4d0e-9d7e-0b7c3b1f2a11"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{Code: code, Message: message}
}

func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// WithRequestID links the response to the request log line.
func (e *ErrorDetail) WithRequestID(id string) *ErrorDetail {
	e.RequestID = id
	return e
}

func NewErrorResponse(errorDetail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     errorDetail,
		Timestamp: time.Now().UTC(),
	}
}
