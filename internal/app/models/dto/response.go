package dto

import (
	"net/http"
	"time"
)

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewSuccessResponse wraps data in a successful envelope.
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message" example:"Facility deleted successfully"`
}

// PaginationInfo describes the page returned by a list endpoint
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"3"`
	PageSize    int   `json:"pageSize" example:"10"`
	TotalItems  int64 `json:"totalItems" example:"25"`
}

// PaginatedResponse represents a paginated list with metadata
type PaginatedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// ActionLink is a row action rendered next to a list item.
type ActionLink struct {
	Name   string `json:"name" example:"edit"`
	Method string `json:"method" example:"PUT"`
	Href   string `json:"href" example:"/api/v1/facilities/main-campus"`
}

// RowActions returns the show/edit/delete links of a resource located at path.
func RowActions(path string) []ActionLink {
	if path == "" {
		return nil
	}
	return []ActionLink{
		{Name: "show", Method: http.MethodGet, Href: path},
		{Name: "edit", Method: http.MethodPut, Href: path},
		{Name: "delete", Method: http.MethodDelete, Href: path},
	}
}
