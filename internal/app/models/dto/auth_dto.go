package dto

import "github.com/yigit/facilityhub/internal/app/models"

// LoginRequest represents login credentials. Login accepts a username or an email.
type LoginRequest struct {
	Login    string `json:"login" binding:"required" example:"jdoe"`
	Password string `json:"password" binding:"required" example:"Secret123!"`
}

// RegisterRequest is the public faculty self-registration form
type RegisterRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=50,alphanum" example:"jdoe"`
	Email          string `json:"email" binding:"required,email,max=255" example:"jdoe@northfield.edu"`
	Password       string `json:"password" binding:"required,min=8,max=72" example:"Secret123!"`
	FirstName      string `json:"firstName" binding:"required,max=100" example:"John"`
	LastName       string `json:"lastName" binding:"required,max=100" example:"Doe"`
	OrganizationID int64  `json:"organizationId" binding:"required,gt=0" example:"1"`
	FacilityID     *int64 `json:"facilityId" binding:"omitempty,gt=0" example:"1"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"3600"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID             int64  `json:"id" example:"1"`
	OrganizationID *int64 `json:"organizationId,omitempty" example:"1"`
	Username       string `json:"username" example:"jdoe"`
	Email          string `json:"email" example:"jdoe@northfield.edu"`
	FirstName      string `json:"firstName" example:"John"`
	LastName       string `json:"lastName" example:"Doe"`
	UserType       string `json:"userType" example:"FACULTY" enums:"FACULTY,STUDENT,STAFF"`
	IsAdmin        bool   `json:"isAdmin" example:"false"`
	IsActive       bool   `json:"isActive" example:"true"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// FromUser converts a models.User to a UserResponse
func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		UserType:       string(u.UserType),
		IsAdmin:        u.IsAdmin,
		IsActive:       u.IsActive,
	}
}
