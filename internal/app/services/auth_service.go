package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/facilityhub/internal/pkg/auth"
	"github.com/yigit/facilityhub/internal/pkg/logger"
)

// TokenIssuer issues access tokens for users.
type TokenIssuer interface {
	GenerateToken(user *models.User) (string, int, error)
}

// AuthService handles login and faculty self-registration
type AuthService struct {
	userRepo     UserStore
	orgRepo      OrganizationStore
	facilityRepo FacilityStore
	facultyRepo  FacultyStore
	authz        *auth.AuthorizationService
	tokens       TokenIssuer
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo UserStore,
	orgRepo OrganizationStore,
	facilityRepo FacilityStore,
	facultyRepo FacultyStore,
	authz *auth.AuthorizationService,
	tokens TokenIssuer,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		orgRepo:      orgRepo,
		facilityRepo: facilityRepo,
		facultyRepo:  facultyRepo,
		authz:        authz,
		tokens:       tokens,
	}
}

// Login authenticates a user by username or email
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByLogin(ctx, req.Login)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !pkgauth.CheckPassword(user.PasswordHash, req.Password) {
		logger.FromContext(ctx).Info().Int64("userID", user.ID).Msg("Login failed: wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return s.authResponse(user)
}

// Register creates a FACULTY user with a profile and returns an access token
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	org, err := s.orgRepo.GetByID(ctx, req.OrganizationID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewValidationError("organizationId", apperrors.ErrOrganizationNotFound.Error())
		}
		return nil, err
	}

	if req.FacilityID != nil {
		facility, err := s.facilityRepo.GetByID(ctx, *req.FacilityID)
		if err != nil {
			if isNotFound(err) {
				return nil, apperrors.NewValidationError("facilityId", apperrors.ErrFacilityNotFound.Error())
			}
			return nil, err
		}
		same, err := s.authz.SameTree(ctx, facility.OrganizationID, org.ID)
		if err != nil {
			return nil, err
		}
		if !same {
			return nil, apperrors.NewValidationError("facilityId", "facility does not belong to the organization")
		}
	}

	user := &models.User{
		OrganizationID: &org.ID,
		Username:       strings.ToLower(strings.TrimSpace(req.Username)),
		Email:          strings.TrimSpace(req.Email),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		UserType:       models.UserTypeFaculty,
		IsActive:       true,
	}
	if err := checkUserUnique(ctx, s.userRepo, user.Username, user.Email, 0); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = hash

	profile := &models.FacultyProfile{
		OrganizationID: org.ID,
		FacilityID:     req.FacilityID,
	}
	if err := s.facultyRepo.CreateWithUser(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("error registering user: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("userID", user.ID).Str("username", user.Username).
		Int64("organizationID", org.ID).Msg("Faculty member registered")
	return s.authResponse(user)
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: dto.FromUser(user),
	}, nil
}
