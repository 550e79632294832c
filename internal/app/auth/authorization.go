package auth

import (
	"context"
	"fmt"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/logger"
)

// Permission errors returned by the Require* checks
var (
	ErrNotFacultyAdmin  = apperrors.NewForbiddenError("only faculty administrators can perform this action")
	ErrOutsideOwnTree   = apperrors.NewForbiddenError("you can only manage records of your own organization")
	ErrNotAuthenticated = fmt.Errorf("%w: no authenticated user", apperrors.ErrUnauthorized)
)

// OrganizationRoots resolves the top organization of a hierarchy.
type OrganizationRoots interface {
	RootID(ctx context.Context, id int64) (int64, error)
}

// AuthorizationService handles authorization operations
type AuthorizationService struct {
	orgs OrganizationRoots
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(orgs OrganizationRoots) *AuthorizationService {
	return &AuthorizationService{orgs: orgs}
}

// IsFacultyAdmin reports whether p is a faculty member with the admin flag.
func IsFacultyAdmin(p *Principal) bool {
	return p != nil && p.UserType == models.UserTypeFaculty && p.IsAdmin
}

// RequireFacultyAdmin fails unless p is a faculty admin.
func (s *AuthorizationService) RequireFacultyAdmin(p *Principal) error {
	if p == nil {
		return ErrNotAuthenticated
	}
	if !IsFacultyAdmin(p) {
		return ErrNotFacultyAdmin
	}
	return nil
}

// SameTree reports whether two organizations share a root.
func (s *AuthorizationService) SameTree(ctx context.Context, a, b int64) (bool, error) {
	if a == b {
		return true, nil
	}
	rootA, err := s.orgs.RootID(ctx, a)
	if err != nil {
		return false, err
	}
	rootB, err := s.orgs.RootID(ctx, b)
	if err != nil {
		return false, err
	}
	return rootA == rootB, nil
}

// CanManageOrganization reports whether p is a faculty admin whose organization
// shares a root with orgID.
func (s *AuthorizationService) CanManageOrganization(ctx context.Context, p *Principal, orgID int64) (bool, error) {
	if !IsFacultyAdmin(p) || p.OrganizationID == nil {
		return false, nil
	}
	same, err := s.SameTree(ctx, *p.OrganizationID, orgID)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Int64("userID", p.UserID).Int64("organizationID", orgID).
			Msg("Error resolving organization roots")
		return false, err
	}
	return same, nil
}

// CanManageFacility reports whether p may change facility.
func (s *AuthorizationService) CanManageFacility(ctx context.Context, p *Principal, facility *models.Facility) (bool, error) {
	return s.CanManageOrganization(ctx, p, facility.OrganizationID)
}

// RequireOrganizationManager fails unless p can manage orgID.
func (s *AuthorizationService) RequireOrganizationManager(ctx context.Context, p *Principal, orgID int64) error {
	if err := s.RequireFacultyAdmin(p); err != nil {
		return err
	}
	ok, err := s.CanManageOrganization(ctx, p, orgID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOutsideOwnTree
	}
	return nil
}

// RequireFacilityManager fails unless p can manage facility.
func (s *AuthorizationService) RequireFacilityManager(ctx context.Context, p *Principal, facility *models.Facility) error {
	return s.RequireOrganizationManager(ctx, p, facility.OrganizationID)
}
