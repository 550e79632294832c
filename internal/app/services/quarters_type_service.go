package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/logger"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// ErrSharedQuartersType is returned when a client tries to change a type that
// belongs to no organization.
var ErrSharedQuartersType = apperrors.NewForbiddenError("shared quarters types can only be changed by operators")

// QuartersTypeService handles quarters type operations
type QuartersTypeService struct {
	typeRepo QuartersTypeStore
	orgRepo  OrganizationStore
	authz    *auth.AuthorizationService
	resolver SettingsResolver
}

// NewQuartersTypeService creates a new quarters type service instance
func NewQuartersTypeService(typeRepo QuartersTypeStore, orgRepo OrganizationStore, authz *auth.AuthorizationService, resolver SettingsResolver) *QuartersTypeService {
	return &QuartersTypeService{
		typeRepo: typeRepo,
		orgRepo:  orgRepo,
		authz:    authz,
		resolver: resolver,
	}
}

// visibleTo is the filter of types the actor may use: those of its organization
// tree plus the shared ones.
func visibleTo(ctx context.Context, orgs OrganizationStore, actor *auth.Principal) (repositories.QuartersTypeFilter, error) {
	scope, err := actorScope(ctx, orgs, actor)
	if err != nil {
		return repositories.QuartersTypeFilter{}, err
	}
	if scope == nil {
		return repositories.QuartersTypeFilter{}, nil
	}
	return repositories.QuartersTypeFilter{OrganizationIDs: scope, IncludeShared: true}, nil
}

// findQuartersType resolves a type by ID, or by slug among the types visible to actor.
func findQuartersType(ctx context.Context, types QuartersTypeStore, orgs OrganizationStore, actor *auth.Principal, lookup slug.Lookup) (*models.QuartersType, error) {
	if lookup.IsID() {
		return types.GetByID(ctx, lookup.ID)
	}
	filter, err := visibleTo(ctx, orgs, actor)
	if err != nil {
		return nil, err
	}
	return types.GetBySlug(ctx, lookup.Slug, filter)
}

// List returns the types of the actor's organization tree and the shared types
func (s *QuartersTypeService) List(ctx context.Context, actor *auth.Principal, page helpers.PageRequest) (*Page[models.QuartersType], error) {
	filter, err := visibleTo(ctx, s.orgRepo, actor)
	if err != nil {
		return nil, err
	}
	items, total, err := s.typeRepo.List(ctx, filter, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing quarters types: %w", err)
	}
	return newPage(items, total, page), nil
}

// ListByOrganization returns the types owned by one organization
func (s *QuartersTypeService) ListByOrganization(ctx context.Context, orgLookup slug.Lookup, page helpers.PageRequest) (*Page[models.QuartersType], error) {
	org, err := NewOrganizationService(s.orgRepo).Get(ctx, orgLookup)
	if err != nil {
		return nil, err
	}
	filter := repositories.QuartersTypeFilter{OrganizationIDs: []int64{org.ID}}
	items, total, err := s.typeRepo.List(ctx, filter, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing quarters types of organization: %w", err)
	}
	return newPage(items, total, page), nil
}

// Get resolves a quarters type by ID or slug
func (s *QuartersTypeService) Get(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.QuartersType, error) {
	return findQuartersType(ctx, s.typeRepo, s.orgRepo, actor, lookup)
}

// Create adds a quarters type to an organization, the actor's by default
func (s *QuartersTypeService) Create(ctx context.Context, actor *auth.Principal, req dto.CreateQuartersTypeRequest) (*models.QuartersType, error) {
	if err := s.authz.RequireFacultyAdmin(actor); err != nil {
		return nil, err
	}

	orgID := req.OrganizationID
	if orgID == nil {
		orgID = actor.OrganizationID
	}
	if orgID == nil {
		return nil, apperrors.NewValidationError("organizationId", "organization is required")
	}
	if err := s.authz.RequireOrganizationManager(ctx, actor, *orgID); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, *orgID, 0, req.ParentID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	typeSlug, err := createSlug(ctx, req.Slug, name, s.slugExists(orgID, 0))
	if err != nil {
		return nil, err
	}

	qt := &models.QuartersType{
		OrganizationID: orgID,
		ParentID:       req.ParentID,
		Name:           name,
		Slug:           typeSlug,
		Description:    strings.TrimSpace(req.Description),
		ImageURL:       req.ImageURL,
		IsActive:       boolOr(req.IsActive, true),
	}
	qt.CreatedBy = actor.ActorID()
	qt.UpdatedBy = qt.CreatedBy

	if err := s.typeRepo.Create(ctx, qt); err != nil {
		return nil, fmt.Errorf("error creating quarters type: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("quartersTypeID", qt.ID).Int64("organizationID", *orgID).
		Str("slug", qt.Slug).Msg("Quarters type created")
	return qt, nil
}

// Update changes a quarters type owned by the actor's organization tree
func (s *QuartersTypeService) Update(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, req dto.UpdateQuartersTypeRequest) (*models.QuartersType, error) {
	qt, err := s.manageable(ctx, actor, lookup)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, *qt.OrganizationID, qt.ID, req.ParentID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	newSlug, err := updateSlug(ctx, req.Slug, qt.Slug, qt.Name, name, s.slugExists(qt.OrganizationID, qt.ID))
	if err != nil {
		return nil, err
	}

	qt.ParentID = req.ParentID
	qt.Name = name
	qt.Slug = newSlug
	qt.Description = strings.TrimSpace(req.Description)
	qt.ImageURL = req.ImageURL
	qt.IsActive = boolOr(req.IsActive, qt.IsActive)
	qt.UpdatedBy = actor.ActorID()

	if err := s.typeRepo.Update(ctx, qt); err != nil {
		return nil, fmt.Errorf("error updating quarters type: %w", err)
	}
	return qt, nil
}

// Delete soft deletes a quarters type that no live quarters use
func (s *QuartersTypeService) Delete(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) error {
	qt, err := s.manageable(ctx, actor, lookup)
	if err != nil {
		return err
	}
	if err := s.typeRepo.SoftDelete(ctx, qt.ID, actor.ActorID()); err != nil {
		return fmt.Errorf("error deleting quarters type: %w", err)
	}
	s.resolver.Invalidate(ctx)

	logger.FromContext(ctx).Info().Int64("quartersTypeID", qt.ID).Int64("userID", actor.UserID).Msg("Quarters type deleted")
	return nil
}

// manageable loads a type and checks that actor may change it.
func (s *QuartersTypeService) manageable(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.QuartersType, error) {
	if err := s.authz.RequireFacultyAdmin(actor); err != nil {
		return nil, err
	}
	qt, err := findQuartersType(ctx, s.typeRepo, s.orgRepo, actor, lookup)
	if err != nil {
		return nil, err
	}
	if qt.OrganizationID == nil {
		return nil, ErrSharedQuartersType
	}
	if err := s.authz.RequireOrganizationManager(ctx, actor, *qt.OrganizationID); err != nil {
		return nil, err
	}
	return qt, nil
}

// checkParent verifies that parentID is a type usable by orgID other than typeID itself.
func (s *QuartersTypeService) checkParent(ctx context.Context, orgID, typeID int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	invalid := apperrors.NewValidationError("parentId", "parent quarters type must be shared or belong to the same organization")
	if *parentID == typeID {
		return invalid
	}
	parent, err := s.typeRepo.GetByID(ctx, *parentID)
	if err != nil {
		if isNotFound(err) {
			return invalid
		}
		return err
	}
	if parent.OrganizationID == nil {
		return nil
	}
	same, err := s.authz.SameTree(ctx, *parent.OrganizationID, orgID)
	if err != nil {
		return err
	}
	if !same {
		return invalid
	}
	return nil
}

func (s *QuartersTypeService) slugExists(orgID *int64, excludeID int64) slug.ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.typeRepo.SlugExists(ctx, orgID, candidate, excludeID)
	}
}
