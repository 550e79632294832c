package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/logger"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// CreateOrganizationInput holds the fields of a new organization. Organizations
// are created by operators, so there is no request DTO for them.
type CreateOrganizationInput struct {
	Name        string
	Slug        string
	ParentID    *int64
	Description string
}

// OrganizationService handles organization lookups and the organization tree
type OrganizationService struct {
	orgRepo OrganizationStore
}

// NewOrganizationService creates a new organization service instance
func NewOrganizationService(orgRepo OrganizationStore) *OrganizationService {
	return &OrganizationService{orgRepo: orgRepo}
}

// Get resolves an organization by ID or slug
func (s *OrganizationService) Get(ctx context.Context, lookup slug.Lookup) (*models.Organization, error) {
	if lookup.IsID() {
		return s.orgRepo.GetByID(ctx, lookup.ID)
	}
	return s.orgRepo.GetBySlug(ctx, lookup.Slug)
}

// List returns a page of organizations ordered by name
func (s *OrganizationService) List(ctx context.Context, page helpers.PageRequest) (*Page[models.Organization], error) {
	items, total, err := s.orgRepo.List(ctx, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing organizations: %w", err)
	}
	return newPage(items, total, page), nil
}

// RootOf walks the parents of orgID up to the top organization
func (s *OrganizationService) RootOf(ctx context.Context, orgID int64) (*models.Organization, error) {
	rootID, err := s.orgRepo.RootID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return s.orgRepo.GetByID(ctx, rootID)
}

// Descendants returns orgID and every organization below it
func (s *OrganizationService) Descendants(ctx context.Context, orgID int64) ([]int64, error) {
	return s.orgRepo.DescendantIDs(ctx, orgID)
}

// Scope returns the organization tree visible to actor, or nil for no restriction
func (s *OrganizationService) Scope(ctx context.Context, actor *auth.Principal) ([]int64, error) {
	return actorScope(ctx, s.orgRepo, actor)
}

// Create inserts a new organization. actor is nil when called from the CLI or seeder.
func (s *OrganizationService) Create(ctx context.Context, actor *auth.Principal, input CreateOrganizationInput) (*models.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if input.Slug != "" && !slug.Valid(input.Slug) {
		return nil, apperrors.NewValidationError("slug", "slug must contain lowercase letters, digits and single dashes")
	}

	if input.ParentID != nil {
		if _, err := s.orgRepo.GetByID(ctx, *input.ParentID); err != nil {
			return nil, err
		}
	}

	orgSlug, err := createSlug(ctx, input.Slug, name, func(ctx context.Context, candidate string) (bool, error) {
		return s.orgRepo.SlugExists(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	org := &models.Organization{
		ParentID:    input.ParentID,
		Name:        name,
		Slug:        orgSlug,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}
	org.CreatedBy = actor.ActorID()
	org.UpdatedBy = org.CreatedBy

	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("error creating organization: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("organizationID", org.ID).Str("slug", org.Slug).Msg("Organization created")
	return org, nil
}
