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

// FacilityDetail is a facility together with the tables shown on its page.
type FacilityDetail struct {
	Facility         *models.Facility
	RootOrganization *models.Organization
	Departments      *Page[models.Department]
	Quarters         *Page[models.Quarters]
	Faculty          *Page[models.FacultyProfile]
}

// FacilityService handles facility-related operations
type FacilityService struct {
	facilityRepo   FacilityStore
	orgRepo        OrganizationStore
	departmentRepo DepartmentStore
	quartersRepo   QuartersStore
	facultyRepo    FacultyStore
	authz          *auth.AuthorizationService
	resolver       SettingsResolver
}

// NewFacilityService creates a new facility service instance
func NewFacilityService(
	facilityRepo FacilityStore,
	orgRepo OrganizationStore,
	departmentRepo DepartmentStore,
	quartersRepo QuartersStore,
	facultyRepo FacultyStore,
	authz *auth.AuthorizationService,
	resolver SettingsResolver,
) *FacilityService {
	return &FacilityService{
		facilityRepo:   facilityRepo,
		orgRepo:        orgRepo,
		departmentRepo: departmentRepo,
		quartersRepo:   quartersRepo,
		facultyRepo:    facultyRepo,
		authz:          authz,
		resolver:       resolver,
	}
}

// findFacility resolves a facility by ID, or by slug within the actor's organization tree.
func findFacility(ctx context.Context, facilities FacilityStore, orgs OrganizationStore, actor *auth.Principal, lookup slug.Lookup) (*models.Facility, error) {
	if lookup.IsID() {
		return facilities.GetByID(ctx, lookup.ID)
	}
	scope, err := actorScope(ctx, orgs, actor)
	if err != nil {
		return nil, err
	}
	return facilities.GetBySlug(ctx, lookup.Slug, scope)
}

// assignedFacility returns the facility of the user's faculty profile.
func assignedFacility(ctx context.Context, faculty FacultyStore, facilities FacilityStore, userID int64) (*models.Facility, error) {
	profile, err := faculty.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNoFacilityAssigned
		}
		return nil, err
	}
	if profile.FacilityID == nil {
		return nil, apperrors.ErrNoFacilityAssigned
	}
	facility, err := facilities.GetByID(ctx, *profile.FacilityID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNoFacilityAssigned
		}
		return nil, err
	}
	return facility, nil
}

// List returns a page of all facilities ordered by name
func (s *FacilityService) List(ctx context.Context, page helpers.PageRequest) (*Page[models.Facility], error) {
	items, total, err := s.facilityRepo.List(ctx, repositories.FacilityFilter{}, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing facilities: %w", err)
	}
	return newPage(items, total, page), nil
}

// ListByOrganization returns the facilities of one organization
func (s *FacilityService) ListByOrganization(ctx context.Context, orgLookup slug.Lookup, page helpers.PageRequest) (*Page[models.Facility], error) {
	org, err := NewOrganizationService(s.orgRepo).Get(ctx, orgLookup)
	if err != nil {
		return nil, err
	}
	filter := repositories.FacilityFilter{OrganizationIDs: []int64{org.ID}}
	items, total, err := s.facilityRepo.List(ctx, filter, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing facilities of organization: %w", err)
	}
	return newPage(items, total, page), nil
}

// Get resolves a facility by ID or slug
func (s *FacilityService) Get(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.Facility, error) {
	return findFacility(ctx, s.facilityRepo, s.orgRepo, actor, lookup)
}

// Detail returns a facility with its department, quarters and faculty tables
func (s *FacilityService) Detail(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, page helpers.PageRequest) (*FacilityDetail, error) {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, lookup)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, facility, page)
}

// Manage returns the admin's own facility with its tables
func (s *FacilityService) Manage(ctx context.Context, actor *auth.Principal, page helpers.PageRequest) (*FacilityDetail, error) {
	if err := s.authz.RequireFacultyAdmin(actor); err != nil {
		return nil, err
	}
	facility, err := assignedFacility(ctx, s.facultyRepo, s.facilityRepo, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, facility, page)
}

func (s *FacilityService) detail(ctx context.Context, facility *models.Facility, page helpers.PageRequest) (*FacilityDetail, error) {
	root, err := NewOrganizationService(s.orgRepo).RootOf(ctx, facility.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("error resolving root organization: %w", err)
	}

	departments, depTotal, err := s.departmentRepo.List(ctx,
		repositories.DepartmentFilter{FacilityID: facility.ID}, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing facility departments: %w", err)
	}
	quarters, qTotal, err := s.quartersRepo.List(ctx,
		repositories.QuartersFilter{FacilityID: facility.ID}, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing facility quarters: %w", err)
	}
	faculty, fTotal, err := s.facultyRepo.List(ctx,
		repositories.FacultyFilter{FacilityID: facility.ID}, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing facility faculty: %w", err)
	}

	return &FacilityDetail{
		Facility:         facility,
		RootOrganization: root,
		Departments:      newPage(departments, depTotal, page),
		Quarters:         newPage(quarters, qTotal, page),
		Faculty:          newPage(faculty, fTotal, page),
	}, nil
}

// RootOrganization returns the top organization of the facility's organization tree
func (s *FacilityService) RootOrganization(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.Organization, error) {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, lookup)
	if err != nil {
		return nil, err
	}
	return NewOrganizationService(s.orgRepo).RootOf(ctx, facility.OrganizationID)
}

// Create creates a facility. The organization defaults to the actor's.
func (s *FacilityService) Create(ctx context.Context, actor *auth.Principal, req dto.CreateFacilityRequest) (*models.Facility, error) {
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

	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, *orgID, name, 0); err != nil {
		return nil, err
	}

	facilitySlug, err := createSlug(ctx, req.Slug, name, s.slugExists(*orgID, 0))
	if err != nil {
		return nil, err
	}

	facility := &models.Facility{
		OrganizationID: *orgID,
		Name:           name,
		Slug:           facilitySlug,
		Description:    strings.TrimSpace(req.Description),
		Address:        strings.TrimSpace(req.Address),
		ImageURL:       req.ImageURL,
		IsActive:       boolOr(req.IsActive, true),
	}
	facility.CreatedBy = actor.ActorID()
	facility.UpdatedBy = facility.CreatedBy

	if err := s.facilityRepo.Create(ctx, facility); err != nil {
		return nil, fmt.Errorf("error creating facility: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("facilityID", facility.ID).Str("slug", facility.Slug).
		Int64("organizationID", facility.OrganizationID).Msg("Facility created")
	return facility, nil
}

// Update changes a facility. The slug follows the name unless given explicitly.
// The returned URL is the image the update replaced or cleared, if any.
func (s *FacilityService) Update(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, req dto.UpdateFacilityRequest) (*models.Facility, string, error) {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, lookup)
	if err != nil {
		return nil, "", err
	}
	if err := s.authz.RequireFacilityManager(ctx, actor, facility); err != nil {
		return nil, "", err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, facility.OrganizationID, name, facility.ID); err != nil {
		return nil, "", err
	}

	newSlug, err := updateSlug(ctx, req.Slug, facility.Slug, facility.Name, name,
		s.slugExists(facility.OrganizationID, facility.ID))
	if err != nil {
		return nil, "", err
	}

	var replaced string
	if facility.ImageURL != req.ImageURL {
		replaced = facility.ImageURL
	}

	facility.Name = name
	facility.Slug = newSlug
	facility.Description = strings.TrimSpace(req.Description)
	facility.Address = strings.TrimSpace(req.Address)
	facility.ImageURL = req.ImageURL
	facility.IsActive = boolOr(req.IsActive, facility.IsActive)
	facility.UpdatedBy = actor.ActorID()

	if err := s.facilityRepo.Update(ctx, facility); err != nil {
		return nil, "", fmt.Errorf("error updating facility: %w", err)
	}
	return facility, replaced, nil
}

// SetImage points the facility image at imageURL and returns the facility and
// the URL it replaced.
func (s *FacilityService) SetImage(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, imageURL string) (*models.Facility, string, error) {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, lookup)
	if err != nil {
		return nil, "", err
	}
	if err := s.authz.RequireFacilityManager(ctx, actor, facility); err != nil {
		return nil, "", err
	}

	previous := facility.ImageURL
	facility.ImageURL = imageURL
	facility.UpdatedBy = actor.ActorID()
	if err := s.facilityRepo.Update(ctx, facility); err != nil {
		return nil, "", fmt.Errorf("error updating facility image: %w", err)
	}
	return facility, previous, nil
}

// Delete soft deletes a facility together with its departments and quarters
func (s *FacilityService) Delete(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) error {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, lookup)
	if err != nil {
		return err
	}
	if err := s.authz.RequireFacilityManager(ctx, actor, facility); err != nil {
		return err
	}

	if err := s.facilityRepo.SoftDelete(ctx, facility.ID, actor.ActorID()); err != nil {
		return fmt.Errorf("error deleting facility: %w", err)
	}
	s.resolver.Invalidate(ctx)

	logger.FromContext(ctx).Info().Int64("facilityID", facility.ID).Int64("userID", actor.UserID).Msg("Facility deleted")
	return nil
}

func (s *FacilityService) checkName(ctx context.Context, orgID int64, name string, excludeID int64) error {
	taken, err := s.facilityRepo.NameExists(ctx, orgID, name, excludeID)
	if err != nil {
		return fmt.Errorf("error checking facility name: %w", err)
	}
	if taken {
		return apperrors.ErrFacilityAlreadyExists
	}
	return nil
}

func (s *FacilityService) slugExists(orgID, excludeID int64) slug.ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.facilityRepo.SlugExists(ctx, orgID, candidate, excludeID)
	}
}
