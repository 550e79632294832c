package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/app/settings"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/logger"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// DepartmentService handles department-related operations
type DepartmentService struct {
	departmentRepo DepartmentStore
	facilityRepo   FacilityStore
	orgRepo        OrganizationStore
	authz          *auth.AuthorizationService
	resolver       SettingsResolver
}

// NewDepartmentService creates a new department service instance
func NewDepartmentService(
	departmentRepo DepartmentStore,
	facilityRepo FacilityStore,
	orgRepo OrganizationStore,
	authz *auth.AuthorizationService,
	resolver SettingsResolver,
) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		facilityRepo:   facilityRepo,
		orgRepo:        orgRepo,
		authz:          authz,
		resolver:       resolver,
	}
}

// Title returns the label the department's facility uses for departments
func (s *DepartmentService) Title(ctx context.Context, d *models.Department) string {
	return s.resolver.DepartmentLabel(ctx, settings.Ref{Kind: settings.KindFacility, ID: d.FacilityID})
}

// List returns a page of all departments
func (s *DepartmentService) List(ctx context.Context, page helpers.PageRequest) (*Page[models.Department], error) {
	items, total, err := s.departmentRepo.List(ctx, repositories.DepartmentFilter{}, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	return newPage(items, total, page), nil
}

// ListByFacility returns the departments of a facility
func (s *DepartmentService) ListByFacility(ctx context.Context, actor *auth.Principal, facilityLookup slug.Lookup, page helpers.PageRequest) (*Page[models.Department], error) {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, facilityLookup)
	if err != nil {
		return nil, err
	}
	items, total, err := s.departmentRepo.List(ctx,
		repositories.DepartmentFilter{FacilityID: facility.ID}, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing facility departments: %w", err)
	}
	return newPage(items, total, page), nil
}

// Get resolves a department by ID, or by slug within the actor's organization tree
func (s *DepartmentService) Get(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.Department, error) {
	if lookup.IsID() {
		return s.departmentRepo.GetByID(ctx, lookup.ID)
	}
	scope, err := actorScope(ctx, s.orgRepo, actor)
	if err != nil {
		return nil, err
	}
	return s.departmentRepo.FindBySlug(ctx, lookup.Slug, scope)
}

// GetInFacility resolves a department of the given facility
func (s *DepartmentService) GetInFacility(ctx context.Context, actor *auth.Principal, facilityLookup, lookup slug.Lookup) (*models.Department, error) {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, facilityLookup)
	if err != nil {
		return nil, err
	}
	return s.inFacility(ctx, facility, lookup)
}

func (s *DepartmentService) inFacility(ctx context.Context, facility *models.Facility, lookup slug.Lookup) (*models.Department, error) {
	if !lookup.IsID() {
		return s.departmentRepo.GetBySlug(ctx, facility.ID, lookup.Slug)
	}
	d, err := s.departmentRepo.GetByID(ctx, lookup.ID)
	if err != nil {
		return nil, err
	}
	if d.FacilityID != facility.ID {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return d, nil
}

// Create adds a department to the facility named in the path
func (s *DepartmentService) Create(ctx context.Context, actor *auth.Principal, facilityLookup slug.Lookup, req dto.CreateDepartmentRequest) (*models.Department, error) {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, facilityLookup)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireFacilityManager(ctx, actor, facility); err != nil {
		return nil, err
	}

	if err := s.checkParent(ctx, facility.ID, 0, req.ParentID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	depSlug, err := createSlug(ctx, req.Slug, name, s.slugExists(facility.ID, 0))
	if err != nil {
		return nil, err
	}

	department := &models.Department{
		FacilityID:   facility.ID,
		ParentID:     req.ParentID,
		Name:         name,
		Slug:         depSlug,
		Abbreviation: strings.TrimSpace(req.Abbreviation),
		Description:  strings.TrimSpace(req.Description),
		ImageURL:     req.ImageURL,
		IsActive:     boolOr(req.IsActive, true),
		FacilityName: facility.Name,
		FacilitySlug: facility.Slug,
	}
	department.CreatedBy = actor.ActorID()
	department.UpdatedBy = department.CreatedBy

	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return nil, fmt.Errorf("error creating department: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("departmentID", department.ID).Int64("facilityID", facility.ID).
		Str("slug", department.Slug).Msg("Department created")
	return department, nil
}

// Update changes a department of the facility named in the path
func (s *DepartmentService) Update(ctx context.Context, actor *auth.Principal, facilityLookup, lookup slug.Lookup, req dto.UpdateDepartmentRequest) (*models.Department, error) {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, facilityLookup)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireFacilityManager(ctx, actor, facility); err != nil {
		return nil, err
	}
	department, err := s.inFacility(ctx, facility, lookup)
	if err != nil {
		return nil, err
	}

	if err := s.checkParent(ctx, facility.ID, department.ID, req.ParentID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	newSlug, err := updateSlug(ctx, req.Slug, department.Slug, department.Name, name,
		s.slugExists(facility.ID, department.ID))
	if err != nil {
		return nil, err
	}

	department.ParentID = req.ParentID
	department.Name = name
	department.Slug = newSlug
	department.Abbreviation = strings.TrimSpace(req.Abbreviation)
	department.Description = strings.TrimSpace(req.Description)
	department.ImageURL = req.ImageURL
	department.IsActive = boolOr(req.IsActive, department.IsActive)
	department.UpdatedBy = actor.ActorID()

	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return nil, fmt.Errorf("error updating department: %w", err)
	}
	return department, nil
}

// Delete soft deletes a department. Child departments move up to its parent.
func (s *DepartmentService) Delete(ctx context.Context, actor *auth.Principal, facilityLookup, lookup slug.Lookup) error {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, facilityLookup)
	if err != nil {
		return err
	}
	if err := s.authz.RequireFacilityManager(ctx, actor, facility); err != nil {
		return err
	}
	department, err := s.inFacility(ctx, facility, lookup)
	if err != nil {
		return err
	}

	if err := s.departmentRepo.SoftDelete(ctx, department.ID, actor.ActorID()); err != nil {
		return fmt.Errorf("error deleting department: %w", err)
	}
	s.resolver.Invalidate(ctx)

	logger.FromContext(ctx).Info().Int64("departmentID", department.ID).Int64("userID", actor.UserID).Msg("Department deleted")
	return nil
}

// checkParent verifies that parentID is a department of facilityID and that
// making it the parent of departmentID does not close a cycle.
func (s *DepartmentService) checkParent(ctx context.Context, facilityID, departmentID int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if *parentID == departmentID {
		return apperrors.ErrDepartmentParentInvalid
	}

	parent, err := s.departmentRepo.GetByID(ctx, *parentID)
	if err != nil {
		if isNotFound(err) {
			return apperrors.ErrDepartmentParentInvalid
		}
		return err
	}
	if parent.FacilityID != facilityID {
		return apperrors.ErrDepartmentParentInvalid
	}
	if departmentID == 0 {
		return nil
	}

	ancestors, err := s.departmentRepo.AncestorIDs(ctx, parent.ID)
	if err != nil {
		return fmt.Errorf("error checking department ancestors: %w", err)
	}
	for _, id := range ancestors {
		if id == departmentID {
			return apperrors.ErrDepartmentParentInvalid
		}
	}
	return nil
}

func (s *DepartmentService) slugExists(facilityID, excludeID int64) slug.ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.departmentRepo.SlugExists(ctx, facilityID, candidate, excludeID)
	}
}
