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

const maxQuartersDepth = 64

var errQuartersParentInvalid = apperrors.NewValidationError("parentId",
	"parent quarters must belong to the same facility and must not create a cycle")

// QuartersService handles quarters operations
type QuartersService struct {
	quartersRepo QuartersStore
	facilityRepo FacilityStore
	typeRepo     QuartersTypeStore
	orgRepo      OrganizationStore
	authz        *auth.AuthorizationService
	resolver     SettingsResolver
}

// NewQuartersService creates a new quarters service instance
func NewQuartersService(
	quartersRepo QuartersStore,
	facilityRepo FacilityStore,
	typeRepo QuartersTypeStore,
	orgRepo OrganizationStore,
	authz *auth.AuthorizationService,
	resolver SettingsResolver,
) *QuartersService {
	return &QuartersService{
		quartersRepo: quartersRepo,
		facilityRepo: facilityRepo,
		typeRepo:     typeRepo,
		orgRepo:      orgRepo,
		authz:        authz,
		resolver:     resolver,
	}
}

// List returns the quarters of the actor's organization tree
func (s *QuartersService) List(ctx context.Context, actor *auth.Principal, page helpers.PageRequest) (*Page[models.Quarters], error) {
	scope, err := actorScope(ctx, s.orgRepo, actor)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repositories.QuartersFilter{OrganizationIDs: scope}, page)
}

// ListByFacility returns the quarters of one facility
func (s *QuartersService) ListByFacility(ctx context.Context, actor *auth.Principal, facilityLookup slug.Lookup, page helpers.PageRequest) (*Page[models.Quarters], error) {
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, facilityLookup)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repositories.QuartersFilter{FacilityID: facility.ID}, page)
}

// ListByType returns the quarters of one type within the actor's organization tree
func (s *QuartersService) ListByType(ctx context.Context, actor *auth.Principal, typeLookup slug.Lookup, page helpers.PageRequest) (*Page[models.Quarters], error) {
	qt, err := findQuartersType(ctx, s.typeRepo, s.orgRepo, actor, typeLookup)
	if err != nil {
		return nil, err
	}
	scope, err := actorScope(ctx, s.orgRepo, actor)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repositories.QuartersFilter{TypeID: qt.ID, OrganizationIDs: scope}, page)
}

func (s *QuartersService) list(ctx context.Context, filter repositories.QuartersFilter, page helpers.PageRequest) (*Page[models.Quarters], error) {
	items, total, err := s.quartersRepo.List(ctx, filter, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing quarters: %w", err)
	}
	return newPage(items, total, page), nil
}

// Get resolves quarters by ID, or by slug within the actor's organization tree
func (s *QuartersService) Get(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.Quarters, error) {
	if lookup.IsID() {
		return s.quartersRepo.GetByID(ctx, lookup.ID)
	}
	scope, err := actorScope(ctx, s.orgRepo, actor)
	if err != nil {
		return nil, err
	}
	return s.quartersRepo.GetBySlug(ctx, lookup.Slug, scope)
}

// Create adds quarters to the facility named in the path
func (s *QuartersService) Create(ctx context.Context, actor *auth.Principal, facilityLookup slug.Lookup, req dto.CreateQuartersRequest) (*models.Quarters, error) {
	if err := s.authz.RequireFacultyAdmin(actor); err != nil {
		return nil, err
	}
	facility, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, facilityLookup)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireFacilityManager(ctx, actor, facility); err != nil {
		return nil, err
	}

	qt, err := s.checkType(ctx, facility, req.TypeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, facility.ID, 0, req.ParentID); err != nil {
		return nil, err
	}
	if req.Capacity < 0 {
		return nil, apperrors.NewValidationError("capacity", "capacity must not be negative")
	}

	name := strings.TrimSpace(req.Name)
	quartersSlug, err := createSlug(ctx, req.Slug, name, s.slugExists(facility.ID, 0))
	if err != nil {
		return nil, err
	}

	q := &models.Quarters{
		FacilityID:   facility.ID,
		TypeID:       qt.ID,
		ParentID:     req.ParentID,
		Name:         name,
		Slug:         quartersSlug,
		Description:  strings.TrimSpace(req.Description),
		Capacity:     req.Capacity,
		ImageURL:     req.ImageURL,
		IsActive:     boolOr(req.IsActive, true),
		FacilityName: facility.Name,
		FacilitySlug: facility.Slug,
		TypeName:     qt.Name,
	}
	q.CreatedBy = actor.ActorID()
	q.UpdatedBy = q.CreatedBy

	if err := s.quartersRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("error creating quarters: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("quartersID", q.ID).Int64("facilityID", facility.ID).
		Int("capacity", q.Capacity).Msg("Quarters created")
	return q, nil
}

// Update changes quarters. Capacity may not drop below the current occupancy.
func (s *QuartersService) Update(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, req dto.UpdateQuartersRequest) (*models.Quarters, error) {
	q, facility, err := s.manageable(ctx, actor, lookup)
	if err != nil {
		return nil, err
	}

	qt, err := s.checkType(ctx, facility, req.TypeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, facility.ID, q.ID, req.ParentID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	newSlug, err := updateSlug(ctx, req.Slug, q.Slug, q.Name, name, s.slugExists(facility.ID, q.ID))
	if err != nil {
		return nil, err
	}

	typeChanged := q.TypeID != qt.ID
	q.TypeID = qt.ID
	q.TypeName = qt.Name
	q.ParentID = req.ParentID
	q.Name = name
	q.Slug = newSlug
	q.Description = strings.TrimSpace(req.Description)
	q.Capacity = req.Capacity
	q.ImageURL = req.ImageURL
	q.IsActive = boolOr(req.IsActive, q.IsActive)
	q.UpdatedBy = actor.ActorID()

	if err := s.quartersRepo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("error updating quarters: %w", err)
	}
	if typeChanged {
		s.resolver.Invalidate(ctx)
	}
	return q, nil
}

// Delete soft deletes quarters and unassigns their residents
func (s *QuartersService) Delete(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) error {
	q, _, err := s.manageable(ctx, actor, lookup)
	if err != nil {
		return err
	}
	if err := s.quartersRepo.SoftDelete(ctx, q.ID, actor.ActorID()); err != nil {
		return fmt.Errorf("error deleting quarters: %w", err)
	}
	s.resolver.Invalidate(ctx)

	logger.FromContext(ctx).Info().Int64("quartersID", q.ID).Int64("userID", actor.UserID).Msg("Quarters deleted")
	return nil
}

func (s *QuartersService) manageable(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.Quarters, *models.Facility, error) {
	if err := s.authz.RequireFacultyAdmin(actor); err != nil {
		return nil, nil, err
	}
	q, err := s.Get(ctx, actor, lookup)
	if err != nil {
		return nil, nil, err
	}
	facility, err := s.facilityRepo.GetByID(ctx, q.FacilityID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authz.RequireFacilityManager(ctx, actor, facility); err != nil {
		return nil, nil, err
	}
	return q, facility, nil
}

// checkType loads typeID and verifies the facility's organization may use it.
func (s *QuartersService) checkType(ctx context.Context, facility *models.Facility, typeID int64) (*models.QuartersType, error) {
	qt, err := s.typeRepo.GetByID(ctx, typeID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewValidationError("typeId", apperrors.ErrQuartersTypeNotFound.Error())
		}
		return nil, err
	}
	if qt.OrganizationID == nil {
		return qt, nil
	}
	same, err := s.authz.SameTree(ctx, *qt.OrganizationID, facility.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !same {
		return nil, apperrors.ErrQuartersTypeNotAllowed
	}
	return qt, nil
}

// checkParent verifies that parentID are quarters of the same facility and not
// below quartersID.
func (s *QuartersService) checkParent(ctx context.Context, facilityID, quartersID int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	next := parentID
	for depth := 0; next != nil && depth < maxQuartersDepth; depth++ {
		if *next == quartersID {
			return errQuartersParentInvalid
		}
		parent, err := s.quartersRepo.GetByID(ctx, *next)
		if err != nil {
			if isNotFound(err) {
				return errQuartersParentInvalid
			}
			return err
		}
		if parent.FacilityID != facilityID {
			return errQuartersParentInvalid
		}
		if quartersID == 0 {
			return nil
		}
		next = parent.ParentID
	}
	return nil
}

func (s *QuartersService) slugExists(facilityID, excludeID int64) slug.ExistsFunc {
	return func(ctx context.Context, candidate string) (bool, error) {
		return s.quartersRepo.SlugExists(ctx, facilityID, candidate, excludeID)
	}
}
