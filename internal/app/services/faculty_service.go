package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/facilityhub/internal/pkg/auth"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/logger"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// ErrSelfDemotion prevents an admin from locking themselves out.
var ErrSelfDemotion = apperrors.NewValidationError("isAdmin", "you cannot revoke your own admin rights")

// ErrSelfDelete prevents an admin from deleting their own profile.
var ErrSelfDelete = apperrors.NewForbiddenError("you cannot delete your own faculty profile")

// FacultyService handles faculty profile operations
type FacultyService struct {
	facultyRepo    FacultyStore
	userRepo       UserStore
	facilityRepo   FacilityStore
	departmentRepo DepartmentStore
	quartersRepo   QuartersStore
	orgRepo        OrganizationStore
	authz          *auth.AuthorizationService
}

// NewFacultyService creates a new faculty service instance
func NewFacultyService(
	facultyRepo FacultyStore,
	userRepo UserStore,
	facilityRepo FacilityStore,
	departmentRepo DepartmentStore,
	quartersRepo QuartersStore,
	orgRepo OrganizationStore,
	authz *auth.AuthorizationService,
) *FacultyService {
	return &FacultyService{
		facultyRepo:    facultyRepo,
		userRepo:       userRepo,
		facilityRepo:   facilityRepo,
		departmentRepo: departmentRepo,
		quartersRepo:   quartersRepo,
		orgRepo:        orgRepo,
		authz:          authz,
	}
}

// List returns faculty, optionally limited to one facility
func (s *FacultyService) List(ctx context.Context, actor *auth.Principal, facility *slug.Lookup, page helpers.PageRequest) (*Page[models.FacultyProfile], error) {
	filter := repositories.FacultyFilter{}
	if facility != nil {
		f, err := findFacility(ctx, s.facilityRepo, s.orgRepo, actor, *facility)
		if err != nil {
			return nil, err
		}
		filter.FacilityID = f.ID
	}
	return s.list(ctx, filter, page)
}

// ListByOrganization returns the faculty of an organization and all organizations below it
func (s *FacultyService) ListByOrganization(ctx context.Context, orgLookup slug.Lookup, page helpers.PageRequest) (*Page[models.FacultyProfile], error) {
	orgs := NewOrganizationService(s.orgRepo)
	org, err := orgs.Get(ctx, orgLookup)
	if err != nil {
		return nil, err
	}
	ids, err := orgs.Descendants(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing child organizations: %w", err)
	}
	if len(ids) == 0 {
		ids = []int64{org.ID}
	}
	return s.list(ctx, repositories.FacultyFilter{OrganizationIDs: ids}, page)
}

// ListByFacility returns the faculty of one facility
func (s *FacultyService) ListByFacility(ctx context.Context, actor *auth.Principal, facilityLookup slug.Lookup, page helpers.PageRequest) (*Page[models.FacultyProfile], error) {
	return s.List(ctx, actor, &facilityLookup, page)
}

// Widget returns the first page of faculty of the actor's facility. Actors
// without a facility get an empty list.
func (s *FacultyService) Widget(ctx context.Context, actor *auth.Principal) (*Page[models.FacultyProfile], error) {
	page := helpers.NewPageRequest(helpers.DefaultPage, helpers.DefaultPageSize)
	if actor == nil {
		return newPage[models.FacultyProfile](nil, 0, page), nil
	}
	facility, err := assignedFacility(ctx, s.facultyRepo, s.facilityRepo, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return newPage[models.FacultyProfile](nil, 0, page), nil
		}
		return nil, err
	}
	return s.list(ctx, repositories.FacultyFilter{FacilityID: facility.ID}, page)
}

// Manage returns the faculty of the admin's own facility
func (s *FacultyService) Manage(ctx context.Context, actor *auth.Principal, page helpers.PageRequest) (*Page[models.FacultyProfile], error) {
	if err := s.authz.RequireFacultyAdmin(actor); err != nil {
		return nil, err
	}
	facility, err := assignedFacility(ctx, s.facultyRepo, s.facilityRepo, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repositories.FacultyFilter{FacilityID: facility.ID}, page)
}

func (s *FacultyService) list(ctx context.Context, filter repositories.FacultyFilter, page helpers.PageRequest) (*Page[models.FacultyProfile], error) {
	items, total, err := s.facultyRepo.List(ctx, filter, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("error listing faculty: %w", err)
	}
	return newPage(items, total, page), nil
}

// Get resolves a faculty member by profile ID or username
func (s *FacultyService) Get(ctx context.Context, lookup slug.Lookup) (*models.FacultyProfile, error) {
	if lookup.IsID() {
		return s.facultyRepo.GetByID(ctx, lookup.ID)
	}
	return s.facultyRepo.GetByUsername(ctx, lookup.Slug)
}

// Create creates a faculty user and its profile in one transaction
func (s *FacultyService) Create(ctx context.Context, actor *auth.Principal, req dto.CreateFacultyRequest) (*models.FacultyProfile, error) {
	if err := s.authz.RequireFacultyAdmin(actor); err != nil {
		return nil, err
	}

	var orgID int64
	if req.FacilityID != nil {
		facility, err := s.facilityRepo.GetByID(ctx, *req.FacilityID)
		if err != nil {
			if isNotFound(err) {
				return nil, apperrors.NewValidationError("facilityId", apperrors.ErrFacilityNotFound.Error())
			}
			return nil, err
		}
		if err := s.authz.RequireFacilityManager(ctx, actor, facility); err != nil {
			return nil, err
		}
		orgID = facility.OrganizationID
	} else {
		if actor.OrganizationID == nil {
			return nil, apperrors.NewValidationError("facilityId", "facility is required")
		}
		orgID = *actor.OrganizationID
	}

	if err := s.checkAssignment(ctx, req.FacilityID, req.DepartmentID, req.QuartersID); err != nil {
		return nil, err
	}

	user := &models.User{
		OrganizationID: &orgID,
		Username:       strings.ToLower(strings.TrimSpace(req.Username)),
		Email:          strings.TrimSpace(req.Email),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		UserType:       models.UserTypeFaculty,
		IsAdmin:        req.IsAdmin,
		IsActive:       true,
	}
	if err := s.checkUserUnique(ctx, user.Username, user.Email, 0); err != nil {
		return nil, err
	}

	password := req.Password
	if password == "" {
		password = uuid.NewString()
	}
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = hash
	user.CreatedBy = actor.ActorID()
	user.UpdatedBy = user.CreatedBy

	profile := &models.FacultyProfile{
		OrganizationID: orgID,
		FacilityID:     req.FacilityID,
		DepartmentID:   req.DepartmentID,
		QuartersID:     req.QuartersID,
		Address:        strings.TrimSpace(req.Address),
	}
	profile.CreatedBy = actor.ActorID()
	profile.UpdatedBy = profile.CreatedBy

	if err := s.facultyRepo.CreateWithUser(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("error creating faculty member: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("facultyID", profile.ID).Int64("userID", user.ID).
		Str("username", user.Username).Msg("Faculty member created")
	return s.reload(ctx, profile)
}

// Update changes the user fields and address of a faculty member
func (s *FacultyService) Update(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, req dto.UpdateFacultyRequest) (*models.FacultyProfile, error) {
	profile, err := s.manageable(ctx, actor, lookup)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if err := s.checkUserUnique(ctx, "", email, profile.UserID); err != nil {
		return nil, err
	}

	if profile.User == nil {
		profile.User = &models.User{ID: profile.UserID}
	}
	profile.User.Email = email
	profile.User.FirstName = strings.TrimSpace(req.FirstName)
	profile.User.LastName = strings.TrimSpace(req.LastName)
	profile.Address = strings.TrimSpace(req.Address)
	profile.UpdatedBy = actor.ActorID()

	if err := s.facultyRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("error updating faculty member: %w", err)
	}
	return profile, nil
}

// Promote grants or revokes the admin flag of a faculty member
func (s *FacultyService) Promote(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, isAdmin bool) (*models.FacultyProfile, error) {
	profile, err := s.manageable(ctx, actor, lookup)
	if err != nil {
		return nil, err
	}
	if profile.UserID == actor.UserID && !isAdmin {
		return nil, ErrSelfDemotion
	}

	if err := s.userRepo.SetAdmin(ctx, profile.UserID, isAdmin, actor.ActorID()); err != nil {
		return nil, fmt.Errorf("error updating admin flag: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("facultyID", profile.ID).Bool("isAdmin", isAdmin).
		Int64("userID", actor.UserID).Msg("Faculty admin flag changed")
	return s.reload(ctx, profile)
}

// AssignDepartment sets or clears the department of a faculty member
func (s *FacultyService) AssignDepartment(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, departmentID *int64) (*models.FacultyProfile, error) {
	profile, err := s.manageable(ctx, actor, lookup)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignment(ctx, profile.FacilityID, departmentID, nil); err != nil {
		return nil, err
	}
	if err := s.facultyRepo.SetDepartment(ctx, profile.ID, departmentID, actor.ActorID()); err != nil {
		return nil, fmt.Errorf("error assigning department: %w", err)
	}
	return s.reload(ctx, profile)
}

// ChangeQuarters moves a faculty member into quarters with a free place, or out of any
func (s *FacultyService) ChangeQuarters(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, quartersID *int64) (*models.FacultyProfile, error) {
	profile, err := s.manageable(ctx, actor, lookup)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignment(ctx, profile.FacilityID, nil, quartersID); err != nil {
		return nil, err
	}
	if err := s.facultyRepo.SetQuarters(ctx, profile.ID, quartersID, actor.ActorID()); err != nil {
		return nil, fmt.Errorf("error changing quarters: %w", err)
	}
	return s.reload(ctx, profile)
}

// Delete soft deletes a faculty profile and deactivates its user
func (s *FacultyService) Delete(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) error {
	profile, err := s.manageable(ctx, actor, lookup)
	if err != nil {
		return err
	}
	if profile.UserID == actor.UserID {
		return ErrSelfDelete
	}
	if err := s.facultyRepo.SoftDelete(ctx, profile.ID, actor.ActorID()); err != nil {
		return fmt.Errorf("error deleting faculty member: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("facultyID", profile.ID).Int64("userID", actor.UserID).Msg("Faculty member deleted")
	return nil
}

// manageable loads a profile and checks that actor administers it.
func (s *FacultyService) manageable(ctx context.Context, actor *auth.Principal, lookup slug.Lookup) (*models.FacultyProfile, error) {
	if err := s.authz.RequireFacultyAdmin(actor); err != nil {
		return nil, err
	}
	profile, err := s.Get(ctx, lookup)
	if err != nil {
		return nil, err
	}

	if profile.FacilityID == nil {
		if err := s.authz.RequireOrganizationManager(ctx, actor, profile.OrganizationID); err != nil {
			return nil, err
		}
		return profile, nil
	}
	facility, err := s.facilityRepo.GetByID(ctx, *profile.FacilityID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireFacilityManager(ctx, actor, facility); err != nil {
		return nil, err
	}
	return profile, nil
}

// checkAssignment verifies that the department and quarters belong to facilityID.
func (s *FacultyService) checkAssignment(ctx context.Context, facilityID, departmentID, quartersID *int64) error {
	if departmentID == nil && quartersID == nil {
		return nil
	}
	if facilityID == nil {
		return apperrors.ErrAssignmentOutOfScope
	}

	if departmentID != nil {
		d, err := s.departmentRepo.GetByID(ctx, *departmentID)
		if err != nil {
			if isNotFound(err) {
				return apperrors.NewValidationError("departmentId", apperrors.ErrDepartmentNotFound.Error())
			}
			return err
		}
		if d.FacilityID != *facilityID {
			return apperrors.ErrAssignmentOutOfScope
		}
	}
	if quartersID != nil {
		q, err := s.quartersRepo.GetByID(ctx, *quartersID)
		if err != nil {
			if isNotFound(err) {
				return apperrors.NewValidationError("quartersId", apperrors.ErrQuartersNotFound.Error())
			}
			return err
		}
		if q.FacilityID != *facilityID {
			return apperrors.ErrAssignmentOutOfScope
		}
	}
	return nil
}

// checkUserUnique rejects a taken username or an email used by another user.
// An empty username is not checked.
func (s *FacultyService) checkUserUnique(ctx context.Context, username, email string, excludeUserID int64) error {
	return checkUserUnique(ctx, s.userRepo, username, email, excludeUserID)
}

func checkUserUnique(ctx context.Context, users UserStore, username, email string, excludeUserID int64) error {
	if username != "" {
		taken, err := users.UsernameExists(ctx, username)
		if err != nil {
			return fmt.Errorf("error checking if username exists: %w", err)
		}
		if taken {
			return apperrors.ErrUsernameExists
		}
	}
	taken, err := users.EmailExists(ctx, email, excludeUserID)
	if err != nil {
		return fmt.Errorf("error checking if email exists: %w", err)
	}
	if taken {
		return apperrors.ErrEmailAlreadyExists
	}
	return nil
}

// reload returns the stored profile with its joined names.
func (s *FacultyService) reload(ctx context.Context, profile *models.FacultyProfile) (*models.FacultyProfile, error) {
	fresh, err := s.facultyRepo.GetByID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("error reloading faculty member: %w", err)
	}
	return fresh, nil
}
