package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/facilityhub/internal/pkg/auth"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// SharedQuartersTypes are created without an organization and are visible to every tree.
var SharedQuartersTypes = []string{"Dormitory", "Guest House", "Staff Flat"}

// Options names the default records. An empty AdminPassword skips the admin.
type Options struct {
	OrganizationName string
	FacilityName     string
	AdminUsername    string
	AdminEmail       string
	AdminPassword    string
}

// Store is the subset of repositories the seed writes through.
type Store struct {
	Organizations *repositories.OrganizationRepository
	Facilities    *repositories.FacilityRepository
	QuartersTypes *repositories.QuartersTypeRepository
	Users         *repositories.UserRepository
	Faculty       *repositories.FacultyRepository
}

// FromRepositories picks the seed store out of the repository container.
func FromRepositories(repos *repositories.Repositories) Store {
	return Store{
		Organizations: repos.OrganizationRepository,
		Facilities:    repos.FacilityRepository,
		QuartersTypes: repos.QuartersTypeRepository,
		Users:         repos.UserRepository,
		Faculty:       repos.FacultyRepository,
	}
}

// CreateDefaultData creates the default organization, facility, shared quarters
// types and faculty admin when they don't exist. It keeps going after a failed
// step and returns every error joined.
func CreateDefaultData(ctx context.Context, store Store, opts Options, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (organization, facility, quarters types, admin)...")
	var finalErr error

	org, err := ensureOrganization(ctx, store, opts.OrganizationName)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default organization")
		finalErr = errors.Join(finalErr, err)
	}

	var facility *models.Facility
	if org != nil {
		facility, err = ensureFacility(ctx, store, org.ID, opts.FacilityName)
		if err != nil {
			lgr.Error().Err(err).Msg("Error creating default facility")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, name := range SharedQuartersTypes {
		if err := ensureSharedQuartersType(ctx, store, name); err != nil {
			lgr.Error().Err(err).Str("quartersType", name).Msg("Error creating shared quarters type")
			finalErr = errors.Join(finalErr, err)
		}
	}

	switch {
	case opts.AdminPassword == "":
		lgr.Warn().Msg("No admin password configured, skipping default admin")
	case org == nil:
		finalErr = errors.Join(finalErr, errors.New("no organization for the default admin"))
	default:
		created, err := ensureAdmin(ctx, store, org, facility, opts)
		if err != nil {
			lgr.Error().Err(err).Msg("Error creating default admin user")
			finalErr = errors.Join(finalErr, err)
		} else if created {
			lgr.Info().Str("username", opts.AdminUsername).Msg("Default admin user created successfully")
		} else {
			lgr.Info().Msg("Admin user already exists, skipping creation")
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func ensureOrganization(ctx context.Context, store Store, name string) (*models.Organization, error) {
	s := slug.Slugify(name)
	org, err := store.Organizations.GetBySlug(ctx, s)
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, apperrors.ErrOrganizationNotFound) {
		return nil, err
	}

	org = &models.Organization{Name: name, Slug: s, IsActive: true}
	if err := store.Organizations.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("create organization %q: %w", name, err)
	}
	return org, nil
}

func ensureFacility(ctx context.Context, store Store, orgID int64, name string) (*models.Facility, error) {
	s := slug.Slugify(name)
	facility, err := store.Facilities.GetBySlug(ctx, s, []int64{orgID})
	if err == nil {
		return facility, nil
	}
	if !errors.Is(err, apperrors.ErrFacilityNotFound) {
		return nil, err
	}

	facility = &models.Facility{OrganizationID: orgID, Name: name, Slug: s, IsActive: true}
	if err := store.Facilities.Create(ctx, facility); err != nil {
		return nil, fmt.Errorf("create facility %q: %w", name, err)
	}
	return facility, nil
}

func ensureSharedQuartersType(ctx context.Context, store Store, name string) error {
	s := slug.Slugify(name)
	exists, err := store.QuartersTypes.SlugExists(ctx, nil, s, 0)
	if err != nil || exists {
		return err
	}
	return store.QuartersTypes.Create(ctx, &models.QuartersType{Name: name, Slug: s, IsActive: true})
}

func ensureAdmin(ctx context.Context, store Store, org *models.Organization, facility *models.Facility, opts Options) (bool, error) {
	username := strings.ToLower(opts.AdminUsername)
	exists, err := store.Users.UsernameExists(ctx, username)
	if err != nil || exists {
		return false, err
	}

	hash, err := pkgauth.HashPassword(opts.AdminPassword)
	if err != nil {
		return false, err
	}

	admin := &models.User{
		OrganizationID: &org.ID,
		Username:       username,
		Email:          opts.AdminEmail,
		PasswordHash:   hash,
		FirstName:      "System",
		LastName:       "Administrator",
		UserType:       models.UserTypeFaculty,
		IsAdmin:        true,
		IsActive:       true,
	}
	profile := &models.FacultyProfile{OrganizationID: org.ID}
	if facility != nil {
		profile.FacilityID = &facility.ID
	}
	if err := store.Faculty.CreateWithUser(ctx, admin, profile); err != nil {
		return false, fmt.Errorf("create admin user: %w", err)
	}
	return true, nil
}
