// Package services holds the business rules of the facilities API.
//
// Services defined in this package:
//   - AuthService: login and faculty self-registration
//   - OrganizationService: organization lookups and the organization tree
//   - FacilityService: facilities, their detail tables and the admin manage view
//   - DepartmentService: departments nested under facilities
//   - QuartersTypeService: quarters types owned by an organization or shared
//   - QuartersService: quarters and their capacity rules
//   - FacultyService: faculty profiles and their assignments
//   - SettingsService: settings attached to any owner record
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/app/settings"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// OrganizationStore is the organization persistence used by the services.
type OrganizationStore interface {
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	List(ctx context.Context, limit, offset int) ([]*models.Organization, int64, error)
	Create(ctx context.Context, o *models.Organization) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	RootID(ctx context.Context, id int64) (int64, error)
	DescendantIDs(ctx context.Context, id int64) ([]int64, error)
}

// UserStore is the user persistence used by the services.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	SetAdmin(ctx context.Context, userID int64, isAdmin bool, actorID *int64) error
}

// FacilityStore is the facility persistence used by the services.
type FacilityStore interface {
	GetByID(ctx context.Context, id int64) (*models.Facility, error)
	GetBySlug(ctx context.Context, slug string, orgIDs []int64) (*models.Facility, error)
	List(ctx context.Context, filter repositories.FacilityFilter, limit, offset int) ([]*models.Facility, int64, error)
	SlugExists(ctx context.Context, orgID int64, slug string, excludeID int64) (bool, error)
	NameExists(ctx context.Context, orgID int64, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, f *models.Facility) error
	Update(ctx context.Context, f *models.Facility) error
	SoftDelete(ctx context.Context, id int64, actorID *int64) error
}

// DepartmentStore is the department persistence used by the services.
type DepartmentStore interface {
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	GetBySlug(ctx context.Context, facilityID int64, slug string) (*models.Department, error)
	FindBySlug(ctx context.Context, slug string, orgIDs []int64) (*models.Department, error)
	List(ctx context.Context, filter repositories.DepartmentFilter, limit, offset int) ([]*models.Department, int64, error)
	AncestorIDs(ctx context.Context, id int64) ([]int64, error)
	SlugExists(ctx context.Context, facilityID int64, slug string, excludeID int64) (bool, error)
	Create(ctx context.Context, d *models.Department) error
	Update(ctx context.Context, d *models.Department) error
	SoftDelete(ctx context.Context, id int64, actorID *int64) error
}

// QuartersTypeStore is the quarters type persistence used by the services.
type QuartersTypeStore interface {
	GetByID(ctx context.Context, id int64) (*models.QuartersType, error)
	GetBySlug(ctx context.Context, slug string, filter repositories.QuartersTypeFilter) (*models.QuartersType, error)
	List(ctx context.Context, filter repositories.QuartersTypeFilter, limit, offset int) ([]*models.QuartersType, int64, error)
	SlugExists(ctx context.Context, orgID *int64, slug string, excludeID int64) (bool, error)
	Create(ctx context.Context, t *models.QuartersType) error
	Update(ctx context.Context, t *models.QuartersType) error
	SoftDelete(ctx context.Context, id int64, actorID *int64) error
}

// QuartersStore is the quarters persistence used by the services.
type QuartersStore interface {
	GetByID(ctx context.Context, id int64) (*models.Quarters, error)
	GetBySlug(ctx context.Context, slug string, orgIDs []int64) (*models.Quarters, error)
	List(ctx context.Context, filter repositories.QuartersFilter, limit, offset int) ([]*models.Quarters, int64, error)
	SlugExists(ctx context.Context, facilityID int64, slug string, excludeID int64) (bool, error)
	Create(ctx context.Context, q *models.Quarters) error
	Update(ctx context.Context, q *models.Quarters) error
	SoftDelete(ctx context.Context, id int64, actorID *int64) error
}

// FacultyStore is the faculty profile persistence used by the services.
type FacultyStore interface {
	GetByID(ctx context.Context, id int64) (*models.FacultyProfile, error)
	GetByUsername(ctx context.Context, username string) (*models.FacultyProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*models.FacultyProfile, error)
	List(ctx context.Context, filter repositories.FacultyFilter, limit, offset int) ([]*models.FacultyProfile, int64, error)
	CreateWithUser(ctx context.Context, user *models.User, p *models.FacultyProfile) error
	Update(ctx context.Context, p *models.FacultyProfile) error
	SetDepartment(ctx context.Context, id int64, departmentID *int64, actorID *int64) error
	SetQuarters(ctx context.Context, id int64, quartersID *int64, actorID *int64) error
	SoftDelete(ctx context.Context, id int64, actorID *int64) error
}

// SettingsResolver resolves and stores settings along fallback chains.
type SettingsResolver interface {
	Chain(ctx context.Context, ref settings.Ref) ([]settings.Ref, error)
	Effective(ctx context.Context, ref settings.Ref) (map[string]settings.Resolved, error)
	Get(ctx context.Context, ref settings.Ref, key string) (settings.Resolved, error)
	Exists(ctx context.Context, ref settings.Ref) (bool, error)
	Put(ctx context.Context, ref settings.Ref, key string, value json.RawMessage, actorID *int64) error
	Delete(ctx context.Context, ref settings.Ref, key string) error
	DepartmentLabel(ctx context.Context, ref settings.Ref) string
	Invalidate(ctx context.Context)
}

var _ SettingsResolver = (*settings.Resolver)(nil)

// Page is one page of a list result.
type Page[T any] struct {
	Items   []*T
	Total   int64
	Request helpers.PageRequest
}

// Pagination describes the page for API responses.
func (p *Page[T]) Pagination() dto.PaginationInfo {
	return helpers.NewPaginationInfo(p.Total, p.Request.Page, p.Request.Size)
}

func newPage[T any](items []*T, total int64, req helpers.PageRequest) *Page[T] {
	if items == nil {
		items = []*T{}
	}
	return &Page[T]{Items: items, Total: total, Request: req}
}

// orgTree returns every organization sharing a root with orgID.
func orgTree(ctx context.Context, orgs OrganizationStore, orgID int64) ([]int64, error) {
	rootID, err := orgs.RootID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("error resolving root organization: %w", err)
	}
	ids, err := orgs.DescendantIDs(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("error listing organization tree: %w", err)
	}
	return ids, nil
}

// actorScope limits slug lookups to the actor's organization tree. Actors
// without an organization see every organization.
func actorScope(ctx context.Context, orgs OrganizationStore, actor *auth.Principal) ([]int64, error) {
	if actor == nil || actor.OrganizationID == nil {
		return nil, nil
	}
	return orgTree(ctx, orgs, *actor.OrganizationID)
}

// createSlug returns the explicit slug when it is free, or a unique slug derived from name.
func createSlug(ctx context.Context, explicit, name string, exists slug.ExistsFunc) (string, error) {
	if explicit != "" {
		taken, err := exists(ctx, explicit)
		if err != nil {
			return "", fmt.Errorf("error checking slug: %w", err)
		}
		if taken {
			return "", apperrors.NewValidationError("slug", "slug is already in use")
		}
		return explicit, nil
	}
	return slug.Unique(ctx, slug.Slugify(name), exists)
}

// updateSlug keeps current unless an explicit slug is given or the name changed.
func updateSlug(ctx context.Context, explicit, current, oldName, newName string, exists slug.ExistsFunc) (string, error) {
	if explicit != "" && explicit != current {
		return createSlug(ctx, explicit, newName, exists)
	}
	if explicit == "" && !strings.EqualFold(strings.TrimSpace(oldName), strings.TrimSpace(newName)) {
		return slug.Unique(ctx, slug.Slugify(newName), exists)
	}
	return current, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// isNotFound reports whether err belongs to the not-found class.
func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrResourceNotFound)
}
