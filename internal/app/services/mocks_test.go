package services

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/app/settings"
)

func int64Ptr(v int64) *int64 { return &v }

func facultyAdmin(userID, orgID int64) *auth.Principal {
	return &auth.Principal{
		UserID:         userID,
		Username:       "admin",
		UserType:       models.UserTypeFaculty,
		IsAdmin:        true,
		OrganizationID: int64Ptr(orgID),
	}
}

func facultyMember(userID, orgID int64) *auth.Principal {
	p := facultyAdmin(userID, orgID)
	p.Username = "member"
	p.IsAdmin = false
	return p
}

type mockOrgStore struct{ mock.Mock }

func (m *mockOrgStore) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Organization)
	return o, args.Error(1)
}

func (m *mockOrgStore) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	args := m.Called(ctx, slug)
	o, _ := args.Get(0).(*models.Organization)
	return o, args.Error(1)
}

func (m *mockOrgStore) List(ctx context.Context, limit, offset int) ([]*models.Organization, int64, error) {
	args := m.Called(ctx, limit, offset)
	items, _ := args.Get(0).([]*models.Organization)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockOrgStore) Create(ctx context.Context, o *models.Organization) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrgStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrgStore) RootID(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrgStore) DescendantIDs(ctx context.Context, id int64) ([]int64, error) {
	args := m.Called(ctx, id)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	args := m.Called(ctx, login)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) SetAdmin(ctx context.Context, userID int64, isAdmin bool, actorID *int64) error {
	return m.Called(ctx, userID, isAdmin, actorID).Error(0)
}

type mockFacilityStore struct{ mock.Mock }

func (m *mockFacilityStore) GetByID(ctx context.Context, id int64) (*models.Facility, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*models.Facility)
	return f, args.Error(1)
}

func (m *mockFacilityStore) GetBySlug(ctx context.Context, slug string, orgIDs []int64) (*models.Facility, error) {
	args := m.Called(ctx, slug, orgIDs)
	f, _ := args.Get(0).(*models.Facility)
	return f, args.Error(1)
}

func (m *mockFacilityStore) List(ctx context.Context, filter repositories.FacilityFilter, limit, offset int) ([]*models.Facility, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	items, _ := args.Get(0).([]*models.Facility)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockFacilityStore) SlugExists(ctx context.Context, orgID int64, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, orgID, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFacilityStore) NameExists(ctx context.Context, orgID int64, name string, excludeID int64) (bool, error) {
	args := m.Called(ctx, orgID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFacilityStore) Create(ctx context.Context, f *models.Facility) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFacilityStore) Update(ctx context.Context, f *models.Facility) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFacilityStore) SoftDelete(ctx context.Context, id int64, actorID *int64) error {
	return m.Called(ctx, id, actorID).Error(0)
}

type mockDepartmentStore struct{ mock.Mock }

func (m *mockDepartmentStore) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*models.Department)
	return d, args.Error(1)
}

func (m *mockDepartmentStore) GetBySlug(ctx context.Context, facilityID int64, slug string) (*models.Department, error) {
	args := m.Called(ctx, facilityID, slug)
	d, _ := args.Get(0).(*models.Department)
	return d, args.Error(1)
}

func (m *mockDepartmentStore) FindBySlug(ctx context.Context, slug string, orgIDs []int64) (*models.Department, error) {
	args := m.Called(ctx, slug, orgIDs)
	d, _ := args.Get(0).(*models.Department)
	return d, args.Error(1)
}

func (m *mockDepartmentStore) List(ctx context.Context, filter repositories.DepartmentFilter, limit, offset int) ([]*models.Department, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	items, _ := args.Get(0).([]*models.Department)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockDepartmentStore) AncestorIDs(ctx context.Context, id int64) ([]int64, error) {
	args := m.Called(ctx, id)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *mockDepartmentStore) SlugExists(ctx context.Context, facilityID int64, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, facilityID, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockDepartmentStore) Create(ctx context.Context, d *models.Department) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDepartmentStore) Update(ctx context.Context, d *models.Department) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDepartmentStore) SoftDelete(ctx context.Context, id int64, actorID *int64) error {
	return m.Called(ctx, id, actorID).Error(0)
}

type mockQuartersTypeStore struct{ mock.Mock }

func (m *mockQuartersTypeStore) GetByID(ctx context.Context, id int64) (*models.QuartersType, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.QuartersType)
	return t, args.Error(1)
}

func (m *mockQuartersTypeStore) GetBySlug(ctx context.Context, slug string, filter repositories.QuartersTypeFilter) (*models.QuartersType, error) {
	args := m.Called(ctx, slug, filter)
	t, _ := args.Get(0).(*models.QuartersType)
	return t, args.Error(1)
}

func (m *mockQuartersTypeStore) List(ctx context.Context, filter repositories.QuartersTypeFilter, limit, offset int) ([]*models.QuartersType, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	items, _ := args.Get(0).([]*models.QuartersType)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockQuartersTypeStore) SlugExists(ctx context.Context, orgID *int64, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, orgID, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockQuartersTypeStore) Create(ctx context.Context, t *models.QuartersType) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockQuartersTypeStore) Update(ctx context.Context, t *models.QuartersType) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockQuartersTypeStore) SoftDelete(ctx context.Context, id int64, actorID *int64) error {
	return m.Called(ctx, id, actorID).Error(0)
}

type mockQuartersStore struct{ mock.Mock }

func (m *mockQuartersStore) GetByID(ctx context.Context, id int64) (*models.Quarters, error) {
	args := m.Called(ctx, id)
	q, _ := args.Get(0).(*models.Quarters)
	return q, args.Error(1)
}

func (m *mockQuartersStore) GetBySlug(ctx context.Context, slug string, orgIDs []int64) (*models.Quarters, error) {
	args := m.Called(ctx, slug, orgIDs)
	q, _ := args.Get(0).(*models.Quarters)
	return q, args.Error(1)
}

func (m *mockQuartersStore) List(ctx context.Context, filter repositories.QuartersFilter, limit, offset int) ([]*models.Quarters, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	items, _ := args.Get(0).([]*models.Quarters)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockQuartersStore) SlugExists(ctx context.Context, facilityID int64, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, facilityID, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockQuartersStore) Create(ctx context.Context, q *models.Quarters) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockQuartersStore) Update(ctx context.Context, q *models.Quarters) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockQuartersStore) SoftDelete(ctx context.Context, id int64, actorID *int64) error {
	return m.Called(ctx, id, actorID).Error(0)
}

type mockFacultyStore struct{ mock.Mock }

func (m *mockFacultyStore) GetByID(ctx context.Context, id int64) (*models.FacultyProfile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.FacultyProfile)
	return p, args.Error(1)
}

func (m *mockFacultyStore) GetByUsername(ctx context.Context, username string) (*models.FacultyProfile, error) {
	args := m.Called(ctx, username)
	p, _ := args.Get(0).(*models.FacultyProfile)
	return p, args.Error(1)
}

func (m *mockFacultyStore) GetByUserID(ctx context.Context, userID int64) (*models.FacultyProfile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*models.FacultyProfile)
	return p, args.Error(1)
}

func (m *mockFacultyStore) List(ctx context.Context, filter repositories.FacultyFilter, limit, offset int) ([]*models.FacultyProfile, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	items, _ := args.Get(0).([]*models.FacultyProfile)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockFacultyStore) CreateWithUser(ctx context.Context, user *models.User, p *models.FacultyProfile) error {
	return m.Called(ctx, user, p).Error(0)
}

func (m *mockFacultyStore) Update(ctx context.Context, p *models.FacultyProfile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockFacultyStore) SetDepartment(ctx context.Context, id int64, departmentID *int64, actorID *int64) error {
	return m.Called(ctx, id, departmentID, actorID).Error(0)
}

func (m *mockFacultyStore) SetQuarters(ctx context.Context, id int64, quartersID *int64, actorID *int64) error {
	return m.Called(ctx, id, quartersID, actorID).Error(0)
}

func (m *mockFacultyStore) SoftDelete(ctx context.Context, id int64, actorID *int64) error {
	return m.Called(ctx, id, actorID).Error(0)
}

type mockResolver struct{ mock.Mock }

func (m *mockResolver) Chain(ctx context.Context, ref settings.Ref) ([]settings.Ref, error) {
	args := m.Called(ctx, ref)
	refs, _ := args.Get(0).([]settings.Ref)
	return refs, args.Error(1)
}

func (m *mockResolver) Effective(ctx context.Context, ref settings.Ref) (map[string]settings.Resolved, error) {
	args := m.Called(ctx, ref)
	values, _ := args.Get(0).(map[string]settings.Resolved)
	return values, args.Error(1)
}

func (m *mockResolver) Get(ctx context.Context, ref settings.Ref, key string) (settings.Resolved, error) {
	args := m.Called(ctx, ref, key)
	return args.Get(0).(settings.Resolved), args.Error(1)
}

func (m *mockResolver) Exists(ctx context.Context, ref settings.Ref) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

func (m *mockResolver) Put(ctx context.Context, ref settings.Ref, key string, value json.RawMessage, actorID *int64) error {
	return m.Called(ctx, ref, key, value, actorID).Error(0)
}

func (m *mockResolver) Delete(ctx context.Context, ref settings.Ref, key string) error {
	return m.Called(ctx, ref, key).Error(0)
}

func (m *mockResolver) DepartmentLabel(ctx context.Context, ref settings.Ref) string {
	return m.Called(ctx, ref).String(0)
}

func (m *mockResolver) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) GenerateToken(user *models.User) (string, int, error) {
	args := m.Called(user)
	return args.String(0), args.Int(1), args.Error(2)
}

// orgTreeOf makes root and every organization in ids one tree rooted at root.
func orgTreeOf(orgs *mockOrgStore, root int64, ids ...int64) []int64 {
	tree := append([]int64{root}, ids...)
	for _, id := range tree {
		orgs.On("RootID", mock.Anything, id).Return(root, nil).Maybe()
	}
	orgs.On("DescendantIDs", mock.Anything, root).Return(tree, nil).Maybe()
	return tree
}

type fixture struct {
	orgs        *mockOrgStore
	users       *mockUserStore
	facilities  *mockFacilityStore
	departments *mockDepartmentStore
	types       *mockQuartersTypeStore
	quarters    *mockQuartersStore
	faculty     *mockFacultyStore
	resolver    *mockResolver
	tokens      *mockTokens
	authz       *auth.AuthorizationService
}

func newFixture() *fixture {
	f := &fixture{
		orgs:        new(mockOrgStore),
		users:       new(mockUserStore),
		facilities:  new(mockFacilityStore),
		departments: new(mockDepartmentStore),
		types:       new(mockQuartersTypeStore),
		quarters:    new(mockQuartersStore),
		faculty:     new(mockFacultyStore),
		resolver:    new(mockResolver),
		tokens:      new(mockTokens),
	}
	f.authz = auth.NewAuthorizationService(f.orgs)
	return f
}

func (f *fixture) facilityService() *FacilityService {
	return NewFacilityService(f.facilities, f.orgs, f.departments, f.quarters, f.faculty, f.authz, f.resolver)
}

func (f *fixture) departmentService() *DepartmentService {
	return NewDepartmentService(f.departments, f.facilities, f.orgs, f.authz, f.resolver)
}

func (f *fixture) quartersTypeService() *QuartersTypeService {
	return NewQuartersTypeService(f.types, f.orgs, f.authz, f.resolver)
}

func (f *fixture) quartersService() *QuartersService {
	return NewQuartersService(f.quarters, f.facilities, f.types, f.orgs, f.authz, f.resolver)
}

func (f *fixture) facultyService() *FacultyService {
	return NewFacultyService(f.faculty, f.users, f.facilities, f.departments, f.quarters, f.orgs, f.authz)
}

func (f *fixture) authService() *AuthService {
	return NewAuthService(f.users, f.orgs, f.facilities, f.faculty, f.authz, f.tokens)
}

func (f *fixture) settingsService() *SettingsService {
	return NewSettingsService(f.resolver, f.faculty, f.authz)
}

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.orgs.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.facilities.AssertExpectations(t)
	f.departments.AssertExpectations(t)
	f.types.AssertExpectations(t)
	f.quarters.AssertExpectations(t)
	f.faculty.AssertExpectations(t)
	f.resolver.AssertExpectations(t)
	f.tokens.AssertExpectations(t)
}
