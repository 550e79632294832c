package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/services"
	"github.com/yigit/facilityhub/internal/app/settings"
	"github.com/yigit/facilityhub/internal/middleware"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/filestorage"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/slug"
	"github.com/yigit/facilityhub/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterBindingRules(); err != nil {
		panic(err)
	}
}

var admin = &auth.Principal{UserID: 7, Username: "admin", UserType: models.UserTypeFaculty, IsAdmin: true}

// newRouter returns an engine whose requests act as admin.
func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, admin)
		c.Next()
	})
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func page[T any](items ...*T) *services.Page[T] {
	return &services.Page[T]{Items: items, Total: int64(len(items)), Request: helpers.NewPageRequest(1, 10)}
}

type mockFacilityService struct{ mock.Mock }

func (m *mockFacilityService) List(ctx context.Context, p helpers.PageRequest) (*services.Page[models.Facility], error) {
	args := m.Called(ctx, p)
	r, _ := args.Get(0).(*services.Page[models.Facility])
	return r, args.Error(1)
}

func (m *mockFacilityService) ListByOrganization(ctx context.Context, org slug.Lookup, p helpers.PageRequest) (*services.Page[models.Facility], error) {
	args := m.Called(ctx, org, p)
	r, _ := args.Get(0).(*services.Page[models.Facility])
	return r, args.Error(1)
}

func (m *mockFacilityService) Detail(ctx context.Context, a *auth.Principal, l slug.Lookup, p helpers.PageRequest) (*services.FacilityDetail, error) {
	args := m.Called(ctx, a, l, p)
	r, _ := args.Get(0).(*services.FacilityDetail)
	return r, args.Error(1)
}

func (m *mockFacilityService) Manage(ctx context.Context, a *auth.Principal, p helpers.PageRequest) (*services.FacilityDetail, error) {
	args := m.Called(ctx, a, p)
	r, _ := args.Get(0).(*services.FacilityDetail)
	return r, args.Error(1)
}

func (m *mockFacilityService) Create(ctx context.Context, a *auth.Principal, req dto.CreateFacilityRequest) (*models.Facility, error) {
	args := m.Called(ctx, a, req)
	r, _ := args.Get(0).(*models.Facility)
	return r, args.Error(1)
}

func (m *mockFacilityService) RootOrganization(ctx context.Context, a *auth.Principal, l slug.Lookup) (*models.Organization, error) {
	args := m.Called(ctx, a, l)
	r, _ := args.Get(0).(*models.Organization)
	return r, args.Error(1)
}

func (m *mockFacilityService) Update(ctx context.Context, a *auth.Principal, l slug.Lookup, req dto.UpdateFacilityRequest) (*models.Facility, string, error) {
	args := m.Called(ctx, a, l, req)
	r, _ := args.Get(0).(*models.Facility)
	return r, args.String(1), args.Error(2)
}

func (m *mockFacilityService) Delete(ctx context.Context, a *auth.Principal, l slug.Lookup) error {
	return m.Called(ctx, a, l).Error(0)
}

type staticTitles string

func (s staticTitles) Title(context.Context, *models.Department) string { return string(s) }

func facilityRouter(svc *mockFacilityService) *gin.Engine {
	return facilityRouterWithImages(svc, nil)
}

func facilityRouterWithImages(svc *mockFacilityService, images filestorage.ImageStore) *gin.Engine {
	c := NewFacilityController(svc, staticTitles("Wing"), images)
	r := newRouter()
	r.GET("/facilities", c.ListFacilities)
	r.POST("/facilities", c.CreateFacility)
	r.GET("/facilities/manage", c.ManageFacility)
	r.GET("/facilities/:facility", c.GetFacility)
	r.PUT("/facilities/:facility", c.UpdateFacility)
	r.DELETE("/facilities/:facility", c.DeleteFacility)
	r.GET("/facilities/:facility/root-organization", c.GetRootOrganization)
	return r
}

func TestGetFacilityDetail(t *testing.T) {
	svc := new(mockFacilityService)
	facility := &models.Facility{ID: 5, OrganizationID: 2, Name: "Main Campus", Slug: "main-campus"}
	detail := &services.FacilityDetail{
		Facility:         facility,
		RootOrganization: &models.Organization{ID: 1, Name: "Northfield", Slug: "northfield"},
		Departments:      page(&models.Department{ID: 11, FacilityID: 5, Slug: "math", FacilitySlug: "main-campus"}),
		Quarters:         page[models.Quarters](),
		Faculty:          page[models.FacultyProfile](),
	}
	svc.On("Detail", mock.Anything, admin, slug.Lookup{Slug: "main-campus"}, helpers.NewPageRequest(1, 10)).Return(detail, nil)

	w := do(facilityRouter(svc), http.MethodGet, "/facilities/Main-Campus", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body dto.FacilityDetailResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Equal(t, "/api/v1/facilities/main-campus", body.Path)
	assert.Equal(t, "northfield", body.RootOrganization.Slug)
	assert.Len(t, body.Actions, 3)
	assert.Equal(t, int64(1), body.Departments.Pagination.TotalItems)
	items := body.Departments.Items.([]interface{})
	assert.Equal(t, "Wing", items[0].(map[string]interface{})["title"])
	svc.AssertExpectations(t)
}

func TestManageFacilityUsesShortPages(t *testing.T) {
	svc := new(mockFacilityService)
	svc.On("Manage", mock.Anything, admin, helpers.PageRequest{Page: 2, Size: helpers.ManagePageSize}).
		Return(nil, apperrors.ErrNoFacilityAssigned)

	w := do(facilityRouter(svc), http.MethodGet, "/facilities/manage?page=2&size=50", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "facility not found for current user", decode(t, w).Error.Message)
	svc.AssertExpectations(t)
}

func TestCreateFacilityValidation(t *testing.T) {
	svc := new(mockFacilityService)

	w := do(facilityRouter(svc), http.MethodPost, "/facilities", `{"name":"Main Campus","slug":"Not A Slug"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "slug", decode(t, w).Error.Field)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateFacility(t *testing.T) {
	svc := new(mockFacilityService)
	req := dto.CreateFacilityRequest{Name: "Main Campus"}
	svc.On("Create", mock.Anything, admin, req).Return(&models.Facility{ID: 5, Name: "Main Campus", Slug: "main-campus"}, nil)

	w := do(facilityRouter(svc), http.MethodPost, "/facilities", `{"name":"Main Campus"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestUpdateFacilityClearingImageRemovesFile(t *testing.T) {
	svc, images := new(mockFacilityService), new(mockImageStore)
	req := dto.UpdateFacilityRequest{Name: "Main Campus"}
	svc.On("Update", mock.Anything, admin, slug.Lookup{ID: 5}, req).
		Return(&models.Facility{ID: 5, Name: "Main Campus", Slug: "main-campus"}, "/uploads/facilities/old.png", nil)
	images.On("DeleteImage", "/uploads/facilities/old.png").Return(nil)

	w := do(facilityRouterWithImages(svc, images), http.MethodPut, "/facilities/5", `{"name":"Main Campus"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	images.AssertExpectations(t)
}

func TestUpdateFacilityKeepingImageLeavesFile(t *testing.T) {
	svc, images := new(mockFacilityService), new(mockImageStore)
	req := dto.UpdateFacilityRequest{Name: "Main Campus", ImageURL: "/uploads/facilities/old.png"}
	svc.On("Update", mock.Anything, admin, slug.Lookup{ID: 5}, req).
		Return(&models.Facility{ID: 5, Name: "Main Campus", ImageURL: "/uploads/facilities/old.png"}, "", nil)

	w := do(facilityRouterWithImages(svc, images), http.MethodPut, "/facilities/5",
		`{"name":"Main Campus","imageUrl":"/uploads/facilities/old.png"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	images.AssertNotCalled(t, "DeleteImage", mock.Anything)
}

func TestGetFacilityRootOrganization(t *testing.T) {
	svc := new(mockFacilityService)
	svc.On("RootOrganization", mock.Anything, admin, slug.Lookup{Slug: "north-wing"}).
		Return(&models.Organization{ID: 1, Name: "FacilityHub", Slug: "facilityhub"}, nil)

	w := do(facilityRouter(svc), http.MethodGet, "/facilities/north-wing/root-organization", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"slug":"facilityhub"`)
}

func TestDeleteFacilityForbidden(t *testing.T) {
	svc := new(mockFacilityService)
	svc.On("Delete", mock.Anything, admin, slug.Lookup{ID: 5}).Return(auth.ErrOutsideOwnTree)

	w := do(facilityRouter(svc), http.MethodDelete, "/facilities/5", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decode(t, w).Error.Code)
}

func TestInvalidLookupSegment(t *testing.T) {
	svc := new(mockFacilityService)

	w := do(facilityRouter(svc), http.MethodDelete, "/facilities/0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "facility", decode(t, w).Error.Field)
}

func TestListFacilitiesPagination(t *testing.T) {
	svc := new(mockFacilityService)
	result := &services.Page[models.Facility]{
		Items:   []*models.Facility{{ID: 1, Slug: "a"}, {ID: 2, Slug: "b"}},
		Total:   12,
		Request: helpers.NewPageRequest(2, 2),
	}
	svc.On("List", mock.Anything, helpers.NewPageRequest(2, 2)).Return(result, nil)

	w := do(facilityRouter(svc), http.MethodGet, "/facilities?page=2&size=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items      []dto.FacilityResponse `json:"items"`
		Pagination dto.PaginationInfo     `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Len(t, body.Items, 2)
	assert.Equal(t, dto.PaginationInfo{CurrentPage: 2, TotalPages: 6, PageSize: 2, TotalItems: 12}, body.Pagination)
}

type mockSettingsService struct{ mock.Mock }

func (m *mockSettingsService) Effective(ctx context.Context, ref settings.Ref) (*services.EffectiveSettings, error) {
	args := m.Called(ctx, ref)
	r, _ := args.Get(0).(*services.EffectiveSettings)
	return r, args.Error(1)
}

func (m *mockSettingsService) Chain(ctx context.Context, ref settings.Ref) ([]settings.Ref, error) {
	args := m.Called(ctx, ref)
	r, _ := args.Get(0).([]settings.Ref)
	return r, args.Error(1)
}

func (m *mockSettingsService) Get(ctx context.Context, ref settings.Ref, key string) (settings.Resolved, error) {
	args := m.Called(ctx, ref, key)
	return args.Get(0).(settings.Resolved), args.Error(1)
}

func (m *mockSettingsService) Put(ctx context.Context, a *auth.Principal, ref settings.Ref, key string, value json.RawMessage) (settings.Resolved, error) {
	args := m.Called(ctx, a, ref, key, value)
	return args.Get(0).(settings.Resolved), args.Error(1)
}

func (m *mockSettingsService) Delete(ctx context.Context, a *auth.Principal, ref settings.Ref, key string) error {
	return m.Called(ctx, a, ref, key).Error(0)
}

func settingsRouter(svc *mockSettingsService) *gin.Engine {
	c := NewSettingsController(svc)
	r := newRouter()
	r.GET("/settings/:kind/:id", c.GetEffectiveSettings)
	r.GET("/settings/:kind/:id/:key", c.GetSetting)
	r.PUT("/settings/:kind/:id/:key", c.PutSetting)
	r.DELETE("/settings/:kind/:id/:key", c.DeleteSetting)
	return r
}

func TestSettingsUnknownKind(t *testing.T) {
	w := do(settingsRouter(new(mockSettingsService)), http.MethodGet, "/settings/planet/1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeBadRequest, decode(t, w).Error.Code)
}

func TestSettingsGetReportsSource(t *testing.T) {
	svc := new(mockSettingsService)
	ref := settings.Ref{Kind: settings.KindDepartment, ID: 11}
	svc.On("Get", mock.Anything, ref, "department_label").
		Return(settings.Resolved{Value: json.RawMessage(`"Wing"`), Source: settings.Ref{Kind: settings.KindOrganization, ID: 1}}, nil)

	w := do(settingsRouter(svc), http.MethodGet, "/settings/department/11/department_label", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body dto.SettingResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Equal(t, dto.SettingOwner{Kind: "organization", ID: 1}, body.Source)
	assert.JSONEq(t, `"Wing"`, string(body.Value))
}

func TestSettingsChainSegment(t *testing.T) {
	svc := new(mockSettingsService)
	ref := settings.Ref{Kind: settings.KindFacility, ID: 5}
	svc.On("Chain", mock.Anything, ref).Return([]settings.Ref{ref, {Kind: settings.KindOrganization, ID: 1}}, nil)

	w := do(settingsRouter(svc), http.MethodGet, "/settings/facility/5/chain", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body dto.ChainResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Len(t, body.Chain, 2)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettingsPut(t *testing.T) {
	svc := new(mockSettingsService)
	ref := settings.Ref{Kind: settings.KindOrganization, ID: 1}
	svc.On("Put", mock.Anything, admin, ref, "max_nights", json.RawMessage(`3`)).
		Return(settings.Resolved{Value: json.RawMessage(`3`), Source: ref}, nil)

	w := do(settingsRouter(svc), http.MethodPut, "/settings/organization/1/max_nights", `{"value":3}`)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w = do(settingsRouter(svc), http.MethodPut, "/settings/organization/1/chain", `{"value":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsBadOwnerID(t *testing.T) {
	w := do(settingsRouter(new(mockSettingsService)), http.MethodDelete, "/settings/facility/x/key", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", decode(t, w).Error.Field)
}

type mockFacultyService struct {
	mock.Mock
	FacultyService
}

func (m *mockFacultyService) List(ctx context.Context, a *auth.Principal, facility *slug.Lookup, p helpers.PageRequest) (*services.Page[models.FacultyProfile], error) {
	args := m.Called(ctx, a, facility, p)
	r, _ := args.Get(0).(*services.Page[models.FacultyProfile])
	return r, args.Error(1)
}

func (m *mockFacultyService) Promote(ctx context.Context, a *auth.Principal, l slug.Lookup, isAdmin bool) (*models.FacultyProfile, error) {
	args := m.Called(ctx, a, l, isAdmin)
	r, _ := args.Get(0).(*models.FacultyProfile)
	return r, args.Error(1)
}

func facultyRouter(svc *mockFacultyService) *gin.Engine {
	c := NewFacultyController(svc)
	r := newRouter()
	r.GET("/faculty", c.ListFaculty)
	r.POST("/faculty/:faculty/promote", c.PromoteFaculty)
	return r
}

func TestListFacultyByFacilityQuery(t *testing.T) {
	svc := new(mockFacultyService)
	svc.On("List", mock.Anything, admin, &slug.Lookup{Slug: "main-campus"}, helpers.NewPageRequest(1, 10)).
		Return(page(&models.FacultyProfile{ID: 3, User: &models.User{Username: "jdoe"}}), nil)

	w := do(facultyRouter(svc), http.MethodGet, "/faculty?facility=main-campus", "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestPromoteRequiresFlag(t *testing.T) {
	svc := new(mockFacultyService)

	w := do(facultyRouter(svc), http.MethodPost, "/faculty/jdoe/promote", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "isAdmin", decode(t, w).Error.Field)

	svc.On("Promote", mock.Anything, admin, slug.Lookup{Slug: "jdoe"}, false).Return(nil, services.ErrSelfDemotion)
	w = do(facultyRouter(svc), http.MethodPost, "/faculty/jdoe/promote", `{"isAdmin":false}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, decode(t, w).Error.Code)
}

type countingTitles struct{ calls map[int64]int }

func (c *countingTitles) Title(_ context.Context, d *models.Department) string {
	c.calls[d.FacilityID]++
	if d.FacilityID == 5 {
		return "Wing"
	}
	return "Ward"
}

func TestDepartmentResponsesResolveTitleOncePerFacility(t *testing.T) {
	titles := &countingTitles{calls: map[int64]int{}}
	items := []*models.Department{{ID: 1, FacilityID: 5}, {ID: 2, FacilityID: 5}, {ID: 3, FacilityID: 6}, {ID: 4, FacilityID: 5}}

	out := departmentResponses(context.Background(), titles, items)
	require.Len(t, out, 4)
	assert.Equal(t, "Wing", out[1].Title)
	assert.Equal(t, "Ward", out[2].Title)
	assert.Equal(t, map[int64]int{5: 1, 6: 1}, titles.calls)
}
