package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

func TestFacilityCreateDefaultsToActorOrganization(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1, 2)
	f.facilities.On("NameExists", mock.Anything, int64(2), "Main Campus", int64(0)).Return(false, nil)
	f.facilities.On("SlugExists", mock.Anything, int64(2), "main-campus", int64(0)).Return(true, nil)
	f.facilities.On("SlugExists", mock.Anything, int64(2), "main-campus-2", int64(0)).Return(false, nil)
	f.facilities.On("Create", mock.Anything, mock.MatchedBy(func(fc *models.Facility) bool {
		return fc.OrganizationID == 2 && fc.Slug == "main-campus-2" && fc.IsActive && *fc.CreatedBy == 7
	})).Return(nil)

	facility, err := f.facilityService().Create(context.Background(), facultyAdmin(7, 2),
		dto.CreateFacilityRequest{Name: "  Main Campus "})
	require.NoError(t, err)
	assert.Equal(t, "Main Campus", facility.Name)
	assert.Equal(t, "main-campus-2", facility.Slug)
	f.assertExpectations(t)
}

func TestFacilityCreateRejectsDuplicateName(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1)
	f.facilities.On("NameExists", mock.Anything, int64(1), "Main Campus", int64(0)).Return(true, nil)

	_, err := f.facilityService().Create(context.Background(), facultyAdmin(7, 1),
		dto.CreateFacilityRequest{Name: "Main Campus"})
	assert.ErrorIs(t, err, apperrors.ErrFacilityAlreadyExists)
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)
	f.facilities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFacilityCreateRejectsTakenExplicitSlug(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1)
	f.facilities.On("NameExists", mock.Anything, int64(1), "Annex", int64(0)).Return(false, nil)
	f.facilities.On("SlugExists", mock.Anything, int64(1), "main", int64(0)).Return(true, nil)

	_, err := f.facilityService().Create(context.Background(), facultyAdmin(7, 1),
		dto.CreateFacilityRequest{Name: "Annex", Slug: "main"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "slug", apperrors.Field(err))
}

func TestFacilityCreateRequiresFacultyAdmin(t *testing.T) {
	f := newFixture()

	_, err := f.facilityService().Create(context.Background(), facultyMember(7, 1),
		dto.CreateFacilityRequest{Name: "Main Campus"})
	assert.ErrorIs(t, err, auth.ErrNotFacultyAdmin)
	f.assertExpectations(t)
}

func TestFacilityCreateInOtherTreeForbidden(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1)
	orgTreeOf(f.orgs, 9)

	_, err := f.facilityService().Create(context.Background(), facultyAdmin(7, 1),
		dto.CreateFacilityRequest{Name: "Elsewhere", OrganizationID: int64Ptr(9)})
	assert.ErrorIs(t, err, auth.ErrOutsideOwnTree)
}

func TestFacilityUpdateKeepsSlugWhenNameUnchanged(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1)
	existing := &models.Facility{ID: 5, OrganizationID: 1, Name: "Main", Slug: "main-site", IsActive: true}
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	f.facilities.On("NameExists", mock.Anything, int64(1), "Main", int64(5)).Return(false, nil)
	f.facilities.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, _, err := f.facilityService().Update(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5},
		dto.UpdateFacilityRequest{Name: "Main", Address: "1 Road"})
	require.NoError(t, err)
	assert.Equal(t, "main-site", updated.Slug)
	assert.Equal(t, "1 Road", updated.Address)
	f.facilities.AssertNotCalled(t, "SlugExists", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFacilityUpdateRegeneratesSlugOnRename(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1)
	existing := &models.Facility{ID: 5, OrganizationID: 1, Name: "Main", Slug: "main"}
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	f.facilities.On("NameExists", mock.Anything, int64(1), "North Site", int64(5)).Return(false, nil)
	f.facilities.On("SlugExists", mock.Anything, int64(1), "north-site", int64(5)).Return(false, nil)
	f.facilities.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, _, err := f.facilityService().Update(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5},
		dto.UpdateFacilityRequest{Name: "North Site"})
	require.NoError(t, err)
	assert.Equal(t, "north-site", updated.Slug)
	f.assertExpectations(t)
}

func TestFacilityUpdateReportsClearedImage(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1)
	existing := &models.Facility{ID: 5, OrganizationID: 1, Name: "Main", Slug: "main", ImageURL: "/uploads/facilities/old.png"}
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	f.facilities.On("NameExists", mock.Anything, int64(1), "Main", int64(5)).Return(false, nil)
	f.facilities.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, replaced, err := f.facilityService().Update(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5},
		dto.UpdateFacilityRequest{Name: "Main"})
	require.NoError(t, err)
	assert.Empty(t, updated.ImageURL)
	assert.Equal(t, "/uploads/facilities/old.png", replaced)

	existing.ImageURL = "/uploads/facilities/kept.png"
	_, replaced, err = f.facilityService().Update(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5},
		dto.UpdateFacilityRequest{Name: "Main", ImageURL: "/uploads/facilities/kept.png"})
	require.NoError(t, err)
	assert.Empty(t, replaced)
}

func TestFacilityDeleteOutsideTreeForbidden(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1, 2)
	orgTreeOf(f.orgs, 9)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(&models.Facility{ID: 5, OrganizationID: 9}, nil)

	err := f.facilityService().Delete(context.Background(), facultyAdmin(7, 2), slug.Lookup{ID: 5})
	assert.ErrorIs(t, err, auth.ErrOutsideOwnTree)
	f.facilities.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
}

func TestFacilityDeleteInvalidatesSettings(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1, 2)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(&models.Facility{ID: 5, OrganizationID: 2}, nil)
	f.facilities.On("SoftDelete", mock.Anything, int64(5), int64Ptr(7)).Return(nil)
	f.resolver.On("Invalidate", mock.Anything).Return()

	require.NoError(t, f.facilityService().Delete(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5}))
	f.assertExpectations(t)
}

func TestFacilityGetBySlugUsesActorTree(t *testing.T) {
	f := newFixture()
	tree := orgTreeOf(f.orgs, 1, 2, 3)
	want := &models.Facility{ID: 5, OrganizationID: 3, Slug: "annex"}
	f.facilities.On("GetBySlug", mock.Anything, "annex", tree).Return(want, nil)

	got, err := f.facilityService().Get(context.Background(), facultyMember(8, 2), slug.Lookup{Slug: "annex"})
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestFacilityManageWithoutFacility(t *testing.T) {
	f := newFixture()
	f.faculty.On("GetByUserID", mock.Anything, int64(7)).Return(&models.FacultyProfile{ID: 3, UserID: 7}, nil)

	_, err := f.facilityService().Manage(context.Background(), facultyAdmin(7, 1), helpers.NewPageRequest(1, helpers.ManagePageSize))
	assert.ErrorIs(t, err, apperrors.ErrNoFacilityAssigned)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestFacilityManageListsTables(t *testing.T) {
	f := newFixture()
	page := helpers.NewPageRequest(2, helpers.ManagePageSize)
	facility := &models.Facility{ID: 5, OrganizationID: 2, Name: "Main"}
	f.faculty.On("GetByUserID", mock.Anything, int64(7)).Return(&models.FacultyProfile{ID: 3, UserID: 7, FacilityID: int64Ptr(5)}, nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(facility, nil)
	f.orgs.On("RootID", mock.Anything, int64(2)).Return(int64(1), nil)
	f.orgs.On("GetByID", mock.Anything, int64(1)).Return(&models.Organization{ID: 1, Name: "Root"}, nil)
	f.departments.On("List", mock.Anything, repositories.DepartmentFilter{FacilityID: 5}, 6, 6).
		Return([]*models.Department{{ID: 1}}, int64(7), nil)
	f.quarters.On("List", mock.Anything, repositories.QuartersFilter{FacilityID: 5}, 6, 6).
		Return(nil, int64(0), nil)
	f.faculty.On("List", mock.Anything, repositories.FacultyFilter{FacilityID: 5}, 6, 6).
		Return([]*models.FacultyProfile{{ID: 3}}, int64(1), nil)

	detail, err := f.facilityService().Manage(context.Background(), facultyAdmin(7, 2), page)
	require.NoError(t, err)
	assert.Same(t, facility, detail.Facility)
	assert.Equal(t, "Root", detail.RootOrganization.Name)
	assert.Len(t, detail.Departments.Items, 1)
	assert.Equal(t, 2, detail.Departments.Pagination().TotalPages)
	assert.NotNil(t, detail.Quarters.Items)
	assert.Empty(t, detail.Quarters.Items)
	f.assertExpectations(t)
}

func TestFacilityRootOrganization(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(&models.Facility{ID: 5, OrganizationID: 3}, nil)
	f.orgs.On("RootID", mock.Anything, int64(3)).Return(int64(1), nil)
	f.orgs.On("GetByID", mock.Anything, int64(1)).Return(&models.Organization{ID: 1, Slug: "root"}, nil)

	root, err := f.facilityService().RootOrganization(context.Background(), nil, slug.Lookup{ID: 5})
	require.NoError(t, err)
	assert.Equal(t, "root", root.Slug)
}

func TestFacilitySetImageReturnsPrevious(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1)
	existing := &models.Facility{ID: 5, OrganizationID: 1, ImageURL: "/uploads/facilities/old.png"}
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	f.facilities.On("Update", mock.Anything, mock.MatchedBy(func(fc *models.Facility) bool {
		return fc.ImageURL == "/uploads/facilities/new.png" && *fc.UpdatedBy == 7
	})).Return(nil)

	facility, previous, err := f.facilityService().SetImage(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5}, "/uploads/facilities/new.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/facilities/old.png", previous)
	assert.Equal(t, "/uploads/facilities/new.png", facility.ImageURL)
	f.assertExpectations(t)
}
