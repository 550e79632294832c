package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/settings"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

func mainCampus() *models.Facility {
	return &models.Facility{ID: 5, OrganizationID: 1, Name: "Main Campus", Slug: "main-campus"}
}

func TestDepartmentCreateUnderFacility(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1)
	f.facilities.On("GetBySlug", mock.Anything, "main-campus", []int64{1}).Return(mainCampus(), nil)
	f.departments.On("GetByID", mock.Anything, int64(10)).Return(&models.Department{ID: 10, FacilityID: 5}, nil)
	f.departments.On("SlugExists", mock.Anything, int64(5), "mathematics", int64(0)).Return(false, nil)
	f.departments.On("Create", mock.Anything, mock.MatchedBy(func(d *models.Department) bool {
		return d.FacilityID == 5 && *d.ParentID == 10 && d.Slug == "mathematics" && d.Abbreviation == "MATH"
	})).Return(nil)

	d, err := f.departmentService().Create(context.Background(), facultyAdmin(7, 1), slug.Lookup{Slug: "main-campus"},
		dto.CreateDepartmentRequest{Name: "Mathematics", Abbreviation: "MATH", ParentID: int64Ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/facilities/main-campus/departments/mathematics", d.Path())
	f.assertExpectations(t)
}

func TestDepartmentCreateRejectsParentOfOtherFacility(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.departments.On("GetByID", mock.Anything, int64(10)).Return(&models.Department{ID: 10, FacilityID: 6}, nil)

	_, err := f.departmentService().Create(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5},
		dto.CreateDepartmentRequest{Name: "Physics", ParentID: int64Ptr(10)})
	assert.ErrorIs(t, err, apperrors.ErrDepartmentParentInvalid)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	f.departments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDepartmentUpdateRejectsCycle(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.departments.On("GetBySlug", mock.Anything, int64(5), "science").
		Return(&models.Department{ID: 1, FacilityID: 5, Name: "Science", Slug: "science"}, nil)
	// 3 is a grandchild of 1: 3 -> 2 -> 1.
	f.departments.On("GetByID", mock.Anything, int64(3)).Return(&models.Department{ID: 3, FacilityID: 5, ParentID: int64Ptr(2)}, nil)
	f.departments.On("AncestorIDs", mock.Anything, int64(3)).Return([]int64{2, 1}, nil)

	_, err := f.departmentService().Update(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5}, slug.Lookup{Slug: "science"},
		dto.UpdateDepartmentRequest{Name: "Science", ParentID: int64Ptr(3)})
	assert.ErrorIs(t, err, apperrors.ErrDepartmentParentInvalid)
	f.departments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDepartmentUpdateRejectsSelfParent(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.departments.On("GetByID", mock.Anything, int64(1)).Return(&models.Department{ID: 1, FacilityID: 5, Name: "Science"}, nil)

	_, err := f.departmentService().Update(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5}, slug.Lookup{ID: 1},
		dto.UpdateDepartmentRequest{Name: "Science", ParentID: int64Ptr(1)})
	assert.ErrorIs(t, err, apperrors.ErrDepartmentParentInvalid)
}

func TestDepartmentInOtherFacilityIsNotFound(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.departments.On("GetByID", mock.Anything, int64(9)).Return(&models.Department{ID: 9, FacilityID: 6}, nil)

	_, err := f.departmentService().GetInFacility(context.Background(), facultyMember(8, 1), slug.Lookup{ID: 5}, slug.Lookup{ID: 9})
	assert.ErrorIs(t, err, apperrors.ErrDepartmentNotFound)
}

func TestDepartmentDeleteRequiresManager(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)

	err := f.departmentService().Delete(context.Background(), facultyMember(8, 1), slug.Lookup{ID: 5}, slug.Lookup{ID: 1})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	f.departments.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDepartmentDelete(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.departments.On("GetByID", mock.Anything, int64(1)).Return(&models.Department{ID: 1, FacilityID: 5}, nil)
	f.departments.On("SoftDelete", mock.Anything, int64(1), int64Ptr(7)).Return(nil)
	f.resolver.On("Invalidate", mock.Anything).Return()

	require.NoError(t, f.departmentService().Delete(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5}, slug.Lookup{ID: 1}))
	f.assertExpectations(t)
}

func TestDepartmentTitleUsesFacilityRef(t *testing.T) {
	f := newFixture()
	f.resolver.On("DepartmentLabel", mock.Anything, settings.Ref{Kind: settings.KindFacility, ID: 5}).Return("Wing")

	assert.Equal(t, "Wing", f.departmentService().Title(context.Background(), &models.Department{ID: 4, FacilityID: 5}))
}
