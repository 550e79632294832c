package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/repositories"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

func TestQuartersTypeListIncludesShared(t *testing.T) {
	f := newFixture()
	tree := orgTreeOf(f.orgs, 1, 2)
	filter := repositories.QuartersTypeFilter{OrganizationIDs: tree, IncludeShared: true}
	f.types.On("List", mock.Anything, filter, 10, 0).Return([]*models.QuartersType{{ID: 1}, {ID: 2}}, int64(2), nil)

	page, err := f.quartersTypeService().List(context.Background(), facultyMember(8, 2), helpers.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	f.assertExpectations(t)
}

func TestQuartersTypeListWithoutOrganizationSeesAll(t *testing.T) {
	f := newFixture()
	f.types.On("List", mock.Anything, repositories.QuartersTypeFilter{}, 10, 0).Return(nil, int64(0), nil)

	actor := facultyMember(8, 1)
	actor.OrganizationID = nil
	page, err := f.quartersTypeService().List(context.Background(), actor, helpers.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestQuartersTypeCreateScopesSlugToOrganization(t *testing.T) {
	f := newFixture()
	f.types.On("SlugExists", mock.Anything, int64Ptr(1), "staff-flat", int64(0)).Return(false, nil)
	f.types.On("Create", mock.Anything, mock.MatchedBy(func(qt *models.QuartersType) bool {
		return *qt.OrganizationID == 1 && qt.Slug == "staff-flat"
	})).Return(nil)

	qt, err := f.quartersTypeService().Create(context.Background(), facultyAdmin(7, 1),
		dto.CreateQuartersTypeRequest{Name: "Staff Flat"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/quarters-types/staff-flat", qt.Path())
	f.assertExpectations(t)
}

func TestQuartersTypeSharedIsReadOnly(t *testing.T) {
	f := newFixture()
	f.types.On("GetByID", mock.Anything, int64(3)).Return(&models.QuartersType{ID: 3, Name: "Dormitory"}, nil)

	_, err := f.quartersTypeService().Update(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 3},
		dto.UpdateQuartersTypeRequest{Name: "Dorm"})
	assert.ErrorIs(t, err, ErrSharedQuartersType)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestQuartersTypeDeleteInUse(t *testing.T) {
	f := newFixture()
	f.types.On("GetByID", mock.Anything, int64(3)).Return(&models.QuartersType{ID: 3, OrganizationID: int64Ptr(1)}, nil)
	f.types.On("SoftDelete", mock.Anything, int64(3), int64Ptr(7)).Return(apperrors.ErrQuartersTypeInUse)

	err := f.quartersTypeService().Delete(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 3})
	assert.ErrorIs(t, err, apperrors.ErrQuartersTypeInUse)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.resolver.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestQuartersTypeParentMustBeVisible(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1)
	orgTreeOf(f.orgs, 9)
	f.types.On("GetByID", mock.Anything, int64(5)).Return(&models.QuartersType{ID: 5, OrganizationID: int64Ptr(9)}, nil)

	_, err := f.quartersTypeService().Create(context.Background(), facultyAdmin(7, 1),
		dto.CreateQuartersTypeRequest{Name: "Suite", ParentID: int64Ptr(5)})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "parentId", apperrors.Field(err))
}
