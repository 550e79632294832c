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

func TestQuartersCreateWithSharedType(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.types.On("GetByID", mock.Anything, int64(2)).Return(&models.QuartersType{ID: 2, Name: "Dormitory"}, nil)
	f.quarters.On("SlugExists", mock.Anything, int64(5), "block-a-101", int64(0)).Return(false, nil)
	f.quarters.On("Create", mock.Anything, mock.MatchedBy(func(q *models.Quarters) bool {
		return q.FacilityID == 5 && q.TypeID == 2 && q.Capacity == 4 && q.Slug == "block-a-101"
	})).Return(nil)

	q, err := f.quartersService().Create(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5},
		dto.CreateQuartersRequest{TypeID: 2, Name: "Block A - 101", Capacity: 4})
	require.NoError(t, err)
	assert.Equal(t, "Dormitory", q.TypeName)
	assert.Equal(t, 4, q.Available())
	f.assertExpectations(t)
}

func TestQuartersCreateRejectsTypeOfOtherOrganization(t *testing.T) {
	f := newFixture()
	orgTreeOf(f.orgs, 1)
	orgTreeOf(f.orgs, 9)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.types.On("GetByID", mock.Anything, int64(2)).Return(&models.QuartersType{ID: 2, OrganizationID: int64Ptr(9)}, nil)

	_, err := f.quartersService().Create(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5},
		dto.CreateQuartersRequest{TypeID: 2, Name: "Flat 1", Capacity: 1})
	assert.ErrorIs(t, err, apperrors.ErrQuartersTypeNotAllowed)
	f.quarters.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuartersCreateRequiresFacultyAdmin(t *testing.T) {
	f := newFixture()

	_, err := f.quartersService().Create(context.Background(), facultyMember(8, 1), slug.Lookup{ID: 5},
		dto.CreateQuartersRequest{TypeID: 2, Name: "Flat 1"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	f.assertExpectations(t)
}

func TestQuartersCreateRejectsParentOfOtherFacility(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.types.On("GetByID", mock.Anything, int64(2)).Return(&models.QuartersType{ID: 2}, nil)
	f.quarters.On("GetByID", mock.Anything, int64(30)).Return(&models.Quarters{ID: 30, FacilityID: 6}, nil)

	_, err := f.quartersService().Create(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 5},
		dto.CreateQuartersRequest{TypeID: 2, ParentID: int64Ptr(30), Name: "Room 1"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "parentId", apperrors.Field(err))
}

func TestQuartersUpdateCapacityBelowOccupancy(t *testing.T) {
	f := newFixture()
	existing := &models.Quarters{ID: 20, FacilityID: 5, TypeID: 2, Name: "Flat 1", Slug: "flat-1", Capacity: 3, Occupancy: 2}
	f.quarters.On("GetByID", mock.Anything, int64(20)).Return(existing, nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.types.On("GetByID", mock.Anything, int64(2)).Return(&models.QuartersType{ID: 2}, nil)
	conflict := apperrors.ErrCapacityBelowOccupancy.WithDetails(map[string]interface{}{"capacity": 1, "occupancy": 2})
	f.quarters.On("Update", mock.Anything, mock.Anything).Return(conflict)

	_, err := f.quartersService().Update(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 20},
		dto.UpdateQuartersRequest{TypeID: 2, Name: "Flat 1", Capacity: 1})
	assert.ErrorIs(t, err, apperrors.ErrCapacityBelowOccupancy)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 2, apperrors.Details(err)["occupancy"])
	f.resolver.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestQuartersUpdateTypeChangeInvalidatesSettings(t *testing.T) {
	f := newFixture()
	existing := &models.Quarters{ID: 20, FacilityID: 5, TypeID: 2, Name: "Flat 1", Slug: "flat-1", Capacity: 3}
	f.quarters.On("GetByID", mock.Anything, int64(20)).Return(existing, nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.types.On("GetByID", mock.Anything, int64(4)).Return(&models.QuartersType{ID: 4, Name: "Staff Flat"}, nil)
	f.quarters.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.resolver.On("Invalidate", mock.Anything).Return()

	q, err := f.quartersService().Update(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 20},
		dto.UpdateQuartersRequest{TypeID: 4, Name: "Flat 1", Capacity: 3})
	require.NoError(t, err)
	assert.Equal(t, "Staff Flat", q.TypeName)
	assert.Equal(t, "flat-1", q.Slug)
	f.assertExpectations(t)
}

func TestQuartersListByTypeIsScoped(t *testing.T) {
	f := newFixture()
	tree := orgTreeOf(f.orgs, 1, 2)
	page := helpers.NewPageRequest(1, 10)
	f.types.On("GetByID", mock.Anything, int64(4)).Return(&models.QuartersType{ID: 4}, nil)
	f.quarters.On("List", mock.Anything, repositories.QuartersFilter{TypeID: 4, OrganizationIDs: tree}, 10, 0).
		Return([]*models.Quarters{{ID: 1}}, int64(1), nil)

	result, err := f.quartersService().ListByType(context.Background(), facultyMember(8, 2), slug.Lookup{ID: 4}, page)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	f.assertExpectations(t)
}

func TestQuartersDeleteInvalidatesSettings(t *testing.T) {
	f := newFixture()
	f.quarters.On("GetByID", mock.Anything, int64(20)).Return(&models.Quarters{ID: 20, FacilityID: 5}, nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.quarters.On("SoftDelete", mock.Anything, int64(20), int64Ptr(7)).Return(nil)
	f.resolver.On("Invalidate", mock.Anything).Return()

	require.NoError(t, f.quartersService().Delete(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 20}))
	f.assertExpectations(t)
}
