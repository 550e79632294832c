package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
)

type mockRoots struct {
	mock.Mock
}

func (m *mockRoots) RootID(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func int64Ptr(v int64) *int64 { return &v }

func facultyAdmin(orgID int64) *Principal {
	return &Principal{UserID: 1, Username: "admin", UserType: models.UserTypeFaculty, IsAdmin: true, OrganizationID: int64Ptr(orgID)}
}

func TestIsFacultyAdmin(t *testing.T) {
	assert.True(t, IsFacultyAdmin(facultyAdmin(1)))
	assert.False(t, IsFacultyAdmin(nil))
	assert.False(t, IsFacultyAdmin(&Principal{UserType: models.UserTypeFaculty}))
	assert.False(t, IsFacultyAdmin(&Principal{UserType: models.UserTypeStaff, IsAdmin: true}))
}

func TestCanManageFacilitySameRoot(t *testing.T) {
	roots := new(mockRoots)
	roots.On("RootID", mock.Anything, int64(2)).Return(int64(1), nil)
	roots.On("RootID", mock.Anything, int64(3)).Return(int64(1), nil)
	svc := NewAuthorizationService(roots)

	ok, err := svc.CanManageFacility(context.Background(), facultyAdmin(2), &models.Facility{OrganizationID: 3})
	require.NoError(t, err)
	assert.True(t, ok)
	roots.AssertExpectations(t)
}

func TestCanManageFacilityOtherRoot(t *testing.T) {
	roots := new(mockRoots)
	roots.On("RootID", mock.Anything, int64(2)).Return(int64(1), nil)
	roots.On("RootID", mock.Anything, int64(9)).Return(int64(9), nil)
	svc := NewAuthorizationService(roots)

	err := svc.RequireFacilityManager(context.Background(), facultyAdmin(2), &models.Facility{OrganizationID: 9})
	assert.ErrorIs(t, err, ErrOutsideOwnTree)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRequireFacultyAdmin(t *testing.T) {
	svc := NewAuthorizationService(new(mockRoots))

	assert.NoError(t, svc.RequireFacultyAdmin(facultyAdmin(1)))
	assert.ErrorIs(t, svc.RequireFacultyAdmin(nil), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, svc.RequireFacultyAdmin(&Principal{UserType: models.UserTypeStudent}), apperrors.ErrPermissionDenied)
}

func TestNonAdminNeverManages(t *testing.T) {
	roots := new(mockRoots)
	svc := NewAuthorizationService(roots)

	p := &Principal{UserType: models.UserTypeFaculty, OrganizationID: int64Ptr(1)}
	ok, err := svc.CanManageOrganization(context.Background(), p, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	roots.AssertNotCalled(t, "RootID", mock.Anything, mock.Anything)
}

func TestRootLookupError(t *testing.T) {
	roots := new(mockRoots)
	roots.On("RootID", mock.Anything, int64(2)).Return(int64(0), errors.New("db down"))
	svc := NewAuthorizationService(roots)

	_, err := svc.CanManageOrganization(context.Background(), facultyAdmin(2), 5)
	assert.Error(t, err)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	p := PrincipalFromUser(&models.User{ID: 7, Username: "x", UserType: models.UserTypeFaculty})
	got, ok := FromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, int64(7), *got.ActorID())
}
