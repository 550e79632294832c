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
	pkgauth "github.com/yigit/facilityhub/internal/pkg/auth"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

func jdoe() *models.FacultyProfile {
	return &models.FacultyProfile{
		ID:             3,
		UserID:         30,
		OrganizationID: 1,
		FacilityID:     int64Ptr(5),
		User:           &models.User{ID: 30, Username: "jdoe", Email: "jdoe@northfield.edu"},
	}
}

func TestFacultyCreateBuildsUserAndProfile(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.departments.On("GetByID", mock.Anything, int64(11)).Return(&models.Department{ID: 11, FacilityID: 5}, nil)
	f.users.On("UsernameExists", mock.Anything, "jdoe").Return(false, nil)
	f.users.On("EmailExists", mock.Anything, "jdoe@northfield.edu", int64(0)).Return(false, nil)
	f.faculty.On("CreateWithUser", mock.Anything,
		mock.MatchedBy(func(u *models.User) bool {
			return u.Username == "jdoe" && u.UserType == models.UserTypeFaculty && *u.OrganizationID == 1 &&
				pkgauth.CheckPassword(u.PasswordHash, "Secret123!")
		}),
		mock.MatchedBy(func(p *models.FacultyProfile) bool {
			return p.OrganizationID == 1 && *p.FacilityID == 5 && *p.DepartmentID == 11
		}),
	).Run(func(args mock.Arguments) {
		args.Get(2).(*models.FacultyProfile).ID = 3
	}).Return(nil)
	f.faculty.On("GetByID", mock.Anything, int64(3)).Return(jdoe(), nil)

	profile, err := f.facultyService().Create(context.Background(), facultyAdmin(7, 1), dto.CreateFacultyRequest{
		Username:     "JDoe",
		Email:        "jdoe@northfield.edu",
		FirstName:    "John",
		LastName:     "Doe",
		Password:     "Secret123!",
		FacilityID:   int64Ptr(5),
		DepartmentID: int64Ptr(11),
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/faculty/jdoe", profile.Path())
	f.assertExpectations(t)
}

func TestFacultyCreateRejectsDepartmentOfOtherFacility(t *testing.T) {
	f := newFixture()
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.departments.On("GetByID", mock.Anything, int64(11)).Return(&models.Department{ID: 11, FacilityID: 6}, nil)

	_, err := f.facultyService().Create(context.Background(), facultyAdmin(7, 1), dto.CreateFacultyRequest{
		Username: "jdoe", Email: "jdoe@northfield.edu", FacilityID: int64Ptr(5), DepartmentID: int64Ptr(11),
	})
	assert.ErrorIs(t, err, apperrors.ErrAssignmentOutOfScope)
	f.faculty.AssertNotCalled(t, "CreateWithUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestFacultyCreateRejectsTakenEmail(t *testing.T) {
	f := newFixture()
	f.users.On("UsernameExists", mock.Anything, "jdoe").Return(false, nil)
	f.users.On("EmailExists", mock.Anything, "jdoe@northfield.edu", int64(0)).Return(true, nil)

	_, err := f.facultyService().Create(context.Background(), facultyAdmin(7, 1), dto.CreateFacultyRequest{
		Username: "jdoe", Email: "jdoe@northfield.edu",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestFacultyChangeQuartersFull(t *testing.T) {
	f := newFixture()
	f.faculty.On("GetByUsername", mock.Anything, "jdoe").Return(jdoe(), nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.quarters.On("GetByID", mock.Anything, int64(20)).Return(&models.Quarters{ID: 20, FacilityID: 5, Capacity: 1, Occupancy: 1}, nil)
	f.faculty.On("SetQuarters", mock.Anything, int64(3), int64Ptr(20), int64Ptr(7)).Return(apperrors.ErrQuartersFull)

	_, err := f.facultyService().ChangeQuarters(context.Background(), facultyAdmin(7, 1), slug.Lookup{Slug: "jdoe"}, int64Ptr(20))
	assert.ErrorIs(t, err, apperrors.ErrQuartersFull)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestFacultyChangeQuartersOutOfFacility(t *testing.T) {
	f := newFixture()
	f.faculty.On("GetByID", mock.Anything, int64(3)).Return(jdoe(), nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.quarters.On("GetByID", mock.Anything, int64(20)).Return(&models.Quarters{ID: 20, FacilityID: 6}, nil)

	_, err := f.facultyService().ChangeQuarters(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 3}, int64Ptr(20))
	assert.ErrorIs(t, err, apperrors.ErrAssignmentOutOfScope)
	f.faculty.AssertNotCalled(t, "SetQuarters", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFacultyClearDepartment(t *testing.T) {
	f := newFixture()
	f.faculty.On("GetByID", mock.Anything, int64(3)).Return(jdoe(), nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.faculty.On("SetDepartment", mock.Anything, int64(3), (*int64)(nil), int64Ptr(7)).Return(nil)

	_, err := f.facultyService().AssignDepartment(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 3}, nil)
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestFacultyPromote(t *testing.T) {
	f := newFixture()
	f.faculty.On("GetByID", mock.Anything, int64(3)).Return(jdoe(), nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.users.On("SetAdmin", mock.Anything, int64(30), true, int64Ptr(7)).Return(nil)

	_, err := f.facultyService().Promote(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 3}, true)
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestFacultyCannotDemoteSelf(t *testing.T) {
	f := newFixture()
	self := jdoe()
	f.faculty.On("GetByID", mock.Anything, int64(3)).Return(self, nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)

	_, err := f.facultyService().Promote(context.Background(), facultyAdmin(30, 1), slug.Lookup{ID: 3}, false)
	assert.ErrorIs(t, err, ErrSelfDemotion)
	f.users.AssertNotCalled(t, "SetAdmin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFacultyListByOrganizationIncludesDescendants(t *testing.T) {
	f := newFixture()
	f.orgs.On("GetBySlug", mock.Anything, "northfield").Return(&models.Organization{ID: 1}, nil)
	f.orgs.On("DescendantIDs", mock.Anything, int64(1)).Return([]int64{1, 2, 3}, nil)
	f.faculty.On("List", mock.Anything, repositories.FacultyFilter{OrganizationIDs: []int64{1, 2, 3}}, 10, 0).
		Return([]*models.FacultyProfile{jdoe()}, int64(1), nil)

	page, err := f.facultyService().ListByOrganization(context.Background(), slug.Lookup{Slug: "northfield"}, helpers.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	f.assertExpectations(t)
}

func TestFacultyWidgetWithoutFacilityIsEmpty(t *testing.T) {
	f := newFixture()
	f.faculty.On("GetByUserID", mock.Anything, int64(8)).Return(nil, apperrors.ErrFacultyNotFound)

	page, err := f.facultyService().Widget(context.Background(), facultyMember(8, 1))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.Total)
}

func TestFacultyWidgetListsOwnFacility(t *testing.T) {
	f := newFixture()
	f.faculty.On("GetByUserID", mock.Anything, int64(30)).Return(jdoe(), nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.faculty.On("List", mock.Anything, repositories.FacultyFilter{FacilityID: 5}, helpers.DefaultPageSize, 0).
		Return([]*models.FacultyProfile{jdoe()}, int64(1), nil)

	page, err := f.facultyService().Widget(context.Background(), facultyMember(30, 1))
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestFacultyDeleteSelfForbidden(t *testing.T) {
	f := newFixture()
	f.faculty.On("GetByID", mock.Anything, int64(3)).Return(jdoe(), nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)

	err := f.facultyService().Delete(context.Background(), facultyAdmin(30, 1), slug.Lookup{ID: 3})
	assert.ErrorIs(t, err, ErrSelfDelete)
}

func TestFacultyUpdateChecksEmailOfOthers(t *testing.T) {
	f := newFixture()
	f.faculty.On("GetByID", mock.Anything, int64(3)).Return(jdoe(), nil)
	f.facilities.On("GetByID", mock.Anything, int64(5)).Return(mainCampus(), nil)
	f.users.On("EmailExists", mock.Anything, "john@northfield.edu", int64(30)).Return(false, nil)
	f.faculty.On("Update", mock.Anything, mock.MatchedBy(func(p *models.FacultyProfile) bool {
		return p.User.Email == "john@northfield.edu" && p.Address == "2 Hill St"
	})).Return(nil)

	profile, err := f.facultyService().Update(context.Background(), facultyAdmin(7, 1), slug.Lookup{ID: 3},
		dto.UpdateFacultyRequest{Email: "john@northfield.edu", FirstName: "John", LastName: "Doe", Address: "2 Hill St"})
	require.NoError(t, err)
	assert.Equal(t, "John", profile.User.FirstName)
	f.assertExpectations(t)
}
