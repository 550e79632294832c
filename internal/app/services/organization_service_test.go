package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/helpers"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

func TestOrganizationGetBySlugOrID(t *testing.T) {
	f := newFixture()
	org := &models.Organization{ID: 1, Slug: "northfield"}
	f.orgs.On("GetByID", mock.Anything, int64(1)).Return(org, nil)
	f.orgs.On("GetBySlug", mock.Anything, "northfield").Return(org, nil)
	svc := NewOrganizationService(f.orgs)

	byID, err := svc.Get(context.Background(), slug.Lookup{ID: 1})
	require.NoError(t, err)
	bySlug, err := svc.Get(context.Background(), slug.Lookup{Slug: "northfield"})
	require.NoError(t, err)
	assert.Same(t, byID, bySlug)
}

func TestOrganizationRootOf(t *testing.T) {
	f := newFixture()
	f.orgs.On("RootID", mock.Anything, int64(3)).Return(int64(1), nil)
	f.orgs.On("GetByID", mock.Anything, int64(1)).Return(&models.Organization{ID: 1, Name: "Northfield"}, nil)

	root, err := NewOrganizationService(f.orgs).RootOf(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, root.IsRoot())
	assert.Equal(t, "Northfield", root.Name)
}

func TestOrganizationCreateGeneratesSlug(t *testing.T) {
	f := newFixture()
	f.orgs.On("GetByID", mock.Anything, int64(1)).Return(&models.Organization{ID: 1}, nil)
	f.orgs.On("SlugExists", mock.Anything, "east-campus-trust").Return(false, nil)
	f.orgs.On("Create", mock.Anything, mock.MatchedBy(func(o *models.Organization) bool {
		return o.Slug == "east-campus-trust" && *o.ParentID == 1 && o.IsActive && o.CreatedBy == nil
	})).Return(nil)

	org, err := NewOrganizationService(f.orgs).Create(context.Background(), nil,
		CreateOrganizationInput{Name: "East Campus Trust", ParentID: int64Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "east-campus-trust", org.Slug)
	f.assertExpectations(t)
}

func TestOrganizationCreateRejectsEmptyName(t *testing.T) {
	_, err := NewOrganizationService(new(mockOrgStore)).Create(context.Background(), nil, CreateOrganizationInput{Name: "  "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "name", apperrors.Field(err))
}

func TestOrganizationListPaginates(t *testing.T) {
	f := newFixture()
	f.orgs.On("List", mock.Anything, 10, 10).Return([]*models.Organization{{ID: 11}}, int64(11), nil)

	page, err := NewOrganizationService(f.orgs).List(context.Background(), helpers.NewPageRequest(2, 10))
	require.NoError(t, err)
	info := page.Pagination()
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 2, info.TotalPages)
	assert.Equal(t, int64(11), info.TotalItems)
}
