package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/db"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/dberrors"
)

// maxOrganizationDepth bounds hierarchy walks in case of a corrupted parent cycle.
const maxOrganizationDepth = 64

// OrganizationRepository handles organization database operations
type OrganizationRepository struct {
	pg *db.PostgresDB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(pg *db.PostgresDB) *OrganizationRepository {
	return &OrganizationRepository{pg: pg}
}

func (r *OrganizationRepository) selectOrganizations() squirrel.SelectBuilder {
	return psql.Select(
		"o.id", "o.parent_id", "o.name", "o.slug", "o.description", "o.is_active",
		"o.created_at", "o.updated_at", "o.created_by", "o.updated_by",
	).From("organizations o")
}

func scanOrganization(row scanner) (*models.Organization, error) {
	var o models.Organization
	err := row.Scan(
		&o.ID, &o.ParentID, &o.Name, &o.Slug, &o.Description, &o.IsActive,
		&o.CreatedAt, &o.UpdatedAt, &o.CreatedBy, &o.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	o, err := queryOne(ctx, r.pg.Pool, r.selectOrganizations().Where(squirrel.Eq{"o.id": id}), scanOrganization)
	if err != nil {
		return nil, notFound(err, apperrors.ErrOrganizationNotFound, "get organization")
	}
	return o, nil
}

// GetBySlug retrieves an organization by slug
func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	o, err := queryOne(ctx, r.pg.Pool, r.selectOrganizations().Where(squirrel.Eq{"o.slug": slug}), scanOrganization)
	if err != nil {
		return nil, notFound(err, apperrors.ErrOrganizationNotFound, "get organization by slug")
	}
	return o, nil
}

// List returns a page of organizations ordered by name and the total count.
func (r *OrganizationRepository) List(ctx context.Context, limit, offset int) ([]*models.Organization, int64, error) {
	total, err := count(ctx, r.pg.Pool, psql.Select("COUNT(*)").From("organizations o"))
	if err != nil {
		return nil, 0, fmt.Errorf("count organizations: %w", err)
	}

	items, err := queryList(ctx, r.pg.Pool,
		r.selectOrganizations().OrderBy("o.name", "o.id").Limit(uint64(limit)).Offset(uint64(offset)),
		scanOrganization)
	if err != nil {
		return nil, 0, fmt.Errorf("list organizations: %w", err)
	}
	return items, total, nil
}

// Create inserts an organization and fills its generated fields.
func (r *OrganizationRepository) Create(ctx context.Context, o *models.Organization) error {
	sql, args, err := psql.Insert("organizations").
		Columns("parent_id", "name", "slug", "description", "is_active", "created_by", "updated_by").
		Values(o.ParentID, o.Name, o.Slug, o.Description, o.IsActive, o.CreatedBy, o.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create organization query: %w", err)
	}

	err = r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "organizations_slug_key") {
			return apperrors.NewConflictError("an organization with this slug already exists")
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrOrganizationNotFound
		}
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

// SlugExists reports whether slug is taken.
func (r *OrganizationRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return exists(ctx, r.pg.Pool, psql.Select("1").From("organizations").Where(squirrel.Eq{"slug": slug}))
}

// RootID walks parent links up from id and returns the top organization's ID.
func (r *OrganizationRepository) RootID(ctx context.Context, id int64) (int64, error) {
	var rootID int64
	err := r.pg.Pool.QueryRow(ctx, `
		WITH RECURSIVE up AS (
			SELECT id, parent_id, 0 AS depth FROM organizations WHERE id = $1
			UNION ALL
			SELECT o.id, o.parent_id, up.depth + 1
			FROM organizations o JOIN up ON o.id = up.parent_id
			WHERE up.depth < $2
		)
		SELECT id FROM up ORDER BY depth DESC LIMIT 1`,
		id, maxOrganizationDepth).Scan(&rootID)
	if err != nil {
		return 0, notFound(err, apperrors.ErrOrganizationNotFound, "resolve root organization")
	}
	return rootID, nil
}

// DescendantIDs returns id and every organization below it.
func (r *OrganizationRepository) DescendantIDs(ctx context.Context, id int64) ([]int64, error) {
	rows, err := r.pg.Pool.Query(ctx, `
		WITH RECURSIVE down AS (
			SELECT id FROM organizations WHERE id = $1
			UNION
			SELECT o.id FROM organizations o JOIN down ON o.parent_id = down.id
		)
		SELECT id FROM down ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list descendant organizations: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var orgID int64
		if err := rows.Scan(&orgID); err != nil {
			return nil, err
		}
		ids = append(ids, orgID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperrors.ErrOrganizationNotFound
	}
	return ids, nil
}
