package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/db"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/dberrors"
)

// QuartersTypeFilter narrows quarters type listings.
type QuartersTypeFilter struct {
	OrganizationIDs []int64
	// IncludeShared adds types that belong to no organization.
	IncludeShared bool
}

// QuartersTypeRepository handles quarters type database operations
type QuartersTypeRepository struct {
	pg *db.PostgresDB
}

// NewQuartersTypeRepository creates a new QuartersTypeRepository
func NewQuartersTypeRepository(pg *db.PostgresDB) *QuartersTypeRepository {
	return &QuartersTypeRepository{pg: pg}
}

func (r *QuartersTypeRepository) selectTypes() squirrel.SelectBuilder {
	return psql.Select(
		"t.id", "t.organization_id", "t.parent_id", "t.name", "t.slug", "t.description",
		"t.image_url", "t.is_active", "t.created_at", "t.updated_at", "t.created_by", "t.updated_by",
	).
		From("quarters_types t").
		Where("t.deleted_at IS NULL")
}

func scanQuartersType(row scanner) (*models.QuartersType, error) {
	var t models.QuartersType
	err := row.Scan(
		&t.ID, &t.OrganizationID, &t.ParentID, &t.Name, &t.Slug, &t.Description,
		&t.ImageURL, &t.IsActive, &t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (f QuartersTypeFilter) condition() squirrel.Sqlizer {
	or := squirrel.Or{}
	if len(f.OrganizationIDs) > 0 {
		or = append(or, squirrel.Eq{"t.organization_id": f.OrganizationIDs})
	}
	if f.IncludeShared {
		or = append(or, squirrel.Expr("t.organization_id IS NULL"))
	}
	if len(or) == 0 {
		return squirrel.Expr("TRUE")
	}
	return or
}

// GetByID retrieves a live quarters type by ID
func (r *QuartersTypeRepository) GetByID(ctx context.Context, id int64) (*models.QuartersType, error) {
	t, err := queryOne(ctx, r.pg.Pool, r.selectTypes().Where(squirrel.Eq{"t.id": id}), scanQuartersType)
	if err != nil {
		return nil, notFound(err, apperrors.ErrQuartersTypeNotFound, "get quarters type")
	}
	return t, nil
}

// GetBySlug retrieves a quarters type by slug among those matching filter,
// preferring organization-owned types over shared ones.
func (r *QuartersTypeRepository) GetBySlug(ctx context.Context, slug string, filter QuartersTypeFilter) (*models.QuartersType, error) {
	t, err := queryOne(ctx, r.pg.Pool,
		r.selectTypes().
			Where(squirrel.Eq{"t.slug": slug}).
			Where(filter.condition()).
			OrderBy("t.organization_id NULLS LAST", "t.id").
			Limit(1),
		scanQuartersType)
	if err != nil {
		return nil, notFound(err, apperrors.ErrQuartersTypeNotFound, "get quarters type by slug")
	}
	return t, nil
}

// List returns a page of live quarters types ordered by name and the total count.
func (r *QuartersTypeRepository) List(ctx context.Context, filter QuartersTypeFilter, limit, offset int) ([]*models.QuartersType, int64, error) {
	where := squirrel.And{squirrel.Expr("t.deleted_at IS NULL"), filter.condition()}

	total, err := count(ctx, r.pg.Pool, psql.Select("COUNT(*)").From("quarters_types t").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count quarters types: %w", err)
	}

	items, err := queryList(ctx, r.pg.Pool,
		r.selectTypes().Where(where).OrderBy("t.name", "t.id").Limit(uint64(limit)).Offset(uint64(offset)),
		scanQuartersType)
	if err != nil {
		return nil, 0, fmt.Errorf("list quarters types: %w", err)
	}
	return items, total, nil
}

// SlugExists reports whether a live type in the same organization scope other than excludeID uses slug.
func (r *QuartersTypeRepository) SlugExists(ctx context.Context, orgID *int64, slug string, excludeID int64) (bool, error) {
	b := psql.Select("1").From("quarters_types").
		Where("deleted_at IS NULL").
		Where(squirrel.Eq{"slug": slug})
	if orgID != nil {
		b = b.Where(squirrel.Eq{"organization_id": *orgID})
	} else {
		b = b.Where("organization_id IS NULL")
	}
	if excludeID > 0 {
		b = b.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.pg.Pool, b)
}

// InUse reports whether live quarters reference the type.
func (r *QuartersTypeRepository) InUse(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.pg.Pool, psql.Select("1").From("quarters").
		Where("deleted_at IS NULL").
		Where(squirrel.Eq{"type_id": id}))
}

// Create inserts a quarters type
func (r *QuartersTypeRepository) Create(ctx context.Context, t *models.QuartersType) error {
	sql, args, err := psql.Insert("quarters_types").
		Columns("organization_id", "parent_id", "name", "slug", "description", "image_url", "is_active", "created_by", "updated_by").
		Values(t.OrganizationID, t.ParentID, t.Name, t.Slug, t.Description, t.ImageURL, t.IsActive, t.CreatedBy, t.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create quarters type query: %w", err)
	}

	if err := r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return mapQuartersTypeError(err)
	}
	return nil
}

// Update writes the editable columns of a live quarters type
func (r *QuartersTypeRepository) Update(ctx context.Context, t *models.QuartersType) error {
	sql, args, err := psql.Update("quarters_types").
		SetMap(map[string]interface{}{
			"parent_id":   t.ParentID,
			"name":        t.Name,
			"slug":        t.Slug,
			"description": t.Description,
			"image_url":   t.ImageURL,
			"is_active":   t.IsActive,
			"updated_by":  t.UpdatedBy,
			"updated_at":  squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": t.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update quarters type query: %w", err)
	}

	if err := r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrQuartersTypeNotFound
		}
		return mapQuartersTypeError(err)
	}
	return nil
}

// SoftDelete hides a quarters type unless live quarters still reference it.
func (r *QuartersTypeRepository) SoftDelete(ctx context.Context, id int64, actorID *int64) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var lockedID int64
		err := tx.QueryRow(ctx, `SELECT id FROM quarters_types WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id).Scan(&lockedID)
		if err != nil {
			return notFound(err, apperrors.ErrQuartersTypeNotFound, "lock quarters type")
		}

		inUse, err := exists(ctx, tx, psql.Select("1").From("quarters").
			Where("deleted_at IS NULL").
			Where(squirrel.Eq{"type_id": id}))
		if err != nil {
			return fmt.Errorf("check quarters type usage: %w", err)
		}
		if inUse {
			return apperrors.ErrQuartersTypeInUse
		}

		_, err = tx.Exec(ctx, `
			UPDATE quarters_types SET deleted_at = NOW(), updated_at = NOW(), updated_by = $2
			WHERE id = $1`, id, actorID)
		if err != nil {
			return fmt.Errorf("delete quarters type: %w", err)
		}
		return nil
	})
}

func mapQuartersTypeError(err error) error {
	if dberrors.IsDuplicateConstraintError(err, "quarters_types_org_slug_key") {
		return apperrors.NewValidationError("slug", "a quarters type with this slug already exists in the organization")
	}
	if dberrors.IsForeignKeyViolation(err) {
		return apperrors.NewValidationError("parentId", "referenced organization or parent type does not exist")
	}
	return fmt.Errorf("write quarters type: %w", err)
}
