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
	"github.com/yigit/facilityhub/internal/pkg/logger"
)

// FacilityFilter narrows facility listings. Empty fields do not filter.
type FacilityFilter struct {
	OrganizationIDs []int64
}

// FacilityRepository handles facility database operations
type FacilityRepository struct {
	pg *db.PostgresDB
}

// NewFacilityRepository creates a new FacilityRepository
func NewFacilityRepository(pg *db.PostgresDB) *FacilityRepository {
	return &FacilityRepository{pg: pg}
}

func (r *FacilityRepository) selectFacilities() squirrel.SelectBuilder {
	return psql.Select(
		"f.id", "f.organization_id", "f.name", "f.slug", "f.description", "f.address",
		"f.image_url", "f.is_active", "f.created_at", "f.updated_at", "f.created_by", "f.updated_by",
		"o.name",
	).
		From("facilities f").
		Join("organizations o ON o.id = f.organization_id").
		Where("f.deleted_at IS NULL")
}

func scanFacility(row scanner) (*models.Facility, error) {
	var f models.Facility
	err := row.Scan(
		&f.ID, &f.OrganizationID, &f.Name, &f.Slug, &f.Description, &f.Address,
		&f.ImageURL, &f.IsActive, &f.CreatedAt, &f.UpdatedAt, &f.CreatedBy, &f.UpdatedBy,
		&f.OrganizationName,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID retrieves a live facility by ID
func (r *FacilityRepository) GetByID(ctx context.Context, id int64) (*models.Facility, error) {
	f, err := queryOne(ctx, r.pg.Pool, r.selectFacilities().Where(squirrel.Eq{"f.id": id}), scanFacility)
	if err != nil {
		return nil, notFound(err, apperrors.ErrFacilityNotFound, "get facility")
	}
	return f, nil
}

// GetBySlug retrieves a live facility by slug. Slugs are unique per organization, so
// orgIDs restricts the search; without it the oldest match wins.
func (r *FacilityRepository) GetBySlug(ctx context.Context, slug string, orgIDs []int64) (*models.Facility, error) {
	b := r.selectFacilities().Where(squirrel.Eq{"f.slug": slug})
	if len(orgIDs) > 0 {
		b = b.Where(squirrel.Eq{"f.organization_id": orgIDs})
	}
	f, err := queryOne(ctx, r.pg.Pool, b.OrderBy("f.id").Limit(1), scanFacility)
	if err != nil {
		return nil, notFound(err, apperrors.ErrFacilityNotFound, "get facility by slug")
	}
	return f, nil
}

// List returns a page of live facilities ordered by name and the total count.
func (r *FacilityRepository) List(ctx context.Context, filter FacilityFilter, limit, offset int) ([]*models.Facility, int64, error) {
	where := squirrel.And{squirrel.Expr("f.deleted_at IS NULL")}
	if len(filter.OrganizationIDs) > 0 {
		where = append(where, squirrel.Eq{"f.organization_id": filter.OrganizationIDs})
	}

	total, err := count(ctx, r.pg.Pool, psql.Select("COUNT(*)").From("facilities f").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count facilities: %w", err)
	}

	items, err := queryList(ctx, r.pg.Pool,
		r.selectFacilities().Where(where).OrderBy("f.name", "f.id").Limit(uint64(limit)).Offset(uint64(offset)),
		scanFacility)
	if err != nil {
		return nil, 0, fmt.Errorf("list facilities: %w", err)
	}
	return items, total, nil
}

// SlugExists reports whether a live facility of orgID other than excludeID uses slug.
func (r *FacilityRepository) SlugExists(ctx context.Context, orgID int64, slug string, excludeID int64) (bool, error) {
	b := psql.Select("1").From("facilities").
		Where("deleted_at IS NULL").
		Where(squirrel.Eq{"organization_id": orgID, "slug": slug})
	if excludeID > 0 {
		b = b.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.pg.Pool, b)
}

// NameExists reports whether a live facility of orgID other than excludeID has name (case-insensitive).
func (r *FacilityRepository) NameExists(ctx context.Context, orgID int64, name string, excludeID int64) (bool, error) {
	b := psql.Select("1").From("facilities").
		Where("deleted_at IS NULL").
		Where(squirrel.Eq{"organization_id": orgID}).
		Where(squirrel.Expr("lower(name) = lower(?)", name))
	if excludeID > 0 {
		b = b.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.pg.Pool, b)
}

// Create inserts a facility
func (r *FacilityRepository) Create(ctx context.Context, f *models.Facility) error {
	sql, args, err := psql.Insert("facilities").
		Columns("organization_id", "name", "slug", "description", "address", "image_url", "is_active", "created_by", "updated_by").
		Values(f.OrganizationID, f.Name, f.Slug, f.Description, f.Address, f.ImageURL, f.IsActive, f.CreatedBy, f.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create facility SQL")
		return fmt.Errorf("failed to build create facility query: %w", err)
	}

	if err := r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return mapFacilityError(err)
	}
	return nil
}

// Update writes the editable columns of a live facility
func (r *FacilityRepository) Update(ctx context.Context, f *models.Facility) error {
	sql, args, err := psql.Update("facilities").
		SetMap(map[string]interface{}{
			"name":        f.Name,
			"slug":        f.Slug,
			"description": f.Description,
			"address":     f.Address,
			"image_url":   f.ImageURL,
			"is_active":   f.IsActive,
			"updated_by":  f.UpdatedBy,
			"updated_at":  squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": f.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update facility query: %w", err)
	}

	if err := r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrFacilityNotFound
		}
		return mapFacilityError(err)
	}
	return nil
}

// SoftDelete hides a facility together with its departments and quarters, and
// detaches every faculty profile assigned to it.
func (r *FacilityRepository) SoftDelete(ctx context.Context, id int64, actorID *int64) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE facilities SET deleted_at = NOW(), updated_at = NOW(), updated_by = $2
			WHERE id = $1 AND deleted_at IS NULL`, id, actorID)
		if err != nil {
			return fmt.Errorf("delete facility: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrFacilityNotFound
		}

		if _, err := tx.Exec(ctx, `
			UPDATE faculty_profiles
			SET facility_id = NULL, department_id = NULL, quarters_id = NULL, updated_at = NOW(), updated_by = $2
			WHERE facility_id = $1`, id, actorID); err != nil {
			return fmt.Errorf("detach faculty: %w", err)
		}

		for _, table := range []string{"departments", "quarters"} {
			if _, err := tx.Exec(ctx, `
				UPDATE `+table+` SET deleted_at = NOW(), updated_at = NOW(), updated_by = $2
				WHERE facility_id = $1 AND deleted_at IS NULL`, id, actorID); err != nil {
				return fmt.Errorf("delete %s of facility: %w", table, err)
			}
		}
		return nil
	})
}

func mapFacilityError(err error) error {
	if name, ok := dberrors.UniqueViolation(err); ok {
		switch name {
		case "facilities_org_name_key":
			return apperrors.ErrFacilityAlreadyExists
		case "facilities_org_slug_key":
			return apperrors.NewValidationError("slug", "a facility with this slug already exists in the organization")
		}
	}
	if dberrors.IsForeignKeyViolation(err) {
		return apperrors.ErrOrganizationNotFound
	}
	return fmt.Errorf("write facility: %w", err)
}
