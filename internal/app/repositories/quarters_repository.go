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

// occupancyExpr counts the live faculty profiles assigned to q.
const occupancyExpr = "(SELECT COUNT(*) FROM faculty_profiles fp WHERE fp.quarters_id = q.id AND fp.deleted_at IS NULL)"

// QuartersFilter narrows quarters listings. Zero fields do not filter.
type QuartersFilter struct {
	FacilityID      int64
	TypeID          int64
	OrganizationIDs []int64
}

// QuartersRepository handles quarters database operations
type QuartersRepository struct {
	pg *db.PostgresDB
}

// NewQuartersRepository creates a new QuartersRepository
func NewQuartersRepository(pg *db.PostgresDB) *QuartersRepository {
	return &QuartersRepository{pg: pg}
}

func (r *QuartersRepository) selectQuarters() squirrel.SelectBuilder {
	return psql.Select(
		"q.id", "q.facility_id", "q.type_id", "q.parent_id", "q.name", "q.slug", "q.description",
		"q.capacity", "q.image_url", "q.is_active",
		"q.created_at", "q.updated_at", "q.created_by", "q.updated_by",
		occupancyExpr, "f.name", "f.slug", "t.name",
	).
		From("quarters q").
		Join("facilities f ON f.id = q.facility_id AND f.deleted_at IS NULL").
		Join("quarters_types t ON t.id = q.type_id").
		Where("q.deleted_at IS NULL")
}

func scanQuarters(row scanner) (*models.Quarters, error) {
	var q models.Quarters
	err := row.Scan(
		&q.ID, &q.FacilityID, &q.TypeID, &q.ParentID, &q.Name, &q.Slug, &q.Description,
		&q.Capacity, &q.ImageURL, &q.IsActive,
		&q.CreatedAt, &q.UpdatedAt, &q.CreatedBy, &q.UpdatedBy,
		&q.Occupancy, &q.FacilityName, &q.FacilitySlug, &q.TypeName,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetByID retrieves live quarters by ID
func (r *QuartersRepository) GetByID(ctx context.Context, id int64) (*models.Quarters, error) {
	q, err := queryOne(ctx, r.pg.Pool, r.selectQuarters().Where(squirrel.Eq{"q.id": id}), scanQuarters)
	if err != nil {
		return nil, notFound(err, apperrors.ErrQuartersNotFound, "get quarters")
	}
	return q, nil
}

// GetBySlug retrieves the oldest live quarters with slug among facilities of orgIDs.
func (r *QuartersRepository) GetBySlug(ctx context.Context, slug string, orgIDs []int64) (*models.Quarters, error) {
	b := r.selectQuarters().Where(squirrel.Eq{"q.slug": slug})
	if len(orgIDs) > 0 {
		b = b.Where(squirrel.Eq{"f.organization_id": orgIDs})
	}
	q, err := queryOne(ctx, r.pg.Pool, b.OrderBy("q.id").Limit(1), scanQuarters)
	if err != nil {
		return nil, notFound(err, apperrors.ErrQuartersNotFound, "get quarters by slug")
	}
	return q, nil
}

// List returns a page of live quarters ordered by name and the total count.
func (r *QuartersRepository) List(ctx context.Context, filter QuartersFilter, limit, offset int) ([]*models.Quarters, int64, error) {
	where := squirrel.And{squirrel.Expr("q.deleted_at IS NULL")}
	if filter.FacilityID > 0 {
		where = append(where, squirrel.Eq{"q.facility_id": filter.FacilityID})
	}
	if filter.TypeID > 0 {
		where = append(where, squirrel.Eq{"q.type_id": filter.TypeID})
	}
	if len(filter.OrganizationIDs) > 0 {
		where = append(where, squirrel.Eq{"f.organization_id": filter.OrganizationIDs})
	}

	total, err := count(ctx, r.pg.Pool, psql.Select("COUNT(*)").
		From("quarters q").
		Join("facilities f ON f.id = q.facility_id AND f.deleted_at IS NULL").
		Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count quarters: %w", err)
	}

	items, err := queryList(ctx, r.pg.Pool,
		r.selectQuarters().Where(where).OrderBy("q.name", "q.id").Limit(uint64(limit)).Offset(uint64(offset)),
		scanQuarters)
	if err != nil {
		return nil, 0, fmt.Errorf("list quarters: %w", err)
	}
	return items, total, nil
}

// SlugExists reports whether live quarters of facilityID other than excludeID use slug.
func (r *QuartersRepository) SlugExists(ctx context.Context, facilityID int64, slug string, excludeID int64) (bool, error) {
	b := psql.Select("1").From("quarters").
		Where("deleted_at IS NULL").
		Where(squirrel.Eq{"facility_id": facilityID, "slug": slug})
	if excludeID > 0 {
		b = b.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.pg.Pool, b)
}

// Create inserts quarters
func (r *QuartersRepository) Create(ctx context.Context, q *models.Quarters) error {
	sql, args, err := psql.Insert("quarters").
		Columns("facility_id", "type_id", "parent_id", "name", "slug", "description", "capacity",
			"image_url", "is_active", "created_by", "updated_by").
		Values(q.FacilityID, q.TypeID, q.ParentID, q.Name, q.Slug, q.Description, q.Capacity,
			q.ImageURL, q.IsActive, q.CreatedBy, q.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create quarters query: %w", err)
	}

	if err := r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return mapQuartersError(err)
	}
	return nil
}

// Update writes the editable columns of live quarters. The row is locked while
// the new capacity is checked against current occupancy.
func (r *QuartersRepository) Update(ctx context.Context, q *models.Quarters) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, occupancy, err := lockQuarters(ctx, tx, q.ID)
		if err != nil {
			return err
		}
		if q.Capacity < occupancy {
			return apperrors.ErrCapacityBelowOccupancy.WithDetails(map[string]interface{}{
				"capacity":  q.Capacity,
				"occupancy": occupancy,
			})
		}

		sql, args, err := psql.Update("quarters").
			SetMap(map[string]interface{}{
				"type_id":     q.TypeID,
				"parent_id":   q.ParentID,
				"name":        q.Name,
				"slug":        q.Slug,
				"description": q.Description,
				"capacity":    q.Capacity,
				"image_url":   q.ImageURL,
				"is_active":   q.IsActive,
				"updated_by":  q.UpdatedBy,
				"updated_at":  squirrel.Expr("NOW()"),
			}).
			Where(squirrel.Eq{"id": q.ID}).
			Suffix("RETURNING updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update quarters query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&q.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrQuartersNotFound
			}
			return mapQuartersError(err)
		}
		q.Occupancy = occupancy
		return nil
	})
}

// SoftDelete hides quarters and unassigns their residents.
func (r *QuartersRepository) SoftDelete(ctx context.Context, id int64, actorID *int64) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE quarters SET deleted_at = NOW(), updated_at = NOW(), updated_by = $2
			WHERE id = $1 AND deleted_at IS NULL`, id, actorID)
		if err != nil {
			return fmt.Errorf("delete quarters: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrQuartersNotFound
		}

		if _, err := tx.Exec(ctx, `
			UPDATE faculty_profiles SET quarters_id = NULL, updated_at = NOW(), updated_by = $2
			WHERE quarters_id = $1`, id, actorID); err != nil {
			return fmt.Errorf("clear faculty quarters: %w", err)
		}
		return nil
	})
}

// lockQuarters locks a live quarters row and returns its capacity and occupancy.
func lockQuarters(ctx context.Context, tx pgx.Tx, id int64) (capacity, occupancy int, err error) {
	err = tx.QueryRow(ctx, `SELECT capacity FROM quarters WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id).Scan(&capacity)
	if err != nil {
		return 0, 0, notFound(err, apperrors.ErrQuartersNotFound, "lock quarters")
	}
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM faculty_profiles WHERE quarters_id = $1 AND deleted_at IS NULL`, id).Scan(&occupancy)
	if err != nil {
		return 0, 0, fmt.Errorf("count quarters occupancy: %w", err)
	}
	return capacity, occupancy, nil
}

func mapQuartersError(err error) error {
	if dberrors.IsDuplicateConstraintError(err, "quarters_facility_slug_key") {
		return apperrors.NewValidationError("slug", "quarters with this slug already exist in the facility")
	}
	if dberrors.IsCheckViolation(err) {
		return apperrors.NewValidationError("capacity", "capacity must not be negative")
	}
	if dberrors.IsForeignKeyViolation(err) {
		return apperrors.ErrQuartersTypeNotFound
	}
	return fmt.Errorf("write quarters: %w", err)
}
