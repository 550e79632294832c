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

// DepartmentFilter narrows department listings. Zero fields do not filter.
type DepartmentFilter struct {
	FacilityID      int64
	OrganizationIDs []int64
}

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	pg *db.PostgresDB
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(pg *db.PostgresDB) *DepartmentRepository {
	return &DepartmentRepository{pg: pg}
}

func (r *DepartmentRepository) selectDepartments() squirrel.SelectBuilder {
	return psql.Select(
		"d.id", "d.facility_id", "d.parent_id", "d.name", "d.slug", "d.abbreviation",
		"d.description", "d.image_url", "d.is_active",
		"d.created_at", "d.updated_at", "d.created_by", "d.updated_by",
		"f.name", "f.slug", "COALESCE(p.name, '')",
	).
		From("departments d").
		Join("facilities f ON f.id = d.facility_id AND f.deleted_at IS NULL").
		LeftJoin("departments p ON p.id = d.parent_id AND p.deleted_at IS NULL").
		Where("d.deleted_at IS NULL")
}

func scanDepartment(row scanner) (*models.Department, error) {
	var d models.Department
	err := row.Scan(
		&d.ID, &d.FacilityID, &d.ParentID, &d.Name, &d.Slug, &d.Abbreviation,
		&d.Description, &d.ImageURL, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt, &d.CreatedBy, &d.UpdatedBy,
		&d.FacilityName, &d.FacilitySlug, &d.ParentName,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID retrieves a live department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	d, err := queryOne(ctx, r.pg.Pool, r.selectDepartments().Where(squirrel.Eq{"d.id": id}), scanDepartment)
	if err != nil {
		return nil, notFound(err, apperrors.ErrDepartmentNotFound, "get department")
	}
	return d, nil
}

// GetBySlug retrieves a department by slug within a facility
func (r *DepartmentRepository) GetBySlug(ctx context.Context, facilityID int64, slug string) (*models.Department, error) {
	d, err := queryOne(ctx, r.pg.Pool,
		r.selectDepartments().Where(squirrel.Eq{"d.facility_id": facilityID, "d.slug": slug}),
		scanDepartment)
	if err != nil {
		return nil, notFound(err, apperrors.ErrDepartmentNotFound, "get department by slug")
	}
	return d, nil
}

// FindBySlug retrieves the oldest department with slug among facilities of orgIDs.
func (r *DepartmentRepository) FindBySlug(ctx context.Context, slug string, orgIDs []int64) (*models.Department, error) {
	b := r.selectDepartments().Where(squirrel.Eq{"d.slug": slug})
	if len(orgIDs) > 0 {
		b = b.Where(squirrel.Eq{"f.organization_id": orgIDs})
	}
	d, err := queryOne(ctx, r.pg.Pool, b.OrderBy("d.id").Limit(1), scanDepartment)
	if err != nil {
		return nil, notFound(err, apperrors.ErrDepartmentNotFound, "find department by slug")
	}
	return d, nil
}

// List returns a page of live departments ordered by name and the total count.
func (r *DepartmentRepository) List(ctx context.Context, filter DepartmentFilter, limit, offset int) ([]*models.Department, int64, error) {
	where := squirrel.And{squirrel.Expr("d.deleted_at IS NULL")}
	if filter.FacilityID > 0 {
		where = append(where, squirrel.Eq{"d.facility_id": filter.FacilityID})
	}
	if len(filter.OrganizationIDs) > 0 {
		where = append(where, squirrel.Eq{"f.organization_id": filter.OrganizationIDs})
	}

	total, err := count(ctx, r.pg.Pool, psql.Select("COUNT(*)").
		From("departments d").
		Join("facilities f ON f.id = d.facility_id AND f.deleted_at IS NULL").
		Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count departments: %w", err)
	}

	items, err := queryList(ctx, r.pg.Pool,
		r.selectDepartments().Where(where).OrderBy("d.name", "d.id").Limit(uint64(limit)).Offset(uint64(offset)),
		scanDepartment)
	if err != nil {
		return nil, 0, fmt.Errorf("list departments: %w", err)
	}
	return items, total, nil
}

// AncestorIDs returns the IDs on the parent path above id, nearest first.
func (r *DepartmentRepository) AncestorIDs(ctx context.Context, id int64) ([]int64, error) {
	rows, err := r.pg.Pool.Query(ctx, `
		WITH RECURSIVE up AS (
			SELECT parent_id, 1 AS depth FROM departments WHERE id = $1
			UNION ALL
			SELECT d.parent_id, up.depth + 1
			FROM departments d JOIN up ON d.id = up.parent_id
			WHERE up.depth < 256
		)
		SELECT parent_id FROM up WHERE parent_id IS NOT NULL ORDER BY depth`, id)
	if err != nil {
		return nil, fmt.Errorf("list department ancestors: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var parentID int64
		if err := rows.Scan(&parentID); err != nil {
			return nil, err
		}
		ids = append(ids, parentID)
	}
	return ids, rows.Err()
}

// SlugExists reports whether a live department of facilityID other than excludeID uses slug.
func (r *DepartmentRepository) SlugExists(ctx context.Context, facilityID int64, slug string, excludeID int64) (bool, error) {
	b := psql.Select("1").From("departments").
		Where("deleted_at IS NULL").
		Where(squirrel.Eq{"facility_id": facilityID, "slug": slug})
	if excludeID > 0 {
		b = b.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.pg.Pool, b)
}

// Create inserts a department
func (r *DepartmentRepository) Create(ctx context.Context, d *models.Department) error {
	sql, args, err := psql.Insert("departments").
		Columns("facility_id", "parent_id", "name", "slug", "abbreviation", "description", "image_url",
			"is_active", "created_by", "updated_by").
		Values(d.FacilityID, d.ParentID, d.Name, d.Slug, d.Abbreviation, d.Description, d.ImageURL,
			d.IsActive, d.CreatedBy, d.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create department query: %w", err)
	}

	if err := r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return mapDepartmentError(err)
	}
	return nil
}

// Update writes the editable columns of a live department
func (r *DepartmentRepository) Update(ctx context.Context, d *models.Department) error {
	sql, args, err := psql.Update("departments").
		SetMap(map[string]interface{}{
			"parent_id":    d.ParentID,
			"name":         d.Name,
			"slug":         d.Slug,
			"abbreviation": d.Abbreviation,
			"description":  d.Description,
			"image_url":    d.ImageURL,
			"is_active":    d.IsActive,
			"updated_by":   d.UpdatedBy,
			"updated_at":   squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": d.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update department query: %w", err)
	}

	if err := r.pg.Pool.QueryRow(ctx, sql, args...).Scan(&d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrDepartmentNotFound
		}
		return mapDepartmentError(err)
	}
	return nil
}

// SoftDelete hides a department. Its children move up to its parent and
// faculty members lose the assignment.
func (r *DepartmentRepository) SoftDelete(ctx context.Context, id int64, actorID *int64) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var parentID *int64
		err := tx.QueryRow(ctx, `
			UPDATE departments SET deleted_at = NOW(), updated_at = NOW(), updated_by = $2
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING parent_id`, id, actorID).Scan(&parentID)
		if err != nil {
			return notFound(err, apperrors.ErrDepartmentNotFound, "delete department")
		}

		if _, err := tx.Exec(ctx, `
			UPDATE departments SET parent_id = $2, updated_at = NOW(), updated_by = $3
			WHERE parent_id = $1 AND deleted_at IS NULL`, id, parentID, actorID); err != nil {
			return fmt.Errorf("reparent child departments: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE faculty_profiles SET department_id = NULL, updated_at = NOW(), updated_by = $2
			WHERE department_id = $1`, id, actorID); err != nil {
			return fmt.Errorf("clear faculty department: %w", err)
		}
		return nil
	})
}

func mapDepartmentError(err error) error {
	if dberrors.IsDuplicateConstraintError(err, "departments_facility_slug_key") {
		return apperrors.NewValidationError("slug", "a department with this slug already exists in the facility")
	}
	if dberrors.IsForeignKeyViolation(err) {
		return apperrors.ErrDepartmentParentInvalid
	}
	return fmt.Errorf("write department: %w", err)
}
