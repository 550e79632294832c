package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/db"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/dberrors"
)

// FacultyFilter narrows faculty listings. Zero fields do not filter.
type FacultyFilter struct {
	FacilityID      int64
	OrganizationIDs []int64
}

// FacultyRepository handles faculty profile database operations
type FacultyRepository struct {
	pg *db.PostgresDB
}

// NewFacultyRepository creates a new FacultyRepository
func NewFacultyRepository(pg *db.PostgresDB) *FacultyRepository {
	return &FacultyRepository{pg: pg}
}

func (r *FacultyRepository) selectFaculty() squirrel.SelectBuilder {
	cols := []string{
		"fp.id", "fp.user_id", "fp.organization_id", "fp.facility_id", "fp.department_id", "fp.quarters_id",
		"fp.address", "fp.created_at", "fp.updated_at", "fp.created_by", "fp.updated_by",
		"COALESCE(f.name, '')", "COALESCE(f.slug, '')", "COALESCE(d.name, '')", "COALESCE(q.name, '')",
	}
	return psql.Select(append(cols, userColumns...)...).
		From("faculty_profiles fp").
		Join("users u ON u.id = fp.user_id").
		LeftJoin("facilities f ON f.id = fp.facility_id AND f.deleted_at IS NULL").
		LeftJoin("departments d ON d.id = fp.department_id AND d.deleted_at IS NULL").
		LeftJoin("quarters q ON q.id = fp.quarters_id AND q.deleted_at IS NULL").
		Where("fp.deleted_at IS NULL")
}

func scanFaculty(row scanner) (*models.FacultyProfile, error) {
	var p models.FacultyProfile
	var u models.User
	dest := []any{
		&p.ID, &p.UserID, &p.OrganizationID, &p.FacilityID, &p.DepartmentID, &p.QuartersID,
		&p.Address, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
		&p.FacilityName, &p.FacilitySlug, &p.DepartmentName, &p.QuartersName,
	}
	if err := row.Scan(append(dest, userDest(&u)...)...); err != nil {
		return nil, err
	}
	p.User = &u
	return &p, nil
}

func (r *FacultyRepository) getBy(ctx context.Context, cond squirrel.Sqlizer) (*models.FacultyProfile, error) {
	p, err := queryOne(ctx, r.pg.Pool, r.selectFaculty().Where(cond), scanFaculty)
	if err != nil {
		return nil, notFound(err, apperrors.ErrFacultyNotFound, "get faculty")
	}
	return p, nil
}

// GetByID retrieves a live faculty profile by ID
func (r *FacultyRepository) GetByID(ctx context.Context, id int64) (*models.FacultyProfile, error) {
	return r.getBy(ctx, squirrel.Eq{"fp.id": id})
}

// GetByUsername retrieves a live faculty profile by its user's username
func (r *FacultyRepository) GetByUsername(ctx context.Context, username string) (*models.FacultyProfile, error) {
	return r.getBy(ctx, squirrel.Eq{"u.username": username})
}

// GetByUserID retrieves the live faculty profile of a user
func (r *FacultyRepository) GetByUserID(ctx context.Context, userID int64) (*models.FacultyProfile, error) {
	return r.getBy(ctx, squirrel.Eq{"fp.user_id": userID})
}

// List returns a page of live faculty profiles ordered by name and the total count.
func (r *FacultyRepository) List(ctx context.Context, filter FacultyFilter, limit, offset int) ([]*models.FacultyProfile, int64, error) {
	where := squirrel.And{squirrel.Expr("fp.deleted_at IS NULL")}
	if filter.FacilityID > 0 {
		where = append(where, squirrel.Eq{"fp.facility_id": filter.FacilityID})
	}
	if len(filter.OrganizationIDs) > 0 {
		where = append(where, squirrel.Eq{"fp.organization_id": filter.OrganizationIDs})
	}

	total, err := count(ctx, r.pg.Pool, psql.Select("COUNT(*)").From("faculty_profiles fp").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count faculty: %w", err)
	}

	items, err := queryList(ctx, r.pg.Pool,
		r.selectFaculty().Where(where).
			OrderBy("u.last_name", "u.first_name", "fp.id").
			Limit(uint64(limit)).Offset(uint64(offset)),
		scanFaculty)
	if err != nil {
		return nil, 0, fmt.Errorf("list faculty: %w", err)
	}
	return items, total, nil
}

// CreateWithUser inserts the user and its faculty profile in one transaction.
func (r *FacultyRepository) CreateWithUser(ctx context.Context, user *models.User, p *models.FacultyProfile) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}

		if p.QuartersID != nil {
			if err := ensureVacancy(ctx, tx, *p.QuartersID); err != nil {
				return err
			}
		}

		p.UserID = user.ID
		sql, args, err := psql.Insert("faculty_profiles").
			Columns("user_id", "organization_id", "facility_id", "department_id", "quarters_id", "address", "created_by", "updated_by").
			Values(p.UserID, p.OrganizationID, p.FacilityID, p.DepartmentID, p.QuartersID, p.Address, p.CreatedBy, p.CreatedBy).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create faculty query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, "faculty_profiles_user_id_key") {
				return apperrors.ErrFacultyAlreadyExists
			}
			return fmt.Errorf("create faculty profile: %w", err)
		}
		p.User = user
		return nil
	})
}

// Update writes the user fields and address of a faculty member.
func (r *FacultyRepository) Update(ctx context.Context, p *models.FacultyProfile) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE faculty_profiles SET address = $2, updated_at = NOW(), updated_by = $3
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING updated_at`, p.ID, p.Address, p.UpdatedBy).Scan(&p.UpdatedAt)
		if err != nil {
			return notFound(err, apperrors.ErrFacultyNotFound, "update faculty profile")
		}

		_, err = tx.Exec(ctx, `
			UPDATE users SET email = $2, first_name = $3, last_name = $4, updated_at = NOW(), updated_by = $5
			WHERE id = $1`, p.User.ID, p.User.Email, p.User.FirstName, p.User.LastName, p.UpdatedBy)
		if err != nil {
			return mapUserError(err)
		}
		return nil
	})
}

// SetDepartment assigns or clears (nil) the department of a faculty member.
func (r *FacultyRepository) SetDepartment(ctx context.Context, id int64, departmentID *int64, actorID *int64) error {
	tag, err := r.pg.Pool.Exec(ctx, `
		UPDATE faculty_profiles SET department_id = $2, updated_at = NOW(), updated_by = $3
		WHERE id = $1 AND deleted_at IS NULL`, id, departmentID, actorID)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentNotFound
		}
		return fmt.Errorf("assign department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFacultyNotFound
	}
	return nil
}

// SetQuarters moves a faculty member into quarters, or out of any (nil). The
// target row is locked so concurrent moves cannot exceed its capacity.
func (r *FacultyRepository) SetQuarters(ctx context.Context, id int64, quartersID *int64, actorID *int64) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var current *int64
		err := tx.QueryRow(ctx, `
			SELECT quarters_id FROM faculty_profiles WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id).Scan(&current)
		if err != nil {
			return notFound(err, apperrors.ErrFacultyNotFound, "lock faculty profile")
		}

		if quartersID != nil && (current == nil || *current != *quartersID) {
			if err := ensureVacancy(ctx, tx, *quartersID); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `
			UPDATE faculty_profiles SET quarters_id = $2, updated_at = NOW(), updated_by = $3
			WHERE id = $1`, id, quartersID, actorID); err != nil {
			return fmt.Errorf("change quarters: %w", err)
		}
		return nil
	})
}

// SoftDelete hides a faculty profile and deactivates its user account.
func (r *FacultyRepository) SoftDelete(ctx context.Context, id int64, actorID *int64) error {
	return r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var userID int64
		err := tx.QueryRow(ctx, `
			UPDATE faculty_profiles SET deleted_at = NOW(), updated_at = NOW(), updated_by = $2
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING user_id`, id, actorID).Scan(&userID)
		if err != nil {
			return notFound(err, apperrors.ErrFacultyNotFound, "delete faculty profile")
		}

		if _, err := tx.Exec(ctx, `
			UPDATE users SET is_active = FALSE, updated_at = NOW(), updated_by = $2
			WHERE id = $1`, userID, actorID); err != nil {
			return fmt.Errorf("deactivate faculty user: %w", err)
		}
		return nil
	})
}

// ensureVacancy fails with ErrQuartersFull unless the locked quarters have a free place.
func ensureVacancy(ctx context.Context, tx pgx.Tx, quartersID int64) error {
	capacity, occupancy, err := lockQuarters(ctx, tx, quartersID)
	if err != nil {
		return err
	}
	if occupancy >= capacity {
		return apperrors.ErrQuartersFull.WithDetails(map[string]interface{}{
			"capacity":  capacity,
			"occupancy": occupancy,
		})
	}
	return nil
}
