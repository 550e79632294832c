package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/facilityhub/internal/app/settings"
	"github.com/yigit/facilityhub/internal/db"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
)

// ownerTables maps a settings owner kind to its table and whether the table is soft-deleted.
var ownerTables = map[settings.Kind]struct {
	table      string
	softDelete bool
}{
	settings.KindOrganization:   {"organizations", false},
	settings.KindFacility:       {"facilities", true},
	settings.KindDepartment:     {"departments", true},
	settings.KindQuartersType:   {"quarters_types", true},
	settings.KindQuarters:       {"quarters", true},
	settings.KindFacultyProfile: {"faculty_profiles", true},
}

// relationColumns maps "kind.relation" to the foreign key column that implements it.
var relationColumns = map[string]string{
	"facility.organization":      "organization_id",
	"department.facility":        "facility_id",
	"quarters_type.organization": "organization_id",
	"quarters.type":              "type_id",
	"quarters.facility":          "facility_id",
	"faculty_profile.facility":   "facility_id",
}

// RelationLoader follows foreign keys for the settings resolver.
type RelationLoader struct {
	pg *db.PostgresDB
}

// NewRelationLoader creates a new RelationLoader
func NewRelationLoader(pg *db.PostgresDB) *RelationLoader {
	return &RelationLoader{pg: pg}
}

// Related returns the record ref points to through relation. Links to
// soft-deleted or missing records count as null.
func (l *RelationLoader) Related(ctx context.Context, ref settings.Ref, relation string) (settings.Ref, bool, error) {
	src, ok := ownerTables[ref.Kind]
	column, hasColumn := relationColumns[string(ref.Kind)+"."+relation]
	targetKind, hasTarget := settings.Target(ref.Kind, relation)
	if !ok || !hasColumn || !hasTarget {
		return settings.Ref{}, false, fmt.Errorf("%w: %s has no relation %q", apperrors.ErrBadRequest, ref.Kind, relation)
	}
	dst := ownerTables[targetKind]

	query := fmt.Sprintf(`SELECT t.id FROM %s s JOIN %s t ON t.id = s.%s WHERE s.id = $1`, src.table, dst.table, column)
	if src.softDelete {
		query += " AND s.deleted_at IS NULL"
	}
	if dst.softDelete {
		query += " AND t.deleted_at IS NULL"
	}

	var id int64
	if err := l.pg.Pool.QueryRow(ctx, query, ref.ID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Ref{}, false, nil
		}
		return settings.Ref{}, false, fmt.Errorf("load %s of %s: %w", relation, ref, err)
	}
	return settings.Ref{Kind: targetKind, ID: id}, true, nil
}

// Exists reports whether ref names a live record.
func (l *RelationLoader) Exists(ctx context.Context, ref settings.Ref) (bool, error) {
	src, ok := ownerTables[ref.Kind]
	if !ok {
		return false, apperrors.ErrUnknownOwnerKind
	}
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1`, src.table)
	if src.softDelete {
		query += " AND deleted_at IS NULL"
	}
	query += ")"

	var found bool
	if err := l.pg.Pool.QueryRow(ctx, query, ref.ID).Scan(&found); err != nil {
		return false, fmt.Errorf("check owner: %w", err)
	}
	return found, nil
}
