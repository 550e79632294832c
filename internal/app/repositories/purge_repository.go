package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/facilityhub/internal/app/settings"
	"github.com/yigit/facilityhub/internal/db"
)

// purgeOrder lists soft-deleted tables children first so foreign keys never block.
var purgeOrder = []struct {
	table string
	kind  settings.Kind
	extra string
}{
	{"faculty_profiles", settings.KindFacultyProfile, ""},
	{"quarters", settings.KindQuarters, ""},
	{"departments", settings.KindDepartment, ""},
	{"quarters_types", settings.KindQuartersType, " AND NOT EXISTS (SELECT 1 FROM quarters q WHERE q.type_id = quarters_types.id)"},
	{"facilities", settings.KindFacility, ""},
}

// PurgeRepository permanently removes rows soft-deleted before a cutoff.
type PurgeRepository struct {
	pg *db.PostgresDB
}

// NewPurgeRepository creates a new PurgeRepository
func NewPurgeRepository(pg *db.PostgresDB) *PurgeRepository {
	return &PurgeRepository{pg: pg}
}

// PurgeDeletedBefore hard-deletes rows whose deleted_at is older than cutoff,
// along with their settings, and returns the count per table.
func (r *PurgeRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (map[string]int64, error) {
	counts := make(map[string]int64, len(purgeOrder))

	err := r.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, p := range purgeOrder {
			if _, err := tx.Exec(ctx, fmt.Sprintf(`
				DELETE FROM settings s USING %[1]s
				WHERE s.owner_kind = $1 AND s.owner_id = %[1]s.id
				AND %[1]s.deleted_at IS NOT NULL AND %[1]s.deleted_at < $2%[2]s`, p.table, p.extra),
				string(p.kind), cutoff); err != nil {
				return fmt.Errorf("purge %s settings: %w", p.table, err)
			}

			tag, err := tx.Exec(ctx, fmt.Sprintf(`
				DELETE FROM %s WHERE deleted_at IS NOT NULL AND deleted_at < $1%s`, p.table, p.extra), cutoff)
			if err != nil {
				return fmt.Errorf("purge %s: %w", p.table, err)
			}
			counts[p.table] = tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
