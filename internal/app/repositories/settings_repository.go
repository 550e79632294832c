package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yigit/facilityhub/internal/app/settings"
	"github.com/yigit/facilityhub/internal/db"
)

// SettingsRepository stores setting values keyed by owner
type SettingsRepository struct {
	pg *db.PostgresDB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(pg *db.PostgresDB) *SettingsRepository {
	return &SettingsRepository{pg: pg}
}

// Values loads the settings of all refs in one query.
func (r *SettingsRepository) Values(ctx context.Context, refs []settings.Ref) (map[settings.Ref]map[string]json.RawMessage, error) {
	out := make(map[settings.Ref]map[string]json.RawMessage)
	if len(refs) == 0 {
		return out, nil
	}

	kinds := make([]string, len(refs))
	ids := make([]int64, len(refs))
	for i, ref := range refs {
		kinds[i] = string(ref.Kind)
		ids[i] = ref.ID
	}

	rows, err := r.pg.Pool.Query(ctx, `
		SELECT s.owner_kind, s.owner_id, s.key, s.value
		FROM settings s
		JOIN unnest($1::text[], $2::bigint[]) AS o(kind, id)
			ON s.owner_kind = o.kind AND s.owner_id = o.id`, kinds, ids)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind  string
			id    int64
			key   string
			value []byte
		)
		if err := rows.Scan(&kind, &id, &key, &value); err != nil {
			return nil, err
		}
		ref := settings.Ref{Kind: settings.Kind(kind), ID: id}
		if out[ref] == nil {
			out[ref] = make(map[string]json.RawMessage)
		}
		out[ref][key] = json.RawMessage(value)
	}
	return out, rows.Err()
}

// Put inserts or replaces a setting value
func (r *SettingsRepository) Put(ctx context.Context, ref settings.Ref, key string, value json.RawMessage, actorID *int64) error {
	_, err := r.pg.Pool.Exec(ctx, `
		INSERT INTO settings (owner_kind, owner_id, key, value, created_by, updated_by)
		VALUES ($1, $2, $3, $4::jsonb, $5, $5)
		ON CONFLICT (owner_kind, owner_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW(), updated_by = EXCLUDED.updated_by`,
		string(ref.Kind), ref.ID, key, string(value), actorID)
	if err != nil {
		return fmt.Errorf("put setting: %w", err)
	}
	return nil
}

// Delete removes a setting and reports whether it existed
func (r *SettingsRepository) Delete(ctx context.Context, ref settings.Ref, key string) (bool, error) {
	tag, err := r.pg.Pool.Exec(ctx,
		`DELETE FROM settings WHERE owner_kind = $1 AND owner_id = $2 AND key = $3`,
		string(ref.Kind), ref.ID, key)
	if err != nil {
		return false, fmt.Errorf("delete setting: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
