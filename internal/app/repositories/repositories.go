package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yigit/facilityhub/internal/db"
	"github.com/yigit/facilityhub/internal/pkg/logger"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// psql builds statements with PostgreSQL placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	OrganizationRepository *OrganizationRepository
	UserRepository         *UserRepository
	FacilityRepository     *FacilityRepository
	DepartmentRepository   *DepartmentRepository
	QuartersTypeRepository *QuartersTypeRepository
	QuartersRepository     *QuartersRepository
	FacultyRepository      *FacultyRepository
	SettingsRepository     *SettingsRepository
	RelationLoader         *RelationLoader
	PurgeRepository        *PurgeRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pg *db.PostgresDB) *Repositories {
	return &Repositories{
		OrganizationRepository: NewOrganizationRepository(pg),
		UserRepository:         NewUserRepository(pg),
		FacilityRepository:     NewFacilityRepository(pg),
		DepartmentRepository:   NewDepartmentRepository(pg),
		QuartersTypeRepository: NewQuartersTypeRepository(pg),
		QuartersRepository:     NewQuartersRepository(pg),
		FacultyRepository:      NewFacultyRepository(pg),
		SettingsRepository:     NewSettingsRepository(pg),
		RelationLoader:         NewRelationLoader(pg),
		PurgeRepository:        NewPurgeRepository(pg),
	}
}

// notFound maps pgx.ErrNoRows to target and wraps anything else.
func notFound(err, target error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target
	}
	return fmt.Errorf("%s: %w", op, err)
}

// exists runs a SELECT EXISTS built from b.
func exists(ctx context.Context, q querier, b squirrel.SelectBuilder) (bool, error) {
	inner, args, err := b.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}
	var found bool
	if err := q.QueryRow(ctx, "SELECT EXISTS("+inner+")", args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// count runs a COUNT(*) query built from b.
func count(ctx context.Context, q querier, b squirrel.SelectBuilder) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// queryList runs b and scans every row with scan.
func queryList[T any](ctx context.Context, q querier, b squirrel.SelectBuilder, scan func(scanner) (*T, error)) ([]*T, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list SQL")
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// queryOne runs b and scans a single row.
func queryOne[T any](ctx context.Context, q querier, b squirrel.SelectBuilder, scan func(scanner) (*T, error)) (*T, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return scan(q.QueryRow(ctx, sql, args...))
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
