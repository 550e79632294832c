package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/db"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/dberrors"
)

// UserRepository handles user database operations
type UserRepository struct {
	pg *db.PostgresDB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pg *db.PostgresDB) *UserRepository {
	return &UserRepository{pg: pg}
}

var userColumns = []string{
	"u.id", "u.organization_id", "u.username", "u.email", "u.password_hash",
	"u.first_name", "u.last_name", "u.user_type", "u.is_admin", "u.is_active",
	"u.created_at", "u.updated_at", "u.created_by", "u.updated_by",
}

func userDest(u *models.User) []any {
	return []any{
		&u.ID, &u.OrganizationID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.UserType, &u.IsAdmin, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt, &u.CreatedBy, &u.UpdatedBy,
	}
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(userDest(&u)...); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) getBy(ctx context.Context, cond squirrel.Sqlizer) (*models.User, error) {
	u, err := queryOne(ctx, r.pg.Pool, psql.Select(userColumns...).From("users u").Where(cond), scanUser)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound, "get user")
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, squirrel.Eq{"u.id": id})
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, squirrel.Eq{"u.username": username})
}

// GetByLogin retrieves a user by username or (case-insensitive) email
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	return r.getBy(ctx, squirrel.Or{
		squirrel.Eq{"u.username": login},
		squirrel.Expr("lower(u.email) = lower(?)", login),
	})
}

// UsernameExists checks if a username is taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.pg.Pool, psql.Select("1").From("users").Where(squirrel.Eq{"username": username}))
}

// EmailExists checks if an email is taken by a user other than excludeID
func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	b := psql.Select("1").From("users").Where(squirrel.Expr("lower(email) = lower(?)", email))
	if excludeID > 0 {
		b = b.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.pg.Pool, b)
}

// SetAdmin updates the admin flag of a user
func (r *UserRepository) SetAdmin(ctx context.Context, userID int64, isAdmin bool, actorID *int64) error {
	tag, err := r.pg.Pool.Exec(ctx,
		`UPDATE users SET is_admin = $2, updated_at = NOW(), updated_by = $3 WHERE id = $1`,
		userID, isAdmin, actorID)
	if err != nil {
		return fmt.Errorf("update admin flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// insertUser inserts u through q so it can join a caller's transaction.
func insertUser(ctx context.Context, q querier, u *models.User) error {
	sql, args, err := psql.Insert("users").
		Columns("organization_id", "username", "email", "password_hash", "first_name", "last_name",
			"user_type", "is_admin", "is_active", "created_by", "updated_by").
		Values(u.OrganizationID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
			u.UserType, u.IsAdmin, u.IsActive, u.CreatedBy, u.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapUserError(err)
	}
	return nil
}

func mapUserError(err error) error {
	if name, ok := dberrors.UniqueViolation(err); ok {
		switch name {
		case "users_username_key":
			return apperrors.ErrUsernameExists
		case "users_email_key":
			return apperrors.ErrEmailAlreadyExists
		}
	}
	return fmt.Errorf("write user: %w", err)
}
