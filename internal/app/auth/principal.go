package auth

import (
	"context"

	"github.com/yigit/facilityhub/internal/app/models"
)

// Principal is the authenticated user a request acts for.
type Principal struct {
	UserID         int64
	Username       string
	UserType       models.UserType
	IsAdmin        bool
	OrganizationID *int64
}

// PrincipalFromUser builds a principal from a freshly loaded user.
func PrincipalFromUser(u *models.User) *Principal {
	return &Principal{
		UserID:         u.ID,
		Username:       u.Username,
		UserType:       u.UserType,
		IsAdmin:        u.IsAdmin,
		OrganizationID: u.OrganizationID,
	}
}

// ActorID returns the user ID for audit columns.
func (p *Principal) ActorID() *int64 {
	if p == nil {
		return nil
	}
	id := p.UserID
	return &id
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
