package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/facilityhub/internal/pkg/auth"
	"github.com/yigit/facilityhub/internal/pkg/logger"
)

// PrincipalKey is the gin context key holding the authenticated *auth.Principal.
const PrincipalKey = "principal"

// TokenValidator validates access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*pkgauth.Claims, error)
}

// UserLoader loads the user a token was issued for.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware for authentication
type AuthMiddleware struct {
	tokens TokenValidator
	users  UserLoader
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens TokenValidator, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// JWTAuth validates the bearer token and reloads the user, so that admin flag
// and organization changes apply without waiting for the token to expire.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Swagger UI sometimes sends the token as a query parameter
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "Authorization header missing")
			return
		}

		tokenString, err := pkgauth.ExtractBearerToken(authHeader)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Authentication failed", "Invalid token format")
			return
		}

		claims, err := m.tokens.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Authentication failed", "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Authentication failed", "Invalid token")
			return
		}

		ctx := c.Request.Context()
		user, err := m.users.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Authentication failed", "User no longer exists")
				return
			}
			logger.FromContext(ctx).Error().Err(err).Int64("userID", claims.UserID).Msg("Error loading authenticated user")
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, apperrors.ErrAccountDisabled.Error())))
			return
		}

		principal := auth.PrincipalFromUser(user)
		c.Set(PrincipalKey, principal)

		l := logger.FromContext(ctx).With().Int64("userID", principal.UserID).Logger()
		ctx = auth.WithPrincipal(l.WithContext(ctx), principal)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// FacultyAdminRequired rejects requests whose principal is not a faculty admin.
func (m *AuthMiddleware) FacultyAdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.IsFacultyAdmin(CurrentPrincipal(c)) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("Only faculty administrators can perform this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the principal set by JWTAuth, or nil.
func CurrentPrincipal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message, details string) {
	errorDetail := dto.NewErrorDetail(code, message).WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}
