package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/logger"
)

// HandleAPIError writes the error response for err. Domain errors carry their
// own message, field and details; the class they unwrap to picks the status.
func HandleAPIError(c *gin.Context, err error) {
	status, code := classify(err)

	message := apperrors.Message(err)
	if status == http.StatusInternalServerError {
		message = "Internal server error"
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Unhandled error")
	} else if message == "" {
		message = err.Error()
	}

	errorDetail := dto.NewErrorDetail(code, message)
	if field := apperrors.Field(err); field != "" {
		errorDetail = errorDetail.WithField(field)
	}
	if details := apperrors.Details(err); len(details) > 0 {
		errorDetail = errorDetail.WithDetails(details)
	}
	if requestID := c.GetString("requestID"); requestID != "" {
		errorDetail = errorDetail.WithRequestID(requestID)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(errorDetail))
}

func classify(err error) (int, dto.ErrorCode) {
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeBadRequest
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeResourceConflict
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusUnauthorized, dto.ErrorCodeAccountDisabled
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, dto.ErrorCodeUnauthorized
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer
	}
}
