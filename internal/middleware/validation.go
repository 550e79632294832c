package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/pkg/validation"
)

// HandleBindError answers a failed ShouldBind* call with 400. Validator errors
// report every failing field; anything else is a malformed body or query.
func HandleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]dto.ErrorDetail, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, *dto.NewErrorDetail(dto.ErrorCodeValidationFailed, validation.FormatFieldError(fe)).
				WithField(fe.Field()))
		}
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fields[0].Message).
			WithField(fields[0].Field).
			WithDetails(fields)
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid request format").WithDetails(err.Error())
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}
