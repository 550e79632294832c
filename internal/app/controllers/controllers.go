// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/services"
	"github.com/yigit/facilityhub/internal/middleware"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// lookupParam parses an id-or-slug path segment. On failure it writes a 400
// response and returns false.
func lookupParam(ctx *gin.Context, name string) (slug.Lookup, bool) {
	lookup, err := slug.ParseLookup(ctx.Param(name))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid "+name+" identifier").
			WithField(name).
			WithDetails(err.Error())
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return slug.Lookup{}, false
	}
	return lookup, true
}

func actor(ctx *gin.Context) *auth.Principal {
	return middleware.CurrentPrincipal(ctx)
}

// paginated converts a service page into the list envelope.
func paginated[T any, R any](page *services.Page[T], convert func([]*T) []R) dto.PaginatedResponse {
	return dto.PaginatedResponse{
		Items:      convert(page.Items),
		Pagination: page.Pagination(),
	}
}

func respondOK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func respondCreated(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func respondDeleted(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: message}))
}
