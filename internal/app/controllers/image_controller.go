package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/services"
	"github.com/yigit/facilityhub/internal/middleware"
	"github.com/yigit/facilityhub/internal/pkg/filestorage"
	"github.com/yigit/facilityhub/internal/pkg/logger"
	"github.com/yigit/facilityhub/internal/pkg/slug"
)

// FacilityImageService stores the image URL of a facility
type FacilityImageService interface {
	SetImage(ctx context.Context, actor *auth.Principal, lookup slug.Lookup, imageURL string) (*models.Facility, string, error)
}

var _ FacilityImageService = (*services.FacilityService)(nil)

// ImageController handles image uploads
type ImageController struct {
	facilities FacilityImageService
	images     filestorage.ImageStore
}

// NewImageController creates a new ImageController
func NewImageController(facilities FacilityImageService, images filestorage.ImageStore) *ImageController {
	return &ImageController{facilities: facilities, images: images}
}

// UploadFacilityImage replaces the image of a facility
// @Summary Upload facility image
// @Tags facilities
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param facility path string true "Facility ID or slug"
// @Param image formData file true "JPEG, PNG, GIF or WebP image"
// @Success 200 {object} dto.APIResponse{data=dto.FacilityResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid image"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Facility not found"
// @Router /facilities/{facility}/image [put]
func (c *ImageController) UploadFacilityImage(ctx *gin.Context) {
	lookup, ok := lookupParam(ctx, "facility")
	if !ok {
		return
	}
	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		middleware.HandleAPIError(ctx, filestorage.ErrNoFile)
		return
	}

	url, err := c.images.SaveImage(fileHeader, "facilities")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	reqCtx := ctx.Request.Context()
	facility, previous, err := c.facilities.SetImage(reqCtx, actor(ctx), lookup, url)
	if err != nil {
		discardImage(reqCtx, c.images, url)
		middleware.HandleAPIError(ctx, err)
		return
	}
	if previous != "" && previous != url {
		discardImage(reqCtx, c.images, previous)
	}
	respondOK(ctx, dto.FromFacility(facility))
}

func discardImage(ctx context.Context, images filestorage.ImageStore, url string) {
	if images == nil {
		return
	}
	if err := images.DeleteImage(url); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("url", url).Msg("Failed to remove image")
	}
}
