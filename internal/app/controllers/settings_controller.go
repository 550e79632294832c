package controllers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/models/dto"
	"github.com/yigit/facilityhub/internal/app/services"
	"github.com/yigit/facilityhub/internal/app/settings"
	"github.com/yigit/facilityhub/internal/middleware"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
)

// chainSegment is served by the chain view instead of being read as a key.
const chainSegment = "chain"

// SettingsService is the settings use case behind SettingsController
type SettingsService interface {
	Effective(ctx context.Context, ref settings.Ref) (*services.EffectiveSettings, error)
	Chain(ctx context.Context, ref settings.Ref) ([]settings.Ref, error)
	Get(ctx context.Context, ref settings.Ref, key string) (settings.Resolved, error)
	Put(ctx context.Context, actor *auth.Principal, ref settings.Ref, key string, value json.RawMessage) (settings.Resolved, error)
	Delete(ctx context.Context, actor *auth.Principal, ref settings.Ref, key string) error
}

var _ SettingsService = (*services.SettingsService)(nil)

// SettingsController exposes the settings of any owner record
type SettingsController struct {
	settingsService SettingsService
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(settingsService SettingsService) *SettingsController {
	return &SettingsController{settingsService: settingsService}
}

func ownerOf(ref settings.Ref) dto.SettingOwner {
	return dto.SettingOwner{Kind: string(ref.Kind), ID: ref.ID}
}

func ownersOf(refs []settings.Ref) []dto.SettingOwner {
	out := make([]dto.SettingOwner, 0, len(refs))
	for _, r := range refs {
		out = append(out, ownerOf(r))
	}
	return out
}

func settingResponse(ref settings.Ref, key string, r settings.Resolved) dto.SettingResponse {
	return dto.SettingResponse{Owner: ownerOf(ref), Key: key, Value: r.Value, Source: ownerOf(r.Source)}
}

func ownerParam(ctx *gin.Context) (settings.Ref, bool) {
	kind, err := settings.ParseKind(ctx.Param("kind"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return settings.Ref{}, false
	}
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("id", "id must be a positive number"))
		return settings.Ref{}, false
	}
	return settings.Ref{Kind: kind, ID: id}, true
}

// GetEffectiveSettings returns every setting an owner sees
// @Summary Effective settings
// @Description Merges the owner's own settings with those inherited along its fallback chain
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Owner kind" Enums(organization, facility, department, quarters_type, quarters, faculty_profile)
// @Param id path int true "Owner ID"
// @Success 200 {object} dto.APIResponse{data=dto.EffectiveSettingsResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown owner kind"
// @Failure 404 {object} dto.ErrorResponse "Owner not found"
// @Router /settings/{kind}/{id} [get]
func (c *SettingsController) GetEffectiveSettings(ctx *gin.Context) {
	ref, ok := ownerParam(ctx)
	if !ok {
		return
	}
	eff, err := c.settingsService.Effective(ctx.Request.Context(), ref)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	values := make(map[string]json.RawMessage, len(eff.Values))
	for k, v := range eff.Values {
		values[k] = v.Value
	}
	respondOK(ctx, dto.EffectiveSettingsResponse{Owner: ownerOf(ref), Chain: ownersOf(eff.Chain), Values: values})
}

// GetSetting resolves one key for an owner. The "chain" segment returns the fallback chain.
// @Summary Get setting
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Owner kind"
// @Param id path int true "Owner ID"
// @Param key path string true "Setting key, or chain"
// @Success 200 {object} dto.APIResponse{data=dto.SettingResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid key"
// @Failure 404 {object} dto.ErrorResponse "Owner or setting not found"
// @Router /settings/{kind}/{id}/{key} [get]
func (c *SettingsController) GetSetting(ctx *gin.Context) {
	ref, ok := ownerParam(ctx)
	if !ok {
		return
	}
	key := ctx.Param("key")
	if key == chainSegment {
		c.getChain(ctx, ref)
		return
	}
	resolved, err := c.settingsService.Get(ctx.Request.Context(), ref, key)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, settingResponse(ref, key, resolved))
}

// getChain lists the fallback chain of an owner
// @Summary Settings chain
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Owner kind"
// @Param id path int true "Owner ID"
// @Success 200 {object} dto.APIResponse{data=dto.ChainResponse}
// @Failure 404 {object} dto.ErrorResponse "Owner not found"
// @Router /settings/{kind}/{id}/chain [get]
func (c *SettingsController) getChain(ctx *gin.Context, ref settings.Ref) {
	chain, err := c.settingsService.Chain(ctx.Request.Context(), ref)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.ChainResponse{Owner: ownerOf(ref), Chain: ownersOf(chain)})
}

// PutSetting stores a value on the owner itself
// @Summary Put setting
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Owner kind"
// @Param id path int true "Owner ID"
// @Param key path string true "Setting key"
// @Param request body dto.PutSettingRequest true "JSON value"
// @Success 200 {object} dto.APIResponse{data=dto.SettingResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid key or value"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Owner not found"
// @Router /settings/{kind}/{id}/{key} [put]
func (c *SettingsController) PutSetting(ctx *gin.Context) {
	ref, ok := ownerParam(ctx)
	if !ok {
		return
	}
	key := ctx.Param("key")
	if key == chainSegment {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("key", "chain is a reserved key"))
		return
	}
	var req dto.PutSettingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	if !json.Valid(req.Value) {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("value", "value must be valid JSON"))
		return
	}
	resolved, err := c.settingsService.Put(ctx.Request.Context(), actor(ctx), ref, key, req.Value)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, settingResponse(ref, key, resolved))
}

// DeleteSetting removes a value stored on the owner itself
// @Summary Delete setting
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Owner kind"
// @Param id path int true "Owner ID"
// @Param key path string true "Setting key"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Owner or setting not found"
// @Router /settings/{kind}/{id}/{key} [delete]
func (c *SettingsController) DeleteSetting(ctx *gin.Context) {
	ref, ok := ownerParam(ctx)
	if !ok {
		return
	}
	if err := c.settingsService.Delete(ctx.Request.Context(), actor(ctx), ref, ctx.Param("key")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Setting deleted successfully")
}
