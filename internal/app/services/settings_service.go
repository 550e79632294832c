package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yigit/facilityhub/internal/app/auth"
	"github.com/yigit/facilityhub/internal/app/settings"
	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/logger"
	"github.com/yigit/facilityhub/internal/pkg/validation"
)

// ErrSettingsOwnerNotFound is returned when a settings owner does not exist or is deleted.
var ErrSettingsOwnerNotFound = apperrors.NewResourceNotFoundError("settings owner not found")

// ErrSharedSettingsOwner is returned for writes on owners outside every
// organization, such as shared quarters types.
var ErrSharedSettingsOwner = apperrors.NewForbiddenError("settings of shared records are read-only")

// EffectiveSettings is the merged view of the settings visible to an owner.
type EffectiveSettings struct {
	Owner  settings.Ref
	Chain  []settings.Ref
	Values map[string]settings.Resolved
}

// SettingsService exposes settings of any owner record
type SettingsService struct {
	resolver    SettingsResolver
	facultyRepo FacultyStore
	authz       *auth.AuthorizationService
}

// NewSettingsService creates a new settings service instance
func NewSettingsService(resolver SettingsResolver, facultyRepo FacultyStore, authz *auth.AuthorizationService) *SettingsService {
	return &SettingsService{resolver: resolver, facultyRepo: facultyRepo, authz: authz}
}

// Effective returns every setting visible to ref together with its fallback chain
func (s *SettingsService) Effective(ctx context.Context, ref settings.Ref) (*EffectiveSettings, error) {
	if err := s.ensureOwner(ctx, ref); err != nil {
		return nil, err
	}
	chain, err := s.resolver.Chain(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("error resolving settings chain: %w", err)
	}
	values, err := s.resolver.Effective(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("error resolving settings: %w", err)
	}
	return &EffectiveSettings{Owner: ref, Chain: chain, Values: values}, nil
}

// Chain returns the fallback chain of ref in lookup order
func (s *SettingsService) Chain(ctx context.Context, ref settings.Ref) ([]settings.Ref, error) {
	if err := s.ensureOwner(ctx, ref); err != nil {
		return nil, err
	}
	return s.resolver.Chain(ctx, ref)
}

// Get resolves one key for ref
func (s *SettingsService) Get(ctx context.Context, ref settings.Ref, key string) (settings.Resolved, error) {
	if err := checkKey(key); err != nil {
		return settings.Resolved{}, err
	}
	if err := s.ensureOwner(ctx, ref); err != nil {
		return settings.Resolved{}, err
	}
	return s.resolver.Get(ctx, ref, key)
}

// Put stores a value on ref itself
func (s *SettingsService) Put(ctx context.Context, actor *auth.Principal, ref settings.Ref, key string, value json.RawMessage) (settings.Resolved, error) {
	if err := checkKey(key); err != nil {
		return settings.Resolved{}, err
	}
	if err := s.requireWriter(ctx, actor, ref); err != nil {
		return settings.Resolved{}, err
	}
	if err := s.resolver.Put(ctx, ref, key, value, actor.ActorID()); err != nil {
		return settings.Resolved{}, err
	}

	logger.FromContext(ctx).Info().Str("owner", ref.String()).Str("key", key).Int64("userID", actor.UserID).Msg("Setting stored")
	return settings.Resolved{Value: value, Source: ref}, nil
}

// Delete removes a value stored on ref itself. Inherited values stay visible.
func (s *SettingsService) Delete(ctx context.Context, actor *auth.Principal, ref settings.Ref, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.requireWriter(ctx, actor, ref); err != nil {
		return err
	}
	if err := s.resolver.Delete(ctx, ref, key); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Str("owner", ref.String()).Str("key", key).Int64("userID", actor.UserID).Msg("Setting deleted")
	return nil
}

func (s *SettingsService) ensureOwner(ctx context.Context, ref settings.Ref) error {
	ok, err := s.resolver.Exists(ctx, ref)
	if err != nil {
		return fmt.Errorf("error checking settings owner: %w", err)
	}
	if !ok {
		return ErrSettingsOwnerNotFound
	}
	return nil
}

// requireWriter allows faculty admins whose organization tree contains the
// organization that owns ref. Owners outside every organization are read-only.
func (s *SettingsService) requireWriter(ctx context.Context, actor *auth.Principal, ref settings.Ref) error {
	if err := s.authz.RequireFacultyAdmin(actor); err != nil {
		return err
	}
	if err := s.ensureOwner(ctx, ref); err != nil {
		return err
	}

	orgID, ok, err := s.owningOrganization(ctx, ref)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSharedSettingsOwner
	}
	return s.authz.RequireOrganizationManager(ctx, actor, orgID)
}

// owningOrganization returns the organization ref belongs to. Faculty profiles
// keep their organization when their facility is removed, so it is read from
// the profile itself. Other owners use the nearest organization on their chain.
func (s *SettingsService) owningOrganization(ctx context.Context, ref settings.Ref) (int64, bool, error) {
	switch ref.Kind {
	case settings.KindOrganization:
		return ref.ID, true, nil
	case settings.KindFacultyProfile:
		profile, err := s.facultyRepo.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrFacultyNotFound) {
				return 0, false, ErrSettingsOwnerNotFound
			}
			return 0, false, fmt.Errorf("error loading faculty profile: %w", err)
		}
		return profile.OrganizationID, true, nil
	}

	chain, err := s.resolver.Chain(ctx, ref)
	if err != nil {
		return 0, false, fmt.Errorf("error resolving settings chain: %w", err)
	}
	for _, r := range chain {
		if r.Kind == settings.KindOrganization {
			return r.ID, true, nil
		}
	}
	return 0, false, nil
}

func checkKey(key string) error {
	if !validation.ValidSettingKey(key) {
		return apperrors.NewValidationError("key", "key must contain lowercase letters, digits, '_' or '.'")
	}
	return nil
}
