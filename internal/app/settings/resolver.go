package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yigit/facilityhub/internal/pkg/apperrors"
	"github.com/yigit/facilityhub/internal/pkg/cache"
	"github.com/yigit/facilityhub/internal/pkg/logger"
)

const (
	// DepartmentLabelKey holds the word used for departments in titles.
	DepartmentLabelKey = "department_label"
	// DefaultDepartmentLabel is used when no owner in the chain sets a label.
	DefaultDepartmentLabel = "Department"

	generationKey = "settings:gen"
)

// Store persists raw setting values.
type Store interface {
	// Values returns the settings of every ref that has at least one.
	Values(ctx context.Context, refs []Ref) (map[Ref]map[string]json.RawMessage, error)
	Put(ctx context.Context, ref Ref, key string, value json.RawMessage, actorID *int64) error
	Delete(ctx context.Context, ref Ref, key string) (bool, error)
}

// RelationLoader follows one relation hop from ref. ok is false when the link is null.
type RelationLoader interface {
	Related(ctx context.Context, ref Ref, relation string) (target Ref, ok bool, err error)
	Exists(ctx context.Context, ref Ref) (bool, error)
}

// Counter is satisfied by prometheus counters.
type Counter interface {
	Inc()
}

// Resolved is a value together with the owner it was found on.
type Resolved struct {
	Value  json.RawMessage `json:"value"`
	Source Ref             `json:"source"`
}

// Resolver walks fallback chains and caches the merged result per owner.
type Resolver struct {
	store  Store
	loader RelationLoader
	cache  cache.Cache
	ttl    time.Duration

	hits   Counter
	misses Counter
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache caches effective settings for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = c
		r.ttl = ttl
	}
}

// WithCacheCounters records cache hits and misses.
func WithCacheCounters(hits, misses Counter) Option {
	return func(r *Resolver) {
		r.hits = hits
		r.misses = misses
	}
}

// NewResolver creates a resolver. Without WithCache every call walks the chain.
func NewResolver(store Store, loader RelationLoader, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		loader: loader,
		cache:  cache.Noop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Chain resolves the fallback chain of ref into concrete owners, skipping null
// links and repeated owners.
func (r *Resolver) Chain(ctx context.Context, ref Ref) ([]Ref, error) {
	if _, ok := chains[ref.Kind]; !ok {
		return nil, apperrors.ErrUnknownOwnerKind
	}

	// memo avoids reloading shared prefixes such as "facility" in "facility.organization".
	memo := make(map[string]Ref)
	seen := map[Ref]bool{ref: true}
	var out []Ref

	for _, p := range chains[ref.Kind] {
		target, ok, err := r.follow(ctx, ref, p, memo)
		if err != nil {
			return nil, err
		}
		if !ok || seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out, nil
}

func (r *Resolver) follow(ctx context.Context, start Ref, path string, memo map[string]Ref) (Ref, bool, error) {
	cur := start
	prefix := ""
	for _, hop := range strings.Split(path, ".") {
		if prefix == "" {
			prefix = hop
		} else {
			prefix += "." + hop
		}
		if cached, ok := memo[prefix]; ok {
			cur = cached
			continue
		}

		next, ok, err := r.loader.Related(ctx, cur, hop)
		if err != nil {
			return Ref{}, false, fmt.Errorf("load %s of %s: %w", hop, cur, err)
		}
		if !ok {
			return Ref{}, false, nil
		}
		memo[prefix] = next
		cur = next
	}
	return cur, true, nil
}

// Effective returns every key visible to ref. The owner's own values win over
// the chain, and earlier chain entries win over later ones.
func (r *Resolver) Effective(ctx context.Context, ref Ref) (map[string]Resolved, error) {
	key, cacheable := r.cacheKey(ctx, ref)
	if cacheable {
		var cached map[string]Resolved
		err := cache.GetJSON(ctx, r.cache, key, &cached)
		if err == nil {
			r.count(r.hits)
			return cached, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			logger.FromContext(ctx).Warn().Err(err).Str("owner", ref.String()).Msg("Settings cache read failed")
		}
	}
	r.count(r.misses)

	chain, err := r.Chain(ctx, ref)
	if err != nil {
		return nil, err
	}
	owners := append([]Ref{ref}, chain...)

	values, err := r.store.Values(ctx, owners)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	merged := make(map[string]Resolved)
	for _, owner := range owners {
		for k, v := range values[owner] {
			if _, taken := merged[k]; !taken {
				merged[k] = Resolved{Value: v, Source: owner}
			}
		}
	}

	if cacheable {
		if err := cache.SetJSON(ctx, r.cache, key, merged, r.ttl); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("owner", ref.String()).Msg("Settings cache write failed")
		}
	}
	return merged, nil
}

// Get returns the first value for key found on ref or its chain.
func (r *Resolver) Get(ctx context.Context, ref Ref, key string) (Resolved, error) {
	all, err := r.Effective(ctx, ref)
	if err != nil {
		return Resolved{}, err
	}
	v, ok := all[key]
	if !ok {
		return Resolved{}, apperrors.ErrSettingNotFound
	}
	return v, nil
}

// String resolves key as a JSON string, returning def when it is unset or not a string.
func (r *Resolver) String(ctx context.Context, ref Ref, key, def string) string {
	v, err := r.Get(ctx, ref, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSettingNotFound) {
			logger.FromContext(ctx).Warn().Err(err).Str("owner", ref.String()).Str("key", key).Msg("Setting lookup failed")
		}
		return def
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err != nil || s == "" {
		return def
	}
	return s
}

// DepartmentLabel is the title used for departments seen from ref.
func (r *Resolver) DepartmentLabel(ctx context.Context, ref Ref) string {
	return r.String(ctx, ref, DepartmentLabelKey, DefaultDepartmentLabel)
}

// Exists reports whether the owner record is live.
func (r *Resolver) Exists(ctx context.Context, ref Ref) (bool, error) {
	if _, ok := chains[ref.Kind]; !ok {
		return false, apperrors.ErrUnknownOwnerKind
	}
	return r.loader.Exists(ctx, ref)
}

// Put stores value under key on ref and invalidates cached resolutions.
func (r *Resolver) Put(ctx context.Context, ref Ref, key string, value json.RawMessage, actorID *int64) error {
	if !json.Valid(value) {
		return apperrors.NewValidationError("value", "value must be valid JSON")
	}
	if err := r.store.Put(ctx, ref, key, value, actorID); err != nil {
		return fmt.Errorf("store setting: %w", err)
	}
	r.Invalidate(ctx)
	return nil
}

// Delete removes key from ref. Inherited values are not affected.
func (r *Resolver) Delete(ctx context.Context, ref Ref, key string) error {
	removed, err := r.store.Delete(ctx, ref, key)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	if !removed {
		return apperrors.ErrSettingNotFound
	}
	r.Invalidate(ctx)
	return nil
}

// Invalidate drops every cached resolution. Call it after a setting changes or
// after an owner moves to a different parent.
func (r *Resolver) Invalidate(ctx context.Context) {
	if _, err := r.cache.Increment(ctx, generationKey); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Failed to invalidate settings cache")
	}
}

func (r *Resolver) cacheKey(ctx context.Context, ref Ref) (string, bool) {
	if r.ttl <= 0 {
		return "", false
	}
	gen, err := r.cache.Get(ctx, generationKey)
	if errors.Is(err, cache.ErrNotFound) {
		gen = "0"
	} else if err != nil {
		return "", false
	}
	if _, err := strconv.ParseInt(gen, 10, 64); err != nil {
		return "", false
	}
	return "settings:" + gen + ":" + string(ref.Kind) + ":" + strconv.FormatInt(ref.ID, 10), true
}

func (r *Resolver) count(c Counter) {
	if c != nil {
		c.Inc()
	}
}
