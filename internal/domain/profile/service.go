package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/domain/registry"
	"github.com/jsachs1300/wayfinder-api/internal/utils/platformerrors"
)

// CacheFlushHint is the fixed operator guidance attached whenever an update
// changed the effective model set. The service never flushes automatically.
const CacheFlushHint = "The effective model set changed with this update. Clear the global cache so cached routing decisions made under the previous profile version are not served."

// Config configures the reconciliation service.
type Config struct {
	// Scope is the cache-scope prefix; the deployment runs a single "global" scope.
	Scope string
	// RelaxedValidation degrades an unreachable registry to an empty snapshot
	// instead of failing closed. Off by default.
	RelaxedValidation bool
}

// Service computes effective/missing/recommended model sets by diffing the
// stored profile against the live registry, and decides whether a cache flush
// is warranted after an update.
type Service struct {
	scope    string
	store    Store
	registry registry.Client
	ranker   Ranker
	relaxed  bool
	log      zerolog.Logger
}

func NewService(store Store, registryClient registry.Client, ranker Ranker, cfg Config, log zerolog.Logger) *Service {
	scope := strings.TrimSpace(cfg.Scope)
	if scope == "" {
		scope = "global"
	}
	return &Service{
		scope:    scope,
		store:    store,
		registry: registryClient,
		ranker:   ranker,
		relaxed:  cfg.RelaxedValidation,
		log:      log.With().Str("component", "profile-service").Logger(),
	}
}

// Scope returns the configured profile scope.
func (s *Service) Scope() string {
	return s.scope
}

// NormalizeModelIDs trims whitespace, drops empties, and deduplicates
// preserving first-seen order.
func NormalizeModelIDs(ids []string) []string {
	normalized := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}
	return normalized
}

// ValidateModelIDs checks every ID against the snapshot's eligible set,
// all-or-nothing. Validation is skipped when the registry reports no models.
func ValidateModelIDs(snapshot *registry.Snapshot, ids []string) error {
	if snapshot.Empty() || len(ids) == 0 {
		return nil
	}
	available := snapshot.AvailableIDs()
	var invalid []string
	for _, id := range ids {
		if _, ok := available[id]; !ok {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return &InvalidModelIDsError{IDs: invalid}
	}
	return nil
}

// Evaluate diffs a profile against a registry snapshot. Pure read semantics:
// the flush fields are always false/empty here.
func (s *Service) Evaluate(prof *DefaultTokenProfile, snapshot *registry.Snapshot) ReconciliationResult {
	available := snapshot.AvailableIDs()

	effective := make([]string, 0, len(prof.ModelIDs))
	missing := make([]string, 0)
	seen := make(map[string]struct{}, len(prof.ModelIDs))
	for _, id := range prof.ModelIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := available[id]; ok {
			effective = append(effective, id)
		} else {
			missing = append(missing, id)
		}
	}

	recommended := []string{}
	if s.ranker != nil {
		recommended = s.ranker.Rank(snapshot)
	}

	return ReconciliationResult{
		Profile:             *prof,
		EffectiveModelIDs:   effective,
		MissingModelIDs:     missing,
		RecommendedModelIDs: recommended,
		CacheScope:          s.cacheScope(prof.Version),
	}
}

// Get returns the reconciled view of the current profile against a fresh
// registry snapshot.
func (s *Service) Get(ctx context.Context) (*ReconciliationResult, error) {
	prof, err := s.readOrEmpty(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	result := s.Evaluate(prof, snapshot)
	return &result, nil
}

// GetForModelIDs returns the reconciled view with effective and missing sets
// computed against the given model-ID list instead of the stored profile's
// list. The profile metadata in the result still describes the stored profile.
// Used to show what a specific token can actually reach right now.
func (s *Service) GetForModelIDs(ctx context.Context, modelIDs []string) (*ReconciliationResult, error) {
	prof, err := s.readOrEmpty(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	override := *prof
	override.ModelIDs = NormalizeModelIDs(modelIDs)
	result := s.Evaluate(&override, snapshot)
	result.Profile = *prof
	return &result, nil
}

// EffectiveModelIDs resolves the current effective set, for callers that only
// need eligibility (default-scoped tokens resolve through this on every use).
func (s *Service) EffectiveModelIDs(ctx context.Context) ([]string, error) {
	result, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return result.EffectiveModelIDs, nil
}

// ApplyUpdate validates and persists a new model-ID list, then reports
// whether the change could have invalidated cached routing decisions.
// expectedVersion nil means "the version read just now" (read-then-write
// optimistic concurrency); a VersionConflict propagates unmodified.
func (s *Service) ApplyUpdate(ctx context.Context, requestedModelIDs []string, actor string, expectedVersion *int64) (*ReconciliationResult, error) {
	modelIDs := NormalizeModelIDs(requestedModelIDs)

	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := ValidateModelIDs(snapshot, modelIDs); err != nil {
		return nil, err
	}

	current, err := s.readOrEmpty(ctx)
	if err != nil {
		return nil, err
	}
	before := s.Evaluate(current, snapshot).EffectiveModelIDs

	version := current.Version
	if expectedVersion != nil {
		version = *expectedVersion
	}

	updated, err := s.store.CompareAndSwap(ctx, s.scope, version, modelIDs, actor)
	if err != nil {
		return nil, err
	}

	result := s.Evaluate(updated, snapshot)
	if !sameSet(before, result.EffectiveModelIDs) {
		result.CacheFlushRecommended = true
		result.CacheFlushHint = CacheFlushHint
	}

	s.log.Info().
		Str("actor", actor).
		Int64("version", updated.Version).
		Strs("model_ids", modelIDs).
		Bool("cache_flush_recommended", result.CacheFlushRecommended).
		Msg("default-token profile updated")

	return &result, nil
}

func (s *Service) cacheScope(version int64) string {
	return fmt.Sprintf("%s:v%d", s.scope, version)
}

// readOrEmpty auto-heals a never-bootstrapped store to an empty profile at
// version 0; the first successful CompareAndSwap creates the row.
func (s *Service) readOrEmpty(ctx context.Context) (*DefaultTokenProfile, error) {
	prof, err := s.store.Read(ctx, s.scope)
	if err == ErrNotInitialized {
		return &DefaultTokenProfile{
			Scope:    s.scope,
			ModelIDs: []string{},
			Version:  0,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return prof, nil
}

// snapshot fetches a fresh registry view. Validation fails closed on an
// unreachable registry unless relaxed validation was explicitly configured,
// in which case the snapshot degrades to empty (which skips validation and
// reports every configured ID as missing).
func (s *Service) snapshot(ctx context.Context) (*registry.Snapshot, error) {
	snapshot, err := s.registry.Snapshot(ctx)
	if err != nil {
		if s.relaxed {
			s.log.Warn().Err(err).Msg("registry unreachable, degrading to empty snapshot")
			return &registry.Snapshot{}, nil
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "model registry snapshot failed")
	}
	return snapshot, nil
}

func sameSet(a, b []string) bool {
	as, bs := setOf(a), setOf(b)
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if _, ok := bs[id]; !ok {
			return false
		}
	}
	return true
}

func setOf(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
