package profile_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/domain/registry"
)

// memStore is an in-memory profile.Store with real compare-and-swap semantics.
type memStore struct {
	mu   sync.Mutex
	prof *profile.DefaultTokenProfile
}

func (s *memStore) Read(ctx context.Context, scope string) (*profile.DefaultTokenProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prof == nil {
		return nil, profile.ErrNotInitialized
	}
	cp := *s.prof
	cp.ModelIDs = append([]string(nil), s.prof.ModelIDs...)
	return &cp, nil
}

func (s *memStore) CompareAndSwap(ctx context.Context, scope string, expectedVersion int64, modelIDs []string, actor string) (*profile.DefaultTokenProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := int64(0)
	if s.prof != nil {
		current = s.prof.Version
	}
	if current != expectedVersion {
		return nil, profile.ErrVersionConflict
	}
	s.prof = &profile.DefaultTokenProfile{
		Scope:     scope,
		ModelIDs:  append([]string(nil), modelIDs...),
		Version:   current + 1,
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: actor,
	}
	cp := *s.prof
	return &cp, nil
}

type stubRegistry struct {
	snapshot *registry.Snapshot
	err      error
}

func (r *stubRegistry) Snapshot(ctx context.Context) (*registry.Snapshot, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.snapshot, nil
}

func catalog(defaultID string, ids ...string) *registry.Snapshot {
	models := make([]registry.ModelRecord, 0, len(ids))
	for _, id := range ids {
		models = append(models, registry.ModelRecord{ID: id, Available: true})
	}
	return &registry.Snapshot{Models: models, Default: defaultID}
}

func newService(store profile.Store, reg registry.Client, relaxed bool) *profile.Service {
	return profile.NewService(store, reg, profile.NewCatalogOrderRanker(5), profile.Config{
		Scope:             "global",
		RelaxedValidation: relaxed,
	}, zerolog.Nop())
}

func TestGetSplitsEffectiveAndMissing(t *testing.T) {
	store := &memStore{prof: &profile.DefaultTokenProfile{
		Scope:    "global",
		ModelIDs: []string{"gpt-4o-mini", "retired-model", "gemini-2.5-flash"},
		Version:  4,
	}}
	reg := &stubRegistry{snapshot: catalog("gpt-4o-mini", "gpt-4o-mini", "gemini-2.5-flash", "claude-haiku")}
	svc := newService(store, reg, false)

	result, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantEffective := []string{"gpt-4o-mini", "gemini-2.5-flash"}
	if !equalSlices(result.EffectiveModelIDs, wantEffective) {
		t.Fatalf("effective = %v, want %v", result.EffectiveModelIDs, wantEffective)
	}
	if !equalSlices(result.MissingModelIDs, []string{"retired-model"}) {
		t.Fatalf("missing = %v", result.MissingModelIDs)
	}
	if result.CacheScope != "global:v4" {
		t.Fatalf("cache scope = %q", result.CacheScope)
	}
	if result.CacheFlushRecommended || result.CacheFlushHint != "" {
		t.Fatalf("plain read must not recommend a flush: %+v", result)
	}
}

func TestGetDisabledModelIsMissing(t *testing.T) {
	store := &memStore{prof: &profile.DefaultTokenProfile{
		Scope:    "global",
		ModelIDs: []string{"m1", "m2"},
		Version:  1,
	}}
	reg := &stubRegistry{snapshot: &registry.Snapshot{Models: []registry.ModelRecord{
		{ID: "m1", Available: true},
		{ID: "m2", Available: true, Status: "disabled"},
	}}}
	svc := newService(store, reg, false)

	result, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalSlices(result.EffectiveModelIDs, []string{"m1"}) {
		t.Fatalf("effective = %v", result.EffectiveModelIDs)
	}
	if !equalSlices(result.MissingModelIDs, []string{"m2"}) {
		t.Fatalf("missing = %v", result.MissingModelIDs)
	}
}

func TestGetUninitializedProfileReadsAsEmpty(t *testing.T) {
	store := &memStore{}
	reg := &stubRegistry{snapshot: catalog("", "m1")}
	svc := newService(store, reg, false)

	result, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Profile.Version != 0 {
		t.Fatalf("version = %d, want 0", result.Profile.Version)
	}
	if len(result.EffectiveModelIDs) != 0 || len(result.MissingModelIDs) != 0 {
		t.Fatalf("empty profile must yield empty sets: %+v", result)
	}
	if result.CacheScope != "global:v0" {
		t.Fatalf("cache scope = %q", result.CacheScope)
	}
}

func TestApplyUpdateRejectsUnknownModelIDs(t *testing.T) {
	store := &memStore{prof: &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{"m1"}, Version: 2}}
	reg := &stubRegistry{snapshot: catalog("", "m1", "m2")}
	svc := newService(store, reg, false)

	_, err := svc.ApplyUpdate(context.Background(), []string{"m1", "ghost-a", "ghost-b"}, "admin", nil)
	var invalid *profile.InvalidModelIDsError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidModelIDsError, got %v", err)
	}
	if !equalSlices(invalid.IDs, []string{"ghost-a", "ghost-b"}) {
		t.Fatalf("offending IDs = %v", invalid.IDs)
	}

	stored, _ := store.Read(context.Background(), "global")
	if stored.Version != 2 {
		t.Fatalf("rejected update must not mutate state; version = %d", stored.Version)
	}
}

func TestApplyUpdateFlushOnlyWhenEffectiveSetChanges(t *testing.T) {
	store := &memStore{prof: &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{"m1", "m2"}, Version: 1}}
	reg := &stubRegistry{snapshot: catalog("", "m1", "m2", "m3")}
	svc := newService(store, reg, false)

	// Reordering the same effective set must not recommend a flush.
	result, err := svc.ApplyUpdate(context.Background(), []string{"m2", "m1"}, "admin", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CacheFlushRecommended {
		t.Fatalf("reorder must not recommend a flush")
	}
	if result.CacheFlushHint != "" {
		t.Fatalf("hint must be empty without a flush: %q", result.CacheFlushHint)
	}
	if result.Profile.Version != 2 {
		t.Fatalf("version = %d, want 2", result.Profile.Version)
	}

	// Changing membership must.
	result, err = svc.ApplyUpdate(context.Background(), []string{"m2", "m3"}, "admin", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.CacheFlushRecommended {
		t.Fatalf("membership change must recommend a flush")
	}
	if result.CacheFlushHint == "" {
		t.Fatalf("flush recommendation must carry the hint")
	}
	if result.CacheScope != "global:v3" {
		t.Fatalf("cache scope = %q", result.CacheScope)
	}
}

func TestApplyUpdateNormalizesInput(t *testing.T) {
	store := &memStore{}
	reg := &stubRegistry{snapshot: catalog("", "m1", "m2")}
	svc := newService(store, reg, false)

	result, err := svc.ApplyUpdate(context.Background(), []string{" m1 ", "", "m2", "m1"}, "admin", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalSlices(result.Profile.ModelIDs, []string{"m1", "m2"}) {
		t.Fatalf("stored model IDs = %v", result.Profile.ModelIDs)
	}
	if result.Profile.Version != 1 {
		t.Fatalf("bootstrap version = %d, want 1", result.Profile.Version)
	}
}

func TestApplyUpdateVersionConflict(t *testing.T) {
	store := &memStore{prof: &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{"m1"}, Version: 5}}
	reg := &stubRegistry{snapshot: catalog("", "m1", "m2")}
	svc := newService(store, reg, false)

	stale := int64(4)
	_, err := svc.ApplyUpdate(context.Background(), []string{"m2"}, "admin", &stale)
	if !errors.Is(err, profile.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	stored, _ := store.Read(context.Background(), "global")
	if stored.Version != 5 {
		t.Fatalf("conflict must never increment the version; got %d", stored.Version)
	}
}

func TestApplyUpdateVersionMonotonicity(t *testing.T) {
	store := &memStore{prof: &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{}, Version: 3}}
	reg := &stubRegistry{snapshot: catalog("", "m1", "m2", "m3")}
	svc := newService(store, reg, false)

	for i, ids := range [][]string{{"m1"}, {"m1", "m2"}, {"m3"}} {
		result, err := svc.ApplyUpdate(context.Background(), ids, "admin", nil)
		if err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
		if result.Profile.Version != int64(4+i) {
			t.Fatalf("update %d: version = %d, want %d", i, result.Profile.Version, 4+i)
		}
	}
}

func TestApplyUpdateRegistryUnreachableFailsClosed(t *testing.T) {
	store := &memStore{prof: &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{"m1"}, Version: 1}}
	reg := &stubRegistry{err: errors.New("connection refused")}
	svc := newService(store, reg, false)

	if _, err := svc.ApplyUpdate(context.Background(), []string{"m2"}, "admin", nil); err == nil {
		t.Fatalf("unreachable registry must fail closed")
	}

	stored, _ := store.Read(context.Background(), "global")
	if stored.Version != 1 {
		t.Fatalf("failed update must not mutate state; version = %d", stored.Version)
	}
}

func TestApplyUpdateRelaxedValidationDegrades(t *testing.T) {
	store := &memStore{prof: &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{"m1"}, Version: 1}}
	reg := &stubRegistry{err: errors.New("connection refused")}
	svc := newService(store, reg, true)

	result, err := svc.ApplyUpdate(context.Background(), []string{"m2"}, "admin", nil)
	if err != nil {
		t.Fatalf("relaxed validation must accept the update: %v", err)
	}
	// With an empty degraded snapshot every configured ID reads as missing.
	if !equalSlices(result.MissingModelIDs, []string{"m2"}) {
		t.Fatalf("missing = %v", result.MissingModelIDs)
	}
	if len(result.EffectiveModelIDs) != 0 {
		t.Fatalf("effective = %v", result.EffectiveModelIDs)
	}
}

func TestApplyUpdateEmptyRegistrySkipsValidation(t *testing.T) {
	store := &memStore{}
	reg := &stubRegistry{snapshot: &registry.Snapshot{}}
	svc := newService(store, reg, false)

	result, err := svc.ApplyUpdate(context.Background(), []string{"anything"}, "admin", nil)
	if err != nil {
		t.Fatalf("empty registry must skip validation: %v", err)
	}
	if !equalSlices(result.Profile.ModelIDs, []string{"anything"}) {
		t.Fatalf("stored model IDs = %v", result.Profile.ModelIDs)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	svc := newService(&memStore{}, &stubRegistry{}, false)
	prof := &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{"m1", "m9"}, Version: 2}
	snapshot := catalog("m1", "m1", "m2")

	first := svc.Evaluate(prof, snapshot)
	second := svc.Evaluate(prof, snapshot)
	if !equalSlices(first.EffectiveModelIDs, second.EffectiveModelIDs) ||
		!equalSlices(first.MissingModelIDs, second.MissingModelIDs) ||
		!equalSlices(first.RecommendedModelIDs, second.RecommendedModelIDs) ||
		first.CacheScope != second.CacheScope {
		t.Fatalf("evaluate must be idempotent: %+v vs %+v", first, second)
	}
}

func TestGetForModelIDsKeepsProfileMetadata(t *testing.T) {
	store := &memStore{prof: &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{"m1", "m2"}, Version: 7}}
	reg := &stubRegistry{snapshot: catalog("", "m1", "m3")}
	svc := newService(store, reg, false)

	result, err := svc.GetForModelIDs(context.Background(), []string{"m3", "m4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalSlices(result.EffectiveModelIDs, []string{"m3"}) {
		t.Fatalf("effective = %v", result.EffectiveModelIDs)
	}
	if !equalSlices(result.MissingModelIDs, []string{"m4"}) {
		t.Fatalf("missing = %v", result.MissingModelIDs)
	}
	if !equalSlices(result.Profile.ModelIDs, []string{"m1", "m2"}) || result.Profile.Version != 7 {
		t.Fatalf("profile metadata must describe the stored profile: %+v", result.Profile)
	}
}

func TestNormalizeModelIDs(t *testing.T) {
	got := profile.NormalizeModelIDs([]string{"  a ", "b", "", "a", " "})
	if !equalSlices(got, []string{"a", "b"}) {
		t.Fatalf("normalized = %v", got)
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
