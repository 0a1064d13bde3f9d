package token_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/domain/registry"
	"github.com/jsachs1300/wayfinder-api/internal/domain/token"
)

type memTokenRepo struct {
	tokens map[string]token.Token
	order  []string
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: map[string]token.Token{}}
}

func (r *memTokenRepo) Create(ctx context.Context, tok *token.Token) (*token.Token, error) {
	stored := *tok
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.tokens[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	cp := stored
	return &cp, nil
}

func (r *memTokenRepo) List(ctx context.Context) ([]token.Token, error) {
	out := make([]token.Token, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tokens[id])
	}
	return out, nil
}

func (r *memTokenRepo) FindByID(ctx context.Context, id string) (*token.Token, error) {
	tok, ok := r.tokens[id]
	if !ok {
		return nil, nil
	}
	cp := tok
	return &cp, nil
}

func (r *memTokenRepo) UpdateSecret(ctx context.Context, id, hash, suffix string) error {
	tok, ok := r.tokens[id]
	if !ok {
		return token.ErrNotFound
	}
	tok.Hash = hash
	tok.Suffix = suffix
	tok.UpdatedAt = time.Now().UTC()
	r.tokens[id] = tok
	return nil
}

func (r *memTokenRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.tokens[id]; !ok {
		return token.ErrNotFound
	}
	delete(r.tokens, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type stubProfileStore struct {
	prof *profile.DefaultTokenProfile
}

func (s *stubProfileStore) Read(ctx context.Context, scope string) (*profile.DefaultTokenProfile, error) {
	if s.prof == nil {
		return nil, profile.ErrNotInitialized
	}
	cp := *s.prof
	return &cp, nil
}

func (s *stubProfileStore) CompareAndSwap(ctx context.Context, scope string, expectedVersion int64, modelIDs []string, actor string) (*profile.DefaultTokenProfile, error) {
	return nil, profile.ErrVersionConflict
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

func catalog(ids ...string) *registry.Snapshot {
	models := make([]registry.ModelRecord, 0, len(ids))
	for _, id := range ids {
		models = append(models, registry.ModelRecord{ID: id, Available: true})
	}
	return &registry.Snapshot{Models: models}
}

func newServices(repo token.Repository, prof *profile.DefaultTokenProfile, reg registry.Client) (*token.Service, *profile.Service) {
	profiles := profile.NewService(&stubProfileStore{prof: prof}, reg, profile.NewCatalogOrderRanker(5), profile.Config{Scope: "global"}, zerolog.Nop())
	tokens := token.NewService(repo, profiles, reg, token.Config{KeyPrefix: "wf"}, zerolog.Nop())
	return tokens, profiles
}

func TestCreateGeneratesPrefixedSecret(t *testing.T) {
	repo := newMemTokenRepo()
	svc, _ := newServices(repo, nil, &stubRegistry{snapshot: catalog("m1")})

	tok, secret, err := svc.Create(context.Background(), "", nil, "production", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(secret, "wf_") {
		t.Fatalf("secret %q must carry the wf_ prefix", secret)
	}
	if tok.Name != token.DefaultTokenName {
		t.Fatalf("name = %q, want %q", tok.Name, token.DefaultTokenName)
	}
	if !tok.DefaultScoped() {
		t.Fatalf("token without explicit models must be default scoped")
	}
	if tok.Hash == "" || tok.Hash == secret {
		t.Fatalf("secret must be stored hashed")
	}
	if tok.Suffix != secret[len(secret)-4:] {
		t.Fatalf("suffix = %q", tok.Suffix)
	}
}

func TestCreateValidatesExplicitModels(t *testing.T) {
	repo := newMemTokenRepo()
	svc, _ := newServices(repo, nil, &stubRegistry{snapshot: catalog("m1", "m2")})

	_, _, err := svc.Create(context.Background(), "scoped", []string{"m1", "ghost"}, "", "admin")
	var invalid *profile.InvalidModelIDsError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidModelIDsError, got %v", err)
	}
	if len(repo.tokens) != 0 {
		t.Fatalf("rejected create must not persist anything")
	}
}

func TestListResolvesDefaultScopedEligibility(t *testing.T) {
	repo := newMemTokenRepo()
	prof := &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{"m1", "gone"}, Version: 3}
	svc, _ := newServices(repo, prof, &stubRegistry{snapshot: catalog("m1", "m2")})

	if _, _, err := svc.Create(context.Background(), "default", nil, "", "admin"); err != nil {
		t.Fatalf("create default token: %v", err)
	}
	if _, _, err := svc.Create(context.Background(), "pinned", []string{"m2"}, "", "admin"); err != nil {
		t.Fatalf("create pinned token: %v", err)
	}

	tokens, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	// Default scoped tokens report the profile's current effective set.
	if len(tokens[0].EligibleModels) != 1 || tokens[0].EligibleModels[0] != "m1" {
		t.Fatalf("default token eligibility = %v", tokens[0].EligibleModels)
	}
	if len(tokens[1].EligibleModels) != 1 || tokens[1].EligibleModels[0] != "m2" {
		t.Fatalf("pinned token eligibility = %v", tokens[1].EligibleModels)
	}
}

func TestResolveEligibilityFollowsProfileChanges(t *testing.T) {
	repo := newMemTokenRepo()
	reg := &stubRegistry{snapshot: catalog("m1", "m2")}
	prof := &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{"m1"}, Version: 1}
	store := &stubProfileStore{prof: prof}
	profiles := profile.NewService(store, reg, profile.NewCatalogOrderRanker(5), profile.Config{Scope: "global"}, zerolog.Nop())
	svc := token.NewService(repo, profiles, reg, token.Config{KeyPrefix: "wf"}, zerolog.Nop())

	tok, _, err := svc.Create(context.Background(), "default", nil, "", "admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ids, err := svc.ResolveEligibility(context.Background(), tok)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 1 || ids[0] != "m1" {
		t.Fatalf("eligibility = %v", ids)
	}

	// A profile change is visible on the next resolution without any restart.
	store.prof = &profile.DefaultTokenProfile{Scope: "global", ModelIDs: []string{"m2"}, Version: 2}
	ids, err = svc.ResolveEligibility(context.Background(), tok)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 1 || ids[0] != "m2" {
		t.Fatalf("eligibility after profile change = %v", ids)
	}
}

func TestRotateKeepsRecord(t *testing.T) {
	repo := newMemTokenRepo()
	svc, _ := newServices(repo, nil, &stubRegistry{snapshot: catalog("m1")})

	tok, secret, err := svc.Create(context.Background(), "rotate-me", []string{"m1"}, "", "admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rotated, err := svc.Rotate(context.Background(), tok.ID)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotated == secret {
		t.Fatalf("rotation must issue a new secret")
	}

	after, err := svc.Get(context.Background(), tok.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Hash == tok.Hash {
		t.Fatalf("stored hash must change on rotation")
	}
	if len(after.EligibleModels) != 1 || after.EligibleModels[0] != "m1" {
		t.Fatalf("eligibility must survive rotation: %v", after.EligibleModels)
	}
}

func TestRotateUnknownToken(t *testing.T) {
	svc, _ := newServices(newMemTokenRepo(), nil, &stubRegistry{snapshot: catalog("m1")})
	if _, err := svc.Rotate(context.Background(), "missing"); !errors.Is(err, token.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesToken(t *testing.T) {
	repo := newMemTokenRepo()
	svc, _ := newServices(repo, nil, &stubRegistry{snapshot: catalog("m1")})

	tok, _, err := svc.Create(context.Background(), "doomed", nil, "", "admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), tok.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), tok.ID); !errors.Is(err, token.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
