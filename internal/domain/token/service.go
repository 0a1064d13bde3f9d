package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/domain/registry"
)

// Service orchestrates token lifecycle operations.
type Service struct {
	repo      Repository
	profiles  *profile.Service
	registry  registry.Client
	keyPrefix string
	log       zerolog.Logger
}

// Config configures the Service.
type Config struct {
	KeyPrefix string
}

func NewService(repo Repository, profiles *profile.Service, registryClient registry.Client, cfg Config, log zerolog.Logger) *Service {
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = "wf"
	}
	return &Service{
		repo:      repo,
		profiles:  profiles,
		registry:  registryClient,
		keyPrefix: prefix,
		log:       log.With().Str("component", "token-service").Logger(),
	}
}

// Create generates a new token and persists its metadata. Eligible models are
// immutable after creation; an empty list makes the token default-scoped.
// Explicit model IDs are validated against the live registry all-or-nothing.
func (s *Service) Create(ctx context.Context, name string, eligibleModels []string, environment, actor string) (*Token, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTokenName
	}

	eligibleModels = profile.NormalizeModelIDs(eligibleModels)
	if len(eligibleModels) > 0 {
		snapshot, err := s.registry.Snapshot(ctx)
		if err != nil {
			return nil, "", err
		}
		if err := profile.ValidateModelIDs(snapshot, eligibleModels); err != nil {
			return nil, "", err
		}
	}

	secret, err := s.generateSecret()
	if err != nil {
		return nil, "", err
	}

	record := &Token{
		ID:             uuid.NewString(),
		Name:           name,
		Prefix:         s.keyPrefix,
		Suffix:         displaySuffix(secret),
		Hash:           hashSecret(secret),
		EligibleModels: eligibleModels,
		Environment:    environment,
		CreatedBy:      actor,
	}

	persisted, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("token_id", persisted.ID).Str("actor", actor).Msg("token created")
	return persisted, secret, nil
}

// List returns all tokens with default-scoped eligibility resolved against
// the current profile, so operators see what each token can actually reach.
func (s *Service) List(ctx context.Context) ([]Token, error) {
	tokens, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var effective []string
	for i := range tokens {
		if !tokens[i].DefaultScoped() {
			continue
		}
		if effective == nil {
			effective, err = s.profiles.EffectiveModelIDs(ctx)
			if err != nil {
				s.log.Warn().Err(err).Msg("could not resolve default-token eligibility for listing")
				break
			}
		}
		tokens[i].EligibleModels = effective
	}
	return tokens, nil
}

// Get returns a single token by ID, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Token, error) {
	tok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrNotFound
	}
	return tok, nil
}

// Rotate replaces the token's secret, keeping the record and its eligibility.
func (s *Service) Rotate(ctx context.Context, id string) (string, error) {
	tok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if tok == nil {
		return "", ErrNotFound
	}

	secret, err := s.generateSecret()
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateSecret(ctx, tok.ID, hashSecret(secret), displaySuffix(secret)); err != nil {
		return "", err
	}

	s.log.Info().Str("token_id", tok.ID).Msg("token rotated")
	return secret, nil
}

// Delete removes the token permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	tok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if tok == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, tok.ID); err != nil {
		return err
	}
	s.log.Info().Str("token_id", tok.ID).Msg("token deleted")
	return nil
}

// ResolveEligibility returns the model IDs the token may use right now.
// Default-scoped tokens resolve from the current profile and registry on
// every call; the result must not be cached beyond the cache-scope mechanism.
func (s *Service) ResolveEligibility(ctx context.Context, tok *Token) ([]string, error) {
	if tok == nil {
		return nil, ErrNotFound
	}
	if !tok.DefaultScoped() {
		return tok.EligibleModels, nil
	}
	return s.profiles.EffectiveModelIDs(ctx)
}

func (s *Service) generateSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return fmt.Sprintf("%s_%s", s.keyPrefix, hex.EncodeToString(buf)), nil
}

func displaySuffix(secret string) string {
	if len(secret) < 4 {
		return ""
	}
	return secret[len(secret)-4:]
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
