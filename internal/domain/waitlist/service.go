package waitlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SubscribeRequest is the normalized signup input.
type SubscribeRequest struct {
	Email    string
	Company  string
	Role     string
	Source   string
	Referrer string
	UTM      UTMParams
}

// Service performs the idempotent waitlist upsert.
type Service struct {
	store Store
	log   zerolog.Logger
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "waitlist-service").Logger(),
	}
}

// Subscribe records a signup once per email. Repeat submissions return the
// existing entry with created=false; nothing is overwritten.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (*Signup, bool, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.store.Find(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "landing"
	}

	signup := &Signup{
		ID:        "signup_" + uuid.NewString(),
		Email:     email,
		Company:   strings.TrimSpace(req.Company),
		Role:      strings.TrimSpace(req.Role),
		Source:    source,
		Referrer:  strings.TrimSpace(req.Referrer),
		UTM:       req.UTM,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(ctx, signup); err != nil {
		return nil, false, err
	}

	s.log.Info().Str("signup_id", signup.ID).Msg("waitlist signup recorded")
	return signup, true, nil
}
