package waitlist_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/domain/waitlist"
)

type memWaitlistStore struct {
	entries map[string]*waitlist.Signup
}

func newMemWaitlistStore() *memWaitlistStore {
	return &memWaitlistStore{entries: map[string]*waitlist.Signup{}}
}

func (s *memWaitlistStore) Find(ctx context.Context, email string) (*waitlist.Signup, error) {
	return s.entries[email], nil
}

func (s *memWaitlistStore) Save(ctx context.Context, signup *waitlist.Signup) error {
	cp := *signup
	s.entries[signup.Email] = &cp
	return nil
}

func TestSubscribeNormalizesEmail(t *testing.T) {
	store := newMemWaitlistStore()
	svc := waitlist.NewService(store, zerolog.Nop())

	signup, created, err := svc.Subscribe(context.Background(), waitlist.SubscribeRequest{Email: "  Ada@Example.COM "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("first signup must be created")
	}
	if signup.Email != "ada@example.com" {
		t.Fatalf("email = %q", signup.Email)
	}
	if !strings.HasPrefix(signup.ID, "signup_") {
		t.Fatalf("id = %q", signup.ID)
	}
}

func TestSubscribeIsIdempotentPerEmail(t *testing.T) {
	store := newMemWaitlistStore()
	svc := waitlist.NewService(store, zerolog.Nop())

	first, created, err := svc.Subscribe(context.Background(), waitlist.SubscribeRequest{Email: "dev@example.com", Company: "Acme"})
	if err != nil || !created {
		t.Fatalf("first signup: created=%v err=%v", created, err)
	}

	second, created, err := svc.Subscribe(context.Background(), waitlist.SubscribeRequest{Email: "DEV@example.com"})
	if err != nil {
		t.Fatalf("repeat signup: %v", err)
	}
	if created {
		t.Fatalf("repeat signup must not create a new entry")
	}
	if second.ID != first.ID {
		t.Fatalf("repeat signup must return the original entry: %q vs %q", second.ID, first.ID)
	}
	if len(store.entries) != 1 {
		t.Fatalf("store must hold exactly one entry, got %d", len(store.entries))
	}
}
