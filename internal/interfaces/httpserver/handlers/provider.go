package handlers

import (
	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/config"
	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/domain/registry"
	"github.com/jsachs1300/wayfinder-api/internal/domain/token"
	"github.com/jsachs1300/wayfinder-api/internal/domain/waitlist"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/semcache"
)

// Provider wires HTTP handlers.
type Provider struct {
	Profile  *ProfileHandler
	Token    *TokenHandler
	Models   *ModelsHandler
	Cache    *CacheHandler
	Waitlist *WaitlistHandler
}

func NewProvider(
	cfg *config.Config,
	profiles *profile.Service,
	tokens *token.Service,
	registryClient registry.Client,
	cache *semcache.Client,
	signups *waitlist.Service,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Profile:  NewProfileHandler(profiles, tokens, log),
		Token:    NewTokenHandler(tokens, log),
		Models:   NewModelsHandler(registryClient, log),
		Cache:    NewCacheHandler(cache, tokens, log),
		Waitlist: NewWaitlistHandler(signups, log),
	}
}
