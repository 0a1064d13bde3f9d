package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/domain/token"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/semcache"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver/responses"
)

// CacheHandler exposes semantic cache observability and the manual flush that
// operators run after reviewing a cache_flush_hint.
type CacheHandler struct {
	cache  *semcache.Client
	tokens *token.Service
	log    zerolog.Logger
}

func NewCacheHandler(cache *semcache.Client, tokens *token.Service, log zerolog.Logger) *CacheHandler {
	return &CacheHandler{
		cache:  cache,
		tokens: tokens,
		log:    log.With().Str("component", "cache-handler").Logger(),
	}
}

type clearCacheRequest struct {
	TokenID string `json:"token_id"`
}

// Stats returns the shared cache counters.
func (h *CacheHandler) Stats(c *gin.Context) {
	stats, err := h.cache.GetStats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("cache stats failed")
		responses.HandleError(c, err, "Could not read cache stats.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Clear drops cached routing decisions, globally or for one token.
func (h *CacheHandler) Clear(c *gin.Context) {
	var req clearCacheRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleValidationError(c, "Invalid cache clear request body.")
			return
		}
	}

	ctx := c.Request.Context()

	if req.TokenID != "" {
		if _, err := h.tokens.Get(ctx, req.TokenID); err != nil {
			responses.HandleError(c, err, "Could not clear the token cache.")
			return
		}
		removed, err := h.cache.ClearToken(ctx, req.TokenID)
		if err != nil {
			h.log.Error().Err(err).Str("token_id", req.TokenID).Msg("token cache clear failed")
			responses.HandleError(c, err, "Could not clear the token cache.")
			return
		}
		c.JSON(http.StatusOK, gin.H{"cleared": removed, "scope": "token:" + req.TokenID})
		return
	}

	removed, err := h.cache.ClearGlobal(ctx, "global")
	if err != nil {
		h.log.Error().Err(err).Msg("global cache clear failed")
		responses.HandleError(c, err, "Could not clear the global cache.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": removed, "scope": "global"})
}
