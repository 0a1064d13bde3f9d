package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/domain/token"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver/responses"
)

// TokenHandler exposes the admin token lifecycle endpoints.
type TokenHandler struct {
	tokens *token.Service
	log    zerolog.Logger
}

func NewTokenHandler(tokens *token.Service, log zerolog.Logger) *TokenHandler {
	return &TokenHandler{
		tokens: tokens,
		log:    log.With().Str("component", "token-handler").Logger(),
	}
}

type createTokenRequest struct {
	Name           string   `json:"name"`
	EligibleModels []string `json:"eligible_models"`
	Environment    string   `json:"environment"`
}

type tokenRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Suffix         string    `json:"suffix,omitempty"`
	EligibleModels []string  `json:"eligible_models"`
	Environment    string    `json:"environment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type listTokensResponse struct {
	Tokens []tokenRecord `json:"tokens"`
	Count  int           `json:"count"`
}

type createTokenResponse struct {
	ID     string      `json:"id"`
	Token  string      `json:"token"`
	Config tokenConfig `json:"config"`
}

type tokenConfig struct {
	EligibleModels []string `json:"eligible_models"`
}

// List returns all tokens. Default-scoped tokens report the eligibility they
// resolve to under the current profile.
func (h *TokenHandler) List(c *gin.Context) {
	tokens, err := h.tokens.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("token list failed")
		responses.HandleError(c, err, "Could not list tokens.")
		return
	}

	records := make([]tokenRecord, 0, len(tokens))
	for _, tok := range tokens {
		records = append(records, toTokenRecord(tok))
	}
	c.JSON(http.StatusOK, listTokensResponse{Tokens: records, Count: len(records)})
}

// Create mints a new token. The secret appears in this response and never again.
func (h *TokenHandler) Create(c *gin.Context) {
	var req createTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "Invalid token request body.")
		return
	}

	actor := c.GetHeader("X-Admin-Actor")
	if actor == "" {
		actor = "admin"
	}

	tok, secret, err := h.tokens.Create(c.Request.Context(), req.Name, req.EligibleModels, req.Environment, actor)
	if err != nil {
		h.log.Warn().Err(err).Msg("token create rejected")
		responses.HandleError(c, err, "Could not create the token.")
		return
	}

	c.JSON(http.StatusCreated, createTokenResponse{
		ID:     tok.ID,
		Token:  secret,
		Config: tokenConfig{EligibleModels: eligibleOrEmpty(tok.EligibleModels)},
	})
}

// Rotate replaces the token's secret in place.
func (h *TokenHandler) Rotate(c *gin.Context) {
	secret, err := h.tokens.Rotate(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "Could not rotate the token.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": secret})
}

// Delete removes the token permanently.
func (h *TokenHandler) Delete(c *gin.Context) {
	if err := h.tokens.Delete(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "Could not delete the token.")
		return
	}
	c.Status(http.StatusNoContent)
}

func toTokenRecord(tok token.Token) tokenRecord {
	return tokenRecord{
		ID:             tok.ID,
		Name:           tok.Name,
		Suffix:         tok.Suffix,
		EligibleModels: eligibleOrEmpty(tok.EligibleModels),
		Environment:    tok.Environment,
		CreatedAt:      tok.CreatedAt,
		UpdatedAt:      tok.UpdatedAt,
	}
}

func eligibleOrEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
