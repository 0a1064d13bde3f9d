package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/domain/token"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/metrics"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver/responses"
)

// ProfileHandler exposes the default-token profile read and write endpoints.
type ProfileHandler struct {
	profiles *profile.Service
	tokens   *token.Service
	log      zerolog.Logger
}

func NewProfileHandler(profiles *profile.Service, tokens *token.Service, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		tokens:   tokens,
		log:      log.With().Str("component", "profile-handler").Logger(),
	}
}

// model_ids may be empty (clearing the profile) but must be present.
type updateProfileRequest struct {
	ModelIDs        []string `json:"model_ids"`
	ExpectedVersion *int64   `json:"expected_version,omitempty"`
}

// Get returns the reconciled profile view. An optional token_id narrows the
// effective set to what that token resolves to right now.
func (h *ProfileHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	if scope := c.Query("scope"); scope != "" && scope != h.profiles.Scope() {
		responses.HandleValidationError(c, "Unknown scope: "+scope)
		return
	}

	tokenID := c.Query("token_id")
	if tokenID == "" {
		result, err := h.profiles.Get(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("profile read failed")
			responses.HandleError(c, err, "Could not read the default-token profile.")
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	tok, err := h.tokens.Get(ctx, tokenID)
	if err != nil {
		responses.HandleError(c, err, "Could not read the token.")
		return
	}

	var result *profile.ReconciliationResult
	if tok.DefaultScoped() {
		result, err = h.profiles.Get(ctx)
	} else {
		result, err = h.profiles.GetForModelIDs(ctx, tok.EligibleModels)
	}
	if err != nil {
		h.log.Error().Err(err).Str("token_id", tokenID).Msg("profile read failed")
		responses.HandleError(c, err, "Could not read the default-token profile.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Update replaces the profile's model-ID list behind optimistic concurrency.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ModelIDs == nil {
		responses.HandleValidationError(c, "Request body must carry a model_ids array.")
		return
	}

	actor := c.GetHeader("X-Admin-Actor")
	if actor == "" {
		actor = "admin"
	}

	result, err := h.profiles.ApplyUpdate(c.Request.Context(), req.ModelIDs, actor, req.ExpectedVersion)
	if err != nil {
		metrics.ProfileUpdatesTotal.WithLabelValues(updateOutcome(err)).Inc()
		h.log.Warn().Err(err).Str("actor", actor).Msg("profile update rejected")
		responses.HandleError(c, err, "Could not update the default-token profile.")
		return
	}

	metrics.ProfileUpdatesTotal.WithLabelValues("success").Inc()
	metrics.ProfileVersion.Set(float64(result.Profile.Version))
	c.JSON(http.StatusOK, result)
}

func updateOutcome(err error) string {
	if errors.Is(err, profile.ErrVersionConflict) {
		return "conflict"
	}
	var invalid *profile.InvalidModelIDsError
	if errors.As(err, &invalid) {
		return "validation"
	}
	return "error"
}
