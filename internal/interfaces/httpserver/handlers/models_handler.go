package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/domain/registry"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver/responses"
)

// ModelsHandler surfaces the live model registry to the admin console so
// operators can pick valid IDs when editing the profile.
type ModelsHandler struct {
	registry registry.Client
	log      zerolog.Logger
}

func NewModelsHandler(registryClient registry.Client, log zerolog.Logger) *ModelsHandler {
	return &ModelsHandler{
		registry: registryClient,
		log:      log.With().Str("component", "models-handler").Logger(),
	}
}

type modelsResponse struct {
	Models  []registry.ModelRecord `json:"models"`
	Count   int                    `json:"count"`
	Default string                 `json:"default,omitempty"`
}

// List proxies the registry's current catalog.
func (h *ModelsHandler) List(c *gin.Context) {
	snapshot, err := h.registry.Snapshot(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("registry snapshot failed")
		responses.HandleError(c, err, "Model registry is unreachable.")
		return
	}

	models := snapshot.Models
	if models == nil {
		models = []registry.ModelRecord{}
	}
	c.JSON(http.StatusOK, modelsResponse{
		Models:  models,
		Count:   len(models),
		Default: snapshot.Default,
	})
}
