package registryclient

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/jsachs1300/wayfinder-api/internal/config"
	"github.com/jsachs1300/wayfinder-api/internal/domain/registry"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/metrics"
	"github.com/jsachs1300/wayfinder-api/internal/utils/platformerrors"
)

// Client fetches model registry snapshots from the upstream catalog service.
type Client struct {
	http    *resty.Client
	baseURL string
	log     zerolog.Logger
}

var _ registry.Client = (*Client)(nil)

type modelsResponse struct {
	Models  []wireModel `json:"models"`
	Count   int         `json:"count"`
	Default string      `json:"default"`
}

// wireModel tolerates registries that omit the availability flag; absence
// means available.
type wireModel struct {
	ID        string `json:"id"`
	Provider  string `json:"provider"`
	Status    string `json:"status"`
	Available *bool  `json:"available"`
}

func New(cfg *config.Config, log zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.RegistryBaseURL).
		SetTimeout(cfg.RegistryTimeout)
	if cfg.RegistryAPIKey != "" {
		httpClient.SetHeader("X-Admin-Api-Key", cfg.RegistryAPIKey)
	}
	return &Client{
		http:    httpClient,
		baseURL: cfg.RegistryBaseURL,
		log:     log.With().Str("component", "registry-client").Logger(),
	}
}

// Snapshot fetches a fresh registry view. No caching: staleness is bounded by
// the registry collaborator's own freshness, not by this service.
func (c *Client) Snapshot(ctx context.Context) (*registry.Snapshot, error) {
	var body modelsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/admin/models")
	if err != nil {
		metrics.RegistryRequestsTotal.WithLabelValues("error").Inc()
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "model registry unreachable", err)
	}
	if resp.IsError() {
		metrics.RegistryRequestsTotal.WithLabelValues("error").Inc()
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("model registry returned status %d", resp.StatusCode()), nil)
	}
	metrics.RegistryRequestsTotal.WithLabelValues("ok").Inc()

	models := make([]registry.ModelRecord, 0, len(body.Models))
	for _, m := range body.Models {
		if m.ID == "" {
			continue
		}
		available := true
		if m.Available != nil {
			available = *m.Available
		}
		models = append(models, registry.ModelRecord{
			ID:        m.ID,
			Provider:  m.Provider,
			Status:    m.Status,
			Available: available,
		})
	}

	return &registry.Snapshot{Models: models, Default: body.Default}, nil
}
