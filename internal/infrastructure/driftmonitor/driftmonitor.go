package driftmonitor

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/config"
	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/metrics"
)

const jobTimeout = 2 * time.Minute

// Monitor periodically reconciles the stored profile against the live
// registry and exports drift as metrics. It never mutates the profile and
// never caches the registry snapshot for request serving.
type Monitor struct {
	ctab     *crontab.Crontab
	profiles *profile.Service
	cfg      *config.Config
	log      zerolog.Logger
}

func New(profiles *profile.Service, cfg *config.Config, log zerolog.Logger) *Monitor {
	return &Monitor{
		ctab:     crontab.New(),
		profiles: profiles,
		cfg:      cfg,
		log:      log.With().Str("component", "drift-monitor").Logger(),
	}
}

// Run executes one check at startup, then on the configured schedule until
// the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.cfg.DriftCheckEnabled {
		m.log.Info().Msg("drift monitor disabled")
		<-ctx.Done()
		return nil
	}

	m.check(ctx)

	if err := m.ctab.AddJob(cronExpr(m.cfg.DriftCheckIntervalMinutes), func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		m.check(jobCtx)
	}); err != nil {
		return fmt.Errorf("schedule drift check: %w", err)
	}
	m.log.Info().Int("interval_minutes", m.cfg.DriftCheckIntervalMinutes).Msg("drift monitor scheduled")

	<-ctx.Done()
	m.ctab.Shutdown()
	return nil
}

func (m *Monitor) check(ctx context.Context) {
	result, err := m.profiles.Get(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("drift check failed")
		return
	}

	metrics.ProfileVersion.Set(float64(result.Profile.Version))
	metrics.ProfileMissingModels.Set(float64(len(result.MissingModelIDs)))

	if len(result.MissingModelIDs) > 0 {
		m.log.Warn().
			Strs("missing_model_ids", result.MissingModelIDs).
			Int64("version", result.Profile.Version).
			Msg("configured model IDs missing from live registry")
	}
}

func cronExpr(intervalMinutes int) string {
	if intervalMinutes >= 60 {
		return "0 * * * *"
	}
	return fmt.Sprintf("*/%d * * * *", intervalMinutes)
}
