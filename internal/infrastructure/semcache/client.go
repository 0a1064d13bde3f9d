package semcache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/metrics"
	"github.com/jsachs1300/wayfinder-api/internal/utils/platformerrors"
)

const (
	keyPrefix = "semcache"
	statsKey  = "semcache:stats"
)

// Stats reports semantic cache utilization counters maintained by the
// routing engine in the shared Redis keyspace.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Stores  int64   `json:"stores"`
	HitRate float64 `json:"hit_rate"`
}

// Client is the invalidation-side view of the semantic cache. This service
// never reads or writes cached routing decisions; it only clears them and
// surfaces counters.
type Client struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewClient(rdb *redis.Client, log zerolog.Logger) *Client {
	return &Client{
		rdb: rdb,
		log: log.With().Str("component", "semcache-client").Logger(),
	}
}

// Ping verifies the Redis connection for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// GetStats reads the cache counter hash.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	fields, err := c.rdb.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "failed to read cache stats", err)
	}

	stats := &Stats{}
	fmt.Sscanf(fields["hits"], "%d", &stats.Hits)
	fmt.Sscanf(fields["misses"], "%d", &stats.Misses)
	fmt.Sscanf(fields["stores"], "%d", &stats.Stores)
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats, nil
}

// ClearGlobal drops every cached routing decision across all profile
// versions of the given scope.
func (c *Client) ClearGlobal(ctx context.Context, scope string) (int64, error) {
	deleted, err := c.clearPattern(ctx, fmt.Sprintf("%s:%s:*", keyPrefix, scope))
	if err != nil {
		return 0, err
	}
	metrics.CacheClearsTotal.WithLabelValues("global").Inc()
	c.log.Info().Str("scope", scope).Int64("deleted", deleted).Msg("cleared global cache")
	return deleted, nil
}

// ClearToken drops cached decisions for a single token.
func (c *Client) ClearToken(ctx context.Context, tokenID string) (int64, error) {
	deleted, err := c.clearPattern(ctx, fmt.Sprintf("%s:token:%s:*", keyPrefix, tokenID))
	if err != nil {
		return 0, err
	}
	metrics.CacheClearsTotal.WithLabelValues("token").Inc()
	c.log.Info().Str("token_id", tokenID).Int64("deleted", deleted).Msg("cleared token cache")
	return deleted, nil
}

// clearPattern deletes keys incrementally via SCAN. FLUSHDB is never used;
// the keyspace is shared with the waitlist store.
func (c *Client) clearPattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	iter := c.rdb.Scan(ctx, 0, pattern, 200).Iterator()
	batch := make([]string, 0, 200)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.rdb.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += n
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 200 {
			if err := flush(); err != nil {
				return deleted, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "failed to delete cache keys", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "failed to scan cache keys", err)
	}
	if err := flush(); err != nil {
		return deleted, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "failed to delete cache keys", err)
	}
	return deleted, nil
}
