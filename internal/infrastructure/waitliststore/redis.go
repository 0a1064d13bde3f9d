package waitliststore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsachs1300/wayfinder-api/internal/domain/waitlist"
	"github.com/jsachs1300/wayfinder-api/internal/utils/platformerrors"
)

const (
	allKey       = "signup:all"
	byDayPattern = "signup:by_day:%s"
)

// Store implements waitlist.Store on Redis: one hash per email plus
// membership sets for the full list and per-day cohorts.
type Store struct {
	rdb *redis.Client
}

var _ waitlist.Store = (*Store)(nil)

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Find(ctx context.Context, email string) (*waitlist.Signup, error) {
	fields, err := s.rdb.HGetAll(ctx, emailKey(email)).Result()
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeExternal, "failed to read waitlist entry", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	signup := &waitlist.Signup{
		ID:       fields["id"],
		Email:    email,
		Company:  fields["company"],
		Role:     fields["role"],
		Source:   fields["source"],
		Referrer: fields["referrer"],
		UTM: waitlist.UTMParams{
			Source:   fields["utm_source"],
			Medium:   fields["utm_medium"],
			Campaign: fields["utm_campaign"],
			Term:     fields["utm_term"],
			Content:  fields["utm_content"],
		},
	}
	if createdAt, err := time.Parse(time.RFC3339, fields["created_at"]); err == nil {
		signup.CreatedAt = createdAt
	}
	return signup, nil
}

func (s *Store) Save(ctx context.Context, signup *waitlist.Signup) error {
	fields := map[string]any{
		"id":         signup.ID,
		"email":      signup.Email,
		"source":     signup.Source,
		"created_at": signup.CreatedAt.Format(time.RFC3339),
	}
	setOptional := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	setOptional("company", signup.Company)
	setOptional("role", signup.Role)
	setOptional("referrer", signup.Referrer)
	setOptional("utm_source", signup.UTM.Source)
	setOptional("utm_medium", signup.UTM.Medium)
	setOptional("utm_campaign", signup.UTM.Campaign)
	setOptional("utm_term", signup.UTM.Term)
	setOptional("utm_content", signup.UTM.Content)

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, emailKey(signup.Email), fields)
	pipe.SAdd(ctx, allKey, signup.Email)
	pipe.SAdd(ctx, fmt.Sprintf(byDayPattern, signup.CreatedAt.Format("2006-01-02")), signup.Email)
	if _, err := pipe.Exec(ctx); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeExternal, "failed to save waitlist entry", err)
	}
	return nil
}

func emailKey(email string) string {
	return "signup:email:" + email
}
