package token

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the token does not exist.
var ErrNotFound = errors.New("token not found")

// DefaultTokenName marks the token whose eligibility is resolved from the
// default-token profile at use time rather than snapshotted at creation.
const DefaultTokenName = "Default Token"

// Token represents persistent metadata for an API token. The secret itself
// is shown exactly once at creation or rotation.
type Token struct {
	ID             string
	Name           string
	Prefix         string
	Suffix         string
	Hash           string
	EligibleModels []string
	Environment    string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DefaultScoped reports whether the token resolves its eligible models from
// the default-token profile on every use.
func (t *Token) DefaultScoped() bool {
	return len(t.EligibleModels) == 0
}

// Repository defines storage operations for tokens.
type Repository interface {
	Create(ctx context.Context, tok *Token) (*Token, error)
	List(ctx context.Context) ([]Token, error)
	FindByID(ctx context.Context, id string) (*Token, error)
	UpdateSecret(ctx context.Context, id, hash, suffix string) error
	Delete(ctx context.Context, id string) error
}
