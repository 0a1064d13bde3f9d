package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotInitialized indicates the profile row has never been bootstrapped.
// Callers treat this as an empty profile at version 0.
var ErrNotInitialized = errors.New("default-token profile not initialized")

// ErrVersionConflict indicates a concurrent writer updated the profile
// between the caller's read and write. Callers must reload and retry.
var ErrVersionConflict = errors.New("default-token profile version conflict")

// InvalidModelIDsError names every submitted model ID that the live registry
// does not currently offer. Validation is all-or-nothing.
type InvalidModelIDsError struct {
	IDs []string
}

func (e *InvalidModelIDsError) Error() string {
	return fmt.Sprintf("Unknown model IDs: %s", strings.Join(e.IDs, ", "))
}

// DefaultTokenProfile is the versioned, system-wide default model-ID list.
// There is exactly one live profile per deployment.
type DefaultTokenProfile struct {
	Scope     string    `json:"-"`
	ModelIDs  []string  `json:"model_ids"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
}

// ReconciliationResult is the computed, non-persisted view returned on every
// read and after every write.
type ReconciliationResult struct {
	Profile               DefaultTokenProfile `json:"profile"`
	EffectiveModelIDs     []string            `json:"effective_model_ids"`
	MissingModelIDs       []string            `json:"missing_model_ids"`
	RecommendedModelIDs   []string            `json:"recommended_model_ids"`
	CacheScope            string              `json:"cache_scope"`
	CacheFlushRecommended bool                `json:"cache_flush_recommended"`
	CacheFlushHint        string              `json:"cache_flush_hint"`
}

// Store provides durable, versioned storage of exactly one profile per scope.
type Store interface {
	// Read returns the current profile, or ErrNotInitialized if the scope has
	// never been bootstrapped.
	Read(ctx context.Context, scope string) (*DefaultTokenProfile, error)
	// CompareAndSwap atomically persists a new model-ID list only if the
	// stored version still equals expectedVersion, incrementing the version by
	// exactly one. Returns ErrVersionConflict when another writer got there
	// first. The guarantee must hold across service instances.
	CompareAndSwap(ctx context.Context, scope string, expectedVersion int64, modelIDs []string, actor string) (*DefaultTokenProfile, error)
}
