package profile

import (
	"github.com/jsachs1300/wayfinder-api/internal/domain/registry"
)

// Ranker produces the recommended model-ID list from a registry snapshot.
// The ranking signal is a collaborator concern; implementations are
// injectable and may overlap with the currently effective set.
type Ranker interface {
	Rank(snapshot *registry.Snapshot) []string
}

// CatalogOrderRanker recommends up to Limit eligible models in registry
// order, surfacing the registry's declared default first when it is eligible.
type CatalogOrderRanker struct {
	Limit int
}

func NewCatalogOrderRanker(limit int) *CatalogOrderRanker {
	if limit <= 0 {
		limit = 5
	}
	return &CatalogOrderRanker{Limit: limit}
}

func (r *CatalogOrderRanker) Rank(snapshot *registry.Snapshot) []string {
	if snapshot == nil {
		return []string{}
	}

	ranked := make([]string, 0, r.Limit)
	seen := make(map[string]struct{}, r.Limit)

	push := func(id string) {
		if len(ranked) >= r.Limit {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ranked = append(ranked, id)
	}

	if snapshot.Default != "" {
		if _, ok := snapshot.AvailableIDs()[snapshot.Default]; ok {
			push(snapshot.Default)
		}
	}
	for _, m := range snapshot.Models {
		if len(ranked) >= r.Limit {
			break
		}
		if m.Eligible() {
			push(m.ID)
		}
	}
	return ranked
}
