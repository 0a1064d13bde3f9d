package registry

import "context"

// StatusDisabled marks a model that must never be treated as eligible even
// when the registry reports it as available.
const StatusDisabled = "disabled"

// ModelRecord is one entry in the live model registry.
type ModelRecord struct {
	ID        string `json:"id"`
	Provider  string `json:"provider,omitempty"`
	Status    string `json:"status,omitempty"`
	Available bool   `json:"available"`
}

// Eligible reports whether the model may be routed to right now.
func (m ModelRecord) Eligible() bool {
	return m.Available && m.Status != StatusDisabled
}

// Snapshot is a point-in-time view of the registry. It is fetched fresh per
// request and never cached by this service.
type Snapshot struct {
	Models  []ModelRecord
	Default string
}

// AvailableIDs returns the set of currently eligible model IDs.
func (s *Snapshot) AvailableIDs() map[string]struct{} {
	if s == nil {
		return map[string]struct{}{}
	}
	available := make(map[string]struct{}, len(s.Models))
	for _, m := range s.Models {
		if m.Eligible() {
			available[m.ID] = struct{}{}
		}
	}
	return available
}

// Empty reports whether the snapshot carries no models at all.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Models) == 0
}

// Client provides read-only access to the live model registry collaborator.
type Client interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}
