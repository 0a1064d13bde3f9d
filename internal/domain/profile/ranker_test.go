package profile_test

import (
	"testing"

	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/domain/registry"
)

func TestCatalogOrderRankerDefaultFirst(t *testing.T) {
	ranker := profile.NewCatalogOrderRanker(3)
	snapshot := &registry.Snapshot{
		Default: "m3",
		Models: []registry.ModelRecord{
			{ID: "m1", Available: true},
			{ID: "m2", Available: true},
			{ID: "m3", Available: true},
			{ID: "m4", Available: true},
		},
	}

	got := ranker.Rank(snapshot)
	want := []string{"m3", "m1", "m2"}
	if !equalSlices(got, want) {
		t.Fatalf("ranked = %v, want %v", got, want)
	}
}

func TestCatalogOrderRankerSkipsIneligible(t *testing.T) {
	ranker := profile.NewCatalogOrderRanker(5)
	snapshot := &registry.Snapshot{
		Default: "down",
		Models: []registry.ModelRecord{
			{ID: "down", Available: false},
			{ID: "off", Available: true, Status: "disabled"},
			{ID: "up", Available: true},
		},
	}

	got := ranker.Rank(snapshot)
	if !equalSlices(got, []string{"up"}) {
		t.Fatalf("ranked = %v", got)
	}
}

func TestCatalogOrderRankerNilSnapshot(t *testing.T) {
	ranker := profile.NewCatalogOrderRanker(5)
	if got := ranker.Rank(nil); len(got) != 0 {
		t.Fatalf("ranked = %v, want empty", got)
	}
}
