// Package importer feeds new assets into the triage queue: the merger
// reconciles fetched asset lists against the queue, the scanner turns a
// folder tree into create-and-merge operations, and the watcher keeps
// doing that for files created later.
package importer

import (
	"context"

	"photosweep/internal/classify"
	"photosweep/internal/store"
	"photosweep/pkg/models"
)

// Merger appends previously-unseen assets to the queue. Dedup key is the
// asset's stable id; content-level dedup happened upstream when the asset
// was created. Must be called from the owner event loop.
type Merger struct {
	store *store.Store
	cache *classify.Cache
}

func NewMerger(s *store.Store, c *classify.Cache) *Merger {
	return &Merger{store: s, cache: c}
}

// MergeResult reports what a merge changed. Lookup is non-nil on the one
// transition that triggers classification from an import path: the queue
// going from empty to non-empty.
type MergeResult struct {
	Added  []models.Asset
	Lookup <-chan classify.Completion
}

// Merge appends incoming \ existing, preserving incoming's relative order.
// Merging the same list twice is a no-op the second time.
func (m *Merger) Merge(ctx context.Context, incoming []models.Asset) MergeResult {
	wasEmpty := m.store.Len() == 0

	var fresh []models.Asset
	seen := make(map[string]struct{}, len(incoming))
	for _, a := range incoming {
		if m.store.Contains(a.ID) {
			continue
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		fresh = append(fresh, a)
	}
	if len(fresh) == 0 {
		return MergeResult{}
	}
	m.store.Append(fresh)

	res := MergeResult{Added: fresh}
	if wasEmpty {
		if cur, ok := m.store.Current(); ok {
			res.Lookup = m.cache.Request(ctx, cur)
		}
	}
	return res
}
