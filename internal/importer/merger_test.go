package importer

import (
	"context"
	"testing"

	"photosweep/internal/classify"
	"photosweep/internal/store"
	"photosweep/pkg/models"
)

func assets(ids ...string) []models.Asset {
	out := make([]models.Asset, len(ids))
	for i, id := range ids {
		out[i] = models.Asset{ID: id}
	}
	return out
}

func ids(assets []models.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.ID
	}
	return out
}

func newMerger() (*Merger, *store.Store, *int) {
	s := store.New()
	calls := new(int)
	cache := classify.NewCache(classify.Func(func(ctx context.Context, a models.Asset) (classify.Result, error) {
		*calls++
		return classify.Result{Label: "photo", Confidence: 1}, nil
	}))
	return NewMerger(s, cache), s, calls
}

func TestMergeAppendsOnlyUnseen(t *testing.T) {
	m, s, _ := newMerger()
	ctx := context.Background()

	s.Load(assets("a", "b", "c"))
	res := m.Merge(ctx, assets("d", "a", "e"))

	got := ids(res.Added)
	if len(got) != 2 || got[0] != "d" || got[1] != "e" {
		t.Errorf("Added = %v, want [d e]", got)
	}
	queue := ids(s.Assets())
	want := []string{"a", "b", "c", "d", "e"}
	if len(queue) != len(want) {
		t.Fatalf("queue = %v, want %v", queue, want)
	}
	for i := range want {
		if queue[i] != want[i] {
			t.Errorf("queue[%d] = %q, want %q", i, queue[i], want[i])
		}
	}
	if res.Lookup != nil {
		t.Error("merge into non-empty queue triggered classification")
	}
}

func TestMergeIdempotent(t *testing.T) {
	m, s, _ := newMerger()
	ctx := context.Background()

	first := m.Merge(ctx, assets("a", "b"))
	if first.Lookup != nil {
		<-first.Lookup
	}
	second := m.Merge(ctx, assets("a", "b"))

	if len(second.Added) != 0 {
		t.Errorf("second merge added %v, want nothing", ids(second.Added))
	}
	if s.Len() != 2 {
		t.Errorf("queue length = %d, want 2", s.Len())
	}
}

func TestMergeClassifiesFirstAssetWhenQueueWasEmpty(t *testing.T) {
	m, s, calls := newMerger()
	ctx := context.Background()

	res := m.Merge(ctx, assets("a", "b", "c"))
	if res.Lookup == nil {
		t.Fatal("empty-to-non-empty merge did not request classification")
	}
	done := <-res.Lookup
	if done.AssetID != "a" {
		t.Errorf("classified %q, want the new current asset a", done.AssetID)
	}
	if *calls != 1 {
		t.Errorf("classifier invoked %d times, want exactly 1", *calls)
	}

	// Growing an already non-empty queue never classifies.
	res = m.Merge(ctx, assets("d"))
	if res.Lookup != nil {
		t.Error("append-to-non-empty merge requested classification")
	}
	if cur, _ := s.Current(); cur.ID != "a" {
		t.Errorf("cursor moved during merge, current = %q", cur.ID)
	}
}

func TestMergeDropsDuplicatesWithinIncoming(t *testing.T) {
	m, s, _ := newMerger()
	res := m.Merge(context.Background(), assets("a", "a", "b"))
	if res.Lookup != nil {
		<-res.Lookup
	}
	if s.Len() != 2 {
		t.Errorf("queue length = %d, want 2", s.Len())
	}
}
