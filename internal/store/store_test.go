package store

import (
	"errors"
	"testing"
	"time"

	"photosweep/pkg/models"
)

func makeAssets(ids ...string) []models.Asset {
	assets := make([]models.Asset, 0, len(ids))
	for i, id := range ids {
		assets = append(assets, models.Asset{
			ID:        id,
			CreatedAt: time.Unix(int64(1000-i), 0),
		})
	}
	return assets
}

func TestAdvanceCyclesBackToStart(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7} {
		s := New()
		ids := make([]string, n)
		for i := range ids {
			ids[i] = string(rune('a' + i))
		}
		s.Load(makeAssets(ids...))

		if err := s.Advance(); err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
		for i := 0; i < n; i++ {
			if err := s.Advance(); err != nil {
				t.Fatalf("Advance() error = %v", err)
			}
		}
		// One advance plus len more advances lands back where the first left off.
		want := 1 % n
		if s.CurrentIndex() != want {
			t.Errorf("cursor after %d advances = %d, want %d", n+1, s.CurrentIndex(), want)
		}
	}
}

func TestAdvanceEmptyQueue(t *testing.T) {
	s := New()
	if err := s.Advance(); !errors.Is(err, ErrEmptyQueue) {
		t.Errorf("Advance() on empty store error = %v, want ErrEmptyQueue", err)
	}
}

func TestRemoveClampsCursor(t *testing.T) {
	tests := []struct {
		name        string
		ids         []string
		advances    int
		removeAt    int
		wantCursor  int
		wantLen     int
		wantCurrent string
	}{
		{name: "remove head keeps cursor", ids: []string{"a", "b", "c"}, removeAt: 0, wantCursor: 0, wantLen: 2, wantCurrent: "b"},
		{name: "remove last clamps", ids: []string{"a", "b", "c"}, advances: 2, removeAt: 2, wantCursor: 1, wantLen: 2, wantCurrent: "b"},
		{name: "remove before cursor shifts content", ids: []string{"a", "b", "c"}, advances: 1, removeAt: 1, wantCursor: 1, wantLen: 2, wantCurrent: "c"},
		{name: "remove only asset empties", ids: []string{"a"}, removeAt: 0, wantCursor: 0, wantLen: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			s.Load(makeAssets(tc.ids...))
			for i := 0; i < tc.advances; i++ {
				if err := s.Advance(); err != nil {
					t.Fatalf("Advance() error = %v", err)
				}
			}
			if _, err := s.Remove(tc.removeAt); err != nil {
				t.Fatalf("Remove(%d) error = %v", tc.removeAt, err)
			}
			if s.Len() != tc.wantLen {
				t.Errorf("Len() = %d, want %d", s.Len(), tc.wantLen)
			}
			if s.CurrentIndex() != tc.wantCursor {
				t.Errorf("CurrentIndex() = %d, want %d", s.CurrentIndex(), tc.wantCursor)
			}
			if tc.wantLen > 0 {
				cur, ok := s.Current()
				if !ok {
					t.Fatal("Current() reported empty for non-empty store")
				}
				if cur.ID != tc.wantCurrent {
					t.Errorf("Current().ID = %q, want %q", cur.ID, tc.wantCurrent)
				}
			} else if _, ok := s.Current(); ok {
				t.Error("Current() reported an asset for empty store")
			}
		})
	}
}

func TestRemoveOutOfRange(t *testing.T) {
	s := New()
	s.Load(makeAssets("a", "b"))
	for _, i := range []int{-1, 2, 99} {
		if _, err := s.Remove(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Remove(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
	}
}

func TestLoadResetsCursorAndIndex(t *testing.T) {
	s := New()
	s.Load(makeAssets("a", "b", "c"))
	if err := s.Advance(); err != nil {
		t.Fatal(err)
	}
	s.Load(makeAssets("x", "y"))
	if s.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() after Load = %d, want 0", s.CurrentIndex())
	}
	if s.Contains("a") {
		t.Error("Contains(a) = true after replacing the queue")
	}
	if !s.Contains("y") {
		t.Error("Contains(y) = false for loaded asset")
	}
}

func TestAppendPreservesOrderAndIndex(t *testing.T) {
	s := New()
	s.Load(makeAssets("a"))
	s.Append(makeAssets("b", "c"))
	got := s.Assets()
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Assets()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
	if !s.Contains("c") {
		t.Error("Contains(c) = false after Append")
	}
}
