package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"photosweep/internal/classify"
	"photosweep/internal/config"
	"photosweep/pkg/models"
)

func testModel(t *testing.T) model {
	t.Helper()
	classifier := classify.Func(func(ctx context.Context, a models.Asset) (classify.Result, error) {
		return classify.Result{Label: "photo", Confidence: 0.9}, nil
	})
	return initialModel(context.Background(), nil, config.Default(), classifier, nil)
}

func update(m model, msg tea.Msg) model {
	next, _ := m.Update(msg)
	return next.(model)
}

// TestModelInitialization tests the initial model setup
func TestModelInitialization(t *testing.T) {
	m := testModel(t)
	if !m.loading {
		t.Error("model should start in loading state")
	}
	if m.store.Len() != 0 {
		t.Error("queue should start empty")
	}
	if m.engine.Offset() != 0 {
		t.Error("drag offset should start at zero")
	}
}

// TestAssetsLoadedPopulatesQueue tests the initial fetch message
func TestAssetsLoadedPopulatesQueue(t *testing.T) {
	m := testModel(t)
	m = update(m, AssetsLoadedMsg{Assets: []models.Asset{
		{ID: "a", Path: "/p/a.jpg"},
		{ID: "b", Path: "/p/b.jpg"},
	}})

	if m.loading {
		t.Error("loading should end after assets arrive")
	}
	if m.store.Len() != 2 {
		t.Errorf("queue length = %d, want 2", m.store.Len())
	}
	if m.exhausted {
		t.Error("exhausted should be false for a non-empty queue")
	}
	// The first asset's classification was requested.
	if e, ok := m.cache.Peek("a"); !ok || e.State != classify.StatePending {
		t.Errorf("cache entry for current asset = %+v, %v; want pending", e, ok)
	}
}

// TestAssetsLoadedEmptyQueue tests the empty-state flag
func TestAssetsLoadedEmptyQueue(t *testing.T) {
	m := testModel(t)
	m = update(m, AssetsLoadedMsg{})
	if !m.exhausted {
		t.Error("exhausted should be true for an empty fetch")
	}
}

// TestClassificationCommitsOnOwnerLoop tests the completion path
func TestClassificationCommitsOnOwnerLoop(t *testing.T) {
	m := testModel(t)
	m = update(m, AssetsLoadedMsg{Assets: []models.Asset{{ID: "a", Path: "/p/a.jpg"}}})

	e, _ := m.cache.Peek("a")
	if e.State != classify.StatePending {
		t.Fatalf("entry state = %v, want pending", e.State)
	}

	// Deliver the completion the way the event loop would.
	done := classify.Completion{AssetID: "a", Token: 1, Label: "photo", Confidence: 0.9}
	m = update(m, ClassificationMsg(done))

	e, _ = m.cache.Peek("a")
	if e.State != classify.StateResolved || e.Label != "photo" {
		t.Errorf("entry after commit = %+v, want resolved photo", e)
	}
}

// TestDragKeysAccumulateOffset tests gesture capture
func TestDragKeysAccumulateOffset(t *testing.T) {
	m := testModel(t)
	m = update(m, AssetsLoadedMsg{Assets: []models.Asset{{ID: "a"}, {ID: "b"}}})

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	if m.engine.Offset() != -80 {
		t.Errorf("offset after two left presses = %v, want -80", m.engine.Offset())
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if m.engine.Offset() != -40 {
		t.Errorf("offset after one right press = %v, want -40", m.engine.Offset())
	}

	// esc ends the gesture at zero: a cancel.
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.engine.Offset() != 0 {
		t.Errorf("offset after esc = %v, want 0", m.engine.Offset())
	}
	if m.store.Len() != 2 || m.store.CurrentIndex() != 0 {
		t.Error("cancel mutated the queue")
	}
}

// TestAdvanceKeyMovesCursor tests the skip shortcut
func TestAdvanceKeyMovesCursor(t *testing.T) {
	m := testModel(t)
	m = update(m, AssetsLoadedMsg{Assets: []models.Asset{{ID: "a"}, {ID: "b"}}})

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if m.store.CurrentIndex() != 1 {
		t.Errorf("cursor = %d after skip, want 1", m.store.CurrentIndex())
	}
	if e, ok := m.cache.Peek("b"); !ok || e.State != classify.StatePending {
		t.Errorf("next asset entry = %+v, %v; want pending lookup", e, ok)
	}
}

// TestViewRendersWithoutCatalog is a smoke test for the loading screen
func TestViewRendersWithoutCatalog(t *testing.T) {
	m := testModel(t)
	if got := m.View(); got == "" {
		t.Error("View() returned empty string before ready")
	}
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if got := m.View(); got == "" {
		t.Error("View() returned empty string while loading")
	}
}
