package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"photosweep/internal/classify"
	"photosweep/internal/importer"
	"photosweep/internal/library"
	"photosweep/pkg/models"
)

// Message types for async operations
type (
	// AssetsLoadedMsg contains the initial catalog fetch.
	AssetsLoadedMsg struct {
		Assets []models.Asset
		Error  error
	}

	// ClassificationMsg delivers one classifier completion to the owner
	// loop, where it is committed through the cache's token guard.
	ClassificationMsg classify.Completion

	// AssetDeletedMsg reports the catalog-side deletion of a triaged asset.
	AssetDeletedMsg struct {
		ID    string
		Error error
	}

	// WatchFileMsg reports a file that appeared under the watched folder.
	WatchFileMsg struct {
		Path string
	}

	// WatchStoppedMsg indicates the folder watcher has shut down.
	WatchStoppedMsg struct{}

	// TickMsg is sent periodically for spinner animation
	TickMsg time.Time
)

// Commands for async operations

// loadAssetsCmd fetches the catalog contents asynchronously.
func loadAssetsCmd(ctx context.Context, catalog *library.Catalog) tea.Cmd {
	return func() tea.Msg {
		res := <-catalog.FetchAllAsync(ctx)
		return AssetsLoadedMsg{Assets: res.Assets, Error: res.Err}
	}
}

// awaitClassificationCmd waits for one classification completion.
func awaitClassificationCmd(done <-chan classify.Completion) tea.Cmd {
	return func() tea.Msg {
		return ClassificationMsg(<-done)
	}
}

// deleteAssetCmd removes a triaged asset from the catalog.
func deleteAssetCmd(ctx context.Context, catalog *library.Catalog, id string) tea.Cmd {
	return func() tea.Msg {
		return AssetDeletedMsg{ID: id, Error: catalog.Delete(ctx, []string{id})}
	}
}

// nextWatchFileCmd waits for the next file from the folder watcher.
func nextWatchFileCmd(w *importer.Watcher) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-w.Paths()
		if !ok {
			return WatchStoppedMsg{}
		}
		return WatchFileMsg{Path: path}
	}
}

// tickCmd creates a ticker for spinner animation
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
