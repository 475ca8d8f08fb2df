package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsNewImageFiles(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := Watch(ctx, root, nil)
	if err != nil {
		t.Skipf("Skipping test, fsnotify unavailable: %v", err)
	}

	// Give inotify registration a moment before creating files.
	time.Sleep(100 * time.Millisecond)

	imagePath := filepath.Join(root, "new.jpg")
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(imagePath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Paths():
		if got != imagePath {
			t.Errorf("watcher reported %q, want %q", got, imagePath)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}

	// Cancellation closes the path stream.
	cancel()
	select {
	case _, ok := <-w.Paths():
		if ok {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher shutdown")
	}
}
