package posts

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherBroadcastsReloadOnMetaWrite(t *testing.T) {
	root := t.TempDir()
	watcher := NewWatcher(root, WithWatchDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer watcher.Stop()

	events, _ := watcher.Subscribe(ctx)
	writeFile(t, filepath.Join(root, MetaFileName), "[]")

	select {
	case evt := <-events:
		if evt.Type != ChangeReloaded {
			t.Fatalf("expected reload event, got %#v", evt)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload event")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	root := t.TempDir()
	watcher := NewWatcher(root)
	if watcher.relevant(fsEvent(filepath.Join(root, "notes.txt"))) {
		t.Fatal("expected unrelated file to be ignored")
	}
	if !watcher.relevant(fsEvent(filepath.Join(root, PostsDirName, "hello.md"))) {
		t.Fatal("expected markdown body to be relevant")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	watcher := NewWatcher(t.TempDir())
	if err := watcher.Stop(); err != nil {
		t.Fatalf("Stop before Start: %v", err)
	}
}
