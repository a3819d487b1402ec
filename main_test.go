package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReloaderPollReturnsAfterWatcherCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sim:\n  dt: 0.016\n"), 0644); err != nil {
		t.Fatal(err)
	}
	rel, err := newReloader(path, "")
	if err != nil {
		t.Fatalf("creating reloader: %v", err)
	}
	rel.Close()

	// Wait for the watcher goroutine to close its channels
	deadline := time.After(2 * time.Second)
	for closed := false; !closed; {
		select {
		case _, ok := <-rel.watcher.Errors:
			closed = !ok
		case <-deadline:
			t.Fatal("watcher channels were not closed")
		}
	}

	done := make(chan struct{})
	go func() {
		rel.Poll(nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Poll did not return on closed watcher channels")
	}
}
