package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherRegeneratesOnChange(t *testing.T) {
	dir := t.TempDir()
	kgPath := filepath.Join(dir, "kg.ttl")
	if err := os.WriteFile(kgPath, []byte("# empty\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var runs atomic.Int32
	done := make(chan struct{}, 1)
	w, err := NewWatcher(WatcherConfig{
		Paths:         []string{kgPath},
		DebounceDelay: 50 * time.Millisecond,
		Regenerate: func(ctx context.Context) error {
			runs.Add(1)
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// A burst of writes should collapse into one regeneration.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(kgPath, []byte("# change\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("regeneration never triggered")
	}

	// Give a trailing debounce window time to fire before asserting.
	time.Sleep(150 * time.Millisecond)
	if got := runs.Load(); got < 1 || got > 2 {
		t.Errorf("expected the write burst to debounce, got %d regenerations", got)
	}

	cancel()
	if err := <-errCh; err != context.Canceled {
		t.Errorf("Run returned %v", err)
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	kgPath := filepath.Join(dir, "kg.ttl")
	otherPath := filepath.Join(dir, "unrelated.txt")
	if err := os.WriteFile(kgPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	var runs atomic.Int32
	w, err := NewWatcher(WatcherConfig{
		Paths:         []string{kgPath},
		DebounceDelay: 20 * time.Millisecond,
		Regenerate: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	if err := os.WriteFile(otherPath, []byte("noise"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := runs.Load(); got != 0 {
		t.Errorf("unrelated file change triggered %d regenerations", got)
	}

	cancel()
	<-errCh
}
