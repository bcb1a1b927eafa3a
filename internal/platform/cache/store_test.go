package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "detail", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "detail:primary:19135002", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "detail" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("upstream 503")
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err == nil {
		t.Fatalf("expected first load to fail")
	}
	v, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if v != "ok" {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestStore_PerEntryTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour).WithClock(func() time.Time { return now })

	store.Set(context.Background(), "team:8564", "overview")
	store.SetWithTTL(context.Background(), "live:team:8564", "live-overview", 30*time.Second)

	now = now.Add(time.Minute)
	if _, ok := store.Get(context.Background(), "live:team:8564"); ok {
		t.Fatalf("expected live entry to expire after its short ttl")
	}
	if _, ok := store.Get(context.Background(), "team:8564"); !ok {
		t.Fatalf("expected general entry to survive")
	}
}

func TestStore_SnapshotRestoreDropsStaleEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	src := NewStore(time.Hour).WithClock(func() time.Time { return now })
	src.Set(context.Background(), "a", 1)
	src.SetWithTTL(context.Background(), "b", 2, time.Minute)

	snapshot := src.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 snapshot entries, got %d", len(snapshot))
	}

	later := now.Add(10 * time.Minute)
	dst := NewStore(time.Hour).WithClock(func() time.Time { return later })
	if restored := dst.Restore(snapshot); restored != 1 {
		t.Fatalf("expected 1 restored entry, got %d", restored)
	}
	if _, ok := dst.Get(context.Background(), "a"); !ok {
		t.Fatalf("expected entry a after restore")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
