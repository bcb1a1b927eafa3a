package resilience

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fanOut starts n callers of key at once and waits for all of them.
func fanOut(g *SingleFlight, n int, key string, fn func() (any, error)) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i], _ = g.Do(key, fn)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestSingleFlight_TeamOverviewFetchedOncePerKey(t *testing.T) {
	var g SingleFlight
	var overviews, details atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		fanOut(&g, 12, "overview:8636", func() (any, error) {
			overviews.Add(1)
			<-release
			return "Inter", nil
		})
	}()
	go func() {
		defer wg.Done()
		fanOut(&g, 4, "detail:fotmob:4193490", func() (any, error) {
			details.Add(1)
			<-release
			return "derby", nil
		})
	}()
	for overviews.Load() == 0 || details.Load() == 0 {
		runtime.Gosched()
	}
	// let the remaining callers join the in-flight fetches
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := overviews.Load(); got != 1 {
		t.Fatalf("expected one overview fetch, got %d", got)
	}
	if got := details.Load(); got != 1 {
		t.Fatalf("expected the detail key to run on its own, got %d", got)
	}
}

func TestSingleFlight_BlockedErrorReachesEveryWaiter(t *testing.T) {
	var g SingleFlight
	blocked := errors.New("fotmob: blocked")

	errs := fanOut(&g, 6, "player:742546", func() (any, error) {
		return nil, blocked
	})
	for i, err := range errs {
		if !errors.Is(err, blocked) {
			t.Fatalf("caller %d: expected blocked error, got %v", i, err)
		}
	}
}

func TestSingleFlight_ForgetStartsFreshFetch(t *testing.T) {
	var g SingleFlight
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = g.Do("overview:8564", func() (any, error) {
			calls.Add(1)
			close(entered)
			<-release
			return "stale", nil
		})
	}()
	<-entered

	g.Forget("overview:8564")
	v, err, shared := g.Do("overview:8564", func() (any, error) {
		calls.Add(1)
		return "fresh", nil
	})
	close(release)
	<-done

	if err != nil || v != "fresh" || shared {
		t.Fatalf("expected an unshared fresh result, got %v shared=%v err=%v", v, shared, err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected two upstream calls after Forget, got %d", got)
	}
}
