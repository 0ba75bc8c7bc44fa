package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"monexel/internal/dashboard"
)

type fakeReloader struct {
	mu    sync.Mutex
	calls int
	errs  []error
}

func (f *fakeReloader) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) >= f.calls {
		return f.errs[f.calls-1]
	}
	return nil
}

func (f *fakeReloader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRunOnce(t *testing.T) {
	boom := errors.New("boom")
	r := &fakeReloader{errs: []error{nil, boom, dashboard.ErrSuperseded}}
	w := NewRefreshWorker(r, "@every 1h", nil)

	var results []error
	w.OnRun(func(err error) { results = append(results, err) })

	ctx := context.Background()
	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := w.RunOnce(ctx); !errors.Is(err, boom) {
		t.Fatalf("second run: expected boom, got %v", err)
	}
	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("superseded reload should not be an error, got %v", err)
	}

	if w.Runs() != 3 || len(results) != 3 {
		t.Fatalf("expected 3 runs, got %d (callbacks %d)", w.Runs(), len(results))
	}
}

func TestStart_RunsImmediatelyAndStops(t *testing.T) {
	r := &fakeReloader{}
	w := NewRefreshWorker(r, "@every 1h", nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.count() != 1 {
		t.Fatalf("expected an immediate reload, got %d", r.count())
	}
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail")
	}

	w.Stop()
	w.Stop()
}

func TestStart_Schedules(t *testing.T) {
	r := &fakeReloader{}
	w := NewRefreshWorker(r, "@every 1s", nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for r.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("scheduled reload did not run, calls=%d", r.count())
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestStart_InvalidSchedule(t *testing.T) {
	w := NewRefreshWorker(&fakeReloader{}, "every now and then", nil)
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("expected schedule error")
	}
	w.Stop()
}

func TestStop_WithoutStart(t *testing.T) {
	NewRefreshWorker(&fakeReloader{}, "@every 1m", nil).Stop()
}
