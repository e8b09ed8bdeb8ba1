package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestEngineSweepsImmediatelyOnStart(t *testing.T) {
	var calls int64
	engine := NewEngine(func(context.Context, time.Time) ([]Reminder, error) {
		atomic.AddInt64(&calls, 1)
		return []Reminder{{TaskID: "t1"}}, nil
	}, 8, WithInterval(time.Hour))
	engine.Start()
	defer engine.Stop()

	ev := waitReminder(t, engine.C(), time.Second)
	if ev.TaskID != "t1" {
		t.Fatalf("unexpected reminder: %+v", ev)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected exactly one sweep before the first tick, got %d", got)
	}
}

func TestEngineSweepsOnEveryTick(t *testing.T) {
	var calls int64
	engine := NewEngine(func(context.Context, time.Time) ([]Reminder, error) {
		atomic.AddInt64(&calls, 1)
		return nil, nil
	}, 1, WithInterval(10*time.Millisecond))
	engine.Start()
	time.Sleep(80 * time.Millisecond)
	engine.Stop()

	if got := atomic.LoadInt64(&calls); got < 3 {
		t.Fatalf("expected several sweeps, got %d", got)
	}
}

func TestEngineContinuesAfterSweepError(t *testing.T) {
	var calls int64
	engine := NewEngine(func(context.Context, time.Time) ([]Reminder, error) {
		if atomic.AddInt64(&calls, 1) == 1 {
			return nil, errors.New("store unavailable")
		}
		return []Reminder{{TaskID: "after-error"}}, nil
	}, 4, WithInterval(10*time.Millisecond))
	engine.Start()
	defer engine.Stop()

	ev := waitReminder(t, engine.C(), time.Second)
	if ev.TaskID != "after-error" {
		t.Fatalf("unexpected reminder: %+v", ev)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(func(context.Context, time.Time) ([]Reminder, error) {
		out := make([]Reminder, 25)
		for i := range out {
			out[i] = Reminder{TaskID: "evt"}
		}
		return out, nil
	}, 1, WithInterval(time.Hour))
	engine.Start()
	defer engine.Stop()

	deadline := time.Now().Add(time.Second)
	for engine.Dropped() < 24 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if engine.Dropped() != 24 {
		t.Fatalf("expected 24 dropped reminders, got %d", engine.Dropped())
	}
}

func TestEngineStopCancelsInFlightSweep(t *testing.T) {
	entered := make(chan struct{})
	var cancelled int64
	engine := NewEngine(func(ctx context.Context, _ time.Time) ([]Reminder, error) {
		close(entered)
		<-ctx.Done()
		atomic.StoreInt64(&cancelled, 1)
		return nil, ctx.Err()
	}, 1, WithInterval(time.Hour))
	engine.Start()
	<-entered

	stopped := make(chan struct{})
	go func() {
		engine.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop did not return")
	}
	if atomic.LoadInt64(&cancelled) != 1 {
		t.Fatal("expected in-flight sweep to observe cancellation")
	}
	if _, ok := <-engine.C(); ok {
		t.Fatal("expected channel closed after stop")
	}
	engine.Stop()
}

func TestEngineRunOnceUsesClock(t *testing.T) {
	fixed := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	var seen time.Time
	engine := NewEngine(func(_ context.Context, now time.Time) ([]Reminder, error) {
		seen = now
		return nil, nil
	}, 1, WithClock(func() time.Time { return fixed }))
	if _, err := engine.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if !seen.Equal(fixed) {
		t.Fatalf("expected sweep at %s, got %s", fixed, seen)
	}
	if engine.Interval() != DefaultInterval {
		t.Fatalf("unexpected default interval %s", engine.Interval())
	}
	engine.Stop()
}

func waitReminder(t *testing.T, ch <-chan Reminder, timeout time.Duration) Reminder {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for reminder")
		return Reminder{}
	}
}
