// Package scheduler runs the periodic reminder sweep.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const DefaultInterval = time.Minute

// SweepFunc performs one pass at now and returns the reminders it fired.
type SweepFunc func(ctx context.Context, now time.Time) ([]Reminder, error)

type Option func(*Engine)

func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine calls its sweep once on Start and then on every tick. Sweeps
// never overlap. Fired reminders are published on C without blocking;
// when the buffer is full they are counted as dropped.
type Engine struct {
	mu       sync.Mutex
	sweepMu  sync.Mutex
	sweep    SweepFunc
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger
	out      chan Reminder
	cancel   context.CancelFunc
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64
}

func NewEngine(sweep SweepFunc, bufferSize int, opts ...Option) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	e := &Engine{
		sweep:    sweep,
		interval: DefaultInterval,
		now:      time.Now,
		log:      zap.NewNop(),
		out:      make(chan Reminder, bufferSize),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) C() <-chan Reminder {
	return e.out
}

func (e *Engine) Interval() time.Duration {
	return e.interval
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go e.loop(ctx)
}

// Stop cancels any in-flight sweep and blocks until the loop has exited.
// C is closed afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	started := e.started
	if started {
		e.cancel()
	}
	e.mu.Unlock()
	if started {
		<-e.doneCh
		return
	}
	close(e.out)
}

// RunOnce performs a single sweep on the caller's goroutine without
// publishing to C.
func (e *Engine) RunOnce(ctx context.Context) ([]Reminder, error) {
	if e.sweep == nil {
		return nil, errors.New("scheduler: nil sweep")
	}
	e.sweepMu.Lock()
	defer e.sweepMu.Unlock()
	return e.sweep(ctx, e.now())
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop(ctx context.Context) {
	defer close(e.doneCh)
	defer close(e.out)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.tick(ctx)
	for {
		select {
		case <-ticker.C:
			e.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	fired, err := e.RunOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.log.Warn("reminder sweep failed", zap.Error(err))
	}
	if len(fired) > 0 {
		e.log.Info("reminder sweep", zap.Int("fired", len(fired)))
	}
	for _, r := range fired {
		select {
		case e.out <- r:
		default:
			atomic.AddUint64(&e.dropped, 1)
		}
	}
}
