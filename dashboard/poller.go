package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultPollInterval is how often a polled view refreshes.
const DefaultPollInterval = 30 * time.Second

// Poller re-runs a view on a fixed interval. At most one cycle runs at a time;
// ticks and triggers that arrive while a cycle is in flight are skipped.
type Poller struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error

	inFlight atomic.Bool
	wg       sync.WaitGroup

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller for the named view. A non-positive interval
// uses DefaultPollInterval.
func NewPoller(name string, interval time.Duration, run func(ctx context.Context) error) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{name: name, interval: interval, run: run}
}

// Start runs a first cycle immediately and then one per interval until ctx
// is cancelled or Stop is called. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.done != nil {
		p.mu.Unlock()
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	pctx, done := p.ctx, p.done
	p.mu.Unlock()

	p.tryCycle(pctx, "start")
	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-pctx.Done():
				return
			case <-ticker.C:
				p.tryCycle(pctx, "tick")
			}
		}
	}()
}

// Trigger starts a cycle now unless one is already in flight.
// It reports whether a cycle was started. A stopped poller never starts one.
func (p *Poller) Trigger() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx == nil || p.ctx.Err() != nil {
		return false
	}
	return p.tryCycle(p.ctx, "manual")
}

// InFlight reports whether a cycle is currently running.
func (p *Poller) InFlight() bool {
	return p.inFlight.Load()
}

// Stop cancels the poller and waits for the in-flight cycle, if any, to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return
	}
	p.cancel()
	done := p.done
	p.mu.Unlock()

	<-done
	p.wg.Wait()
}

// tryCycle launches one cycle in the background if none is in flight.
func (p *Poller) tryCycle(ctx context.Context, reason string) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		slog.Debug("poll skipped, cycle in flight", slog.String("view", p.name), slog.String("reason", reason))
		return false
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)

		id := uuid.NewString()
		start := time.Now()
		slog.Debug("poll cycle started", slog.String("view", p.name), slog.String("cycle", id), slog.String("reason", reason))
		if err := p.run(ctx); err != nil {
			slog.Warn("poll cycle failed",
				slog.String("view", p.name),
				slog.String("cycle", id),
				slog.Any("error", err))
			return
		}
		slog.Debug("poll cycle finished",
			slog.String("view", p.name),
			slog.String("cycle", id),
			slog.Duration("took", time.Since(start)))
	}()
	return true
}
