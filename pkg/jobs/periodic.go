package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one run of a periodic job.
type Task func(context.Context) error

// PeriodicConfig configures a periodic runner.
type PeriodicConfig struct {
	Interval time.Duration
	Logger   *zap.Logger
}

// Periodic runs a task on a fixed interval in a single goroutine.
type Periodic struct {
	name     string
	task     Task
	interval time.Duration
	logger   *zap.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewPeriodic builds a runner for task. Intervals below one second are
// raised to one second.
func NewPeriodic(name string, task Task, cfg PeriodicConfig) *Periodic {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Periodic{name: name, task: task, interval: cfg.Interval, logger: cfg.Logger}
}

// Start launches the runner. Safe to call once.
func (p *Periodic) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.started = true
	p.wg.Add(1)
	go p.loop(runCtx)
	p.logger.Sugar().Infow("periodic job started", "job", p.name, "interval", p.interval)
}

// Stop cancels the runner and waits for an in-progress run to finish.
func (p *Periodic) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.started = false
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Sugar().Infow("periodic job stopped", "job", p.name)
}

// RunOnce executes the task immediately in the caller's goroutine.
func (p *Periodic) RunOnce(ctx context.Context) {
	if err := p.task(ctx); err != nil {
		p.logger.Sugar().Warnw("periodic job failed", "job", p.name, "error", err)
	}
}

func (p *Periodic) loop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}
