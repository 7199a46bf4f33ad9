package application

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	DefaultPollInterval = time.Minute
	DefaultCycleTimeout = 30 * time.Second
)

// Poller runs a sync cycle at startup and then on every tick until its context is cancelled.
type Poller struct {
	cycles   cycleRunner
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewPoller(cycles cycleRunner, interval, timeout time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultCycleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{cycles: cycles, interval: interval, timeout: timeout, logger: logger}
}

func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("poller started", "interval", p.interval.String())

	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// RunCycle logs its own failures.
	if _, err := p.cycles.RunCycle(cycleCtx); errors.Is(err, ErrCycleInProgress) {
		p.logger.Warn("previous sync cycle still running, skipping tick")
	}
}
