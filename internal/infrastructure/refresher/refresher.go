package refresher

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Source is reloaded on every tick.
type Source interface {
	Refresh(ctx context.Context) error
}

// Refresher periodically pulls the latest persisted ledger into memory so
// reads on this process see writes made by other processes sharing the
// repository.
type Refresher struct {
	source   Source
	logger   zerolog.Logger
	interval time.Duration
	timeout  time.Duration
}

// Config for Refresher.
type Config struct {
	Source   Source
	Logger   *zerolog.Logger
	Interval time.Duration // Polling interval
	Timeout  time.Duration // Per refresh
}

// New creates a new Refresher.
func New(cfg Config) *Refresher {
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "refresher").Logger()
	}

	return &Refresher{
		source:   cfg.Source,
		logger:   logger,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
	}
}

// Start runs until ctx is cancelled. A failed refresh is logged and the
// previous state stays in place until the next tick.
func (r *Refresher) Start(ctx context.Context) error {
	r.logger.Info().Dur("interval", r.interval).Msg("ledger refresher started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("ledger refresher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := r.refresh(ctx); err != nil {
				r.logger.Error().Err(err).Msg("ledger refresh failed")
			}
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	if err := r.source.Refresh(ctx); err != nil {
		return err
	}
	r.logger.Debug().Dur("took", time.Since(start)).Msg("ledger refreshed")
	return nil
}
