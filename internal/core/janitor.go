package core

// janitor.go evicts idle sessions in the background.
//
// Sessions live only in memory, so without a sweep every visitor would hold
// a dataset until the process exits. The janitor runs until its context is
// cancelled and only logs when something was removed.

import (
	"context"
	"log/slog"
	"time"
)

// JanitorConfig controls the session sweep.
type JanitorConfig struct {
	TTL      time.Duration // Idle time after which a session is dropped (default: 30m)
	Interval time.Duration // How often to sweep (default: 1m)
}

func (c JanitorConfig) withDefaults() JanitorConfig {
	if c.TTL <= 0 {
		c.TTL = 30 * time.Minute
	}
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	return c
}

// StartJanitor sweeps idle sessions every Interval until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (s *Service) StartJanitor(ctx context.Context, cfg JanitorConfig) {
	cfg = cfg.withDefaults()

	slog.Info("session janitor started",
		"ttl", cfg.TTL.String(),
		"interval", cfg.Interval.String(),
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			s.runSweep(cfg.TTL)
		}
	}
}

func (s *Service) runSweep(ttl time.Duration) {
	start := time.Now()
	removed := s.sessions.Sweep(ttl)
	if removed == 0 {
		return
	}
	slog.Info("swept idle sessions",
		"sessions_removed", removed,
		"sessions_remaining", s.sessions.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
