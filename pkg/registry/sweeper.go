package registry

import (
	"context"
	"log/slog"
	"time"
)

type Sweeper struct {
	Store    Store
	Valid    func(token string) bool
	Interval time.Duration
	Log      *slog.Logger
}

// Run sweeps on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	l := s.Log
	if l == nil {
		l = slog.Default()
	}
	l = l.With("component", "refresh_sweeper")

	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := s.Store.Sweep(ctx, s.Valid)
			if err != nil && ctx.Err() == nil {
				l.Error("sweep failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("sweep completed", "removed", n)
			}
		}
	}
}
