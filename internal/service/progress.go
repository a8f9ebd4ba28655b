package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StatusProgressor stands in for the parsing backend: on every tick it moves
// one document a single step through waiting_queue -> parsing -> parsed.
type StatusProgressor struct {
	svc      *DocumentService
	interval time.Duration
	logger   *zap.Logger
}

// NewStatusProgressor creates a progressor ticking every interval.
func NewStatusProgressor(svc *DocumentService, interval time.Duration, logger *zap.Logger) *StatusProgressor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusProgressor{svc: svc, interval: interval, logger: logger}
}

// Run blocks until ctx is done. A non-positive interval returns immediately.
func (p *StatusProgressor) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("status progressor started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("status progressor stopped")
			return nil
		case <-ticker.C:
			if _, err := p.svc.AdvanceNext(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("failed to advance document status", zap.Error(err))
			}
		}
	}
}
