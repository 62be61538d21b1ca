package request

import (
	"context"
	"fmt"
	"time"

	"bloodlink/internal/logger"

	"go.uber.org/zap"
)

// StartExpirySweeper runs SweepExpired every interval until ctx is done.
func (s *Service) StartExpirySweeper(ctx context.Context, interval, retention time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Request expiry sweeper started",
		zap.Duration("interval", interval),
		zap.Duration("retention", retention),
	)

	s.sweep(ctx, retention)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Request expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx, retention)
		}
	}
}

// SweepExpired marks active requests past expiry as expired, then removes
// requests whose expiry is older than retention.
func (s *Service) SweepExpired(ctx context.Context, retention time.Duration) (expired, purged int64, err error) {
	now := s.now()

	expired, err = s.requests.MarkExpired(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to mark expired requests: %w", err)
	}

	purged, err = s.requests.PurgeExpired(ctx, now.Add(-retention))
	if err != nil {
		return expired, 0, fmt.Errorf("failed to purge expired requests: %w", err)
	}

	s.metrics.AddSweep(expired, purged)
	return expired, purged, nil
}

func (s *Service) sweep(ctx context.Context, retention time.Duration) {
	expired, purged, err := s.SweepExpired(ctx, retention)
	if err != nil {
		logger.Error("Request expiry sweep failed", zap.Error(err))
		return
	}

	if expired > 0 || purged > 0 {
		logger.Info("Expired blood requests swept",
			zap.Int64("expired", expired),
			zap.Int64("purged", purged),
			zap.String("event", "blood_requests_swept"),
		)
		return
	}
	logger.Debug("Request expiry sweep found nothing to do")
}
