package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CouponScheduler drives the periodic expiry sweep and retention cleanup.
type CouponScheduler struct {
	manager      *CouponManager
	sweepEvery   time.Duration
	cleanupEvery time.Duration
	log          *zap.SugaredLogger
}

// NewCouponScheduler constructs a CouponScheduler.
func NewCouponScheduler(manager *CouponManager, sweepEvery, cleanupEvery time.Duration, log *zap.SugaredLogger) *CouponScheduler {
	return &CouponScheduler{
		manager:      manager,
		sweepEvery:   sweepEvery,
		cleanupEvery: cleanupEvery,
		log:          log,
	}
}

// Run blocks until ctx is cancelled. Both jobs run once at startup.
func (s *CouponScheduler) Run(ctx context.Context) {
	s.sweep(ctx)
	s.cleanup(ctx)

	sweepTicker := time.NewTicker(s.sweepEvery)
	defer sweepTicker.Stop()
	cleanupTicker := time.NewTicker(s.cleanupEvery)
	defer cleanupTicker.Stop()

	s.log.Infow("coupon scheduler started", "sweep_every", s.sweepEvery, "cleanup_every", s.cleanupEvery)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("coupon scheduler stopped")
			return
		case <-sweepTicker.C:
			s.sweep(ctx)
		case <-cleanupTicker.C:
			s.cleanup(ctx)
		}
	}
}

func (s *CouponScheduler) sweep(ctx context.Context) {
	jobCtx, cancel := context.WithTimeout(ctx, s.sweepEvery)
	defer cancel()
	if _, err := s.manager.Sweep(jobCtx); err != nil {
		s.log.Errorw("coupon sweep failed", "error", err)
	}
}

func (s *CouponScheduler) cleanup(ctx context.Context) {
	jobCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	if _, err := s.manager.Cleanup(jobCtx); err != nil {
		s.log.Errorw("coupon cleanup failed", "error", err)
	}
}
