package storage

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
)

// BreakerStore guards an AssetStore with a circuit breaker so that a failing
// provider is not hammered by every request and cleanup pass.
type BreakerStore struct {
	next services.AssetStore
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps store. The breaker opens after five consecutive
// failures and probes again after timeout.
func WithBreaker(store services.AssetStore, name string, timeout time.Duration, log *zap.SugaredLogger) *BreakerStore {
	return &BreakerStore{
		next: store,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warnw("asset store breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (s *BreakerStore) Upload(ctx context.Context, image services.ImageUpload) (*services.Asset, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.Upload(ctx, image)
	})
	if err != nil {
		return nil, err
	}
	return res.(*services.Asset), nil
}

func (s *BreakerStore) Delete(ctx context.Context, assetID string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Delete(ctx, assetID)
	})
	return err
}
