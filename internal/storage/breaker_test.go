package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
)

type flakyStore struct {
	calls int
	err   error
}

func (s *flakyStore) Upload(context.Context, services.ImageUpload) (*services.Asset, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &services.Asset{URL: "https://cdn.test/x", ID: "x"}, nil
}

func (s *flakyStore) Delete(context.Context, string) error {
	s.calls++
	return s.err
}

func TestBreakerPassesThrough(t *testing.T) {
	inner := &flakyStore{}
	store := WithBreaker(inner, "test", time.Minute, zap.NewNop().Sugar())

	asset, err := store.Upload(context.Background(), services.ImageUpload{})
	require.NoError(t, err)
	assert.Equal(t, "x", asset.ID)
	assert.NoError(t, store.Delete(context.Background(), "x"))
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	inner := &flakyStore{err: errors.New("provider down")}
	store := WithBreaker(inner, "test", time.Minute, zap.NewNop().Sugar())

	for i := 0; i < 5; i++ {
		assert.Error(t, store.Delete(context.Background(), "x"))
	}
	err := store.Delete(context.Background(), "x")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, inner.calls)
}
