package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noor-Islam16/Coupon-Backend/internal/utils"
)

func TestSessionGuardResolve(t *testing.T) {
	f := newAuthFixture(t)
	guard := NewSessionGuard(f.svc)
	ctx := context.Background()
	res := f.signup(t, "alice@example.com", "+15550001")

	identity, err := guard.Resolve(ctx, "Bearer "+res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, identity.ID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.False(t, identity.Verified)
	assert.Equal(t, KindNotVerified, KindOf(guard.RequireVerified(identity)))

	for _, header := range []string{"", "Bearer", "Bearer ", "Token " + res.Token, res.Token} {
		_, err := guard.Resolve(ctx, header)
		assert.Equal(t, KindUnauthorized, KindOf(err), header)
	}
}

func TestSessionGuardRejectsExpiredAndForeignTokens(t *testing.T) {
	f := newAuthFixture(t)
	guard := NewSessionGuard(f.svc)
	ctx := context.Background()
	res := f.signup(t, "alice@example.com", "+15550001")

	expired, err := utils.GenerateToken(testSecret, res.User.ID, res.User.Email, -time.Minute)
	require.NoError(t, err)
	foreign, err := utils.GenerateToken("other-secret", res.User.ID, res.User.Email, time.Hour)
	require.NoError(t, err)

	_, expiredErr := guard.Resolve(ctx, "Bearer "+expired)
	_, foreignErr := guard.Resolve(ctx, "Bearer "+foreign)
	assert.Equal(t, KindUnauthorized, KindOf(expiredErr))
	assert.Equal(t, expiredErr.Error(), foreignErr.Error())
}

func TestSessionGuardVanishedUser(t *testing.T) {
	f := newAuthFixture(t)
	guard := NewSessionGuard(f.svc)

	token, err := utils.GenerateToken(testSecret, uuid.New(), "ghost@example.com", time.Hour)
	require.NoError(t, err)

	_, err = guard.Resolve(context.Background(), "Bearer "+token)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken(""))
}
