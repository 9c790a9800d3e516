package service

import (
	"context"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, salt, err := hashPassword("s3cret-till")
	require.NoError(t, err)
	assert.NotContains(t, hash, "s3cret")

	ok, err := verifyPassword("s3cret-till", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("wrong", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = verifyPassword("s3cret-till", "%%%", hash)
	assert.Error(t, err)
}

func TestPasswordSaltsDiffer(t *testing.T) {
	h1, s1, err := hashPassword("same")
	require.NoError(t, err)
	h2, s2, err := hashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2)
}

func TestLoginIsThrottledPerOperator(t *testing.T) {
	svc := NewOperatorService(nil, nil, 2)
	ctx := context.Background()
	eventID := uuid.New()

	// Rejected by validation (no password), but each attempt still spends a token.
	till := model.LoginRequest{Name: "till-1", EventID: eventID}
	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, till)
		assert.True(t, IsValidation(err))
	}
	_, err := svc.Login(ctx, till)
	assert.ErrorIs(t, err, ErrRateLimited)

	// Same name with surrounding spaces is the same account.
	_, err = svc.Login(ctx, model.LoginRequest{Name: " till-1 ", EventID: eventID})
	assert.ErrorIs(t, err, ErrRateLimited)

	// Other operators, and the same name at another event, are unaffected.
	_, err = svc.Login(ctx, model.LoginRequest{Name: "bar-2", EventID: eventID})
	assert.True(t, IsValidation(err))
	_, err = svc.Login(ctx, model.LoginRequest{Name: "till-1", EventID: uuid.New()})
	assert.True(t, IsValidation(err))
}

func TestLoginLimiterPrunesIdleBuckets(t *testing.T) {
	l := newLoginLimiter(5)
	for i := 0; i < maxLoginBuckets; i++ {
		l.buckets[loginKey{eventID: uuid.New()}] = rate.NewLimiter(l.every, l.burst)
	}
	busy := loginKey{eventID: uuid.New(), name: "busy"}
	busyLim := rate.NewLimiter(l.every, l.burst)
	busyLim.AllowN(time.Now(), l.burst)
	l.buckets[busy] = busyLim

	require.True(t, l.allow(loginKey{eventID: uuid.New(), name: "new"}))
	assert.Len(t, l.buckets, 2)
	assert.False(t, l.allow(busy))
}

func TestCreateOperatorValidation(t *testing.T) {
	svc := NewOperatorService(nil, nil, 10)
	for name, req := range map[string]model.CreateOperatorRequest{
		"no name":     {Password: "x", Role: "bar"},
		"no role":     {Name: "till", Password: "x"},
		"no password": {Name: "till", Role: "bar"},
		"no event":    {Name: "till", Password: "x", Role: "bar"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateOperator(context.Background(), req)
			assert.True(t, IsValidation(err))
		})
	}
}
