package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, now *time.Time) (*WindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := NewWindowLimiter(&WindowLimiterConfig{
		Redis:             client,
		RequestsPerSecond: 0.05,
		Burst:             1,
		WindowSize:        time.Minute,
		Now:               func() time.Time { return *now },
	})
	require.NoError(t, err)
	return l, mr
}

func TestWindowLimiterConfig_Validate(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	tests := []struct {
		name    string
		cfg     WindowLimiterConfig
		wantErr bool
	}{
		{name: "valid", cfg: WindowLimiterConfig{Redis: client, RequestsPerSecond: 1}},
		{name: "missing redis", cfg: WindowLimiterConfig{RequestsPerSecond: 1}, wantErr: true},
		{name: "zero rate", cfg: WindowLimiterConfig{Redis: client}, wantErr: true},
		{name: "negative burst", cfg: WindowLimiterConfig{Redis: client, RequestsPerSecond: 1, Burst: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWindowLimiter_Check(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 9, 0, 15, 0, time.UTC)
	l, _ := newTestLimiter(t, &now)

	// 0.05 rps over a minute is 3, plus a burst of 1
	require.Equal(t, 4, l.Limit())
	for i := 0; i < 4; i++ {
		d, err := l.Check(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i+1)
	}

	d, err := l.Check(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 45*time.Second, d.RetryAfter)

	other, err := l.Check(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "callers are counted separately")

	usage, err := l.Usage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), usage)
}

func TestWindowLimiter_NewWindowResets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 9, 0, 59, 0, time.UTC)
	l, _ := newTestLimiter(t, &now)

	for i := 0; i < 5; i++ {
		_, err := l.Check(ctx, "u1")
		require.NoError(t, err)
	}

	now = now.Add(2 * time.Second)
	d, err := l.Check(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(1), d.Count)
}

func TestWindowLimiter_KeysExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	l, mr := newTestLimiter(t, &now)

	_, err := l.Check(ctx, "u1")
	require.NoError(t, err)
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, 61*time.Second, mr.TTL(keys[0]))
}

func TestWindowLimiter_RedisDown(t *testing.T) {
	now := time.Now()
	l, mr := newTestLimiter(t, &now)
	mr.Close()

	_, err := l.Check(context.Background(), "u1")
	assert.Error(t, err)
}
