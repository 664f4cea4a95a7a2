package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendsAgent/internal/domain"
)

func TestLocalLock(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	release, err := l.Acquire(context.Background())
	require.NoError(t, err)

	_, err = l.Acquire(context.Background())
	assert.True(t, errors.Is(err, domain.ErrRunInProgress))

	release()
	release()

	again, err := l.Acquire(context.Background())
	require.NoError(t, err)
	again()
}

func TestNewRedisFromURL(t *testing.T) {
	t.Parallel()

	l, err := NewRedisFromURL("redis://localhost:6379/2", "trendsagent:lock", 0, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	assert.Equal(t, defaultTTL, l.ttl)
	assert.Equal(t, "trendsagent:lock", l.key)

	_, err = NewRedisFromURL("http://not-redis", "k", time.Second, nil)
	assert.Error(t, err)
}

func TestRedisAcquireUnreachable(t *testing.T) {
	t.Parallel()

	// port 1 is never a redis server; the error must not masquerade as a held lock.
	l, err := NewRedisFromURL("redis://127.0.0.1:1/0", "k", time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = l.Acquire(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrRunInProgress))
}
