package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"reclaim/internal/types"
)

func TestMemoryLockerTimeout(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "b1", time.Second)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "b1", 20*time.Millisecond)
	require.ErrorIs(t, err, types.ErrTimeout)

	// Other keys are independent.
	other, err := l.Acquire(ctx, "b2", 20*time.Millisecond)
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := l.Acquire(ctx, "b1", 20*time.Millisecond)
	require.NoError(t, err)
	again()
	assert.Equal(t, 0, l.size())
}

func TestMemoryLockerContextDeadline(t *testing.T) {
	l := NewMemoryLocker()
	release, err := l.Acquire(context.Background(), "k", 0)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "k", 0)
	assert.ErrorIs(t, err, types.ErrTimeout)

	cctx, ccancel := context.WithCancel(context.Background())
	ccancel()
	_, err = l.Acquire(cctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryLockerMutualExclusion(t *testing.T) {
	testMutualExclusion(t, NewMemoryLocker())
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("RECLAIM_TEST_REDIS")
	if addr == "" {
		t.Skip("RECLAIM_TEST_REDIS not set; skipping Redis lock tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	l := NewRedisLocker(client, 5*time.Second, nil)
	key := "test-" + time.Now().Format("150405.000000")

	release, err := l.Acquire(context.Background(), key, time.Second)
	require.NoError(t, err)
	_, err = l.Acquire(context.Background(), key, 50*time.Millisecond)
	require.ErrorIs(t, err, types.ErrTimeout)
	release()

	testMutualExclusion(t, l)
}

func TestRedisReleaseRunsOnce(t *testing.T) {
	// Nothing listens here, so every release attempt logs a warning.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { client.Close() })
	core, logs := observer.New(zap.WarnLevel)
	l := NewRedisLocker(client, time.Second, zap.New(core))

	release := l.releaser(redisKeyPrefix+"k", "token")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release()
		}()
	}
	wg.Wait()
	release()

	assert.Equal(t, 1, logs.FilterMessage("release lock").Len())
}

func testMutualExclusion(t *testing.T, l Locker) {
	t.Helper()

	const workers = 16
	var (
		wg      sync.WaitGroup
		inside  int32
		maxSeen int32
	)
	errs := make(chan error, workers)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			release, err := l.Acquire(context.Background(), "shared", 5*time.Second)
			if err != nil {
				errs <- err
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("acquire: %v", err)
	}
	assert.Equal(t, int32(1), maxSeen)
}
