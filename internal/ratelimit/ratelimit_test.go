package ratelimit

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-threads/internal/testutil"
)

func newLimiter(t *testing.T, clock *testutil.Clock) *TokenBucket {
	t.Helper()
	tb, err := NewTokenBucket(DefaultPolicies(), clock.Now)
	require.NoError(t, err)
	return tb
}

func TestBurstThenRetryAfter(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock()
	tb := newLimiter(t, clock)

	for i := 0; i < 5; i++ {
		d, err := tb.Limit(ctx, CreateTodo, "alice")
		require.NoError(t, err)
		require.True(t, d.OK, "call %d within burst", i+1)
	}

	d, err := tb.Limit(ctx, CreateTodo, "alice")
	require.NoError(t, err)
	assert.False(t, d.OK)
	// 20 per minute refills one token every 3s.
	assert.Equal(t, 3*time.Second, d.RetryAfter)

	// A rejected call does not consume, so the wait does not grow.
	d, err = tb.Limit(ctx, CreateTodo, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d.RetryAfter)

	clock.Advance(3 * time.Second)
	d, err = tb.Limit(ctx, CreateTodo, "alice")
	require.NoError(t, err)
	assert.True(t, d.OK)
}

func TestBucketsAreIsolated(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock()
	tb := newLimiter(t, clock)

	for i := 0; i < 2; i++ {
		d, err := tb.Limit(ctx, CreateThread, "alice")
		require.NoError(t, err)
		require.True(t, d.OK)
	}
	d, _ := tb.Limit(ctx, CreateThread, "alice")
	assert.False(t, d.OK)

	d, _ = tb.Limit(ctx, CreateThread, "bob")
	assert.True(t, d.OK, "other users have their own bucket")

	d, _ = tb.Limit(ctx, DeleteThread, "alice")
	assert.True(t, d.OK, "other operations have their own bucket")
}

func TestUnknownOperation(t *testing.T) {
	tb := newLimiter(t, testutil.NewClock())
	_, err := tb.Limit(context.Background(), Operation("launchRocket"), "alice")
	assert.Error(t, err)
}

func TestNewTokenBucketRejectsBadPolicy(t *testing.T) {
	_, err := NewTokenBucket(Policies{CreateTodo: {Rate: 0, Period: time.Minute, Capacity: 1}}, nil)
	assert.Error(t, err)
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock()
	tb := newLimiter(t, clock)

	_, _ = tb.Limit(ctx, CreateTodo, "alice")
	_, _ = tb.Limit(ctx, SendMessage, "bob")
	assert.Equal(t, 0, tb.Prune(), "buckets still refilling")

	clock.Advance(time.Minute)
	assert.Equal(t, 2, tb.Prune())
}

func TestPruneDuringLimitNeverExceedsCapacity(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock()

	for round := 0; round < 50; round++ {
		tb := newLimiter(t, clock)
		stop := make(chan struct{})
		pruned := make(chan struct{})
		go func() {
			defer close(pruned)
			for {
				select {
				case <-stop:
					return
				default:
					tb.Prune()
				}
			}
		}()

		var allowed atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d, err := tb.Limit(ctx, CreateTodo, "alice")
				if err == nil && d.OK {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()
		close(stop)
		<-pruned

		// The clock is frozen, so nothing refills past the burst of 5.
		require.EqualValues(t, 5, allowed.Load(), "round %d", round)
	}
}

func TestParsePolicies(t *testing.T) {
	doc := []byte(`
createTodo: {rate: 40, period: 1m, capacity: 10}
sendMessage:
  rate: 1
  period: 10s
  capacity: 1
`)
	p, err := ParsePolicies(doc, DefaultPolicies())
	require.NoError(t, err)
	assert.Equal(t, Policy{Rate: 40, Period: time.Minute, Capacity: 10}, p[CreateTodo])
	assert.Equal(t, Policy{Rate: 1, Period: 10 * time.Second, Capacity: 1}, p[SendMessage])
	assert.Equal(t, DefaultPolicies()[DeleteTodo], p[DeleteTodo])
}

func TestParsePoliciesErrors(t *testing.T) {
	_, err := ParsePolicies([]byte(`launchRocket: {rate: 1, period: 1m, capacity: 1}`), DefaultPolicies())
	assert.Error(t, err)

	_, err = ParsePolicies([]byte(`createTodo: {rate: 1, period: 1m, capacity: 0}`), DefaultPolicies())
	assert.Error(t, err)

	_, err = ParsePolicies([]byte(`: [`), DefaultPolicies())
	assert.Error(t, err)
}

func TestLoadPolicies(t *testing.T) {
	p, err := LoadPolicies("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicies(), p)

	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("deleteTodo: {rate: 2, period: 1m, capacity: 2}\n"), 0o600))
	p, err = LoadPolicies(path)
	require.NoError(t, err)
	assert.Equal(t, 2, p[DeleteTodo].Capacity)

	_, err = LoadPolicies(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
