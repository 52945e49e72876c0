// Package ratelimit enforces per-user token bucket limits on named write operations.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Operation string

const (
	CreateTodo    Operation = "createTodo"
	UpdateTodo    Operation = "updateTodo"
	DeleteTodo    Operation = "deleteTodo"
	CreateThread  Operation = "createThread"
	UpdateThread  Operation = "updateThread"
	DeleteThread  Operation = "deleteThread"
	SendMessage   Operation = "sendMessage"
	DeleteMessage Operation = "deleteMessage"
)

// Decision is the outcome of one Limit call. RetryAfter is zero when OK.
type Decision struct {
	OK         bool
	RetryAfter time.Duration
}

// Limiter decides whether key may perform op now.
type Limiter interface {
	Limit(ctx context.Context, op Operation, key string) (Decision, error)
}

// Policy is a token bucket: Rate tokens per Period, holding at most Capacity.
type Policy struct {
	Rate     int           `yaml:"rate"`
	Period   time.Duration `yaml:"period"`
	Capacity int           `yaml:"capacity"`
}

func (p Policy) validate() error {
	if p.Rate <= 0 || p.Period <= 0 || p.Capacity <= 0 {
		return fmt.Errorf("rate, period and capacity must be positive")
	}
	return nil
}

func (p Policy) limit() rate.Limit {
	return rate.Limit(float64(p.Rate) / p.Period.Seconds())
}

type Policies map[Operation]Policy

// DefaultPolicies returns the built-in limits for every write operation.
func DefaultPolicies() Policies {
	return Policies{
		CreateTodo:    {Rate: 20, Period: time.Minute, Capacity: 5},
		UpdateTodo:    {Rate: 30, Period: time.Minute, Capacity: 10},
		DeleteTodo:    {Rate: 20, Period: time.Minute, Capacity: 5},
		CreateThread:  {Rate: 5, Period: time.Minute, Capacity: 2},
		UpdateThread:  {Rate: 10, Period: time.Minute, Capacity: 3},
		DeleteThread:  {Rate: 5, Period: time.Minute, Capacity: 2},
		SendMessage:   {Rate: 10, Period: time.Minute, Capacity: 3},
		DeleteMessage: {Rate: 10, Period: time.Minute, Capacity: 3},
	}
}

type bucketKey struct {
	op  Operation
	key string
}

// TokenBucket keeps one rate.Limiter per (operation, key) pair.
type TokenBucket struct {
	policies Policies
	now      func() time.Time

	mu      sync.Mutex
	buckets map[bucketKey]*rate.Limiter
}

// NewTokenBucket validates the policies. now may be nil to use the wall clock.
func NewTokenBucket(policies Policies, now func() time.Time) (*TokenBucket, error) {
	for op, p := range policies {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("rate limit %s: %w", op, err)
		}
	}
	if now == nil {
		now = time.Now
	}
	return &TokenBucket{
		policies: policies,
		now:      now,
		buckets:  make(map[bucketKey]*rate.Limiter),
	}, nil
}

func (tb *TokenBucket) Limit(_ context.Context, op Operation, key string) (Decision, error) {
	policy, ok := tb.policies[op]
	if !ok {
		return Decision{}, fmt.Errorf("no rate limit configured for operation %q", op)
	}

	// Reserve under the map lock so Prune cannot drop the bucket in between.
	tb.mu.Lock()
	defer tb.mu.Unlock()

	lim := tb.bucket(op, key, policy)
	now := tb.now()
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return Decision{}, fmt.Errorf("operation %q can never be satisfied", op)
	}
	if delay := r.DelayFrom(now); delay > 0 {
		// Give the token back; a rejected call must not consume.
		r.CancelAt(now)
		return Decision{OK: false, RetryAfter: delay}, nil
	}
	return Decision{OK: true}, nil
}

// bucket must be called with tb.mu held.
func (tb *TokenBucket) bucket(op Operation, key string, policy Policy) *rate.Limiter {
	k := bucketKey{op: op, key: key}
	lim, ok := tb.buckets[k]
	if !ok {
		lim = rate.NewLimiter(policy.limit(), policy.Capacity)
		tb.buckets[k] = lim
	}
	return lim
}

// Prune drops buckets that have been idle long enough to be full again.
func (tb *TokenBucket) Prune() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	removed := 0
	for k, lim := range tb.buckets {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(tb.buckets, k)
			removed++
		}
	}
	return removed
}

// RunPruner calls Prune every interval until ctx is done.
func (tb *TokenBucket) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tb.Prune()
		case <-ctx.Done():
			return
		}
	}
}
