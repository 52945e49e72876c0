package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tomlord1122/todo-threads/internal/auth"
	"github.com/Tomlord1122/todo-threads/internal/domain"
	"github.com/Tomlord1122/todo-threads/internal/ratelimit"
	"github.com/Tomlord1122/todo-threads/internal/repository"
)

// Pipeline runs the checks every request goes through before touching storage:
// authentication, then rate limiting for mutations, then ownership of the
// targeted record. It also supplies the request timestamp.
type Pipeline struct {
	limiter ratelimit.Limiter
	now     func() time.Time
}

// NewPipeline builds a pipeline. now may be nil to use the wall clock.
func NewPipeline(limiter ratelimit.Limiter, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{limiter: limiter, now: now}
}

// Now is the current time in UTC at millisecond precision.
func (p *Pipeline) Now() time.Time {
	return p.now().UTC().Truncate(time.Millisecond)
}

func (p *Pipeline) authenticate(ctx context.Context) (*domain.User, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, domain.Unauthenticated()
	}
	return user, nil
}

// authorizeMutation authenticates the caller and spends one token of op.
func (p *Pipeline) authorizeMutation(ctx context.Context, op ratelimit.Operation) (*domain.User, error) {
	user, err := p.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	decision, err := p.limiter.Limit(ctx, op, user.ID)
	if err != nil {
		return nil, fmt.Errorf("rate limiter %s: %w", op, err)
	}
	if !decision.OK {
		return nil, domain.RateLimited(decision.RetryAfter)
	}
	return user, nil
}

type kind string

const (
	kindTodo    kind = "todo"
	kindThread  kind = "thread"
	kindMessage kind = "message"
)

func (k kind) title() string {
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// loadOwned fetches a record and checks that user owns it. A missing record is
// NotFound; someone else's record is Forbidden.
func loadOwned[T domain.Owned](ctx context.Context, user *domain.User, k kind, action, id string,
	load func(context.Context, string) (T, error)) (T, error) {
	var zero T

	entity, err := load(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, domain.NotFound("%s not found", k.title())
		}
		return zero, fmt.Errorf("load %s %s: %w", k, id, err)
	}
	if entity.OwnerID() != user.ID {
		return zero, domain.Forbidden("Not authorized to %s this %s", action, k)
	}
	return entity, nil
}

// nextUpdate returns now, or 1ms past prev when the clock has not moved past
// it, so updatedAt strictly increases on every write.
func nextUpdate(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Millisecond)
}
