package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesSentinelByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("%s not found", "Todo"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "wrapped: Todo not found", err.Error())

	var derr *Error
	assert.True(t, errors.As(err, &derr))
	assert.Equal(t, CodeNotFound, derr.Code)
}

func TestRateLimitedRoundsUp(t *testing.T) {
	err := RateLimited(2*time.Second + 1)

	var derr *Error
	assert.True(t, errors.As(err, &derr))
	assert.EqualValues(t, 2001, derr.RetryAfterMs())
	assert.Equal(t, "Rate limit exceeded. Retry after 2001ms", err.Error())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestErrorWithoutMessageUsesCode(t *testing.T) {
	assert.Equal(t, "forbidden", ErrForbidden.Error())
	assert.Equal(t, "Not authenticated", Unauthenticated().Error())
}
