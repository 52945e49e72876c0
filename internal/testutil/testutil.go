// Package testutil provides an in-memory database and a controllable clock for tests.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-threads/internal/config"
	"github.com/Tomlord1122/todo-threads/internal/database"
)

// NewService opens a private in-memory sqlite database with all tables
// migrated. It is closed when the test finishes.
func NewService(t *testing.T) database.Service {
	t.Helper()
	srv, err := database.New(config.Database{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	require.NoError(t, database.Migrate(srv.GetDB()))
	return srv
}

// NewDB is NewService for callers that only need the handle.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	return NewService(t).GetDB()
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
