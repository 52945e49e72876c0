package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-threads/internal/domain"
)

func TestDashboardSummary(t *testing.T) {
	f := newFixture(t)

	for _, text := range []string{"a", "b", "c"} {
		_, err := f.todos.Create(f.alice, text)
		require.NoError(t, err)
	}
	todos, err := f.todos.List(f.alice)
	require.NoError(t, err)
	_, err = f.todos.Toggle(f.alice, todos[0].ID)
	require.NoError(t, err)

	active, err := f.threads.Create(f.alice, nil)
	require.NoError(t, err)
	archived, err := f.threads.Create(f.alice, nil)
	require.NoError(t, err)
	_, err = f.threads.UpdateStatus(f.alice, archived.ID, domain.ThreadArchived)
	require.NoError(t, err)
	_, err = f.threads.SendMessage(f.alice, active.ID, "hi")
	require.NoError(t, err)

	_, err = f.todos.Create(f.bob, "not counted")
	require.NoError(t, err)

	summary, err := f.dashboard.Summary(f.alice)
	require.NoError(t, err)
	assert.EqualValues(t, 6, summary.TotalRecords)
	assert.Equal(t, map[domain.Entity]int64{
		domain.EntityTodos:    3,
		domain.EntityThreads:  2,
		domain.EntityMessages: 1,
	}, summary.PerTable)
	assert.Equal(t, domain.TodoStats{Total: 3, Completed: 1, Active: 2}, summary.Todos)
	assert.Equal(t, ThreadCounts{Total: 2, Active: 1}, summary.Threads)
}

func TestDashboardAnonymous(t *testing.T) {
	f := newFixture(t)

	summary, err := f.dashboard.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalRecords)
	assert.Empty(t, summary.PerTable)
	assert.Zero(t, summary.Todos)
	assert.Zero(t, summary.Threads)

	recent, err := f.dashboard.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, recent)
	assert.Empty(t, recent)
}

func TestDashboardRecent(t *testing.T) {
	f := newFixture(t)

	user, err := f.userRepo.FindByEmail(f.alice, "alice@example.com")
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		at := f.clock.Now()
		require.NoError(t, f.todoRepo.Create(f.alice, &domain.Todo{
			UserID: user.ID, Text: fmt.Sprintf("todo %d", i), CreatedAt: at, UpdatedAt: at,
		}))
		f.clock.Advance(time.Second)
	}

	recent, err := f.dashboard.Recent(f.alice, 0)
	require.NoError(t, err)
	require.Len(t, recent, DefaultRecentLimit)
	assert.Equal(t, "todo 7", recent[0].Text)
	assert.Equal(t, "todo 3", recent[4].Text)

	recent, err = f.dashboard.LoadRecent(context.Background(), user.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	recent, err = f.dashboard.Recent(f.alice, MaxRecentLimit+50)
	require.NoError(t, err)
	assert.Len(t, recent, 8)
}
