package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Tomlord1122/todo-threads/internal/domain"
	"github.com/Tomlord1122/todo-threads/internal/repository"
)

const (
	DefaultRecentLimit = 5
	MaxRecentLimit     = 100
)

type ThreadCounts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// Summary is the caller's record counts across every tracked entity.
type Summary struct {
	TotalRecords int64                   `json:"totalRecords"`
	PerTable     map[domain.Entity]int64 `json:"perTable"`
	Todos        domain.TodoStats        `json:"todos"`
	Threads      ThreadCounts            `json:"threads"`
}

// RecentTodo is the dashboard table row for a todo.
type RecentTodo struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type DashboardService interface {
	// Summary returns an empty summary for anonymous callers.
	Summary(ctx context.Context) (*Summary, error)

	// Recent returns the caller's newest todos, or none for anonymous callers.
	// A non-positive limit means DefaultRecentLimit.
	Recent(ctx context.Context, limit int) ([]RecentTodo, error)

	LoadSummary(ctx context.Context, userID string) (*Summary, error)
	LoadRecent(ctx context.Context, userID string, limit int) ([]RecentTodo, error)
}

type counter func(ctx context.Context, userID string) (int64, error)

type dashboardService struct {
	todos    repository.TodoRepository
	threads  repository.ThreadRepository
	pipeline *Pipeline
	counters map[domain.Entity]counter
}

func NewDashboardService(todos repository.TodoRepository, threads repository.ThreadRepository,
	messages repository.MessageRepository, pipeline *Pipeline) DashboardService {
	return &dashboardService{
		todos:    todos,
		threads:  threads,
		pipeline: pipeline,
		counters: map[domain.Entity]counter{
			domain.EntityTodos:    todos.CountByUser,
			domain.EntityThreads:  threads.CountByUser,
			domain.EntityMessages: messages.CountByUser,
		},
	}
}

func emptySummary() *Summary {
	return &Summary{PerTable: map[domain.Entity]int64{}}
}

func (s *dashboardService) Summary(ctx context.Context) (*Summary, error) {
	user, err := s.pipeline.authenticate(ctx)
	if err != nil {
		return emptySummary(), nil
	}
	return s.LoadSummary(ctx, user.ID)
}

func (s *dashboardService) Recent(ctx context.Context, limit int) ([]RecentTodo, error) {
	user, err := s.pipeline.authenticate(ctx)
	if err != nil {
		return []RecentTodo{}, nil
	}
	return s.LoadRecent(ctx, user.ID, limit)
}

func (s *dashboardService) LoadSummary(ctx context.Context, userID string) (*Summary, error) {
	summary := emptySummary()
	for _, entity := range domain.TrackedEntities {
		count, ok := s.counters[entity]
		if !ok {
			return nil, fmt.Errorf("no counter registered for %s", entity)
		}
		n, err := count(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", entity, err)
		}
		summary.PerTable[entity] = n
		summary.TotalRecords += n
	}

	todos, err := s.todos.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load todos for summary: %w", err)
	}
	summary.Todos = todoStats(todos)

	threads, err := s.threads.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load threads for summary: %w", err)
	}
	summary.Threads.Total = len(threads)
	for _, t := range threads {
		if t.Status == domain.ThreadActive {
			summary.Threads.Active++
		}
	}
	return summary, nil
}

func (s *dashboardService) LoadRecent(ctx context.Context, userID string, limit int) ([]RecentTodo, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	todos, err := s.todos.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent todos: %w", err)
	}
	recent := make([]RecentTodo, 0, len(todos))
	for _, t := range todos {
		recent = append(recent, RecentTodo{
			ID:          t.ID,
			Text:        t.Text,
			IsCompleted: t.IsCompleted,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return recent, nil
}
