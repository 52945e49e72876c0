package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Tomlord1122/todo-threads/internal/domain"
	"github.com/Tomlord1122/todo-threads/internal/ratelimit"
	"github.com/Tomlord1122/todo-threads/internal/repository"
	"github.com/Tomlord1122/todo-threads/internal/validation"
)

// TodoResponse is the representation of a Todo returned by the service.
type TodoResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Text        string    `json:"text"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newTodoResponse(todo *domain.Todo) *TodoResponse {
	return &TodoResponse{
		ID:          todo.ID,
		UserID:      todo.UserID,
		Text:        todo.Text,
		IsCompleted: todo.IsCompleted,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}

func newTodoResponses(todos []domain.Todo) []TodoResponse {
	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, *newTodoResponse(&todos[i]))
	}
	return responses
}

// TodoService defines the todo operations available to the authenticated caller.
type TodoService interface {
	// List returns the caller's todos, newest first.
	List(ctx context.Context) ([]TodoResponse, error)

	// ListByStatus is List restricted to one completion state.
	ListByStatus(ctx context.Context, isCompleted bool) ([]TodoResponse, error)

	Stats(ctx context.Context) (*domain.TodoStats, error)

	Create(ctx context.Context, text string) (*TodoResponse, error)

	// Toggle flips the completion state.
	Toggle(ctx context.Context, id string) (*TodoResponse, error)

	UpdateText(ctx context.Context, id string, text string) (*TodoResponse, error)

	Remove(ctx context.Context, id string) error
}

type todoService struct {
	repo     repository.TodoRepository
	pipeline *Pipeline
}

func NewTodoService(repo repository.TodoRepository, pipeline *Pipeline) TodoService {
	return &todoService{repo: repo, pipeline: pipeline}
}

func (s *todoService) List(ctx context.Context) ([]TodoResponse, error) {
	user, err := s.pipeline.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	todos, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return newTodoResponses(todos), nil
}

func (s *todoService) ListByStatus(ctx context.Context, isCompleted bool) ([]TodoResponse, error) {
	user, err := s.pipeline.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	todos, err := s.repo.ListByUserAndCompleted(ctx, user.ID, isCompleted)
	if err != nil {
		return nil, fmt.Errorf("list todos by status: %w", err)
	}
	return newTodoResponses(todos), nil
}

func (s *todoService) Stats(ctx context.Context) (*domain.TodoStats, error) {
	user, err := s.pipeline.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	todos, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load todos for stats: %w", err)
	}
	stats := todoStats(todos)
	return &stats, nil
}

func todoStats(todos []domain.Todo) domain.TodoStats {
	completed := 0
	for _, t := range todos {
		if t.IsCompleted {
			completed++
		}
	}
	return domain.TodoStats{Total: len(todos), Completed: completed, Active: len(todos) - completed}
}

func (s *todoService) Create(ctx context.Context, text string) (*TodoResponse, error) {
	user, err := s.pipeline.authorizeMutation(ctx, ratelimit.CreateTodo)
	if err != nil {
		return nil, err
	}

	text = validation.SanitizeText(text)
	if !validation.IsValidTodoText(text) {
		return nil, domain.InvalidArgument("Invalid todo text. Must be 1-%d characters.", validation.MaxTodoText)
	}

	now := s.pipeline.Now()
	todo := &domain.Todo{
		UserID:      user.ID,
		Text:        text,
		IsCompleted: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return newTodoResponse(todo), nil
}

func (s *todoService) Toggle(ctx context.Context, id string) (*TodoResponse, error) {
	user, err := s.pipeline.authorizeMutation(ctx, ratelimit.UpdateTodo)
	if err != nil {
		return nil, err
	}
	todo, err := loadOwned(ctx, user, kindTodo, "update", id, s.repo.FindByID)
	if err != nil {
		return nil, err
	}

	todo.IsCompleted = !todo.IsCompleted
	todo.UpdatedAt = nextUpdate(todo.UpdatedAt, s.pipeline.Now())
	if err := s.repo.SetCompleted(ctx, todo.ID, todo.IsCompleted, todo.UpdatedAt); err != nil {
		return nil, fmt.Errorf("toggle todo %s: %w", id, err)
	}
	return newTodoResponse(todo), nil
}

func (s *todoService) UpdateText(ctx context.Context, id string, text string) (*TodoResponse, error) {
	user, err := s.pipeline.authorizeMutation(ctx, ratelimit.UpdateTodo)
	if err != nil {
		return nil, err
	}
	todo, err := loadOwned(ctx, user, kindTodo, "update", id, s.repo.FindByID)
	if err != nil {
		return nil, err
	}

	text = validation.SanitizeText(text)
	if !validation.IsValidTodoText(text) {
		return nil, domain.InvalidArgument("Invalid todo text. Must be 1-%d characters.", validation.MaxTodoText)
	}

	todo.Text = text
	todo.UpdatedAt = nextUpdate(todo.UpdatedAt, s.pipeline.Now())
	if err := s.repo.UpdateText(ctx, todo.ID, todo.Text, todo.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update todo %s: %w", id, err)
	}
	return newTodoResponse(todo), nil
}

func (s *todoService) Remove(ctx context.Context, id string) error {
	user, err := s.pipeline.authorizeMutation(ctx, ratelimit.DeleteTodo)
	if err != nil {
		return err
	}
	if _, err := loadOwned(ctx, user, kindTodo, "delete", id, s.repo.FindByID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	return nil
}
