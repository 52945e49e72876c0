package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-threads/internal/domain"
)

// TodoRepository defines the data operations on todos. Listings are newest first.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, id string) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Todo, error)
	ListByUserAndCompleted(ctx context.Context, userID string, completed bool) ([]domain.Todo, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.Todo, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	SetCompleted(ctx context.Context, id string, completed bool, updatedAt time.Time) error
	UpdateText(ctx context.Context, id string, text string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type gormTodoRepository struct {
	db *gorm.DB
}

func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// Create assigns the id and inserts the todo.
func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	todo.ID = newID()
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *gormTodoRepository) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	var todo domain.Todo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&todo).Error; err != nil {
		return nil, translate(err)
	}
	return &todo, nil
}

func (r *gormTodoRepository) ListByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	var todos []domain.Todo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&todos).Error
	return todos, err
}

func (r *gormTodoRepository) ListByUserAndCompleted(ctx context.Context, userID string, completed bool) ([]domain.Todo, error) {
	var todos []domain.Todo
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_completed = ?", userID, completed).
		Order("created_at DESC, id DESC").
		Find(&todos).Error
	return todos, err
}

func (r *gormTodoRepository) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Todo, error) {
	var todos []domain.Todo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&todos).Error
	return todos, err
}

func (r *gormTodoRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Todo{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *gormTodoRepository) SetCompleted(ctx context.Context, id string, completed bool, updatedAt time.Time) error {
	return r.update(ctx, id, map[string]any{"is_completed": completed, "updated_at": updatedAt})
}

func (r *gormTodoRepository) UpdateText(ctx context.Context, id string, text string, updatedAt time.Time) error {
	return r.update(ctx, id, map[string]any{"text": text, "updated_at": updatedAt})
}

func (r *gormTodoRepository) update(ctx context.Context, id string, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&domain.Todo{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormTodoRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Todo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
