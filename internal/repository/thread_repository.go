package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-threads/internal/domain"
)

type ThreadRepository interface {
	Create(ctx context.Context, thread *domain.Thread) error
	FindByID(ctx context.Context, id string) (*domain.Thread, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Thread, error)
	ListByUserAndStatus(ctx context.Context, userID string, status domain.ThreadStatus) ([]domain.Thread, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	UpdateTitle(ctx context.Context, id string, title string, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.ThreadStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type gormThreadRepository struct {
	db *gorm.DB
}

func NewGormThreadRepository(db *gorm.DB) ThreadRepository {
	return &gormThreadRepository{db: db}
}

func (r *gormThreadRepository) Create(ctx context.Context, thread *domain.Thread) error {
	thread.ID = newID()
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *gormThreadRepository) FindByID(ctx context.Context, id string) (*domain.Thread, error) {
	var thread domain.Thread
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&thread).Error; err != nil {
		return nil, translate(err)
	}
	return &thread, nil
}

func (r *gormThreadRepository) ListByUser(ctx context.Context, userID string) ([]domain.Thread, error) {
	var threads []domain.Thread
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&threads).Error
	return threads, err
}

func (r *gormThreadRepository) ListByUserAndStatus(ctx context.Context, userID string, status domain.ThreadStatus) ([]domain.Thread, error) {
	var threads []domain.Thread
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at DESC, id DESC").
		Find(&threads).Error
	return threads, err
}

func (r *gormThreadRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Thread{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *gormThreadRepository) UpdateTitle(ctx context.Context, id string, title string, updatedAt time.Time) error {
	return r.update(ctx, id, map[string]any{"title": title, "updated_at": updatedAt})
}

func (r *gormThreadRepository) UpdateStatus(ctx context.Context, id string, status domain.ThreadStatus, updatedAt time.Time) error {
	return r.update(ctx, id, map[string]any{"status": status, "updated_at": updatedAt})
}

func (r *gormThreadRepository) update(ctx context.Context, id string, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&domain.Thread{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the thread row only. Callers delete its messages first.
func (r *gormThreadRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Thread{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
