package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-threads/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// ListByThread returns messages oldest first.
	ListByThread(ctx context.Context, threadID string) ([]domain.Message, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Message, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	// DeleteByThread removes every message of the thread and reports how many.
	DeleteByThread(ctx context.Context, threadID string) (int64, error)
}

type gormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	msg.ID = newID()
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *gormMessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (r *gormMessageRepository) ListByThread(ctx context.Context, threadID string) ([]domain.Message, error) {
	var msgs []domain.Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *gormMessageRepository) ListByUser(ctx context.Context, userID string) ([]domain.Message, error) {
	var msgs []domain.Message
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&msgs).Error
	return msgs, err
}

func (r *gormMessageRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *gormMessageRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Message{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormMessageRepository) DeleteByThread(ctx context.Context, threadID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("thread_id = ?", threadID).Delete(&domain.Message{})
	return result.RowsAffected, result.Error
}
