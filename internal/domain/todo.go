package domain

import "time"

// Todo is a user-owned task with a completion state.
type Todo struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `gorm:"type:varchar(36);not null;index:idx_todos_user;index:idx_todos_user_completed,priority:1;index:idx_todos_user_created,priority:1"`
	Text        string    `gorm:"type:text;not null"`
	IsCompleted bool      `gorm:"not null;default:false;index:idx_todos_user_completed,priority:2"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;index:idx_todos_user_created,priority:2"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (t *Todo) OwnerID() string { return t.UserID }

// TodoStats is the completion breakdown of a user's todos.
type TodoStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}
