package domain

import "time"

type ThreadStatus string

const (
	ThreadActive   ThreadStatus = "active"
	ThreadArchived ThreadStatus = "archived"
)

// Valid reports whether s is one of the two thread states.
func (s ThreadStatus) Valid() bool {
	return s == ThreadActive || s == ThreadArchived
}

// Thread is a user-owned conversation container. It owns its messages.
type Thread struct {
	ID        string       `gorm:"primaryKey;type:varchar(36)"`
	UserID    string       `gorm:"type:varchar(36);not null;index:idx_threads_user;index:idx_threads_user_status,priority:1"`
	Title     *string      `gorm:"type:varchar(200)"`
	Status    ThreadStatus `gorm:"type:varchar(16);not null;default:active;index:idx_threads_user_status,priority:2"`
	CreatedAt time.Time    `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time    `gorm:"not null;autoUpdateTime:false"`
}

func (t *Thread) OwnerID() string { return t.UserID }
