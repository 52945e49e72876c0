package domain

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is an append-only entry of a thread. It is never updated.
type Message struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)"`
	ThreadID  string      `gorm:"type:varchar(36);not null;index:idx_messages_thread"`
	UserID    string      `gorm:"type:varchar(36);not null;index:idx_messages_user"`
	Role      MessageRole `gorm:"type:varchar(16);not null"`
	Content   string      `gorm:"type:text;not null"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime:false"`
}

func (m *Message) OwnerID() string { return m.UserID }
