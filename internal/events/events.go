// Package events announces domain changes to collaborators outside the request,
// such as the assistant agent that answers thread messages.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectMessageCreated = "messages.created"
	SubjectThreadDeleted  = "threads.deleted"
)

type MessageCreated struct {
	MessageID string    `json:"messageId"`
	ThreadID  string    `json:"threadId"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type ThreadDeleted struct {
	ThreadID        string `json:"threadId"`
	UserID          string `json:"userId"`
	MessagesDeleted int64  `json:"messagesDeleted"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }

// NATSPublisher publishes JSON payloads on <prefix>.<subject>.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("todo-threads"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

func (p *NATSPublisher) Subject(subject string) string {
	if p.prefix == "" {
		return subject
	}
	return p.prefix + "." + subject
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	msg := &nats.Msg{Subject: p.Subject(subject), Data: data, Header: nats.Header{}}
	msg.Header.Set("Content-Type", "application/json")
	return p.nc.PublishMsg(msg)
}

// Close flushes buffered events before disconnecting.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
