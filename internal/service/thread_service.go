package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Tomlord1122/todo-threads/internal/domain"
	"github.com/Tomlord1122/todo-threads/internal/events"
	"github.com/Tomlord1122/todo-threads/internal/ratelimit"
	"github.com/Tomlord1122/todo-threads/internal/repository"
	"github.com/Tomlord1122/todo-threads/internal/validation"
)

type ThreadResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	Title     *string             `json:"title,omitempty"`
	Status    domain.ThreadStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type MessageResponse struct {
	ID        string             `json:"id"`
	ThreadID  string             `json:"threadId"`
	UserID    string             `json:"userId"`
	Role      domain.MessageRole `json:"role"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"createdAt"`
}

type ThreadWithMessages struct {
	Thread   ThreadResponse    `json:"thread"`
	Messages []MessageResponse `json:"messages"`
}

func newThreadResponse(t *domain.Thread) *ThreadResponse {
	return &ThreadResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Title:     t.Title,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func newThreadResponses(threads []domain.Thread) []ThreadResponse {
	responses := make([]ThreadResponse, 0, len(threads))
	for i := range threads {
		responses = append(responses, *newThreadResponse(&threads[i]))
	}
	return responses
}

func newMessageResponse(m *domain.Message) *MessageResponse {
	return &MessageResponse{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		UserID:    m.UserID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// ThreadService manages conversation threads and their messages.
type ThreadService interface {
	List(ctx context.Context) ([]ThreadResponse, error)
	ListByStatus(ctx context.Context, status domain.ThreadStatus) ([]ThreadResponse, error)

	// GetWithMessages returns the thread and its messages oldest first.
	GetWithMessages(ctx context.Context, threadID string) (*ThreadWithMessages, error)

	// Create starts a thread. A nil or empty title leaves it untitled.
	Create(ctx context.Context, title *string) (*ThreadResponse, error)
	UpdateTitle(ctx context.Context, threadID string, title string) (*ThreadResponse, error)
	UpdateStatus(ctx context.Context, threadID string, status domain.ThreadStatus) (*ThreadResponse, error)

	// Remove deletes the thread's messages, then the thread.
	Remove(ctx context.Context, threadID string) error

	// SendMessage appends a user message. Replies are left to the assistant
	// agent listening for events.SubjectMessageCreated.
	SendMessage(ctx context.Context, threadID string, content string) (*MessageResponse, error)
	DeleteMessage(ctx context.Context, threadID string, messageID string) error
}

type threadService struct {
	threads   repository.ThreadRepository
	messages  repository.MessageRepository
	pipeline  *Pipeline
	publisher events.Publisher
}

func NewThreadService(threads repository.ThreadRepository, messages repository.MessageRepository,
	pipeline *Pipeline, publisher events.Publisher) ThreadService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &threadService{threads: threads, messages: messages, pipeline: pipeline, publisher: publisher}
}

func (s *threadService) List(ctx context.Context) ([]ThreadResponse, error) {
	user, err := s.pipeline.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	threads, err := s.threads.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	return newThreadResponses(threads), nil
}

func (s *threadService) ListByStatus(ctx context.Context, status domain.ThreadStatus) ([]ThreadResponse, error) {
	user, err := s.pipeline.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	threads, err := s.threads.ListByUserAndStatus(ctx, user.ID, status)
	if err != nil {
		return nil, fmt.Errorf("list threads by status: %w", err)
	}
	return newThreadResponses(threads), nil
}

func (s *threadService) GetWithMessages(ctx context.Context, threadID string) (*ThreadWithMessages, error) {
	user, err := s.pipeline.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	thread, err := loadOwned(ctx, user, kindThread, "view", threadID, s.threads.FindByID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByThread(ctx, thread.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages of thread %s: %w", threadID, err)
	}
	out := &ThreadWithMessages{
		Thread:   *newThreadResponse(thread),
		Messages: make([]MessageResponse, 0, len(msgs)),
	}
	for i := range msgs {
		out.Messages = append(out.Messages, *newMessageResponse(&msgs[i]))
	}
	return out, nil
}

func (s *threadService) Create(ctx context.Context, title *string) (*ThreadResponse, error) {
	user, err := s.pipeline.authorizeMutation(ctx, ratelimit.CreateThread)
	if err != nil {
		return nil, err
	}

	var sanitized *string
	if title != nil && *title != "" {
		t := validation.SanitizeText(*title)
		if !validation.IsValidThreadTitle(t) {
			return nil, invalidTitle()
		}
		sanitized = &t
	}

	now := s.pipeline.Now()
	thread := &domain.Thread{
		UserID:    user.ID,
		Title:     sanitized,
		Status:    domain.ThreadActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.threads.Create(ctx, thread); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	return newThreadResponse(thread), nil
}

func (s *threadService) UpdateTitle(ctx context.Context, threadID string, title string) (*ThreadResponse, error) {
	user, err := s.pipeline.authorizeMutation(ctx, ratelimit.UpdateThread)
	if err != nil {
		return nil, err
	}
	thread, err := loadOwned(ctx, user, kindThread, "update", threadID, s.threads.FindByID)
	if err != nil {
		return nil, err
	}

	title = validation.SanitizeText(title)
	if !validation.IsValidThreadTitle(title) {
		return nil, invalidTitle()
	}

	thread.Title = &title
	thread.UpdatedAt = nextUpdate(thread.UpdatedAt, s.pipeline.Now())
	if err := s.threads.UpdateTitle(ctx, thread.ID, title, thread.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update title of thread %s: %w", threadID, err)
	}
	return newThreadResponse(thread), nil
}

func (s *threadService) UpdateStatus(ctx context.Context, threadID string, status domain.ThreadStatus) (*ThreadResponse, error) {
	user, err := s.pipeline.authorizeMutation(ctx, ratelimit.UpdateThread)
	if err != nil {
		return nil, err
	}
	thread, err := loadOwned(ctx, user, kindThread, "update", threadID, s.threads.FindByID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	thread.Status = status
	thread.UpdatedAt = nextUpdate(thread.UpdatedAt, s.pipeline.Now())
	if err := s.threads.UpdateStatus(ctx, thread.ID, status, thread.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update status of thread %s: %w", threadID, err)
	}
	return newThreadResponse(thread), nil
}

func (s *threadService) Remove(ctx context.Context, threadID string) error {
	user, err := s.pipeline.authorizeMutation(ctx, ratelimit.DeleteThread)
	if err != nil {
		return err
	}
	thread, err := loadOwned(ctx, user, kindThread, "delete", threadID, s.threads.FindByID)
	if err != nil {
		return err
	}

	// Two separate writes: if the second fails the thread survives without
	// its messages. Nothing is rolled back.
	removed, err := s.messages.DeleteByThread(ctx, thread.ID)
	if err != nil {
		return fmt.Errorf("delete messages of thread %s: %w", threadID, err)
	}
	if err := s.threads.Delete(ctx, thread.ID); err != nil {
		return fmt.Errorf("delete thread %s: %w", threadID, err)
	}

	s.publish(ctx, events.SubjectThreadDeleted, events.ThreadDeleted{
		ThreadID:        thread.ID,
		UserID:          user.ID,
		MessagesDeleted: removed,
	})
	return nil
}

func (s *threadService) SendMessage(ctx context.Context, threadID string, content string) (*MessageResponse, error) {
	user, err := s.pipeline.authorizeMutation(ctx, ratelimit.SendMessage)
	if err != nil {
		return nil, err
	}
	thread, err := loadOwned(ctx, user, kindThread, "send messages in", threadID, s.threads.FindByID)
	if err != nil {
		return nil, err
	}

	content = validation.SanitizeText(content)
	if !validation.IsValidMessageContent(content) {
		return nil, domain.InvalidArgument("Invalid message content. Must be 1-%d characters.", validation.MaxMessageContent)
	}

	msg := &domain.Message{
		ThreadID:  thread.ID,
		UserID:    user.ID,
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: s.pipeline.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message in thread %s: %w", threadID, err)
	}

	s.publish(ctx, events.SubjectMessageCreated, events.MessageCreated{
		MessageID: msg.ID,
		ThreadID:  msg.ThreadID,
		UserID:    msg.UserID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	})
	return newMessageResponse(msg), nil
}

func (s *threadService) DeleteMessage(ctx context.Context, threadID string, messageID string) error {
	user, err := s.pipeline.authorizeMutation(ctx, ratelimit.DeleteMessage)
	if err != nil {
		return err
	}
	msg, err := loadOwned(ctx, user, kindMessage, "delete", messageID, s.messages.FindByID)
	if err != nil {
		return err
	}
	if msg.ThreadID != threadID {
		return domain.NotFound("%s not found", kindMessage.title())
	}

	if err := s.messages.Delete(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete message %s: %w", messageID, err)
	}
	return nil
}

// publish is best effort; the write it describes has already happened.
func (s *threadService) publish(ctx context.Context, subject string, payload any) {
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		log.Printf("Error publishing %s event: %v", subject, err)
	}
}

func invalidTitle() error {
	return domain.InvalidArgument("Invalid thread title. Must be 1-%d characters.", validation.MaxThreadTitle)
}

func invalidStatus(status domain.ThreadStatus) error {
	return domain.InvalidArgument("Invalid thread status %q. Must be %q or %q.", status, domain.ThreadActive, domain.ThreadArchived)
}
