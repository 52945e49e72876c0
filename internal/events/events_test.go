package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natssrv "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTestNATSServer(t *testing.T) *natssrv.Server {
	t.Helper()

	s, err := natssrv.NewServer(&natssrv.Options{Port: -1})
	require.NoError(t, err)
	go s.Start()
	if !s.ReadyForConnections(5 * time.Second) {
		s.Shutdown()
		t.Fatalf("nats server not ready")
	}
	t.Cleanup(s.Shutdown)
	return s
}

func TestNATSPublisher(t *testing.T) {
	s := runTestNATSServer(t)

	sub, err := nats.Connect(s.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	received := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("todo.messages.created", received)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := NewNATSPublisher(s.ClientURL(), "todo")
	require.NoError(t, err)
	defer pub.Close()

	event := MessageCreated{MessageID: "m1", ThreadID: "t1", UserID: "alice", Role: "user", Content: "hi"}
	require.NoError(t, pub.Publish(context.Background(), SubjectMessageCreated, event))

	select {
	case msg := <-received:
		assert.Equal(t, "application/json", msg.Header.Get("Content-Type"))
		var got MessageCreated
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, event.MessageID, got.MessageID)
		assert.Equal(t, event.Content, got.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestNATSPublisherCancelledContext(t *testing.T) {
	s := runTestNATSServer(t)
	pub, err := NewNATSPublisher(s.ClientURL(), "")
	require.NoError(t, err)
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, SubjectThreadDeleted, ThreadDeleted{ThreadID: "t1"}), context.Canceled)
	assert.Equal(t, "threads.deleted", pub.Subject(SubjectThreadDeleted))
}

func TestNewNATSPublisherUnreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "todo")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), SubjectMessageCreated, nil))
	assert.NoError(t, p.Close())
}
