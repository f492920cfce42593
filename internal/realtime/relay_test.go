package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/domain"
	"github.com/spec-kit/logistics-realtime/internal/presence"
)

func newRelayFixture(t *testing.T) (*Relay, *Hub, *presence.Registry) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	registry := presence.NewRegistry(nil, time.Second, zap.NewNop())
	return NewRelay(hub, registry, zap.NewNop()), hub, registry
}

func connectOnline(t *testing.T, hub *Hub, registry *presence.Registry, userID string) *Client {
	t.Helper()
	c := newTestClient(userID, domain.RoleUser)
	hub.Register(c)
	registry.MarkOnline(context.Background(), userID, c.SocketID())
	return c
}

func TestRelayDeliversToOtherParticipantOnly(t *testing.T) {
	relay, hub, registry := newRelayFixture(t)
	sender := connectOnline(t, hub, registry, "user-a")
	recipient := connectOnline(t, hub, registry, "user-b")

	msg := domain.ChatMessage{
		ID:             "m1",
		ConversationID: "conv-1",
		SenderID:       "user-a",
		Body:           "pickup at 9am works?",
		SentAt:         time.Now().UTC(),
	}

	delivered := relay.RelayMessage([]string{"user-a", "user-b"}, "user-a", msg)
	require.Equal(t, 1, delivered)

	env := recvEvent(t, recipient)
	assert.Equal(t, EventReceiveMessage, env.Event)

	var got domain.ChatMessage
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, msg.Body, got.Body)

	// Exactly one delivery; the sender sees no echo.
	requireNoEvent(t, recipient)
	requireNoEvent(t, sender)
}

func TestRelaySkipsOfflineParticipants(t *testing.T) {
	relay, hub, registry := newRelayFixture(t)
	connectOnline(t, hub, registry, "user-a")

	msg := domain.ChatMessage{ID: "m1", ConversationID: "conv-1", SenderID: "user-a", Body: "hello"}

	delivered := relay.RelayMessage([]string{"user-a", "user-offline"}, "user-a", msg)
	assert.Zero(t, delivered)
}

func TestRelayTargetsTheLiveConnectionInstance(t *testing.T) {
	relay, hub, registry := newRelayFixture(t)
	connectOnline(t, hub, registry, "user-a")

	// user-b reconnects: the newer connection owns the registry entry.
	stale := connectOnline(t, hub, registry, "user-b")
	fresh := connectOnline(t, hub, registry, "user-b")

	msg := domain.ChatMessage{ID: "m1", ConversationID: "conv-1", SenderID: "user-a", Body: "hello"}
	delivered := relay.RelayMessage([]string{"user-a", "user-b"}, "user-a", msg)
	require.Equal(t, 1, delivered)

	recvEvent(t, fresh)
	requireNoEvent(t, stale)
}
