package realtime

import (
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/domain"
	"github.com/spec-kit/logistics-realtime/internal/presence"
)

// Relay delivers chat messages to the other participants of a conversation.
// It targets specific connection instances through the presence registry's
// raw socket handle rather than room addressing, and it never echoes a
// message back to the sender. Callers relay exactly once per persisted
// message; duplicate calls duplicate delivery.
type Relay struct {
	hub      *Hub
	registry *presence.Registry
	logger   *zap.Logger
}

// NewRelay wires the relay over the hub and registry.
func NewRelay(hub *Hub, registry *presence.Registry, logger *zap.Logger) *Relay {
	return &Relay{
		hub:      hub,
		registry: registry,
		logger:   logger.With(zap.String("component", "message_relay")),
	}
}

// RelayMessage pushes the message to every online participant other than the
// sender. Offline participants are skipped without error. Returns the number
// of queued deliveries.
func (r *Relay) RelayMessage(participants []string, senderID string, msg domain.ChatMessage) int {
	frame, err := EncodeEvent(EventReceiveMessage, msg)
	if err != nil {
		r.logger.Error("encode message frame", zap.Error(err))
		return 0
	}

	delivered := 0
	for _, participant := range participants {
		if participant == senderID {
			continue
		}
		socketID, ok := r.registry.SocketID(participant)
		if !ok {
			continue
		}
		client, ok := r.hub.Client(socketID)
		if !ok {
			continue
		}
		if client.Send(frame) {
			delivered++
		}
	}

	r.logger.Debug("relayed message",
		zap.String("conversation_id", msg.ConversationID),
		zap.String("sender_id", senderID),
		zap.Int("delivered", delivered))
	return delivered
}
