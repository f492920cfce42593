package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/auth"
	"github.com/spec-kit/logistics-realtime/internal/config"
	"github.com/spec-kit/logistics-realtime/internal/domain"
	"github.com/spec-kit/logistics-realtime/internal/observability"
	"github.com/spec-kit/logistics-realtime/internal/presence"
)

// ConversationSource resolves a conversation id to its participant user ids.
type ConversationSource interface {
	Participants(ctx context.Context, conversationID string) ([]string, error)
}

// HandshakeAuthenticator gates new connections.
type HandshakeAuthenticator interface {
	Authenticate(ctx context.Context, hs auth.Handshake) (auth.Identity, error)
}

// socketConn is the slice of the transport connection the handler drives.
type socketConn interface {
	wsConn
	Query(key string, defaultValue ...string) string
	Headers(key string, defaultValue ...string) string
	ReadMessage() (int, []byte, error)
}

// SocketHandler runs the per-connection lifecycle:
// connecting -> authenticated -> online-declared -> disconnected.
// A failed handshake rejects the connection with no side effects; only an
// online-declared connection is a delivery target.
type SocketHandler struct {
	authenticator HandshakeAuthenticator
	hub           *Hub
	registry      *presence.Registry
	relay         *Relay
	conversations ConversationSource
	metrics       *observability.Metrics
	logger        *zap.Logger
	cfg           config.RealtimeConfig
}

// NewSocketHandler wires the websocket endpoint.
func NewSocketHandler(
	authenticator HandshakeAuthenticator,
	hub *Hub,
	registry *presence.Registry,
	relay *Relay,
	conversations ConversationSource,
	metrics *observability.Metrics,
	logger *zap.Logger,
	cfg config.RealtimeConfig,
) *SocketHandler {
	return &SocketHandler{
		authenticator: authenticator,
		hub:           hub,
		registry:      registry,
		relay:         relay,
		conversations: conversations,
		metrics:       metrics,
		logger:        logger.With(zap.String("component", "socket_handler")),
		cfg:           cfg,
	}
}

// UpgradeGate rejects plain HTTP requests on the websocket route.
func (h *SocketHandler) UpgradeGate(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the fiber websocket handler.
func (h *SocketHandler) Handler() fiber.Handler {
	return websocket.New(h.serve)
}

func (h *SocketHandler) serve(conn *websocket.Conn) {
	h.run(conn)
}

func (h *SocketHandler) run(conn socketConn) {
	ctx := context.Background()

	// Synchronous gate: nothing below runs for a connection that has not
	// authenticated. No room join, no registry mutation.
	identity, err := h.authenticator.Authenticate(ctx, auth.Handshake{
		Token:         conn.Query("token"),
		Authorization: conn.Headers(fiber.HeaderAuthorization),
	})
	if err != nil {
		h.reject(conn, err)
		return
	}

	client := NewClient(uuid.NewString(), identity, conn, h.cfg.SendBufferSize, h.logger)
	h.hub.Register(client)
	h.metrics.ConnectionOpened()
	go client.WritePump(h.cfg.WriteWait())

	h.logger.Info("connection authenticated",
		zap.String("socket_id", client.SocketID()),
		zap.String("user_id", client.UserID()),
		zap.String("role", string(client.Role())))

	defer h.finish(ctx, client)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.logger.Debug("malformed frame", zap.Error(err))
			continue
		}
		h.dispatch(ctx, client, env)
	}
}

func (h *SocketHandler) dispatch(ctx context.Context, c *Client, env Envelope) {
	switch env.Event {
	case EventDeclareOnline:
		h.handleDeclareOnline(ctx, c, env.Data)
	case EventRequestOnlineUsers:
		h.handleOnlineUsers(c)
	case EventRelayOutbound:
		h.handleOutboundMessage(ctx, c, env.Data)
	default:
		h.logger.Debug("unknown client event", zap.String("event", env.Event))
	}
}

// handleDeclareOnline is the client's explicit "I am ready to receive"
// signal: mark online, join rooms, announce presence. The client-supplied
// user id hint is ignored; the handshake identity is authoritative.
func (h *SocketHandler) handleDeclareOnline(ctx context.Context, c *Client, data json.RawMessage) {
	var hint DeclareOnline
	if len(data) > 0 {
		if err := json.Unmarshal(data, &hint); err == nil && hint.UserID != "" && hint.UserID != c.UserID() {
			h.logger.Warn("online declaration hint does not match handshake identity",
				zap.String("hint", hint.UserID),
				zap.String("user_id", c.UserID()))
		}
	}

	h.registry.MarkOnline(ctx, c.UserID(), c.SocketID())
	h.hub.Join(c, c.UserID())
	if c.Role() == domain.RoleAdmin {
		h.hub.Join(c, AdminRoom)
	}

	if frame, err := EncodeEvent(EventUserOnline, c.UserID()); err == nil {
		h.hub.SendToAllExcept(c, frame)
	}

	// Hydrate the declarer's presence view.
	h.handleOnlineUsers(c)
}

func (h *SocketHandler) handleOnlineUsers(c *Client) {
	frame, err := EncodeEvent(EventOnlineUsers, h.registry.OnlineUserIDs())
	if err != nil {
		h.logger.Error("encode online users snapshot", zap.Error(err))
		return
	}
	c.Send(frame)
}

// outboundMessage is the relay-outbound-message payload.
type outboundMessage struct {
	ConversationID string             `json:"conversationId"`
	Message        domain.ChatMessage `json:"message"`
}

func (h *SocketHandler) handleOutboundMessage(ctx context.Context, c *Client, data json.RawMessage) {
	var out outboundMessage
	if err := json.Unmarshal(data, &out); err != nil {
		h.logger.Debug("malformed outbound message", zap.Error(err))
		return
	}
	if out.ConversationID == "" {
		return
	}

	// The sender is always the connection's identity, whatever the payload
	// claims.
	msg := out.Message
	msg.SenderID = c.UserID()
	msg.ConversationID = out.ConversationID
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	participants, err := h.conversations.Participants(ctx, out.ConversationID)
	if err != nil {
		h.logger.Warn("resolve conversation participants",
			zap.String("conversation_id", out.ConversationID),
			zap.Error(err))
		return
	}

	h.relay.RelayMessage(participants, c.UserID(), msg)
}

// finish tears the connection down. The registry's ownership check makes the
// removal a no-op when a newer session for the same user already replaced
// this socket.
func (h *SocketHandler) finish(ctx context.Context, c *Client) {
	h.hub.Unregister(c)
	c.Close()
	h.metrics.ConnectionClosed()

	userID, removed := h.registry.MarkOffline(ctx, c.SocketID())
	if !removed {
		return
	}
	if frame, err := EncodeEvent(EventUserOffline, userID); err == nil {
		h.hub.SendToAll(frame)
	}
	h.logger.Info("connection closed",
		zap.String("socket_id", c.SocketID()),
		zap.String("user_id", userID))
}

func (h *SocketHandler) reject(conn socketConn, authErr error) {
	code := auth.RejectionCode(authErr)
	h.logger.Warn("handshake rejected", zap.String("code", code), zap.Error(authErr))

	if frame, err := EncodeEvent(EventConnectError, Rejection{Code: code, Message: authErr.Error()}); err == nil {
		_ = conn.WriteMessage(websocket.TextMessage, frame)
	}
	_ = conn.Close()
}
