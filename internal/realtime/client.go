package realtime

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/auth"
	"github.com/spec-kit/logistics-realtime/internal/domain"
)

// wsConn is the slice of the websocket connection the client needs. Tests
// substitute a capture fake.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one live, authenticated websocket connection. Identity is fixed
// at registration and never reassigned; the disconnect race check in the
// presence registry depends on that.
type Client struct {
	socketID string
	identity auth.Identity

	conn      wsConn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	logger *zap.Logger
}

// NewClient wraps an authenticated connection.
func NewClient(socketID string, identity auth.Identity, conn wsConn, bufferSize int, logger *zap.Logger) *Client {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Client{
		socketID: socketID,
		identity: identity,
		conn:     conn,
		send:     make(chan []byte, bufferSize),
		done:     make(chan struct{}),
		logger:   logger.With(zap.String("socket_id", socketID), zap.String("user_id", identity.UserID)),
	}
}

// SocketID returns the connection's opaque handle.
func (c *Client) SocketID() string { return c.socketID }

// UserID returns the identity resolved at handshake.
func (c *Client) UserID() string { return c.identity.UserID }

// Role returns the caller's marketplace role.
func (c *Client) Role() domain.Role { return c.identity.Role }

// Identity returns the full handshake identity.
func (c *Client) Identity() auth.Identity { return c.identity }

// Send queues a payload for delivery. It never blocks: a full buffer means a
// slow consumer and the frame is dropped, keeping fanout fire-and-forget.
func (c *Client) Send(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		c.logger.Warn("send buffer full, dropping frame")
		return false
	}
}

// WritePump drains the send channel onto the socket. Runs as the
// connection's single writer goroutine.
func (c *Client) WritePump(writeWait time.Duration) {
	defer c.conn.Close() //nolint:errcheck

	for {
		select {
		case payload := <-c.send:
			if err := c.writeFrame(payload, writeWait); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				c.Close()
				return
			}
		case <-c.done:
			// Flush whatever was queued before the close signal.
			for {
				select {
				case payload := <-c.send:
					if err := c.writeFrame(payload, writeWait); err != nil {
						return
					}
				default:
					_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}
		}
	}
}

// Close signals the writer to stop. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Done is closed when the client has shut down.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) writeFrame(payload []byte, writeWait time.Duration) error {
	if deadliner, ok := c.conn.(interface{ SetWriteDeadline(time.Time) error }); ok && writeWait > 0 {
		_ = deadliner.SetWriteDeadline(time.Now().Add(writeWait))
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
