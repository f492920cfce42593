package realtime

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/auth"
	"github.com/spec-kit/logistics-realtime/internal/domain"
)

// fakeConn records written frames in place of a live websocket.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func newTestClient(userID string, role domain.Role) *Client {
	identity := auth.Identity{UserID: userID, Role: role}
	return NewClient(uuid.NewString(), identity, &fakeConn{}, 16, zap.NewNop())
}

// recvEvent pops the next queued frame off the client's send buffer.
func recvEvent(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case frame := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected a frame, got none")
		return Envelope{}
	}
}

// requireNoEvent asserts the client's send buffer is empty.
func requireNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case frame := <-c.send:
		t.Fatalf("expected no frame, got %s", frame)
	default:
	}
}

// drainEvents empties the client's send buffer, returning decoded frames.
func drainEvents(t *testing.T, c *Client) []Envelope {
	t.Helper()
	var out []Envelope
	for {
		select {
		case frame := <-c.send:
			var env Envelope
			require.NoError(t, json.Unmarshal(frame, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}
