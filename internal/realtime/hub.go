package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// AdminRoom is the shared channel every admin connection joins in addition
// to its personal room.
const AdminRoom = "admins"

// Hub owns room membership and the socket-id index. Rooms are named by user
// id (plus the shared admin room); callers address rooms, never sockets,
// except through the relay's registry path.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client              // socketID -> client
	rooms   map[string]map[*Client]struct{} // room -> members

	logger *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]struct{}),
		logger:  logger.With(zap.String("component", "realtime_hub")),
	}
}

// Register indexes an authenticated client. Registration alone joins no
// rooms; that happens when the client declares itself online.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.SocketID()] = c
}

// Unregister removes the client from the index and every room it joined.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c.SocketID())
	for room, members := range h.rooms {
		if _, ok := members[c]; !ok {
			continue
		}
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Join adds the client to a room. Idempotent: re-joining is a no-op.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	if _, joined := members[c]; joined {
		return
	}
	members[c] = struct{}{}
	h.logger.Debug("joined room",
		zap.String("room", room),
		zap.String("socket_id", c.SocketID()),
		zap.Int("members", len(members)))
}

// Client looks up a live connection by its socket id.
func (h *Hub) Client(socketID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[socketID]
	return c, ok
}

// SendToRoom delivers a payload to every member of a room and returns the
// number of queued deliveries. An empty room is a silent no-op.
func (h *Hub) SendToRoom(room string, payload []byte) int {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range members {
		if c.Send(payload) {
			sent++
		}
	}
	return sent
}

// SendToAll delivers a payload to every registered connection.
func (h *Hub) SendToAll(payload []byte) int {
	return h.SendToAllExcept(nil, payload)
}

// SendToAllExcept delivers to every registered connection but the excluded
// one, used for presence deltas where the subject already knows.
func (h *Hub) SendToAllExcept(except *Client, payload []byte) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		if c == except {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if c.Send(payload) {
			sent++
		}
	}
	return sent
}

// RoomSize reports a room's membership count, for diagnostics only.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ConnectionCount reports the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
