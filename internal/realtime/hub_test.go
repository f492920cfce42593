package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/domain"
)

func TestJoinIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient("user-a", domain.RoleUser)
	hub.Register(c)

	hub.Join(c, "user-a")
	hub.Join(c, "user-a")
	hub.Join(c, "user-a")

	assert.Equal(t, 1, hub.RoomSize("user-a"))

	sent := hub.SendToRoom("user-a", []byte(`{"event":"ping"}`))
	assert.Equal(t, 1, sent)
	recvEvent(t, c)
	requireNoEvent(t, c)
}

func TestSendToEmptyRoomIsNoOp(t *testing.T) {
	hub := NewHub(zap.NewNop())

	sent := hub.SendToRoom("nobody-home", []byte(`{"event":"ping"}`))
	assert.Zero(t, sent)
}

func TestUnregisterRemovesFromAllRooms(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient("admin-1", domain.RoleAdmin)
	hub.Register(c)
	hub.Join(c, "admin-1")
	hub.Join(c, AdminRoom)

	hub.Unregister(c)

	assert.Zero(t, hub.RoomSize("admin-1"))
	assert.Zero(t, hub.RoomSize(AdminRoom))
	assert.Zero(t, hub.ConnectionCount())
	assert.Zero(t, hub.SendToRoom("admin-1", []byte(`{}`)))

	_, ok := hub.Client(c.SocketID())
	assert.False(t, ok)
}

func TestSendToAllExceptSkipsSubject(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := newTestClient("user-a", domain.RoleUser)
	b := newTestClient("user-b", domain.RoleUser)
	hub.Register(a)
	hub.Register(b)

	sent := hub.SendToAllExcept(a, []byte(`{"event":"user-online"}`))
	require.Equal(t, 1, sent)

	recvEvent(t, b)
	requireNoEvent(t, a)
}

func TestRoomSharedByMultipleAdmins(t *testing.T) {
	hub := NewHub(zap.NewNop())
	first := newTestClient("admin-1", domain.RoleAdmin)
	second := newTestClient("admin-2", domain.RoleAdmin)
	hub.Register(first)
	hub.Register(second)
	hub.Join(first, AdminRoom)
	hub.Join(second, AdminRoom)

	sent := hub.SendToRoom(AdminRoom, []byte(`{"event":"new-notification"}`))
	assert.Equal(t, 2, sent)
	recvEvent(t, first)
	recvEvent(t, second)
}
