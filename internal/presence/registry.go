// Package presence tracks which users currently hold a live websocket
// connection. The in-memory map is the source of truth for realtime
// delivery; the durable sink is advisory and eventually consistent.
package presence

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const sinkQueueSize = 256

// statusUpdate is one durable transition, queued while the registry lock is
// held so the queue order matches the in-memory mutation order.
type statusUpdate struct {
	userID string
	online bool
	at     time.Time
}

// Registry maps user ids to their single live socket id. Last writer wins: a
// reconnecting user replaces their prior entry, and a stale disconnect for an
// already-replaced socket must never remove the newer one.
type Registry struct {
	mu       sync.RWMutex
	byUser   map[string]string // userID -> socketID
	bySocket map[string]string // socketID -> userID

	sink        StatusSink
	sinkTimeout time.Duration
	updates     chan statusUpdate
	closeOnce   sync.Once
	logger      *zap.Logger
}

// NewRegistry builds a registry. sink may be nil when no durable store is
// configured. A non-nil sink gets a dedicated worker so its writes apply in
// the same order the transitions happened; an unordered write could leave the
// durable store saying online after a disconnect.
func NewRegistry(sink StatusSink, sinkTimeout time.Duration, logger *zap.Logger) *Registry {
	if sinkTimeout <= 0 {
		sinkTimeout = 3 * time.Second
	}
	r := &Registry{
		byUser:      make(map[string]string),
		bySocket:    make(map[string]string),
		sink:        sink,
		sinkTimeout: sinkTimeout,
		logger:      logger.With(zap.String("component", "presence_registry")),
	}
	if sink != nil {
		r.updates = make(chan statusUpdate, sinkQueueSize)
		go r.sinkWorker()
	}
	return r
}

// MarkOnline records socketID as the user's live connection, replacing any
// prior entry for the same user. The durable status write happens off the
// caller's path and its failure never affects the in-memory mark.
func (r *Registry) MarkOnline(ctx context.Context, userID, socketID string) {
	r.mu.Lock()
	if prev, ok := r.byUser[userID]; ok && prev != socketID {
		// Second device or rapid reconnect: the old socket loses delivery
		// eligibility even though its transport connection may still be open.
		delete(r.bySocket, prev)
		r.logger.Debug("replaced live socket",
			zap.String("user_id", userID),
			zap.String("old_socket_id", prev),
			zap.String("new_socket_id", socketID))
	}
	r.byUser[userID] = socketID
	r.bySocket[socketID] = userID
	r.enqueueStatus(userID, true)
	r.mu.Unlock()
}

// MarkOffline removes the registry entry owned by socketID. If the user has
// since reconnected on a different socket the entry is left alone and
// removed reports false; that race is an expected outcome, not an error.
func (r *Registry) MarkOffline(ctx context.Context, socketID string) (userID string, removed bool) {
	r.mu.Lock()
	userID, ok := r.bySocket[socketID]
	if !ok {
		r.mu.Unlock()
		return "", false
	}
	if r.byUser[userID] != socketID {
		// Ownership check: a newer session owns the entry now.
		delete(r.bySocket, socketID)
		r.mu.Unlock()
		return "", false
	}
	delete(r.byUser, userID)
	delete(r.bySocket, socketID)
	r.enqueueStatus(userID, false)
	r.mu.Unlock()

	return userID, true
}

// IsOnline reports whether the user has a live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUser[userID]
	return ok
}

// SocketID returns the raw socket handle for a user, used by the message
// relay to target a specific connection instance.
func (r *Registry) SocketID(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	socketID, ok := r.byUser[userID]
	return socketID, ok
}

// OnlineUserIDs returns a snapshot of the currently online user ids.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		ids = append(ids, userID)
	}
	return ids
}

// Close stops the sink worker once it has drained the queued updates.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		if r.updates != nil {
			close(r.updates)
		}
	})
}

// enqueueStatus queues a durable transition. Called with r.mu held. The send
// never blocks; when the queue is full the update is dropped with a warning,
// the store is advisory.
func (r *Registry) enqueueStatus(userID string, online bool) {
	if r.updates == nil {
		return
	}
	select {
	case r.updates <- statusUpdate{userID: userID, online: online, at: time.Now().UTC()}:
	default:
		r.logger.Warn("presence sink queue full, dropping update",
			zap.String("user_id", userID),
			zap.Bool("online", online))
	}
}

// sinkWorker applies queued transitions one at a time with a bounded timeout
// per write, so a slow store can neither stall the connection handlers nor
// reorder a user's online/offline writes.
func (r *Registry) sinkWorker() {
	for upd := range r.updates {
		sinkCtx, cancel := context.WithTimeout(context.Background(), r.sinkTimeout)
		err := r.sink.SetOnline(sinkCtx, upd.userID, upd.online, upd.at)
		cancel()
		if err != nil {
			r.logger.Warn("durable presence update failed",
				zap.String("user_id", upd.userID),
				zap.Bool("online", upd.online),
				zap.Error(err))
		}
	}
}
