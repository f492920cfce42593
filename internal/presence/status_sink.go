package presence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusSink receives best-effort durable online-status updates. Errors are
// logged and swallowed by the registry; implementations must respect ctx.
type StatusSink interface {
	SetOnline(ctx context.Context, userID string, online bool, at time.Time) error
}

const (
	onlineHashKey   = "presence:online"
	lastSeenHashKey = "presence:last_seen"
)

// RedisSink persists online status into redis hashes so other processes can
// read a near-realtime presence view.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink wraps a connected client.
func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

// SetOnline updates the presence hashes.
func (s *RedisSink) SetOnline(ctx context.Context, userID string, online bool, at time.Time) error {
	pipe := s.client.Pipeline()
	if online {
		pipe.HSet(ctx, onlineHashKey, userID, "1")
	} else {
		pipe.HDel(ctx, onlineHashKey, userID)
	}
	pipe.HSet(ctx, lastSeenHashKey, userID, at.Format(time.RFC3339))
	_, err := pipe.Exec(ctx)
	return err
}

// UserStatusStore is the slice of the user repository the repository sink
// needs.
type UserStatusStore interface {
	SetOnlineStatus(ctx context.Context, id string, online bool, at time.Time) error
}

// RepositorySink mirrors presence transitions into the users table.
type RepositorySink struct {
	users UserStatusStore
}

// NewRepositorySink wraps a user repository.
func NewRepositorySink(users UserStatusStore) *RepositorySink {
	return &RepositorySink{users: users}
}

// SetOnline updates the user row.
func (s *RepositorySink) SetOnline(ctx context.Context, userID string, online bool, at time.Time) error {
	return s.users.SetOnlineStatus(ctx, userID, online, at)
}

// MultiSink fans a status update out to several sinks. Each sink is
// attempted; the first error is returned after all ran.
type MultiSink []StatusSink

// SetOnline forwards to every member sink.
func (m MultiSink) SetOnline(ctx context.Context, userID string, online bool, at time.Time) error {
	var firstErr error
	for _, sink := range m {
		if err := sink.SetOnline(ctx, userID, online, at); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
