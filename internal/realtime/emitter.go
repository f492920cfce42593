package realtime

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/observability"
)

// ErrNotInitialized is returned when the shared emitter is used before the
// transport is wired. That is a startup-ordering defect in the caller and is
// surfaced loudly rather than swallowed.
var ErrNotInitialized = errors.New("realtime emitter not initialized")

// Emitter is the single chokepoint other subsystems call to push an event to
// one user, a set of users, the admins, or everyone. Delivery is
// fire-and-forget and at-most-once: an offline target is a silent no-op.
// Payloads pass through unmodified.
type Emitter struct {
	hub     *Hub
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewEmitter wires the fanout over a hub.
func NewEmitter(hub *Hub, metrics *observability.Metrics, logger *zap.Logger) *Emitter {
	return &Emitter{
		hub:     hub,
		metrics: metrics,
		logger:  logger.With(zap.String("component", "realtime_emitter")),
	}
}

// EmitToUser delivers an event to the user's personal room.
func (e *Emitter) EmitToUser(userID, event string, payload any) error {
	frame, err := EncodeEvent(event, payload)
	if err != nil {
		return err
	}
	e.record(event, e.hub.SendToRoom(userID, frame))
	return nil
}

// EmitToUsers delivers an event to each listed user's room.
func (e *Emitter) EmitToUsers(userIDs []string, event string, payload any) error {
	frame, err := EncodeEvent(event, payload)
	if err != nil {
		return err
	}
	sent := 0
	for _, userID := range userIDs {
		sent += e.hub.SendToRoom(userID, frame)
	}
	e.record(event, sent)
	return nil
}

// EmitToAdmins delivers an event on the shared admin channel.
func (e *Emitter) EmitToAdmins(event string, payload any) error {
	frame, err := EncodeEvent(event, payload)
	if err != nil {
		return err
	}
	e.record(event, e.hub.SendToRoom(AdminRoom, frame))
	return nil
}

// EmitToAll broadcasts an event to every connected client.
func (e *Emitter) EmitToAll(event string, payload any) error {
	frame, err := EncodeEvent(event, payload)
	if err != nil {
		return err
	}
	e.record(event, e.hub.SendToAll(frame))
	return nil
}

func (e *Emitter) record(event string, sent int) {
	if sent == 0 {
		e.metrics.RecordDrop(event)
		e.logger.Debug("no live recipients", zap.String("event", event))
		return
	}
	e.metrics.RecordDelivery(event, sent)
}

var (
	sharedMu sync.RWMutex
	shared   *Emitter
)

// Init installs the process-wide emitter. Called once during startup after
// the transport exists.
func Init(e *Emitter) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared = e
}

// Reset clears the shared emitter. Used on shutdown and by tests.
func Reset() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared = nil
}

// Shared returns the process-wide emitter, failing fast when startup wiring
// has not run yet.
func Shared() (*Emitter, error) {
	sharedMu.RLock()
	defer sharedMu.RUnlock()
	if shared == nil {
		return nil, ErrNotInitialized
	}
	return shared, nil
}

// EmitToUser routes through the shared emitter.
func EmitToUser(userID, event string, payload any) error {
	e, err := Shared()
	if err != nil {
		return err
	}
	return e.EmitToUser(userID, event, payload)
}

// EmitToUsers routes through the shared emitter.
func EmitToUsers(userIDs []string, event string, payload any) error {
	e, err := Shared()
	if err != nil {
		return err
	}
	return e.EmitToUsers(userIDs, event, payload)
}

// EmitToAdmins routes through the shared emitter.
func EmitToAdmins(event string, payload any) error {
	e, err := Shared()
	if err != nil {
		return err
	}
	return e.EmitToAdmins(event, payload)
}

// EmitToAll routes through the shared emitter.
func EmitToAll(event string, payload any) error {
	e, err := Shared()
	if err != nil {
		return err
	}
	return e.EmitToAll(event, payload)
}
