package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/auth"
	"github.com/spec-kit/logistics-realtime/internal/domain"
	"github.com/spec-kit/logistics-realtime/internal/events"
	"github.com/spec-kit/logistics-realtime/internal/observability"
	"github.com/spec-kit/logistics-realtime/internal/realtime"
	"github.com/spec-kit/logistics-realtime/internal/service"
)

type captureConn struct {
	mu     sync.Mutex
	frames [][]byte
}

func (c *captureConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, data)
	return nil
}

func (c *captureConn) Close() error { return nil }

func (c *captureConn) envelopes(t *testing.T) []realtime.Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]realtime.Envelope, 0, len(c.frames))
	for _, frame := range c.frames {
		var env realtime.Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		out = append(out, env)
	}
	return out
}

func (c *captureConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

type fixture struct {
	hub        *realtime.Hub
	dispatcher events.Dispatcher
	svc        *service.NotificationService
}

func newFixture() *fixture {
	logger := zap.NewNop()
	hub := realtime.NewHub(logger)
	emitter := realtime.NewEmitter(hub, observability.NewMetrics(), logger)
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc := service.NewNotificationService(dispatcher, emitter, logger)
	svc.RegisterHandlers()
	return &fixture{hub: hub, dispatcher: dispatcher, svc: svc}
}

// connect registers an online-declared client and returns the frame capture.
func (f *fixture) connect(userID string, role domain.Role) *captureConn {
	conn := &captureConn{}
	client := realtime.NewClient(uuid.NewString(), auth.Identity{UserID: userID, Role: role}, conn, 16, zap.NewNop())
	f.hub.Register(client)
	f.hub.Join(client, userID)
	if role == domain.RoleAdmin {
		f.hub.Join(client, realtime.AdminRoom)
	}
	go client.WritePump(time.Second)
	return conn
}

func waitFrames(t *testing.T, conn *captureConn, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return conn.count() >= n },
		time.Second, 10*time.Millisecond)
}

func TestAdminRelevantNotificationIsDualDelivered(t *testing.T) {
	f := newFixture()
	payee := f.connect("provider-1", domain.RoleProvider)
	admin := f.connect("admin-1", domain.RoleAdmin)

	err := f.dispatcher.Publish(context.Background(), events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventPaymentReceived,
		ShipmentID: "ship-1",
		Timestamp:  time.Now().UTC(),
		Payload: events.PaymentPayload{
			PaymentID: "pay-1",
			PayeeID:   "provider-1",
			Amount:    1250.00,
		},
	})
	require.NoError(t, err)

	// Two independent deliveries: the payee's personal channel and the
	// admin broadcast channel.
	waitFrames(t, payee, 1)
	waitFrames(t, admin, 1)

	payeeEnv := payee.envelopes(t)
	adminEnv := admin.envelopes(t)
	assert.Equal(t, realtime.EventNewNotification, payeeEnv[0].Event)
	assert.Equal(t, realtime.EventNewNotification, adminEnv[0].Event)

	var got domain.Notification
	require.NoError(t, json.Unmarshal(payeeEnv[0].Data, &got))
	assert.Equal(t, domain.NotificationPaymentReceived, got.Type)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestBidReceivedNotifiesOwnerNotAdmins(t *testing.T) {
	f := newFixture()
	owner := f.connect("shipper-1", domain.RoleUser)
	admin := f.connect("admin-1", domain.RoleAdmin)

	err := f.dispatcher.Publish(context.Background(), events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventBidCreated,
		ShipmentID: "ship-1",
		Timestamp:  time.Now().UTC(),
		Payload: events.BidPayload{
			BidID:           "bid-1",
			ShipmentOwnerID: "shipper-1",
			ProviderID:      "provider-1",
			Amount:          900,
		},
	})
	require.NoError(t, err)

	waitFrames(t, owner, 1)

	var got domain.Notification
	envs := owner.envelopes(t)
	require.NoError(t, json.Unmarshal(envs[0].Data, &got))
	assert.Equal(t, domain.NotificationBidReceived, got.Type)
	require.NotNil(t, got.RelatedEntity)
	assert.Equal(t, "bid-1", got.RelatedEntity.ID)
	require.NotEmpty(t, got.Actions)

	// bid_received is not admin relevant.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, admin.count())
}

func TestBidAcceptedUpdatesBothParties(t *testing.T) {
	f := newFixture()
	owner := f.connect("shipper-1", domain.RoleUser)
	provider := f.connect("provider-1", domain.RoleProvider)

	err := f.dispatcher.Publish(context.Background(), events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventBidAccepted,
		ShipmentID: "ship-1",
		Timestamp:  time.Now().UTC(),
		Payload: events.BidPayload{
			BidID:           "bid-1",
			ShipmentOwnerID: "shipper-1",
			ProviderID:      "provider-1",
			Amount:          900,
		},
	})
	require.NoError(t, err)

	// Provider gets the notification plus the bid-updated pass-through;
	// the owner only sees bid-updated.
	waitFrames(t, provider, 2)
	waitFrames(t, owner, 1)

	providerEvents := []string{}
	for _, env := range provider.envelopes(t) {
		providerEvents = append(providerEvents, env.Event)
	}
	assert.ElementsMatch(t, []string{realtime.EventNewNotification, realtime.EventBidUpdated}, providerEvents)
	assert.Equal(t, realtime.EventBidUpdated, owner.envelopes(t)[0].Event)
}

func TestShipmentCreatedBroadcastsToAll(t *testing.T) {
	f := newFixture()
	shipper := f.connect("shipper-1", domain.RoleUser)
	provider := f.connect("provider-1", domain.RoleProvider)

	err := f.dispatcher.Publish(context.Background(), events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventShipmentCreated,
		ShipmentID: "ship-9",
		Timestamp:  time.Now().UTC(),
		Payload: events.ShipmentPayload{
			OwnerID: "shipper-1",
			Title:   "Pallets to Rotterdam",
		},
	})
	require.NoError(t, err)

	waitFrames(t, shipper, 1)
	waitFrames(t, provider, 1)
	assert.Equal(t, realtime.EventNewShipment, provider.envelopes(t)[0].Event)
}

func TestDeliverToOfflineUserIsSilent(t *testing.T) {
	f := newFixture()

	err := f.svc.Deliver(context.Background(), "nobody-online", domain.Notification{
		Type:  domain.NotificationSystemAlert,
		Title: "maintenance window",
	})
	assert.NoError(t, err)
}
