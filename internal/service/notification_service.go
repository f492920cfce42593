package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-realtime/internal/domain"
	"github.com/spec-kit/logistics-realtime/internal/events"
	"github.com/spec-kit/logistics-realtime/internal/realtime"
)

// NotificationService translates marketplace domain events into realtime
// notifications and hands them to the fanout emitter. It builds payloads;
// the emitter only routes them.
type NotificationService struct {
	dispatcher events.Dispatcher
	emitter    *realtime.Emitter
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, emitter *realtime.Emitter, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		emitter:    emitter,
		logger:     logger.With(zap.String("component", "notification_service")),
	}
}

// RegisterHandlers subscribes to domain events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBidCreated, n.handleBidCreated)
	n.dispatcher.Subscribe(events.EventBidAccepted, n.handleBidAccepted)
	n.dispatcher.Subscribe(events.EventBidRejected, n.handleBidRejected)
	n.dispatcher.Subscribe(events.EventShipmentCreated, n.handleShipmentCreated)
	n.dispatcher.Subscribe(events.EventShipmentDelivered, n.handleShipmentDelivered)
	n.dispatcher.Subscribe(events.EventPaymentReceived, n.handlePaymentReceived)
}

// Deliver pushes a notification to the target user's channel and, for
// admin-relevant types, additionally onto the admin channel. The payload is
// not persisted here; offline recipients miss the live push.
func (n *NotificationService) Deliver(ctx context.Context, userID string, notification domain.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	if notification.Priority == "" {
		notification.Priority = domain.PriorityNormal
	}
	if notification.Status == "" {
		notification.Status = domain.NotificationUnread
	}

	if err := n.emitter.EmitToUser(userID, realtime.EventNewNotification, notification); err != nil {
		return err
	}
	if notification.Type.AdminRelevant() {
		if err := n.emitter.EmitToAdmins(realtime.EventNewNotification, notification); err != nil {
			return err
		}
	}

	n.logger.Debug("notification delivered",
		zap.String("user_id", userID),
		zap.String("type", string(notification.Type)))
	return nil
}

func (n *NotificationService) handleBidCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BidPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	return n.Deliver(ctx, payload.ShipmentOwnerID, domain.Notification{
		Type:     domain.NotificationBidReceived,
		Title:    "New bid on your shipment",
		Message:  fmt.Sprintf("A provider placed a bid of %.2f on your shipment.", payload.Amount),
		Priority: domain.PriorityHigh,
		RelatedEntity: &domain.RelatedEntity{
			Type: "bid",
			ID:   payload.BidID,
		},
		Actions: []domain.NotificationAction{
			{Label: "View bid", Action: "view", URL: "/shipments/" + event.ShipmentID + "/bids/" + payload.BidID, Method: "GET"},
		},
	})
}

func (n *NotificationService) handleBidAccepted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BidPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	if err := n.Deliver(ctx, payload.ProviderID, domain.Notification{
		Type:     domain.NotificationBidAccepted,
		Title:    "Your bid was accepted",
		Message:  "The shipper accepted your bid. You can now arrange pickup.",
		Priority: domain.PriorityHigh,
		RelatedEntity: &domain.RelatedEntity{
			Type: "bid",
			ID:   payload.BidID,
		},
	}); err != nil {
		return err
	}

	// Both parties see the bid state change in their open views.
	return n.emitter.EmitToUsers(
		[]string{payload.ShipmentOwnerID, payload.ProviderID},
		realtime.EventBidUpdated, event)
}

func (n *NotificationService) handleBidRejected(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BidPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	return n.Deliver(ctx, payload.ProviderID, domain.Notification{
		Type:    domain.NotificationBidRejected,
		Title:   "Your bid was rejected",
		Message: "The shipper chose another offer.",
		RelatedEntity: &domain.RelatedEntity{
			Type: "bid",
			ID:   payload.BidID,
		},
	})
}

func (n *NotificationService) handleShipmentCreated(ctx context.Context, event events.Event) error {
	// New shipments are broadcast so provider dashboards refresh live.
	return n.emitter.EmitToAll(realtime.EventNewShipment, event)
}

func (n *NotificationService) handleShipmentDelivered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ShipmentPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	if err := n.Deliver(ctx, payload.OwnerID, domain.Notification{
		Type:     domain.NotificationShipmentDelivered,
		Title:    "Shipment delivered",
		Message:  fmt.Sprintf("%q was marked as delivered.", payload.Title),
		Priority: domain.PriorityHigh,
		RelatedEntity: &domain.RelatedEntity{
			Type: "shipment",
			ID:   event.ShipmentID,
		},
	}); err != nil {
		return err
	}

	return n.emitter.EmitToUser(payload.OwnerID, realtime.EventShipmentUpdated, event)
}

func (n *NotificationService) handlePaymentReceived(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PaymentPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	// payment_received is admin relevant, so Deliver fans it onto the admin
	// channel as well.
	return n.Deliver(ctx, payload.PayeeID, domain.Notification{
		Type:     domain.NotificationPaymentReceived,
		Title:    "Payment received",
		Message:  fmt.Sprintf("A payment of %.2f was received.", payload.Amount),
		Priority: domain.PriorityHigh,
		RelatedEntity: &domain.RelatedEntity{
			Type: "payment",
			ID:   payload.PaymentID,
		},
	})
}
