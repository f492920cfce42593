package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/logistics-realtime/internal/domain"
	"github.com/spec-kit/logistics-realtime/internal/events"
	apperrors "github.com/spec-kit/logistics-realtime/pkg/util/errorutil"
)

// BidEventRequest is posted by the marketplace backend after persisting a bid
// state change.
type BidEventRequest struct {
	Action          string  `json:"action"` // created | accepted | rejected
	BidID           string  `json:"bid_id"`
	ShipmentID      string  `json:"shipment_id"`
	ShipmentOwnerID string  `json:"shipment_owner_id"`
	ProviderID      string  `json:"provider_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	ActorUserID     string  `json:"actor_user_id"`
}

// Validate checks required fields.
func (r BidEventRequest) Validate() error {
	details := map[string]any{}
	if r.BidID == "" {
		details["bid_id"] = "required"
	}
	if r.ShipmentID == "" {
		details["shipment_id"] = "required"
	}
	if r.ShipmentOwnerID == "" {
		details["shipment_owner_id"] = "required"
	}
	if r.ProviderID == "" {
		details["provider_id"] = "required"
	}
	switch r.Action {
	case "created", "accepted", "rejected":
	default:
		details["action"] = "must be one of created, accepted, rejected"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid bid event", details)
	}
	return nil
}

// ToEvent converts the request into a domain event.
func (r BidEventRequest) ToEvent() events.Event {
	var eventType events.EventType
	switch r.Action {
	case "accepted":
		eventType = events.EventBidAccepted
	case "rejected":
		eventType = events.EventBidRejected
	default:
		eventType = events.EventBidCreated
	}

	return events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ShipmentID:  r.ShipmentID,
		ActorUserID: r.ActorUserID,
		Timestamp:   time.Now().UTC(),
		Payload: events.BidPayload{
			BidID:           r.BidID,
			ShipmentOwnerID: r.ShipmentOwnerID,
			ProviderID:      r.ProviderID,
			Amount:          r.Amount,
			Currency:        r.Currency,
		},
	}
}

// ShipmentEventRequest is posted after a shipment state change.
type ShipmentEventRequest struct {
	Action      string  `json:"action"` // created | delivered
	ShipmentID  string  `json:"shipment_id"`
	OwnerID     string  `json:"owner_id"`
	ProviderID  *string `json:"provider_id"`
	Title       string  `json:"title"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	ActorUserID string  `json:"actor_user_id"`
}

// Validate checks required fields.
func (r ShipmentEventRequest) Validate() error {
	details := map[string]any{}
	if r.ShipmentID == "" {
		details["shipment_id"] = "required"
	}
	if r.OwnerID == "" {
		details["owner_id"] = "required"
	}
	switch r.Action {
	case "created", "delivered":
	default:
		details["action"] = "must be one of created, delivered"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid shipment event", details)
	}
	return nil
}

// ToEvent converts the request into a domain event.
func (r ShipmentEventRequest) ToEvent() events.Event {
	eventType := events.EventShipmentCreated
	if r.Action == "delivered" {
		eventType = events.EventShipmentDelivered
	}

	return events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ShipmentID:  r.ShipmentID,
		ActorUserID: r.ActorUserID,
		Timestamp:   time.Now().UTC(),
		Payload: events.ShipmentPayload{
			OwnerID:     r.OwnerID,
			ProviderID:  r.ProviderID,
			Title:       r.Title,
			Origin:      r.Origin,
			Destination: r.Destination,
		},
	}
}

// PaymentEventRequest is posted after a payment settles.
type PaymentEventRequest struct {
	PaymentID   string  `json:"payment_id"`
	PayeeID     string  `json:"payee_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	ShipmentID  string  `json:"shipment_id"`
	ActorUserID string  `json:"actor_user_id"`
}

// Validate checks required fields.
func (r PaymentEventRequest) Validate() error {
	details := map[string]any{}
	if r.PaymentID == "" {
		details["payment_id"] = "required"
	}
	if r.PayeeID == "" {
		details["payee_id"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid payment event", details)
	}
	return nil
}

// ToEvent converts the request into a domain event.
func (r PaymentEventRequest) ToEvent() events.Event {
	return events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventPaymentReceived,
		ShipmentID:  r.ShipmentID,
		ActorUserID: r.ActorUserID,
		Timestamp:   time.Now().UTC(),
		Payload: events.PaymentPayload{
			PaymentID:  r.PaymentID,
			PayeeID:    r.PayeeID,
			Amount:     r.Amount,
			Currency:   r.Currency,
			ShipmentID: r.ShipmentID,
		},
	}
}

// NotificationRequest delivers an already-built notification payload to one
// user's realtime channel.
type NotificationRequest struct {
	UserID       string              `json:"user_id"`
	Notification domain.Notification `json:"notification"`
}

// Validate checks required fields.
func (r NotificationRequest) Validate() error {
	details := map[string]any{}
	if r.UserID == "" {
		details["user_id"] = "required"
	}
	if r.Notification.Type == "" {
		details["notification.type"] = "required"
	}
	if r.Notification.Title == "" {
		details["notification.title"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid notification", details)
	}
	return nil
}
