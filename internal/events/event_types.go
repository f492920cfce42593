package events

import (
	"time"
)

// EventType enumerates domain events pushed into the gateway by the
// marketplace backend.
type EventType string

const (
	EventBidCreated        EventType = "bid_created"
	EventBidAccepted       EventType = "bid_accepted"
	EventBidRejected       EventType = "bid_rejected"
	EventShipmentCreated   EventType = "shipment_created"
	EventShipmentDelivered EventType = "shipment_delivered"
	EventPaymentReceived   EventType = "payment_received"
)

// Event is the unit external collaborators publish after persisting state.
// The gateway owns only the transient delivery attempt.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ShipmentID  string      `json:"shipment_id"`
	ActorUserID string      `json:"actor_user_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// BidPayload carries bid event details.
type BidPayload struct {
	BidID           string  `json:"bid_id"`
	ShipmentOwnerID string  `json:"shipment_owner_id"`
	ProviderID      string  `json:"provider_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency,omitempty"`
}

// ShipmentPayload carries shipment event details.
type ShipmentPayload struct {
	OwnerID     string  `json:"owner_id"`
	ProviderID  *string `json:"provider_id,omitempty"`
	Title       string  `json:"title"`
	Origin      string  `json:"origin,omitempty"`
	Destination string  `json:"destination,omitempty"`
}

// PaymentPayload carries payment event details.
type PaymentPayload struct {
	PaymentID  string  `json:"payment_id"`
	PayeeID    string  `json:"payee_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency,omitempty"`
	ShipmentID string  `json:"shipment_id,omitempty"`
}
