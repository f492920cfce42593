package domain

import "time"

// NotificationType enumerates domain event kinds delivered to clients.
type NotificationType string

const (
	NotificationBidReceived       NotificationType = "bid_received"
	NotificationBidAccepted       NotificationType = "bid_accepted"
	NotificationBidRejected       NotificationType = "bid_rejected"
	NotificationShipmentCreated   NotificationType = "shipment_created"
	NotificationShipmentDelivered NotificationType = "shipment_delivered"
	NotificationPaymentReceived   NotificationType = "payment_received"
	NotificationSystemAlert       NotificationType = "system_alert"
	NotificationAdminAlert        NotificationType = "admin_alert"
)

// AdminRelevant reports whether notifications of this type are additionally
// delivered on the admin channel. Explicit classification on the closed enum;
// adding a type means deciding its admin relevance here.
func (t NotificationType) AdminRelevant() bool {
	switch t {
	case NotificationSystemAlert, NotificationAdminAlert, NotificationPaymentReceived:
		return true
	}
	return false
}

// NotificationPriority orders notifications for client rendering.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityNormal NotificationPriority = "NORMAL"
	PriorityHigh   NotificationPriority = "HIGH"
	PriorityUrgent NotificationPriority = "URGENT"
)

// NotificationStatus is the read state the client renders.
type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "UNREAD"
	NotificationRead   NotificationStatus = "READ"
)

// RelatedEntity points the client at the domain object the notification is
// about.
type RelatedEntity struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// NotificationAction is a client-side call to action attached to a
// notification.
type NotificationAction struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	URL    string `json:"url"`
	Method string `json:"method,omitempty"`
}

// Notification is the unit the fanout emitter transports. The gateway never
// persists it; durable storage is the caller's responsibility.
type Notification struct {
	ID            string               `json:"id"`
	Type          NotificationType     `json:"type"`
	Title         string               `json:"title"`
	Message       string               `json:"message"`
	Priority      NotificationPriority `json:"priority"`
	Status        NotificationStatus   `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
	RelatedEntity *RelatedEntity       `json:"relatedEntity,omitempty"`
	Metadata      map[string]any       `json:"metadata,omitempty"`
	Actions       []NotificationAction `json:"actions,omitempty"`
}
