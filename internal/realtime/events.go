package realtime

import "encoding/json"

// Events consumed from clients.
const (
	EventDeclareOnline      = "declare-online"
	EventRequestOnlineUsers = "request-online-users"
	EventRelayOutbound      = "relay-outbound-message"
)

// Events emitted to clients.
const (
	EventOnlineUsers     = "online-users"
	EventUserOnline      = "user-online"
	EventUserOffline     = "user-offline"
	EventNewNotification = "new-notification"
	EventReceiveMessage  = "receive-message"
	EventConnectError    = "connect-error"
)

// Domain pass-through events. Payloads are opaque to the gateway.
const (
	EventNewShipment     = "new-shipment"
	EventShipmentUpdated = "shipment-updated"
	EventBidUpdated      = "bid-updated"
)

// Envelope is the wire frame exchanged with clients.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeEvent marshals an event frame.
func EncodeEvent(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Rejection is sent before closing an unauthenticated connection. Code
// distinguishes expired credentials from invalid ones so the client can
// refresh instead of forcing re-login.
type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DeclareOnline is the client's ready signal. The user id hint is accepted
// for wire compatibility but the handshake identity always wins.
type DeclareOnline struct {
	UserID string `json:"userId,omitempty"`
}
