package domain

import "time"

// ChatMessage is a peer-to-peer message relayed between conversation
// participants. Persistence happens upstream; the gateway only carries the
// live delivery attempt.
type ChatMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sentAt"`
}

// Conversation groups the participants a relayed message may reach.
type Conversation struct {
	ID             string
	ShipmentID     *string
	ParticipantIDs []string
	CreatedAt      time.Time
}
