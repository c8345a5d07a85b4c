package domain

import "time"

// MessageDirection tells whether a message came from or went to a user.
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

// Message delivery states.
const (
	MessageStatusReceived = "received"
	MessageStatusSent     = "sent"
	MessageStatusFailed   = "failed"
)

// Message is a record of one message exchanged over the messaging channel.
type Message struct {
	ID        string
	TaskID    *string
	UserID    *string
	Direction MessageDirection
	Content   string
	Status    string
	CreatedAt time.Time
}
