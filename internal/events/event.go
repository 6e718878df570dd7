package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType categorizes change notifications emitted by the chat core.
type EventType string

const (
	// Conversation events
	EventTypeConversationsChanged EventType = "conversations.changed"
	EventTypeConversationCreated  EventType = "conversation.created"

	// Message events
	EventTypeMessageSent    EventType = "message.sent"
	EventTypeMessageEdited  EventType = "message.edited"
	EventTypeMessageDeleted EventType = "message.deleted"

	// Unread badge events
	EventTypeUnreadChanged EventType = "unread.changed"
)

// Event is a single change notification.
type Event struct {
	// ID uniquely identifies this event.
	ID string `json:"id"`

	// Type is the kind of change.
	Type EventType `json:"type"`

	// IdentityID is the viewer whose state changed.
	IdentityID string `json:"identityId"`

	// ConversationID is the affected conversation, if any.
	ConversationID string `json:"conversationId,omitempty"`

	// Timestamp is when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// Payload carries optional event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(eventType EventType, identityID, conversationID string) *Event {
	return &Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		IdentityID:     identityID,
		ConversationID: conversationID,
		Timestamp:      time.Now().UTC(),
	}
}
