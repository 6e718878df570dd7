package models

import "time"

// Conversation is the ordered message history between one customer and
// the support side. Its ID is always the customer's identity id, on both
// sides of the exchange, so the two mirrored copies key identically.
type Conversation struct {
	ID                  string    `json:"id"`
	ParticipantID       string    `json:"participantId"`
	ParticipantName     string    `json:"participantName"`
	ParticipantInitials string    `json:"participantInitials"`
	LastMessage         string    `json:"lastMessage"`
	LastActivityAt      time.Time `json:"lastActivityAt"`
	UnreadCount         int       `json:"unreadCount"`
	Online              bool      `json:"isOnline"`
	Messages            []Message `json:"messages"`
}

// FindMessage returns the index of the message with the given id,
// or -1 when absent.
func (c Conversation) FindMessage(id string) int {
	for idx, msg := range c.Messages {
		if msg.ID == id {
			return idx
		}
	}
	return -1
}

// Clone returns a deep copy of the conversation.
func (c Conversation) Clone() Conversation {
	copied := c
	if c.Messages != nil {
		copied.Messages = make([]Message, len(c.Messages))
		copy(copied.Messages, c.Messages)
	}
	return copied
}

// CloneConversations deep-copies a conversation list.
func CloneConversations(conversations []Conversation) []Conversation {
	if conversations == nil {
		return nil
	}
	copied := make([]Conversation, len(conversations))
	for idx, conv := range conversations {
		copied[idx] = conv.Clone()
	}
	return copied
}
