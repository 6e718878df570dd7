package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message errors.
var (
	ErrMissingMessageID = errors.New("message id is required")
	ErrMissingSender    = errors.New("message sender is required")
	ErrEmptyText        = errors.New("message text is required")
	ErrMissingSentAt    = errors.New("message sent time is required")
)

// Message is a single chat message inside a conversation.
//
// IDs are random UUIDs rather than emission timestamps so that two
// participants generating ids independently cannot collide within one
// clock tick.
type Message struct {
	ID          string     `json:"id"`
	SenderID    string     `json:"senderId"`
	SenderName  string     `json:"senderName"`
	FromSupport bool       `json:"isFromSupport"`
	Text        string     `json:"text"`
	SentAt      time.Time  `json:"sentAt"`
	Edited      bool       `json:"isEdited"`
	EditedAt    *time.Time `json:"editedAt,omitempty"`
}

// NewMessage builds a message authored by the given identity at the
// given instant.
func NewMessage(sender Identity, text string, at time.Time) (Message, error) {
	if err := sender.Validate(); err != nil {
		return Message{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyText
	}
	return Message{
		ID:          uuid.NewString(),
		SenderID:    sender.ID,
		SenderName:  sender.DisplayName,
		FromSupport: sender.Role == RoleSupport,
		Text:        text,
		SentAt:      at.UTC(),
	}, nil
}

// Validate checks the message for persistence.
func (m Message) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrMissingMessageID
	}
	if strings.TrimSpace(m.SenderID) == "" {
		return ErrMissingSender
	}
	if strings.TrimSpace(m.Text) == "" {
		return ErrEmptyText
	}
	if m.SentAt.IsZero() {
		return ErrMissingSentAt
	}
	return nil
}
