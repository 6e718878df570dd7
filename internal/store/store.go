// Package store provides durable, per-identity keyed persistence for
// conversation lists and unread totals.
//
// The persisted namespace is flat: one slot per key, no transactions
// across keys. Every update is a read-modify-write of a whole slot, and
// serializing concurrent writers to one identity's slot is the caller's
// job, not the store's.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/models"
)

// Slot key namespace. Kept stable so file and SQLite backends remain
// interchangeable over the same logical schema.
const (
	conversationsKeyPrefix = "chat_conversations_"
	unreadKeyPrefix        = "chat_unread_"
)

// Store errors.
var (
	ErrEmptyIdentity = errors.New("identity id is required")
)

// SlotStore is the persistence contract consumed by the chat core.
type SlotStore interface {
	// LoadConversations returns the persisted conversation list for an
	// identity, or an empty list if none exists. Corrupt slot contents
	// decode to an empty list, never an error.
	LoadConversations(ctx context.Context, identityID string) ([]models.Conversation, error)

	// SaveConversations atomically replaces the persisted list.
	SaveConversations(ctx context.Context, identityID string, conversations []models.Conversation) error

	// LoadUnread returns the persisted unread total, or zero if none
	// exists or the slot is corrupt.
	LoadUnread(ctx context.Context, identityID string) (int, error)

	// SaveUnread atomically replaces the persisted unread total.
	SaveUnread(ctx context.Context, identityID string, total int) error
}

// ConversationsKey returns the slot key for an identity's conversation list.
func ConversationsKey(identityID string) string {
	return conversationsKeyPrefix + identityID
}

// UnreadKey returns the slot key for an identity's unread total.
func UnreadKey(identityID string) string {
	return unreadKeyPrefix + identityID
}

func validIdentity(identityID string) error {
	if strings.TrimSpace(identityID) == "" {
		return ErrEmptyIdentity
	}
	return nil
}

// decodeConversations deserializes a conversation slot. Malformed data is
// treated as an empty list so a bad slot degrades to an empty view
// instead of bricking the session.
func decodeConversations(data []byte, key string, logger zerolog.Logger) []models.Conversation {
	if len(data) == 0 {
		return nil
	}
	var conversations []models.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("corrupt conversation slot, treating as empty")
		return nil
	}
	return conversations
}

// decodeUnread deserializes an unread slot. Malformed or negative values
// decode to zero.
func decodeUnread(data []byte, key string, logger zerolog.Logger) int {
	value := strings.TrimSpace(string(data))
	if value == "" {
		return 0
	}
	total, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("corrupt unread slot, treating as zero")
		return 0
	}
	if total < 0 {
		return 0
	}
	return total
}

func encodeConversations(conversations []models.Conversation) ([]byte, error) {
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	return json.Marshal(conversations)
}
