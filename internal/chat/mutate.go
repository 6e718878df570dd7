// Package chat implements the conversation synchronization core: pure
// conversation mutations, the per-identity service, the dual-write
// propagator, and the reconciliation poller.
package chat

import (
	"time"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/models"
)

// Append pushes a message onto the conversation and recomputes the
// derived fields. The unread counter increments only when the message
// was authored by the opposite role of the viewing side; a participant
// never increments their own unread counter for their own message.
func Append(conversation models.Conversation, message models.Message, viewer models.Role) models.Conversation {
	next := conversation.Clone()
	next.Messages = append(next.Messages, message)
	next.LastMessage = message.Text
	next.LastActivityAt = message.SentAt

	authoredBySupport := message.FromSupport
	if (authoredBySupport && viewer == models.RoleCustomer) ||
		(!authoredBySupport && viewer == models.RoleSupport) {
		next.UnreadCount++
	}
	return next
}

// Edit updates a message's text in place. A missing message id is a
// silent no-op: by the time a user acts on a message it may already have
// been removed by a concurrent merge. Unread counts are never touched.
func Edit(conversation models.Conversation, messageID, text string, now time.Time) models.Conversation {
	idx := conversation.FindMessage(messageID)
	if idx < 0 {
		return conversation
	}

	next := conversation.Clone()
	editedAt := now.UTC()
	next.Messages[idx].Text = text
	next.Messages[idx].Edited = true
	next.Messages[idx].EditedAt = &editedAt
	next.LastActivityAt = editedAt

	if idx == len(next.Messages)-1 {
		next.LastMessage = text
	}
	return next
}

// Remove deletes a message and recomputes the preview from the new last
// surviving message, or clears it when the conversation becomes empty.
// A missing message id is a silent no-op. Unread counts are never touched.
func Remove(conversation models.Conversation, messageID string) models.Conversation {
	idx := conversation.FindMessage(messageID)
	if idx < 0 {
		return conversation
	}

	next := conversation.Clone()
	next.Messages = append(next.Messages[:idx], next.Messages[idx+1:]...)

	if len(next.Messages) == 0 {
		next.LastMessage = ""
		next.LastActivityAt = time.Time{}
		return next
	}

	last := next.Messages[len(next.Messages)-1]
	next.LastMessage = last.Text
	next.LastActivityAt = last.SentAt
	return next
}

// MarkRead acknowledges all messages in the conversation. Idempotent.
func MarkRead(conversation models.Conversation) models.Conversation {
	next := conversation.Clone()
	next.UnreadCount = 0
	return next
}

// TotalUnread sums per-conversation unread counts into the badge total.
func TotalUnread(conversations []models.Conversation) int {
	total := 0
	for _, conversation := range conversations {
		total += conversation.UnreadCount
	}
	return total
}
