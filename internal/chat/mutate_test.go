package chat

import (
	"testing"
	"time"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/models"
)

func customerMessage(id, text string, at time.Time) models.Message {
	return models.Message{
		ID:       id,
		SenderID: "u1",
		Text:     text,
		SentAt:   at,
	}
}

func supportMessage(id, text string, at time.Time) models.Message {
	return models.Message{
		ID:          id,
		SenderID:    "support-1",
		FromSupport: true,
		Text:        text,
		SentAt:      at,
	}
}

func TestAppendUnreadByViewer(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		message    models.Message
		viewer     models.Role
		wantUnread int
	}{
		{
			name:       "customer message on support view increments",
			message:    customerMessage("m1", "bonjour", base),
			viewer:     models.RoleSupport,
			wantUnread: 1,
		},
		{
			name:       "customer message on own view does not increment",
			message:    customerMessage("m1", "bonjour", base),
			viewer:     models.RoleCustomer,
			wantUnread: 0,
		},
		{
			name:       "support message on customer view increments",
			message:    supportMessage("m1", "bonjour", base),
			viewer:     models.RoleCustomer,
			wantUnread: 1,
		},
		{
			name:       "support message on own view does not increment",
			message:    supportMessage("m1", "bonjour", base),
			viewer:     models.RoleSupport,
			wantUnread: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conversation := models.Conversation{ID: "u1", ParticipantID: "u1"}
			got := Append(conversation, tt.message, tt.viewer)

			if got.UnreadCount != tt.wantUnread {
				t.Errorf("UnreadCount = %d, want %d", got.UnreadCount, tt.wantUnread)
			}
			if len(got.Messages) != 1 {
				t.Fatalf("len(Messages) = %d, want 1", len(got.Messages))
			}
			if got.LastMessage != tt.message.Text {
				t.Errorf("LastMessage = %q, want %q", got.LastMessage, tt.message.Text)
			}
			if !got.LastActivityAt.Equal(tt.message.SentAt) {
				t.Errorf("LastActivityAt = %v, want %v", got.LastActivityAt, tt.message.SentAt)
			}
			if conversation.UnreadCount != 0 || len(conversation.Messages) != 0 {
				t.Error("Append mutated its input")
			}
		})
	}
}

func TestAppendPreservesInsertionOrder(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	conversation := models.Conversation{ID: "u1"}
	conversation = Append(conversation, customerMessage("m1", "un", base), models.RoleSupport)
	conversation = Append(conversation, supportMessage("m2", "deux", base.Add(time.Minute)), models.RoleSupport)
	conversation = Append(conversation, customerMessage("m3", "trois", base.Add(2*time.Minute)), models.RoleSupport)

	wantOrder := []string{"m1", "m2", "m3"}
	for idx, id := range wantOrder {
		if conversation.Messages[idx].ID != id {
			t.Fatalf("Messages[%d].ID = %s, want %s", idx, conversation.Messages[idx].ID, id)
		}
	}
	if conversation.UnreadCount != 2 {
		t.Errorf("UnreadCount = %d, want 2", conversation.UnreadCount)
	}
}

func TestEdit(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	editTime := base.Add(5 * time.Minute)

	conversation := models.Conversation{ID: "u1"}
	conversation = Append(conversation, customerMessage("m1", "premier", base), models.RoleSupport)
	conversation = Append(conversation, customerMessage("m2", "dernier", base.Add(time.Minute)), models.RoleSupport)

	t.Run("edit middle message keeps preview", func(t *testing.T) {
		got := Edit(conversation, "m1", "premier corrigé", editTime)

		if got.Messages[0].Text != "premier corrigé" {
			t.Errorf("Text = %q, want edited text", got.Messages[0].Text)
		}
		if !got.Messages[0].Edited {
			t.Error("Edited = false, want true")
		}
		if got.Messages[0].EditedAt == nil || !got.Messages[0].EditedAt.Equal(editTime) {
			t.Errorf("EditedAt = %v, want %v", got.Messages[0].EditedAt, editTime)
		}
		if got.LastMessage != "dernier" {
			t.Errorf("LastMessage = %q, want %q", got.LastMessage, "dernier")
		}
		if got.UnreadCount != conversation.UnreadCount {
			t.Errorf("UnreadCount changed: %d -> %d", conversation.UnreadCount, got.UnreadCount)
		}
	})

	t.Run("edit last message updates preview", func(t *testing.T) {
		got := Edit(conversation, "m2", "dernier corrigé", editTime)

		if got.LastMessage != "dernier corrigé" {
			t.Errorf("LastMessage = %q, want edited text", got.LastMessage)
		}
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		got := Edit(conversation, "missing", "peu importe", editTime)

		if got.Messages[0].Edited || got.Messages[1].Edited {
			t.Error("no-op edit flagged a message as edited")
		}
		if got.LastMessage != conversation.LastMessage {
			t.Errorf("LastMessage = %q, want unchanged", got.LastMessage)
		}
	})
}

func TestRemove(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	build := func() models.Conversation {
		conversation := models.Conversation{ID: "u1"}
		conversation = Append(conversation, customerMessage("m1", "un", base), models.RoleSupport)
		conversation = Append(conversation, customerMessage("m2", "deux", base.Add(time.Minute)), models.RoleSupport)
		return conversation
	}

	t.Run("deleting last message recomputes preview", func(t *testing.T) {
		got := Remove(build(), "m2")

		if len(got.Messages) != 1 {
			t.Fatalf("len(Messages) = %d, want 1", len(got.Messages))
		}
		if got.LastMessage != "un" {
			t.Errorf("LastMessage = %q, want %q", got.LastMessage, "un")
		}
		if !got.LastActivityAt.Equal(base) {
			t.Errorf("LastActivityAt = %v, want %v", got.LastActivityAt, base)
		}
	})

	t.Run("deleting the only remaining message clears preview", func(t *testing.T) {
		got := Remove(Remove(build(), "m2"), "m1")

		if len(got.Messages) != 0 {
			t.Fatalf("len(Messages) = %d, want 0", len(got.Messages))
		}
		if got.LastMessage != "" {
			t.Errorf("LastMessage = %q, want empty", got.LastMessage)
		}
		if !got.LastActivityAt.IsZero() {
			t.Errorf("LastActivityAt = %v, want zero", got.LastActivityAt)
		}
	})

	t.Run("delete does not touch unread", func(t *testing.T) {
		before := build()
		got := Remove(before, "m1")

		if got.UnreadCount != before.UnreadCount {
			t.Errorf("UnreadCount changed: %d -> %d", before.UnreadCount, got.UnreadCount)
		}
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		before := build()
		got := Remove(before, "missing")

		if len(got.Messages) != len(before.Messages) {
			t.Errorf("len(Messages) = %d, want %d", len(got.Messages), len(before.Messages))
		}
	})
}

func TestMarkReadIdempotent(t *testing.T) {
	conversation := models.Conversation{ID: "u1", UnreadCount: 3}

	once := MarkRead(conversation)
	if once.UnreadCount != 0 {
		t.Fatalf("UnreadCount = %d, want 0", once.UnreadCount)
	}

	twice := MarkRead(once)
	if twice.UnreadCount != 0 {
		t.Errorf("second MarkRead: UnreadCount = %d, want 0", twice.UnreadCount)
	}
}

func TestTotalUnread(t *testing.T) {
	conversations := []models.Conversation{
		{ID: "u1", UnreadCount: 2},
		{ID: "u2", UnreadCount: 0},
		{ID: "u3", UnreadCount: 5},
	}

	if got := TotalUnread(conversations); got != 7 {
		t.Errorf("TotalUnread() = %d, want 7", got)
	}
	if got := TotalUnread(nil); got != 0 {
		t.Errorf("TotalUnread(nil) = %d, want 0", got)
	}
}
