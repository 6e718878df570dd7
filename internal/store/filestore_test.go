package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/models"
)

func sampleConversations() []models.Conversation {
	sentAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return []models.Conversation{
		{
			ID:                  "u1",
			ParticipantID:       "u1",
			ParticipantName:     "Aïssatou Diallo",
			ParticipantInitials: "AD",
			LastMessage:         "Bonjour",
			LastActivityAt:      sentAt,
			UnreadCount:         1,
			Messages: []models.Message{
				{
					ID:       "m1",
					SenderID: "u1",
					Text:     "Bonjour",
					SentAt:   sentAt,
				},
			},
		},
	}
}

func TestFileStoreLoadMissingSlot(t *testing.T) {
	ctx := context.Background()
	slots, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	conversations, err := slots.LoadConversations(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadConversations: %v", err)
	}
	if len(conversations) != 0 {
		t.Errorf("expected empty list, got %d conversations", len(conversations))
	}

	total, err := slots.LoadUnread(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadUnread: %v", err)
	}
	if total != 0 {
		t.Errorf("LoadUnread = %d, want 0", total)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	slots, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	saved := sampleConversations()
	if err := slots.SaveConversations(ctx, "u1", saved); err != nil {
		t.Fatalf("SaveConversations: %v", err)
	}

	loaded, err := slots.LoadConversations(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadConversations: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("len(loaded) = %d, want 1", len(loaded))
	}
	if loaded[0].LastMessage != "Bonjour" || loaded[0].UnreadCount != 1 {
		t.Errorf("unexpected conversation: %+v", loaded[0])
	}
	// Timestamps must come back as comparable time values.
	if !loaded[0].Messages[0].SentAt.Equal(saved[0].Messages[0].SentAt) {
		t.Errorf("SentAt = %v, want %v", loaded[0].Messages[0].SentAt, saved[0].Messages[0].SentAt)
	}

	if err := slots.SaveUnread(ctx, "u1", 5); err != nil {
		t.Fatalf("SaveUnread: %v", err)
	}
	total, err := slots.LoadUnread(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadUnread: %v", err)
	}
	if total != 5 {
		t.Errorf("LoadUnread = %d, want 5", total)
	}
}

func TestFileStoreSaveReplacesSlot(t *testing.T) {
	ctx := context.Background()
	slots, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := slots.SaveConversations(ctx, "u1", sampleConversations()); err != nil {
		t.Fatalf("SaveConversations: %v", err)
	}
	if err := slots.SaveConversations(ctx, "u1", nil); err != nil {
		t.Fatalf("SaveConversations(empty): %v", err)
	}

	loaded, err := slots.LoadConversations(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadConversations: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected replaced slot to be empty, got %d", len(loaded))
	}
}

func TestFileStoreCorruptSlotsDegradeToEmpty(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	slots, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	writeRaw := func(key, content string) {
		t.Helper()
		path := filepath.Join(root, key+".json")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	writeRaw(ConversationsKey("u1"), "{not json")
	writeRaw(UnreadKey("u1"), "beaucoup")

	conversations, err := slots.LoadConversations(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadConversations: %v", err)
	}
	if len(conversations) != 0 {
		t.Errorf("corrupt slot: expected empty list, got %d", len(conversations))
	}

	total, err := slots.LoadUnread(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadUnread: %v", err)
	}
	if total != 0 {
		t.Errorf("corrupt unread: got %d, want 0", total)
	}
}

func TestFileStoreRejectsEmptyIdentity(t *testing.T) {
	ctx := context.Background()
	slots, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, err := slots.LoadConversations(ctx, "  "); err != ErrEmptyIdentity {
		t.Errorf("LoadConversations: got %v, want ErrEmptyIdentity", err)
	}
	if err := slots.SaveUnread(ctx, "", 1); err != ErrEmptyIdentity {
		t.Errorf("SaveUnread: got %v, want ErrEmptyIdentity", err)
	}
}

func TestFileStoreNegativeUnreadClampsToZero(t *testing.T) {
	ctx := context.Background()
	slots, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := slots.SaveUnread(ctx, "u1", -3); err != nil {
		t.Fatalf("SaveUnread: %v", err)
	}
	total, err := slots.LoadUnread(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadUnread: %v", err)
	}
	if total != 0 {
		t.Errorf("LoadUnread = %d, want 0", total)
	}
}
