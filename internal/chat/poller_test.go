package chat

import (
	"context"
	"testing"
	"time"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/store"
)

func TestDefaultPollerConfig(t *testing.T) {
	config := DefaultPollerConfig()

	if config.Interval <= 0 {
		t.Error("expected positive Interval")
	}
	if config.Interval < time.Second {
		t.Error("expected an interval in seconds, not milliseconds")
	}
}

func TestPollerStartStop(t *testing.T) {
	ctx := context.Background()
	slots, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	service, err := NewService(ctx, testSupport, slots)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	poller := NewPoller(PollerConfig{Interval: 10 * time.Millisecond}, service)

	if err := poller.Stop(); err != ErrPollerNotRunning {
		t.Errorf("Stop before start: got %v, want ErrPollerNotRunning", err)
	}
	if err := poller.PollNow(); err != ErrPollerNotRunning {
		t.Errorf("PollNow before start: got %v, want ErrPollerNotRunning", err)
	}

	if err := poller.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !poller.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if err := poller.Start(ctx); err != ErrPollerAlreadyRunning {
		t.Errorf("second Start: got %v, want ErrPollerAlreadyRunning", err)
	}

	if err := poller.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if poller.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestPollerObservesExternalWrite(t *testing.T) {
	ctx := context.Background()
	slots, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	support, err := NewService(ctx, testSupport, slots)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	customer, err := NewService(ctx, testCustomer, slots, WithSupportPeer(testSupport))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	poller := NewPoller(PollerConfig{Interval: 10 * time.Millisecond}, support)
	if err := poller.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer poller.Stop()

	if _, err := customer.SendMessage(ctx, testSupport, "Bonjour"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for support.UnreadTotal() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("poller never merged the external write, unread = %d", support.UnreadTotal())
		}
		time.Sleep(5 * time.Millisecond)
	}

	conversation, ok := support.Conversation("u1")
	if !ok {
		t.Fatal("conversation u1 not merged")
	}
	if conversation.LastMessage != "Bonjour" {
		t.Errorf("LastMessage = %q, want %q", conversation.LastMessage, "Bonjour")
	}
}
