package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/logging"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/models"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/store"
)

// Propagator performs the dual-write half of delivery: when identity A
// sends a message to identity B, the propagator writes the mirrored copy
// into B's slot so that B's next reconciliation tick observes it.
//
// There is no synchronization between this write and B's poll tick;
// delivery latency is bounded only by B's polling interval.
type Propagator struct {
	store  store.SlotStore
	logger zerolog.Logger
}

// NewPropagator creates a propagator over the given slot store.
func NewPropagator(slots store.SlotStore) *Propagator {
	return &Propagator{
		store:  slots,
		logger: logging.Component("propagator"),
	}
}

// Deliver writes the message into the recipient's slot and bumps the
// recipient's persisted unread total. Redelivery of a message id already
// present in the recipient's copy is suppressed, so a retried send
// cannot inflate the unread count.
//
// When this returns nil the recipient's store contains the message;
// nothing is guaranteed about when the recipient's live session will
// observe it.
func (p *Propagator) Deliver(ctx context.Context, sender, recipient, customer models.Identity, message models.Message) error {
	if recipient.IsZero() {
		return ErrMissingCounterparty
	}
	if err := message.Validate(); err != nil {
		return err
	}

	conversations, err := p.store.LoadConversations(ctx, recipient.ID)
	if err != nil {
		return fmt.Errorf("load recipient conversations: %w", err)
	}

	placed := false
	for idx, conversation := range conversations {
		if conversation.ID != customer.ID {
			continue
		}
		if conversation.FindMessage(message.ID) >= 0 {
			p.logger.Debug().
				Str("message_id", message.ID).
				Str("recipient_id", recipient.ID).
				Msg("duplicate delivery suppressed")
			return nil
		}
		conversations[idx] = Append(conversation, message, recipient.Role)
		placed = true
		break
	}

	if !placed {
		// First contact: the recipient may never have interacted with
		// this customer, so seed from whatever display data exists.
		seed := seedConversation(customer)
		conversations = append(conversations, Append(seed, message, recipient.Role))
	}

	if err := p.store.SaveConversations(ctx, recipient.ID, conversations); err != nil {
		return fmt.Errorf("save recipient conversations: %w", err)
	}

	total, err := p.store.LoadUnread(ctx, recipient.ID)
	if err != nil {
		return fmt.Errorf("load recipient unread: %w", err)
	}
	if err := p.store.SaveUnread(ctx, recipient.ID, total+1); err != nil {
		return fmt.Errorf("save recipient unread: %w", err)
	}

	p.logger.Debug().
		Str("message_id", message.ID).
		Str("sender_id", sender.ID).
		Str("recipient_id", recipient.ID).
		Str("preview", logging.Preview(message.Text)).
		Msg("message delivered")
	return nil
}

// MirrorEdit applies an edit to the peer's copy of the conversation.
// Unread counts are untouched; a missing conversation or message in the
// peer's copy is a no-op.
func (p *Propagator) MirrorEdit(ctx context.Context, peer models.Identity, conversationID, messageID, text string, now time.Time) error {
	if peer.IsZero() {
		return nil
	}
	return p.mirror(ctx, peer, conversationID, func(conversation models.Conversation) models.Conversation {
		return Edit(conversation, messageID, text, now)
	})
}

// MirrorDelete applies a removal to the peer's copy of the conversation.
func (p *Propagator) MirrorDelete(ctx context.Context, peer models.Identity, conversationID, messageID string) error {
	if peer.IsZero() {
		return nil
	}
	return p.mirror(ctx, peer, conversationID, func(conversation models.Conversation) models.Conversation {
		return Remove(conversation, messageID)
	})
}

func (p *Propagator) mirror(ctx context.Context, peer models.Identity, conversationID string, mutate func(models.Conversation) models.Conversation) error {
	conversations, err := p.store.LoadConversations(ctx, peer.ID)
	if err != nil {
		return fmt.Errorf("load peer conversations: %w", err)
	}

	for idx, conversation := range conversations {
		if conversation.ID != conversationID {
			continue
		}
		conversations[idx] = mutate(conversation)
		if err := p.store.SaveConversations(ctx, peer.ID, conversations); err != nil {
			return fmt.Errorf("save peer conversations: %w", err)
		}
		return nil
	}
	return nil
}
