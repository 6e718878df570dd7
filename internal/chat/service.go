package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/events"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/logging"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/models"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/store"
)

// DefaultSupportID is the well-known identity id of the support side,
// used to mirror a customer's edits and deletes when no explicit
// counterparty has been configured.
const DefaultSupportID = "support"

// Service is the outbound surface of the chat core, bound to one
// resolved identity and one slot store.
//
// All mutations and poll merges for the bound identity's slot go through
// a single mutex, so concurrent callers cannot clobber each other's
// read-modify-write cycles.
type Service struct {
	identity    models.Identity
	store       store.SlotStore
	publisher   events.Publisher
	propagator  *Propagator
	logger      zerolog.Logger
	now         func() time.Time
	newID       func() string
	supportPeer models.Identity

	mu            sync.Mutex
	conversations []models.Conversation
	snapshot      []byte
	unreadTotal   int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNow overrides the clock, used by tests.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides message id generation, used by tests.
func WithIDGenerator(gen func() string) ServiceOption {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithPublisher installs a shared event publisher.
func WithPublisher(publisher events.Publisher) ServiceOption {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithSupportPeer sets the support-side identity a customer's edits and
// deletes are mirrored to.
func WithSupportPeer(peer models.Identity) ServiceOption {
	return func(s *Service) {
		if !peer.IsZero() {
			s.supportPeer = peer
		}
	}
}

// NewService builds a service for the given identity and loads its
// persisted state. A zero identity yields ErrMissingIdentity: the core
// is inert until authentication resolves a participant.
func NewService(ctx context.Context, identity models.Identity, slots store.SlotStore, opts ...ServiceOption) (*Service, error) {
	if identity.IsZero() {
		return nil, ErrMissingIdentity
	}
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if slots == nil {
		return nil, fmt.Errorf("slot store required")
	}

	svc := &Service{
		identity:    identity,
		store:       slots,
		publisher:   events.NewInMemoryPublisher(),
		propagator:  NewPropagator(slots),
		logger:      logging.Component("chat-service").With().Str("identity_id", identity.ID).Logger(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		supportPeer: models.Identity{ID: DefaultSupportID, Role: models.RoleSupport},
	}
	for _, opt := range opts {
		opt(svc)
	}

	conversations, err := slots.LoadConversations(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	unread, err := slots.LoadUnread(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("load unread: %w", err)
	}
	snapshot, err := json.Marshal(conversations)
	if err != nil {
		return nil, err
	}

	svc.conversations = conversations
	svc.snapshot = snapshot
	svc.unreadTotal = unread

	return svc, nil
}

// Identity returns the bound identity.
func (s *Service) Identity() models.Identity {
	return s.identity
}

// Publisher returns the service's event publisher for subscriptions.
func (s *Service) Publisher() events.Publisher {
	return s.publisher
}

// Conversations returns a deep-copied snapshot of the viewer's
// conversation list.
func (s *Service) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneConversations(s.conversations)
}

// Conversation returns a deep copy of one conversation.
func (s *Service) Conversation(conversationID string) (models.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conversation := range s.conversations {
		if conversation.ID == conversationID {
			return conversation.Clone(), true
		}
	}
	return models.Conversation{}, false
}

// UnreadTotal returns the badge total across all conversations.
func (s *Service) UnreadTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadTotal
}

// SendMessage appends a message to the sender's view of the conversation
// with the counterparty, persists it, and mirrors it into the
// counterparty's slot. The conversation is created lazily on first
// contact, keyed by the customer's identity.
func (s *Service) SendMessage(ctx context.Context, counterparty models.Identity, text string) (models.Message, error) {
	if counterparty.IsZero() {
		return models.Message{}, ErrMissingCounterparty
	}
	if !counterparty.Role.Valid() {
		counterparty.Role = s.identity.Role.Counterpart()
	}
	if counterparty.Role == s.identity.Role {
		return models.Message{}, ErrSameRole
	}
	if strings.TrimSpace(text) == "" {
		return models.Message{}, ErrEmptyMessage
	}

	message := models.Message{
		ID:          s.newID(),
		SenderID:    s.identity.ID,
		SenderName:  s.identity.DisplayName,
		FromSupport: s.identity.Role == models.RoleSupport,
		Text:        text,
		SentAt:      s.now(),
	}

	customer := customerParty(s.identity, counterparty)

	s.mu.Lock()
	updated, conversation, created := s.upsertMessage(customer, message)
	if err := s.persistConversations(ctx, updated); err != nil {
		s.mu.Unlock()
		return models.Message{}, err
	}
	s.mu.Unlock()

	s.logger.Debug().
		Str("message_id", message.ID).
		Str("conversation_id", conversation.ID).
		Str("preview", logging.Preview(message.Text)).
		Msg("message sent")

	if created {
		s.emit(ctx, events.EventTypeConversationCreated, conversation.ID)
	}
	s.emit(ctx, events.EventTypeMessageSent, conversation.ID)
	s.emit(ctx, events.EventTypeConversationsChanged, conversation.ID)

	if err := s.propagator.Deliver(ctx, s.identity, counterparty, customer, message); err != nil {
		return message, fmt.Errorf("deliver to %s: %w", counterparty.ID, err)
	}
	return message, nil
}

// upsertMessage appends the message into the sender's view, creating the
// conversation on first contact. Caller holds s.mu.
func (s *Service) upsertMessage(customer models.Identity, message models.Message) ([]models.Conversation, models.Conversation, bool) {
	updated := models.CloneConversations(s.conversations)

	for idx, conversation := range updated {
		if conversation.ID == customer.ID {
			updated[idx] = Append(conversation, message, s.identity.Role)
			return updated, updated[idx], false
		}
	}

	seed := seedConversation(customer)
	created := Append(seed, message, s.identity.Role)
	updated = append(updated, created)
	return updated, created, true
}

// MarkAsRead acknowledges a conversation and subtracts exactly its
// contribution from the badge total. Subtraction, not a fresh sum: a
// poll merge may be racing in new unread messages for other
// conversations, and those must survive the acknowledgment. Idempotent;
// an unknown conversation id is a no-op.
func (s *Service) MarkAsRead(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	idx := s.findConversation(conversationID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	delta := s.conversations[idx].UnreadCount
	if delta == 0 {
		s.mu.Unlock()
		return nil
	}

	updated := models.CloneConversations(s.conversations)
	updated[idx] = MarkRead(updated[idx])

	total := s.unreadTotal - delta
	if total < 0 {
		total = 0
	}

	if err := s.persistConversations(ctx, updated); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.store.SaveUnread(ctx, s.identity.ID, total); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save unread: %w", err)
	}
	s.unreadTotal = total
	s.mu.Unlock()

	s.emit(ctx, events.EventTypeUnreadChanged, conversationID)
	s.emit(ctx, events.EventTypeConversationsChanged, conversationID)
	return nil
}

// EditMessage rewrites a message's text in the viewer's slot and mirrors
// the edit into the counterparty's slot. A missing conversation or
// message is a silent no-op.
func (s *Service) EditMessage(ctx context.Context, conversationID, messageID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	now := s.now()

	s.mu.Lock()
	idx := s.findConversation(conversationID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	if s.conversations[idx].FindMessage(messageID) < 0 {
		s.mu.Unlock()
		return nil
	}
	peer := s.conversationPeer(s.conversations[idx])

	updated := models.CloneConversations(s.conversations)
	updated[idx] = Edit(updated[idx], messageID, text, now)
	if err := s.persistConversations(ctx, updated); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.emit(ctx, events.EventTypeMessageEdited, conversationID)
	s.emit(ctx, events.EventTypeConversationsChanged, conversationID)

	if err := s.propagator.MirrorEdit(ctx, peer, conversationID, messageID, text, now); err != nil {
		return fmt.Errorf("mirror edit to %s: %w", peer.ID, err)
	}
	return nil
}

// DeleteMessage removes a message from the viewer's slot and mirrors the
// removal into the counterparty's slot. A missing conversation or
// message is a silent no-op.
func (s *Service) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	s.mu.Lock()
	idx := s.findConversation(conversationID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	if s.conversations[idx].FindMessage(messageID) < 0 {
		s.mu.Unlock()
		return nil
	}
	// Resolve the peer before mutating: removing support's only message
	// would otherwise erase the sender the mirror has to target.
	peer := s.conversationPeer(s.conversations[idx])

	updated := models.CloneConversations(s.conversations)
	updated[idx] = Remove(updated[idx], messageID)
	if err := s.persistConversations(ctx, updated); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.emit(ctx, events.EventTypeMessageDeleted, conversationID)
	s.emit(ctx, events.EventTypeConversationsChanged, conversationID)

	if err := s.propagator.MirrorDelete(ctx, peer, conversationID, messageID); err != nil {
		return fmt.Errorf("mirror delete to %s: %w", peer.ID, err)
	}
	return nil
}

// Reconcile re-reads the viewer's persisted slots and, when the
// serialized form differs from the in-memory snapshot, replaces the
// snapshot and re-derives the badge total. This is the receive half of
// the exchange: the counterparty's dual-writes become visible here.
//
// The loads happen under the writer mutex. A local mutation landing
// between an unguarded load and the swap would be reverted by a stale
// snapshot, losing the caller's own just-persisted write.
func (s *Service) Reconcile(ctx context.Context) (bool, error) {
	s.mu.Lock()
	loaded, err := s.store.LoadConversations(ctx, s.identity.ID)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("load conversations: %w", err)
	}
	persistedUnread, err := s.store.LoadUnread(ctx, s.identity.ID)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("load unread: %w", err)
	}
	serialized, err := json.Marshal(loaded)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}

	sameConversations := bytes.Equal(serialized, s.snapshot)
	if sameConversations && persistedUnread == s.unreadTotal {
		s.mu.Unlock()
		return false, nil
	}

	previousTotal := s.unreadTotal
	total := TotalUnread(loaded)

	s.conversations = loaded
	s.snapshot = serialized
	s.unreadTotal = total

	if total != persistedUnread {
		// The two slots are written independently; repair drift toward
		// the derived sum.
		if err := s.store.SaveUnread(ctx, s.identity.ID, total); err != nil {
			s.logger.Warn().Err(err).Msg("failed to repair unread slot")
		}
	}
	s.mu.Unlock()

	// Merge notifications go out asynchronously so a slow subscriber
	// cannot stall the poll loop.
	if !sameConversations {
		s.emitAsync(ctx, events.EventTypeConversationsChanged, "")
	}
	if total != previousTotal {
		s.emitAsync(ctx, events.EventTypeUnreadChanged, "")
	}
	return true, nil
}

// persistConversations saves the updated list and swaps the in-memory
// snapshot on success. Caller holds s.mu.
func (s *Service) persistConversations(ctx context.Context, updated []models.Conversation) error {
	serialized, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	if err := s.store.SaveConversations(ctx, s.identity.ID, updated); err != nil {
		return fmt.Errorf("save conversations: %w", err)
	}
	s.conversations = updated
	s.snapshot = serialized
	return nil
}

// findConversation returns the index of a conversation. Caller holds s.mu.
func (s *Service) findConversation(conversationID string) int {
	for idx, conversation := range s.conversations {
		if conversation.ID == conversationID {
			return idx
		}
	}
	return -1
}

// conversationPeer resolves the counterparty whose slot mirrors this
// conversation. For the support side that is the conversation's
// customer. For a customer the authoritative source is the sender of
// the latest support message in the history; the configured support
// identity is only a fallback for a conversation support has not
// replied to yet.
func (s *Service) conversationPeer(conversation models.Conversation) models.Identity {
	if s.identity.Role == models.RoleSupport {
		return models.Identity{
			ID:          conversation.ParticipantID,
			DisplayName: conversation.ParticipantName,
			Role:        models.RoleCustomer,
		}
	}
	for idx := len(conversation.Messages) - 1; idx >= 0; idx-- {
		message := conversation.Messages[idx]
		if message.FromSupport {
			return models.Identity{
				ID:          message.SenderID,
				DisplayName: message.SenderName,
				Role:        models.RoleSupport,
			}
		}
	}
	return s.supportPeer
}

// Close tears down the service's publisher, dropping all subscriptions.
func (s *Service) Close() {
	s.publisher.Close()
}

func (s *Service) emit(ctx context.Context, eventType events.EventType, conversationID string) {
	s.publisher.Publish(ctx, events.NewEvent(eventType, s.identity.ID, conversationID))
}

func (s *Service) emitAsync(ctx context.Context, eventType events.EventType, conversationID string) {
	s.publisher.PublishAsync(ctx, events.NewEvent(eventType, s.identity.ID, conversationID))
}

// customerParty returns whichever of the two identities is the customer.
func customerParty(a, b models.Identity) models.Identity {
	if a.Role == models.RoleCustomer {
		return a
	}
	return b
}

// seedConversation builds a fresh conversation for a customer identity,
// substituting placeholders when display data is unknown.
func seedConversation(customer models.Identity) models.Conversation {
	name := strings.TrimSpace(customer.DisplayName)
	if name == "" {
		name = customer.ID
	}
	return models.Conversation{
		ID:                  customer.ID,
		ParticipantID:       customer.ID,
		ParticipantName:     name,
		ParticipantInitials: models.InitialsOf(name),
	}
}
