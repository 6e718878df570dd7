package chat

import "errors"

// Core errors.
var (
	// ErrMissingIdentity is returned when an operation is attempted with
	// no resolved identity. The core refuses to touch any slot in that
	// state.
	ErrMissingIdentity = errors.New("no resolved identity")

	// ErrEmptyMessage is returned when a send is attempted with an empty
	// body.
	ErrEmptyMessage = errors.New("message body is required")

	// ErrMissingCounterparty is returned when a send names no recipient.
	ErrMissingCounterparty = errors.New("counterparty identity is required")

	// ErrSameRole is returned when sender and recipient share a role;
	// exactly one customer and one support side participate in a
	// conversation.
	ErrSameRole = errors.New("sender and counterparty must have opposite roles")
)

// Poller errors.
var (
	ErrPollerAlreadyRunning = errors.New("poller already running")
	ErrPollerNotRunning     = errors.New("poller not running")
)
