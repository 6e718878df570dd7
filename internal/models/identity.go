// Package models defines the chat domain entities shared across the core.
package models

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Identity errors.
var (
	ErrMissingIdentityID = errors.New("identity id is required")
	ErrInvalidRole       = errors.New("invalid role")
)

// Role distinguishes the two sides of a conversation.
type Role string

const (
	// RoleCustomer is a storefront customer.
	RoleCustomer Role = "customer"

	// RoleSupport is the pharmacy support side (admin or pharmacist).
	RoleSupport Role = "support"
)

// Valid reports whether the role is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleSupport
}

// Counterpart returns the opposite role.
func (r Role) Counterpart() Role {
	if r == RoleCustomer {
		return RoleSupport
	}
	return RoleCustomer
}

// Identity is a resolved participant as provided by the authentication layer.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

// IsZero reports whether no identity has been resolved.
func (i Identity) IsZero() bool {
	return strings.TrimSpace(i.ID) == ""
}

// Validate checks the identity for use by the core.
func (i Identity) Validate() error {
	if i.IsZero() {
		return ErrMissingIdentityID
	}
	if !i.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// Initials derives up to two uppercase initials from the display name.
// Returns "?" when the name is empty.
func (i Identity) Initials() string {
	return InitialsOf(i.DisplayName)
}

// InitialsOf derives up to two uppercase initials from a display name.
func InitialsOf(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "?"
	}

	var builder strings.Builder
	for idx, field := range fields {
		if idx >= 2 {
			break
		}
		r, size := utf8.DecodeRuneInString(field)
		if size == 0 || r == utf8.RuneError {
			continue
		}
		builder.WriteRune(unicode.ToUpper(r))
	}
	if builder.Len() == 0 {
		return "?"
	}
	return builder.String()
}
