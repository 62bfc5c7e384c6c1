// Package contacts defines the address-book contact entity and the
// pure helpers that operate on contact lists: validation, duplicate
// grouping, and user-facing message formatting.
package contacts

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ldellis/rolo/internal/errs"
)

// ID identifies a contact in the remote store.
type ID string

// CardType describes how a contact card payload is protected.
type CardType int

const (
	CardClearText CardType = iota
	CardSigned
	CardEncrypted
	CardEncryptedAndSigned
)

// String returns a human-readable card type name.
func (t CardType) String() string {
	switch t {
	case CardClearText:
		return "cleartext"
	case CardSigned:
		return "signed"
	case CardEncrypted:
		return "encrypted"
	case CardEncryptedAndSigned:
		return "encrypted+signed"
	default:
		return "unknown"
	}
}

// Card is one payload unit of a contact. Encrypted cards carry the
// sealed vCard data; signed cards carry a detached signature.
type Card struct {
	Type      CardType `json:"type"`
	Data      string   `json:"data"`
	Signature string   `json:"signature,omitempty"`
}

// Contact is an address-book entry. The store owns the canonical copy;
// instances here are created by callers and consumed by batch
// operations without being retained.
type Contact struct {
	ID     ID       `json:"id"`
	Name   string   `json:"name"`
	Emails []string `json:"emails,omitempty"`
	Cards  []Card   `json:"cards,omitempty"`
}

// New returns a contact with a fresh ID.
func New(name string, emails ...string) Contact {
	return Contact{
		ID:     ID(uuid.NewString()),
		Name:   name,
		Emails: emails,
	}
}

// Validate checks the fields a contact needs before it can be sent to
// the store.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errs.Errorf(errs.EINVALID, "contact name is required")
	}
	for _, email := range c.Emails {
		if !strings.Contains(email, "@") {
			return errs.Errorf(errs.EINVALID, "invalid email %q", email)
		}
	}
	return nil
}

// PrimaryEmail returns the contact's first email, or the empty string.
func (c Contact) PrimaryEmail() string {
	if len(c.Emails) == 0 {
		return ""
	}
	return c.Emails[0]
}

// HasEmail reports whether the contact lists the given address,
// compared case-insensitively.
func (c Contact) HasEmail(email string) bool {
	for _, e := range c.Emails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// IDsOf returns the IDs of the given contacts in order.
func IDsOf(list []Contact) []ID {
	ids := make([]ID, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	return ids
}
