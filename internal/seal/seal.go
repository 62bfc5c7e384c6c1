// Package seal encrypts contact card payloads with XChaCha20-Poly1305
// before an import sends them to the remote store. The nonce is
// prepended to the ciphertext and the whole sealed payload is base64
// encoded so it travels as JSON text.
package seal

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ldellis/rolo/internal/contacts"
)

// KeySize is the required key length in bytes.
const KeySize = chacha20poly1305.KeySize

// Sealing errors.
var (
	ErrInvalidKey       = fmt.Errorf("sealing key must be %d bytes, base64 encoded", KeySize)
	ErrSealedTooShort   = errors.New("sealed card payload too short")
	ErrNotSealed        = errors.New("card is not sealed")
	ErrDecryptionFailed = errors.New("card decryption failed")
)

// Sealer encrypts and decrypts contact cards. It implements the
// engine's import preprocessor.
type Sealer struct {
	aead cipher.AEAD
}

// New creates a sealer from a raw key of KeySize bytes.
func New(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return &Sealer{aead: aead}, nil
}

// ParseKey decodes a base64 sealing key and checks its length.
func ParseKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
	}
	return key, nil
}

// NewKey generates a random sealing key, base64 encoded for storage
// in the config file.
func NewKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generating sealing key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Process seals every card of every contact. Cards that are already
// encrypted pass through untouched. The context is checked between
// contacts so a cancelled import stops encrypting promptly.
func (s *Sealer) Process(ctx context.Context, list []contacts.Contact) ([]contacts.Contact, error) {
	out := make([]contacts.Contact, len(list))
	for i, c := range list {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if len(c.Cards) > 0 {
			sealed := make([]contacts.Card, len(c.Cards))
			for j, card := range c.Cards {
				sc, err := s.SealCard(card)
				if err != nil {
					return nil, fmt.Errorf("sealing card for contact %s: %w", c.ID, err)
				}
				sealed[j] = sc
			}
			c.Cards = sealed
		}
		out[i] = c
	}
	return out, nil
}

// SealCard encrypts one card's payload. Already-encrypted cards are
// returned unchanged; a detached signature survives sealing so the
// server can verify it after decryption.
func (s *Sealer) SealCard(card contacts.Card) (contacts.Card, error) {
	switch card.Type {
	case contacts.CardEncrypted, contacts.CardEncryptedAndSigned:
		return card, nil
	case contacts.CardClearText, contacts.CardSigned:
	default:
		return contacts.Card{}, fmt.Errorf("unknown card type %d", card.Type)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return contacts.Card{}, fmt.Errorf("generating nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(card.Data), nil)

	return contacts.Card{
		Type:      sealedType(card.Type),
		Data:      base64.StdEncoding.EncodeToString(sealed),
		Signature: card.Signature,
	}, nil
}

// OpenCard decrypts a sealed card back to its original form.
func (s *Sealer) OpenCard(card contacts.Card) (contacts.Card, error) {
	if card.Type != contacts.CardEncrypted && card.Type != contacts.CardEncryptedAndSigned {
		return contacts.Card{}, ErrNotSealed
	}

	raw, err := base64.StdEncoding.DecodeString(card.Data)
	if err != nil {
		return contacts.Card{}, fmt.Errorf("decoding sealed card: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(raw) < nonceSize {
		return contacts.Card{}, ErrSealedTooShort
	}

	plain, err := s.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return contacts.Card{}, ErrDecryptionFailed
	}

	return contacts.Card{
		Type:      openType(card.Type),
		Data:      string(plain),
		Signature: card.Signature,
	}, nil
}

func sealedType(t contacts.CardType) contacts.CardType {
	if t == contacts.CardSigned {
		return contacts.CardEncryptedAndSigned
	}
	return contacts.CardEncrypted
}

func openType(t contacts.CardType) contacts.CardType {
	if t == contacts.CardEncryptedAndSigned {
		return contacts.CardSigned
	}
	return contacts.CardClearText
}
