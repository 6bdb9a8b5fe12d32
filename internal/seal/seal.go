// Package seal hides the correct option of a served item behind an
// authenticated token that only the server can open.
package seal

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/p-n-ai/pai-quiz/internal/apperr"
)

// ErrInvalidToken is returned when a token is malformed, forged, or bound to
// a different item.
var ErrInvalidToken = fmt.Errorf("%w: invalid sealed answer", apperr.ErrValidation)

// Sealer encrypts answers with XChaCha20-Poly1305, binding each token to its
// item ID as associated data.
type Sealer struct {
	key []byte
}

// New creates a sealer from a 32-byte key.
func New(key []byte) (*Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("seal key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &Sealer{key: append([]byte(nil), key...)}, nil
}

// NewFromHex creates a sealer from a hex-encoded key. An empty string returns
// a nil sealer, meaning sealing is disabled.
func NewFromHex(s string) (*Sealer, error) {
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding seal key: %w", err)
	}
	return New(key)
}

// Seal returns a URL-safe token for answer bound to itemID.
func (s *Sealer) Seal(itemID, answer string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(answer)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	out := aead.Seal(nonce, nonce, []byte(answer), []byte(itemID))
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open recovers the answer sealed for itemID.
func (s *Sealer) Open(itemID, token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrInvalidToken
	}
	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	pt, err := aead.Open(nil, nonce, ct, []byte(itemID))
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(pt), nil
}
