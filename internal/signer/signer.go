// Package signer produces Orderly request signatures from ed25519 key
// material in the venue's textual key format.
package signer

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/GoOrderly/orderlygate/internal/codec"
)

// KeyPrefix is the literal prefix carried by every Orderly key and secret.
const KeyPrefix = "ed25519:"

var (
	ErrInvalidKeyFormat = errors.New("signer: key must be in ed25519:{base58} format")
	ErrInvalidKeyLength = errors.New("signer: decoded key is not a 32-byte ed25519 seed")
)

// Sign produces a detached ed25519 signature over the UTF-8 bytes of
// message, base64-encoded. The secret is an `ed25519:`-prefixed base58
// encoding of the 32-byte seed (not the expanded 64-byte private key).
// Deterministic: the same (secret, message) always yields the same output.
func Sign(secret, message string) (string, error) {
	seed, err := DecodeSeed(secret)
	if err != nil {
		return "", err
	}
	key := ed25519.NewKeyFromSeed(seed)
	sig := ed25519.Sign(key, []byte(message))
	return base64.StdEncoding.EncodeToString(sig), nil
}

// DecodeSeed strips the ed25519: prefix and base58-decodes the remainder,
// requiring exactly a 32-byte seed.
func DecodeSeed(secret string) ([]byte, error) {
	if !strings.HasPrefix(secret, KeyPrefix) {
		return nil, ErrInvalidKeyFormat
	}
	raw, err := codec.Decode(strings.TrimPrefix(secret, KeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyFormat, err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(raw))
	}
	return raw, nil
}

// ValidKeyString reports whether s matches the ed25519:{base58} contract.
// Public keys and seeds are both 32 bytes; decoded length is checked at
// signing time, not here.
func ValidKeyString(s string) bool {
	if !strings.HasPrefix(s, KeyPrefix) {
		return false
	}
	body := strings.TrimPrefix(s, KeyPrefix)
	if body == "" {
		return false
	}
	_, err := codec.Decode(body)
	return err == nil
}
