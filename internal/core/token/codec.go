// Package token issues and verifies opaque session tokens. A token is the
// user's identity and session expiry sealed with AES-256-GCM under a key
// derived from that user's encryption key, then base64-encoded for transport.
// Decrypting with the wrong key fails authentication rather than yielding a
// wrong identity.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	aesKeySize = 32

	// The payload packs the canonical UUID string (fixed width) followed
	// immediately by the expiry timestamp, so the two are recovered by
	// position without a delimiter.
	identityWidth = 36

	// RFC3339Nano round-trips through Format/Parse to the same instant.
	expiryLayout = time.RFC3339Nano
)

// Issue seals (identity, expiry) under the user's key and returns the
// transport-safe token string.
func Issue(identity uuid.UUID, expiry time.Time, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	payload := identity.String() + expiry.UTC().Format(expiryLayout)
	sealed := gcm.Seal(nonce, nonce, []byte(payload), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decode reverses Issue. It fails on invalid base64, on ciphertext that does
// not authenticate under key (wrong key or corruption), and on a payload that
// does not split into a well-formed identity and timestamp.
func Decode(tok string, key []byte) (uuid.UUID, time.Time, error) {
	raw, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("decoding token: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}
	if len(raw) < gcm.NonceSize() {
		return uuid.Nil, time.Time{}, fmt.Errorf("token shorter than nonce size")
	}

	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	payload, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("opening token: %w", err)
	}
	if len(payload) < identityWidth+1 {
		return uuid.Nil, time.Time{}, fmt.Errorf("token payload too short: %d bytes", len(payload))
	}

	identity, err := uuid.Parse(string(payload[:identityWidth]))
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("parsing token identity: %w", err)
	}
	expiry, err := time.Parse(expiryLayout, string(payload[identityWidth:]))
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("parsing token expiry: %w", err)
	}

	return identity, expiry, nil
}

// newGCM builds the AEAD for a per-user key. Keys are arbitrary-length byte
// strings in the user record; HKDF normalises them to the AES key size.
func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("empty encryption key")
	}

	derived := make([]byte, aesKeySize)
	kdf := hkdf.New(sha256.New, key, nil, []byte("session-token:v1"))
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, fmt.Errorf("deriving token key: %w", err)
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}
