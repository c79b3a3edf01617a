package encryption

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// GenerateKey returns a cryptographically random [KeySize]-byte key read
// from crypto/rand.
//
// Example:
//
//	key, err := encryption.GenerateKey()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	frame, err := encryption.Seal(plaintext, key)
func GenerateKey() ([]byte, error) {
	return randomBytes(rand.Reader, KeySize)
}

// EncodeKey returns the standard base64 encoding of key, suitable for
// passing a key through an HTTP header or an environment variable.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// DecodeKey decodes a base64-encoded key previously produced by [EncodeKey].
// It accepts both standard and URL-safe base64 alphabets.  The length is not
// checked here; Seal and Open do that.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err == nil {
		return key, nil
	}
	// Try URL-safe variant before giving up.
	key, err = base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("encryption: failed to decode key: %w", err)
	}
	return key, nil
}

// randomBytes returns n bytes read from r.  It is used for key and IV
// generation.
func randomBytes(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("encryption: failed to generate %d random bytes: %w", n, err)
	}
	return b, nil
}

// cloneBytes returns a fresh copy of b.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
