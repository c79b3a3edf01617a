// Package apitoken guards the HTTP API with static bearer tokens.
//
// A plain-text token has the form "{id}|{secret}".  Only the SHA-256 hex
// digest of the secret is kept in configuration, so a leaked config file does
// not leak usable tokens.  Each token carries a list of abilities naming the
// endpoints it may call; the wildcard "*" grants all of them.
package apitoken

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const tokenRandomBytes = 40

// Abilities understood by the server.
const (
	AbilityHide     = "hide"
	AbilityReveal   = "reveal"
	AbilityCapacity = "capacity"
	Wildcard        = "*"
)

var (
	// ErrInvalidToken is returned when a token is malformed or unknown.
	ErrInvalidToken = errors.New("apitoken: invalid token")

	// ErrTokenExpired is returned when a token has passed its expiry time.
	ErrTokenExpired = errors.New("apitoken: token expired")

	// ErrUnauthorized is returned when a request carries no token.
	ErrUnauthorized = errors.New("apitoken: unauthorized")

	// ErrForbidden is returned when a token lacks a required ability.
	ErrForbidden = errors.New("apitoken: forbidden")
)

// Token is a configured API token.
type Token struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Hash      string     `yaml:"hash"` // SHA-256 hex of the secret
	Abilities []string   `yaml:"abilities"`
	ExpiresAt *time.Time `yaml:"expires_at,omitempty"`
}

// IsExpired reports whether the token has passed its expiry time.
func (t *Token) IsExpired() bool {
	return t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)
}

// Can reports whether the token grants ability.
func (t *Token) Can(ability string) bool {
	for _, a := range t.Abilities {
		if a == Wildcard || a == ability {
			return true
		}
	}
	return false
}

// CanAll reports whether the token grants every ability in required.
func (t *Token) CanAll(required ...string) bool {
	for _, r := range required {
		if !t.Can(r) {
			return false
		}
	}
	return true
}

// Generate creates a new token.  The returned plain text is the only copy of
// the secret; it cannot be recovered from the Token.
func Generate(name string, abilities []string, expiresAt *time.Time) (*Token, string, error) {
	b := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, "", fmt.Errorf("apitoken: generate secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(b)
	id := uuid.NewString()

	abs := make([]string, len(abilities))
	copy(abs, abilities)
	t := &Token{
		ID:        id,
		Name:      name,
		Hash:      HashSecret(secret),
		Abilities: abs,
		ExpiresAt: expiresAt,
	}
	return t, id + "|" + secret, nil
}

// HashSecret returns the SHA-256 hex digest of a token secret.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// parse splits a plain-text token into its id and secret.
func parse(plainText string) (id, secret string, err error) {
	idx := strings.IndexByte(plainText, '|')
	if idx < 1 || idx == len(plainText)-1 {
		return "", "", ErrInvalidToken
	}
	return plainText[:idx], plainText[idx+1:], nil
}

func hashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
