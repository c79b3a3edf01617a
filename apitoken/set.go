package apitoken

import (
	"fmt"
	"sync"
)

// Set is a thread-safe collection of tokens keyed by id.
type Set struct {
	mu     sync.RWMutex
	tokens map[string]*Token
}

// NewSet returns a set holding tokens.  Duplicate ids are rejected.
func NewSet(tokens ...Token) (*Set, error) {
	s := &Set{tokens: make(map[string]*Token, len(tokens))}
	for i := range tokens {
		if err := s.Add(tokens[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add stores t.
func (s *Set) Add(t Token) error {
	if t.ID == "" || t.Hash == "" {
		return fmt.Errorf("apitoken: token %q needs an id and a hash", t.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[t.ID]; exists {
		return fmt.Errorf("apitoken: duplicate token id %q", t.ID)
	}
	s.tokens[t.ID] = cloneToken(&t)
	return nil
}

// Revoke removes the token with id.  It reports whether one was removed.
func (s *Set) Revoke(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[id]
	delete(s.tokens, id)
	return ok
}

// Len returns the number of tokens.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// Authenticate checks a plain-text token and returns a copy of the matching
// record.
func (s *Set) Authenticate(plainText string) (*Token, error) {
	id, secret, err := parse(plainText)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	t, ok := s.tokens[id]
	s.mu.RUnlock()
	if !ok || !hashEqual(t.Hash, HashSecret(secret)) {
		return nil, ErrInvalidToken
	}
	if t.IsExpired() {
		return nil, ErrTokenExpired
	}
	return cloneToken(t), nil
}

func cloneToken(t *Token) *Token {
	c := *t
	c.Abilities = append([]string(nil), t.Abilities...)
	if t.ExpiresAt != nil {
		e := *t.ExpiresAt
		c.ExpiresAt = &e
	}
	return &c
}
