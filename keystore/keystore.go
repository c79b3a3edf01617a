// Package keystore persists raw AES-256 keys and splits them into Shamir
// shares.
//
// A key file holds exactly [encryption.KeySize] bytes and nothing else.  Keys
// are never derived from passwords.
package keystore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/hasbyte1/go-stegocrypt/encryption"
	"github.com/hasbyte1/go-stegocrypt/objstore"
)

// DefaultKeyFile is the file name used when none is configured.
const DefaultKeyFile = "secret_key.bin"

// ErrInvalidShare is returned when share data cannot be decoded or the shares
// do not belong together.
var ErrInvalidShare = errors.New("keystore: invalid key share")

// Blobs is the byte-level storage keys are kept in.  *objstore.Router
// satisfies it.
type Blobs interface {
	Get(ctx context.Context, ref string) ([]byte, error)
	Put(ctx context.Context, ref string, data []byte, opts objstore.PutOptions) error
}

// Store reads and writes key files.
type Store struct {
	blobs Blobs
}

// New returns a store over blobs.
func New(blobs Blobs) *Store {
	return &Store{blobs: blobs}
}

// Load reads the key at ref.
func (s *Store) Load(ctx context.Context, ref string) ([]byte, error) {
	key, err := s.blobs.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(key) != encryption.KeySize {
		Wipe(key)
		return nil, fmt.Errorf("%w: %s holds %d bytes", encryption.ErrInvalidKeySize, ref, len(key))
	}
	return key, nil
}

// Save writes key to ref with owner-only permissions.
func (s *Store) Save(ctx context.Context, ref string, key []byte) error {
	if len(key) != encryption.KeySize {
		return fmt.Errorf("%w: got %d bytes", encryption.ErrInvalidKeySize, len(key))
	}
	return s.blobs.Put(ctx, ref, key, objstore.PutOptions{
		ContentType: "application/octet-stream",
		Private:     true,
	})
}

// Generate returns a fresh random key.
func Generate() ([]byte, error) {
	return encryption.GenerateKey()
}

// Fingerprint returns a short, non-reversible identifier for key that is safe
// to log.
func Fingerprint(key []byte) string {
	sum := blake2b.Sum256(key)
	return hex.EncodeToString(sum[:8])
}

// Wipe zeroes key in place.
func Wipe(key []byte) {
	n := len(key)
	if n == 0 {
		return
	}
	key[0] = 0
	for ofs := 1; ofs < n; ofs *= 2 {
		copy(key[ofs:], key[:ofs])
	}
}
