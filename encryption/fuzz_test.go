package encryption_test

import (
	"bytes"
	"testing"

	"github.com/hasbyte1/go-stegocrypt/encryption"
)

// FuzzOpen ensures that Open never panics on arbitrary frames and always
// returns either a plaintext or a well-typed error.
//
// Run with: go test -fuzz=FuzzOpen ./encryption/
func FuzzOpen(f *testing.F) {
	key, _ := encryption.GenerateKey()

	// Seed corpus: valid frames and known-invalid inputs.
	seeds := [][]byte{
		[]byte(""),
		make([]byte, 15),
		make([]byte, 16),
		make([]byte, 32),
	}
	for _, pt := range []string{"hello", "a", "longer plaintext value"} {
		frame, _ := encryption.Seal([]byte(pt), key)
		seeds = append(seeds, frame)
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, frame []byte) {
		// Must not panic; error is acceptable.
		_, _ = encryption.Open(frame, key)
	})
}

// FuzzSeal ensures that every frame produced by Seal opens back to the
// original plaintext.
func FuzzSeal(f *testing.F) {
	key, _ := encryption.GenerateKey()

	f.Add([]byte(""))
	f.Add([]byte("hello"))
	f.Add([]byte{0x00, 0x01, 0x02, 0xff})
	f.Add(bytes.Repeat([]byte{0xAA}, 1024))

	f.Fuzz(func(t *testing.T, plaintext []byte) {
		frame, err := encryption.Seal(plaintext, key)
		if err != nil {
			t.Fatalf("Seal returned unexpected error: %v", err)
		}
		got, err := encryption.Open(frame, key)
		if err != nil {
			t.Fatalf("Open failed after Seal succeeded: %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("round-trip mismatch for input len=%d", len(plaintext))
		}
	})
}
