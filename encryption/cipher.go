// Package encryption frames a plaintext for hiding: AES-256 in CBC mode with
// PKCS#7 padding, prefixed by the random IV.
//
// # Frame format
//
//	+------------+--------------------------------------+
//	| IV (16 B)  | ciphertext (n × 16 B, n ≥ 1)         |
//	+------------+--------------------------------------+
//
// The frame is what package lsb embeds into a cover image.  It carries no
// length field of its own; the LSB layer's bit-length prefix delimits it.
//
// # Quick start
//
//	key, err := encryption.GenerateKey()
//	frame, err := encryption.Seal([]byte("hello"), key)
//	plaintext, err := encryption.Open(frame, key)
//
// # Security notes
//
//   - A fresh random IV is generated for every Seal call; never reuse IVs.
//   - The frame is NOT authenticated.  CBC without a MAC is malleable and
//     padding failures must never be reported in a way that distinguishes
//     them from other decryption failures.  Open validates padding in
//     constant time and reports every failure as [ErrDecryptionFailed].
//   - Adding a MAC changes the frame layout and therefore requires a new
//     frame version; it cannot be retrofitted into this format.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
)

const (
	// KeySize is the only accepted key length: AES-256.
	KeySize = 32

	// BlockSize is the AES block size, which is also the IV length.
	BlockSize = aes.BlockSize

	// MinFrameSize is the size of the frame for an empty plaintext: one IV
	// and one full block of padding.
	MinFrameSize = 2 * BlockSize
)

// BlockFactory builds the block cipher used for CBC chaining.  The default is
// [aes.NewCipher]; tests or hardware-backed implementations may substitute
// their own.
type BlockFactory func(key []byte) (cipher.Block, error)

// FrameSize returns the size of the frame Seal produces for a plaintext of n
// bytes.
func FrameSize(n int) int {
	return BlockSize + (n/BlockSize+1)*BlockSize
}

// MaxPlaintext is the inverse of [FrameSize]: the largest plaintext whose
// frame fits in frameBytes, or -1 when not even an empty plaintext fits.
func MaxPlaintext(frameBytes int) int {
	if frameBytes < MinFrameSize {
		return -1
	}
	return (frameBytes-BlockSize)/BlockSize*BlockSize - 1
}
