package encryption

import "errors"

// Sentinel errors returned by encryption operations.
//
// Callers should use errors.Is for comparisons:
//
//	_, err := encryption.Open(frame, key)
//	if errors.Is(err, encryption.ErrDecryptionFailed) {
//	    // wrong key or damaged frame
//	}
var (
	// ErrInvalidKeySize is returned when the key is not exactly [KeySize]
	// bytes long.
	ErrInvalidKeySize = errors.New("encryption: key must be 32 bytes")

	// ErrTruncatedFrame is returned when a frame is too short to hold an IV.
	ErrTruncatedFrame = errors.New("encryption: frame shorter than IV")

	// ErrInvalidCiphertextLength is returned when the ciphertext following
	// the IV is empty or not a multiple of the block size.
	ErrInvalidCiphertextLength = errors.New("encryption: ciphertext length is not a positive multiple of the block size")

	// ErrDecryptionFailed is returned when PKCS#7 padding does not validate
	// after decryption.  This is what a wrong key almost always produces too.
	// The error deliberately carries no detail about which byte failed.
	ErrDecryptionFailed = errors.New("encryption: decryption failed")
)
