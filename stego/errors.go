package stego

import (
	"errors"

	"github.com/hasbyte1/go-stegocrypt/bitstream"
	"github.com/hasbyte1/go-stegocrypt/encryption"
	"github.com/hasbyte1/go-stegocrypt/lsb"
	"github.com/hasbyte1/go-stegocrypt/raster"
)

var (
	// ErrInvalidEncoding is returned by Reveal when the decrypted bytes are not
	// valid text in the configured encoding.
	ErrInvalidEncoding = errors.New("stego: decrypted bytes are not valid text")

	// ErrNoImageStore is returned by the *Image methods when the Codec was
	// built without [WithImageStore].
	ErrNoImageStore = errors.New("stego: no image store configured")
)

// Describe returns a short, user-facing explanation of err.
//
// Padding failures, invalid ciphertext lengths and undecodable text all come
// out as the same "could not decrypt" message: telling them apart would hand
// an attacker a padding oracle.
func Describe(err error) string {
	var capErr *lsb.CapacityError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, encryption.ErrInvalidKeySize):
		return "the key must be exactly 32 bytes"
	case errors.As(err, &capErr):
		return "the cover image is too small for this message"
	case errors.Is(err, bitstream.ErrCapacityOverflow):
		return "the message is too large to be hidden"
	case errors.Is(err, lsb.ErrTruncatedStego),
		errors.Is(err, bitstream.ErrMalformedBitstream),
		errors.Is(err, encryption.ErrTruncatedFrame):
		return "the image does not contain a hidden message"
	case errors.Is(err, encryption.ErrInvalidCiphertextLength),
		errors.Is(err, encryption.ErrDecryptionFailed),
		errors.Is(err, ErrInvalidEncoding):
		return "could not decrypt the hidden message: wrong key or damaged image"
	case errors.Is(err, raster.ErrShapeMismatch):
		return "the image data is inconsistent"
	default:
		return err.Error()
	}
}
