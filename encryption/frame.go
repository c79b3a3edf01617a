package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// Option is a functional option for configuring a [Framer].
type Option func(*Framer)

// WithRandom sets the source of IVs.  The default is crypto/rand.Reader.
// Anything else is only appropriate for tests that need reproducible frames.
func WithRandom(r io.Reader) Option {
	return func(f *Framer) {
		if r != nil {
			f.rand = r
		}
	}
}

// WithBlockFactory substitutes the block cipher constructor.  The factory
// must return a cipher with a 16-byte block size.
func WithBlockFactory(fn BlockFactory) Option {
	return func(f *Framer) {
		if fn != nil {
			f.newBlock = fn
		}
	}
}

// Framer seals plaintexts into IV ‖ ciphertext frames and opens them again.
//
// A Framer holds no key material; the key is passed to each call.  It is safe
// for concurrent use as long as its random source is (crypto/rand is).
type Framer struct {
	rand     io.Reader
	newBlock BlockFactory
}

// NewFramer returns a Framer using AES and crypto/rand unless overridden.
func NewFramer(opts ...Option) *Framer {
	f := &Framer{
		rand:     rand.Reader,
		newBlock: aes.NewCipher,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

var defaultFramer = NewFramer()

// Seal encrypts plaintext with the default [Framer].
func Seal(plaintext, key []byte) ([]byte, error) {
	return defaultFramer.Seal(plaintext, key)
}

// Open decrypts frame with the default [Framer].
func Open(frame, key []byte) ([]byte, error) {
	return defaultFramer.Open(frame, key)
}

// Seal encrypts plaintext with AES-256-CBC and returns IV ‖ ciphertext.
//
// Each call draws a fresh IV, so sealing the same plaintext twice under the
// same key produces different frames.  Neither plaintext nor key is modified.
//
// Possible errors: [ErrInvalidKeySize], or a wrapped error from the random
// source.
func (f *Framer) Seal(plaintext, key []byte) ([]byte, error) {
	block, err := f.block(key)
	if err != nil {
		return nil, err
	}

	// Step 1: fresh IV.
	iv, err := randomBytes(f.rand, BlockSize)
	if err != nil {
		return nil, err
	}

	// Step 2: PKCS#7-pad to a block boundary.
	padded := pkcs7Pad(plaintext, BlockSize)

	// Step 3: encrypt straight into the frame, after the IV.
	frame := make([]byte, BlockSize+len(padded))
	copy(frame, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(frame[BlockSize:], padded)
	return frame, nil
}

// Open splits frame into IV and ciphertext, decrypts, and strips the padding.
//
// Possible errors: [ErrInvalidKeySize], [ErrTruncatedFrame],
// [ErrInvalidCiphertextLength], [ErrDecryptionFailed].
func (f *Framer) Open(frame, key []byte) ([]byte, error) {
	block, err := f.block(key)
	if err != nil {
		return nil, err
	}
	if len(frame) < BlockSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrTruncatedFrame, len(frame))
	}

	iv := cloneBytes(frame[:BlockSize])
	ciphertext := frame[BlockSize:]
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidCiphertextLength, len(ciphertext))
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext, BlockSize)
}

func (f *Framer) block(key []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}
	block, err := f.newBlock(key)
	if err != nil {
		return nil, fmt.Errorf("encryption: failed to create block cipher: %w", err)
	}
	if block.BlockSize() != BlockSize {
		return nil, fmt.Errorf("encryption: block cipher has %d-byte blocks, need %d", block.BlockSize(), BlockSize)
	}
	return block, nil
}
