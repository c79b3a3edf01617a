package stego

import (
	"golang.org/x/text/unicode/norm"

	"github.com/hasbyte1/go-stegocrypt/bitstream"
	"github.com/hasbyte1/go-stegocrypt/encryption"
	"github.com/hasbyte1/go-stegocrypt/lsb"
	"github.com/hasbyte1/go-stegocrypt/raster"
)

// Option is a functional option for configuring a [Codec].
type Option func(*Codec)

// WithSealer replaces the default AES-256-CBC framer.
func WithSealer(s encryption.Sealer) Option {
	return func(c *Codec) {
		if s != nil {
			c.sealer = s
		}
	}
}

// WithImageStore sets the store used by [Codec.HideImage] and
// [Codec.RevealImage].
func WithImageStore(s ImageStore) Option {
	return func(c *Codec) { c.images = s }
}

// WithObserver registers an observer for pipeline events.
func WithObserver(o Observer) Option {
	return func(c *Codec) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithTextEncoding sets the encoding used between message text and bytes.
func WithTextEncoding(e TextEncoding) Option {
	return func(c *Codec) {
		if e != nil {
			c.text = e
		}
	}
}

// WithNormalization makes Hide convert message text to Unicode NFC before
// encoding it.  Reveal then returns the normalised text, which may differ
// byte-for-byte from what was passed to Hide.
func WithNormalization(enabled bool) Option {
	return func(c *Codec) { c.normalize = enabled }
}

// Codec runs the hide and reveal pipelines.  It holds no per-call state and
// is safe for concurrent use when its collaborators are.
type Codec struct {
	sealer    encryption.Sealer
	images    ImageStore
	observer  Observer
	text      TextEncoding
	normalize bool
}

// New returns a Codec with the default framer, UTF-8 text and no observer.
func New(opts ...Option) *Codec {
	c := &Codec{
		sealer:   encryption.NewFramer(),
		observer: nopObserver{},
		text:     UTF8,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Hide encrypts plaintext under key and embeds the frame into a copy of
// cover.  cover is never modified.
//
// Possible errors: [encryption.ErrInvalidKeySize],
// [lsb.ErrInsufficientCapacity], [bitstream.ErrCapacityOverflow],
// [ErrInvalidEncoding].
func (c *Codec) Hide(plaintext string, cover raster.Buffer, key []byte) (raster.Buffer, error) {
	if c.normalize {
		plaintext = norm.NFC.String(plaintext)
	}
	data, err := c.text.Encode(plaintext)
	if err != nil {
		return raster.Buffer{}, err
	}
	return c.HideBytes(data, cover, key)
}

// HideBytes is Hide without the text encoding step.
func (c *Codec) HideBytes(plaintext []byte, cover raster.Buffer, key []byte) (raster.Buffer, error) {
	frame, err := c.sealer.Seal(plaintext, key)
	if err != nil {
		return raster.Buffer{}, err
	}
	c.observer.Observe(Event{Op: OpHide, Stage: StageSealed, Bytes: len(frame)})

	bits := bitstream.FromBytes(frame)
	stego, err := lsb.Embed(cover, bits)
	if err != nil {
		return raster.Buffer{}, err
	}
	c.observer.Observe(Event{
		Op:       OpHide,
		Stage:    StageEmbedded,
		Bytes:    len(frame),
		Bits:     len(bits),
		Capacity: lsb.Capacity(cover),
	})
	return stego, nil
}

// MaxMessageBytes returns the largest plaintext, in encoded bytes, that the
// default framer can hide in cover, or -1 when cover cannot hold any frame.
func MaxMessageBytes(cover raster.Buffer) int {
	return encryption.MaxPlaintext(lsb.Capacity(cover) / 8)
}

// Reveal extracts and decrypts the message hidden in stego.
//
// Possible errors: [lsb.ErrTruncatedStego], [bitstream.ErrMalformedBitstream],
// [encryption.ErrInvalidKeySize], [encryption.ErrTruncatedFrame],
// [encryption.ErrInvalidCiphertextLength], [encryption.ErrDecryptionFailed],
// [ErrInvalidEncoding].
func (c *Codec) Reveal(stego raster.Buffer, key []byte) (string, error) {
	data, err := c.RevealBytes(stego, key)
	if err != nil {
		return "", err
	}
	return c.text.Decode(data)
}

// RevealBytes is Reveal without the text decoding step.
func (c *Codec) RevealBytes(stego raster.Buffer, key []byte) ([]byte, error) {
	frame, err := lsb.Extract(stego)
	if err != nil {
		return nil, err
	}
	c.observer.Observe(Event{
		Op:       OpReveal,
		Stage:    StageExtracted,
		Bytes:    len(frame),
		Bits:     len(frame) * 8,
		Capacity: lsb.Capacity(stego),
	})

	plaintext, err := c.sealer.Open(frame, key)
	if err != nil {
		return nil, err
	}
	c.observer.Observe(Event{Op: OpReveal, Stage: StageOpened, Bytes: len(plaintext)})
	return plaintext, nil
}
