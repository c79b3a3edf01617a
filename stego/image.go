package stego

import (
	"context"
	"fmt"

	"github.com/hasbyte1/go-stegocrypt/raster"
)

// ImageStore loads and saves pixel buffers by reference (a file path or an
// object URL).  It owns format decoding and encoding; the codec only ever
// sees 8-bit samples.  *imagestore.Store satisfies it.
type ImageStore interface {
	Load(ctx context.Context, ref string) (raster.Buffer, error)
	Save(ctx context.Context, buf raster.Buffer, ref string) error
}

// HideImage loads coverRef, hides plaintext in it and saves the result to
// stegoRef.
func (c *Codec) HideImage(ctx context.Context, plaintext, coverRef, stegoRef string, key []byte) error {
	if c.images == nil {
		return ErrNoImageStore
	}
	cover, err := c.images.Load(ctx, coverRef)
	if err != nil {
		return fmt.Errorf("stego: load cover %s: %w", coverRef, err)
	}
	stego, err := c.Hide(plaintext, cover, key)
	if err != nil {
		return err
	}
	if err := c.images.Save(ctx, stego, stegoRef); err != nil {
		return fmt.Errorf("stego: save %s: %w", stegoRef, err)
	}
	return nil
}

// RevealImage loads stegoRef and reveals the message hidden in it.
func (c *Codec) RevealImage(ctx context.Context, stegoRef string, key []byte) (string, error) {
	if c.images == nil {
		return "", ErrNoImageStore
	}
	stego, err := c.images.Load(ctx, stegoRef)
	if err != nil {
		return "", fmt.Errorf("stego: load %s: %w", stegoRef, err)
	}
	return c.Reveal(stego, key)
}
