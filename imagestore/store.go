package imagestore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hasbyte1/go-stegocrypt/objstore"
	"github.com/hasbyte1/go-stegocrypt/raster"
)

// Blobs is the byte-level storage a [Store] reads and writes through.
// *objstore.Router satisfies it.
type Blobs interface {
	Get(ctx context.Context, ref string) ([]byte, error)
	Put(ctx context.Context, ref string, data []byte, opts objstore.PutOptions) error
}

// Store loads and saves images by reference.  It satisfies stego.ImageStore.
type Store struct {
	blobs Blobs
}

// New returns a store over blobs.
func New(blobs Blobs) *Store {
	return &Store{blobs: blobs}
}

// Load reads and decodes the image at ref.
func (s *Store) Load(ctx context.Context, ref string) (raster.Buffer, error) {
	buf, _, err := s.LoadFormat(ctx, ref)
	return buf, err
}

// LoadFormat is like Load but also reports the format that was decoded.
func (s *Store) LoadFormat(ctx context.Context, ref string) (raster.Buffer, Format, error) {
	data, err := s.blobs.Get(ctx, ref)
	if err != nil {
		return raster.Buffer{}, "", err
	}
	buf, f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return raster.Buffer{}, "", fmt.Errorf("%s: %w", ref, err)
	}
	return buf, f, nil
}

// Save encodes buf in the format named by ref's extension and writes it.
func (s *Store) Save(ctx context.Context, buf raster.Buffer, ref string) error {
	f, err := FormatFromName(ref)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := Encode(&out, buf, f); err != nil {
		return err
	}
	return s.blobs.Put(ctx, ref, out.Bytes(), objstore.PutOptions{ContentType: f.ContentType()})
}
