// Package objstore reads and writes whole blobs (images, key files, key
// shares) from the local filesystem or an S3-compatible object store.
//
// References are plain paths, or URLs of the form
//
//	s3://bucket/path/to/object
//
// which [Router] sends to the S3 backend.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrNotFound is returned when the referenced blob does not exist.
	ErrNotFound = errors.New("objstore: not found")

	// ErrInvalidRef is returned for references that cannot be parsed.
	ErrInvalidRef = errors.New("objstore: invalid reference")

	// ErrNoBackend is returned when a reference needs a backend that has not
	// been configured.
	ErrNoBackend = errors.New("objstore: no backend for reference")
)

// Backend stores blobs by name.
type Backend interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte, opts PutOptions) error
}

// PutOptions tune how a blob is written.
type PutOptions struct {
	// ContentType is recorded by backends that support it.
	ContentType string
	// Private asks for owner-only access (0600 on the filesystem).  Key
	// material is always written with Private set.
	Private bool
}

// Ref is a parsed blob reference.
type Ref struct {
	Scheme string // "" for local paths, "s3" for object storage
	Bucket string
	Name   string
}

func (r Ref) String() string {
	if r.Scheme == "" {
		return r.Name
	}
	return r.Scheme + "://" + r.Bucket + "/" + r.Name
}

// ParseRef splits s into a [Ref].
func ParseRef(s string) (Ref, error) {
	if s == "" {
		return Ref{}, fmt.Errorf("%w: empty", ErrInvalidRef)
	}
	if !strings.Contains(s, "://") {
		return Ref{Name: s}, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}
	if u.Scheme != "s3" {
		return Ref{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRef, u.Scheme)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || name == "" {
		return Ref{}, fmt.Errorf("%w: %q needs a bucket and an object name", ErrInvalidRef, s)
	}
	return Ref{Scheme: u.Scheme, Bucket: u.Host, Name: name}, nil
}

// Router dispatches references to the filesystem or to S3.
type Router struct {
	FS *FS
	S3 *S3
}

// NewRouter returns a router backed by the local filesystem.  s3 may be nil,
// in which case s3:// references fail with [ErrNoBackend].
func NewRouter(s3 *S3) *Router {
	return &Router{FS: &FS{}, S3: s3}
}

// Get reads the blob at ref.
func (r *Router) Get(ctx context.Context, ref string) ([]byte, error) {
	b, name, err := r.resolve(ref)
	if err != nil {
		return nil, err
	}
	return b.Get(ctx, name)
}

// Put writes data to ref.
func (r *Router) Put(ctx context.Context, ref string, data []byte, opts PutOptions) error {
	b, name, err := r.resolve(ref)
	if err != nil {
		return err
	}
	return b.Put(ctx, name, data, opts)
}

func (r *Router) resolve(s string) (Backend, string, error) {
	ref, err := ParseRef(s)
	if err != nil {
		return nil, "", err
	}
	switch ref.Scheme {
	case "":
		if r.FS == nil {
			return nil, "", fmt.Errorf("%w: %s", ErrNoBackend, s)
		}
		return r.FS, ref.Name, nil
	default:
		if r.S3 == nil {
			return nil, "", fmt.Errorf("%w: %s", ErrNoBackend, s)
		}
		return r.S3.Bucket(ref.Bucket), ref.Name, nil
	}
}
