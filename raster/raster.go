// Package raster defines the flat pixel-sample buffer shared by the LSB codec,
// the image store and the orchestrator.
//
// A [Buffer] holds 8-bit samples in row-major, channel-interleaved order:
//
//	y=0: x=0 [c0 c1 c2] x=1 [c0 c1 c2] ...
//	y=1: ...
//
// The [Shape] travels with the samples so that an embed/extract round trip
// can hand the image store back exactly the geometry it produced.
package raster

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when a buffer's sample count does not match
// Width × Height × Channels.
var ErrShapeMismatch = errors.New("raster: sample count does not match shape")

// Shape is the logical geometry of a [Buffer].
type Shape struct {
	Width    int
	Height   int
	Channels int
}

// Len returns the number of samples a buffer of this shape holds.
func (s Shape) Len() int {
	return s.Width * s.Height * s.Channels
}

// String renders the shape the way image tools usually print array shapes.
func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.Height, s.Width, s.Channels)
}

// Buffer is a flat sequence of 8-bit samples plus its shape.
type Buffer struct {
	Pix   []uint8
	Shape Shape
}

// New allocates a zeroed buffer for the given shape.
func New(shape Shape) Buffer {
	return Buffer{Pix: make([]uint8, shape.Len()), Shape: shape}
}

// Flat wraps samples in a one-row, single-channel buffer. It is useful for
// callers that only care about sample capacity.
func Flat(samples []uint8) Buffer {
	return Buffer{Pix: samples, Shape: Shape{Width: len(samples), Height: 1, Channels: 1}}
}

// Len returns the number of samples in b.
func (b Buffer) Len() int { return len(b.Pix) }

// Validate reports [ErrShapeMismatch] when the shape and sample count disagree.
func (b Buffer) Validate() error {
	if b.Shape.Width < 0 || b.Shape.Height < 0 || b.Shape.Channels < 0 {
		return fmt.Errorf("%w: negative dimension in %v", ErrShapeMismatch, b.Shape)
	}
	if b.Shape.Len() != len(b.Pix) {
		return fmt.Errorf("%w: shape %v needs %d samples, have %d",
			ErrShapeMismatch, b.Shape, b.Shape.Len(), len(b.Pix))
	}
	return nil
}

// Clone returns a deep copy of b. The copy never shares sample memory with b.
func (b Buffer) Clone() Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return Buffer{Pix: pix, Shape: b.Shape}
}
