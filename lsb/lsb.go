// Package lsb hides a length-prefixed bitstream in the least-significant bit
// of 8-bit raster samples.
//
// # Layout
//
//	sample  0 .. 31            payload bit-length, MSB first
//	sample 32 .. 32+dataLen-1  payload bits, in order
//	sample 32+dataLen ..       untouched
//
// Only bit 0 of a touched sample ever changes. Capacity is counted in
// samples, so a three-channel image holds three times the bits of a
// single-channel image of the same size.
package lsb

import (
	"errors"
	"fmt"

	"github.com/hasbyte1/go-stegocrypt/bitstream"
	"github.com/hasbyte1/go-stegocrypt/raster"
)

// PrefixBits is the number of samples used by the length prefix.
const PrefixBits = bitstream.LengthBits

var (
	// ErrInsufficientCapacity is matched by [*CapacityError].
	ErrInsufficientCapacity = errors.New("lsb: insufficient capacity")

	// ErrTruncatedStego is returned when the declared payload length runs past
	// the end of the buffer, or the buffer cannot even hold a prefix.
	ErrTruncatedStego = errors.New("lsb: declared payload exceeds buffer")
)

// CapacityError reports how many samples an embed needed and how many the
// cover offered. It matches [ErrInsufficientCapacity] under errors.Is.
type CapacityError struct {
	Needed    int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("lsb: insufficient capacity: need %d samples, have %d", e.Needed, e.Available)
}

// Is reports whether target is [ErrInsufficientCapacity].
func (e *CapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}

// Capacity returns the number of payload bits buf can carry after the prefix.
func Capacity(buf raster.Buffer) int {
	if n := buf.Len() - PrefixBits; n > 0 {
		return n
	}
	return 0
}

// Embed writes payloadBits behind a 32-bit length prefix into a copy of
// cover. The cover buffer is never modified, and the returned buffer never
// shares memory with it.
func Embed(cover raster.Buffer, payloadBits []byte) (raster.Buffer, error) {
	if err := cover.Validate(); err != nil {
		return raster.Buffer{}, err
	}

	prefix, err := bitstream.EncodeLength(uint64(len(payloadBits)))
	if err != nil {
		return raster.Buffer{}, err
	}

	needed := PrefixBits + len(payloadBits)
	if needed > cover.Len() {
		return raster.Buffer{}, &CapacityError{Needed: needed, Available: cover.Len()}
	}

	stego := cover.Clone()
	writeBits(stego.Pix[:PrefixBits], prefix)
	writeBits(stego.Pix[PrefixBits:needed], payloadBits)
	return stego, nil
}

// ExtractBits reads the length prefix and returns exactly the payload bits it
// declares.
func ExtractBits(stego raster.Buffer) ([]byte, error) {
	if stego.Len() < PrefixBits {
		return nil, fmt.Errorf("%w: buffer has %d samples, prefix needs %d",
			ErrTruncatedStego, stego.Len(), PrefixBits)
	}

	dataLen, err := bitstream.DecodeLength(readBits(stego.Pix[:PrefixBits]))
	if err != nil {
		return nil, err
	}

	end := uint64(PrefixBits) + uint64(dataLen)
	if end > uint64(stego.Len()) {
		return nil, fmt.Errorf("%w: prefix declares %d bits, buffer holds %d",
			ErrTruncatedStego, dataLen, Capacity(stego))
	}
	return readBits(stego.Pix[PrefixBits:end]), nil
}

// Extract reads the hidden payload and packs it into bytes. It does not look
// at what the bytes contain.
func Extract(stego raster.Buffer) ([]byte, error) {
	bits, err := ExtractBits(stego)
	if err != nil {
		return nil, err
	}
	return bitstream.ToBytes(bits)
}

func writeBits(samples, bits []byte) {
	for i, bit := range bits {
		samples[i] = samples[i]&^1 | bit&1
	}
}

func readBits(samples []byte) []byte {
	bits := make([]byte, len(samples))
	for i, s := range samples {
		bits[i] = s & 1
	}
	return bits
}
