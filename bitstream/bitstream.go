// Package bitstream converts between byte sequences and ordered bit
// sequences.
//
// Bits are represented as one byte per bit holding 0 or 1, most-significant
// bit first. The package also encodes the fixed 32-bit length counter that
// prefixes every payload hidden by package lsb.
package bitstream

import (
	"errors"
	"fmt"
	"math"
)

// LengthBits is the width of the length counter produced by [EncodeLength].
const LengthBits = 32

var (
	// ErrMalformedBitstream is returned when a bit sequence cannot be grouped
	// into whole bytes, or a length counter does not have exactly 32 bits.
	ErrMalformedBitstream = errors.New("bitstream: malformed bitstream")

	// ErrCapacityOverflow is returned when a length does not fit the 32-bit
	// counter.
	ErrCapacityOverflow = errors.New("bitstream: length exceeds 32-bit prefix range")
)

// FromBytes expands every byte of data into 8 bits, MSB first.
func FromBytes(data []byte) []byte {
	bits := make([]byte, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (b >> (7 - j)) & 1
		}
	}
	return bits
}

// ToBytes packs groups of 8 bits, MSB first, back into bytes. Only bit 0 of
// each element is used.
func ToBytes(bits []byte) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits is not a multiple of 8", ErrMalformedBitstream, len(bits))
	}
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for _, bit := range bits[i*8 : i*8+8] {
			b = b<<1 | bit&1
		}
		out[i] = b
	}
	return out, nil
}

// EncodeLength returns the 32-bit big-endian bit encoding of n.
func EncodeLength(n uint64) ([]byte, error) {
	if n > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrCapacityOverflow, n)
	}
	bits := make([]byte, LengthBits)
	for i := 0; i < LengthBits; i++ {
		bits[i] = byte(n>>(LengthBits-1-i)) & 1
	}
	return bits, nil
}

// DecodeLength is the inverse of [EncodeLength].
func DecodeLength(bits []byte) (uint32, error) {
	if len(bits) != LengthBits {
		return 0, fmt.Errorf("%w: length prefix needs %d bits, got %d",
			ErrMalformedBitstream, LengthBits, len(bits))
	}
	var n uint32
	for _, bit := range bits {
		n = n<<1 | uint32(bit&1)
	}
	return n, nil
}
