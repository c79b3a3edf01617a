package keystore

import (
	"fmt"

	bstd "github.com/deneonet/benc/std"
	"github.com/mxmauro/shamir"

	"github.com/hasbyte1/go-stegocrypt/encryption"
)

const shareVersion = 1

// Share is one part of a key split with [Split].  Any Threshold shares from
// the same split recombine into the key.
type Share struct {
	Threshold uint8
	Data      []byte
}

// Split divides key into n shares, any threshold of which recover it.
func Split(key []byte, n, threshold int) ([]Share, error) {
	if len(key) != encryption.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", encryption.ErrInvalidKeySize, len(key))
	}
	if threshold < 2 || threshold > n || n > 255 {
		return nil, fmt.Errorf("keystore: need 2 <= threshold <= shares <= 255, got threshold %d of %d", threshold, n)
	}

	parts, err := shamir.Split(key, n, threshold)
	if err != nil {
		return nil, fmt.Errorf("keystore: split: %w", err)
	}
	shares := make([]Share, len(parts))
	for i, p := range parts {
		shares[i] = Share{Threshold: uint8(threshold), Data: p}
	}
	return shares, nil
}

// Combine recovers a key from shares.  It needs at least as many shares as
// the threshold recorded in them.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares", ErrInvalidShare)
	}
	threshold := shares[0].Threshold
	parts := make([][]byte, len(shares))
	for i, s := range shares {
		if s.Threshold != threshold || len(s.Data) != len(shares[0].Data) {
			return nil, fmt.Errorf("%w: shares come from different splits", ErrInvalidShare)
		}
		parts[i] = s.Data
	}
	if len(shares) < int(threshold) {
		return nil, fmt.Errorf("%w: have %d shares, need %d", ErrInvalidShare, len(shares), threshold)
	}

	key, err := shamir.Combine(parts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	if len(key) != encryption.KeySize {
		Wipe(key)
		return nil, fmt.Errorf("%w: recovered %d bytes", ErrInvalidShare, len(key))
	}
	return key, nil
}

// Marshal encodes s as a versioned record.
func (s Share) Marshal() []byte {
	buf := make([]byte, bstd.SizeUint16()+bstd.SizeByte()+bstd.SizeBytes(s.Data))

	ofs := bstd.MarshalUint16(0, buf, shareVersion)
	ofs = bstd.MarshalByte(ofs, buf, s.Threshold)
	bstd.MarshalBytes(ofs, buf, s.Data)
	return buf
}

// UnmarshalShare decodes a record written by [Share.Marshal].
func UnmarshalShare(buf []byte) (Share, error) {
	var s Share

	if len(buf) <= bstd.SizeUint16() {
		return s, ErrInvalidShare
	}
	ofs, version, err := bstd.UnmarshalUint16(0, buf)
	if err != nil {
		return s, ErrInvalidShare
	}
	switch version {
	case 1:
		ofs, s.Threshold, err = bstd.UnmarshalByte(ofs, buf)
		if err != nil {
			return s, ErrInvalidShare
		}
		ofs, s.Data, err = bstd.UnmarshalBytesCopied(ofs, buf)
		if err != nil {
			return s, ErrInvalidShare
		}
	default:
		return s, fmt.Errorf("%w: unsupported version %d", ErrInvalidShare, version)
	}

	if ofs != len(buf) || s.Threshold < 2 || len(s.Data) < 2 {
		return Share{}, ErrInvalidShare
	}
	return s, nil
}
