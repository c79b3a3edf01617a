package encryption

import "crypto/subtle"

// pkcs7Pad returns a new slice holding src followed by PKCS#7 padding up to a
// multiple of blockSize.  blockSize must be between 1 and 255 (AES uses 16).
//
// If len(src) is already a multiple of blockSize, a full extra block of padding
// is appended so that the padding can always be unambiguously removed.  src
// is never written to, even when it has spare capacity.
func pkcs7Pad(src []byte, blockSize int) []byte {
	padding := blockSize - (len(src) % blockSize)
	out := make([]byte, len(src)+padding)
	copy(out, src)
	for i := len(src); i < len(out); i++ {
		out[i] = byte(padding)
	}
	return out
}

// pkcs7Unpad removes PKCS#7 padding from src and returns the original data.
//
// The frame is unauthenticated, so this runs on attacker-controlled input.
// The check therefore inspects the whole final block whatever the padding
// value claims, and every failure is the same [ErrDecryptionFailed] with no
// position information.
func pkcs7Unpad(src []byte, blockSize int) ([]byte, error) {
	length := len(src)
	if length == 0 || length%blockSize != 0 {
		return nil, ErrDecryptionFailed
	}

	padding := int(src[length-1])
	good := subtle.ConstantTimeLessOrEq(1, padding) & subtle.ConstantTimeLessOrEq(padding, blockSize)
	for i := 0; i < blockSize; i++ {
		inPadding := subtle.ConstantTimeLessOrEq(i+1, padding)
		match := subtle.ConstantTimeByteEq(src[length-1-i], byte(padding))
		good &= subtle.ConstantTimeSelect(inPadding, match, 1)
	}
	if good != 1 {
		return nil, ErrDecryptionFailed
	}
	return src[:length-padding], nil
}
