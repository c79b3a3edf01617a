package stego

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextEncoding converts message text to and from the bytes that get
// encrypted.  Encode and Decode must fail, not substitute, on invalid input.
type TextEncoding interface {
	Name() string
	Encode(s string) ([]byte, error)
	Decode(b []byte) (string, error)
}

var (
	// UTF8 is the default encoding.
	UTF8 TextEncoding = utf8Encoding{}
	// UTF16LE is little-endian UTF-16 without a byte-order mark.
	UTF16LE TextEncoding = &xtextEncoding{name: "utf-16le", enc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)}
	// UTF16BE is big-endian UTF-16 without a byte-order mark.
	UTF16BE TextEncoding = &xtextEncoding{name: "utf-16be", enc: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
)

// EncodingByName looks up a [TextEncoding] by its configuration name.
// Names are case-insensitive; "utf8" and "utf-8" are equivalent.
func EncodingByName(name string) (TextEncoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "utf-16le", "utf16le":
		return UTF16LE, nil
	case "utf-16be", "utf16be":
		return UTF16BE, nil
	default:
		return nil, fmt.Errorf("stego: unknown text encoding %q", name)
	}
}

type utf8Encoding struct{}

func (utf8Encoding) Name() string { return "utf-8" }

func (utf8Encoding) Encode(s string) ([]byte, error) {
	return validateUTF8([]byte(s))
}

func (utf8Encoding) Decode(b []byte) (string, error) {
	out, err := validateUTF8(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func validateUTF8(b []byte) ([]byte, error) {
	out, _, err := transform.Bytes(encoding.UTF8Validator, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}

// xtextEncoding wraps an x/text encoding.  Those decoders replace invalid
// input with U+FFFD instead of failing, so Decode re-encodes its result and
// rejects anything that does not reproduce the input exactly.
type xtextEncoding struct {
	name string
	enc  encoding.Encoding
}

func (e *xtextEncoding) Name() string { return e.name }

// Encode rejects invalid UTF-8 up front; the x/text encoders would replace it
// with U+FFFD.
func (e *xtextEncoding) Encode(s string) ([]byte, error) {
	valid, err := validateUTF8([]byte(s))
	if err != nil {
		return nil, err
	}
	out, err := e.enc.NewEncoder().Bytes(valid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}

func (e *xtextEncoding) Decode(b []byte) (string, error) {
	decoded, err := e.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	again, err := e.enc.NewEncoder().Bytes(decoded)
	if err != nil || !bytes.Equal(again, b) {
		return "", fmt.Errorf("%w: not valid %s", ErrInvalidEncoding, e.name)
	}
	return string(decoded), nil
}
