// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. A \u escape
// for a high surrogate followed by a \u escape for a low surrogate decodes to
// the single code point they encode. An unpaired surrogate decodes to the
// Unicode replacement rune. Unquote reports an error for an unknown, invalid,
// or incomplete escape sequence, and for an unescaped control character.
//
// Unquote does not check that src is valid UTF-8.
func Unquote(src mem.RO) ([]byte, error) {
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		if err := checkControl(src); err != nil {
			return nil, err
		}
		return mem.Append(make([]byte, 0, src.Len()), src), nil
	}

	dec := make([]byte, 0, src.Len())
	for {
		lit := src.SliceTo(i)
		if err := checkControl(lit); err != nil {
			return nil, err
		}
		dec = mem.Append(dec, lit)

		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}
		b := src.At(0)
		src = src.SliceFrom(1)
		switch b {
		case '"', '\\', '/':
			dec = append(dec, b)
		case 'b':
			dec = append(dec, '\b')
		case 'f':
			dec = append(dec, '\f')
		case 'n':
			dec = append(dec, '\n')
		case 'r':
			dec = append(dec, '\r')
		case 't':
			dec = append(dec, '\t')
		case 'u':
			r, n, err := decodeUnicode(src)
			if err != nil {
				return nil, err
			}
			dec = utf8.AppendRune(dec, r)
			src = src.SliceFrom(n)
		default:
			return nil, fmt.Errorf("invalid escape %q", b)
		}

		// Look for the next escape sequence, and if one is not found we can blit
		// the rest of the input and go home.
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			if err := checkControl(src); err != nil {
				return nil, err
			}
			return mem.Append(dec, src), nil
		}
	}
}

// decodeUnicode decodes the hex digits of a \u escape at the front of src,
// which begins just after the "u". It returns the decoded rune and the number
// of bytes of src consumed. If the escape is a high surrogate and is followed
// immediately by an escaped low surrogate, both are consumed.
func decodeUnicode(src mem.RO) (rune, int, error) {
	if src.Len() < 4 {
		return 0, 0, errors.New("incomplete Unicode escape")
	}
	v, err := ParseHex(src.SliceTo(4))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid Unicode escape: %w", err)
	}
	r := rune(v)
	if !utf16.IsSurrogate(r) {
		return r, 4, nil
	}
	if IsHighSurrogate(r) && src.Len() >= 10 && src.At(4) == '\\' && src.At(5) == 'u' {
		lo, err := ParseHex(src.Slice(6, 10))
		if err == nil && IsLowSurrogate(rune(lo)) {
			return utf16.DecodeRune(r, rune(lo)), 10, nil
		}
	}
	return utf8.RuneError, 4, nil
}

// IsHighSurrogate reports whether r is the first half of a UTF-16 surrogate
// pair.
func IsHighSurrogate(r rune) bool { return r >= 0xd800 && r < 0xdc00 }

// IsLowSurrogate reports whether r is the second half of a UTF-16 surrogate
// pair.
func IsLowSurrogate(r rune) bool { return r >= 0xdc00 && r < 0xe000 }

func checkControl(src mem.RO) error {
	for i := 0; i < src.Len(); i++ {
		if b := src.At(i); b < ' ' {
			return fmt.Errorf("unescaped control %q", b)
		}
	}
	return nil
}

// ParseHex parses data as an unsigned hexadecimal value.
func ParseHex(data mem.RO) (int64, error) {
	var v int64
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += int64(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += int64(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += int64(b - 'A' + 10)
		} else {
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}
