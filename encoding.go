// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jflat

import (
	"bytes"
	"errors"

	"github.com/creachadair/jflat/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return string(AppendQuote(nil, src)) }

// AppendQuote appends the JSON string encoding of src to buf, including the
// double quotation marks, and returns the extended slice.
func AppendQuote(buf []byte, src string) []byte {
	buf = append(buf, '"')
	buf = escape.AppendQuote(buf, mem.S(src))
	return append(buf, '"')
}

// Unquote decodes a JSON string value.  Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
//
// Unquote reports an error for an invalid or incomplete escape sequence, or
// for an unescaped control character. An unpaired surrogate escape decodes to
// the Unicode replacement rune.
func Unquote(src []byte) ([]byte, error) {
	if len(src) < 2 || !bytes.HasPrefix(src, []byte(`"`)) || !bytes.HasSuffix(src, []byte(`"`)) {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(mem.B(src[1 : len(src)-1]))
}
