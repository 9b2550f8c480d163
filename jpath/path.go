// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package jpath defines paths that address values inside a JSON document,
// a stack for tracking the current path during a traversal, and a minimal
// JSONPath expression language for selecting paths.
//
// A Path is a sequence of segments, each either an object key or an array
// index, leading from the root of a document to a value. The empty path
// addresses the root. The canonical text of a path is a JSON array of its
// segments:
//
//	{"items": ["a", "b"]}   // "b" has path ["items",1]
package jpath

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/creachadair/jflat"
)

// A Segment is a single step of a Path: either an object key or an array
// index. The zero Segment is the array index 0.
type Segment struct {
	key   string
	text  string // source text of key, if it differs from the quoted key
	index int    // < 0 for a key segment
}

// Key returns a segment for the object key k.
func Key(k string) Segment { return Segment{key: k, index: -1} }

// KeyText returns a segment for the object key k, decoded from the JSON string
// literal text. The segment remembers text if it is not the canonical quoted
// form of k, for example if it uses escapes that Quote would not.
func KeyText(k string, text []byte) Segment {
	s := Key(k)
	s.setText(text)
	return s
}

func (s *Segment) setText(text []byte) {
	if isPlain(text) || string(text) == jflat.Quote(s.key) {
		s.text = ""
	} else {
		s.text = string(text)
	}
}

// isPlain reports whether text is ASCII without escapes. Such a literal is
// always the canonical quotation of its value.
func isPlain(text []byte) bool {
	for _, b := range text {
		if b == '\\' || b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Index returns a segment for the array index i. It panics if i < 0.
func Index(i int) Segment {
	if i < 0 {
		panic(fmt.Sprintf("jpath: negative index %d", i))
	}
	return Segment{index: i}
}

// IsIndex reports whether s is an array index.
func (s Segment) IsIndex() bool { return s.index >= 0 }

// Key returns the object key of s and true, or "" and false if s is an index.
func (s Segment) Key() (string, bool) { return s.key, s.index < 0 }

// Index returns the array index of s and true, or 0 and false if s is a key.
func (s Segment) Index() (int, bool) { return max(s.index, 0), s.index >= 0 }

// Equal reports whether s and t are the same segment. The source text of a
// key is not compared.
func (s Segment) Equal(t Segment) bool { return s.key == t.key && s.index == t.index }

// String renders s as it appears in the canonical text of a path: a quoted
// JSON string for a key, a decimal integer for an index.
func (s Segment) String() string {
	if s.IsIndex() {
		return strconv.Itoa(s.index)
	}
	return jflat.Quote(s.key)
}

// A Path is a sequence of segments addressing a value from the root of a
// document. The empty path addresses the root.
type Path []Segment

// Equal reports whether p and q have the same segments in the same order.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if !p[i].Equal(q[i]) {
			return false
		}
	}
	return true
}

// String renders the canonical text of p, for example ["items",1].
// The root path renders as [].
func (p Path) String() string { return string(p.AppendText(nil)) }

// AppendText appends the canonical text of p to buf and returns the extended
// slice.
func (p Path) AppendText(buf []byte) []byte {
	buf = append(buf, '[')
	for i, seg := range p {
		if i > 0 {
			buf = append(buf, ',')
		}
		if seg.IsIndex() {
			buf = strconv.AppendInt(buf, int64(seg.index), 10)
		} else {
			buf = jflat.AppendQuote(buf, seg.key)
		}
	}
	return append(buf, ']')
}

// AppendSource is like AppendText, but writes each key in the form it had in
// the input, when that is known. For example, the key of {"\u0041":1} is
// written as "\u0041" rather than "A".
func (p Path) AppendSource(buf []byte) []byte {
	buf = append(buf, '[')
	for i, seg := range p {
		if i > 0 {
			buf = append(buf, ',')
		}
		switch {
		case seg.IsIndex():
			buf = strconv.AppendInt(buf, int64(seg.index), 10)
		case seg.text != "":
			buf = append(buf, seg.text...)
		default:
			buf = jflat.AppendQuote(buf, seg.key)
		}
	}
	return append(buf, ']')
}

// JSONPath renders p as a JSONPath expression that selects exactly p, for
// example $.items[1] or $['odd key'][0].
func (p Path) JSONPath() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, seg := range p {
		if seg.IsIndex() {
			fmt.Fprintf(&buf, "[%d]", seg.index)
		} else if plainName.MatchString(seg.key) {
			buf.WriteString(".")
			buf.WriteString(seg.key)
		} else {
			fmt.Fprintf(&buf, "['%s']", seg.key)
		}
	}
	return buf.String()
}

var plainName = regexp.MustCompile(`^\w+$`)

// ParsePath parses the canonical text of a path, as produced by Path.String.
func ParsePath(s string) (Path, error) {
	sc := jflat.NewScanner(strings.NewReader(s))
	if err := sc.Next(); err != nil || sc.Token() != jflat.LSquare {
		return nil, fmt.Errorf("path must begin with %v", jflat.LSquare)
	}
	var p Path
	for {
		if err := sc.Next(); err != nil {
			return nil, fmt.Errorf("invalid path segment: %w", err)
		}
		switch sc.Token() {
		case jflat.RSquare:
			if len(p) != 0 {
				return nil, fmt.Errorf("unexpected %v after %v", jflat.RSquare, jflat.Comma)
			}
			return p, checkEnd(sc)
		case jflat.String:
			key, err := sc.Unescape()
			if err != nil {
				return nil, fmt.Errorf("invalid key: %w", err)
			}
			p = append(p, Key(string(key)))
		case jflat.Integer:
			v, err := strconv.Atoi(string(sc.Text()))
			if err != nil || v < 0 {
				return nil, fmt.Errorf("invalid index %q", sc.Text())
			}
			p = append(p, Index(v))
		default:
			return nil, fmt.Errorf("unexpected %v in path", sc.Token())
		}

		if err := sc.Next(); err != nil {
			return nil, fmt.Errorf("incomplete path: %w", err)
		}
		switch sc.Token() {
		case jflat.Comma:
			continue
		case jflat.RSquare:
			return p, checkEnd(sc)
		default:
			return nil, fmt.Errorf("unexpected %v in path", sc.Token())
		}
	}
}

func checkEnd(sc *jflat.Scanner) error {
	if err := sc.Next(); err != io.EOF {
		return fmt.Errorf("extra text after path")
	}
	return nil
}
