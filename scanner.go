// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jflat

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/creachadair/jflat/internal/escape"

	"go4.org/mem"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid    Token = iota // invalid token
	LBrace                  // left brace "{"
	RBrace                  // right brace "}"
	LSquare                 // left square bracket "["
	RSquare                 // right square bracket "]"
	Comma                   // comma ","
	Colon                   // colon ":"
	Integer                 // number: integer with no fraction or exponent
	Number                  // number with fraction and/or exponent
	String                  // quoted string
	True                    // constant: true
	False                   // constant: false
	Null                    // constant: null
	EndOfInput              // end of input
)

var tokenStr = [...]string{
	Invalid:    "invalid token",
	LBrace:     `"{"`,
	RBrace:     `"}"`,
	LSquare:    `"["`,
	RSquare:    `"]"`,
	Comma:      `","`,
	Colon:      `":"`,
	Integer:    "integer",
	Number:     "number",
	String:     "string",
	True:       "true",
	False:      "false",
	Null:       "null",
	EndOfInput: "end of input",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// IsScalar reports whether t is the token of a scalar (non-container) value.
func (t Token) IsScalar() bool {
	switch t {
	case Integer, Number, String, True, False, Null:
		return true
	}
	return false
}

// A Scanner reads lexical tokens from an input stream.  Each call to Next
// advances the scanner to the next token, or reports an error.
type Scanner struct {
	r      *bufio.Reader
	strict bool         // reject unpaired surrogate escapes
	buf    bytes.Buffer // current token
	tbuf   [][]byte     // allocation pool
	tok    Token
	err    error

	pos, end int // start and end offsets of current token
	last     int // size in bytes of last-read input rune

	// Apparent line and column offsets (0-based)
	pline, pcol int
	eline, ecol int
}

// NewScanner constructs a new lexical scanner that consumes input from r.
func NewScanner(r io.Reader) *Scanner {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Scanner{r: br}
}

// StrictUnicode configures the scanner to reject (true) or accept (false)
// string literals containing an unpaired UTF-16 surrogate escape, such as
// "\ud800" not followed by a low surrogate. Accepted unpaired surrogates
// decode to the Unicode replacement rune. The default is false.
func (s *Scanner) StrictUnicode(ok bool) { s.strict = ok }

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF and the current token is
// EndOfInput. After a lexical error, every subsequent call to Next reports
// the same error.
func (s *Scanner) Next() error {
	if s.err != nil && s.tok == Invalid {
		return s.err
	}
	s.buf.Reset()
	s.err = nil
	s.tok = Invalid
	s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol

	for {
		ch, err := s.rune()
		if err == io.EOF {
			s.tok = EndOfInput
			s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol
			return s.setErr(err)
		} else if err != nil {
			return s.fail(err)
		}

		// Discard whitespace.
		if isSpace(ch) {
			s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol
			if ch == '\n' {
				s.eline++
				s.ecol = 0
				s.pline, s.pcol = s.eline, s.ecol
			}
			continue
		}

		// Handle punctuation.
		if t, ok := selfDelim(ch); ok {
			s.buf.WriteRune(ch)
			s.tok = t
			return nil
		}

		// Handle numbers.
		if isNumStart(ch) {
			return s.scanNumber(ch)
		}

		// Handle string values.
		if ch == '"' {
			return s.scanString(ch)
		}

		// Handle constants: true, false, null
		var want mem.RO
		var tok Token
		switch ch {
		case 't':
			tok, want = True, mem.S("true")
		case 'f':
			tok, want = False, mem.S("false")
		case 'n':
			tok, want = Null, mem.S("null")
		default:
			if ch == utf8.RuneError && s.last == 1 {
				return s.failf(EncodingError, "invalid UTF-8 byte")
			}
			return s.failf(LexicalError, "unexpected %q", ch)
		}
		if err := s.scanName(ch); err != nil {
			return err
		} else if got := mem.B(s.buf.Bytes()); !got.Equal(want) {
			return s.failAt(s.pos, LexicalError, fmt.Errorf("unknown constant %q", got.StringCopy()))
		}
		s.tok = tok
		return nil
	}
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token.  The return value is
// only valid until the next call of Next. The caller must copy the contents of
// the returned slice if it is needed beyond that.
func (s *Scanner) Text() []byte { return s.buf.Bytes() }

// Copy returns a copy of the undecoded text of the current token.
func (s *Scanner) Copy() []byte { return s.copyOf(s.buf.Bytes()) }

// Unescape returns the decoded value of the current String token, with the
// quotation marks removed and escapes replaced. For any other token, it
// returns a copy of the token text.
func (s *Scanner) Unescape() ([]byte, error) {
	if s.tok != String {
		return s.Copy(), nil
	}
	return Unquote(s.buf.Bytes())
}

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: LineCol{Line: s.pline + 1, Column: s.pcol},
		Last:  LineCol{Line: s.eline + 1, Column: s.ecol},
	}
}

// lineColAt returns the line and column of offset pos, which must be on the
// current line of input.
func (s *Scanner) lineColAt(pos int) LineCol {
	return LineCol{Line: s.eline + 1, Column: max(s.ecol-(s.end-pos), 0)}
}

func (s *Scanner) scanString(open rune) error {
	s.buf.WriteRune(open)
	var esc bool // awaiting the completion of a \-escape
	high := -1   // offset of a high surrogate escape awaiting its low half (strict)
	for {
		ch, err := s.rune()
		if err == io.EOF {
			return s.failf(LexicalError, "unterminated string")
		} else if err != nil {
			return s.fail(err)
		}
		if high >= 0 && !(esc && ch == 'u') && !(!esc && ch == '\\') {
			return s.failAt(high, EncodingError, errors.New("unpaired surrogate in string"))
		}
		if esc {
			switch ch {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				s.buf.WriteByte(byte(ch))
			case 'u':
				s.buf.WriteByte(byte(ch))
				r, err := s.readHex4()
				if err != nil {
					return s.failf(LexicalError, "invalid Unicode escape: %w", err)
				}
				if s.strict {
					switch {
					case high >= 0 && escape.IsLowSurrogate(r):
						high = -1
					case high >= 0:
						return s.failAt(high, EncodingError, errors.New("unpaired surrogate in string"))
					case escape.IsLowSurrogate(r):
						return s.failAt(s.end-6, EncodingError, fmt.Errorf("unpaired surrogate %U", r))
					case escape.IsHighSurrogate(r):
						high = s.end - 6
					}
				}
			default:
				return s.failf(LexicalError, "invalid %q after escape", ch)
			}
			esc = false
		} else if ch == open {
			s.buf.WriteRune(ch)
			s.tok = String
			return nil
		} else if ch < ' ' {
			return s.failf(LexicalError, "unescaped control %q", ch)
		} else if ch == utf8.RuneError && s.last == 1 {
			return s.failf(EncodingError, "invalid UTF-8 byte in string")
		} else {
			s.buf.WriteRune(ch)
			esc = ch == '\\'
		}
	}
}

func (s *Scanner) scanNumber(start rune) error {
	s.buf.WriteRune(start)

	if start == '-' {
		// If there is a leading sign, we need at least one digit.
		// Otherwise, we already have one in start.
		ch, err := s.require(isDigit, "digit")
		if err != nil {
			return err
		}
		s.buf.WriteRune(ch)
	}

	// Consume the remainder of an integer.
	_, ch, err := s.readWhile(isDigit)
	if err != nil && err != io.EOF {
		return s.fail(err)
	}

	// Check for extra leading zeroes, which JSON does not allow.
	// That is: 0.12 is OK, 01.2 is not.
	if hasExtraLeadingZeroes(s.buf.Bytes()) {
		return s.failAt(s.pos, LexicalError, fmt.Errorf("extra leading zeroes"))
	}
	s.tok = Integer
	if err == io.EOF {
		return nil
	}

	// If a decimal point follows, consume a fractional part.
	if ch == '.' {
		s.buf.WriteRune(ch)
		var nr int
		nr, ch, err = s.readWhile(isDigit)
		if err != nil && err != io.EOF {
			return s.fail(err)
		} else if nr == 0 {
			return s.failf(LexicalError, "no digits after decimal point")
		}
		s.tok = Number
		if err == io.EOF {
			return nil
		}
	}

	// If an exponent follows, consume it.
	if ch != 'E' && ch != 'e' {
		s.unrune()
		return nil
	}

	s.buf.WriteRune(ch)
	ch, err = s.require(isExpStart, "sign or digit")
	if err != nil {
		return err
	}
	s.buf.WriteRune(ch)
	s.tok = Number
	nr, _, err := s.readWhile(isDigit)
	if err != nil && err != io.EOF {
		return s.fail(err)
	} else if nr == 0 && (ch == '-' || ch == '+') {
		// It's OK to have no digits if the previous rune was not a sign,
		// otherwise we have to have at least one.
		return s.failf(LexicalError, "missing exponent digits")
	}
	if err == nil {
		s.unrune()
	}
	return nil
}

func (s *Scanner) scanName(first rune) error {
	s.buf.WriteRune(first)
	_, _, err := s.readWhile(isNameRune)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return s.fail(err)
	}
	s.unrune()
	return nil
}

func (s *Scanner) rune() (rune, error) {
	ch, nb, err := s.r.ReadRune()
	s.last = nb
	s.end += nb
	s.ecol += nb
	return ch, err
}

func (s *Scanner) unrune() {
	s.end -= s.last
	s.ecol -= s.last
	s.last = 0
	s.r.UnreadRune()
}

// require reads a single rune matching f from the input, or returns an error
// mentioning the desired label.
func (s *Scanner) require(f func(rune) bool, label string) (rune, error) {
	ch, err := s.rune()
	if err == io.EOF {
		return 0, s.failf(LexicalError, "want %s, got end of input", label)
	} else if err != nil {
		return 0, s.fail(err)
	} else if !f(ch) {
		return 0, s.failf(LexicalError, "got %q, want %s", ch, label)
	}
	return ch, nil
}

// readWhile consumes runes matching f from the input until EOF or until a rune
// not matching f is found. The first non-matching rune (if any) is returned.
// It is the caller's responsibility to unread this rune, if desired.
// The int reports the number of runes consumed.
func (s *Scanner) readWhile(f func(rune) bool) (int, rune, error) {
	var nr int
	for {
		ch, err := s.rune()
		if err != nil {
			return nr, 0, err
		} else if !f(ch) {
			return nr, ch, nil
		}
		s.buf.WriteRune(ch)
		nr++
	}
}

// readHex4 reads exactly 4 hexadecimal digits from the input and returns the
// value they encode.
func (s *Scanner) readHex4() (rune, error) {
	for i := 0; i < 4; i++ {
		ch, err := s.rune()
		if err == io.EOF {
			return 0, io.ErrUnexpectedEOF
		} else if err != nil {
			return 0, err
		} else if !isHexDigit(ch) {
			return 0, fmt.Errorf("not a hex digit: %q", ch)
		}
		s.buf.WriteRune(ch)
	}
	text := s.buf.Bytes()
	v, err := escape.ParseHex(mem.B(text[len(text)-4:]))
	return rune(v), err
}

// posError is the concrete type of lexical errors reported by a Scanner.
type posError struct {
	pos  int
	kind ErrorKind
	err  error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

// fail records err, an error from the underlying reader.
func (s *Scanner) fail(err error) error {
	s.tok = Invalid
	return s.setErr(err)
}

func (s *Scanner) failf(kind ErrorKind, msg string, args ...any) error {
	return s.failAt(s.end-s.last, kind, fmt.Errorf(msg, args...))
}

func (s *Scanner) failAt(pos int, kind ErrorKind, err error) error {
	s.tok = Invalid
	return s.setErr(posError{pos: pos, kind: kind, err: err})
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch rune) bool { return ch == '-' || isDigit(ch) }
func isExpStart(ch rune) bool { return ch == '-' || ch == '+' || isDigit(ch) }
func isDigit(ch rune) bool    { return '0' <= ch && ch <= '9' }
func isNameRune(ch rune) bool { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// hasExtraLeadingZeroes reports whether the representation of an integer in
// buf has redundant leading zeroes, which JSON does not allow.
//
// OK: 0, 0.1, -1.0, -0.1 are all OK.
// Bad: -01, 01.2, -01.0, 00.1.
func hasExtraLeadingZeroes(buf []byte) bool {
	if buf[0] == '-' {
		buf = buf[1:] // skip leading sign
	}
	if buf[0] == '0' {
		// A leading zero is OK if it's the only digit.
		return len(buf) > 1
	}
	return false
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch rune) (Token, bool) {
	i := strings.IndexRune("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}

func (s *Scanner) copyOf(text []byte) []byte {
	const minBlockSlop = 4
	const smallSizeFraction = 16
	const bufBlockBytes = 16384

	// For values bigger than smallSizeFraction of the block size, don't bother
	// batching, make an outright copy.
	if len(text) >= bufBlockBytes/smallSizeFraction {
		return append([]byte(nil), text...)
	}

	// Look for a block with space enough to hold a copy of text.
	i := 0
	for i < len(s.tbuf) {
		if n := len(s.tbuf[i]) + len(text); n < cap(s.tbuf[i]) {
			// There is room in this block.
			break
		} else if cap(s.tbuf[i])-len(text) < minBlockSlop {
			// There is no room in this block, but it is nearly-enough full.
			// Allocate a fresh block at this location and release the old one.
			// The old block will be retained until all its tokens are released.
			s.tbuf[i] = make([]byte, 0, bufBlockBytes)
			break
		}
		i++
	}
	if i == len(s.tbuf) {
		// No block had room; add a new empty one to the arena.
		s.tbuf = append(s.tbuf, make([]byte, 0, bufBlockBytes))
	}
	p := len(s.tbuf[i])
	s.tbuf[i] = append(s.tbuf[i], text...)
	return s.tbuf[i][p : p+len(text)]
}
