// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jflat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// An Anchor represents a location in source text. The methods of an Anchor
// will report the location, token type, and contents of the anchor.
type Anchor interface {
	Token() Token       // Returns the token type of the anchor
	Text() []byte       // Returns a view of the raw (undecoded) text of the anchor
	Copy() []byte       // Returns a copy of the raw text of the anchor
	Location() Location // Returns the full location of the anchor
}

// A Handler handles events from parsing an input stream.  If a method reports
// an error, parsing stops and that error is returned to the caller.
// The parser ensures objects and arrays are correctly balanced.
//
// The Anchor argument to a Handler method is only valid for the duration of
// that method call. If the method needs to retain information about the
// location after it returns, it must copy the relevant data.
type Handler interface {
	// Begin a new object, whose open brace is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose close brace is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose open bracket is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose close bracket is at loc.
	EndArray(loc Anchor) error

	// Begin a new object member, whose key is at loc.  The text of the key is
	// still quoted; the handler is responsible for unescaping key values if the
	// plain string is required (see jflat.Unquote).
	BeginMember(loc Anchor) error

	// End the current object member giving the location and type of the token
	// that terminated the member (either Comma or RBrace).
	EndMember(loc Anchor) error

	// Report a data value at the given location. The type of the value can be
	// recovered from the token. String tokens are quoted.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// Stream is a stream parser that consumes input and delivers events to a
// Handler corresponding with the structure of the input.
//
// The parser does not recurse on the native call stack: open objects and
// arrays are tracked on a heap-allocated stack, so deeply nested input costs
// memory proportional to its depth and nothing more. Use MaxDepth to bound
// that cost for untrusted input.
type Stream struct {
	s        *Scanner
	maxDepth int     // 0 means unlimited
	stk      []Token // open containers (LBrace or LSquare), innermost last
	ctx      context.Context
	failed   error // the error that stopped a previous parse, if any
}

// NewStream constructs a new Stream that consumes input from r.
func NewStream(r io.Reader) *Stream { return &Stream{s: NewScanner(r)} }

// NewStreamWithScanner constructs a new Stream that consumes input from s.
func NewStreamWithScanner(s *Scanner) *Stream { return &Stream{s: s} }

// StrictUnicode configures the scanner associated with s to reject (true) or
// accept (false) unpaired surrogate escapes in strings.
func (s *Stream) StrictUnicode(ok bool) { s.s.StrictUnicode(ok) }

// MaxDepth configures the maximum nesting depth of objects and arrays.  A
// value nested more deeply than n is reported as a SyntaxError with kind
// DepthLimitExceeded.  If n <= 0, nesting depth is not limited.
func (s *Stream) MaxDepth(n int) { s.maxDepth = max(n, 0) }

// Depth reports the number of objects and arrays currently open.
func (s *Stream) Depth() int { return len(s.stk) }

func (s *Stream) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case *SyntaxError:
			*errp = err
		case handlerError:
			*errp = err.error
		default:
			panic(serr)
		}
		s.failed = *errp
	}
}

// Parse parses a single JSON value from the input stream and delivers events
// to h until either an error occurs or the input is exhausted. Input that is
// empty, or that contains anything other than whitespace after the value, is
// reported as an error. In case of a syntax error, the returned error has type
// [*SyntaxError].
func (s *Stream) Parse(h Handler) error { return s.ParseContext(context.Background(), h) }

// ParseContext behaves as Parse, but checks ctx between the elements of the
// outermost object or array. If ctx ends before parsing is complete,
// ParseContext returns the error from ctx.
func (s *Stream) ParseContext(ctx context.Context, h Handler) (err error) {
	if s.failed != nil {
		return s.failed
	}
	defer s.recoverParseError(&err)
	s.ctx = ctx
	s.stk = s.stk[:0]

	s.advance()
	s.parseElement(h)

	if err := s.s.Next(); err == io.EOF {
		h.EndOfInput(s.s)
		return nil
	} else if err != nil && !isPosError(err) {
		panic(handlerError{err})
	}
	found := s.s.Token().String()
	if s.s.Token() == Invalid {
		found = "invalid input"
	}
	panic(&SyntaxError{
		Kind:     GrammarError,
		Offset:   s.s.Span().Pos,
		Location: s.s.Location().First,
		Expected: EndOfInput.String(),
		Found:    found,
		Message:  "trailing data after value: got " + found,
	})
}

// ParseOne parses a single value from the input stream and delivers events to
// h until the value is complete or an error occurs. Unlike Parse, ParseOne
// does not require the value to be the last in the input, so a sequence of
// values may be parsed by calling ParseOne repeatedly. If no further value is
// available from the input, ParseOne returns io.EOF. In case of a syntax
// error, the returned error has type [*SyntaxError].
func (s *Stream) ParseOne(h Handler) (err error) {
	if s.failed != nil {
		return s.failed
	}
	defer s.recoverParseError(&err)
	s.ctx = nil
	s.stk = s.stk[:0]

	if err := s.s.Next(); err == io.EOF {
		h.EndOfInput(s.s)
		return err
	} else if err != nil {
		s.scanError(err, "value")
	}
	s.parseElement(h)
	return nil
}

// parseElement consumes a single value of any type.
//
// Precondition: the current token begins the value.
// Postcondition: the current token is the last token of the value.
func (s *Stream) parseElement(h Handler) {
	base := len(s.stk)
next:
	for {
		// The current token must begin a value.
		switch tok := s.s.Token(); tok {
		case LBrace:
			s.push(tok)
			s.checkError(h.BeginObject(s.s))
			if s.advance(RBrace, String) == RBrace {
				s.pop()
				s.checkError(h.EndObject(s.s))
				break // empty object
			}
			s.parseMember(h)
			continue next

		case LSquare:
			s.push(tok)
			s.checkError(h.BeginArray(s.s))
			if s.advance() == RSquare {
				s.pop()
				s.checkError(h.EndArray(s.s))
				break // empty array
			}
			continue next

		case Integer, Number, String, True, False, Null:
			s.checkError(h.Value(s.s))

		default:
			s.unexpected("value")
		}

		// A value is complete. Check whether the innermost open container has
		// more elements; if not, close it and repeat for the next one out.
		for len(s.stk) > base {
			if len(s.stk) == 1 {
				s.checkContext()
			}
			if s.top() == LBrace {
				tok := s.advance(RBrace, Comma)
				s.checkError(h.EndMember(s.s))
				if tok == Comma {
					s.advance(String)
					s.parseMember(h)
					continue next
				}
				s.pop()
				s.checkError(h.EndObject(s.s))
			} else {
				if s.advance(RSquare, Comma) == Comma {
					s.advance()
					continue next
				}
				s.pop()
				s.checkError(h.EndArray(s.s))
			}
		}
		return
	}
}

// parseMember consumes the key and colon of an object member and advances to
// the start of its value.
// Precondition: token == String.
func (s *Stream) parseMember(h Handler) {
	s.checkError(h.BeginMember(s.s))
	s.advance(Colon)
	s.advance()
}

func (s *Stream) push(tok Token) {
	if s.maxDepth > 0 && len(s.stk) >= s.maxDepth {
		panic(&SyntaxError{
			Kind:     DepthLimitExceeded,
			Offset:   s.s.Span().Pos,
			Location: s.s.Location().First,
			Found:    tok.String(),
			Message:  fmt.Sprintf("nesting depth exceeds %d", s.maxDepth),
		})
	}
	s.stk = append(s.stk, tok)
}

func (s *Stream) pop()       { s.stk = s.stk[:len(s.stk)-1] }
func (s *Stream) top() Token { return s.stk[len(s.stk)-1] }

// advance reads the next token, which must be one of tokens. If no tokens are
// specified, any token other than end of input is accepted; the caller is
// responsible for checking it.
func (s *Stream) advance(tokens ...Token) Token {
	if err := s.s.Next(); err != nil && err != io.EOF {
		s.scanError(err, tokLabel(tokens))
	}
	tok := s.s.Token()
	if tok == EndOfInput || (len(tokens) != 0 && !tokOneOf(tok, tokens)) {
		s.unexpected(tokLabel(tokens))
	}
	return tok
}

// unexpected reports a grammar error for the current token, where the parser
// wanted the construct described by want.
func (s *Stream) unexpected(want string) {
	got := s.s.Token().String()
	panic(&SyntaxError{
		Kind:     GrammarError,
		Offset:   s.s.Span().Pos,
		Location: s.s.Location().First,
		Expected: want,
		Found:    got,
		Message:  fmt.Sprintf("expected %s, got %s", want, got),
	})
}

// scanError reports an error from the scanner.  Lexical and encoding errors
// become syntax errors; errors from the underlying reader are passed through.
func (s *Stream) scanError(err error, want string) {
	var pe posError
	if !errors.As(err, &pe) {
		panic(handlerError{err})
	}
	panic(&SyntaxError{
		Kind:     pe.kind,
		Offset:   pe.pos,
		Location: s.s.lineColAt(pe.pos),
		Expected: want,
		Found:    "invalid input",
		Message:  pe.err.Error(),
		err:      pe.err,
	})
}

func (s *Stream) checkContext() {
	if s.ctx == nil {
		return
	}
	if err := s.ctx.Err(); err != nil {
		panic(handlerError{err})
	}
}

func (s *Stream) checkError(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

func isPosError(err error) bool {
	var pe posError
	return errors.As(err, &pe)
}

// tokLabel makes a human-readable summary string for the given token types.
// An empty list of tokens describes any value.
func tokLabel(tokens []Token) string {
	switch len(tokens) {
	case 0:
		return "value"
	case 1:
		return tokens[0].String()
	}
	last := len(tokens) - 1
	ss := make([]string, len(tokens)-1)
	for i, tok := range tokens[:last] {
		ss[i] = tok.String()
	}
	return strings.Join(ss, ", ") + " or " + tokens[last].String()
}

// tokOneOf reports whether cur is an element of tokens.
func tokOneOf(cur Token, tokens []Token) bool {
	return slices.Contains(tokens, cur)
}
