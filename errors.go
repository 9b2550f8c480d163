// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jflat

import "fmt"

// ErrorKind classifies the errors reported by a Stream.
type ErrorKind byte

// Constants defining the valid ErrorKind values.
const (
	LexicalError       ErrorKind = iota + 1 // invalid characters, malformed number, literal, or escape
	GrammarError                            // unexpected token, missing punctuation, trailing data, empty input
	EncodingError                           // invalid UTF-8, or an unpaired surrogate in strict mode
	DepthLimitExceeded                      // nesting deeper than the configured limit
)

var kindStr = [...]string{
	LexicalError:       "lexical error",
	GrammarError:       "grammar error",
	EncodingError:      "encoding error",
	DepthLimitExceeded: "depth limit exceeded",
}

func (k ErrorKind) String() string {
	if k == 0 || int(k) >= len(kindStr) {
		return "unknown error"
	}
	return kindStr[k]
}

// SyntaxError is the concrete type of errors reported by the stream parser.
type SyntaxError struct {
	Kind     ErrorKind
	Offset   int     // byte offset of the error in the input, 0-based
	Location LineCol // line and column of Offset
	Expected string  // the construct the parser wanted, if known
	Found    string  // the construct the parser found, if known
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s (offset %d): %s", s.Location, s.Offset, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }
