// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package emit implements output formats for flattened JSON records.
//
// Each format is a flatten.Emitter that also accepts container events, and
// writes its records to an io.Writer through a buffer. Call Flush when
// flattening is complete to write any buffered output.
package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/creachadair/jflat/flatten"
)

// A Writer is an emitter that writes records to an output.
type Writer interface {
	flatten.Emitter
	flatten.ContainerEmitter

	// Flush writes any buffered output.
	Flush() error
}

// Formats lists the names of the supported formats, in the order they are
// documented.
var Formats = []string{"text", "jsonl", "yaml"}

// New returns a Writer for the named format that writes to w.
// The names are those listed in Formats.
func New(format string, w io.Writer) (Writer, error) {
	switch format {
	case "text", "":
		return NewText(w), nil
	case "jsonl":
		return NewLines(w), nil
	case "yaml":
		return NewYAML(w), nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

var (
	_ Writer = (*Text)(nil)
	_ Writer = (*Lines)(nil)
	_ Writer = (*YAML)(nil)
)

// emptyText returns the text of an empty container of the given kind.
func emptyText(k flatten.ContainerKind) string {
	if k == flatten.Object {
		return "{}"
	}
	return "[]"
}
