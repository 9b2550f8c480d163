// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package emit

import (
	"bufio"
	"io"
	"strings"

	"github.com/creachadair/jflat/flatten"
)

// Text writes records as lines of the form
//
//	<path> TAB <value>
//
// where <path> is the text of the path, with keys as written in the input, and
// <value> is the JSON text of the value. Containers are written when they end, after the records
// nested inside them, using the compact text carried by the exit event. An
// exit event without text is written only if the container is empty.
type Text struct {
	w   *bufio.Writer
	buf []byte

	// If true, rewrite the escape \/ as / in values.
	NormalizeSolidus bool
}

// NewText constructs a Text emitter that writes to w.
func NewText(w io.Writer) *Text { return &Text{w: bufio.NewWriter(w)} }

// EmitLeaf implements the flatten.Emitter interface.
func (t *Text) EmitLeaf(leaf flatten.Leaf) error {
	return t.writeLine(leaf, leaf.Value.Text)
}

// EmitContainer implements the flatten.ContainerEmitter interface.
func (t *Text) EmitContainer(e flatten.Event) error {
	if !e.Exit {
		return nil
	}
	text := e.Text
	if text == "" {
		if e.Len != 0 {
			return nil
		}
		text = emptyText(e.Kind)
	}
	return t.writeLine(flatten.Leaf{Path: e.Path}, text)
}

func (t *Text) writeLine(leaf flatten.Leaf, value string) error {
	if t.NormalizeSolidus {
		value = unescapeSolidus(value)
	}
	t.buf = leaf.Path.AppendSource(t.buf[:0])
	t.buf = append(t.buf, '\t')
	t.buf = append(t.buf, value...)
	t.buf = append(t.buf, '\n')
	_, err := t.w.Write(t.buf)
	return err
}

// Flush writes any buffered output to the underlying writer.
func (t *Text) Flush() error { return t.w.Flush() }

// unescapeSolidus replaces each \/ escape in s with a plain /, leaving other
// escapes unchanged.
func unescapeSolidus(s string) string {
	if !strings.Contains(s, `\/`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			if s[i+1] != '/' {
				sb.WriteByte('\\')
			}
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
