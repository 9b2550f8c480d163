// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package emit

import (
	"bufio"
	"io"

	"github.com/creachadair/jflat/flatten"
)

// Lines writes each record as a JSON array [path,value] on a line by itself.
// Empty containers are written as [path,[]] or [path,{}]; other containers
// are not written.
type Lines struct {
	w   *bufio.Writer
	buf []byte
}

// NewLines constructs a Lines emitter that writes to w.
func NewLines(w io.Writer) *Lines { return &Lines{w: bufio.NewWriter(w)} }

// EmitLeaf implements the flatten.Emitter interface.
func (l *Lines) EmitLeaf(leaf flatten.Leaf) error {
	return l.writeLine(leaf, leaf.Value.Text)
}

// EmitContainer implements the flatten.ContainerEmitter interface.
func (l *Lines) EmitContainer(e flatten.Event) error {
	if !e.IsEmpty() {
		return nil
	}
	return l.writeLine(flatten.Leaf{Path: e.Path}, emptyText(e.Kind))
}

func (l *Lines) writeLine(leaf flatten.Leaf, value string) error {
	l.buf = append(l.buf[:0], '[')
	l.buf = leaf.Path.AppendText(l.buf)
	l.buf = append(l.buf, ',')
	l.buf = append(l.buf, value...)
	l.buf = append(l.buf, ']', '\n')
	_, err := l.w.Write(l.buf)
	return err
}

// Flush writes any buffered output to the underlying writer.
func (l *Lines) Flush() error { return l.w.Flush() }
