// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package flatten converts a stream of JSON text into a flat sequence of
// leaf records, one for each string, number, Boolean, or null in the input,
// without constructing a tree for the document.
//
// Each leaf carries the path from the document root to the value, so that
//
//	{"a": 1, "b": [2, 3]}
//
// flattens to the leaves
//
//	["a"]    1
//	["b",0]  2
//	["b",1]  3
//
// Leaves are delivered to an Emitter in document order. An Emitter that also
// implements ContainerEmitter is told when each object and array begins and
// ends, which makes empty containers visible.
package flatten

import (
	"context"
	"io"

	"github.com/creachadair/jflat"
	"github.com/creachadair/jflat/jpath"
)

// Options control the behavior of a Flattener. A nil *Options is ready for
// use and provides default values as described.
type Options struct {
	// If true, report leaves only, even to an emitter that implements
	// ContainerEmitter.
	LeafOnly bool

	// If true, omit empty values: the empty string, and objects and arrays
	// with no members or elements.
	Prune bool

	// If true, omit records whose path is the document root.
	NoHead bool

	// If set, report only records whose paths are selected by this expression,
	// or are nested inside a selected value. See jpath.Compile.
	Select jpath.Expr

	// If true, container exit events carry the compact text of the container.
	// This requires memory proportional to the size of the largest container.
	ContainerText bool

	// If true, an unpaired surrogate escape in a string is an error.
	// Otherwise it decodes to the Unicode replacement rune.
	StrictUnicode bool

	// If positive, the maximum nesting depth of objects and arrays.
	MaxDepth int
}

func (o *Options) leafOnly() bool      { return o != nil && o.LeafOnly }
func (o *Options) prune() bool         { return o != nil && o.Prune }
func (o *Options) noHead() bool        { return o != nil && o.NoHead }
func (o *Options) containerText() bool { return o != nil && o.ContainerText }

func (o *Options) selects(p jpath.Path) bool {
	return o == nil || o.Select == nil || o.Select.Selects(p)
}

// A Flattener reads JSON text from an input and reports its leaves to an
// Emitter. A Flattener is not safe for concurrent use; flatten independent
// inputs with separate Flatteners.
type Flattener struct {
	st   *jflat.Stream
	opts *Options
}

// New constructs a Flattener that consumes input from r.
func New(r io.Reader, opts *Options) *Flattener {
	st := jflat.NewStream(r)
	if opts != nil {
		st.StrictUnicode(opts.StrictUnicode)
		st.MaxDepth(opts.MaxDepth)
	}
	return &Flattener{st: st, opts: opts}
}

// Flatten reads a single JSON value from the input and reports its records to
// e. The value must be the only content of the input, apart from whitespace.
//
// In case of a syntax error, the returned error has type *jflat.SyntaxError.
// If e reports an error, the returned error has type *EmitError. Records
// delivered before an error remain delivered; there is no rollback.
func (f *Flattener) Flatten(ctx context.Context, e Emitter) error {
	return f.st.ParseContext(ctx, f.newHandler(e))
}

// Next reads the next JSON value from a sequence of values in the input, and
// reports its records to e. Next returns io.EOF when no values remain.
// Paths are relative to the root of each value.
func (f *Flattener) Next(ctx context.Context, e Emitter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.st.ParseOne(f.newHandler(e))
}

// Flatten reads a single JSON value from r and reports its records to e.
// It is a shorthand for New(r, opts).Flatten(ctx, e).
func Flatten(ctx context.Context, r io.Reader, e Emitter, opts *Options) error {
	return New(r, opts).Flatten(ctx, e)
}

// Leaves reads a single JSON value from r and returns its leaves.
func Leaves(ctx context.Context, r io.Reader, opts *Options) ([]Leaf, error) {
	var c leafCollector
	err := Flatten(ctx, r, &c, opts)
	return c, err
}

type leafCollector []Leaf

func (c *leafCollector) EmitLeaf(leaf Leaf) error { *c = append(*c, leaf); return nil }
