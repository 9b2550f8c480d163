// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package flatten

import (
	"github.com/creachadair/jflat/jpath"
)

// Kind is the type of a scalar JSON value.
type Kind byte

// Constants defining the valid Kind values.
const (
	String Kind = iota + 1 // a quoted string
	Number                 // a number, integer or otherwise
	Bool                   // true or false
	Null                   // null
)

var kindStr = [...]string{String: "string", Number: "number", Bool: "bool", Null: "null"}

func (k Kind) String() string {
	if k == 0 || int(k) >= len(kindStr) {
		return "invalid"
	}
	return kindStr[k]
}

// A Scalar is the value of a leaf: a string, number, Boolean, or null.
type Scalar struct {
	Kind Kind

	// Text is the JSON text of the value exactly as it appears in the input.
	// Strings are still quoted and escaped, and numbers are not rounded.
	Text string

	// Str is the decoded value of a String, with quotes removed and escapes
	// replaced. It is empty for other kinds.
	Str string
}

// Bool reports whether v is the constant true.
func (v Scalar) Bool() bool { return v.Kind == Bool && v.Text == "true" }

// IsEmpty reports whether v is the empty string.
func (v Scalar) IsEmpty() bool { return v.Kind == String && v.Str == "" }

// String returns the JSON text of v.
func (v Scalar) String() string { return v.Text }

// A Leaf is a scalar value together with its path from the document root.
type Leaf struct {
	Path  jpath.Path
	Value Scalar
}

// ContainerKind is the type of a container value.
type ContainerKind byte

// Constants defining the valid ContainerKind values.
const (
	Object ContainerKind = iota + 1 // { ... }
	Array                           // [ ... ]
)

func (k ContainerKind) String() string {
	switch k {
	case Object:
		return "object"
	case Array:
		return "array"
	}
	return "invalid"
}

// An Event reports entry to or exit from an object or array at Path.
type Event struct {
	Path jpath.Path
	Kind ContainerKind
	Exit bool // false on entry, true on exit

	// On exit, Len is the number of members (object) or elements (array) the
	// container has, and Text is its compact JSON text if the Flattener was
	// asked to record it (see Options.ContainerText).
	Len  int
	Text string
}

// IsEmpty reports whether e is the exit of an empty container.
func (e Event) IsEmpty() bool { return e.Exit && e.Len == 0 }

// An Emitter receives leaf records from a Flattener, in document order.
// If EmitLeaf reports an error, flattening stops and the error is returned to
// the caller wrapped in an *EmitError.
type Emitter interface {
	EmitLeaf(Leaf) error
}

// ContainerEmitter is an optional interface that an Emitter may implement to
// receive container events. If an emitter implements this interface and
// Options.LeafOnly is false, EmitContainer is called on entry to and exit from
// each object and array, so that empty containers are visible. Otherwise,
// containers are not reported and empty containers leave no trace in the
// output.
type ContainerEmitter interface {
	EmitContainer(Event) error
}

// EmitError is the concrete type of errors reported by an Emitter.
type EmitError struct {
	Err error
}

func (e *EmitError) Error() string { return "emit: " + e.Err.Error() }

func (e *EmitError) Unwrap() error { return e.Err }

// A Collector is an Emitter that records leaves and container events in
// memory, in the order they are delivered.
type Collector struct {
	Leaves []Leaf
	Events []Event
}

// EmitLeaf implements the Emitter interface.
func (c *Collector) EmitLeaf(leaf Leaf) error {
	c.Leaves = append(c.Leaves, leaf)
	return nil
}

// EmitContainer implements the ContainerEmitter interface.
func (c *Collector) EmitContainer(e Event) error {
	c.Events = append(c.Events, e)
	return nil
}
