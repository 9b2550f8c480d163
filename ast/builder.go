// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"fmt"

	"github.com/creachadair/jflat/flatten"
	"github.com/creachadair/jflat/jpath"
)

// A Builder is a flatten.Emitter that reconstructs a syntax tree from the
// records it receives. A zero Builder is ready for use.
//
// When the Builder receives container events, the tree it builds has the
// same structure as the input, including empty objects and arrays. If it
// receives leaves only, objects and arrays are inferred from the segments of
// the leaf paths, and containers that had no leaves are absent. Array
// elements not reported, for example because of a selection, are null.
//
// Each leaf and each container entry adds a new member or element at the end
// of its path, so duplicate object keys are preserved. Records nested inside
// an object member are placed in the last member with that key.
type Builder struct {
	root Value
	set  bool
}

// Value returns the tree constructed so far, or nil if no records have been
// received.
func (b *Builder) Value() Value { return b.root }

// Reset discards the tree, so that b can be reused.
func (b *Builder) Reset() { b.root, b.set = nil, false }

// EmitLeaf implements the flatten.Emitter interface.
func (b *Builder) EmitLeaf(leaf flatten.Leaf) error {
	return b.place(leaf.Path, FromScalar(leaf.Value))
}

// EmitContainer implements the flatten.ContainerEmitter interface.
func (b *Builder) EmitContainer(e flatten.Event) error {
	if e.Exit {
		return nil
	}
	if e.Kind == flatten.Object {
		return b.place(e.Path, new(Object))
	}
	return b.place(e.Path, new(Array))
}

// place adds v at path p, creating any containers on the way that do not
// already exist.
func (b *Builder) place(p jpath.Path, v Value) error {
	if len(p) == 0 {
		if b.set {
			return fmt.Errorf("duplicate value at %v", p)
		}
		b.root, b.set = v, true
		return nil
	}

	slot := &b.root
	for i, seg := range p {
		last := i == len(p)-1
		if *slot == nil {
			*slot = containerFor(seg)
			b.set = true
		}
		switch c := (*slot).(type) {
		case *Object:
			key, ok := seg.Key()
			if !ok {
				return fmt.Errorf("at %v: index segment in an object", p[:i])
			}
			m := c.findLast(key)
			if last || m == nil {
				m = &Member{Key: key}
				c.Members = append(c.Members, m)
			}
			slot = &m.Value

		case *Array:
			idx, ok := seg.Index()
			if !ok {
				return fmt.Errorf("at %v: key segment in an array", p[:i])
			}
			for len(c.Values) <= idx {
				c.Values = append(c.Values, nil)
			}
			slot = &c.Values[idx]

		default:
			return fmt.Errorf("at %v: path continues through a %T", p[:i], *slot)
		}
	}
	*slot = v
	return nil
}

func containerFor(seg jpath.Segment) Value {
	if seg.IsIndex() {
		return new(Array)
	}
	return new(Object)
}
