// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jpath

// A Stack tracks the path of the current value during a traversal. A zero
// Stack is empty and ready for use.
//
// The depth of the stack is the nesting depth of the current value. Entering
// an object or array pushes a segment, which is updated in place as the
// traversal moves between members or elements, and leaving it pops the
// segment.
//
// A Stack trusts its caller to push and pop in nested order. Operations that
// do not match the shape of the stack, such as popping an empty stack or
// setting the key of an index segment, panic.
type Stack struct {
	segs []Segment
}

// PushKey pushes a key segment for k.
func (s *Stack) PushKey(k string) { s.segs = append(s.segs, Key(k)) }

// PushIndex pushes an index segment for i.
func (s *Stack) PushIndex(i int) { s.segs = append(s.segs, Index(i)) }

// SetKey replaces the key of the top segment, which must be a key.
func (s *Stack) SetKey(k string) {
	top := s.ref()
	if top.IsIndex() {
		panic("jpath: SetKey on an index segment")
	}
	top.key = k
	top.text = ""
}

// SetKeyText replaces the key of the top segment, which must be a key, with k
// decoded from the JSON string literal text. See KeyText.
func (s *Stack) SetKeyText(k string, text []byte) {
	s.SetKey(k)
	s.ref().setText(text)
}

// IncrementIndex adds one to the index of the top segment, which must be an
// index.
func (s *Stack) IncrementIndex() {
	top := s.ref()
	if !top.IsIndex() {
		panic("jpath: IncrementIndex on a key segment")
	}
	top.index++
}

// Pop discards the top segment.
func (s *Stack) Pop() {
	if len(s.segs) == 0 {
		panic("jpath: pop of empty stack")
	}
	s.segs[len(s.segs)-1] = Segment{} // release the key string
	s.segs = s.segs[:len(s.segs)-1]
}

// Top returns the top segment of the stack.
func (s *Stack) Top() Segment { return *s.ref() }

// Len reports the number of segments on the stack.
func (s *Stack) Len() int { return len(s.segs) }

// Snapshot returns a copy of the current path. Subsequent changes to s do not
// affect the copy. The snapshot of an empty stack is nil.
func (s *Stack) Snapshot() Path {
	if len(s.segs) == 0 {
		return nil
	}
	return append(make(Path, 0, len(s.segs)), s.segs...)
}

func (s *Stack) ref() *Segment {
	if len(s.segs) == 0 {
		panic("jpath: empty stack")
	}
	return &s.segs[len(s.segs)-1]
}
