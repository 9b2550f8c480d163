// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package flatten

import (
	"fmt"

	"github.com/creachadair/jflat"
	"github.com/creachadair/jflat/jpath"
)

// handler implements jflat.Handler, tracking the path of the current value
// and reporting records to an emitter.
type handler struct {
	opts   *Options
	emit   Emitter
	cemit  ContainerEmitter // nil if containers are not reported
	text   bool             // record compact container text
	path   jpath.Stack
	frames []frame // open containers, innermost last
}

// A frame records the state of an open container. Frame i has the path
// consisting of the first i segments of the path stack.
type frame struct {
	kind ContainerKind
	n    int  // members or elements complete
	want bool // records at this path are wanted (disregarding emptiness)

	// The entry event is deferred until the first record nested inside the
	// container is delivered, or until the container ends. This permits empty
	// containers to be pruned without reporting an unmatched entry.
	pending bool

	text []byte // compact text, if requested
}

func (f *Flattener) newHandler(e Emitter) *handler {
	h := &handler{opts: f.opts, emit: e}
	if ce, ok := e.(ContainerEmitter); ok && !f.opts.leafOnly() {
		h.cemit = ce
		h.text = f.opts.containerText()
	}
	return h
}

// BeginObject implements part of the jflat.Handler interface.
func (h *handler) BeginObject(jflat.Anchor) error {
	h.begin(Object, '{')
	h.path.PushKey("")
	return nil
}

// EndObject implements part of the jflat.Handler interface.
func (h *handler) EndObject(jflat.Anchor) error { return h.end('}') }

// BeginArray implements part of the jflat.Handler interface.
func (h *handler) BeginArray(jflat.Anchor) error {
	h.begin(Array, '[')
	h.path.PushIndex(0)
	return nil
}

// EndArray implements part of the jflat.Handler interface.
func (h *handler) EndArray(jflat.Anchor) error { return h.end(']') }

// BeginMember implements part of the jflat.Handler interface.
func (h *handler) BeginMember(loc jflat.Anchor) error {
	key, err := jflat.Unquote(loc.Text())
	if err != nil {
		return fmt.Errorf("decode key: %w", err)
	}
	h.path.SetKeyText(string(key), loc.Text())
	if h.text {
		top := h.top()
		if top.n > 0 {
			top.text = append(top.text, ',')
		}
		top.text = append(top.text, loc.Text()...)
		top.text = append(top.text, ':')
	}
	return nil
}

// EndMember implements part of the jflat.Handler interface.
func (h *handler) EndMember(jflat.Anchor) error { return nil }

// Value implements part of the jflat.Handler interface.
func (h *handler) Value(loc jflat.Anchor) error {
	v := Scalar{Text: string(loc.Text())}
	switch loc.Token() {
	case jflat.String:
		v.Kind = String
		dec, err := jflat.Unquote(loc.Text())
		if err != nil {
			return fmt.Errorf("decode string: %w", err)
		}
		v.Str = string(dec)
	case jflat.Integer, jflat.Number:
		v.Kind = Number
	case jflat.True, jflat.False:
		v.Kind = Bool
	case jflat.Null:
		v.Kind = Null
	default:
		return fmt.Errorf("unexpected value token %v", loc.Token())
	}
	h.openValue()
	if h.text {
		h.top().text = append(h.top().text, v.Text...)
	}

	p := h.path.Snapshot()
	if h.wanted(p) && !(h.opts.prune() && v.IsEmpty()) {
		if err := h.flushEntries(p); err != nil {
			return err
		}
		if err := h.emit.EmitLeaf(Leaf{Path: p, Value: v}); err != nil {
			return &EmitError{Err: err}
		}
	}
	h.valueDone()
	return nil
}

// EndOfInput implements part of the jflat.Handler interface.
func (h *handler) EndOfInput(jflat.Anchor) {}

// begin opens a new container of the given kind. The caller is responsible
// for pushing its path segment.
func (h *handler) begin(kind ContainerKind, open byte) {
	h.openValue()
	fr := frame{kind: kind}
	if h.cemit != nil {
		fr.want = h.wantedHere()
		fr.pending = fr.want
	}
	if h.text {
		fr.text = append(fr.text, open)
	}
	h.frames = append(h.frames, fr)
}

// end closes the innermost open container.
func (h *handler) end(close byte) error {
	fr := h.frames[len(h.frames)-1]
	h.frames = h.frames[:len(h.frames)-1]
	h.path.Pop()

	if h.cemit != nil && fr.want && !(h.opts.prune() && fr.n == 0) {
		p := h.path.Snapshot()
		if fr.pending {
			if err := h.flushEntries(p); err != nil {
				return err
			}
			if err := h.container(Event{Path: p, Kind: fr.kind}); err != nil {
				return err
			}
		}
		exit := Event{Path: p, Kind: fr.kind, Exit: true, Len: fr.n}
		if h.text {
			exit.Text = string(append(fr.text, close))
		}
		if err := h.container(exit); err != nil {
			return err
		}
	}
	if h.text && len(h.frames) != 0 {
		top := h.top()
		top.text = append(top.text, fr.text...)
		top.text = append(top.text, close)
	}
	h.valueDone()
	return nil
}

// openValue records the start of a value in the current container.
func (h *handler) openValue() {
	if !h.text || len(h.frames) == 0 {
		return
	}
	if top := h.top(); top.kind == Array && top.n > 0 {
		top.text = append(top.text, ',')
	}
}

// valueDone records the completion of a value in the current container.
func (h *handler) valueDone() {
	if len(h.frames) == 0 {
		return
	}
	top := h.top()
	top.n++
	if top.kind == Array {
		h.path.IncrementIndex()
	}
}

// flushEntries delivers the deferred entry events of the open containers
// enclosing p, outermost first.
func (h *handler) flushEntries(p jpath.Path) error {
	if h.cemit == nil {
		return nil
	}
	for i := range h.frames {
		fr := &h.frames[i]
		if !fr.pending {
			continue
		}
		fr.pending = false
		if err := h.container(Event{Path: p[:i:i], Kind: fr.kind}); err != nil {
			return err
		}
	}
	return nil
}

func (h *handler) container(e Event) error {
	if len(e.Path) == 0 {
		e.Path = nil
	}
	if err := h.cemit.EmitContainer(e); err != nil {
		return &EmitError{Err: err}
	}
	return nil
}

// wanted reports whether records at path p should be delivered, without
// regard to whether the value is empty.
func (h *handler) wanted(p jpath.Path) bool {
	if h.opts.noHead() && len(p) == 0 {
		return false
	}
	return h.opts.selects(p)
}

// wantedHere is as wanted for the current path, but does not copy the path
// unless it must be matched.
func (h *handler) wantedHere() bool {
	if h.opts.noHead() && h.path.Len() == 0 {
		return false
	} else if h.opts == nil || h.opts.Select == nil {
		return true
	}
	return h.opts.Select.Selects(h.path.Snapshot())
}

func (h *handler) top() *frame { return &h.frames[len(h.frames)-1] }
