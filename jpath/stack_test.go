// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jpath_test

import (
	"testing"

	"github.com/creachadair/jflat/jpath"
	"github.com/creachadair/mds/mtest"
)

func TestStack(t *testing.T) {
	var s jpath.Stack
	check := func(want string) {
		t.Helper()
		if got := s.Snapshot().String(); got != want {
			t.Errorf("Snapshot: got %s, want %s", got, want)
		}
	}

	if s.Len() != 0 || s.Snapshot() != nil {
		t.Fatalf("Empty stack: Len %d, Snapshot %v", s.Len(), s.Snapshot())
	}
	check(`[]`)

	s.PushKey("a")
	check(`["a"]`)
	s.PushIndex(0)
	check(`["a",0]`)
	s.IncrementIndex()
	s.IncrementIndex()
	check(`["a",2]`)

	snap := s.Snapshot()

	s.PushKey("")
	s.SetKey("b")
	check(`["a",2,"b"]`)
	if top := s.Top(); !top.Equal(jpath.Key("b")) {
		t.Errorf("Top: got %v, want %q", top, "b")
	}
	if s.Len() != 3 {
		t.Errorf("Len: got %d, want 3", s.Len())
	}

	s.Pop()
	s.IncrementIndex()
	check(`["a",3]`)
	s.Pop()
	s.SetKey("c")
	check(`["c"]`)
	s.Pop()
	check(`[]`)

	// Snapshots are not affected by later changes.
	if got := snap.String(); got != `["a",2]` {
		t.Errorf("Earlier snapshot: got %s, want %s", got, `["a",2]`)
	}
}

func TestSnapshotCapacity(t *testing.T) {
	var s jpath.Stack
	s.PushKey("x")
	s.PushIndex(4)

	p := s.Snapshot()
	q := append(p, jpath.Key("y"))
	r := append(p, jpath.Key("z"))
	if got := q.String(); got != `["x",4,"y"]` {
		t.Errorf("Extended snapshot: got %s", got)
	}
	if got := r.String(); got != `["x",4,"z"]` {
		t.Errorf("Extended snapshot: got %s", got)
	}
}

func TestStackPanics(t *testing.T) {
	t.Run("PopEmpty", func(t *testing.T) {
		var s jpath.Stack
		mtest.MustPanic(t, func() { s.Pop() })
	})
	t.Run("TopEmpty", func(t *testing.T) {
		var s jpath.Stack
		mtest.MustPanic(t, func() { s.Top() })
	})
	t.Run("SetKeyOnIndex", func(t *testing.T) {
		var s jpath.Stack
		s.PushIndex(0)
		mtest.MustPanic(t, func() { s.SetKey("x") })
	})
	t.Run("IncrementKey", func(t *testing.T) {
		var s jpath.Stack
		s.PushKey("x")
		mtest.MustPanic(t, func() { s.IncrementIndex() })
	})
	t.Run("IncrementEmpty", func(t *testing.T) {
		var s jpath.Stack
		mtest.MustPanic(t, func() { s.IncrementIndex() })
	})
}
