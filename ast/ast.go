// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines a syntax tree for JSON values, and a Builder that
// reconstructs trees from the records reported by a flatten.Flattener.
package ast

import (
	"fmt"
	"strconv"

	"github.com/creachadair/jflat"
	"github.com/creachadair/jflat/flatten"
	"github.com/creachadair/jflat/jpath"
)

// A Value is an arbitrary JSON value.
type Value interface {
	// JSON returns the compact JSON text of the value.
	JSON() string

	appendJSON([]byte) []byte
}

// An Object is a collection of key-value members.
type Object struct {
	Members []*Member
}

// Len reports the number of members in o.
func (o *Object) Len() int { return len(o.Members) }

// Find returns the first member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	for _, m := range o.Members {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// findLast returns the last member of o with the given key, or nil.
func (o *Object) findLast(key string) *Member {
	for i := len(o.Members) - 1; i >= 0; i-- {
		if o.Members[i].Key == key {
			return o.Members[i]
		}
	}
	return nil
}

// JSON satisfies the Value interface.
func (o *Object) JSON() string { return string(o.appendJSON(nil)) }

func (o *Object) appendJSON(buf []byte) []byte {
	buf = append(buf, '{')
	for i, m := range o.Members {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = jflat.AppendQuote(buf, m.Key)
		buf = append(buf, ':')
		buf = appendValue(buf, m.Value)
	}
	return append(buf, '}')
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// An Array is a sequence of values.
type Array struct {
	Values []Value
}

// Len reports the number of elements in a.
func (a *Array) Len() int { return len(a.Values) }

// JSON satisfies the Value interface.
func (a *Array) JSON() string { return string(a.appendJSON(nil)) }

func (a *Array) appendJSON(buf []byte) []byte {
	buf = append(buf, '[')
	for i, v := range a.Values {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendValue(buf, v)
	}
	return append(buf, ']')
}

// appendValue appends the JSON text of v to buf. A nil value is null.
func appendValue(buf []byte, v Value) []byte {
	if v == nil {
		return append(buf, "null"...)
	}
	return v.appendJSON(buf)
}

type datum struct{ text string }

// JSON satisfies the Value interface.
func (d datum) JSON() string { return d.text }

func (d datum) appendJSON(buf []byte) []byte { return append(buf, d.text...) }

// A Number is a numeric value. Its text is preserved exactly as it appeared
// in the input.
type Number struct{ datum }

// Int64 returns the value of n as an integer, or an error if n is not an
// integer or is out of range.
func (n Number) Int64() (int64, error) { return strconv.ParseInt(n.text, 10, 64) }

// Float64 returns the value of n as a floating-point number, rounded to the
// nearest representable value.
func (n Number) Float64() float64 {
	v, _ := strconv.ParseFloat(n.text, 64)
	return v
}

// A Bool is a Boolean constant, true or false.
type Bool struct {
	datum
	value bool
}

// Value reports the value of b.
func (b Bool) Value() bool { return b.value }

// A String is a string value.
type String struct {
	datum
	value string
}

// Value returns the decoded value of s.
func (s String) Value() string { return s.value }

// Null represents the null constant.
type Null struct{ datum }

// FromScalar returns the Value corresponding to v.
func FromScalar(v flatten.Scalar) Value {
	d := datum{text: v.Text}
	switch v.Kind {
	case flatten.String:
		return String{datum: d, value: v.Str}
	case flatten.Number:
		return Number{datum: d}
	case flatten.Bool:
		return Bool{datum: d, value: v.Bool()}
	}
	return Null{datum: datum{text: "null"}}
}

// Lookup returns the value in v at path p. An object key selects the first
// member with that key.
func Lookup(v Value, p jpath.Path) (Value, error) {
	for i, seg := range p {
		if key, ok := seg.Key(); ok {
			obj, ok := v.(*Object)
			if !ok {
				return nil, fmt.Errorf("at %v: value is not an object", p[:i])
			}
			m := obj.Find(key)
			if m == nil {
				return nil, fmt.Errorf("at %v: key %q not found", p[:i], key)
			}
			v = m.Value
		} else {
			idx, _ := seg.Index()
			arr, ok := v.(*Array)
			if !ok {
				return nil, fmt.Errorf("at %v: value is not an array", p[:i])
			} else if idx >= len(arr.Values) {
				return nil, fmt.Errorf("at %v: index %d out of range (%d)", p[:i], idx, len(arr.Values))
			}
			v = arr.Values[idx]
		}
	}
	return v, nil
}
