// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
Grammar:

  expr = root steps
  root = "$"
 steps = step [steps]
  step = "." name
  step = ".." name
  step = "[" value "]"
  step = "[" slice "]"
  name = WORD
  name = "'" QTEXT "'"
  name = "*"
 value = name
 value = INDEX
 value = script
 value = filter
 slice = INDEX ":" INDEX
script = "(" TEXT ")"
filter = "?(" TEXT ")"

  WORD = RE `\w+`
 QTEXT = RE `([^']|\\')*`
 INDEX = RE `-?\d+`
  TEXT = { all text with nested parentheses }

Source:
  https://www.ietf.org/archive/id/draft-goessner-dispatch-jsonpath-00.html
*/

// An Expr is a parsed JSONPath expression.
type Expr []Step

// Parse parses s as a JSONPath expression.
func Parse(s string) (Expr, error) {
	st, _, err := parseExpr(s)
	if err != nil {
		return Expr{}, err
	}
	return st, nil
}

// Compile parses s as a JSONPath expression and checks that it can be matched
// against a path without access to the values of the document. Filters,
// scripts, and negative indices depend on values or array lengths a streaming
// traversal does not have, and are rejected.
func Compile(s string) (Expr, error) {
	e, err := Parse(s)
	if err != nil {
		return nil, err
	}
	for _, st := range e {
		switch st.Op {
		case OpFilter, OpScript:
			return nil, fmt.Errorf("unsupported %s step", st.Op)
		case OpIndex:
			if slicesMin(st.list) < 0 {
				return nil, fmt.Errorf("unsupported negative index %q", st.Arg1)
			}
		case OpSlice:
			if st.lo < 0 || st.hi < -1 {
				return nil, fmt.Errorf("unsupported negative slice bound in %q", st.Arg1+":"+st.Arg2)
			}
		}
	}
	return e, nil
}

// MustCompile is as Compile, but panics in case of error.
func MustCompile(s string) Expr {
	e, err := Compile(s)
	if err != nil {
		panic(fmt.Sprintf("jpath: compile %q: %v", s, err))
	}
	return e
}

func (e Expr) String() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, s := range e {
		switch s.Op {
		case OpMember, OpRecur:
			if s.Arg2 == "qname" {
				fmt.Fprintf(&buf, "%s'%s'", s.Op, s.Arg1)
			} else {
				fmt.Fprint(&buf, s.Op, s.Arg1)
			}

		case OpSlice:
			fmt.Fprintf(&buf, "[%s:%s]", s.Arg1, s.Arg2)

		case OpScript:
			fmt.Fprintf(&buf, "[(%s)]", s.Arg1)

		case OpFilter:
			fmt.Fprintf(&buf, "[?(%s)]", s.Arg1)

		default:
			if s.Op == OpQName {
				fmt.Fprintf(&buf, "['%s']", s.Arg1)
			} else {
				fmt.Fprintf(&buf, "[%s]", s.Arg1)
			}
		}
	}
	return buf.String()
}

// Match reports whether e selects exactly the value at path p.
func (e Expr) Match(p Path) bool { return matchSteps(e, p, false) }

// Selects reports whether the value at path p is selected by e, or is nested
// inside a value selected by e.
func (e Expr) Selects(p Path) bool { return matchSteps(e, p, true) }

// matchSteps reports whether steps match a prefix of p. Unless prefix is
// true, the prefix must be all of p.
func matchSteps(steps []Step, p Path, prefix bool) bool {
	for len(steps) != 0 {
		st := steps[0]
		if st.Op == OpRecur {
			// The name may match at any depth below the current one.
			for i, seg := range p {
				if st.matches(seg) && matchSteps(steps[1:], p[i+1:], prefix) {
					return true
				}
			}
			return false
		}
		if len(p) == 0 || !st.matches(p[0]) {
			return false
		}
		steps, p = steps[1:], p[1:]
	}
	return prefix || len(p) == 0
}

func (s Step) matches(seg Segment) bool {
	key, isKey := seg.Key()
	idx, _ := seg.Index()
	switch s.Op {
	case OpMember, OpRecur:
		if s.Arg2 == OpWildcard.String() {
			return true
		}
		return isKey && key == s.Arg1
	case OpWildcard:
		return true
	case OpName, OpQName:
		return isKey && key == s.Arg1
	case OpIndex:
		if isKey {
			return false
		}
		for _, v := range s.list {
			if v == idx {
				return true
			}
		}
		return false
	case OpSlice:
		return !isKey && s.lo >= 0 && idx >= s.lo && (s.hi < 0 || idx < s.hi)
	}
	return false
}

func parseExpr(s string) ([]Step, string, error) {
	t, ok := strings.CutPrefix(s, "$")
	if !ok {
		return nil, s, errors.New("missing root marker")
	}
	return parseSteps(t)
}

func parseSteps(s string) (steps []Step, rest string, _ error) {
	for s != "" {
		step, rest, err := parseStep(s)
		if err != nil {
			return nil, s, err
		}
		steps = append(steps, step)
		s = rest
	}
	return steps, s, nil
}

func parseStep(s string) (_ Step, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, ".."); ok {
		kind, name, u, err := parseName(t)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid ..name: %w", err)
		}
		return Step{Op: OpRecur, Arg1: name, Arg2: kind.String()}, u, nil
	}
	if t, ok := strings.CutPrefix(s, "."); ok {
		kind, name, u, err := parseName(t)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid .name: %w", err)
		}
		return Step{Op: OpMember, Arg1: name, Arg2: kind.String()}, u, nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		kind, val, u, err := parseValue(t)
		if err != nil {
			return Step{}, t, err
		}
		out := Step{Op: kind, Arg1: val}
		if out.Op == OpSlice {
			arg2, rest, err := parseIndex(u)
			if err == nil {
				out.Arg2 = arg2
				u = rest
			} else if out.Arg1 == "" {
				return Step{}, u, errors.New("invalid slice")
			}
		}
		u, ok := strings.CutPrefix(u, "]")
		if !ok {
			return Step{}, u, errors.New("missing close bracket")
		}
		if err := out.resolve(); err != nil {
			return Step{}, s, err
		}
		return out, u, nil
	}
	return Step{}, s, errors.New("invalid path step")
}

func parseName(s string) (kind Op, name, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, "*"); ok {
		return OpWildcard, "*", t, nil
	}
	if m := wordRE.FindStringSubmatch(s); m != nil {
		return OpName, m[1], s[len(m[0]):], nil
	}
	if m := quoteRE.FindStringSubmatch(s); m != nil {
		return OpQName, m[1], s[len(m[0]):], nil
	}
	return OpInvalid, "", s, errors.New("invalid name")
}

func parseIndex(s string) (text, rest string, _ error) {
	if m := indexRE.FindStringSubmatch(s); m != nil {
		return m[1], s[len(m[0]):], nil
	}
	return "", "", errors.New("invalid index")
}

func parseValue(s string) (kind Op, value, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, "?("); ok {
		text, rest, err := parseScript(t)
		return OpFilter, text, rest, err
	}
	if t, ok := strings.CutPrefix(s, "("); ok {
		text, rest, err := parseScript(t)
		return OpScript, text, rest, err
	}
	if text, rest, err := parseIndex(s); err == nil {
		if u, ok := strings.CutPrefix(rest, ":"); ok {
			return OpSlice, text, u, nil
		}
		return OpIndex, text, rest, nil
	}
	if u, ok := strings.CutPrefix(s, ":"); ok {
		return OpSlice, "", u, nil
	}
	if kind, text, rest, err := parseName(s); err == nil {
		return kind, text, rest, nil
	}
	return OpInvalid, "", s, fmt.Errorf("invalid value: %q", s)
}

func parseScript(s string) (text, rest string, _ error) {
	i, np := 0, 1
	for i < len(s) {
		if s[i] == ')' {
			np--
			if np == 0 {
				break
			}
		} else if s[i] == '(' {
			np++
		}
		i++
	}
	if np > 0 {
		return "", s, errors.New("unbalanced parentheses")
	}
	return s[:i], s[i+1:], nil
}

// resolve decodes the numeric arguments of an index or slice step.
func (s *Step) resolve() error {
	switch s.Op {
	case OpIndex:
		for _, f := range strings.Split(s.Arg1, ",") {
			v, err := strconv.Atoi(f)
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", f, err)
			}
			s.list = append(s.list, v)
		}
	case OpSlice:
		s.lo, s.hi = 0, -1
		if s.Arg1 != "" {
			v, err := strconv.Atoi(s.Arg1)
			if err != nil {
				return fmt.Errorf("invalid slice start %q: %w", s.Arg1, err)
			}
			s.lo = v
		}
		if s.Arg2 != "" {
			v, err := strconv.Atoi(s.Arg2)
			if err != nil {
				return fmt.Errorf("invalid slice end %q: %w", s.Arg2, err)
			} else if v < 0 {
				v = -2 // marks a negative end, which Compile rejects
			}
			s.hi = v
		}
	}
	return nil
}

func slicesMin(vs []int) int {
	m := 0
	for _, v := range vs {
		m = min(m, v)
	}
	return m
}

var (
	wordRE  = regexp.MustCompile(`^(\w+)`)
	indexRE = regexp.MustCompile(`^(-?\d+(?:,-?\d+)*)`)
	quoteRE = regexp.MustCompile(`^'([^\']*)'`)
)

// An Op is a path operator.
type Op byte

const (
	OpInvalid  Op = iota // invalid operator
	OpMember             // member lookup (.)
	OpIndex              // array index lookup
	OpSlice              // array slice
	OpWildcard           // wildcard expansion (*)
	OpName               // unquoted name expansion
	OpQName              // quoted name expansion
	OpRecur              // recur operator
	OpFilter             // filter operator
	OpScript             // script operator
)

var opText = map[Op]string{
	OpInvalid:  "invalid",
	OpMember:   ".",
	OpIndex:    "index",
	OpSlice:    "slice",
	OpWildcard: "*",
	OpName:     "name",
	OpQName:    "qname",
	OpRecur:    "..",
	OpFilter:   "?(...)",
	OpScript:   "(...)",
}

func (o Op) String() string {
	if s, ok := opText[o]; ok {
		return s
	}
	return opText[OpInvalid]
}

// A Step is a single step of a JSONPath expression.
type Step struct {
	Op   Op
	Arg1 string
	Arg2 string

	list   []int // Index: the listed offsets
	lo, hi int   // Slice: bounds, hi < 0 when open
}
