// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast_test

import (
	"context"
	"strings"
	"testing"

	"github.com/creachadair/jflat/ast"
	"github.com/creachadair/jflat/flatten"
	"github.com/creachadair/jflat/jpath"
	"github.com/google/go-cmp/cmp"
)

const testJSON = `{
  "list": [
    {
      "x": 1
    },
    {
      "x": 2
    }
  ],
  "y": {
    "hello": "there"
  },
  "o": [
    "hi",
    "yourself"
  ],
  "xyz": {
    "p": true,
    "d": true,
    "q": false
  },
  "empty": [{}, [], ""],
  "n": null
}`

// compact returns the compact text of input as recorded by the flattener.
func compact(t *testing.T, input string) string {
	t.Helper()
	var c flatten.Collector
	err := flatten.Flatten(context.Background(), strings.NewReader(input), &c,
		&flatten.Options{ContainerText: true})
	if err != nil {
		t.Fatalf("Flatten: unexpected error: %v", err)
	}
	if len(c.Events) == 0 {
		return c.Leaves[0].Value.Text
	}
	return c.Events[len(c.Events)-1].Text
}

func TestRoundTrip(t *testing.T) {
	tests := []string{
		`42`,
		`"str\"ing"`,
		`null`,
		`{}`,
		`[]`,
		`[[[]]]`,
		`{"a":1,"b":[2,3]}`,
		`{"a":{"x":1},"a":{"y":2}}`,
		`[1,[2,[3,{"four":4.0e0}]],[]]`,
		testJSON,
	}
	for _, input := range tests {
		v, err := ast.ParseSingle(context.Background(), strings.NewReader(input))
		if err != nil {
			t.Fatalf("ParseSingle %#q: unexpected error: %v", input, err)
		}
		if got, want := v.JSON(), compact(t, input); got != want {
			t.Errorf("ParseSingle %#q:\ngot  %s\nwant %s", input, got, want)
		}
	}
}

func TestLeavesRoundTrip(t *testing.T) {
	leaves, err := flatten.Leaves(context.Background(), strings.NewReader(testJSON), nil)
	if err != nil {
		t.Fatalf("Leaves: unexpected error: %v", err)
	}
	var b ast.Builder
	for _, leaf := range leaves {
		if err := b.EmitLeaf(leaf); err != nil {
			t.Fatalf("EmitLeaf %v: unexpected error: %v", leaf.Path, err)
		}
	}
	root := b.Value()
	for _, leaf := range leaves {
		v, err := ast.Lookup(root, leaf.Path)
		if err != nil {
			t.Errorf("Lookup %v: unexpected error: %v", leaf.Path, err)
			continue
		}
		if got := v.JSON(); got != leaf.Value.Text {
			t.Errorf("Lookup %v: got %s, want %s", leaf.Path, got, leaf.Value.Text)
		}
	}
}

func TestBuilderInference(t *testing.T) {
	tests := []struct {
		name, input string
		opts        *flatten.Options
		want        string
	}{
		{"LeafOnly", `{"a":[1,{"b":2}],"c":{}}`, &flatten.Options{LeafOnly: true}, `{"a":[1,{"b":2}]}`},
		{"Events", `{"a":[1,{"b":2}],"c":{}}`, nil, `{"a":[1,{"b":2}],"c":{}}`},
		{"Prune", `{"a":[1,{}],"c":""}`, &flatten.Options{Prune: true}, `{"a":[1]}`},
		{"SelectGap", `{"b":[0,1,2]}`, &flatten.Options{Select: jpath.MustCompile("$.b[1:]")}, `{"b":[null,1,2]}`},
		{"SelectDeep", `{"p":{"q":[{"r":1},{"s":2}]}}`, &flatten.Options{Select: jpath.MustCompile("$..s")},
			`{"p":{"q":[null,{"s":2}]}}`},
		{"Duplicates", `{"a":1,"a":2}`, &flatten.Options{LeafOnly: true}, `{"a":1,"a":2}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b ast.Builder
			if err := flatten.Flatten(context.Background(), strings.NewReader(tc.input), &b, tc.opts); err != nil {
				t.Fatalf("Flatten: unexpected error: %v", err)
			}
			if got := b.Value().JSON(); got != tc.want {
				t.Errorf("Result: got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestBuilderEmpty(t *testing.T) {
	var b ast.Builder
	if v := b.Value(); v != nil {
		t.Errorf("Value: got %v, want nil", v)
	}
	err := flatten.Flatten(context.Background(), strings.NewReader(`[]`), &b, &flatten.Options{LeafOnly: true})
	if err != nil {
		t.Fatalf("Flatten: unexpected error: %v", err)
	}
	if v := b.Value(); v != nil {
		t.Errorf("Value: got %s, want nil", v.JSON())
	}
}

func TestBuilderConflict(t *testing.T) {
	var b ast.Builder
	if err := b.EmitLeaf(flatten.Leaf{
		Path:  jpath.Path{jpath.Key("a")},
		Value: flatten.Scalar{Kind: flatten.Number, Text: "1"},
	}); err != nil {
		t.Fatalf("EmitLeaf: unexpected error: %v", err)
	}
	if err := b.EmitLeaf(flatten.Leaf{
		Path:  jpath.Path{jpath.Index(0)},
		Value: flatten.Scalar{Kind: flatten.Null, Text: "null"},
	}); err == nil {
		t.Errorf("EmitLeaf: got %s, want error", b.Value().JSON())
	}
	b.Reset()
	if v := b.Value(); v != nil {
		t.Errorf("Value after Reset: got %s, want nil", v.JSON())
	}
}

func TestParse(t *testing.T) {
	vs, err := ast.Parse(context.Background(), strings.NewReader(`1 [2,"three"]
{"a":{}} null`))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	var got []string
	for _, v := range vs {
		got = append(got, v.JSON())
	}
	if diff := cmp.Diff([]string{`1`, `[2,"three"]`, `{"a":{}}`, `null`}, got); diff != "" {
		t.Errorf("Parse (-want, +got):\n%s", diff)
	}

	vs, err = ast.Parse(context.Background(), strings.NewReader(`[1] [2`))
	if err == nil {
		t.Fatal("Parse: got nil error, want syntax error")
	}
	if len(vs) != 1 || vs[0].JSON() != "[1]" {
		t.Errorf("Parse: got %d values before error, want [1]", len(vs))
	}
}

func TestLookup(t *testing.T) {
	v, err := ast.ParseSingle(context.Background(), strings.NewReader(testJSON))
	if err != nil {
		t.Fatalf("ParseSingle: unexpected error: %v", err)
	}

	tests := []struct {
		name string
		path string
		want string
		fail bool
	}{
		{"Root", `[]`, "", false},
		{"NoMatch", `["nonesuch"]`, "", true},
		{"WrongType", `[11]`, "", true},
		{"ArrayPos", `["list",1]`, `{"x":2}`, false},
		{"ArrayRange", `["o",25]`, "", true},
		{"ObjPath", `["xyz","d"]`, `true`, false},
		{"NotObject", `["o","x"]`, "", true},
		{"Empty", `["empty",1]`, `[]`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := jpath.ParsePath(tc.path)
			if err != nil {
				t.Fatalf("ParsePath %q: %v", tc.path, err)
			}
			got, err := ast.Lookup(v, p)
			if err != nil {
				if tc.fail {
					t.Logf("Got expected error: %v", err)
					return
				}
				t.Fatalf("Lookup: unexpected error: %v", err)
			} else if tc.fail {
				t.Fatalf("Lookup: got %s, want error", got.JSON())
			}
			want := tc.want
			if want == "" {
				want = v.JSON()
			}
			if got.JSON() != want {
				t.Errorf("Lookup: got %s, want %s", got.JSON(), want)
			}
		})
	}
}

func TestScalars(t *testing.T) {
	v, err := ast.ParseSingle(context.Background(), strings.NewReader(`[12, -2.5e1, true, "a\u0062c", null]`))
	if err != nil {
		t.Fatalf("ParseSingle: unexpected error: %v", err)
	}
	vs := v.(*ast.Array).Values
	if n, err := vs[0].(ast.Number).Int64(); err != nil || n != 12 {
		t.Errorf("Int64: got %d, %v; want 12", n, err)
	}
	if _, err := vs[1].(ast.Number).Int64(); err == nil {
		t.Error("Int64 of -2.5e1: got nil error")
	}
	if f := vs[1].(ast.Number).Float64(); f != -25 {
		t.Errorf("Float64: got %v, want -25", f)
	}
	if !vs[2].(ast.Bool).Value() {
		t.Error("Bool: got false, want true")
	}
	if s := vs[3].(ast.String); s.Value() != "abc" || s.JSON() != `"a\u0062c"` {
		t.Errorf("String: got %q %s, want abc", s.Value(), s.JSON())
	}
	if _, ok := vs[4].(ast.Null); !ok {
		t.Errorf("Null: got %T", vs[4])
	}
}
