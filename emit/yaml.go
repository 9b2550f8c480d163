// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package emit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/creachadair/jflat/flatten"
	"github.com/creachadair/jflat/jpath"
	"github.com/goccy/go-yaml"
)

// YAML writes records as the items of a YAML sequence, each a mapping with a
// path and a value. Path segments are strings and integers. Numbers are
// written as plain scalars holding their JSON text exactly. Empty containers
// are written as empty sequences or mappings; other containers are not
// written.
type YAML struct {
	w *bufio.Writer
}

// NewYAML constructs a YAML emitter that writes to w.
func NewYAML(w io.Writer) *YAML { return &YAML{w: bufio.NewWriter(w)} }

type yamlRecord struct {
	Path  []any `yaml:"path,flow"`
	Value any   `yaml:"value"`
}

// EmitLeaf implements the flatten.Emitter interface.
func (y *YAML) EmitLeaf(leaf flatten.Leaf) error {
	return y.write(leaf.Path, yamlValue(leaf.Value))
}

// EmitContainer implements the flatten.ContainerEmitter interface.
func (y *YAML) EmitContainer(e flatten.Event) error {
	if !e.IsEmpty() {
		return nil
	}
	if e.Kind == flatten.Object {
		return y.write(e.Path, map[string]any{})
	}
	return y.write(e.Path, []any{})
}

func (y *YAML) write(p jpath.Path, value any) error {
	rec := yamlRecord{Path: make([]any, len(p)), Value: value}
	for i, seg := range p {
		if idx, ok := seg.Index(); ok {
			rec.Path[i] = idx
		} else {
			rec.Path[i], _ = seg.Key()
		}
	}
	out, err := yaml.Marshal([]yamlRecord{rec})
	if err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	_, err = y.w.Write(out)
	return err
}

// Flush writes any buffered output to the underlying writer.
func (y *YAML) Flush() error { return y.w.Flush() }

func yamlValue(v flatten.Scalar) any {
	switch v.Kind {
	case flatten.String:
		return v.Str
	case flatten.Bool:
		return v.Bool()
	case flatten.Number:
		return yamlNumber(v.Text)
	}
	return nil
}

// yamlNumber is the text of a JSON number, written to YAML without conversion.
type yamlNumber string

// MarshalYAML implements the yaml.BytesMarshaler interface.
func (n yamlNumber) MarshalYAML() ([]byte, error) { return []byte(n), nil }
