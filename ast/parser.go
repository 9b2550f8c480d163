// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"context"
	"io"

	"github.com/creachadair/jflat/flatten"
)

// Parse parses and returns the JSON values from r, which may contain a
// sequence of values separated by whitespace. In case of error, any complete
// values already parsed are returned along with the error.
func Parse(ctx context.Context, r io.Reader) ([]Value, error) {
	f := flatten.New(r, nil)
	var vs []Value
	for {
		var b Builder
		if err := f.Next(ctx, &b); err == io.EOF {
			return vs, nil
		} else if err != nil {
			return vs, err
		}
		vs = append(vs, b.Value())
	}
}

// ParseSingle parses and returns a single JSON value from r. The value must
// be the only content of r apart from whitespace.
func ParseSingle(ctx context.Context, r io.Reader) (Value, error) {
	var b Builder
	if err := flatten.Flatten(ctx, r, &b, nil); err != nil {
		return nil, err
	}
	return b.Value(), nil
}
