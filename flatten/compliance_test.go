// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package flatten_test

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/creachadair/jflat"
	"github.com/creachadair/jflat/flatten"
)

// The inputs exercised here are the test_parsing files of the suite described
// by "Parsing JSON is a Minefield", https://seriot.ch/projects/parsing_json.html
// (https://github.com/nst/JSONTestSuite). Files named y_* must be accepted and
// files named n_* rejected. Files named i_* may go either way; their results
// are logged.
var complianceDir = flag.String("compliance-dir", "",
	"Directory of JSONTestSuite test_parsing files (skip if empty)")

// flattenFile flattens the named file, collecting its records.
// Errors reading the file fail the test.
func flattenFile(t *testing.T, path string, opts *flatten.Options) (*flatten.Collector, error) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	var c flatten.Collector
	return &c, flatten.Flatten(context.Background(), f, &c, opts)
}

// checkBalanced reports an error if the container events in c do not nest.
func checkBalanced(t *testing.T, c *flatten.Collector) {
	t.Helper()
	var depth int
	for _, e := range c.Events {
		if e.Exit {
			depth--
		} else {
			depth++
		}
		if depth < 0 {
			t.Fatalf("Exit event %v without matching entry", e.Path)
		}
	}
	if depth != 0 {
		t.Errorf("Unbalanced container events: %d left open", depth)
	}
}

func TestCompliance(t *testing.T) {
	if *complianceDir == "" {
		t.Skip("Skipping compliance test because -compliance-dir is not set")
	}
	paths, err := filepath.Glob(filepath.Join(*complianceDir, "*.json"))
	if err != nil {
		t.Fatalf("Listing inputs: %v", err)
	} else if len(paths) == 0 {
		t.Fatalf("No inputs found in %q", *complianceDir)
	}

	var numYes, numNo, numIndet int
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		tag, _, _ := strings.Cut(name, "_")
		switch tag {
		case "y":
			numYes++
			t.Run(name, func(t *testing.T) {
				c, err := flattenFile(t, path, nil)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				checkBalanced(t, c)
			})
		case "n":
			numNo++
			t.Run(name, func(t *testing.T) {
				c, err := flattenFile(t, path, nil)
				var serr *jflat.SyntaxError
				if err == nil {
					t.Errorf("Wanted error, got %d leaves", len(c.Leaves))
				} else if !errors.As(err, &serr) {
					t.Errorf("Got %v, want *SyntaxError", err)
				} else {
					t.Logf("- [expected] %v: %v", serr.Kind, err)
				}
			})
		case "i":
			numIndet++
			t.Run(name, func(t *testing.T) {
				_, lenient := flattenFile(t, path, nil)
				_, strict := flattenFile(t, path, &flatten.Options{StrictUnicode: true})
				t.Logf("- lenient: %v; strict: %v", lenient, strict)
				if lenient != nil && strict == nil {
					t.Errorf("Strict mode accepted input rejected by lenient mode: %v", lenient)
				}
			})
		default:
			t.Logf("WARNING: Skipped non-matching filename %q", name)
		}
	}
	t.Logf("Ran %d positive, %d negative, and %d indeterminate tests", numYes, numNo, numIndet)
}
