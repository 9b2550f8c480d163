// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package config parses the command-line configuration of the jflat tool.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/creachadair/jflat/emit"
	"github.com/creachadair/jflat/flatten"
	"github.com/creachadair/jflat/internal/exit"
	"github.com/creachadair/jflat/jpath"
)

// Stdin is the file name that denotes standard input.
const Stdin = "-"

var (
	ErrNoArguments     = errors.New("no arguments provided")
	ErrNegativeDepth   = errors.New("max-depth must not be negative")
	ErrRelaxedSequence = errors.New("-relaxed cannot be combined with -stream")
)

// Config represents the complete configuration for the jflat tool.
type Config struct {
	// Input files, in order. Stdin denotes standard input.
	Files []string

	// Output
	Format           string // one of emit.Formats
	NormalizeSolidus bool   // rewrite \/ as / (text format)

	// Input handling
	Relaxed bool // accept comments and trailing commas
	Stream  bool // each input is a sequence of values

	// Flattening options.
	Options flatten.Options
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if !slices.Contains(emit.Formats, c.Format) {
		return fmt.Errorf("unknown format %q (want one of %s)", c.Format, strings.Join(emit.Formats, ", "))
	}
	if c.Options.MaxDepth < 0 {
		return ErrNegativeDepth
	}
	if c.Relaxed && c.Stream {
		return ErrRelaxedSequence
	}
	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Usagef("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Usage and errors are reported by the caller.
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		leafOnly  = fs.Bool("l", false, "Report leaf values only")
		prune     = fs.Bool("p", false, "Omit empty values")
		brief     = fs.Bool("b", false, "Brief output, same as -l -p")
		noHead    = fs.Bool("n", false, "Omit the record for the root value")
		solidus   = fs.Bool("s", false, "Rewrite escaped solidus \\/ as /")
		format    = fs.String("format", "text", "Output format")
		selectExp = fs.String("select", "", "JSONPath expression selecting records to report")
		relaxed   = fs.Bool("relaxed", false, "Accept comments and trailing commas")
		strict    = fs.Bool("strict-unicode", false, "Reject unpaired surrogate escapes")
		maxDepth  = fs.Int("max-depth", 0, "Maximum nesting depth (0 for unlimited)")
		stream    = fs.Bool("stream", false, "Read a sequence of values from each input")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Usagef("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	files := fs.Args()
	if len(files) == 0 {
		files = []string{Stdin}
	}

	cfg := &Config{
		Files:            files,
		Format:           *format,
		NormalizeSolidus: *solidus,
		Relaxed:          *relaxed,
		Stream:           *stream,
		Options: flatten.Options{
			LeafOnly:      *leafOnly || *brief,
			Prune:         *prune || *brief,
			NoHead:        *noHead,
			StrictUnicode: *strict,
			MaxDepth:      *maxDepth,
		},
	}
	// Only the text format prints the contents of containers.
	cfg.Options.ContainerText = cfg.Format == "text" && !cfg.Options.LeafOnly

	if *selectExp != "" {
		expr, err := jpath.Compile(*selectExp)
		if err != nil {
			return nil, exit.Usagef("Error: invalid -select expression: %v\n\n%s", err, Usage())
		}
		cfg.Options.Select = expr
	}

	if err := cfg.Validate(); err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}
	return cfg, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `jflat - flatten JSON into path/value records

Usage: jflat [options] [file ...]

Reads JSON from each file in turn, or from standard input if no files are
given or a file is "-", and prints one record per value:

  ["a","b",0]	"value"

Options:
  -l                  Report leaf values only
  -p                  Omit empty strings, objects, and arrays
  -b                  Brief output, same as -l -p
  -n                  Omit the record for the root value
  -s                  Rewrite escaped solidus \/ as / (text format)
  -format NAME        Output format: text, jsonl, or yaml (default: text)
  -select EXPR        Report only records selected by a JSONPath expression
  -relaxed            Accept comments and trailing commas
  -strict-unicode     Reject unpaired surrogate escapes in strings
  -max-depth N        Maximum nesting depth (0 for unlimited)
  -stream             Read a sequence of values from each input
  -h, -help           Show this help message

Examples:
  jflat data.json                      # Leaves and containers
  jflat -b data.json                   # Non-empty leaves only
  curl -s $URL | jflat -select '$..id' # Values of every "id" member
  jflat -format yaml -stream log.jsonl # Records of each line as YAML`
}
