// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Program jflat flattens JSON input into a sequence of path/value records.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/creachadair/jflat/emit"
	"github.com/creachadair/jflat/flatten"
	"github.com/creachadair/jflat/internal/config"
	"github.com/creachadair/jflat/internal/exit"
	"github.com/tailscale/hujson"
)

func main() {
	exitCode := run()
	os.Exit(exitCode)
}

func run() int {
	cfg, exitResult := config.Parse(os.Args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := process(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		exitResult = exit.Errorf("jflat: %v\n", err)
		exitResult.Print()
		return exitResult.ExitCode
	}
	return 0
}

// process flattens each input named by cfg and writes the records to stdout.
// Records written before an error are flushed.
func process(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout io.Writer) error {
	w, err := emit.New(cfg.Format, stdout)
	if err != nil {
		return err
	}
	if t, ok := w.(*emit.Text); ok {
		t.NormalizeSolidus = cfg.NormalizeSolidus
	}
	for _, name := range cfg.Files {
		if err := flattenInput(ctx, cfg, name, stdin, w); err != nil {
			w.Flush()
			return fmt.Errorf("%s: %w", inputName(name), err)
		}
	}
	return w.Flush()
}

func flattenInput(ctx context.Context, cfg *config.Config, name string, stdin io.Reader, w emit.Writer) error {
	var r io.Reader = stdin
	if name != config.Stdin {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if cfg.Relaxed {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		std, err := hujson.Standardize(data)
		if err != nil {
			return err
		}
		r = bytes.NewReader(std)
	}

	f := flatten.New(r, &cfg.Options)
	if !cfg.Stream {
		return f.Flatten(ctx, w)
	}
	for {
		if err := f.Next(ctx, w); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}

func inputName(name string) string {
	if name == config.Stdin {
		return "<stdin>"
	}
	return name
}
