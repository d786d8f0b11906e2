package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-mdexport"
)

// runConvert converts a markdown file or directory.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	log := env.commandLogger(flags.common)

	s, err := resolveSettings(&flags.exportFlags, log)
	if err != nil {
		return err
	}
	workers, err := resolveWorkers(flags.workers, s.cfg)
	if err != nil {
		return err
	}

	if len(positional) == 0 {
		return ErrNoInput
	}
	files, err := discoverFiles(positional[0], s.outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, positional[0])
	}

	// Only PDF output needs a browser; HTML-only runs skip pool sizing.
	size := 1
	if s.format.WantsPDF() {
		size = mdexport.ResolvePoolSize(workers)
	}
	size = min(size, len(files))

	log.Debug().
		Int("files", len(files)).
		Int("workers", size).
		Str("format", s.format.String()).
		Str("theme", string(s.options.Theme)).
		Dur("timeout", s.timeout).
		Msg("starting conversion")

	pool := env.NewPool(size, s.converterOptions(env.Now)...)
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn().Err(err).Msg("closing converter pool")
		}
	}()

	start := time.Now()
	results := convertBatch(ctx, pool, files, s)
	log.Debug().Dur("elapsed", time.Since(start)).Msg("conversion finished")

	trackResults(env.tracker(flags.common, log), results, s.format)
	return printResults(results, flags.common, env)
}
