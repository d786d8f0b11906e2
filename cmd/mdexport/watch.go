package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdexport/internal/events"
	"github.com/alnah/go-mdexport/internal/watch"
)

// runWatch exports a markdown file, then re-exports it whenever the file or
// the loaded config file changes, until ctx is canceled.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseWatchFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: watch takes exactly one markdown file", ErrUsage)
	}
	input := positional[0]
	if err := validateMarkdownExtension(input); err != nil {
		return err
	}

	log := env.commandLogger(flags.common)
	s, err := resolveSettings(flags, log)
	if err != nil {
		return err
	}
	debounce, err := s.cfg.DebounceDuration()
	if err != nil {
		return err
	}

	sess := &watchSession{
		env:      env,
		log:      log,
		flags:    flags,
		tracker:  env.tracker(flags.common, log),
		input:    input,
		settings: s,
		pool:     env.NewPool(1, s.converterOptions(env.Now)...),
	}
	defer sess.closePool()

	w, err := watch.New(watch.Options{
		Debounce: debounce,
		OnError:  func(err error) { log.Warn().Err(err).Msg("file watcher error") },
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.Subscribe(input, sess.onDocument(ctx)); err != nil {
		return err
	}
	if s.configPath != "" {
		if err := w.Subscribe(s.configPath, sess.onConfig(ctx)); err != nil {
			return err
		}
	}

	sess.export(ctx)
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl+C to stop)\n", input)
	}

	return w.Run(ctx)
}

// watchSession holds the state of one watch command. Its callbacks run one
// at a time on the watcher goroutine.
type watchSession struct {
	env      *Environment
	log      zerolog.Logger
	flags    *exportFlags
	tracker  events.Tracker
	input    string
	settings *exportSettings
	pool     Pool
}

// export converts the watched file with the current settings.
func (w *watchSession) export(ctx context.Context) {
	f := FileToConvert{
		InputPath:  w.input,
		OutputBase: resolveOutputBase(w.input, w.settings.outputDir, ""),
	}

	conv, err := w.pool.Acquire()
	if err != nil {
		w.report(ConversionResult{InputPath: w.input, Err: fmt.Errorf("%w: %w", ErrConverterInit, err)})
		return
	}
	result := convertFile(ctx, conv, f, w.settings)
	w.pool.Release(conv)

	w.report(result)
}

func (w *watchSession) report(r ConversionResult) {
	trackResults(w.tracker, []ConversionResult{r}, w.settings.format)
	if r.Err != nil {
		if !errors.Is(r.Err, context.Canceled) {
			w.log.Error().Err(r.Err).Str("file", r.InputPath).Msg("export failed")
		}
		return
	}
	_ = printResults([]ConversionResult{r}, w.flags.common, w.env)
}

// onDocument re-exports the markdown file after it changes.
func (w *watchSession) onDocument(ctx context.Context) func(watch.Event) {
	return func(ev watch.Event) {
		if ev.Err != nil {
			w.log.Warn().Err(ev.Err).Str("file", ev.Path).Msg("cannot read watched file, waiting for the next change")
			return
		}
		w.log.Debug().Str("file", ev.Path).Str("op", ev.Op.String()).Msg("document changed")
		w.export(ctx)
	}
}

// onConfig reloads the settings after the config file changes and re-exports
// the document. An invalid config keeps the previous settings.
func (w *watchSession) onConfig(ctx context.Context) func(watch.Event) {
	return func(ev watch.Event) {
		if ev.Err != nil {
			w.log.Warn().Err(ev.Err).Str("file", ev.Path).Msg("cannot read config file, keeping previous settings")
			return
		}

		s, err := resolveSettings(w.flags, w.log)
		if err != nil {
			w.tracker.Error(err, "config reload")
			w.log.Error().Err(err).Msg("config reload failed, keeping previous settings")
			return
		}

		if s.options.Theme != w.settings.options.Theme {
			w.tracker.ThemeChange(string(s.options.Theme))
		}
		w.tracker.SettingsChange("config", ev.Path)
		w.log.Info().Str("config", ev.Path).Msg("config reloaded")

		// Converter options such as the timeout may have changed.
		w.closePool()
		w.settings = s
		w.pool = w.env.NewPool(1, s.converterOptions(w.env.Now)...)
		w.export(ctx)
	}
}

func (w *watchSession) closePool() {
	if err := w.pool.Close(); err != nil {
		w.log.Warn().Err(err).Msg("closing converter pool")
	}
}
