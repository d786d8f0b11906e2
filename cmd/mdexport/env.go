package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/events"
	"github.com/alnah/go-mdexport/internal/store"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger zerolog.Logger // diagnostics; results go to Stdout

	// Tracker overrides the event sink. Nil selects a log tracker in verbose
	// mode and a no-op otherwise.
	Tracker events.Tracker

	NewPool   func(size int, opts ...mdexport.Option) Pool
	OpenStore func(dir string, log zerolog.Logger) (*store.Store, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:       time.Now,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Logger:    newLogger(os.Stderr),
		NewPool:   newPoolAdapter,
		OpenStore: openStore,
	}
}

// newLogger returns a human-readable zerolog logger writing to w.
func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
}

// commandLogger applies the verbosity flags of one command to the base logger.
func (e *Environment) commandLogger(c commonFlags) zerolog.Logger {
	return e.Logger.Level(logLevel(c.verbose, c.quiet))
}

// tracker returns the event sink for a command.
func (e *Environment) tracker(c commonFlags, log zerolog.Logger) events.Tracker {
	if e.Tracker != nil {
		return e.Tracker
	}
	if c.verbose {
		return events.NewLogTracker(log)
	}
	return events.Nop{}
}

func openStore(dir string, log zerolog.Logger) (*store.Store, error) {
	return store.Open(store.Options{Dir: dir, Logger: log.Level(max(log.GetLevel(), zerolog.WarnLevel))})
}
