package store

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// badgerLogger routes badger's printf-style diagnostics into zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

// newBadgerLogger wraps l. A zero-value logger discards everything.
func newBadgerLogger(l zerolog.Logger) *badgerLogger {
	return &badgerLogger{log: l.With().Str("component", "badger").Logger()}
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.log.Error().Msg(trimf(format, args))
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.log.Warn().Msg(trimf(format, args))
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.log.Debug().Msg(trimf(format, args))
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.log.Trace().Msg(trimf(format, args))
}

// trimf formats and drops the trailing newline badger appends.
func trimf(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
