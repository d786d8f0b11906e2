// Package events records user-visible actions as structured log events.
package events

import (
	"time"

	"github.com/rs/zerolog"
)

// Event names.
const (
	NameThemeChange    = "theme_change"
	NameFileOperation  = "file_operation"
	NameExport         = "export"
	NameSettingsChange = "settings_change"
	NameError          = "error"
)

// Operation is the kind of file operation reported by FileOperation.
type Operation string

// Operation values.
const (
	OpUpload   Operation = "upload"
	OpDownload Operation = "download"
	OpConvert  Operation = "convert"
	OpSave     Operation = "save"
	OpDelete   Operation = "delete"
	OpClear    Operation = "clear"
)

// Export describes one finished conversion.
type Export struct {
	Source   string
	Format   string
	Pages    int
	Duration time.Duration
	Err      error
}

// Tracker receives events. Implementations must be safe for concurrent use.
type Tracker interface {
	ThemeChange(theme string)
	FileOperation(op Operation, fileType string, success bool)
	Export(e Export)
	SettingsChange(setting string, value any)
	Error(err error, context string)
}

// Nop discards every event.
type Nop struct{}

func (Nop) ThemeChange(string)                    {}
func (Nop) FileOperation(Operation, string, bool) {}
func (Nop) Export(Export)                         {}
func (Nop) SettingsChange(string, any)            {}
func (Nop) Error(error, string)                   {}

// LogTracker writes each event as one zerolog entry with an "event" field.
type LogTracker struct {
	log zerolog.Logger
}

// NewLogTracker returns a tracker logging to l at info level.
func NewLogTracker(l zerolog.Logger) *LogTracker {
	return &LogTracker{log: l}
}

func (t *LogTracker) ThemeChange(theme string) {
	t.log.Info().Str("event", NameThemeChange).Str("theme", theme).Msg("theme changed")
}

func (t *LogTracker) FileOperation(op Operation, fileType string, success bool) {
	t.log.Info().
		Str("event", NameFileOperation).
		Str("operation", string(op)).
		Str("fileType", fileType).
		Bool("success", success).
		Msg("file operation")
}

func (t *LogTracker) Export(e Export) {
	ev := t.log.Info()
	if e.Err != nil {
		ev = t.log.Warn().Err(e.Err)
	}
	ev.Str("event", NameExport).
		Str("source", e.Source).
		Str("format", e.Format).
		Int("pages", e.Pages).
		Dur("duration", e.Duration).
		Bool("success", e.Err == nil).
		Msg("export")
}

func (t *LogTracker) SettingsChange(setting string, value any) {
	t.log.Info().Str("event", NameSettingsChange).Str("setting", setting).Interface("value", value).Msg("setting changed")
}

func (t *LogTracker) Error(err error, context string) {
	t.log.Error().Str("event", NameError).Str("context", context).Err(err).Msg("operation failed")
}

var (
	_ Tracker = Nop{}
	_ Tracker = (*LogTracker)(nil)
)
