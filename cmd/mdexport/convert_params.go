package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/config"
	"github.com/alnah/go-mdexport/internal/fileutil"
	"github.com/alnah/go-mdexport/internal/hints"
)

// ErrInvalidWorkerCount is returned for a worker count outside [0, MaxPoolSize].
var ErrInvalidWorkerCount = errors.New("invalid worker count")

// exportSettings is the resolved outcome of flags, environment and config.
type exportSettings struct {
	cfg        *config.Config
	configPath string // absolute path of the loaded config file, "" for defaults
	options    mdexport.Options
	format     mdexport.Format
	timeout    time.Duration
	title      string // --title, empty = derived per file
	outputDir  string
}

// resolveSettings merges defaults, config file, environment and flags, in
// increasing order of precedence, and validates the result.
func resolveSettings(f *exportFlags, log zerolog.Logger) (*exportSettings, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(log)

	name := f.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	cfg, path, err := loadConfig(name)
	if err != nil {
		return nil, err
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(f, cfg)
	return settingsFromConfig(cfg, path, f, log)
}

// settingsFromConfig validates cfg and derives the conversion settings.
func settingsFromConfig(cfg *config.Config, path string, f *exportFlags, log zerolog.Logger) (*exportSettings, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	format, err := mdexport.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	if !opts.Theme.IsKnown() {
		log.Warn().Str("theme", string(opts.Theme)).
			Msg("unknown theme, using github" + hints.ForThemeNotFound(themeNames()))
	}

	s := &exportSettings{
		cfg:        cfg,
		configPath: path,
		options:    opts,
		format:     format,
		timeout:    timeout,
		title:      f.document.title,
		outputDir:  cfg.Output.DefaultDir,
	}
	if f.output != "" {
		s.outputDir = f.output
	}
	return s, nil
}

// loadConfig loads the named config, or returns the defaults when name is
// empty. The returned path is absolute so it can be watched and reloaded.
func loadConfig(name string) (*config.Config, string, error) {
	if name == "" {
		return config.DefaultConfig(), "", nil
	}

	path, err := config.ResolvePath(name)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
// Boolean flags only apply when given on the command line.
func mergeFlags(f *exportFlags, cfg *config.Config) {
	setString(&cfg.Document.Theme, f.document.theme)
	setString(&cfg.Document.FontSize, f.document.fontSize)
	setString(&cfg.Document.FontFamily, f.document.fontFamily)
	setString(&cfg.Document.LineHeight, f.document.lineHeight)
	setString(&cfg.Document.TimestampFormat, f.document.timestampFormat)
	setString(&cfg.Output.Format, f.format)
	setString(&cfg.Assets.BasePath, f.assetPath)
	setString(&cfg.PDF.PageSize, f.page.size)
	setString(&cfg.PDF.Margins, f.page.margins)
	setString(&cfg.PDF.Timeout, f.timeout)

	if f.changed["toc"] {
		cfg.Document.TOC = boolPtr(f.document.toc)
	}
	if f.changed["no-highlight"] {
		cfg.Document.SyntaxHighlighting = boolPtr(!f.document.noHighlight)
	}
	if f.changed["no-external-tab"] {
		cfg.Document.ExternalLinksNewTab = boolPtr(!f.document.noExternalTab)
	}
	if f.changed["page-numbers"] {
		cfg.Document.PageNumbers = boolPtr(f.document.pageNumbers)
	}
	if f.changed["timestamp"] {
		cfg.Document.Timestamp = boolPtr(f.document.timestamp)
	}
	if f.changed["dark"] {
		cfg.Document.Dark = boolPtr(f.document.dark)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func boolPtr(b bool) *bool { return &b }

// resolveWorkers picks the worker count: flag > config (which carries the
// environment override) > auto.
func resolveWorkers(flagWorkers int, cfg *config.Config) (int, error) {
	if err := validateWorkers(flagWorkers); err != nil {
		return 0, err
	}
	if flagWorkers > 0 {
		return flagWorkers, nil
	}
	if err := validateWorkers(cfg.Output.Workers); err != nil {
		return 0, err
	}
	return cfg.Output.Workers, nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > mdexport.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, mdexport.MaxPoolSize)
	}
	return nil
}

// converterOptions builds the options every pooled converter is created with.
func (s *exportSettings) converterOptions(now func() time.Time) []mdexport.Option {
	opts := []mdexport.Option{
		mdexport.WithTimeout(s.timeout),
		mdexport.WithViewportWidth(s.cfg.PDF.ViewportWidth),
		mdexport.WithClock(now),
	}
	if s.cfg.Assets.BasePath != "" {
		opts = append(opts, mdexport.WithAssetPath(s.cfg.Assets.BasePath))
	}
	if s.cfg.Document.TimestampFormat != "" {
		opts = append(opts, mdexport.WithTimestampFormat(s.cfg.Document.TimestampFormat))
	}
	return opts
}

// themeNames lists the built-in themes as strings.
func themeNames() []string {
	themes := mdexport.Themes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = string(t)
	}
	return names
}

// titleFor returns the document title for a source file.
func (s *exportSettings) titleFor(name string) string {
	if s.title != "" {
		return s.title
	}
	return strings.TrimSuffix(fileutil.TitleFromName(name), ".markdown")
}
