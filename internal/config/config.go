// Package config loads the YAML configuration file of the mdexport command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/dateutil"
	"github.com/alnah/go-mdexport/internal/fileutil"
	"github.com/alnah/go-mdexport/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory used under the user config directory.
const AppDirName = "go-mdexport"

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxEnumLength     = 20 // "tokyo-night", "relaxed"
	MaxDurationLength = 20 // "2m30s"
)

// Watch and PDF defaults.
const (
	DefaultDebounce = 100 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

// Config holds all configuration for document export.
type Config struct {
	Document DocumentConfig `yaml:"document"`
	Output   OutputConfig   `yaml:"output"`
	Assets   AssetsConfig   `yaml:"assets"`
	PDF      PDFConfig      `yaml:"pdf"`
	Store    StoreConfig    `yaml:"store"`
	Watch    WatchConfig    `yaml:"watch"`
}

// DocumentConfig mirrors mdexport.Options. Unset booleans keep the defaults.
type DocumentConfig struct {
	Theme               string `yaml:"theme"`
	FontSize            string `yaml:"fontSize"`
	FontFamily          string `yaml:"fontFamily"`
	LineHeight          string `yaml:"lineHeight"`
	TOC                 *bool  `yaml:"toc"`
	SyntaxHighlighting  *bool  `yaml:"syntaxHighlighting"`
	ExternalLinksNewTab *bool  `yaml:"externalLinksNewTab"`
	PageNumbers         *bool  `yaml:"pageNumbers"`
	Timestamp           *bool  `yaml:"timestamp"`
	TimestampFormat     string `yaml:"timestampFormat"`
	Dark                *bool  `yaml:"dark"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the source file
	Format     string `yaml:"format"`     // html, pdf or both
	Workers    int    `yaml:"workers"`    // 0 = auto
}

// AssetsConfig defines custom asset loading.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets only
}

// PDFConfig defines page geometry and browser settings.
type PDFConfig struct {
	PageSize      string `yaml:"pageSize"`
	Margins       string `yaml:"margins"`
	Timeout       string `yaml:"timeout"`       // Go duration, e.g. "45s"
	ViewportWidth int    `yaml:"viewportWidth"` // CSS px, 0 = default
}

// StoreConfig locates the file store.
type StoreConfig struct {
	Dir string `yaml:"dir"` // empty = user data directory
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce string `yaml:"debounce"` // Go duration, e.g. "250ms"
}

// Validate checks enumerated values, durations and field lengths.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"document.theme", c.Document.Theme, MaxEnumLength},
		{"document.fontSize", c.Document.FontSize, MaxEnumLength},
		{"document.fontFamily", c.Document.FontFamily, MaxEnumLength},
		{"document.lineHeight", c.Document.LineHeight, MaxEnumLength},
		{"document.timestampFormat", c.Document.TimestampFormat, dateutil.MaxDateFormatLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"output.format", c.Output.Format, MaxEnumLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"pdf.pageSize", c.PDF.PageSize, MaxEnumLength},
		{"pdf.margins", c.PDF.Margins, MaxEnumLength},
		{"pdf.timeout", c.PDF.Timeout, MaxDurationLength},
		{"store.dir", c.Store.Dir, MaxPathLength},
		{"watch.debounce", c.Watch.Debounce, MaxDurationLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if _, err := c.Options(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	if _, err := mdexport.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: output.format: %v", ErrInvalidValue, err)
	}
	if err := dateutil.Validate(c.Document.TimestampFormat); err != nil {
		return fmt.Errorf("%w: document.timestampFormat: %v", ErrInvalidValue, err)
	}
	if c.Output.Workers < 0 {
		return fmt.Errorf("%w: output.workers must be >= 0, got %d", ErrInvalidValue, c.Output.Workers)
	}
	if c.PDF.ViewportWidth < 0 {
		return fmt.Errorf("%w: pdf.viewportWidth must be >= 0, got %d", ErrInvalidValue, c.PDF.ViewportWidth)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.DebounceDuration(); err != nil {
		return err
	}
	return nil
}

// Options applies the document and PDF sections onto mdexport.DefaultOptions.
func (c *Config) Options() (mdexport.Options, error) {
	opts := mdexport.DefaultOptions()
	var err error

	if c.Document.Theme != "" {
		opts.Theme = mdexport.ParseTheme(c.Document.Theme)
	}
	if c.Document.FontSize != "" {
		if opts.FontSize, err = mdexport.ParseFontSize(c.Document.FontSize); err != nil {
			return opts, fmt.Errorf("document.fontSize: %w", err)
		}
	}
	if c.Document.FontFamily != "" {
		if opts.FontFamily, err = mdexport.ParseFontFamily(c.Document.FontFamily); err != nil {
			return opts, fmt.Errorf("document.fontFamily: %w", err)
		}
	}
	if c.Document.LineHeight != "" {
		if opts.LineHeight, err = mdexport.ParseLineHeight(c.Document.LineHeight); err != nil {
			return opts, fmt.Errorf("document.lineHeight: %w", err)
		}
	}
	if c.PDF.PageSize != "" {
		if opts.PageSize, err = mdexport.ParsePageSize(c.PDF.PageSize); err != nil {
			return opts, fmt.Errorf("pdf.pageSize: %w", err)
		}
	}
	if c.PDF.Margins != "" {
		if opts.Margins, err = mdexport.ParseMargins(c.PDF.Margins); err != nil {
			return opts, fmt.Errorf("pdf.margins: %w", err)
		}
	}

	setBool(&opts.IncludeTOC, c.Document.TOC)
	setBool(&opts.SyntaxHighlighting, c.Document.SyntaxHighlighting)
	setBool(&opts.ExternalLinksNewTab, c.Document.ExternalLinksNewTab)
	setBool(&opts.IncludePageNumbers, c.Document.PageNumbers)
	setBool(&opts.IncludeTimestamp, c.Document.Timestamp)
	setBool(&opts.DarkMode, c.Document.Dark)

	return opts, nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// TimeoutDuration returns pdf.timeout, or DefaultTimeout when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return parsePositiveDuration("pdf.timeout", c.PDF.Timeout, DefaultTimeout)
}

// DebounceDuration returns watch.debounce, or DefaultDebounce when unset.
func (c *Config) DebounceDuration() (time.Duration, error) {
	return parsePositiveDuration("watch.debounce", c.Watch.Debounce, DefaultDebounce)
}

func parsePositiveDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, field, value)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration that leaves every setting at its default.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{DefaultDir: "", Format: "both"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	path, err := ResolvePath(nameOrPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrictFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		if errors.Is(err, yamlutil.ErrNilData) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "both"
	}
	return &cfg, nil
}

// ResolvePath returns the file LoadConfig would read for nameOrPath.
func ResolvePath(nameOrPath string) (string, error) {
	if nameOrPath == "" {
		return "", ErrEmptyConfigName
	}
	if fileutil.IsFilePath(nameOrPath) {
		return nameOrPath, nil
	}

	searched := SearchPaths(nameOrPath)
	for _, p := range searched {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(searched, ", "))
}

// SearchPaths lists the candidate files for a config name, in lookup order:
// the current directory, then the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDirName, name+ext))
		}
	}
	return paths
}
