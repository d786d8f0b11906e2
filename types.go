package mdexport

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-mdexport/internal/dateutil"
)

// Format selects which outputs Convert produces.
type Format string

// Format values. The zero value produces both outputs.
const (
	FormatBoth Format = ""
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ParseFormat parses "html", "pdf" or "both" (case-insensitive).
// Empty means FormatBoth.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return FormatBoth, nil
	case "html":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: html, pdf, both)", ErrInvalidFormat, s)
	}
}

// String returns the user-facing name of the format.
func (f Format) String() string {
	if f == FormatBoth {
		return "both"
	}
	return string(f)
}

// WantsHTML reports whether the standalone HTML document is requested.
func (f Format) WantsHTML() bool { return f == FormatBoth || f == FormatHTML }

// WantsPDF reports whether the PDF is requested.
func (f Format) WantsPDF() bool { return f == FormatBoth || f == FormatPDF }

// Input contains conversion parameters.
type Input struct {
	Markdown  string // required
	Title     string // document title, defaults to "Converted Document"
	SourceDir string // base directory for relative image and link paths
	Format    Format
	Options   Options
}

// Heading is an entry of the document outline.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// ConvertResult holds the outputs of a conversion.
type ConvertResult struct {
	HTML     []byte // standalone HTML document, nil unless requested
	PDF      []byte // PDF document, nil unless requested
	Headings []Heading
	Diagrams int // diagram blocks detected
	Pages    int // PDF page count, 0 when no PDF was produced
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout         time.Duration
	assetPath       string
	timestampFormat string
	viewportWidth   int
	now             func() time.Time
}

// Defaults used when no option overrides them.
const (
	defaultTimeout       = 30 * time.Second
	DefaultViewportWidth = 800
	// rasterSupersample is the device scale factor of the screenshot.
	rasterSupersample = 2
)

// WithTimeout sets the conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdexport: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithClock sets the time source used for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.cfg.now = now
		}
	}
}

// WithAssetPath loads styles and templates from dir, falling back to the
// embedded assets for anything missing.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithTimestampFormat sets the format of the generated-on footer.
// Accepts presets (iso, european, us, long, datetime, locale) or tokens
// such as "YYYY-MM-DD HH:mm". Invalid formats fail NewConverter.
func WithTimestampFormat(format string) Option {
	return func(c *Converter) {
		c.cfg.timestampFormat = format
	}
}

// WithRasterizer replaces the headless browser, mostly for tests.
func WithRasterizer(r Rasterizer) Option {
	return func(c *Converter) {
		c.rasterizer = r
	}
}

// WithViewportWidth sets the CSS pixel width documents are laid out at
// before rasterization. Non-positive values keep the default.
func WithViewportWidth(px int) Option {
	return func(c *Converter) {
		if px > 0 {
			c.cfg.viewportWidth = px
		}
	}
}

func validateTimestampFormat(format string) error {
	if err := dateutil.Validate(format); err != nil {
		return fmt.Errorf("%w: timestamp format: %v", ErrInvalidOption, err)
	}
	return nil
}
