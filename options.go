package mdexport

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alnah/go-mdexport/internal/pipeline"
)

// Theme selects the document palette. Unknown values render as ThemeGitHub.
type Theme string

// Theme values.
const (
	ThemeGitHub     Theme = pipeline.ThemeGitHub
	ThemeVSCodeDark Theme = pipeline.ThemeVSCodeDark
	ThemeMedium     Theme = pipeline.ThemeMedium
	ThemeAcademic   Theme = pipeline.ThemeAcademic
	ThemeMinimal    Theme = pipeline.ThemeMinimal
	ThemeTokyoNight Theme = pipeline.ThemeTokyoNight
)

// FontSize selects the body font size.
type FontSize string

// FontSize values.
const (
	FontSizeSmall  FontSize = "small"
	FontSizeMedium FontSize = "medium"
	FontSizeLarge  FontSize = "large"
)

// FontFamily selects the body font stack.
type FontFamily string

// FontFamily values.
const (
	FontFamilySystem FontFamily = "system"
	FontFamilySerif  FontFamily = "serif"
	FontFamilyMono   FontFamily = "mono"
)

// LineHeight selects the body line spacing.
type LineHeight string

// LineHeight values.
const (
	LineHeightCompact LineHeight = "compact"
	LineHeightNormal  LineHeight = "normal"
	LineHeightRelaxed LineHeight = "relaxed"
)

// PageSize selects the PDF page geometry.
type PageSize string

// PageSize values.
const (
	PageSizeA4     PageSize = "a4"
	PageSizeLetter PageSize = "letter"
	PageSizeLegal  PageSize = "legal"
)

// Margins selects the PDF page margin on all four sides.
type Margins string

// Margins values.
const (
	MarginsNarrow Margins = "narrow"
	MarginsNormal Margins = "normal"
	MarginsWide   Margins = "wide"
)

const (
	mmPerInch = 25.4

	// contentWidthPx is the reading width of the HTML body in CSS pixels.
	contentWidthPx = 800
)

var fontSizePx = map[FontSize]int{
	FontSizeSmall:  14,
	FontSizeMedium: 16,
	FontSizeLarge:  18,
}

var fontStacks = map[FontFamily]string{
	FontFamilySystem: `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Oxygen, Ubuntu, Cantarell, sans-serif`,
	FontFamilySerif:  `Georgia, Cambria, "Times New Roman", Times, serif`,
	FontFamilyMono:   monoStack,
}

const monoStack = `"SF Mono", Monaco, "Cascadia Code", "Roboto Mono", Consolas, "Courier New", monospace`

var lineHeights = map[LineHeight]float64{
	LineHeightCompact: 1.4,
	LineHeightNormal:  1.6,
	LineHeightRelaxed: 1.8,
}

// pageDimensions in millimetres, portrait.
var pageDimensions = map[PageSize][2]float64{
	PageSizeA4:     {210, 297},
	PageSizeLetter: {215.9, 279.4},
	PageSizeLegal:  {215.9, 355.6},
}

var marginInches = map[Margins]float64{
	MarginsNarrow: 0.5,
	MarginsNormal: 1,
	MarginsWide:   1.5,
}

// Options controls how a document is styled and exported.
// Start from DefaultOptions and override fields.
type Options struct {
	Theme               Theme
	FontSize            FontSize
	FontFamily          FontFamily
	LineHeight          LineHeight
	IncludeTOC          bool
	SyntaxHighlighting  bool
	ExternalLinksNewTab bool
	IncludePageNumbers  bool
	IncludeTimestamp    bool
	DarkMode            bool
	PageSize            PageSize
	Margins             Margins
}

// DefaultOptions returns the options used when the caller overrides nothing.
func DefaultOptions() Options {
	return Options{
		Theme:               ThemeGitHub,
		FontSize:            FontSizeMedium,
		FontFamily:          FontFamilySystem,
		LineHeight:          LineHeightNormal,
		SyntaxHighlighting:  true,
		ExternalLinksNewTab: true,
		PageSize:            PageSizeA4,
		Margins:             MarginsNormal,
	}
}

// Validate checks the enumerated fields. Empty values are accepted and mean
// the default. An unknown Theme is not an error: it renders as github.
func (o Options) Validate() error {
	if _, err := ParseFontSize(string(o.FontSize)); err != nil {
		return err
	}
	if _, err := ParseFontFamily(string(o.FontFamily)); err != nil {
		return err
	}
	if _, err := ParseLineHeight(string(o.LineHeight)); err != nil {
		return err
	}
	if _, err := ParsePageSize(string(o.PageSize)); err != nil {
		return err
	}
	if _, err := ParseMargins(string(o.Margins)); err != nil {
		return err
	}
	return nil
}

// withDefaults fills empty enumerated fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Theme == "" {
		o.Theme = d.Theme
	}
	if o.FontSize == "" {
		o.FontSize = d.FontSize
	}
	if o.FontFamily == "" {
		o.FontFamily = d.FontFamily
	}
	if o.LineHeight == "" {
		o.LineHeight = d.LineHeight
	}
	if o.PageSize == "" {
		o.PageSize = d.PageSize
	}
	if o.Margins == "" {
		o.Margins = d.Margins
	}
	return o
}

// Themes returns the known theme identifiers in display order.
func Themes() []Theme {
	names := pipeline.Themes()
	out := make([]Theme, len(names))
	for i, n := range names {
		out[i] = Theme(n)
	}
	return out
}

// IsKnown reports whether t names a built-in theme.
func (t Theme) IsKnown() bool {
	return pipeline.IsKnownTheme(string(t))
}

// ParseTheme normalizes s. Unknown names are returned unchanged so the caller
// can warn; rendering falls back to github.
func ParseTheme(s string) Theme {
	return Theme(strings.ToLower(strings.TrimSpace(s)))
}

// ParseFontSize parses a font size name. Empty means the default.
func ParseFontSize(s string) (FontSize, error) {
	return parseEnum("font size", s, FontSizeMedium, []FontSize{FontSizeSmall, FontSizeMedium, FontSizeLarge})
}

// ParseFontFamily parses a font family name. Empty means the default.
func ParseFontFamily(s string) (FontFamily, error) {
	return parseEnum("font family", s, FontFamilySystem, []FontFamily{FontFamilySystem, FontFamilySerif, FontFamilyMono})
}

// ParseLineHeight parses a line height name. Empty means the default.
func ParseLineHeight(s string) (LineHeight, error) {
	return parseEnum("line height", s, LineHeightNormal, []LineHeight{LineHeightCompact, LineHeightNormal, LineHeightRelaxed})
}

// ParsePageSize parses a page size name. Empty means the default.
func ParsePageSize(s string) (PageSize, error) {
	return parseEnum("page size", s, PageSizeA4, []PageSize{PageSizeA4, PageSizeLetter, PageSizeLegal})
}

// ParseMargins parses a margins name. Empty means the default.
func ParseMargins(s string) (Margins, error) {
	return parseEnum("margins", s, MarginsNormal, []Margins{MarginsNarrow, MarginsNormal, MarginsWide})
}

func parseEnum[T ~string](field, s string, def T, valid []T) (T, error) {
	v := T(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return def, nil
	}
	if slices.Contains(valid, v) {
		return v, nil
	}
	names := make([]string, len(valid))
	for i, x := range valid {
		names[i] = string(x)
	}
	return "", fmt.Errorf("%w: %s %q (valid: %s)", ErrInvalidOption, field, s, strings.Join(names, ", "))
}

// Pixels returns the CSS pixel size.
func (f FontSize) Pixels() int {
	if px, ok := fontSizePx[f]; ok {
		return px
	}
	return fontSizePx[FontSizeMedium]
}

// Stack returns the CSS font-family value.
func (f FontFamily) Stack() string {
	if s, ok := fontStacks[f]; ok {
		return s
	}
	return fontStacks[FontFamilySystem]
}

// Value returns the unitless CSS line-height.
func (l LineHeight) Value() float64 {
	if v, ok := lineHeights[l]; ok {
		return v
	}
	return lineHeights[LineHeightNormal]
}

// Dimensions returns the portrait page width and height in millimetres.
func (p PageSize) Dimensions() (width, height float64) {
	d, ok := pageDimensions[p]
	if !ok {
		d = pageDimensions[PageSizeA4]
	}
	return d[0], d[1]
}

// css returns the CSS @page size value.
func (p PageSize) css() string {
	w, h := p.Dimensions()
	return fmt.Sprintf("%smm %smm", trimFloat(w), trimFloat(h))
}

// Inches returns the margin width in inches.
func (m Margins) Inches() float64 {
	if v, ok := marginInches[m]; ok {
		return v
	}
	return marginInches[MarginsNormal]
}

// Millimetres returns the margin width in millimetres.
func (m Margins) Millimetres() float64 {
	return m.Inches() * mmPerInch
}

func (m Margins) css() string {
	return trimFloat(m.Inches()) + "in"
}

func trimFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

// styleOptions maps Options to the style composer's inputs.
func (o Options) styleOptions() pipeline.StyleOptions {
	return pipeline.StyleOptions{
		Theme:              string(o.Theme),
		DarkMode:           o.DarkMode,
		FontStack:          o.FontFamily.Stack(),
		MonoStack:          monoStack,
		FontSizePx:         o.FontSize.Pixels(),
		LineHeight:         o.LineHeight.Value(),
		ContentWidthPx:     contentWidthPx,
		PageSize:           o.PageSize.css(),
		PageMargin:         o.Margins.css(),
		SyntaxHighlighting: o.SyntaxHighlighting,
		IncludeTOC:         o.IncludeTOC,
	}
}
