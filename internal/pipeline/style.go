package pipeline

import (
	"fmt"
	"slices"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-mdexport/internal/assets"
)

// Theme identifiers.
const (
	ThemeGitHub     = "github"
	ThemeVSCodeDark = "vscode-dark"
	ThemeMedium     = "medium"
	ThemeAcademic   = "academic"
	ThemeMinimal    = "minimal"
	ThemeTokyoNight = "tokyo-night"

	// DefaultTheme is used for unknown theme names.
	DefaultTheme = ThemeGitHub
)

// knownThemes in display order.
var knownThemes = []string{
	ThemeGitHub,
	ThemeVSCodeDark,
	ThemeMedium,
	ThemeAcademic,
	ThemeMinimal,
	ThemeTokyoNight,
}

// darkOnlyThemes have no light variant: DarkMode is ignored for them.
var darkOnlyThemes = map[string]bool{
	ThemeVSCodeDark: true,
	ThemeTokyoNight: true,
}

// Chroma palettes for code blocks.
const (
	codeStyleLight = "github"
	codeStyleDark  = "monokai"
)

// Print defaults.
const (
	DefaultOrphans = 2
	DefaultWidows  = 2
)

// Themes returns the known theme identifiers.
func Themes() []string {
	return slices.Clone(knownThemes)
}

// IsKnownTheme reports whether name is a known theme identifier.
func IsKnownTheme(name string) bool {
	return slices.Contains(knownThemes, name)
}

// ResolveTheme maps unknown names to DefaultTheme.
func ResolveTheme(name string) string {
	if IsKnownTheme(name) {
		return name
	}
	return DefaultTheme
}

// IsDark reports whether theme renders dark with the given DarkMode flag.
func IsDark(theme string, darkMode bool) bool {
	return darkOnlyThemes[ResolveTheme(theme)] || darkMode
}

// StyleOptions carries resolved presentation values. Enum-to-CSS mapping is
// done by the caller.
type StyleOptions struct {
	Theme              string
	DarkMode           bool
	FontStack          string  // CSS font-family value
	MonoStack          string  // CSS font-family value for code
	FontSizePx         int     // body font size
	LineHeight         float64 // unitless
	ContentWidthPx     int     // max width of the document body
	PageSize           string  // CSS @page size, e.g. "210mm 297mm"
	PageMargin         string  // CSS @page margin, e.g. "1in"
	SyntaxHighlighting bool
	IncludeTOC         bool
}

// StyleComposer builds the document stylesheet from layered parts.
type StyleComposer struct {
	loader assets.AssetLoader
}

// NewStyleComposer creates a StyleComposer that reads theme palettes from
// loader. A nil loader uses the embedded assets.
func NewStyleComposer(loader assets.AssetLoader) *StyleComposer {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	return &StyleComposer{loader: loader}
}

// Compose returns the full stylesheet. Layers, in order: base typography,
// theme palette, code palette, diagram palette, print rules, TOC styling.
// The result depends only on opts and the loader's assets.
func (s *StyleComposer) Compose(opts StyleOptions) string {
	theme := ResolveTheme(opts.Theme)
	dark := IsDark(theme, opts.DarkMode)

	var buf strings.Builder
	buf.WriteString(buildBaseCSS(opts))
	buf.WriteString(s.themeCSS(theme, dark))
	if opts.SyntaxHighlighting {
		buf.WriteString(buildCodeCSS(dark))
	}
	buf.WriteString(buildDiagramCSS(dark))
	buf.WriteString(buildPrintCSS(opts))
	if opts.IncludeTOC {
		buf.WriteString(tocCSS)
	}
	return buf.String()
}

// themeCSS loads the palette stylesheet, falling back to the embedded
// github palette when the loader cannot provide it.
func (s *StyleComposer) themeCSS(theme string, dark bool) string {
	name := theme
	if dark && !darkOnlyThemes[theme] {
		name += "-dark"
	}

	css, err := s.loader.LoadStyle(name)
	if err != nil {
		fallback := DefaultTheme
		if dark {
			fallback += "-dark"
		}
		css, _ = assets.LoadStyle(fallback)
	}
	return "\n/* Theme: " + name + " */\n" + css
}

// buildBaseCSS generates the typography layer.
func buildBaseCSS(opts StyleOptions) string {
	return fmt.Sprintf(`/* Base */
*, *::before, *::after {
  box-sizing: border-box;
}
html {
  -webkit-print-color-adjust: exact;
  print-color-adjust: exact;
}
body {
  font-family: %s;
  font-size: %dpx;
  line-height: %s;
  margin: 0;
}
.markdown-body {
  max-width: %dpx;
  margin: 0 auto;
  padding: 32px;
}
code, kbd, pre, samp {
  font-family: %s;
  font-size: 0.875em;
}
pre code {
  font-size: inherit;
}
`, opts.FontStack, opts.FontSizePx, formatFloat(opts.LineHeight), opts.ContentWidthPx, opts.MonoStack)
}

// buildCodeCSS emits chroma's class palette.
func buildCodeCSS(dark bool) string {
	name := codeStyleLight
	if dark {
		name = codeStyleDark
	}

	var buf strings.Builder
	buf.WriteString("\n/* Code highlighting: " + name + " */\n")
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return ""
	}
	buf.WriteString(".highlight pre.chroma { margin: 0 0 1em; padding: 1em; overflow: auto; }\n")
	return buf.String()
}

// diagramPalette is one set of mermaid node colours.
type diagramPalette struct {
	nodeFill, nodeStroke, text, line, errorColor string
}

var (
	diagramLight = diagramPalette{"#f6f8fa", "#8c959f", "#1f2328", "#57606a", "#d1242f"}
	diagramDark  = diagramPalette{"#21262d", "#6e7681", "#e6edf3", "#8b949e", "#f85149"}
)

// buildDiagramCSS generates the diagram palette and container rules.
func buildDiagramCSS(dark bool) string {
	p := diagramLight
	if dark {
		p = diagramDark
	}

	return fmt.Sprintf(`
/* Diagrams */
:root {
  --diagram-node-fill: %s;
  --diagram-node-stroke: %s;
  --diagram-text: %s;
  --diagram-line: %s;
  --diagram-error: %s;
}
.mermaid-container {
  margin: 1.5em 0;
  text-align: center;
}
.mermaid-container svg {
  max-width: 100%%;
  height: auto;
}
.mermaid .node rect, .mermaid .node circle, .mermaid .node polygon {
  fill: var(--diagram-node-fill) !important;
  stroke: var(--diagram-node-stroke) !important;
}
.mermaid .nodeLabel, .mermaid .edgeLabel {
  color: var(--diagram-text) !important;
}
.mermaid .flowchart-link, .mermaid .edgePath .path {
  stroke: var(--diagram-line) !important;
}
.mermaid-error {
  border: 1px solid var(--diagram-error);
  border-radius: 6px;
  color: var(--diagram-error);
  padding: 1em;
  text-align: left;
}
.mermaid-error pre {
  white-space: pre-wrap;
}
`, p.nodeFill, p.nodeStroke, p.text, p.line, p.errorColor)
}

// buildPrintCSS generates @page geometry and page break control.
// Headings stay with the following block; blocks that read badly when split
// avoid breaking inside.
func buildPrintCSS(opts StyleOptions) string {
	var buf strings.Builder

	if opts.PageSize != "" || opts.PageMargin != "" {
		buf.WriteString("\n/* Print: page geometry */\n@page {\n")
		if opts.PageSize != "" {
			buf.WriteString("  size: " + opts.PageSize + ";\n")
		}
		if opts.PageMargin != "" {
			buf.WriteString("  margin: " + opts.PageMargin + ";\n")
		}
		buf.WriteString("}\n")
	}

	fmt.Fprintf(&buf, `
/* Print: page breaks */
h1, h2, h3, h4, h5, h6 {
  break-after: avoid;
  page-break-after: avoid;
  break-inside: avoid;
  page-break-inside: avoid;
}
p, pre, table, figure, blockquote, .highlight, .mermaid-container {
  break-inside: avoid;
  page-break-inside: avoid;
}
p, li, dd, dt, blockquote {
  orphans: %d;
  widows: %d;
}
`, DefaultOrphans, DefaultWidows)

	return buf.String()
}

// tocCSS styles the table of contents container.
const tocCSS = `
/* Table of contents */
.table-of-contents {
  border: 1px solid var(--border, #d1d9e0);
  border-radius: 6px;
  margin: 0 0 2em;
  padding: 1em 1.5em;
}
.table-of-contents .toc-title {
  border: 0;
  margin: 0 0 0.5em;
}
.table-of-contents ul {
  list-style: none;
  margin: 0;
  padding-left: 1.2em;
}
.table-of-contents > ul {
  padding-left: 0;
}
.table-of-contents a {
  text-decoration: none;
}
`

// formatFloat renders a CSS number without trailing zeros.
func formatFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
