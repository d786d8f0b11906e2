package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/alnah/go-mdexport/internal/assets"
	"github.com/alnah/go-mdexport/internal/dateutil"
)

// Sentinel errors for document assembly.
var (
	ErrTemplateParse  = errors.New("document template parsing failed")
	ErrTemplateRender = errors.New("document template rendering failed")
)

// DefaultTitle is used when a document has no title.
const DefaultTitle = "Converted Document"

// DiagramScriptURL is the diagram library loaded by documents with diagrams.
const DiagramScriptURL = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"

// DocumentParts are the inputs of a standalone HTML document.
type DocumentParts struct {
	Title            string
	Body             string // post-processed fragment
	TOC              string // GenerateTOC output
	IncludeTOC       bool
	CSS              string
	Diagrams         int
	Dark             bool
	IncludeTimestamp bool
}

// documentData is what templates/document.html renders.
type documentData struct {
	Title         string
	CSS           template.CSS
	HasDiagrams   bool
	DiagramScript string
	DiagramTheme  string
	BodyClass     string
	TOC           template.HTML
	Body          template.HTML
	Timestamp     string
}

// Assembler defines the contract for document assembly.
type Assembler interface {
	Assemble(ctx context.Context, parts DocumentParts) (string, error)
}

// DocumentAssembler renders DocumentParts through the document template.
type DocumentAssembler struct {
	tmpl       *template.Template
	now        func() time.Time
	dateFormat string
}

// NewDocumentAssembler parses the document template from loader (nil uses
// the embedded assets). now supplies the footer timestamp; dateFormat uses
// dateutil tokens or presets, empty for the default.
func NewDocumentAssembler(loader assets.AssetLoader, now func() time.Time, dateFormat string) (*DocumentAssembler, error) {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	if now == nil {
		now = time.Now
	}
	if err := dateutil.Validate(dateFormat); err != nil {
		return nil, err
	}

	content, err := loader.LoadTemplate(assets.DocumentTemplateName)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(assets.DocumentTemplateName).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	return &DocumentAssembler{tmpl: tmpl, now: now, dateFormat: dateFormat}, nil
}

// Assemble renders a complete HTML5 document. Body order: table of contents
// (only when requested and non-empty), content, timestamp footer.
func (a *DocumentAssembler) Assemble(ctx context.Context, parts DocumentParts) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data := documentData{
		Title:         strings.TrimSpace(parts.Title),
		CSS:           template.CSS(sanitizeCSS(parts.CSS)), // #nosec G203 -- composed from trusted assets
		HasDiagrams:   parts.Diagrams > 0,
		DiagramScript: DiagramScriptURL,
		DiagramTheme:  "default",
		BodyClass:     "theme-light",
		Body:          template.HTML(parts.Body), // #nosec G203 -- goldmark output, raw HTML escaped
	}
	if data.Title == "" {
		data.Title = DefaultTitle
	}
	if parts.Dark {
		data.DiagramTheme = "dark"
		data.BodyClass = "theme-dark"
	}
	if parts.IncludeTOC && parts.TOC != "" {
		data.TOC = template.HTML(parts.TOC) // #nosec G203 -- built with escaped text
	}
	if parts.IncludeTimestamp {
		stamp, err := dateutil.Format(a.dateFormat, a.now())
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
		}
		data.Timestamp = stamp
	}

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// Compile-time interface check.
var _ Assembler = (*DocumentAssembler)(nil)
