package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-mdexport/internal/dateutil"
)

var fixedNow = func() time.Time { return time.Date(2026, time.March, 5, 14, 7, 9, 0, time.UTC) }

func newTestAssembler(t *testing.T, format string) *DocumentAssembler {
	t.Helper()
	a, err := NewDocumentAssembler(nil, fixedNow, format)
	if err != nil {
		t.Fatalf("NewDocumentAssembler() error = %v", err)
	}
	return a
}

func TestDocumentAssembler_Assemble(t *testing.T) {
	t.Parallel()

	assembler := newTestAssembler(t, "")

	tests := []struct {
		name         string
		parts        DocumentParts
		wantContains []string
		wantExcludes []string
	}{
		{
			name:  "minimal document",
			parts: DocumentParts{Body: "<p>Hi</p>", CSS: "body{}"},
			wantContains: []string{
				"<!DOCTYPE html>",
				"<title>Converted Document</title>",
				"<style>body{}</style>",
				"<p>Hi</p>",
				"window.mdexportReady = true",
				`var theme = "default";`,
				`<body class="theme-light">`,
			},
			wantExcludes: []string{"mermaid.min.js", `<nav class="table-of-contents">`, "document-timestamp"},
		},
		{
			name:         "title escaped",
			parts:        DocumentParts{Title: "A <b>", Body: "<p>x</p>"},
			wantContains: []string{"<title>A &lt;b&gt;</title>"},
		},
		{
			name:         "diagram library only with diagrams",
			parts:        DocumentParts{Body: `<div class="mermaid" id="diagram-1">pie</div>`, Diagrams: 1},
			wantContains: []string{`<script src="` + DiagramScriptURL + `"></script>`},
		},
		{
			name:         "dark diagrams",
			parts:        DocumentParts{Body: "<p>x</p>", Dark: true},
			wantContains: []string{`var theme = "dark";`, `<body class="theme-dark">`},
		},
		{
			name:         "toc container",
			parts:        DocumentParts{Body: "<h1>A</h1>", TOC: `<ul><li><a href="#a">A</a></li></ul>`, IncludeTOC: true},
			wantContains: []string{`<nav class="table-of-contents">`, `<ul><li><a href="#a">A</a></li></ul>`},
		},
		{
			name:         "empty toc omitted",
			parts:        DocumentParts{Body: "<p>x</p>", IncludeTOC: true},
			wantExcludes: []string{`<nav class="table-of-contents">`},
		},
		{
			name:         "toc disabled",
			parts:        DocumentParts{Body: "<h1>A</h1>", TOC: `<ul><li>A</li></ul>`},
			wantExcludes: []string{`<nav class="table-of-contents">`},
		},
		{
			name:         "timestamp footer",
			parts:        DocumentParts{Body: "<p>x</p>", IncludeTimestamp: true},
			wantContains: []string{`<footer class="document-timestamp">Generated on March 5, 2026, 14:07</footer>`},
		},
		{
			name:         "style block cannot be closed from css",
			parts:        DocumentParts{Body: "<p>x</p>", CSS: "a{}</style><script>alert(1)</script>"},
			wantContains: []string{`a{}<\/style><script>alert(1)<\/script>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := assembler.Assemble(context.Background(), tt.parts)
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("document missing %q:\n%s", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("document should not contain %q", exclude)
				}
			}
		})
	}
}

func TestDocumentAssembler_BodyOrder(t *testing.T) {
	t.Parallel()

	got, err := newTestAssembler(t, "").Assemble(context.Background(), DocumentParts{
		Body:             "<p>BODY</p>",
		TOC:              "<ul><li>TOC</li></ul>",
		IncludeTOC:       true,
		IncludeTimestamp: true,
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	toc := strings.Index(got, "TOC</li>")
	body := strings.Index(got, "BODY")
	footer := strings.Index(got, "Generated on")
	if toc < 0 || body < toc || footer < body {
		t.Errorf("order toc=%d body=%d footer=%d, want toc < body < footer", toc, body, footer)
	}
}

func TestDocumentAssembler_TimestampFormat(t *testing.T) {
	t.Parallel()

	got, err := newTestAssembler(t, "iso").Assemble(context.Background(), DocumentParts{Body: "<p>x</p>", IncludeTimestamp: true})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !strings.Contains(got, "Generated on 2026-03-05</footer>") {
		t.Errorf("timestamp not formatted with preset:\n%s", got)
	}

	if _, err := NewDocumentAssembler(nil, fixedNow, "[broken"); !errors.Is(err, dateutil.ErrInvalidDateFormat) {
		t.Errorf("NewDocumentAssembler(bad format) error = %v, want ErrInvalidDateFormat", err)
	}
}

func TestDocumentAssembler_TemplateErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewDocumentAssembler(failingLoader{}, fixedNow, ""); err == nil {
		t.Error("NewDocumentAssembler() should fail when the template cannot be loaded")
	}
	if _, err := NewDocumentAssembler(brokenTemplateLoader{}, fixedNow, ""); !errors.Is(err, ErrTemplateParse) {
		t.Errorf("NewDocumentAssembler() error = %v, want ErrTemplateParse", err)
	}
}

// brokenTemplateLoader serves a template that does not parse.
type brokenTemplateLoader struct{ failingLoader }

func (brokenTemplateLoader) LoadTemplate(string) (string, error) { return "{{.Title", nil }

func TestDocumentAssembler_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestAssembler(t, "").Assemble(ctx, DocumentParts{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Assemble() error = %v, want context.Canceled", err)
	}
}
