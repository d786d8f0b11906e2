package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HTMLConverter abstracts Markdown to HTML fragment conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string, highlight bool) (string, error)
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
// It holds two configured instances so highlighting can be toggled per call.
type GoldmarkConverter struct {
	plain       goldmark.Markdown
	highlighted goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and
// optional syntax highlighting.
func NewGoldmarkConverter() *GoldmarkConverter {
	return &GoldmarkConverter{
		plain:       newGoldmark(),
		highlighted: newGoldmark(newHighlighting()),
	}
}

// newGoldmark builds a goldmark instance with the shared GFM setup.
func newGoldmark(extra ...goldmark.Extender) goldmark.Markdown {
	extensions := []goldmark.Extender{
		extension.GFM,      // Tables, strikethrough, autolinks, task lists
		extension.Footnote, // [^1] footnotes
	}
	extensions = append(extensions, extra...)

	return goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(), // Treat newlines as <br>
			// WithUnsafe() is not used: raw HTML in Markdown is escaped.
		),
	)
}

// newHighlighting configures chroma with CSS classes. The palette itself is
// emitted by the style composer.
func newHighlighting() goldmark.Extender {
	return highlighting.NewHighlighting(
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(true),
		),
		highlighting.WithWrapperRenderer(wrapCodeBlock),
	)
}

// wrapCodeBlock keeps the fence language visible in the output. Chroma drops
// it, so highlighted blocks get a wrapper carrying data-lang. Blocks chroma
// cannot highlight fall back to <pre><code class="language-X">.
func wrapCodeBlock(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	lang, hasLang := c.Language()

	if c.Highlighted() {
		if !entering {
			_, _ = w.WriteString("</div>\n")
			return
		}
		_, _ = w.WriteString(`<div class="highlight"`)
		if hasLang {
			_, _ = w.WriteString(` data-lang="` + html.EscapeString(string(lang)) + `"`)
		}
		_ = w.WriteByte('>')
		return
	}

	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return
	}
	_, _ = w.WriteString("<pre><code")
	if hasLang {
		_, _ = w.WriteString(` class="language-` + html.EscapeString(string(lang)) + `"`)
	}
	_ = w.WriteByte('>')
}

// ToHTML converts Markdown content to an HTML fragment (no document shell).
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string, highlight bool) (string, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	md := c.plain
	if highlight {
		md = c.highlighted
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Compile-time interface check.
var _ HTMLConverter = (*GoldmarkConverter)(nil)
