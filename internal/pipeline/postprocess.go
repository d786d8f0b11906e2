package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-mdexport/internal/fileutil"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrPostProcess indicates the HTML fragment could not be parsed or rendered.
var ErrPostProcess = errors.New("HTML post-processing failed")

// PostProcessOptions selects the optional post-processing passes.
type PostProcessOptions struct {
	ExternalLinksNewTab bool
	SourceDir           string // empty disables relative path rewriting
}

// PostProcessResult holds the rewritten fragment and what was found in it.
type PostProcessResult struct {
	HTML     string
	Headings []Heading
	Diagrams int
}

// PostProcessor defines the contract for HTML fragment post-processing.
type PostProcessor interface {
	Process(ctx context.Context, fragment string, opts PostProcessOptions) (*PostProcessResult, error)
}

// TreePostProcessor rewrites a fragment through a parsed x/net/html tree.
// Running it on its own output yields the same output.
type TreePostProcessor struct{}

// NewTreePostProcessor creates a TreePostProcessor.
func NewTreePostProcessor() *TreePostProcessor {
	return &TreePostProcessor{}
}

// Process assigns heading IDs, marks external links, rewrites diagram blocks
// and, when SourceDir is set, resolves relative paths. A fragment without
// headings, links or diagrams is returned re-serialised and is not an error.
func (p *TreePostProcessor) Process(ctx context.Context, fragment string, opts PostProcessOptions) (*PostProcessResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, isFragment, err := parseHTML(fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPostProcess, err)
	}

	headings := assignHeadingIDs(doc)
	if opts.ExternalLinksNewTab {
		markExternalLinks(doc)
	}
	diagrams := rewriteDiagrams(doc)
	if opts.SourceDir != "" {
		if err := rewriteRelativePaths(doc, opts.SourceDir); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPostProcess, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := renderHTML(doc, isFragment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPostProcess, err)
	}

	return &PostProcessResult{HTML: out, Headings: headings, Diagrams: diagrams}, nil
}

// headingLevel returns 1-6 for h1..h6 elements, 0 otherwise.
func headingLevel(n *html.Node) int {
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// assignHeadingIDs sets every heading's id to the slug of its text,
// overwriting any previous id, and returns the headings in document order.
func assignHeadingIDs(doc *html.Node) []Heading {
	var headings []Heading
	walkElements(doc, func(n *html.Node) bool {
		level := headingLevel(n)
		if level == 0 {
			return true
		}

		text := strings.TrimSpace(textContent(n))
		id := Slugify(text)
		if id == "" {
			removeAttr(n, "id")
		} else {
			setAttr(n, "id", id)
		}
		headings = append(headings, Heading{Level: level, Text: text, ID: id})
		return false
	})
	return headings
}

// markExternalLinks opens http(s) links in a new browsing context.
func markExternalLinks(doc *html.Node) {
	walkElements(doc, func(n *html.Node) bool {
		if n.DataAtom != atom.A {
			return true
		}
		if href, ok := getAttr(n, "href"); ok && fileutil.IsURL(href) {
			setAttr(n, "target", "_blank")
			setAttr(n, "rel", "noopener noreferrer")
		}
		return true
	})
}

// Compile-time interface check.
var _ PostProcessor = (*TreePostProcessor)(nil)
