package pipeline

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Diagram markup produced by the post-processor and consumed by the
// document bootstrap script.
const (
	DiagramLanguage       = "mermaid"
	diagramClass          = "mermaid"
	diagramContainerClass = "mermaid-container"
	diagramIDPrefix       = "diagram-"
)

// diagramMatcher recognises one shape the Markdown renderer may emit for a
// fenced diagram block. It returns the element to replace, or nil.
type diagramMatcher func(n *html.Node) *html.Node

// diagramMatchers are tried in order at each element; the first match wins.
var diagramMatchers = []diagramMatcher{
	matchPreCodeClass,
	matchPreClass,
	matchPreLangAttr,
	matchHighlightWrapper,
}

// matchPreCodeClass: <pre><code class="language-mermaid">.
func matchPreCodeClass(n *html.Node) *html.Node {
	if !isElement(n, atom.Pre) {
		return nil
	}
	code := firstElementChild(n)
	if isElement(code, atom.Code) && hasClass(code, "language-"+DiagramLanguage, "lang-"+DiagramLanguage) {
		return n
	}
	return nil
}

// matchPreClass: <pre class="mermaid">.
func matchPreClass(n *html.Node) *html.Node {
	if isElement(n, atom.Pre) && hasClass(n, DiagramLanguage, "language-"+DiagramLanguage) {
		return n
	}
	return nil
}

// matchPreLangAttr: <pre lang="mermaid"> or <pre data-lang="mermaid">.
func matchPreLangAttr(n *html.Node) *html.Node {
	if !isElement(n, atom.Pre) {
		return nil
	}
	for _, key := range []string{"lang", "data-lang"} {
		if v, ok := getAttr(n, key); ok && strings.EqualFold(v, DiagramLanguage) {
			return n
		}
	}
	return nil
}

// matchHighlightWrapper: any element carrying data-lang="mermaid", as
// written around chroma output.
func matchHighlightWrapper(n *html.Node) *html.Node {
	if v, ok := getAttr(n, "data-lang"); ok && strings.EqualFold(v, DiagramLanguage) {
		return n
	}
	return nil
}

// rewriteDiagrams replaces every matched diagram block with a container
// holding the raw source, numbering new blocks after those already present.
// Returns the total number of diagram blocks in the tree.
func rewriteDiagrams(doc *html.Node) int {
	existing := 0
	var matches []*html.Node

	walkElements(doc, func(n *html.Node) bool {
		if hasClass(n, diagramContainerClass) {
			walkElements(n, func(inner *html.Node) bool {
				if hasClass(inner, diagramClass) {
					existing++
					return false
				}
				return true
			})
			return false
		}
		for _, match := range diagramMatchers {
			if target := match(n); target != nil {
				matches = append(matches, target)
				return false
			}
		}
		return true
	})

	for i, target := range matches {
		replaceWithDiagram(target, existing+i+1)
	}
	return existing + len(matches)
}

// replaceWithDiagram swaps target for
// <div class="mermaid-container"><div class="mermaid" id="diagram-N">SRC</div></div>.
// SRC is kept as a text node: the browser's textContent then equals the source.
func replaceWithDiagram(target *html.Node, number int) {
	source := strings.TrimSuffix(textContent(target), "\n")

	diagram := newElement(atom.Div, "class", diagramClass, "id", diagramIDPrefix+strconv.Itoa(number))
	diagram.AppendChild(&html.Node{Type: html.TextNode, Data: source})

	container := newElement(atom.Div, "class", diagramContainerClass)
	container.AppendChild(diagram)

	target.Parent.InsertBefore(container, target)
	target.Parent.RemoveChild(target)
}
