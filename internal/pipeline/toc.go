package pipeline

import (
	"html"
	"strings"
)

// ExtractHeadings parses an HTML fragment and returns its headings in
// document order with stripped text and slug IDs. Unparseable input yields nil.
func ExtractHeadings(fragment string) []Heading {
	doc, _, err := parseHTML(fragment)
	if err != nil {
		return nil
	}
	return assignHeadingIDs(doc)
}

// GenerateTOC renders headings as a nested <ul> tree. It returns "" when
// there are no headings.
//
// Nesting follows the level difference between consecutive headings: a
// deeper heading opens one list per level skipped, a shallower one closes
// back. Nested lists sit inside the preceding <li>. The first heading's
// level is the floor: a later, shallower heading closes back to the top list.
func GenerateTOC(headings []Heading) string {
	if len(headings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<ul>")

	base := headings[0].Level
	current := base
	// One entry per list opened below the top list; true when that list was
	// opened inside an <li> and therefore closes it as well.
	var open []bool

	for i, h := range headings {
		level := max(h.Level, base)

		if i > 0 {
			switch {
			case level > current:
				for d := 0; d < level-current; d++ {
					b.WriteString("<ul>")
					open = append(open, d == 0)
				}
			case level < current:
				b.WriteString("</li>")
				for range current - level {
					b.WriteString(closeList(&open))
				}
			default:
				b.WriteString("</li>")
			}
		}
		current = level

		b.WriteString(`<li><a href="#`)
		b.WriteString(html.EscapeString(h.ID))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(h.Text))
		b.WriteString("</a>")
	}

	b.WriteString("</li>")
	for len(open) > 0 {
		b.WriteString(closeList(&open))
	}
	b.WriteString("</ul>")
	return b.String()
}

// closeList pops the innermost nested list and returns its closing markup.
func closeList(open *[]bool) string {
	last := (*open)[len(*open)-1]
	*open = (*open)[:len(*open)-1]
	if last {
		return "</ul></li>"
	}
	return "</ul>"
}
