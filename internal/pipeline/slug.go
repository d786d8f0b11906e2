package pipeline

import "strings"

// Heading is one h1..h6 element of a document.
type Heading struct {
	Level int    // 1-6
	Text  string // stripped text content
	ID    string // anchor ID, Slugify(Text)
}

// Slugify derives an anchor ID from heading text: lowercase, every run of
// characters other than ASCII letters and digits becomes a single "-",
// leading and trailing "-" trimmed. Non-ASCII text may slug to "".
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingDash := false
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
