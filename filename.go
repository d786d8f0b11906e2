package mdexport

import (
	"strings"

	"github.com/alnah/go-mdexport/internal/fileutil"
)

// DefaultFilename is the base name used for untitled documents.
const DefaultFilename = "converted"

// OutputFilename returns "title.ext" for a document. A blank title gives
// "converted.ext"; path separators and other reserved characters become "-".
func OutputFilename(title, ext string) string {
	base := fileutil.SanitizeFilename(title)
	if strings.Trim(base, ".-") == "" {
		base = DefaultFilename
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}
