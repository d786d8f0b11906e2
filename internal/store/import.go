package store

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/alnah/go-mdexport/internal/fileutil"
)

// MaxImportSize caps a single imported file at the store quota.
const MaxImportSize = DefaultLimit

// ImportFile reads a markdown file from disk into an unsaved uploaded File.
// The name must end in .md or map to a markdown content type.
func ImportFile(path string) (File, error) {
	name := filepath.Base(path)
	contentType, _, _ := mime.ParseMediaType(mime.TypeByExtension(filepath.Ext(name)))
	if !fileutil.IsMarkdownFile(name, contentType) {
		return File{}, fmt.Errorf("%w: %s", ErrNotMarkdown, name)
	}

	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%w: %s is a directory", ErrNotMarkdown, path)
	}
	if info.Size() > MaxImportSize {
		return File{}, fmt.Errorf("importing %s: %w", name, &QuotaError{Used: info.Size(), Limit: MaxImportSize})
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return File{
		Title:        fileutil.TitleFromName(name),
		Content:      string(data),
		Type:         TypeUploaded,
		OriginalName: name,
		Size:         int64(len(data)),
	}, nil
}
