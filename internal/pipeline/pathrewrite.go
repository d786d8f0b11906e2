package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteRelativePaths converts relative img[src] and a[href] values to
// absolute file:// URLs under sourceDir, so local images resolve when the
// assembled document is loaded from a temporary file.
// If sourceDir is empty, returns the HTML unchanged.
//
// Anchors, URLs with a scheme, protocol-relative URLs and absolute paths are
// left alone, as is any path that would resolve outside sourceDir.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	if err := rewriteRelativePaths(doc, sourceDir); err != nil {
		return "", err
	}
	return renderHTML(doc, isFragment)
}

// rewriteRelativePaths applies the rewrite to a parsed tree.
func rewriteRelativePaths(doc *html.Node, sourceDir string) error {
	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return err
	}

	walkElements(doc, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", absSourceDir)
		case atom.A:
			rewriteAttr(n, "href", absSourceDir)
		}
		return true
	})
	return nil
}

// rewriteAttr rewrites attribute key of n if it holds a contained relative path.
func rewriteAttr(n *html.Node, key, sourceDir string) {
	val, ok := getAttr(n, key)
	if !ok || !isRelativePath(val) {
		return
	}

	absPath := filepath.Join(sourceDir, val)
	if !isPathUnderDir(absPath, sourceDir) {
		return
	}
	setAttr(n, key, pathToFileURL(absPath))
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	switch {
	case path == "",
		strings.HasPrefix(path, "#"),
		strings.HasPrefix(path, "//"),
		filepath.IsAbs(path):
		return false
	}

	// Any scheme (http, https, file, data, mailto, ...) marks a URL.
	if u, err := url.Parse(path); err == nil && u.Scheme != "" {
		// A Windows drive letter parses as a one-letter scheme.
		return len(u.Scheme) == 1
	}
	return true
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
// Handles both Unix and Windows paths correctly.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
