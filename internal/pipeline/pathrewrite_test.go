package pipeline

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRewriteRelativePaths(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("expectations use unix paths")
	}

	tests := []struct {
		name      string
		html      string
		sourceDir string
		want      string
	}{
		{name: "relative image", html: `<img src="images/logo.png"/>`, sourceDir: "/docs", want: `<img src="file:///docs/images/logo.png"/>`},
		{name: "dot slash image", html: `<img src="./logo.png"/>`, sourceDir: "/docs", want: `<img src="file:///docs/logo.png"/>`},
		{name: "relative link", html: `<a href="other.md">o</a>`, sourceDir: "/docs", want: `<a href="file:///docs/other.md">o</a>`},
		{name: "spaces encoded", html: `<img src="my image.png"/>`, sourceDir: "/docs", want: `<img src="file:///docs/my%20image.png"/>`},
		{name: "empty source dir", html: `<img src="a.png">`, sourceDir: "", want: `<img src="a.png">`},
		{name: "absolute path kept", html: `<img src="/abs/a.png"/>`, sourceDir: "/docs", want: `<img src="/abs/a.png"/>`},
		{name: "url kept", html: `<img src="https://x.test/a.png"/>`, sourceDir: "/docs", want: `<img src="https://x.test/a.png"/>`},
		{name: "data uri kept", html: `<img src="data:image/png;base64,AA"/>`, sourceDir: "/docs", want: `<img src="data:image/png;base64,AA"/>`},
		{name: "mailto kept", html: `<a href="mailto:a@b.c">m</a>`, sourceDir: "/docs", want: `<a href="mailto:a@b.c">m</a>`},
		{name: "anchor kept", html: `<a href="#top">t</a>`, sourceDir: "/docs", want: `<a href="#top">t</a>`},
		{name: "protocol relative kept", html: `<img src="//cdn.test/a.png"/>`, sourceDir: "/docs", want: `<img src="//cdn.test/a.png"/>`},
		{name: "traversal kept", html: `<img src="../../etc/passwd"/>`, sourceDir: "/docs", want: `<img src="../../etc/passwd"/>`},
		{name: "script untouched", html: `<script src="a.js"></script>`, sourceDir: "/docs", want: `<script src="a.js"></script>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteRelativePaths(tt.html, tt.sourceDir)
			if err != nil {
				t.Fatalf("RewriteRelativePaths() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RewriteRelativePaths() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteRelativePaths_FullDocument(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("expectations use unix paths")
	}

	got, err := RewriteRelativePaths(`<!DOCTYPE html><html><head></head><body><img src="a.png"/></body></html>`, "/docs")
	if err != nil {
		t.Fatalf("RewriteRelativePaths() error = %v", err)
	}
	if !strings.HasPrefix(got, "<!DOCTYPE html>") || !strings.Contains(got, `src="file:///docs/a.png"`) {
		t.Errorf("RewriteRelativePaths() = %q", got)
	}
}

func TestIsRelativePath(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"img.png":            true,
		"./img.png":          true,
		"sub/dir/img.png":    true,
		"":                   false,
		"#anchor":            false,
		"//host/img.png":     false,
		"http://x.test":      false,
		"file:///tmp/a.png":  false,
		"data:text/plain,hi": false,
	}

	for path, want := range tests {
		if got := isRelativePath(path); got != want {
			t.Errorf("isRelativePath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIsPathUnderDir(t *testing.T) {
	t.Parallel()

	dir := filepath.FromSlash("/docs")
	tests := []struct {
		path string
		want bool
	}{
		{"/docs/a.png", true},
		{"/docs/sub/a.png", true},
		{"/docs", true},
		{"/other/a.png", false},
		{"/docs-evil/a.png", false},
	}

	for _, tt := range tests {
		if got := isPathUnderDir(filepath.FromSlash(tt.path), dir); got != tt.want {
			t.Errorf("isPathUnderDir(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
