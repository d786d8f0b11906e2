// Package assets provides theme stylesheets and the HTML document template.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in themes)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// EmbeddedLoader provides the built-in themes (github, medium, academic,
// minimal, vscode-dark, tokyo-night and the "-dark" variants of the light
// themes) and the document shell template.
//
// AssetResolver is the loader used by the converter when an asset path is
// configured. It tries the custom directory first and falls back to the
// embedded assets when a file is missing, so a user can override one theme
// without copying the others.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # theme palette (e.g., medium-dark.css)
//	└── templates/
//	    └── document.html        # html/template document shell
//
// Theme stylesheets carry colours and spacing only. Font family, size and
// line height are composed separately and must not be declared by themes.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
