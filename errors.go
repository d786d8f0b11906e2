package mdexport

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrInvalidOption  = errors.New("invalid conversion option")
	ErrInvalidFormat  = errors.New("invalid output format")
	ErrHTMLConversion = errors.New("HTML conversion failed")

	// Browser and rasterization errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrRasterize      = errors.New("document rasterization failed")

	// PDF assembly errors.
	ErrInvalidLayout = errors.New("invalid page layout")
	ErrPDFAssembly   = errors.New("PDF assembly failed")

	// Asset loading errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
