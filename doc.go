// Package mdexport converts Markdown documents to styled standalone HTML and
// to paged PDF.
//
// # Quick Start
//
// Create a converter, convert markdown, and close when done:
//
//	conv, err := mdexport.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	opts := mdexport.DefaultOptions()
//	opts.Theme = mdexport.ThemeAcademic
//	opts.IncludeTOC = true
//
//	result, err := conv.Convert(ctx, mdexport.Input{
//	    Markdown: "# Hello\n\nWorld",
//	    Title:    "Hello",
//	    Options:  opts,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(mdexport.OutputFilename("Hello", "pdf"), result.PDF, 0o644)
//
// Set Input.Format to FormatHTML to skip the browser entirely.
//
// # Conversion Pipeline
//
//  1. Markdown preprocessing (BOM, line endings, blank-line runs)
//  2. Markdown to HTML via Goldmark (GFM, footnotes, chroma highlighting)
//  3. Post-processing: heading ids, external link targets, diagram
//     containers, relative paths resolved against Input.SourceDir
//  4. Table of contents from the heading outline
//  5. Stylesheet composition: base typography, theme palette, code and
//     diagram palettes, print rules
//  6. Assembly into a standalone HTML5 document
//  7. PDF export: the document is laid out at 800 CSS px in headless Chrome,
//     captured at twice the resolution, cut into page strips and written with
//     gofpdf
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to manage multiple browsers:
//
//	pool := mdexport.NewConverterPool(mdexport.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package mdexport
