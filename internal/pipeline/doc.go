// Package pipeline implements the Markdown-to-HTML document pipeline.
//
// Stages, in the order the converter runs them:
//   - Markdown preprocessing (line endings, BOM, blank line runs)
//   - Markdown to HTML fragment conversion via Goldmark
//   - Post-processing over the parsed fragment tree: heading IDs, external
//     link targets, diagram block rewriting, relative path rewriting
//   - Table of contents generation from the collected headings
//   - Style composition (typography, theme palette, code and diagram
//     palettes, print rules)
//   - Document assembly into a standalone HTML5 page
//
// PDF generation is handled separately by the root mdexport package, which
// rasterizes the assembled document with headless Chrome and paginates the
// bitmap. The pipeline never touches the browser.
package pipeline
