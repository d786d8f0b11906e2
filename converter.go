package mdexport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-mdexport/internal/assets"
	"github.com/alnah/go-mdexport/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.PostProcessor        = (*pipeline.TreePostProcessor)(nil)
	_ pipeline.Assembler            = (*pipeline.DocumentAssembler)(nil)
)

// Converter orchestrates the markdown-to-HTML-and-PDF pipeline.
// Create with NewConverter, use Convert for conversion, and Close when done.
type Converter struct {
	cfg           converterConfig
	assetLoader   assets.AssetLoader
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	postProcessor pipeline.PostProcessor
	styles        *pipeline.StyleComposer
	assembler     pipeline.Assembler
	rasterizer    Rasterizer
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithAssetPath).
// Returns error if the asset path, timestamp format or document template is invalid.
// The browser is launched lazily on the first PDF conversion.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:       defaultTimeout,
			viewportWidth: DefaultViewportWidth,
			now:           time.Now,
		},
		assetLoader:   assets.NewEmbeddedLoader(),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		postProcessor: pipeline.NewTreePostProcessor(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}

	if err := validateTimestampFormat(c.cfg.timestampFormat); err != nil {
		return nil, err
	}

	c.styles = pipeline.NewStyleComposer(c.assetLoader)

	assembler, err := pipeline.NewDocumentAssembler(c.assetLoader, c.cfg.now, c.cfg.timestampFormat)
	if err != nil {
		return nil, fmt.Errorf("initializing document assembler: %w", err)
	}
	c.assembler = assembler

	if c.rasterizer == nil {
		c.rasterizer = newRodRasterizer()
	}

	return c, nil
}

// Convert runs the full pipeline. The context bounds the whole conversion
// together with the converter timeout.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	opts, err := c.validateInput(input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	// Preprocess and parse
	md := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fragment, err := c.htmlConverter.ToHTML(ctx, md, opts.SyntaxHighlighting)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	// Heading ids, link targets, diagram containers, local paths
	processed, err := c.postProcessor.Process(ctx, fragment, pipeline.PostProcessOptions{
		ExternalLinksNewTab: opts.ExternalLinksNewTab,
		SourceDir:           input.SourceDir,
	})
	if err != nil {
		return nil, fmt.Errorf("post-processing HTML: %w", err)
	}

	var toc string
	if opts.IncludeTOC {
		toc = pipeline.GenerateTOC(processed.Headings)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	css := c.styles.Compose(opts.styleOptions())

	doc, err := c.assembler.Assemble(ctx, pipeline.DocumentParts{
		Title:            input.Title,
		Body:             processed.HTML,
		TOC:              toc,
		IncludeTOC:       opts.IncludeTOC,
		CSS:              css,
		Diagrams:         processed.Diagrams,
		Dark:             pipeline.IsDark(string(opts.Theme), opts.DarkMode),
		IncludeTimestamp: opts.IncludeTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("assembling document: %w", err)
	}

	res := &ConvertResult{
		Headings: toPublicHeadings(processed.Headings),
		Diagrams: processed.Diagrams,
	}
	if input.Format.WantsHTML() {
		res.HTML = []byte(doc)
	}
	if !input.Format.WantsPDF() {
		return res, nil
	}

	pdf, pages, err := c.exportPDF(ctx, doc, input.Title, opts)
	if err != nil {
		return nil, err
	}
	res.PDF = pdf
	res.Pages = pages
	return res, nil
}

// exportPDF rasterizes the assembled document and pages it into a PDF.
func (c *Converter) exportPDF(ctx context.Context, doc, title string, opts Options) ([]byte, int, error) {
	img, err := c.rasterizer.Rasterize(ctx, doc, RasterRequest{
		ViewportWidth: c.cfg.viewportWidth,
		Supersample:   rasterSupersample,
	})
	if err != nil {
		if errors.Is(err, ErrRasterize) || errors.Is(err, ErrBrowserConnect) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	if title == "" {
		title = pipeline.DefaultTitle
	}
	return assemblePDF(img, pdfRequest{
		PageSize:    opts.PageSize,
		Margins:     opts.Margins,
		Supersample: rasterSupersample,
		PageNumbers: opts.IncludePageNumbers,
		Title:       title,
		Created:     c.cfg.now(),
	})
}

// Close releases browser resources.
func (c *Converter) Close() error {
	if c.rasterizer != nil {
		return c.rasterizer.Close()
	}
	return nil
}

// validateInput checks the input and returns options with defaults applied.
func (c *Converter) validateInput(input Input) (Options, error) {
	if input.Markdown == "" {
		return Options{}, ErrEmptyMarkdown
	}
	if _, err := ParseFormat(string(input.Format)); err != nil {
		return Options{}, err
	}
	if err := input.Options.Validate(); err != nil {
		return Options{}, err
	}
	return input.Options.withDefaults(), nil
}

func toPublicHeadings(hs []pipeline.Heading) []Heading {
	if len(hs) == 0 {
		return nil
	}
	out := make([]Heading, len(hs))
	for i, h := range hs {
		out[i] = Heading{Level: h.Level, Text: h.Text, ID: h.ID}
	}
	return out
}
