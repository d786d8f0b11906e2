package mdexport

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdexport/internal/fileutil"
	"github.com/alnah/go-mdexport/internal/process"
)

// Rasterizer renders a standalone HTML document to a bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, htmlContent string, req RasterRequest) (image.Image, error)
	Close() error
}

// RasterRequest describes the bitmap to capture.
type RasterRequest struct {
	ViewportWidth int // layout width in CSS pixels
	Supersample   int // device pixels per CSS pixel
}

// Compile-time interface check.
var _ Rasterizer = (*rodRasterizer)(nil)

// readyExpression is true once the document's diagram bootstrap has settled.
const readyExpression = `() => window.mdexportReady === true`

// initialViewportHeight is replaced by the content height when the full page
// is captured.
const initialViewportHeight = 1024

// rodRasterizer drives headless Chrome through go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRasterizer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodRasterizer() *rodRasterizer {
	return &rodRasterizer{}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRasterizer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containers
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Rasterize writes the document to a temp file, lays it out at the requested
// viewport, waits for the ready flag and captures the full page as PNG.
func (r *rodRasterizer) Rasterize(ctx context.Context, htmlContent string, req RasterRequest) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.ViewportWidth <= 0 || req.Supersample <= 0 {
		return nil, fmt.Errorf("%w: viewport %dpx at scale %d", ErrRasterize, req.ViewportWidth, req.Supersample)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	defer cleanup()

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx)

	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             req.ViewportWidth,
		Height:            initialViewportHeight,
		DeviceScaleFactor: float64(req.Supersample),
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrRasterize, err)
	}

	if err := p.Navigate("file://" + tmpPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, contextErr(ctx, err))
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, contextErr(ctx, err))
	}
	if err := p.Wait(rod.Eval(readyExpression)); err != nil {
		return nil, fmt.Errorf("%w: waiting for diagrams: %w", ErrRasterize, contextErr(ctx, err))
	}

	shot, err := p.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: capturing page: %w", ErrRasterize, contextErr(ctx, err))
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding capture: %v", ErrRasterize, err)
	}
	return img, nil
}

// Close releases browser resources, including orphaned child processes.
func (r *rodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	// The group may already be gone after a clean close.
	_ = process.KillTree(r.launcher.PID())
	r.launcher.Kill()
	r.launcher.Cleanup()

	r.browser = nil
	r.launcher = nil
	return err
}

// contextErr prefers the context's error so deadlines classify as timeouts.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
