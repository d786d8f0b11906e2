package main

// Notes:
// - Test infrastructure shared across the CLI tests: a fake converter, a fake
//   pool, a recording tracker and an Environment wired to buffers.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/config"
	"github.com/alnah/go-mdexport/internal/events"
	"github.com/alnah/go-mdexport/internal/store"
)

// ---------------------------------------------------------------------------
// syncBuffer - Concurrency-safe output capture
// ---------------------------------------------------------------------------

// syncBuffer is a bytes.Buffer safe for the concurrent writes of batch workers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// ---------------------------------------------------------------------------
// fakeConverter - Records inputs and returns canned output
// ---------------------------------------------------------------------------

type fakeConverter struct {
	mu     sync.Mutex
	inputs []mdexport.Input
	err    error
}

func (c *fakeConverter) Convert(_ context.Context, in mdexport.Input) (*mdexport.ConvertResult, error) {
	c.mu.Lock()
	c.inputs = append(c.inputs, in)
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	res := &mdexport.ConvertResult{}
	if in.Format.WantsHTML() {
		res.HTML = []byte("<html><title>" + in.Title + "</title></html>")
	}
	if in.Format.WantsPDF() {
		res.PDF = []byte("%PDF-1.7 fake")
		res.Pages = 1
	}
	return res, nil
}

func (c *fakeConverter) calls() []mdexport.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]mdexport.Input(nil), c.inputs...)
}

// ---------------------------------------------------------------------------
// fakePool - Hands out one shared fakeConverter
// ---------------------------------------------------------------------------

type fakePool struct {
	conv       *fakeConverter
	size       int
	acquireErr error

	mu     sync.Mutex
	closed int
}

func (p *fakePool) Acquire() (CLIConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conv, nil
}

func (p *fakePool) Release(CLIConverter) {}
func (p *fakePool) Size() int            { return p.size }

func (p *fakePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

// poolFactory records the pools created through Environment.NewPool.
type poolFactory struct {
	conv       *fakeConverter
	acquireErr error

	mu    sync.Mutex
	pools []*fakePool
}

func (f *poolFactory) newPool(size int, _ ...mdexport.Option) Pool {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &fakePool{conv: f.conv, size: size, acquireErr: f.acquireErr}
	f.pools = append(f.pools, p)
	return p
}

func (f *poolFactory) sizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int, len(f.pools))
	for i, p := range f.pools {
		sizes[i] = p.size
	}
	return sizes
}

// ---------------------------------------------------------------------------
// recordingTracker - Captures tracked events
// ---------------------------------------------------------------------------

type recordingTracker struct {
	mu       sync.Mutex
	themes   []string
	fileOps  []events.Operation
	exports  []events.Export
	settings []string
	errs     []error
}

func (r *recordingTracker) ThemeChange(theme string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes = append(r.themes, theme)
}

func (r *recordingTracker) FileOperation(op events.Operation, _ string, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fileOps = append(r.fileOps, op)
}

func (r *recordingTracker) Export(e events.Export) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exports = append(r.exports, e)
}

func (r *recordingTracker) SettingsChange(setting string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = append(r.settings, setting)
}

func (r *recordingTracker) Error(err error, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// ---------------------------------------------------------------------------
// testEnv - Environment wired to buffers and fakes
// ---------------------------------------------------------------------------

type testEnv struct {
	*Environment
	stdout  *syncBuffer
	stderr  *syncBuffer
	conv    *fakeConverter
	pools   *poolFactory
	tracker *recordingTracker
}

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	conv := &fakeConverter{}
	pools := &poolFactory{conv: conv}
	tracker := &recordingTracker{}

	env := &Environment{
		Now:     func() time.Time { return fixedNow },
		Stdin:   strings.NewReader(""),
		Stdout:  stdout,
		Stderr:  stderr,
		Logger:  zerolog.New(stderr),
		Tracker: tracker,
		NewPool: pools.newPool,
		OpenStore: func(dir string, _ zerolog.Logger) (*store.Store, error) {
			return store.Open(store.Options{Dir: dir, Now: func() time.Time { return fixedNow }})
		},
	}
	return &testEnv{
		Environment: env,
		stdout:      stdout,
		stderr:      stderr,
		conv:        conv,
		pools:       pools,
		tracker:     tracker,
	}
}

// ---------------------------------------------------------------------------
// File helpers
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// containsAll reports whether s contains every substring.
func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected %s not to exist, stat err = %v", path, err)
	}
}

// defaultSettings returns settings resolved from the defaults and format.
func defaultSettings(t *testing.T, format mdexport.Format) *exportSettings {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.Format = format.String()
	s, err := settingsFromConfig(cfg, "", &exportFlags{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("settingsFromConfig: %v", err)
	}
	return s
}
