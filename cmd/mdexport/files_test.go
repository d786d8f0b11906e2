package main

// Notes:
// - runFiles: we test each subcommand against a real badger store in a temp
//   directory, and conversion against the fake pool.
// - Each runFiles call opens and closes the store, as separate CLI runs do.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/events"
	"github.com/alnah/go-mdexport/internal/store"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Running files subcommands
// ---------------------------------------------------------------------------

// filesFixture runs files subcommands against one store directory.
type filesFixture struct {
	t     *testing.T
	env   *testEnv
	store string
}

func newFilesFixture(t *testing.T) *filesFixture {
	t.Helper()
	return &filesFixture{t: t, env: newTestEnv(t), store: filepath.Join(t.TempDir(), "store")}
}

// run executes "files <args...> --store dir" and returns stdout and the error.
func (f *filesFixture) run(args ...string) (string, error) {
	f.t.Helper()
	before := len(f.env.stdout.String())
	err := runFiles(context.Background(), append(args, "--store", f.store), f.env.Environment)
	return f.env.stdout.String()[before:], err
}

func (f *filesFixture) mustRun(args ...string) string {
	f.t.Helper()
	out, err := f.run(args...)
	if err != nil {
		f.t.Fatalf("files %v: %v", args, err)
	}
	return out
}

// ---------------------------------------------------------------------------
// TestFiles - Subcommands
// ---------------------------------------------------------------------------

func TestFiles_SaveListShow(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	src := filepath.Join(t.TempDir(), "draft.md")
	writeFile(t, src, "# Draft\n\nHello.")

	out := fx.mustRun("save", src, "--id", "doc-1")
	if !strings.Contains(out, "Saved draft (doc-1)") {
		t.Errorf("save output = %q", out)
	}

	out = fx.mustRun("list")
	if !containsAll(out, "ID", "TITLE", "doc-1", "draft", "edited") {
		t.Errorf("list output = %q", out)
	}

	out = fx.mustRun("show", "doc-1")
	if out != "# Draft\n\nHello." {
		t.Errorf("show output = %q", out)
	}
}

func TestFiles_SaveFromStdinUpdates(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	fx.env.Stdin = strings.NewReader("# First")
	fx.mustRun("save", "-", "--id", "note", "--title", "Note")

	fx.env.Stdin = strings.NewReader("# Second")
	fx.mustRun("save", "-", "--id", "note", "--title", "Note")

	out := fx.mustRun("show", "note")
	if out != "# Second" {
		t.Errorf("show after update = %q, want second version", out)
	}

	list := fx.mustRun("list")
	if strings.Count(list, "note") != 1 {
		t.Errorf("list = %q, want a single stored file", list)
	}
}

func TestFiles_SaveFromStdinDefaultTitle(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	fx.env.Stdin = strings.NewReader("# Piped")

	out := fx.mustRun("save", "-")
	if !strings.Contains(out, "Saved "+mdexport.DefaultFilename+" (") {
		t.Errorf("save output = %q, want default title", out)
	}
}

func TestFiles_ImportAndFilter(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	writeFile(t, a, "# A")
	writeFile(t, b, "# B")
	writeFile(t, filepath.Join(dir, "draft.md"), "# Draft")

	out := fx.mustRun("import", a, b)
	if !containsAll(out, "Imported a.md", "Imported b.md") {
		t.Errorf("import output = %q", out)
	}
	fx.mustRun("save", filepath.Join(dir, "draft.md"), "--id", "draft-1")

	out = fx.mustRun("list", "--type", "uploaded")
	if strings.Count(out, "uploaded") != 2 || strings.Contains(out, "draft-1") {
		t.Errorf("uploaded list = %q", out)
	}

	out = fx.mustRun("list", "--type", "edited")
	if !strings.Contains(out, "draft-1") || strings.Contains(out, "uploaded") {
		t.Errorf("edited list = %q", out)
	}

	var uploads int
	for _, op := range fx.env.tracker.fileOps {
		if op == events.OpUpload {
			uploads++
		}
	}
	if uploads != 2 {
		t.Errorf("tracked %d uploads, want 2", uploads)
	}
}

func TestFiles_ImportRejectsNonMarkdown(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	bad := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, bad, "text")

	_, err := fx.run("import", bad)
	if !errors.Is(err, store.ErrNotMarkdown) {
		t.Errorf("import error = %v, want ErrNotMarkdown", err)
	}
	if !strings.Contains(fx.env.stderr.String(), "FAILED "+bad) {
		t.Errorf("stderr = %q", fx.env.stderr.String())
	}
}

func TestFiles_DeleteAndMissing(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	fx.env.Stdin = strings.NewReader("# X")
	fx.mustRun("save", "-", "--id", "x")

	if out := fx.mustRun("delete", "x"); !strings.Contains(out, "Deleted x") {
		t.Errorf("delete output = %q", out)
	}

	_, err := fx.run("show", "x")
	if !errors.Is(err, store.ErrFileNotFound) {
		t.Errorf("show deleted error = %v, want ErrFileNotFound", err)
	}
	if exitCodeFor(err) != ExitIO {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitIO)
	}
}

func TestFiles_Export(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	fx.env.Stdin = strings.NewReader("# Plan")
	fx.mustRun("save", "-", "--id", "p", "--title", "Project Plan")

	outDir := filepath.Join(t.TempDir(), "exports")
	out := fx.mustRun("export", "p", "-o", outDir)

	path := filepath.Join(outDir, "Project Plan.md")
	if !strings.Contains(out, "Created "+path) {
		t.Errorf("export output = %q, want %s", out, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if string(data) != "# Plan" {
		t.Errorf("exported content = %q", data)
	}
}

func TestFiles_Convert(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	fx.env.Stdin = strings.NewReader("# One")
	fx.mustRun("save", "-", "--id", "one", "--title", "Report One")
	fx.env.Stdin = strings.NewReader("# Two")
	fx.mustRun("save", "-", "--id", "two", "--title", "Report Two")

	outDir := t.TempDir()
	out := fx.mustRun("convert", "--all", "-o", outDir, "--format", "html")

	assertFileExists(t, filepath.Join(outDir, "Report One.html"))
	assertFileExists(t, filepath.Join(outDir, "Report Two.html"))
	assertNoFile(t, filepath.Join(outDir, "Report One.pdf"))
	if !strings.Contains(out, "2 succeeded, 0 failed") {
		t.Errorf("convert output = %q", out)
	}

	calls := fx.env.conv.calls()
	if len(calls) != 2 {
		t.Fatalf("converter called %d times, want 2", len(calls))
	}
	for _, in := range calls {
		if in.SourceDir != "" {
			t.Errorf("SourceDir = %q, want empty for stored documents", in.SourceDir)
		}
	}
}

func TestFiles_ConvertByID(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	fx.env.Stdin = strings.NewReader("# One")
	fx.mustRun("save", "-", "--id", "one", "--title", "Only")

	outDir := t.TempDir()
	fx.mustRun("convert", "one", "-o", outDir, "-q")

	assertFileExists(t, filepath.Join(outDir, "Only.html"))
	assertFileExists(t, filepath.Join(outDir, "Only.pdf"))
	if sizes := fx.env.pools.sizes(); len(sizes) != 1 || sizes[0] != 1 {
		t.Errorf("pool sizes = %v, want [1]", sizes)
	}
}

func TestFiles_ConvertErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"no ids", []string{"convert"}, ErrUsage},
		{"ids with --all", []string{"convert", "a", "--all"}, ErrUsage},
		{"unknown id", []string{"convert", "missing"}, store.ErrFileNotFound},
		{"empty store", []string{"convert", "--all"}, ErrNoInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fx := newFilesFixture(t)
			if _, err := fx.run(tt.args...); !errors.Is(err, tt.wantErr) {
				t.Errorf("files %v error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestFiles_UsageAndClear(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	dir := t.TempDir()
	up := filepath.Join(dir, "up.md")
	writeFile(t, up, "12345")
	fx.mustRun("import", up)
	fx.env.Stdin = strings.NewReader("123")
	fx.mustRun("save", "-", "--id", "e")

	out := fx.mustRun("usage")
	if !strings.Contains(out, "Used 8 of ") {
		t.Errorf("usage output = %q, want 8 bytes used", out)
	}

	out = fx.mustRun("clear", "--type", "uploaded")
	if !strings.Contains(out, "Removed 1 uploaded file(s)") {
		t.Errorf("clear output = %q", out)
	}
	if out := fx.mustRun("list"); strings.Contains(out, "uploaded") || !strings.Contains(out, "edited") {
		t.Errorf("list after clear = %q", out)
	}

	out = fx.mustRun("clear", "--all")
	if !strings.Contains(out, "Removed all stored files") {
		t.Errorf("clear --all output = %q", out)
	}
	if out := fx.mustRun("list"); !strings.Contains(out, "No stored files") {
		t.Errorf("list after clear --all = %q", out)
	}
}

func TestFiles_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown subcommand", []string{"rename"}, ErrUsage},
		{"show without id", []string{"show"}, ErrUsage},
		{"save without path", []string{"save"}, ErrUsage},
		{"import without paths", []string{"import"}, ErrUsage},
		{"clear without scope", []string{"clear"}, ErrUsage},
		{"clear with both scopes", []string{"clear", "--all", "--type", "edited"}, ErrUsage},
		{"bad type", []string{"list", "--type", "draft"}, store.ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fx := newFilesFixture(t)
			if _, err := fx.run(tt.args...); !errors.Is(err, tt.wantErr) {
				t.Errorf("files %v error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestFiles_QuotaExceeded(t *testing.T) {
	t.Parallel()

	fx := newFilesFixture(t)
	fx.env.OpenStore = func(dir string, _ zerolog.Logger) (*store.Store, error) {
		return store.Open(store.Options{Dir: dir, Limit: 4})
	}
	fx.env.Stdin = strings.NewReader("too large")

	_, err := fx.run("save", "-")
	var quota *store.QuotaError
	if !errors.As(err, &quota) {
		t.Fatalf("save error = %v, want QuotaError", err)
	}
	if !strings.Contains(formatError(err), "hint:") {
		t.Errorf("formatError() = %q, want quota hint", formatError(err))
	}
}

func TestResolveStoreDir(t *testing.T) {
	t.Parallel()

	if got, _ := resolveStoreDir("/flag", "/cfg"); got != "/flag" {
		t.Errorf("flag dir = %q", got)
	}
	if got, _ := resolveStoreDir("", "/cfg"); got != "/cfg" {
		t.Errorf("config dir = %q", got)
	}
	got, err := resolveStoreDir("", "")
	if err == nil && !strings.HasSuffix(got, filepath.Join("go-mdexport", "store")) {
		t.Errorf("default dir = %q", got)
	}
}
