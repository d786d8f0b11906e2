package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// TestParseType
// ---------------------------------------------------------------------------

func TestParseType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    FileType
		wantErr bool
	}{
		{"uploaded", TypeUploaded, false},
		{"edited", TypeEdited, false},
		{"", "", true},
		{"Uploaded", "", true},
	}

	for _, tt := range tests {
		got, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidType) {
			t.Errorf("ParseType(%q) error = %v, want ErrInvalidType", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestDownloadName
// ---------------------------------------------------------------------------

func TestDownloadName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file File
		want string
	}{
		{"uploaded keeps original name", File{Title: "notes", Type: TypeUploaded, OriginalName: "My Notes.md"}, "My Notes.md"},
		{"uploaded without original name", File{Title: "notes", Type: TypeUploaded}, "notes.md"},
		{"edited uses title", File{Title: "draft", Type: TypeEdited, OriginalName: "ignored.md"}, "draft.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DownloadName(tt.file); got != tt.want {
				t.Errorf("DownloadName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFile_Times(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	f := File{CreatedAt: ts.UnixMilli(), UpdatedAt: ts.Add(time.Hour).UnixMilli()}

	if !f.Created().Equal(ts) {
		t.Errorf("Created() = %v, want %v", f.Created(), ts)
	}
	if !f.Updated().Equal(ts.Add(time.Hour)) {
		t.Errorf("Updated() = %v, want %v", f.Updated(), ts.Add(time.Hour))
	}
}

// ---------------------------------------------------------------------------
// TestImportFile
// ---------------------------------------------------------------------------

func TestImportFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "Weekly Report.md")
	content := "# Week 12\n\nAll good.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile() unexpected error: %v", err)
	}

	want := File{
		Title:        "Weekly Report",
		Content:      content,
		Type:         TypeUploaded,
		OriginalName: "Weekly Report.md",
		Size:         int64(len(content)),
	}
	if f != want {
		t.Errorf("ImportFile() = %+v, want %+v", f, want)
	}
}

func TestImportFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("plain"), 0o644); err != nil {
		t.Fatal(err)
	}
	mdDir := filepath.Join(dir, "folder.md")
	if err := os.Mkdir(mdDir, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"plain text", txt, ErrNotMarkdown},
		{"directory", mdDir, ErrNotMarkdown},
		{"missing", filepath.Join(dir, "missing.md"), os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ImportFile(tt.path); !errors.Is(err, tt.wantErr) {
				t.Errorf("ImportFile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBadgerLogger
// ---------------------------------------------------------------------------

func TestBadgerLogger(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	l := newBadgerLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	l.Errorf("compaction failed: %s\n", "disk full")
	l.Warningf("slow write")
	l.Infof("replaying %d entries", 3)
	l.Debugf("noise")

	out := buf.String()
	for _, want := range []string{
		`"level":"error"`, `"message":"compaction failed: disk full"`,
		`"level":"warn"`, `"message":"replaying 3 entries"`,
		`"level":"trace"`, `"component":"badger"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
