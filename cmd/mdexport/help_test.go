package main

// Notes:
// - runHelp: we test that every command has a usage page and that unknown
//   commands are rejected. Usage text itself is not asserted line by line.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunHelp - Per-command help
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	for _, name := range commandNames {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			if code := runHelp([]string{name}, env.Environment); code != ExitSuccess {
				t.Fatalf("runHelp(%q) = %d, want %d", name, code, ExitSuccess)
			}
			want := "Usage: mdexport " + name
			if !strings.Contains(env.stdout.String(), want) {
				t.Errorf("stdout = %q, want %q", env.stdout.String(), want)
			}
		})
	}
}

func TestRunHelp_NoArgs(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if code := runHelp(nil, env.Environment); code != ExitSuccess {
		t.Fatalf("runHelp() = %d, want %d", code, ExitSuccess)
	}
	for _, name := range commandNames {
		if !strings.Contains(env.stdout.String(), "  "+name) {
			t.Errorf("main usage does not list %q", name)
		}
	}
}

func TestRunHelp_Unknown(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if code := runHelp([]string{"publish"}, env.Environment); code != ExitUsage {
		t.Errorf("runHelp(publish) = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(env.stderr.String(), "Unknown command: publish") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestPrintFilesUsage_ListsSubcommands(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	printFilesUsage(&buf)
	for _, sub := range filesSubcommandNames {
		if !strings.Contains(buf.String(), "  "+sub) {
			t.Errorf("files usage does not list %q", sub)
		}
	}
}
