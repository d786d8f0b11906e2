package main

// Notes:
// - GenerateCompletion: we test that each shell script names every command
//   and the flags and values it completes. Scripts are not executed.
// - extractFlagsFromFlagSet: we test type detection and metadata enrichment.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion - Script generation per shell
// ---------------------------------------------------------------------------

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell Shell
		want  []string
	}{
		{ShellBash, []string{
			"_mdexport()",
			"complete -o filenames -F _mdexport mdexport",
			"--theme)",
			"tokyo-night",
			"*.@(md|markdown)",
			"list show save import delete export convert usage clear",
		}},
		{ShellZsh, []string{
			"#compdef mdexport",
			"'convert:Convert markdown files to HTML and PDF'",
			"{-o,--output}",
			"'1:argument:(bash zsh fish powershell)'",
			"_files -/",
		}},
		{ShellFish, []string{
			"complete -c mdexport -n __fish_use_subcommand -a watch",
			"__fish_seen_subcommand_from files",
			"-l page-size",
			"-x -a 'uploaded edited'",
			"__fish_complete_suffix .markdown",
		}},
		{ShellPowerShell, []string{
			"Register-ArgumentCompleter -Native -CommandName mdexport",
			"'--format' = @('html', 'pdf', 'both')",
			"'themes' = @()",
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()

			var buf strings.Builder
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion() error = %v", err)
			}
			out := buf.String()

			for _, name := range commandNames {
				if !strings.Contains(out, name) {
					t.Errorf("script does not mention command %q", name)
				}
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("script missing %q", want)
				}
			}
		})
	}
}

func TestGenerateCompletion_Deterministic(t *testing.T) {
	t.Parallel()

	for _, shell := range []Shell{ShellBash, ShellZsh, ShellFish, ShellPowerShell} {
		var a, b strings.Builder
		if err := GenerateCompletion(&a, shell); err != nil {
			t.Fatalf("GenerateCompletion(%s) error = %v", shell, err)
		}
		if err := GenerateCompletion(&b, shell); err != nil {
			t.Fatalf("GenerateCompletion(%s) error = %v", shell, err)
		}
		if a.String() != b.String() {
			t.Errorf("%s script differs between runs", shell)
		}
	}
}

func TestGenerateCompletion_Unsupported(t *testing.T) {
	t.Parallel()

	err := GenerateCompletion(io.Discard, Shell("tcsh"))
	if !errors.Is(err, ErrUnsupportedShell) {
		t.Errorf("GenerateCompletion(tcsh) error = %v, want ErrUnsupportedShell", err)
	}
}

func TestRunCompletion_NoShellPrintsUsage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if err := runCompletion(nil, env.Environment); err != nil {
		t.Fatalf("runCompletion() error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "Usage: mdexport completion <shell>") {
		t.Errorf("stdout = %q, want usage", env.stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestExtractFlagsFromFlagSet - Flag metadata
// ---------------------------------------------------------------------------

func TestExtractFlagsFromFlagSet(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.StringP("output", "o", "", "output path")
	fs.String("theme", "", "theme")
	fs.String("config", "", "config")
	fs.Bool("toc", false, "toc")
	fs.Int("workers", 0, "workers")
	fs.String("title", "", "title")

	byName := make(map[string]flagDef)
	for _, f := range extractFlagsFromFlagSet(fs) {
		byName[f.Long] = f
	}

	tests := []struct {
		name      string
		wantType  flagType
		wantShort string
	}{
		{"output", flagDir, "o"},
		{"theme", flagEnum, ""},
		{"config", flagFile, ""},
		{"toc", flagBool, ""},
		{"workers", flagInt, ""},
		{"title", flagString, ""},
	}

	for _, tt := range tests {
		f, ok := byName[tt.name]
		if !ok {
			t.Errorf("flag %q not extracted", tt.name)
			continue
		}
		if f.Type != tt.wantType || f.Short != tt.wantShort {
			t.Errorf("flag %q = type %d short %q, want type %d short %q", tt.name, f.Type, f.Short, tt.wantType, tt.wantShort)
		}
	}

	if !slices.Contains(byName["theme"].Values, "academic") {
		t.Errorf("theme values = %v, want built-in themes", byName["theme"].Values)
	}
	if byName["config"].FileGlob != "*.yaml,*.yml" {
		t.Errorf("config glob = %q", byName["config"].FileGlob)
	}
}

func TestGetCommands_MatchesCommandNames(t *testing.T) {
	t.Parallel()

	if got := commandNamesOf(getCommands()); !slices.Equal(got, commandNames) {
		t.Errorf("completion commands = %v, want %v", got, commandNames)
	}
}

func TestGlobExtensions(t *testing.T) {
	t.Parallel()

	got := globExtensions("*.md, *.markdown")
	if !slices.Equal(got, []string{"md", "markdown"}) {
		t.Errorf("globExtensions() = %v", got)
	}
}

func TestZshEscape(t *testing.T) {
	t.Parallel()

	got := zshEscape("it's [a]:b")
	want := `it'\''s \[a\]\:b`
	if got != want {
		t.Errorf("zshEscape() = %q, want %q", got, want)
	}
}
