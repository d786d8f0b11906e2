package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdexport <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert markdown files to HTML and PDF")
	fmt.Fprintln(w, "  watch       Re-export a markdown file when it changes")
	fmt.Fprintln(w, "  files       Manage documents in the local file store")
	fmt.Fprintln(w, "  themes      List available themes")
	fmt.Fprintln(w, "  doctor      Check system configuration")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdexport help <command>' for details on a specific command.")
}

// printExportFlags prints the flags shared by convert, watch and files.
func printExportFlags(w io.Writer) {
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "      --format <s>            Output format: html, pdf, both (default both)")
	fmt.Fprintln(w, "      --asset-path <dir>      Custom asset directory")
	fmt.Fprintln(w, "  -t, --timeout <d>           PDF generation timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>             Document title (\"\" = file name)")
	fmt.Fprintln(w, "      --theme <s>             Theme (see 'mdexport themes')")
	fmt.Fprintln(w, "      --dark                  Use the dark variant of the theme")
	fmt.Fprintln(w, "      --font-size <s>         Font size: small, medium, large")
	fmt.Fprintln(w, "      --font-family <s>       Font family: system, serif, mono")
	fmt.Fprintln(w, "      --line-height <s>       Line height: compact, normal, relaxed")
	fmt.Fprintln(w, "      --toc                   Include a table of contents")
	fmt.Fprintln(w, "      --no-highlight          Disable syntax highlighting")
	fmt.Fprintln(w, "      --no-external-tab       Open external links in the same tab")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>         Page size: a4, letter, legal")
	fmt.Fprintln(w, "      --margins <s>           Margins: narrow, normal, wide")
	fmt.Fprintln(w, "      --page-numbers          Print page numbers in the footer")
	fmt.Fprintln(w, "      --timestamp             Print the export time in the footer")
	fmt.Fprintln(w, "      --timestamp-format <s>  Timestamp layout, e.g. \"YYYY-MM-DD HH:mm\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show detailed timing")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdexport convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown files to HTML and PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (walked recursively)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Workers:")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	printExportFlags(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdexport watch <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export a markdown file, then export it again whenever it or the")
	fmt.Fprintln(w, "config file changes. Stop with Ctrl+C.")
	fmt.Fprintln(w)
	printExportFlags(w)
}

// printFilesUsage prints usage for the files command.
func printFilesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdexport files <subcommand> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Manage documents kept in the local file store.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  list                  List stored files (--type to filter)")
	fmt.Fprintln(w, "  show <id>             Print a stored document")
	fmt.Fprintln(w, "  save <path|->         Save a document as edited (--id to update)")
	fmt.Fprintln(w, "  import <path>...      Import markdown files as uploaded")
	fmt.Fprintln(w, "  delete <id>           Remove a stored file")
	fmt.Fprintln(w, "  export <id>           Write a stored document to --output")
	fmt.Fprintln(w, "  convert <id>...       Convert stored documents (--all for every file)")
	fmt.Fprintln(w, "  usage                 Show storage quota usage")
	fmt.Fprintln(w, "  clear                 Remove files of --type, or --all")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Store:")
	fmt.Fprintln(w, "      --store <dir>           Store directory")
	fmt.Fprintln(w, "      --type <s>              File type: uploaded, edited")
	fmt.Fprintln(w, "      --id <s>                Stored file ID to update")
	fmt.Fprintln(w, "      --all                   Apply to every stored file")
	fmt.Fprintln(w)
	printExportFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdexport doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, environment, config and file store readiness.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json    Print results as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ready or warnings, 1 errors found.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	name := args[0]
	if !isCommand(name) {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", name)
		printUsage(env.Stderr)
		return ExitUsage
	}

	w := env.Stdout
	switch name {
	case "convert":
		printConvertUsage(w)
	case "watch":
		printWatchUsage(w)
	case "files":
		printFilesUsage(w)
	case "doctor":
		printDoctorUsage(w)
	case "completion":
		printCompletionUsage(w)
	case "themes":
		fmt.Fprintln(w, "Usage: mdexport themes")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "List available themes.")
	case "version":
		fmt.Fprintln(w, "Usage: mdexport version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	case "help":
		fmt.Fprintln(w, "Usage: mdexport help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
	}
	return ExitSuccess
}
