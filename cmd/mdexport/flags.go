package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// documentFlags holds styling flags mirrored by the document config section.
type documentFlags struct {
	theme           string
	fontSize        string
	fontFamily      string
	lineHeight      string
	toc             bool
	noHighlight     bool
	noExternalTab   bool
	pageNumbers     bool
	timestamp       bool
	timestampFormat string
	dark            bool
	title           string
}

// pageFlags holds PDF page layout flags.
type pageFlags struct {
	size    string
	margins string
}

// exportFlags holds everything needed to build converter options.
// convert, watch and files convert share it.
type exportFlags struct {
	common    commonFlags
	output    string
	timeout   string
	format    string
	assetPath string
	document  documentFlags
	page      pageFlags

	// changed records which flags were set on the command line, so that
	// boolean flags left at false do not override the config file.
	changed map[string]bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	exportFlags
	workers int
}

// filesFlags holds flags for the files command.
type filesFlags struct {
	exportFlags
	store    string
	fileType string
	id       string
	all      bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addDocumentFlags adds styling flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.theme, "theme", "", "theme: github, vscode-dark, medium, academic, minimal, tokyo-night")
	fs.StringVar(&f.fontSize, "font-size", "", "font size: small, medium, large")
	fs.StringVar(&f.fontFamily, "font-family", "", "font family: system, serif, mono")
	fs.StringVar(&f.lineHeight, "line-height", "", "line height: compact, normal, relaxed")
	fs.BoolVar(&f.toc, "toc", false, "include a table of contents")
	fs.BoolVar(&f.noHighlight, "no-highlight", false, "disable syntax highlighting")
	fs.BoolVar(&f.noExternalTab, "no-external-tab", false, "open external links in the same tab")
	fs.BoolVar(&f.pageNumbers, "page-numbers", false, "print page numbers in the PDF footer")
	fs.BoolVar(&f.timestamp, "timestamp", false, "print the export time in the footer")
	fs.StringVar(&f.timestampFormat, "timestamp-format", "", "timestamp layout, e.g. \"YYYY-MM-DD\"")
	fs.BoolVar(&f.dark, "dark", false, "use the dark variant of the theme")
	fs.StringVar(&f.title, "title", "", "document title (\"\" = file name)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: a4, letter, legal")
	fs.StringVar(&f.margins, "margins", "", "page margins: narrow, normal, wide")
}

// addExportFlags adds output, styling and page flags to a FlagSet.
func addExportFlags(fs *flag.FlagSet, f *exportFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.format, "format", "", "output format: html, pdf, both")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")

	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addPageFlags(fs, &f.page)
}

// recordChanged fills f.changed after parsing.
func (f *exportFlags) recordChanged(fs *flag.FlagSet) {
	f.changed = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })
}

// newFlagSet returns a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// newConvertFlagSet registers the convert flags into f.
// Completion builds the same FlagSet, so flag definitions live only here.
func newConvertFlagSet(f *convertFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("convert", stderr, printConvertUsage)
	addExportFlags(fs, &f.exportFlags)
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	return fs
}

// newWatchFlagSet registers the watch flags into f.
func newWatchFlagSet(f *exportFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("watch", stderr, printWatchUsage)
	addExportFlags(fs, f)
	return fs
}

// newFilesFlagSet registers the files flags into f.
func newFilesFlagSet(sub string, f *filesFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("files "+sub, stderr, printFilesUsage)
	addExportFlags(fs, &f.exportFlags)
	fs.StringVar(&f.store, "store", "", "store directory")
	fs.StringVar(&f.fileType, "type", "", "file type: uploaded, edited")
	fs.StringVar(&f.id, "id", "", "update the stored file with this ID")
	fs.BoolVar(&f.all, "all", false, "apply to every stored file")
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.recordChanged(fs)
	return f, fs.Args(), nil
}

// parseWatchFlags parses watch command flags and returns positional args.
func parseWatchFlags(args []string, stderr io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newWatchFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.recordChanged(fs)
	return f, fs.Args(), nil
}

// parseFilesFlags parses files subcommand flags and returns positional args.
func parseFilesFlags(sub string, args []string, stderr io.Writer) (*filesFlags, []string, error) {
	f := &filesFlags{}
	fs := newFilesFlagSet(sub, f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.recordChanged(fs)
	return f, fs.Args(), nil
}
