package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/events"
	"github.com/alnah/go-mdexport/internal/fileutil"
	"github.com/alnah/go-mdexport/internal/store"
)

// filesCommand carries the state shared by files subcommands.
type filesCommand struct {
	env      *Environment
	flags    *filesFlags
	args     []string
	log      zerolog.Logger
	tracker  events.Tracker
	settings *exportSettings
	store    *store.Store
}

// filesSubcommands maps subcommand names to their handlers.
var filesSubcommands = map[string]func(*filesCommand, context.Context) error{
	"list":    (*filesCommand).list,
	"show":    (*filesCommand).show,
	"save":    (*filesCommand).save,
	"import":  (*filesCommand).importFiles,
	"delete":  (*filesCommand).delete,
	"export":  (*filesCommand).export,
	"convert": (*filesCommand).convert,
	"usage":   (*filesCommand).usage,
	"clear":   (*filesCommand).clear,
}

// filesSubcommandNames lists subcommands in help order.
var filesSubcommandNames = []string{"list", "show", "save", "import", "delete", "export", "convert", "usage", "clear"}

// runFiles manages documents kept in the local file store.
func runFiles(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printFilesUsage(env.Stderr)
		return fmt.Errorf("%w: files requires a subcommand", ErrUsage)
	}
	sub := args[0]
	handler, ok := filesSubcommands[sub]
	if !ok {
		printFilesUsage(env.Stderr)
		return fmt.Errorf("%w: unknown files subcommand %q", ErrUsage, sub)
	}

	flags, positional, err := parseFilesFlags(sub, args[1:], env.Stderr)
	if err != nil {
		return usageError(err)
	}
	log := env.commandLogger(flags.common)

	s, err := resolveSettings(&flags.exportFlags, log)
	if err != nil {
		return err
	}

	dir, err := resolveStoreDir(flags.store, s.cfg.Store.Dir)
	if err != nil {
		return err
	}
	log.Debug().Str("dir", dir).Msg("opening file store")

	st, err := env.OpenStore(dir, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("closing file store")
		}
	}()

	c := &filesCommand{
		env:      env,
		flags:    flags,
		args:     positional,
		log:      log,
		tracker:  env.tracker(flags.common, log),
		settings: s,
		store:    st,
	}
	return handler(c, ctx)
}

// resolveStoreDir picks the store directory: flag > config (which carries
// MDEXPORT_STORE_DIR) > user config directory.
func resolveStoreDir(flagDir, cfgDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	if cfgDir != "" {
		return cfgDir, nil
	}
	return store.DefaultDir()
}

// fileType parses --type; empty is allowed when optional.
func (c *filesCommand) fileType(optional bool) (store.FileType, error) {
	if c.flags.fileType == "" && optional {
		return "", nil
	}
	return store.ParseType(c.flags.fileType)
}

// requireID returns the single positional ID argument.
func (c *filesCommand) requireID(sub string) (string, error) {
	if len(c.args) != 1 {
		return "", fmt.Errorf("%w: files %s takes exactly one file ID", ErrUsage, sub)
	}
	return c.args[0], nil
}

func (c *filesCommand) list(context.Context) error {
	t, err := c.fileType(true)
	if err != nil {
		return err
	}

	var files []store.File
	if t == "" {
		files, err = c.store.All()
	} else {
		files, err = c.store.ByType(t)
	}
	if err != nil {
		return err
	}

	if len(files) == 0 {
		if !c.flags.common.quiet {
			fmt.Fprintln(c.env.Stdout, "No stored files")
		}
		return nil
	}
	printFileTable(c.env.Stdout, files)
	return nil
}

// printFileTable lists files as aligned columns.
func printFileTable(w io.Writer, files []store.File) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tSIZE\tUPDATED")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			f.ID, f.Title, f.Type, f.Size, f.Updated().Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}

func (c *filesCommand) show(context.Context) error {
	id, err := c.requireID("show")
	if err != nil {
		return err
	}
	f, err := c.store.Get(id)
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.env.Stdout, f.Content)
	return err
}

// save stores an edited document read from a file or from stdin ("-").
func (c *filesCommand) save(context.Context) error {
	if len(c.args) != 1 {
		return fmt.Errorf("%w: files save takes one path, or - for stdin", ErrUsage)
	}
	src := c.args[0]

	var (
		content []byte
		err     error
		title   = c.flags.document.title
	)
	if src == "-" {
		content, err = io.ReadAll(c.env.Stdin)
		if title == "" {
			title = mdexport.DefaultFilename
		}
	} else {
		content, err = os.ReadFile(src) // #nosec G304 -- user-provided path
		if title == "" {
			title = fileutil.TitleFromName(src)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}

	t := store.TypeEdited
	if c.flags.fileType != "" {
		if t, err = store.ParseType(c.flags.fileType); err != nil {
			return err
		}
	}

	saved, err := c.store.Save(store.File{
		ID:      c.flags.id,
		Title:   title,
		Content: string(content),
		Type:    t,
	})
	c.tracker.FileOperation(events.OpSave, string(t), err == nil)
	if err != nil {
		return err
	}

	if !c.flags.common.quiet {
		fmt.Fprintf(c.env.Stdout, "Saved %s (%s)\n", saved.Title, saved.ID)
	}
	return nil
}

// importFiles stores markdown files from disk as uploaded documents.
// Every path is attempted; the first error is returned.
func (c *filesCommand) importFiles(context.Context) error {
	if len(c.args) == 0 {
		return fmt.Errorf("%w: files import needs at least one path", ErrUsage)
	}

	var firstErr error
	for _, path := range c.args {
		err := c.importOne(path)
		c.tracker.FileOperation(events.OpUpload, string(store.TypeUploaded), err == nil)
		if err != nil {
			fmt.Fprintf(c.env.Stderr, "FAILED %s: %v\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (c *filesCommand) importOne(path string) error {
	f, err := store.ImportFile(path)
	if err != nil {
		return err
	}
	saved, err := c.store.Save(f)
	if err != nil {
		return err
	}
	if !c.flags.common.quiet {
		fmt.Fprintf(c.env.Stdout, "Imported %s (%s)\n", saved.OriginalName, saved.ID)
	}
	return nil
}

func (c *filesCommand) delete(context.Context) error {
	id, err := c.requireID("delete")
	if err != nil {
		return err
	}
	err = c.store.Delete(id)
	c.tracker.FileOperation(events.OpDelete, "", err == nil)
	if err != nil {
		return err
	}
	if !c.flags.common.quiet {
		fmt.Fprintf(c.env.Stdout, "Deleted %s\n", id)
	}
	return nil
}

// export writes a stored document back to disk under its download name.
func (c *filesCommand) export(context.Context) error {
	id, err := c.requireID("export")
	if err != nil {
		return err
	}
	f, err := c.store.Get(id)
	if err != nil {
		return err
	}

	dir := c.settings.outputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputDir, err)
	}

	path := filepath.Join(dir, fileutil.SanitizeFilename(store.DownloadName(f)))
	// #nosec G306 -- exported documents are meant to be readable
	err = os.WriteFile(path, []byte(f.Content), filePermissions)
	c.tracker.FileOperation(events.OpDownload, string(f.Type), err == nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	if !c.flags.common.quiet {
		fmt.Fprintf(c.env.Stdout, "Created %s\n", path)
	}
	return nil
}

// convert exports stored documents to HTML and/or PDF, named after their titles.
func (c *filesCommand) convert(ctx context.Context) error {
	files, err := c.selectForConvert()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no stored files to convert", ErrNoInput)
	}

	dir := c.settings.outputDir
	if dir == "" {
		dir = "."
	}
	jobs := make([]FileToConvert, len(files))
	for i, f := range files {
		base := strings.TrimSuffix(mdexport.OutputFilename(f.Title, "md"), ".md")
		jobs[i] = FileToConvert{
			InputPath:  f.ID,
			OutputBase: filepath.Join(dir, base),
			Title:      f.Title,
			Content:    []byte(f.Content),
		}
	}

	size := 1
	if c.settings.format.WantsPDF() {
		size = min(mdexport.ResolvePoolSize(c.settings.cfg.Output.Workers), len(jobs))
	}
	pool := c.env.NewPool(size, c.settings.converterOptions(c.env.Now)...)
	defer func() {
		if err := pool.Close(); err != nil {
			c.log.Warn().Err(err).Msg("closing converter pool")
		}
	}()

	results := convertBatch(ctx, pool, jobs, c.settings)
	for i, r := range results {
		c.tracker.FileOperation(events.OpConvert, string(files[i].Type), r.Err == nil)
	}
	trackResults(c.tracker, results, c.settings.format)
	return printResults(results, c.flags.common, c.env)
}

// selectForConvert returns the documents named by ID, or every document
// (optionally of --type) with --all.
func (c *filesCommand) selectForConvert() ([]store.File, error) {
	if c.flags.all {
		if len(c.args) > 0 {
			return nil, fmt.Errorf("%w: --all cannot be combined with IDs", ErrUsage)
		}
		t, err := c.fileType(true)
		if err != nil {
			return nil, err
		}
		if t == "" {
			return c.store.All()
		}
		return c.store.ByType(t)
	}

	if len(c.args) == 0 {
		return nil, fmt.Errorf("%w: files convert needs file IDs or --all", ErrUsage)
	}
	files := make([]store.File, 0, len(c.args))
	for _, id := range c.args {
		f, err := c.store.Get(id)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (c *filesCommand) usage(context.Context) error {
	u, err := c.store.Usage()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.env.Stdout, "Used %d of %d bytes (%.1f%%)\n", u.Used, u.Total, u.Percentage)
	return nil
}

// clear removes every document of --type, or everything with --all.
func (c *filesCommand) clear(context.Context) error {
	if c.flags.all == (c.flags.fileType != "") {
		return fmt.Errorf("%w: files clear needs exactly one of --type or --all", ErrUsage)
	}

	if c.flags.all {
		err := c.store.ClearAll()
		c.tracker.FileOperation(events.OpClear, "", err == nil)
		if err != nil {
			return err
		}
		if !c.flags.common.quiet {
			fmt.Fprintln(c.env.Stdout, "Removed all stored files")
		}
		return nil
	}

	t, err := c.fileType(false)
	if err != nil {
		return err
	}
	n, err := c.store.ClearType(t)
	c.tracker.FileOperation(events.OpClear, string(t), err == nil)
	if err != nil {
		return err
	}
	if !c.flags.common.quiet {
		fmt.Fprintf(c.env.Stdout, "Removed %d %s file(s)\n", n, t)
	}
	return nil
}
