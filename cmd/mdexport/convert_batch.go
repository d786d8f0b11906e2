package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/events"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrNoInput       = errors.New("no input specified")
	ErrReadMarkdown  = errors.New("failed to read markdown file")
	ErrWriteOutput   = errors.New("failed to write output file")
	ErrOutputDir     = errors.New("failed to create output directory")
	ErrConverterInit = errors.New("failed to initialize converter")
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath string
	Outputs   []string
	Pages     int
	Err       error
	Duration  time.Duration
}

// convertBatch processes files concurrently using the converter pool.
// Results are returned in input order.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, s *exportSettings) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %w", ErrConverterInit, err),
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], s)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile converts a single document and writes the requested outputs.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, s *exportSettings) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath}
	finish := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, sourceDir := f.Content, ""
	if content == nil {
		var err error
		content, err = os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
		if err != nil {
			return finish(fmt.Errorf("%w: %w", ErrReadMarkdown, err))
		}
		sourceDir = filepath.Dir(f.InputPath)
		if abs, err := filepath.Abs(sourceDir); err == nil {
			sourceDir = abs
		}
	}

	title := f.Title
	if title == "" {
		title = s.titleFor(f.InputPath)
	}

	res, err := conv.Convert(ctx, mdexport.Input{
		Markdown:  string(content),
		Title:     title,
		SourceDir: sourceDir,
		Format:    s.format,
		Options:   s.options,
	})
	if err != nil {
		return finish(err)
	}
	result.Pages = res.Pages

	outputs, err := writeOutputs(f, s.format, res)
	result.Outputs = outputs
	return finish(err)
}

// writeOutputs writes the HTML and PDF outputs requested by format.
func writeOutputs(f FileToConvert, format mdexport.Format, res *mdexport.ConvertResult) ([]string, error) {
	if err := os.MkdirAll(filepath.Dir(f.OutputBase), dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputDir, err)
	}

	var written []string
	if format.WantsHTML() {
		path := f.OutputPath("html")
		// #nosec G306 -- exported documents are meant to be readable
		if err := os.WriteFile(path, res.HTML, filePermissions); err != nil {
			return written, fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		written = append(written, path)
	}
	if format.WantsPDF() {
		path := f.OutputPath("pdf")
		// #nosec G306 -- exported documents are meant to be readable
		if err := os.WriteFile(path, res.PDF, filePermissions); err != nil {
			return written, fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// trackResults reports one export event per conversion.
func trackResults(t events.Tracker, results []ConversionResult, format mdexport.Format) {
	for _, r := range results {
		t.Export(events.Export{
			Source:   r.InputPath,
			Format:   format.String(),
			Pages:    r.Pages,
			Duration: r.Duration,
			Err:      r.Err,
		})
	}
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns an error wrapping the
// first failure, or nil when every file converted.
func printResults(results []ConversionResult, c commonFlags, env *Environment) error {
	summary := countResults(results)
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}

		if c.quiet {
			continue
		}

		for _, out := range r.Outputs {
			if c.verbose {
				fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, out, r.Duration.Round(time.Millisecond))
			} else {
				fmt.Fprintf(env.Stdout, "Created %s\n", out)
			}
		}
	}

	if !c.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	if firstErr != nil {
		return fmt.Errorf("%d conversion(s) failed: %w", summary.Failed, firstErr)
	}
	return nil
}
