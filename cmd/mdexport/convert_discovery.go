package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidExtension is returned for a single input without a markdown extension.
var ErrInvalidExtension = errors.New("file must have .md or .markdown extension")

// FileToConvert represents a single document to process.
// Outputs are written to OutputBase plus ".html" or ".pdf".
type FileToConvert struct {
	InputPath  string
	OutputBase string

	// Stored documents carry their content and title; files on disk leave
	// Content nil and are read from InputPath.
	Title   string
	Content []byte
}

// OutputPath returns the output file for ext ("html" or "pdf").
func (f FileToConvert) OutputPath(ext string) string {
	return f.OutputBase + "." + ext
}

// discoverFiles finds all markdown files to convert.
// Directories are walked recursively and mirrored under outputDir.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		return []FileToConvert{{InputPath: inputPath, OutputBase: resolveOutputBase(inputPath, outputDir, "")}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !isMarkdownExt(path) {
			return nil
		}
		files = append(files, FileToConvert{InputPath: path, OutputBase: resolveOutputBase(path, outputDir, inputPath)})
		return nil
	})

	return files, err
}

// resolveOutputBase determines the extension-less output path for a markdown file.
// For a single input, an output ending in .pdf or .html names the file itself.
func resolveOutputBase(inputPath, outputDir, baseInputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base)
	}

	if baseInputDir == "" {
		if ext := filepath.Ext(outputDir); ext == ".pdf" || ext == ".html" {
			return strings.TrimSuffix(outputDir, ext)
		}
	}

	if baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base)
		}
	}

	return filepath.Join(outputDir, base)
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !isMarkdownExt(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

func isMarkdownExt(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".md" || ext == ".markdown"
}
