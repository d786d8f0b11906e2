package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/config"
	"github.com/alnah/go-mdexport/internal/hints"
	"github.com/alnah/go-mdexport/internal/store"
)

// Exit codes for the mdexport CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful command
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, store errors
	ExitBrowser = 4 // Browser/Chrome and rasterization errors
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// usageError wraps a flag parsing error. Asking for help is not an error.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, mdexport.ErrBrowserConnect) ||
		errors.Is(err, mdexport.ErrPageCreate) ||
		errors.Is(err, mdexport.ErrPageLoad) ||
		errors.Is(err, mdexport.ErrRasterize) ||
		errors.Is(err, mdexport.ErrPDFAssembly) {
		return ExitBrowser
	}

	// I/O and storage errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrOutputDir) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, store.ErrFileNotFound) ||
		errors.Is(err, store.ErrQuotaExceeded) ||
		errors.Is(err, store.ErrStoreLocked) ||
		errors.Is(err, store.ErrStoreOpen) ||
		errors.Is(err, store.ErrCorruptStore) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mdexport.ErrEmptyMarkdown) ||
		errors.Is(err, mdexport.ErrInvalidOption) ||
		errors.Is(err, mdexport.ErrInvalidFormat) ||
		errors.Is(err, mdexport.ErrInvalidAssetPath) ||
		errors.Is(err, store.ErrInvalidType) ||
		errors.Is(err, store.ErrNotMarkdown) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}

// formatError renders err with an actionable hint when one applies.
func formatError(err error) string {
	msg := "error: " + err.Error()

	var quota *store.QuotaError
	switch {
	case errors.Is(err, mdexport.ErrBrowserConnect):
		return msg + hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return msg + hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return msg + hints.ForConfigNotFound(config.SearchPaths(defaultConfigName))
	case errors.Is(err, ErrOutputDir):
		return msg + hints.ForOutputDirectory()
	case errors.As(err, &quota):
		return msg + hints.ForQuotaExceeded(quota.Used, quota.Limit)
	case errors.Is(err, store.ErrFileNotFound):
		return msg + hints.ForFileNotFound()
	case errors.Is(err, store.ErrStoreLocked):
		return msg + hints.ForStoreLocked()
	}
	return msg
}

// defaultConfigName is suggested when a config file cannot be found.
const defaultConfigName = "mdexport"
