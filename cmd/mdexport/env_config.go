package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdexport/internal/config"
)

// envPrefix starts every environment variable the CLI reads.
const envPrefix = "MDEXPORT_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MDEXPORT_CONFIG: config file name or path
	Theme      string        // MDEXPORT_THEME: theme name
	Timeout    time.Duration // MDEXPORT_TIMEOUT: PDF generation timeout
	OutputDir  string        // MDEXPORT_OUTPUT_DIR: default output directory
	PageSize   string        // MDEXPORT_PAGE_SIZE: a4, letter, legal
	StoreDir   string        // MDEXPORT_STORE_DIR: file store directory
	Workers    int           // MDEXPORT_WORKERS: parallel workers
	Dark       *bool         // MDEXPORT_DARK: dark mode
}

// knownEnvVars lists valid MDEXPORT_* environment variables.
var knownEnvVars = map[string]bool{
	"MDEXPORT_CONFIG":     true,
	"MDEXPORT_THEME":      true,
	"MDEXPORT_TIMEOUT":    true,
	"MDEXPORT_OUTPUT_DIR": true,
	"MDEXPORT_PAGE_SIZE":  true,
	"MDEXPORT_STORE_DIR":  true,
	"MDEXPORT_WORKERS":    true,
	"MDEXPORT_DARK":       true,
	"MDEXPORT_CONTAINER":  true, // read by doctor only
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numeric, duration and boolean values are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MDEXPORT_CONFIG"),
		Theme:      os.Getenv("MDEXPORT_THEME"),
		OutputDir:  os.Getenv("MDEXPORT_OUTPUT_DIR"),
		PageSize:   os.Getenv("MDEXPORT_PAGE_SIZE"),
		StoreDir:   os.Getenv("MDEXPORT_STORE_DIR"),
	}

	if timeout := os.Getenv("MDEXPORT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("MDEXPORT_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if dark := os.Getenv("MDEXPORT_DARK"); dark != "" {
		if b, err := strconv.ParseBool(dark); err == nil {
			cfg.Dark = &b
		}
	}

	return cfg
}

// warnUnknownEnvVars logs a warning for each unrecognized MDEXPORT_* variable.
func warnUnknownEnvVars(log zerolog.Logger) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			log.Warn().Str("variable", name).Msg("unknown environment variable (typo?)")
		}
	}
}

// applyEnvConfig overrides config values with environment values.
// Flags are applied afterwards by mergeFlags, giving
// flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Theme != "" {
		cfg.Document.Theme = env.Theme
	}
	if env.Dark != nil {
		dark := *env.Dark
		cfg.Document.Dark = &dark
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.PageSize != "" {
		cfg.PDF.PageSize = env.PageSize
	}
	if env.StoreDir != "" {
		cfg.Store.Dir = env.StoreDir
	}
	if env.Workers > 0 {
		cfg.Output.Workers = env.Workers
	}
	if env.Timeout > 0 {
		cfg.PDF.Timeout = env.Timeout.String()
	}
}
