package main

// Notes:
// - loadEnvConfig/warnUnknownEnvVars use the process environment, so these
//   tests use t.Setenv and do not run in parallel.
// - applyEnvConfig: we test that set values override the config and unset
//   values leave it alone.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdexport/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment parsing
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("MDEXPORT_CONFIG", "team")
	t.Setenv("MDEXPORT_THEME", "academic")
	t.Setenv("MDEXPORT_TIMEOUT", "90s")
	t.Setenv("MDEXPORT_OUTPUT_DIR", "/tmp/out")
	t.Setenv("MDEXPORT_PAGE_SIZE", "legal")
	t.Setenv("MDEXPORT_STORE_DIR", "/tmp/store")
	t.Setenv("MDEXPORT_WORKERS", "4")
	t.Setenv("MDEXPORT_DARK", "true")

	got := loadEnvConfig()

	if got.ConfigPath != "team" || got.Theme != "academic" || got.PageSize != "legal" {
		t.Errorf("strings = %+v", got)
	}
	if got.OutputDir != "/tmp/out" || got.StoreDir != "/tmp/store" {
		t.Errorf("dirs = %q, %q", got.OutputDir, got.StoreDir)
	}
	if got.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", got.Timeout)
	}
	if got.Workers != 4 {
		t.Errorf("Workers = %d, want 4", got.Workers)
	}
	if got.Dark == nil || !*got.Dark {
		t.Errorf("Dark = %v, want true", got.Dark)
	}
}

func TestLoadEnvConfig_MalformedValuesIgnored(t *testing.T) {
	t.Setenv("MDEXPORT_TIMEOUT", "soon")
	t.Setenv("MDEXPORT_WORKERS", "-2")
	t.Setenv("MDEXPORT_DARK", "maybe")

	got := loadEnvConfig()

	if got.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0", got.Timeout)
	}
	if got.Workers != 0 {
		t.Errorf("Workers = %d, want 0", got.Workers)
	}
	if got.Dark != nil {
		t.Errorf("Dark = %v, want nil", *got.Dark)
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("MDEXPORT_THEM", "github")
	t.Setenv("MDEXPORT_THEME", "github")

	var buf strings.Builder
	warnUnknownEnvVars(zerolog.New(&buf))

	out := buf.String()
	if !strings.Contains(out, "MDEXPORT_THEM\"") {
		t.Errorf("logs = %q, want warning for MDEXPORT_THEM", out)
	}
	if strings.Contains(out, "MDEXPORT_THEME") {
		t.Errorf("logs = %q, should not warn about MDEXPORT_THEME", out)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Environment over config file
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	dark := true
	env := &envConfig{
		Theme:     "minimal",
		Timeout:   time.Minute,
		OutputDir: "/out",
		PageSize:  "letter",
		StoreDir:  "/store",
		Workers:   2,
		Dark:      &dark,
	}

	cfg := config.DefaultConfig()
	cfg.Document.Theme = "academic"
	cfg.PDF.Timeout = "10s"
	applyEnvConfig(env, cfg)

	if cfg.Document.Theme != "minimal" {
		t.Errorf("Theme = %q, want minimal", cfg.Document.Theme)
	}
	if cfg.PDF.Timeout != "1m0s" {
		t.Errorf("Timeout = %q, want 1m0s", cfg.PDF.Timeout)
	}
	if cfg.Output.DefaultDir != "/out" || cfg.Store.Dir != "/store" {
		t.Errorf("dirs = %q, %q", cfg.Output.DefaultDir, cfg.Store.Dir)
	}
	if cfg.PDF.PageSize != "letter" || cfg.Output.Workers != 2 {
		t.Errorf("PageSize/Workers = %q/%d", cfg.PDF.PageSize, cfg.Output.Workers)
	}
	if cfg.Document.Dark == nil || !*cfg.Document.Dark {
		t.Error("Dark not applied")
	}
}

func TestApplyEnvConfig_EmptyKeepsConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Document.Theme = "academic"
	cfg.Output.Workers = 3
	applyEnvConfig(&envConfig{}, cfg)

	if cfg.Document.Theme != "academic" || cfg.Output.Workers != 3 || cfg.Document.Dark != nil {
		t.Errorf("config changed by empty env: %+v", cfg)
	}
}
