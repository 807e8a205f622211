package config

import (
	"os"
	"testing"
	"time"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory afterwards (t.Chdir needs Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("Chdir back: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	// Run from a temp dir so no stray config.yaml or .env is picked up.
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Fatalf("unexpected server addr %q", cfg.Server.Addr)
	}
	if cfg.Profile.MaxConcurrency != 3 {
		t.Fatalf("unexpected max concurrency %d", cfg.Profile.MaxConcurrency)
	}
	if cfg.Profile.GlobalTimeout != 60*time.Second {
		t.Fatalf("unexpected global timeout %s", cfg.Profile.GlobalTimeout)
	}
	if cfg.Scraper.MinInterval != 1500*time.Millisecond {
		t.Fatalf("unexpected min interval %s", cfg.Scraper.MinInterval)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Fatalf("unexpected model %q", cfg.Gemini.Model)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SHOPAPP_SERVER_ADDR", ":9999")
	t.Setenv("SHOPAPP_PROFILE_MAX_CATEGORIES", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("env override not applied, addr %q", cfg.Server.Addr)
	}
	if cfg.Profile.MaxCategories != 5 {
		t.Fatalf("env override not applied, max categories %d", cfg.Profile.MaxCategories)
	}
}
