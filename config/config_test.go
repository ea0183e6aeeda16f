package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty origin",
			mutate: func(cfg *Config) {
				cfg.Origin = ""
			},
			wantErr: "origin",
		},
		{
			name: "origin without host",
			mutate: func(cfg *Config) {
				cfg.Origin = "http://"
			},
			wantErr: "origin",
		},
		{
			name: "template without page verb",
			mutate: func(cfg *Config) {
				cfg.PathTemplate = "/products"
			},
			wantErr: "path template",
		},
		{
			name: "negative start page",
			mutate: func(cfg *Config) {
				cfg.StartPage = -1
			},
			wantErr: "start page",
		},
		{
			name: "end before start",
			mutate: func(cfg *Config) {
				cfg.StartPage = 5
				cfg.EndPage = 4
			},
			wantErr: "end page",
		},
		{
			name: "negative delay",
			mutate: func(cfg *Config) {
				cfg.Delay = -1 * time.Second
			},
			wantErr: "delay",
		},
		{
			name: "empty card selector",
			mutate: func(cfg *Config) {
				cfg.Selectors.Card = " "
			},
			wantErr: "card selector",
		},
		{
			name: "dedupe without capacity",
			mutate: func(cfg *Config) {
				cfg.Dedupe = true
				cfg.DedupeMaxSize = 0
			},
			wantErr: "dedupe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Pages() != 20 {
		t.Fatalf("pages = %d, want 20", cfg.Pages())
	}
}

func TestConfigValidatePageZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartPage = 0
	cfg.EndPage = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("page range 0..0 should validate, got %v", err)
	}
	if cfg.Pages() != 1 {
		t.Fatalf("pages = %d, want 1", cfg.Pages())
	}
}

func TestPageURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Origin = "http://shop.test"
	if got, want := cfg.PageURL(3), "http://shop.test/products?page=3"; got != want {
		t.Fatalf("PageURL(3) = %q, want %q", got, want)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SCRAPER_START_PAGE", "2")
	t.Setenv("SCRAPER_END_PAGE", "7")
	t.Setenv("SCRAPER_DELAY", "250ms")
	t.Setenv("SCRAPER_CSV", "out/items.csv")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.StartPage != 2 || cfg.EndPage != 7 {
		t.Fatalf("range = %d..%d, want 2..7", cfg.StartPage, cfg.EndPage)
	}
	if cfg.Delay != 250*time.Millisecond {
		t.Fatalf("delay = %v, want 250ms", cfg.Delay)
	}
	if cfg.CSVFile != "out/items.csv" {
		t.Fatalf("csv file = %q", cfg.CSVFile)
	}
}

func TestApplyEnvInvalidInt(t *testing.T) {
	t.Setenv("SCRAPER_END_PAGE", "ten")
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err == nil || !strings.Contains(err.Error(), "SCRAPER_END_PAGE") {
		t.Fatalf("expected SCRAPER_END_PAGE error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.yaml")
	content := `
origin: http://shop.test
start_page: 3
end_page: 4
delay: 100ms
selectors:
  card: li.item
output:
  sqlite: history.db
dedupe: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	cfg := DefaultConfig()
	if err := fc.Apply(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if cfg.Origin != "http://shop.test" || cfg.StartPage != 3 || cfg.EndPage != 4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Delay != 100*time.Millisecond {
		t.Fatalf("delay = %v", cfg.Delay)
	}
	if cfg.Selectors.Card != "li.item" || cfg.Selectors.Title != "h2.product-title" {
		t.Fatalf("selectors = %+v", cfg.Selectors)
	}
	if cfg.SQLiteFile != "history.db" || !cfg.Dedupe {
		t.Fatalf("sqlite=%q dedupe=%v", cfg.SQLiteFile, cfg.Dedupe)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if fc != nil {
		t.Fatalf("expected nil config for missing file")
	}
	if err := fc.Apply(DefaultConfig()); err != nil {
		t.Fatalf("nil apply: %v", err)
	}
}
