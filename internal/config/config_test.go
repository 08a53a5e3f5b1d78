package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"BINGO_DATA", "BINGO_GRID_SIZE", "BINGO_ADDR", "BINGO_SERVER_URL", "BINGO_SERVER_TOKEN",
	"BINGO_STATIC_DIR", "BINGO_LONG_PRESS", "BINGO_LOG_FILE", "DEBUG",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.GridSize != DefaultGridSize || cfg.Addr != DefaultAddr || cfg.ServerURL != DefaultServerURL {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LongPress != DefaultLongPress || cfg.Debug || cfg.DataPath != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BINGO_DATA", "card.json")
	t.Setenv("BINGO_GRID_SIZE", "5")
	t.Setenv("BINGO_ADDR", ":9000")
	t.Setenv("BINGO_SERVER_URL", "http://bingo.test")
	t.Setenv("BINGO_SERVER_TOKEN", "secret")
	t.Setenv("BINGO_LONG_PRESS", "1s")
	t.Setenv("DEBUG", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	want := Config{
		DataPath:    "card.json",
		GridSize:    5,
		Addr:        ":9000",
		ServerURL:   "http://bingo.test",
		ServerToken: "secret",
		LongPress:   time.Second,
		Debug:       true,
	}
	if cfg != want {
		t.Fatalf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	for key, val := range map[string]string{
		"BINGO_GRID_SIZE":  "0",
		"BINGO_LONG_PRESS": "soon",
		"DEBUG":            "maybe",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("%s=%s: expected error", key, val)
			}
		})
	}
	clearEnv(t)
	t.Setenv("BINGO_GRID_SIZE", "eight")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for non-numeric grid size")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("BINGO_GRID_SIZE")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BINGO_GRID_SIZE=3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Cleanup(func() { os.Unsetenv("BINGO_GRID_SIZE") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GridSize != 3 {
		t.Fatalf("grid = %d, want 3", cfg.GridSize)
	}
}
