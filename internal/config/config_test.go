package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Simulation.Trials != 1000 {
		t.Errorf("Trials = %d, want 1000", config.Simulation.Trials)
	}
	if !config.Simulation.Parallel {
		t.Error("Parallel should default to true")
	}
	if config.Cache.StaleAfter != "168h" {
		t.Errorf("StaleAfter = %q, want 168h", config.Cache.StaleAfter)
	}
	if config.Output.SampleGames != -1 {
		t.Errorf("SampleGames = %d, want -1 (engine picks the samples)", config.Output.SampleGames)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config fails Validate(): %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if config.Simulation.Trials != DefaultConfig().Simulation.Trials {
		t.Errorf("Trials = %d, want defaults on missing file", config.Simulation.Trials)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config := DefaultConfig()
	config.Simulation.Trials = 5000
	config.Simulation.Seed = 42
	config.Cache.StaleAfter = "24h"
	config.Output.SampleGames = 5

	if err := config.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Simulation.Trials != 5000 || loaded.Simulation.Seed != 42 {
		t.Errorf("simulation = %+v, round trip lost values", loaded.Simulation)
	}
	if loaded.Cache.StaleAfter != "24h" {
		t.Errorf("StaleAfter = %q, want 24h", loaded.Cache.StaleAfter)
	}
	if loaded.Output.SampleGames != 5 {
		t.Errorf("SampleGames = %d, want 5", loaded.Output.SampleGames)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".manalysis")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected parse error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "Defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "Negative trials", mutate: func(c *Config) { c.Simulation.Trials = -1 }, wantErr: true},
		{name: "Negative workers", mutate: func(c *Config) { c.Simulation.Workers = -2 }, wantErr: true},
		{name: "Sample games -1 selects engine default", mutate: func(c *Config) { c.Output.SampleGames = -1 }},
		{name: "Sample games below -1", mutate: func(c *Config) { c.Output.SampleGames = -2 }, wantErr: true},
		{name: "Bad stale_after", mutate: func(c *Config) { c.Cache.StaleAfter = "soon" }, wantErr: true},
		{name: "Valid stale_after", mutate: func(c *Config) { c.Cache.StaleAfter = "72h" }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultCachePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultCachePath()
	if err != nil {
		t.Fatalf("DefaultCachePath() error: %v", err)
	}
	if want := filepath.Join(home, ".manalysis", "cards.db"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}
