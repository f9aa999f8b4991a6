package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.Detect.Stride < 1 || cfg.Concurrency < 1 {
		t.Errorf("implausible defaults: %+v", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"detect": {"stride": 5, "red_min": 180, "green_max": 90, "blue_max": 90,
		           "cluster_radius": 120, "min_cluster_size": 8, "row_tolerance": 40},
		"vision": {"model": "gemini-2.0-flash", "timeout": "20s"},
		"ocr": {"language": "eng", "timeout": "5s"},
		"concurrency": 2,
		"layout_dir": "/var/lib/tvlayout"
	}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Detect.Stride != 5 {
		t.Errorf("stride = %d, want 5", cfg.Detect.Stride)
	}
	if cfg.Vision.Model != "gemini-2.0-flash" {
		t.Errorf("model = %q", cfg.Vision.Model)
	}
	if time.Duration(cfg.Vision.Timeout) != 20*time.Second {
		t.Errorf("vision timeout = %v", time.Duration(cfg.Vision.Timeout))
	}
	if cfg.LayoutDir != "/var/lib/tvlayout" {
		t.Errorf("layout dir = %q", cfg.LayoutDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-exp")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Vision.APIKey != "test-key" {
		t.Errorf("api key not read from env")
	}
	if cfg.Vision.Model != "gemini-exp" {
		t.Errorf("model env override not applied: %q", cfg.Vision.Model)
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{not json"), 0644)

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate_Clamps(t *testing.T) {
	cfg := Default()
	cfg.Concurrency = 0
	cfg.Vision.Timeout = 0
	cfg.CropPad = -2

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("concurrency not clamped: %d", cfg.Concurrency)
	}
	if cfg.Vision.Timeout <= 0 {
		t.Error("vision timeout not clamped")
	}
	if cfg.CropPad != 0 {
		t.Errorf("crop pad not clamped: %f", cfg.CropPad)
	}
}
