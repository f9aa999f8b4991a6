// Package config assembles the pipeline's runtime configuration from a
// JSON file, documented defaults, and environment variables for provider
// secrets. All the ad hoc paths and magic constants of the pipeline live
// here and only here.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/barsignal/tvlayout/internal/detection"
)

// VisionConfig configures the primary (vision-model) recognition tier.
type VisionConfig struct {
	// APIKey is read from GEMINI_API_KEY, never from the config file.
	APIKey string `json:"-"`

	Model string `json:"model"`

	// Timeout is the mandatory per-zone deadline for one model call.
	Timeout Duration `json:"timeout"`
}

// OCRConfig configures the fallback (classical OCR) tier.
type OCRConfig struct {
	Language string   `json:"language"`
	Timeout  Duration `json:"timeout"`
}

// Config is the full runtime configuration.
type Config struct {
	Detect detection.Params `json:"detect"`
	Vision VisionConfig     `json:"vision"`
	OCR    OCRConfig        `json:"ocr"`

	// Concurrency bounds in-flight per-zone recognitions.
	Concurrency int `json:"concurrency"`

	// SkipOCR numbers zones purely by reading order without calling
	// any recognition tier.
	SkipOCR bool `json:"skip_ocr"`

	// CropPad and CropScale shape the per-zone crops handed to the
	// recognition tiers.
	CropPad   float64 `json:"crop_pad"`
	CropScale float64 `json:"crop_scale"`

	// LayoutDir is where the active layout record is persisted.
	LayoutDir string `json:"layout_dir"`
}

// Default returns the documented defaults. Provider secrets still come
// from the environment.
func Default() *Config {
	return &Config{
		Detect: detection.DefaultParams(),
		Vision: VisionConfig{
			Model:   "gemini-2.5-flash",
			Timeout: Duration(15 * time.Second),
		},
		OCR: OCRConfig{
			Language: "eng",
			Timeout:  Duration(10 * time.Second),
		},
		Concurrency: 3,
		CropPad:     1.0,
		CropScale:   2.0,
		LayoutDir:   "data",
	}
}

// Load reads a JSON config file over the defaults, then applies
// environment overrides. An empty path returns defaults plus env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Vision.APIKey = os.Getenv("GEMINI_API_KEY")
	if m := os.Getenv("GEMINI_MODEL"); m != "" {
		cfg.Vision.Model = m
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate clamps ranges and validates the detection params.
func (c *Config) Validate() error {
	if err := c.Detect.Validate(); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.Vision.Timeout <= 0 {
		c.Vision.Timeout = Duration(15 * time.Second)
	}
	if c.OCR.Timeout <= 0 {
		c.OCR.Timeout = Duration(10 * time.Second)
	}
	if c.CropPad < 0 {
		c.CropPad = 0
	}
	if c.LayoutDir == "" {
		c.LayoutDir = "data"
	}
	return nil
}

// Duration marshals as a Go duration string ("15s") in config files.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}
