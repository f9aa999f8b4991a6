package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/barsignal/tvlayout/internal/config"
	"github.com/barsignal/tvlayout/internal/layout"
	"github.com/barsignal/tvlayout/internal/match"
	"github.com/barsignal/tvlayout/internal/pipeline"
	"github.com/barsignal/tvlayout/internal/recognize"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		imagePath   = flag.String("image", "", "layout image to import (required)")
		rosterPath  = flag.String("roster", "", "JSON file with the output roster (required)")
		name        = flag.String("name", "Imported Layout", "layout display name")
		imageURL    = flag.String("image-url", "", "URL the rendering UI serves the image from")
		configPath  = flag.String("config", "", "optional JSON config file")
		layoutDir   = flag.String("layout-dir", "", "override the layout persistence directory")
		skipOCR     = flag.Bool("skip-ocr", false, "number zones by reading order only, no recognition")
		showVersion = flag.Bool("version", false, "print version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("layout-import %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*imagePath, *rosterPath, *name, *imageURL, *configPath, *layoutDir, *skipOCR, logger); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(imagePath, rosterPath, name, imageURL, configPath, layoutDir string, skipOCR bool, logger *slog.Logger) error {
	if imagePath == "" || rosterPath == "" {
		flag.Usage()
		return errors.New("-image and -roster are required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if layoutDir != "" {
		cfg.LayoutDir = layoutDir
	}
	if skipOCR {
		cfg.SkipOCR = true
	}

	roster, err := match.LoadRoster(rosterPath)
	if err != nil {
		return err
	}

	var tiers []recognize.Tier
	if !cfg.SkipOCR {
		if cfg.Vision.APIKey != "" {
			tiers = append(tiers, recognize.Tier{
				Recognizer: recognize.NewVision(cfg.Vision.APIKey, cfg.Vision.Model),
				Timeout:    time.Duration(cfg.Vision.Timeout),
			})
		} else {
			logger.Warn("GEMINI_API_KEY not set, skipping vision tier")
		}
		tiers = append(tiers, recognize.Tier{
			Recognizer: recognize.NewTesseract(cfg.OCR.Language),
			Timeout:    time.Duration(cfg.OCR.Timeout),
		})
	}

	store := layout.NewStore(cfg.LayoutDir)
	p, err := pipeline.New(cfg, tiers, roster, store, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := p.Run(ctx, imagePath, name, imageURL)
	if errors.Is(err, pipeline.ErrNoZonesDetected) {
		return fmt.Errorf("no zones found in %s; re-upload with clearer rectangle markers: %w", imagePath, err)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Imported %q: %d zones in %s -> %s\n",
		name, len(report.Layout.Zones), report.Elapsed.Round(time.Millisecond), store.Path())
	for method, n := range report.MethodCounts {
		fmt.Printf("  %-12s %d\n", method, n)
	}
	if len(report.Unassigned) > 0 {
		fmt.Printf("  %d zone(s) left unassigned: roster has only %d output(s)\n",
			len(report.Unassigned), len(roster))
	}
	return nil
}
