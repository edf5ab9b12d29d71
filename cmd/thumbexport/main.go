// Command thumbexport renders a .thumbproj project to a PNG thumbnail.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"thumb-studio/internal/assets"
	"thumb-studio/internal/config"
	"thumb-studio/internal/export"
	"thumb-studio/internal/fonts"
	"thumb-studio/internal/project"
	"thumb-studio/internal/render"
	"thumb-studio/internal/version"
)

func main() {
	out := flag.String("o", "", "Output directory (default: export_dir from config)")
	cfgPath := flag.String("config", config.DefaultPath(), "Path to config.yaml")
	verbose := flag.Bool("v", false, "Log debug output")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if flag.NArg() != 1 {
		fmt.Println("Usage: thumbexport [-o <dir>] [-config <file>] [-v] <project.thumbproj>")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	level := cfg.Level()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, flag.Arg(0), *out, logger); err != nil {
		fmt.Fprintf(os.Stderr, "thumbexport: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, projectPath, outDir string, logger *slog.Logger) error {
	f, err := project.Load(projectPath)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.ExportDir
	}

	loader := assets.NewLoader()
	loader.Timeout = cfg.AssetTimeout
	loader.Logger = logger

	registry := fonts.NewRegistry(logger)
	if len(cfg.Fonts) > 0 {
		registry.LoadAsync(ctx, cfg.Fonts)
	} else {
		registry.MarkReady()
	}

	renderer := render.New(loader, registry, logger)
	renderer.SetFontTimeout(cfg.FontTimeout)

	res, err := export.New(renderer, logger).Export(ctx, f.Document, outDir)
	if err != nil && !errors.Is(err, export.ErrAllLayersFailed) {
		return err
	}
	fmt.Println(res.Path)
	if rerr := res.Report.Err(); rerr != nil {
		logger.Warn("export incomplete", "error", rerr)
	}
	return err
}
