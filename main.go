// Package main provides the entry point for the Thumbnail Studio editor.
package main

import (
	"context"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"thumb-studio/internal/app"
	"thumb-studio/internal/assets"
	"thumb-studio/internal/config"
	"thumb-studio/internal/export"
	"thumb-studio/internal/fonts"
	"thumb-studio/internal/metrics"
	"thumb-studio/internal/render"
	"thumb-studio/internal/version"
	"thumb-studio/ui/mainwindow"
)

const appID = "io.thumbstudio.editor"

func main() {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	logger.Info("starting", "version", version.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server", "error", err)
			}
		}()
	}

	loader := assets.NewLoader()
	loader.Timeout = cfg.AssetTimeout
	loader.Logger = logger
	loader.Observe = m.ObserveAsset

	registry := fonts.NewRegistry(logger)
	if len(cfg.Fonts) > 0 {
		registry.LoadAsync(ctx, cfg.Fonts)
	} else {
		registry.MarkReady()
	}

	renderer := render.New(loader, registry, logger)
	renderer.SetFontTimeout(cfg.FontTimeout)

	exporter := export.New(renderer, logger)
	exporter.Metrics = m

	state := app.NewState(logger)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.StudioTheme{})

	win := mainwindow.New(fyneApp, state, mainwindow.Deps{
		Config:   cfg,
		Loader:   loader,
		Renderer: renderer,
		Exporter: exporter,
		Metrics:  m,
		Logger:   logger,
	})

	if len(os.Args) > 1 {
		if err := state.LoadProject(os.Args[1]); err != nil {
			logger.Error("load project", "path", os.Args[1], "error", err)
		}
	} else {
		win.RestoreLastProject()
	}
	state.SetModified(false)

	win.ShowAndRun()
}
