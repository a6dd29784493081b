// Package main provides the entry point for the Sketch Critic preview app.
package main

import (
	"os"
	"time"

	"sketch-critic/internal/app"
	"sketch-critic/internal/feedback"
	"sketch-critic/internal/gallery"
	"sketch-critic/internal/raster"
	"sketch-critic/internal/version"
	"sketch-critic/ui/mainwindow"
	"sketch-critic/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const appID = "io.sketchcritic.preview"

// galleryPollInterval is how often the gallery index is checked for changes
// made by sketchctl.
const galleryPollInterval = 2 * time.Second

func main() {
	cfg := app.LoadConfig()
	logger := cfg.NewLogger("sketch-critic", os.Stderr)
	logger.Info("starting", "version", version.Version, "commit", version.GitCommit)

	backend := raster.NewSoftware()
	state := app.NewState(backend,
		app.WithLogger(logger.Named("canvas")),
		app.WithThumbnailer(raster.PreferredThumbnailer(backend)),
		app.WithDocumentSize(cfg.DocumentSize),
	)
	defer state.Close()

	critic, err := cfg.Critic(feedback.WithLogger(logger.Named("feedback")))
	if err != nil {
		logger.Warn("critique disabled", "error", err)
		critic = nil
	}

	store, err := gallery.Open(cfg.GalleryDir, logger.Named("gallery"))
	if err != nil {
		logger.Warn("gallery disabled", "dir", cfg.GalleryDir, "error", err)
		store = nil
	}

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.SketchTheme{})

	win := mainwindow.New(fyneApp, mainwindow.Deps{
		State:   state,
		Critic:  critic,
		Gallery: store,
		Prefs:   prefs.Load(),
		Logger:  logger,
	})

	// An image path on the command line is loaded into the first layer.
	if len(os.Args) > 1 {
		img, err := raster.Load(os.Args[1])
		if err == nil {
			err = state.LoadImage(img)
		}
		if err != nil {
			logger.Error("failed to load image", "path", os.Args[1], "error", err)
		}
	}

	if store != nil {
		watcher := gallery.NewWatcher(store, galleryPollInterval, win.GalleryChanged)
		watcher.Start()
		defer watcher.Stop()
	}

	win.ShowAndRun()
}
