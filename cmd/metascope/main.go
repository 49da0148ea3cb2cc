package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/metascope/internal/config"
	"github.com/aleister1102/metascope/internal/explorer"
	"github.com/aleister1102/metascope/internal/history"
	"github.com/aleister1102/metascope/internal/logger"
	"github.com/aleister1102/metascope/internal/renderer"
	"github.com/aleister1102/metascope/internal/resolver"
	"github.com/aleister1102/metascope/internal/rslimiter"
	"github.com/aleister1102/metascope/internal/scraper"
)

func main() {
	flags := ParseFlags()

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}

	if flags.ScraperMode != "" {
		gCfg.ScraperConfig.Mode = flags.ScraperMode
		zLogger.Info().Str("mode", gCfg.ScraperConfig.Mode).Msg("Scraper mode overridden by command line flag")
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}

	rend, err := renderer.NewRodRenderer(&gCfg.RendererConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize page renderer")
	}
	defer func() {
		if err := rend.Close(); err != nil {
			zLogger.Warn().Err(err).Msg("Renderer shutdown error")
		}
	}()

	var scr scraper.Scraper
	switch gCfg.ScraperConfig.Mode {
	case config.ScraperModeStatic:
		scr = scraper.NewStaticScraper(rend, zLogger)
	default:
		scr = scraper.NewScriptScraper(rend, &gCfg.ScraperConfig, zLogger)
	}

	limiter := rslimiter.NewLimiter(&gCfg.ResourceLimiterConfig, zLogger)
	res := resolver.NewResolver(&gCfg.ResolverConfig, limiter, zLogger)

	var visitStore *history.Store
	if gCfg.HistoryConfig.Enabled {
		visitStore, err = history.NewStore(&gCfg.HistoryConfig, zLogger)
		if err != nil {
			zLogger.Error().Err(err).Msg("Failed to open visit history store, continuing without history")
			visitStore = nil
		} else {
			defer func() {
				if err := visitStore.Close(); err != nil {
					zLogger.Warn().Err(err).Msg("History store shutdown error")
				}
			}()
		}
	}

	svc := explorer.NewService(rend, scr, res, visitStore, &gCfg.ExplorerConfig, &gCfg.WatcherConfig, zLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serviceDone := make(chan struct{})
	go func() {
		defer close(serviceDone)
		svc.Run(ctx)
	}()

	snapshots, unsubscribe := svc.Store().Subscribe()
	defer unsubscribe()
	go func() {
		for snapshot := range snapshots {
			zLogger.Info().
				Str("url", snapshot.SourceURL.String()).
				Str("title", snapshot.Title).
				Str("host", snapshot.Host).
				Int("icons", len(snapshot.Icons)).
				Msg("Metadata snapshot")
		}
	}()

	if err := svc.Navigate(ctx, flags.StartURL); err != nil {
		zLogger.Fatal().Err(err).Str("url", flags.StartURL).Msg("Failed to load start URL")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zLogger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
		<-serviceDone
	case <-serviceDone:
		zLogger.Info().Msg("Explorer service exited")
	}
}
