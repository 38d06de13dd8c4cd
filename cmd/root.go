// Package cmd holds the covermatch command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ryanseay/covermatch/config"
	"github.com/ryanseay/covermatch/internal/cache"
	"github.com/ryanseay/covermatch/pkg/covermatch"
	"github.com/ryanseay/covermatch/pkg/covermatch/audio"
	"github.com/ryanseay/covermatch/pkg/covermatch/download"
	"github.com/ryanseay/covermatch/pkg/covermatch/library"
	"github.com/ryanseay/covermatch/pkg/covermatch/transcribe"
	"github.com/ryanseay/covermatch/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "covermatch",
	Short: "covermatch identifies which reference recording a cover is based on",
	Long: `covermatch downloads a cover performance, extracts harmonic audio
features and a lyric transcript, and ranks it against a fixed reference
library to find the original recording.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and the logger shared by every subcommand.
func bootstrap() (*config.Config, *zap.SugaredLogger) {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, OutputPath: cfg.LogFile})
	return cfg, logger.Get()
}

// loadLibrary builds the immutable reference library from whichever store
// the configuration points at. A load failure is fatal: the service cannot
// answer queries without a library.
func loadLibrary(cfg *config.Config, log *zap.SugaredLogger) *covermatch.Library {
	var (
		lib *covermatch.Library
		err error
	)
	if cfg.LibraryDBPath != "" {
		lib, err = library.LoadLibrary(library.SQLiteLoader{}, cfg.LibraryDBPath)
	} else {
		lib, err = library.LoadLibrary(library.JSONLoader{}, cfg.LibraryPath)
	}
	if err != nil {
		log.Fatalf("failed to load reference library: %v", err)
	}
	log.Infof("loaded %d reference tracks", lib.Len())
	return lib
}

// buildPipeline assembles the production pipeline with real collaborators.
func buildPipeline(cfg *config.Config, log *zap.SugaredLogger) *covermatch.Pipeline {
	lib := loadLibrary(cfg, log)

	pipeline, err := covermatch.NewPipeline(
		covermatch.WithDownloader(download.NewYTDLPDownloader(cfg.TempDir)),
		covermatch.WithExtractor(audio.NewExtractor(cfg.TempDir)),
		covermatch.WithTranscriber(transcribe.NewElevenLabsTranscriber(cfg.ElevenLabsAPIKey)),
		covermatch.WithLibrary(lib),
		covermatch.WithLogger(log),
		covermatch.WithStageTimeouts(cfg.DownloadTimeout, cfg.ExtractTimeout, cfg.TranscribeTimeout, cfg.MatchTimeout),
	)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}
	return pipeline
}

// connectCache connects the redis result cache, or returns nil when caching
// is not configured or redis is unreachable.
func connectCache(cfg *config.Config, log *zap.SugaredLogger) *cache.ResultCache {
	if cfg.RedisAddr == "" {
		return nil
	}
	results, err := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, log)
	if err != nil {
		log.Warnf("result cache disabled: %v", err)
		return nil
	}
	log.Infof("result cache connected at %s", cfg.RedisAddr)
	return results
}
