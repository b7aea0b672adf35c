// Package app holds what the command-line programs share: logging, flags and assembling the download pipeline.
package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alanbriolat/opera-archiver"
	"github.com/alanbriolat/opera-archiver/fetch"
	"github.com/alanbriolat/opera-archiver/manifest"
	"github.com/alanbriolat/opera-archiver/observer"
	"github.com/alanbriolat/opera-archiver/providers"
	"github.com/alanbriolat/opera-archiver/util"
)

// NewLogger builds the development logger used by all commands, at info level until the returned level is changed.
func NewLogger() (*zap.Logger, zap.AtomicLevel, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.DisableStacktrace = true
	logger, err := config.Build()
	if err != nil {
		return nil, config.Level, err
	}
	return logger, config.Level, nil
}

// Main runs app until it finishes or the process is interrupted, exiting non-zero if it returns an error.
func Main(app *cli.App) {
	logger, level, err := NewLogger()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = opera_archiver.WithLogger(ctx, logger)

	before := app.Before
	app.Before = func(c *cli.Context) error {
		if c.Bool("verbose") {
			level.SetLevel(zap.DebugLevel)
		}
		if before != nil {
			return before(c)
		}
		return nil
	}
	app.HideHelpCommand = true

	result := make(chan error, 1)
	go func() {
		result <- app.RunContext(ctx, os.Args)
	}()

	select {
	case err = <-result:
	case <-ctx.Done():
		stop()
		logger.Info("Exiting gracefully...")
		err = <-result
	}
	if err != nil {
		logger.Fatal(err.Error())
	}
}

// ProviderFor returns the provider Pipeline.Run should use for query: name for a search, or "" for a URL so the link's
// site decides.
func ProviderFor(query string, name string) string {
	if util.IsURL(query) {
		return ""
	}
	return name
}

// NewPipeline assembles the resolve, observe and fetch stages from cfg.
func NewPipeline(ctx context.Context, cfg opera_archiver.Config) (*opera_archiver.Pipeline, error) {
	logger := opera_archiver.Logger(ctx).Sugar()

	executable := cfg.YtDlpPath
	if cfg.InstallYtDlp {
		installed, err := fetch.Install(ctx)
		if err != nil {
			return nil, err
		}
		logger.Debugf("Using yt-dlp at %s", installed)
		if executable == "" {
			executable = installed
		}
	}

	launcher := &observer.Playwright{
		Headless:   cfg.Headless,
		Channel:    cfg.BrowserChannel,
		ProfileDir: cfg.ProfileDir,
	}
	pipeline := &opera_archiver.Pipeline{
		Registry: providers.NewRegistry(cfg),
		Observer: observer.New(launcher,
			observer.WithNavigationTimeout(cfg.NavigationTimeout),
			observer.WithGrace(cfg.Grace),
		),
		Fetcher: fetch.New(&fetch.YtDlp{Executable: executable, Progress: cfg.ProgressBar},
			fetch.WithFormat(cfg.Format),
			fetch.WithMergeFormat(cfg.MergeFormat),
		),
		DryRun:    cfg.DryRun,
		Container: cfg.MergeFormat,
	}
	if cfg.ProbeManifest {
		pipeline.Prober = &manifest.Prober{Client: &http.Client{Timeout: cfg.HTTPTimeout}}
	}
	return pipeline, nil
}
