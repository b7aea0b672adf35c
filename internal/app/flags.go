package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/r3labs/diff/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/alanbriolat/opera-archiver"
)

const envPrefix = "OPERA_"

var ErrFlagAfterArgs = errors.New("flags must come before positional arguments")

func env(name string) []string {
	return []string{envPrefix + name}
}

// CommonFlags are the browser, downloader and logging flags shared by every command. grace is the provider's default
// wait after navigation.
func CommonFlags(grace time.Duration) []cli.Flag {
	d := opera_archiver.DefaultConfig
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable debug logging",
			EnvVars: env("VERBOSE"),
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "find and inspect the stream, but don't download it",
			EnvVars: env("DRY_RUN"),
		},
		&cli.BoolFlag{
			Name:    "headless",
			Value:   d.Headless,
			Usage:   "hide the browser window",
			EnvVars: env("HEADLESS"),
		},
		&cli.StringFlag{
			Name:    "channel",
			Value:   d.BrowserChannel,
			Usage:   "use an installed browser `CHANNEL` (e.g. chrome, msedge) instead of bundled Chromium",
			EnvVars: env("BROWSER_CHANNEL"),
		},
		&cli.StringFlag{
			Name:    "profile",
			Value:   d.ProfileDir,
			Usage:   "persistent browser profile `DIR`, so a login carries over between runs",
			EnvVars: env("PROFILE"),
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Value:   d.NavigationTimeout,
			Usage:   "how long to wait for the page to load",
			EnvVars: env("TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    "grace",
			Value:   grace,
			Usage:   "how long to keep watching for the stream after the page loads",
			EnvVars: env("GRACE"),
		},
		&cli.DurationFlag{
			Name:    "http-timeout",
			Value:   d.HTTPTimeout,
			Usage:   "timeout for API requests",
			EnvVars: env("HTTP_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:    "yt-dlp",
			Value:   d.YtDlpPath,
			Usage:   "path to the yt-dlp `EXECUTABLE` (default: search PATH)",
			EnvVars: env("YTDLP"),
		},
		&cli.BoolFlag{
			Name:    "install-yt-dlp",
			Value:   d.InstallYtDlp,
			Usage:   "download yt-dlp if it isn't already available",
			EnvVars: env("INSTALL_YTDLP"),
		},
		&cli.StringFlag{
			Name:    "format",
			Value:   d.Format,
			Usage:   "yt-dlp format `SELECTOR`",
			EnvVars: env("FORMAT"),
		},
		&cli.StringFlag{
			Name:    "container",
			Value:   d.MergeFormat,
			Usage:   "container `FORMAT` to merge streams into",
			EnvVars: env("CONTAINER"),
		},
		&cli.BoolFlag{
			Name:    "no-progress",
			Usage:   "don't show a download progress bar",
			EnvVars: env("NO_PROGRESS"),
		},
		&cli.BoolFlag{
			Name:    "no-probe",
			Usage:   "don't inspect the manifest on a dry run",
			EnvVars: env("NO_PROBE"),
		},
	}
}

// ApplyCommonFlags copies the values of CommonFlags into cfg.
func ApplyCommonFlags(c *cli.Context, cfg *opera_archiver.Config) {
	cfg.DryRun = c.Bool("dry-run")
	cfg.Headless = c.Bool("headless")
	cfg.BrowserChannel = c.String("channel")
	cfg.ProfileDir = c.String("profile")
	cfg.NavigationTimeout = c.Duration("timeout")
	cfg.Grace = c.Duration("grace")
	cfg.HTTPTimeout = c.Duration("http-timeout")
	cfg.YtDlpPath = c.String("yt-dlp")
	cfg.InstallYtDlp = c.Bool("install-yt-dlp")
	cfg.Format = c.String("format")
	cfg.MergeFormat = c.String("container")
	cfg.ProgressBar = !c.Bool("no-progress")
	cfg.ProbeManifest = !c.Bool("no-probe")
}

// CheckArgs rejects positional arguments that look like flags. Flag parsing stops at the first positional argument, so
// "Tosca --dry-run" would otherwise take "--dry-run" as an output directory.
func CheckArgs(args []string) error {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			return fmt.Errorf("%w: %s", ErrFlagAfterArgs, a)
		}
	}
	return nil
}

// LogConfig logs every setting that differs from the defaults.
func LogConfig(logger *zap.SugaredLogger, cfg opera_archiver.Config) {
	changes, err := diff.Diff(opera_archiver.DefaultConfig, cfg)
	if err != nil {
		logger.Errorf("failed to diff config against defaults: %v", err)
		return
	}
	for _, change := range changes {
		logger.Debugf("config %v: %#v -> %#v", strings.Join(change.Path, "."), change.From, change.To)
	}
}
