package opera_archiver

import (
	"time"
)

// Config holds everything a run can be told from outside: endpoints, browser behaviour and downloader options.
type Config struct {
	OutputDir string

	MetSearchAPI string
	MetPageBase  string
	WSOAPIBase   string
	WSOPageBase  string
	HTTPTimeout  time.Duration

	Headless          bool
	BrowserChannel    string
	ProfileDir        string
	NavigationTimeout time.Duration
	// Grace is how long to keep watching after the page settles.
	Grace time.Duration

	YtDlpPath     string
	InstallYtDlp  bool
	Format        string
	MergeFormat   string
	ProgressBar   bool
	DryRun        bool
	ProbeManifest bool
}

var DefaultConfig = Config{
	OutputDir: "~/Downloads",

	MetSearchAPI: "https://middleware.ondemand.metopera.org/client/search/",
	MetPageBase:  "https://ondemand.metopera.org/performance/detail/",
	WSOAPIBase:   "https://live.performa.intio.tv/api/v1",
	WSOPageBase:  "https://play.wiener-staatsoper.at/event",
	HTTPTimeout:  30 * time.Second,

	Headless:          false,
	NavigationTimeout: 30 * time.Second,
	Grace:             5 * time.Second,

	Format:        "bestvideo+bestaudio/best",
	MergeFormat:   "mp4",
	ProgressBar:   true,
	ProbeManifest: true,
}
