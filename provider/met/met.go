// Package met resolves Met Opera On Demand performances through the search API used by ondemand.metopera.org.
package met

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/alanbriolat/opera-archiver"
	"github.com/alanbriolat/opera-archiver/util"
)

const (
	Name             = "met"
	Domain           = "metopera.org"
	ManifestMarker   = "master.m3u8"
	PlaceholderTitle = "met-opera"
	LoginHint        = "Make sure you're logged in to Met Opera in the browser window."
	DefaultGrace     = 5 * time.Second
)

type Config struct {
	// SearchAPI is the search endpoint, to which the escaped query is appended.
	SearchAPI string
	// PageBase is the detail page prefix, to which the performance ID is appended.
	PageBase string
	Client   *http.Client
}

func NewConfig(cfg opera_archiver.Config) Config {
	return Config{
		SearchAPI: cfg.MetSearchAPI,
		PageBase:  cfg.MetPageBase,
		Client:    &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (c Config) Match(in opera_archiver.Input) (opera_archiver.Source, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if util.IsURL(query) {
		if !util.HostMatches(query, Domain, c.PageBase) {
			return nil, fmt.Errorf("not a Met Opera URL: %s", query)
		}
		return &urlSource{pageURL: query}, nil
	}
	return &querySource{config: c, query: query, year: in.Year}, nil
}

func (c Config) Provider() opera_archiver.Provider {
	return opera_archiver.Provider{
		Name:      Name,
		Match:     c.Match,
		LoginHint: LoginHint,
	}
}

type searchResult struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PerformanceDate string `json:"performanceDate"`
}

type searchResults struct {
	Results []searchResult `json:"results"`
}

type searchResponse struct {
	Video searchResults `json:"video"`
	Audio searchResults `json:"audio"`
}

// Search queries the search API and returns the video results in year (any year if empty), or the audio results in
// year if there are no such videos. Counts are taken before the year filter.
func (c Config) Search(ctx context.Context, query string, year string) ([]opera_archiver.Performance, opera_archiver.MediaKind, Counts, error) {
	var resp searchResponse
	if err := util.GetJSON(ctx, c.Client, c.SearchAPI+url.PathEscape(query), &resp); err != nil {
		return nil, "", Counts{}, fmt.Errorf("search failed: %w", err)
	}
	counts := Counts{Video: len(resp.Video.Results), Audio: len(resp.Audio.Results)}
	kind := opera_archiver.MediaVideo
	performances := inYear(resp.Video.Results, kind, year)
	if len(performances) == 0 {
		kind = opera_archiver.MediaAudio
		performances = inYear(resp.Audio.Results, kind, year)
	}
	return performances, kind, counts, nil
}

func inYear(results []searchResult, kind opera_archiver.MediaKind, year string) []opera_archiver.Performance {
	performances := make([]opera_archiver.Performance, 0, len(results))
	for _, r := range results {
		p := opera_archiver.Performance{
			ID:    r.ID,
			Title: r.Name,
			Date:  r.PerformanceDate,
			Kind:  kind,
		}
		if p.InYear(year) {
			performances = append(performances, p)
		}
	}
	return performances
}

type Counts struct {
	Video int
	Audio int
}

func (n Counts) Total() int {
	return n.Video + n.Audio
}

// mostRecent picks the latest performance, keeping API order among equal dates.
func mostRecent(performances []opera_archiver.Performance) (opera_archiver.Performance, bool) {
	if len(performances) == 0 {
		return opera_archiver.Performance{}, false
	}
	candidates := append([]opera_archiver.Performance(nil), performances...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Date > candidates[j].Date
	})
	return candidates[0], true
}

type querySource struct {
	config Config
	query  string
	year   string
}

func (s *querySource) String() string {
	if s.year != "" {
		return fmt.Sprintf("%q (%s)", s.query, s.year)
	}
	return fmt.Sprintf("%q", s.query)
}

func (s *querySource) Recon(ctx context.Context) (opera_archiver.ResolvedSource, error) {
	logger := opera_archiver.Logger(ctx).Sugar()
	performances, kind, counts, err := s.config.Search(ctx, s.query, s.year)
	if err != nil {
		return nil, err
	}
	best, ok := mostRecent(performances)
	if !ok {
		if s.year != "" {
			return nil, fmt.Errorf("%w for '%s' in %s", opera_archiver.ErrNotFound, s.query, s.year)
		}
		return nil, fmt.Errorf("%w for '%s'", opera_archiver.ErrNotFound, s.query)
	}

	date := best.Date
	if date == "" {
		date = "?"
	}
	logger.Infof("Found: %s (%s) [%s]", best.Title, date, strings.ToUpper(kind.String()))
	if counts.Total() > 1 {
		logger.Infof("  (%d video, %d audio versions available, picking most recent %s)", counts.Video, counts.Audio, kind)
	}

	return &resolvedSource{
		pageURL:     s.config.PageBase + best.ID,
		performance: best,
	}, nil
}

type urlSource struct {
	pageURL string
}

func (s *urlSource) String() string {
	return s.pageURL
}

// Recon doesn't call the search API; the page URL alone carries no usable metadata.
func (s *urlSource) Recon(_ context.Context) (opera_archiver.ResolvedSource, error) {
	return &resolvedSource{
		pageURL:     s.pageURL,
		performance: opera_archiver.Performance{Title: PlaceholderTitle, Kind: opera_archiver.MediaVideo},
	}, nil
}

type resolvedSource struct {
	pageURL     string
	performance opera_archiver.Performance
}

func (s *resolvedSource) URL() string {
	return s.pageURL
}

func (s *resolvedSource) Info() *opera_archiver.Performance {
	return &s.performance
}

func (s *resolvedSource) Filename() string {
	return opera_archiver.Stem(&s.performance, opera_archiver.AllowList)
}

func (s *resolvedSource) IsManifest(requestURL string) bool {
	return strings.Contains(requestURL, ManifestMarker)
}

func (s *resolvedSource) String() string {
	return fmt.Sprintf("%s [%s]", s.performance.Title, s.pageURL)
}
