// Package wso resolves Wiener Staatsoper streams using the performa event API, which needs no authentication and
// carries full cast information.
package wso

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanbriolat/opera-archiver"
	"github.com/alanbriolat/opera-archiver/util"
)

const (
	Name           = "wso"
	Domain         = "wiener-staatsoper.at"
	ManifestMarker = ".m3u8"
	LoginHint      = "Make sure you're logged in in the browser window."
	DefaultGrace   = 6 * time.Second
)

var eventIDPattern = regexp.MustCompile(`/event/([0-9a-f-]{36})`)

type Config struct {
	Client Client
	// PageBase is the event page prefix, e.g. "https://play.wiener-staatsoper.at/event".
	PageBase string
}

func NewConfig(cfg opera_archiver.Config) Config {
	return Config{
		Client: Client{
			APIBase: cfg.WSOAPIBase,
			HTTP:    &http.Client{Timeout: cfg.HTTPTimeout},
		},
		PageBase: cfg.WSOPageBase,
	}
}

func (c Config) Match(in opera_archiver.Input) (opera_archiver.Source, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if util.IsURL(query) {
		if !util.HostMatches(query, Domain, c.PageBase) {
			return nil, fmt.Errorf("not a Wiener Staatsoper URL: %s", query)
		}
		return &urlSource{config: c, pageURL: query}, nil
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

// EventID extracts and validates the event UUID from an event page URL.
func EventID(pageURL string) (string, error) {
	id, err := util.ExtractFromPath(pageURL, eventIDPattern)
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid event ID %q: %w", id, err)
	}
	return id, nil
}

// Search returns every event whose title contains query (case-insensitive) and whose date starts with year (if set),
// most recent first.
func (c Config) Search(ctx context.Context, query string, year string) ([]opera_archiver.Performance, error) {
	events, err := c.Client.Events(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var matches []opera_archiver.Performance
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Title), q) && e.InYear(year) {
			matches = append(matches, e)
		}
	}
	sortByDateDesc(matches)
	return matches, nil
}

// List returns every event in year (all events if year is empty), most recent first.
func (c Config) List(ctx context.Context, year string) ([]opera_archiver.Performance, error) {
	events, err := c.Client.Events(ctx)
	if err != nil {
		return nil, err
	}
	var matches []opera_archiver.Performance
	for _, e := range events {
		if e.InYear(year) {
			matches = append(matches, e)
		}
	}
	sortByDateDesc(matches)
	return matches, nil
}

func sortByDateDesc(performances []opera_archiver.Performance) {
	sort.SliceStable(performances, func(i, j int) bool {
		return performances[i].Date > performances[j].Date
	})
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
	matches, err := s.config.Search(ctx, s.query, s.year)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		if s.year != "" {
			return nil, fmt.Errorf("%w for '%s' in %s", opera_archiver.ErrNotFound, s.query, s.year)
		}
		return nil, fmt.Errorf("%w for '%s'", opera_archiver.ErrNotFound, s.query)
	}
	if len(matches) > 1 {
		logger.Infof("Found %d matches, picking most recent:", len(matches))
		for i, m := range matches {
			if i == 5 {
				break
			}
			logger.Infof("  %s  %s  [%s]", m.Day(), m.Title, m.ID)
		}
	}
	best := matches[0]
	return &resolvedSource{
		pageURL:     util.JoinPath(s.config.PageBase, best.ID),
		performance: best,
	}, nil
}

type urlSource struct {
	config  Config
	pageURL string
}

func (s *urlSource) String() string {
	return s.pageURL
}

// Recon looks up the event embedded in the URL so the filename can still be descriptive. A URL without an event ID is
// used as-is with no metadata.
func (s *urlSource) Recon(ctx context.Context) (opera_archiver.ResolvedSource, error) {
	logger := opera_archiver.Logger(ctx).Sugar()
	resolved := &resolvedSource{pageURL: s.pageURL}
	id, err := EventID(s.pageURL)
	if err != nil {
		logger.Warnf("No event ID in %s, continuing without metadata: %v", s.pageURL, err)
		return resolved, nil
	}
	if resolved.performance, err = s.config.Client.Event(ctx, id); err != nil {
		return nil, err
	}
	return resolved, nil
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
	return opera_archiver.Stem(&s.performance, opera_archiver.DenyList)
}

func (s *resolvedSource) IsManifest(requestURL string) bool {
	return strings.Contains(requestURL, ManifestMarker)
}

func (s *resolvedSource) Describe(w io.Writer) {
	DescribePerformance(w, &s.performance)
}

func (s *resolvedSource) String() string {
	return fmt.Sprintf("%s [%s]", s.performance.Title, s.pageURL)
}
