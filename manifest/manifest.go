// Package manifest inspects HLS playlists so that a dry run can show what yt-dlp would be choosing from.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/grafov/m3u8"

	"github.com/alanbriolat/opera-archiver/util"
)

var ErrUnknownPlaylist = errors.New("not a master or media playlist")

type Variant struct {
	URI        string
	Bandwidth  uint32
	Resolution string
	Codecs     string
}

// Summary describes a playlist. Exactly one of Variants (master playlist) or Segments (media playlist) is set.
type Summary struct {
	Master   bool
	Variants []Variant

	Segments int
	Duration time.Duration
	// Closed is true if the media playlist has an end tag, i.e. it is VOD rather than live.
	Closed bool
}

// Best returns the variant with the highest bandwidth, or false if there are none.
func (s *Summary) Best() (Variant, bool) {
	if len(s.Variants) == 0 {
		return Variant{}, false
	}
	best := s.Variants[0]
	for _, v := range s.Variants[1:] {
		if v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	return best, true
}

// Write prints the summary in a human-readable form.
func (s *Summary) Write(w io.Writer) {
	if s.Master {
		fmt.Fprintf(w, "Variants:   %d\n", len(s.Variants))
		for _, v := range s.Variants {
			res := v.Resolution
			if res == "" {
				res = "audio"
			}
			fmt.Fprintf(w, "  %-10s  %12s  %s\n", res, humanize.SI(float64(v.Bandwidth), "bit/s"), v.Codecs)
		}
		if best, ok := s.Best(); ok {
			fmt.Fprintf(w, "Best:       %s\n", best.URI)
		}
		return
	}
	kind := "live"
	if s.Closed {
		kind = "vod"
	}
	fmt.Fprintf(w, "Segments:   %d (%s)\n", s.Segments, kind)
	fmt.Fprintf(w, "Duration:   %s\n", s.Duration.Round(time.Second))
}

// Parse decodes a playlist, resolving variant URIs relative to base if base is non-nil.
func Parse(r io.Reader, base *url.URL) (*Summary, error) {
	playlist, listType, err := m3u8.DecodeFrom(r, false)
	if err != nil {
		return nil, fmt.Errorf("failed to decode playlist: %w", err)
	}

	switch listType {
	case m3u8.MASTER:
		master := playlist.(*m3u8.MasterPlaylist)
		s := &Summary{Master: true}
		for _, v := range master.Variants {
			if v == nil {
				continue
			}
			s.Variants = append(s.Variants, Variant{
				URI:        resolve(base, v.URI),
				Bandwidth:  v.Bandwidth,
				Resolution: v.Resolution,
				Codecs:     v.Codecs,
			})
		}
		sort.SliceStable(s.Variants, func(i, j int) bool {
			return s.Variants[i].Bandwidth > s.Variants[j].Bandwidth
		})
		return s, nil
	case m3u8.MEDIA:
		media := playlist.(*m3u8.MediaPlaylist)
		s := &Summary{Closed: media.Closed}
		for _, seg := range media.Segments {
			if seg == nil {
				continue
			}
			s.Segments++
			s.Duration += time.Duration(seg.Duration * float64(time.Second))
		}
		return s, nil
	default:
		return nil, ErrUnknownPlaylist
	}
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// Prober fetches manifests over HTTP and prints their summary.
type Prober struct {
	Client *http.Client
}

func (p *Prober) Fetch(ctx context.Context, manifestURL string) (*Summary, error) {
	base, err := url.Parse(manifestURL)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest URL: %w", err)
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &util.HTTPStatusError{URL: manifestURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return Parse(resp.Body, base)
}

func (p *Prober) Probe(ctx context.Context, manifestURL string, w io.Writer) error {
	s, err := p.Fetch(ctx, manifestURL)
	if err != nil {
		return err
	}
	s.Write(w)
	return nil
}
