// Package fetch hands a stream manifest to yt-dlp, which picks the best renditions and muxes them into one file.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alanbriolat/opera-archiver/util"
)

const (
	DefaultFormat      = "bestvideo+bestaudio/best"
	DefaultMergeFormat = "mp4"
)

var ErrEmptyStem = errors.New("empty output filename")

// Job is one invocation of the download tool.
type Job struct {
	ManifestURL string
	// Output is a yt-dlp output template, ending in ".%(ext)s".
	Output      string
	Format      string
	MergeFormat string
}

// A Tool runs a Job to completion, returning an error if the download failed.
type Tool interface {
	Run(ctx context.Context, job Job) error
}

type fetcherConfig struct {
	format      string
	mergeFormat string
}

type Option func(*fetcherConfig)

// WithFormat overrides the yt-dlp format selector.
func WithFormat(format string) Option {
	return func(c *fetcherConfig) {
		if format != "" {
			c.format = format
		}
	}
}

// WithMergeFormat overrides the container the selected streams are muxed into.
func WithMergeFormat(container string) Option {
	return func(c *fetcherConfig) {
		if container != "" {
			c.mergeFormat = container
		}
	}
}

type Fetcher struct {
	tool   Tool
	config fetcherConfig
	log    *zap.SugaredLogger
}

func New(tool Tool, opts ...Option) *Fetcher {
	config := fetcherConfig{
		format:      DefaultFormat,
		mergeFormat: DefaultMergeFormat,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &Fetcher{
		tool:   tool,
		config: config,
		log:    zap.S().Named("fetch"),
	}
}

// MergeFormat is the extension the output file will have.
func (f *Fetcher) MergeFormat() string {
	return f.config.mergeFormat
}

// Fetch downloads manifestURL to dir/stem.<ext>, expanding a leading "~" in dir. It blocks until the tool exits.
func (f *Fetcher) Fetch(ctx context.Context, manifestURL string, dir string, stem string) error {
	if strings.TrimSpace(stem) == "" {
		return ErrEmptyStem
	}
	dir, err := util.ExpandHome(dir)
	if err != nil {
		return fmt.Errorf("failed to expand output directory: %w", err)
	}
	job := Job{
		ManifestURL: manifestURL,
		Output:      OutputTemplate(dir, stem),
		Format:      f.config.format,
		MergeFormat: f.config.mergeFormat,
	}
	f.log.Debugf("Running download: %+v", job)
	if err := f.tool.Run(ctx, job); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	return nil
}

// OutputTemplate is the yt-dlp output template for dir/stem, leaving the extension for yt-dlp to fill in.
func OutputTemplate(dir string, stem string) string {
	return filepath.Join(dir, stem+".%(ext)s")
}
