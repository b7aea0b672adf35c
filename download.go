package opera_archiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrManifestNotFound is returned by Pipeline.Run when the detail page never requested a stream manifest.
var ErrManifestNotFound = errors.New("no manifest URL found")

// An Observer watches a page load for the first request URL accepted by match.
type Observer interface {
	FindManifest(ctx context.Context, pageURL string, match func(string) bool) (string, error)
}

// A Fetcher downloads and muxes the stream at manifestURL into dir/stem.<ext>.
type Fetcher interface {
	Fetch(ctx context.Context, manifestURL string, dir string, stem string) error
}

// A Prober summarises a manifest without downloading it.
type Prober interface {
	Probe(ctx context.Context, manifestURL string, w io.Writer) error
}

// Pipeline runs the resolve, observe, name and fetch stages for one input.
type Pipeline struct {
	Registry *ProviderRegistry
	Observer Observer
	Fetcher  Fetcher
	// Prober is optional, and only used for dry runs.
	Prober Prober
	DryRun bool
	// Out receives human-readable output; defaults to os.Stdout.
	Out io.Writer
	// Container is the extension yt-dlp is asked to merge into, used only for reporting the output file.
	Container string
}

// Run resolves in with the named provider and downloads the performance into outputDir. An empty providerName lets
// the registry pick the provider. Stages run strictly in order, and a failure in any stage stops the run.
func (p *Pipeline) Run(ctx context.Context, providerName string, in Input, outputDir string) error {
	logger := Logger(ctx).Sugar()
	out := p.out()

	match, err := p.match(providerName, in)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	logger.Debugf("Resolving %v with %v", match.Source, match.ProviderName)
	resolved, err := match.Source.Recon(ctx)
	if err != nil {
		return err
	}

	if d, ok := resolved.(Describer); ok {
		d.Describe(out)
	}
	stem := resolved.Filename()
	if p.Container != "" {
		logger.Infof("Output file: %s.%s", stem, p.Container)
	} else {
		logger.Infof("Output file: %s", stem)
	}

	manifestURL, err := p.Observer.FindManifest(ctx, resolved.URL(), resolved.IsManifest)
	if err != nil {
		if errors.Is(err, ErrManifestNotFound) && match.LoginHint != "" {
			return fmt.Errorf("%w: %s", err, match.LoginHint)
		}
		return err
	}
	logger.Debugf("Manifest: %s", manifestURL)

	if p.DryRun {
		fmt.Fprintf(out, "Stream: %s\n", manifestURL)
		if p.Prober != nil {
			if err := p.Prober.Probe(ctx, manifestURL, out); err != nil {
				logger.Warnf("Failed to inspect manifest: %v", err)
			}
		}
		return nil
	}

	logger.Infof("Downloading: %s", resolved.Info().Title)
	if err := p.Fetcher.Fetch(ctx, manifestURL, outputDir, stem); err != nil {
		return err
	}
	fmt.Fprintln(out, "Done!")
	return nil
}

func (p *Pipeline) match(providerName string, in Input) (*Match, error) {
	if providerName == "" {
		return p.Registry.Match(in)
	}
	return p.Registry.MatchWith(providerName, in)
}

func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}
