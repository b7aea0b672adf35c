package opera_archiver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

type fakeResolved struct {
	performance Performance
	pageURL     string
}

func (r *fakeResolved) URL() string {
	return r.pageURL
}

func (r *fakeResolved) Info() *Performance {
	return &r.performance
}

func (r *fakeResolved) Filename() string {
	return Stem(&r.performance, DenyList)
}

func (r *fakeResolved) IsManifest(u string) bool {
	return strings.Contains(u, ".m3u8")
}

func (r *fakeResolved) Describe(w io.Writer) {
	fmt.Fprintf(w, "Title: %s\n", r.performance.Title)
}

type fakeSource struct {
	resolved ResolvedSource
	err      error
}

func (s *fakeSource) String() string {
	return "fake"
}

func (s *fakeSource) Recon(context.Context) (ResolvedSource, error) {
	return s.resolved, s.err
}

type fakeObserver struct {
	requests []string
	pages    []string
}

func (o *fakeObserver) FindManifest(_ context.Context, pageURL string, match func(string) bool) (string, error) {
	o.pages = append(o.pages, pageURL)
	for _, r := range o.requests {
		if match(r) {
			return r, nil
		}
	}
	return "", ErrManifestNotFound
}

type fetchCall struct {
	manifestURL, dir, stem string
}

type fakeFetcher struct {
	calls []fetchCall
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, manifestURL string, dir string, stem string) error {
	f.calls = append(f.calls, fetchCall{manifestURL, dir, stem})
	return f.err
}

type fakeProber struct {
	probed []string
	err    error
}

func (p *fakeProber) Probe(_ context.Context, manifestURL string, w io.Writer) error {
	p.probed = append(p.probed, manifestURL)
	if p.err == nil {
		fmt.Fprintln(w, "Variants:   1")
	}
	return p.err
}

type pipelineFixture struct {
	pipeline *Pipeline
	observer *fakeObserver
	fetcher  *fakeFetcher
	prober   *fakeProber
	out      *bytes.Buffer
}

func newPipelineFixture(source Source, requests ...string) *pipelineFixture {
	f := &pipelineFixture{
		observer: &fakeObserver{requests: requests},
		fetcher:  &fakeFetcher{},
		prober:   &fakeProber{},
		out:      &bytes.Buffer{},
	}
	registry := &ProviderRegistry{}
	registry.MustAdd(Provider{
		Name:      "test",
		Match:     func(Input) (Source, error) { return source, nil },
		LoginHint: "Make sure you're logged in.",
	})
	f.pipeline = &Pipeline{
		Registry:  registry,
		Observer:  f.observer,
		Fetcher:   f.fetcher,
		Prober:    f.prober,
		Out:       f.out,
		Container: "mp4",
	}
	return f
}

var luisaMiller = &fakeResolved{
	pageURL: "https://play.example.test/event/1",
	performance: Performance{
		Title: "Luisa Miller",
		Date:  "2020-06-17T19:00:00Z",
		Cast:  Cast{{Role: "Conductor", People: []string{"Marco Armiliato"}}},
	},
}

func TestPipeline_Run(t *testing.T) {
	assert := assert_.New(t)
	f := newPipelineFixture(&fakeSource{resolved: luisaMiller},
		"https://cdn.example.test/app.js",
		"https://cdn.example.test/master.m3u8",
	)

	err := f.pipeline.Run(context.Background(), "test", Input{Query: "luisa"}, "/tmp/out")
	assert.Nil(err)
	assert.Equal([]string{"https://play.example.test/event/1"}, f.observer.pages)
	assert.Equal([]fetchCall{{
		manifestURL: "https://cdn.example.test/master.m3u8",
		dir:         "/tmp/out",
		stem:        "Luisa Miller - 2020-06-17 - Marco Armiliato",
	}}, f.fetcher.calls)
	assert.Empty(f.prober.probed)
	assert.Equal("Title: Luisa Miller\nDone!\n", f.out.String())
}

func TestPipeline_Run_NotFound(t *testing.T) {
	assert := assert_.New(t)
	f := newPipelineFixture(&fakeSource{err: fmt.Errorf("%w for 'nothing'", ErrNotFound)})

	err := f.pipeline.Run(context.Background(), "test", Input{Query: "nothing"}, "/tmp/out")
	assert.ErrorIs(err, ErrNotFound)
	// Nothing after the resolver runs
	assert.Empty(f.observer.pages)
	assert.Empty(f.fetcher.calls)
	assert.Empty(f.out.String())
}

func TestPipeline_Run_NoManifest(t *testing.T) {
	assert := assert_.New(t)
	f := newPipelineFixture(&fakeSource{resolved: luisaMiller}, "https://cdn.example.test/app.js")

	err := f.pipeline.Run(context.Background(), "test", Input{Query: "luisa"}, "/tmp/out")
	assert.ErrorIs(err, ErrManifestNotFound)
	assert.ErrorContains(err, "Make sure you're logged in.")
	assert.Len(f.observer.pages, 1)
	assert.Empty(f.fetcher.calls)
	assert.NotContains(f.out.String(), "Done!")
}

func TestPipeline_Run_FetchError(t *testing.T) {
	assert := assert_.New(t)
	f := newPipelineFixture(&fakeSource{resolved: luisaMiller}, "https://cdn.example.test/master.m3u8")
	cause := errors.New("download failed: exit status 1")
	f.fetcher.err = cause

	err := f.pipeline.Run(context.Background(), "test", Input{Query: "luisa"}, "/tmp/out")
	assert.ErrorIs(err, cause)
	assert.NotContains(f.out.String(), "Done!")
}

func TestPipeline_Run_DryRun(t *testing.T) {
	assert := assert_.New(t)
	f := newPipelineFixture(&fakeSource{resolved: luisaMiller}, "https://cdn.example.test/master.m3u8")
	f.pipeline.DryRun = true

	err := f.pipeline.Run(context.Background(), "test", Input{Query: "luisa"}, "/tmp/out")
	assert.Nil(err)
	assert.Empty(f.fetcher.calls)
	assert.Equal([]string{"https://cdn.example.test/master.m3u8"}, f.prober.probed)
	assert.Equal("Title: Luisa Miller\nStream: https://cdn.example.test/master.m3u8\nVariants:   1\n", f.out.String())

	// A failed probe is only a warning
	f.prober.err = errors.New("403 Forbidden")
	f.out.Reset()
	assert.Nil(f.pipeline.Run(context.Background(), "test", Input{Query: "luisa"}, "/tmp/out"))
	assert.Equal("Title: Luisa Miller\nStream: https://cdn.example.test/master.m3u8\n", f.out.String())
}

func TestPipeline_Run_UnknownProvider(t *testing.T) {
	assert := assert_.New(t)
	f := newPipelineFixture(&fakeSource{resolved: luisaMiller})

	err := f.pipeline.Run(context.Background(), "bbc", Input{Query: "luisa"}, "/tmp/out")
	assert.ErrorIs(err, ErrUnknownProvider)
	assert.Empty(f.observer.pages)
}

func TestPipeline_Run_AnyProvider(t *testing.T) {
	assert := assert_.New(t)
	f := newPipelineFixture(nil, "https://cdn.example.test/master.m3u8")
	registry := &ProviderRegistry{}
	registry.MustAdd(Provider{
		Name:  "elsewhere",
		Match: func(Input) (Source, error) { return nil, errors.New("not an elsewhere URL") },
	})
	registry.MustAdd(Provider{
		Name:  "test",
		Match: func(Input) (Source, error) { return &fakeSource{resolved: luisaMiller}, nil },
	})
	f.pipeline.Registry = registry

	err := f.pipeline.Run(context.Background(), "", Input{Query: "https://play.example.test/event/1"}, "/tmp/out")
	assert.Nil(err)
	assert.Len(f.fetcher.calls, 1)

	// Nothing accepts the input
	f.pipeline.Registry = &ProviderRegistry{}
	f.pipeline.Registry.MustAdd(Provider{
		Name:  "elsewhere",
		Match: func(Input) (Source, error) { return nil, errors.New("not an elsewhere URL") },
	})
	err = f.pipeline.Run(context.Background(), "", Input{Query: "https://play.example.test/event/1"}, "/tmp/out")
	assert.ErrorIs(err, ErrNoMatch)
	assert.ErrorContains(err, "[elsewhere] not an elsewhere URL")
	assert.Len(f.fetcher.calls, 1)
}
