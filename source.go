package opera_archiver

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Recon when nothing matched the input.
var ErrNotFound = errors.New("no results found")

// Input is what the user asked for: free text or a detail-page URL, optionally narrowed to a year.
type Input struct {
	Query string
	// Year is a prefix match on the performance date; empty means any year.
	Year string
}

type Source interface {
	// String describes the unresolved input, for logging.
	String() string
	// Recon resolves the input to a single performance, returning an error wrapping ErrNotFound if there is none.
	Recon(context.Context) (ResolvedSource, error)
}

type ResolvedSource interface {
	// URL is the detail page the player is loaded from.
	URL() string
	// Info is the metadata known about the performance; never nil, but possibly sparse for direct URLs.
	Info() *Performance
	// Filename is the filesystem-safe stem for the downloaded file.
	Filename() string
	// IsManifest reports whether a request URL observed on the detail page is the stream manifest.
	IsManifest(requestURL string) bool
}

// A Describer can print a human-readable summary of itself before the download starts.
type Describer interface {
	Describe(w io.Writer)
}
