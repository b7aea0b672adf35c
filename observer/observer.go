// Package observer loads a page in a real browser and reports the first network request matching a predicate.
package observer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alanbriolat/opera-archiver"
)

// ErrNavigationTimeout is returned by Session.Navigate when the page didn't settle in time. FindManifest logs it and
// keeps watching.
var ErrNavigationTimeout = errors.New("navigation timed out")

// A Session is one browser page, reporting requests to the callback given to Launcher.Launch.
type Session interface {
	// Navigate loads pageURL and blocks until the network is idle or timeout elapses.
	Navigate(pageURL string, timeout time.Duration) error
	// Close tears the browser down; it is always called exactly once.
	Close() error
}

type Launcher interface {
	// Launch starts a browser that calls onRequest with the URL of every outgoing request, possibly from another
	// goroutine.
	Launch(onRequest func(requestURL string)) (Session, error)
}

const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultGrace             = 5 * time.Second
)

type Observer struct {
	launcher          Launcher
	navigationTimeout time.Duration
	grace             time.Duration
	log               *zap.SugaredLogger
}

type Option func(*Observer)

// WithNavigationTimeout bounds the wait for the page's network to go idle.
func WithNavigationTimeout(d time.Duration) Option {
	return func(o *Observer) {
		o.navigationTimeout = d
	}
}

// WithGrace sets how long to keep watching once navigation finishes.
func WithGrace(d time.Duration) Option {
	return func(o *Observer) {
		o.grace = d
	}
}

func New(launcher Launcher, opts ...Option) *Observer {
	o := &Observer{
		launcher:          launcher,
		navigationTimeout: DefaultNavigationTimeout,
		grace:             DefaultGrace,
		log:               zap.S().Named("observer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FindManifest opens pageURL and returns the first request URL accepted by match, or an error wrapping
// opera_archiver.ErrManifestNotFound if there was none by the end of the grace period. The browser is closed before
// returning in every case.
func (o *Observer) FindManifest(ctx context.Context, pageURL string, match func(string) bool) (string, error) {
	var (
		mu       sync.Mutex
		observed []string
	)
	onRequest := func(requestURL string) {
		if !match(requestURL) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if len(observed) == 0 {
			o.log.Debugf("Manifest request: %s", requestURL)
		}
		observed = append(observed, requestURL)
	}

	session, err := o.launcher.Launch(onRequest)
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			o.log.Warnf("Failed to close browser: %v", err)
		}
	}()

	o.log.Infof("Opening %s ...", pageURL)
	if err := session.Navigate(pageURL, o.navigationTimeout); err != nil {
		if !errors.Is(err, ErrNavigationTimeout) {
			return "", fmt.Errorf("failed to open %s: %w", pageURL, err)
		}
		o.log.Warnf("Page did not settle within %v, still watching", o.navigationTimeout)
	}

	timer := time.NewTimer(o.grace)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	mu.Lock()
	defer mu.Unlock()
	if len(observed) == 0 {
		return "", opera_archiver.ErrManifestNotFound
	}
	if len(observed) > 1 {
		o.log.Debugf("Observed %d manifest requests, using the first", len(observed))
	}
	return observed[0], nil
}
