package observer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/alanbriolat/opera-archiver"
)

type fakeSession struct {
	requests    []string
	navigateErr error
	onRequest   func(string)
	navigated   string
	closed      int
}

func (s *fakeSession) Navigate(pageURL string, _ time.Duration) error {
	s.navigated = pageURL
	for _, r := range s.requests {
		s.onRequest(r)
	}
	return s.navigateErr
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeLauncher struct {
	session   *fakeSession
	launchErr error
}

func (l *fakeLauncher) Launch(onRequest func(string)) (Session, error) {
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	l.session.onRequest = onRequest
	return l.session, nil
}

func isM3U8(u string) bool {
	return strings.Contains(u, "master.m3u8")
}

func newTestObserver(l Launcher) *Observer {
	return New(l, WithGrace(0), WithNavigationTimeout(time.Second))
}

func TestFindManifest_FirstMatchWins(t *testing.T) {
	assert := assert_.New(t)
	session := &fakeSession{requests: []string{
		"https://cdn.example.test/player.js",
		"https://cdn.example.test/a/master.m3u8?token=1",
		"https://cdn.example.test/b/master.m3u8?token=2",
	}}
	o := newTestObserver(&fakeLauncher{session: session})

	found, err := o.FindManifest(context.Background(), "https://example.test/detail/1", isM3U8)
	assert.NoError(err)
	assert.Equal("https://cdn.example.test/a/master.m3u8?token=1", found)
	assert.Equal("https://example.test/detail/1", session.navigated)
	assert.Equal(1, session.closed)
}

func TestFindManifest_NotFoundStillCloses(t *testing.T) {
	assert := assert_.New(t)
	session := &fakeSession{requests: []string{"https://cdn.example.test/index.m3u8"}}
	o := newTestObserver(&fakeLauncher{session: session})

	_, err := o.FindManifest(context.Background(), "https://example.test/detail/1", isM3U8)
	assert.ErrorIs(err, opera_archiver.ErrManifestNotFound)
	assert.Equal(1, session.closed)
}

func TestFindManifest_NavigationTimeoutIsNotFatal(t *testing.T) {
	assert := assert_.New(t)
	session := &fakeSession{
		requests:    []string{"https://cdn.example.test/master.m3u8"},
		navigateErr: ErrNavigationTimeout,
	}
	o := newTestObserver(&fakeLauncher{session: session})

	found, err := o.FindManifest(context.Background(), "https://example.test/detail/1", isM3U8)
	assert.NoError(err)
	assert.Equal("https://cdn.example.test/master.m3u8", found)
	assert.Equal(1, session.closed)
}

func TestFindManifest_NavigationError(t *testing.T) {
	assert := assert_.New(t)
	session := &fakeSession{
		requests:    []string{"https://cdn.example.test/master.m3u8"},
		navigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED"),
	}
	o := newTestObserver(&fakeLauncher{session: session})

	_, err := o.FindManifest(context.Background(), "https://example.test/detail/1", isM3U8)
	assert.Error(err)
	assert.NotErrorIs(err, opera_archiver.ErrManifestNotFound)
	assert.Equal(1, session.closed)
}

func TestFindManifest_LaunchError(t *testing.T) {
	assert := assert_.New(t)
	o := newTestObserver(&fakeLauncher{launchErr: errors.New("no browser")})

	_, err := o.FindManifest(context.Background(), "https://example.test/detail/1", isM3U8)
	assert.ErrorContains(err, "failed to launch browser")
}

func TestFindManifest_CancelledDuringGrace(t *testing.T) {
	assert := assert_.New(t)
	session := &fakeSession{requests: []string{"https://cdn.example.test/master.m3u8"}}
	o := New(&fakeLauncher{session: session}, WithGrace(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.FindManifest(ctx, "https://example.test/detail/1", isM3U8)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(1, session.closed)
}
