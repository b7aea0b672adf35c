package observer

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/playwright-community/playwright-go"
)

// Playwright launches Chromium through playwright-go.
type Playwright struct {
	Headless bool
	// Channel selects an installed browser build such as "chrome" or "msedge" instead of the bundled Chromium.
	Channel string
	// ProfileDir, if set, is used as a persistent user data directory so that logins survive between runs.
	ProfileDir string
}

func (l *Playwright) Launch(onRequest func(string)) (_ Session, err error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	s := &playwrightSession{closers: []func() error{pw.Stop}}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	var channel *string
	if l.Channel != "" {
		channel = playwright.String(l.Channel)
	}

	if l.ProfileDir != "" {
		bctx, err := pw.Chromium.LaunchPersistentContext(l.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: playwright.Bool(l.Headless),
			Channel:  channel,
		})
		if err != nil {
			return nil, fmt.Errorf("could not launch browser with profile %s: %w", l.ProfileDir, err)
		}
		s.pushCloser(func() error { return bctx.Close() })
		if pages := bctx.Pages(); len(pages) > 0 {
			s.page = pages[0]
		} else if s.page, err = bctx.NewPage(); err != nil {
			return nil, fmt.Errorf("could not open page: %w", err)
		}
	} else {
		browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(l.Headless),
			Channel:  channel,
		})
		if err != nil {
			return nil, fmt.Errorf("could not launch browser: %w", err)
		}
		s.pushCloser(func() error { return browser.Close() })
		if s.page, err = browser.NewPage(); err != nil {
			return nil, fmt.Errorf("could not open page: %w", err)
		}
	}

	s.page.OnRequest(func(r playwright.Request) {
		onRequest(r.URL())
	})
	return s, nil
}

type playwrightSession struct {
	page playwright.Page
	// closers run in order: browser first, then the playwright driver.
	closers []func() error
}

func (s *playwrightSession) pushCloser(f func() error) {
	s.closers = append([]func() error{f}, s.closers...)
}

func (s *playwrightSession) Navigate(pageURL string, timeout time.Duration) error {
	_, err := s.page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}
	return err
}

func (s *playwrightSession) Close() error {
	var result error
	for _, f := range s.closers {
		if err := f(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	s.closers = nil
	return result
}
