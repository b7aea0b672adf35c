package util

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrNoMatch = errors.New("pattern not found in URL")
)

// IsURL reports whether s should be treated as a URL rather than a search query. Anything starting with "http" counts,
// the same loose check users expect from pasting a link.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http")
}

// HostMatches reports whether rawURL's host is one of hosts or a subdomain of one. Entries that are themselves URLs
// contribute their host, and empty entries are ignored.
func HostMatches(rawURL string, hosts ...string) bool {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	hostname := strings.ToLower(parsedURL.Hostname())
	if hostname == "" {
		return false
	}
	for _, h := range hosts {
		if IsURL(h) {
			if u, err := url.Parse(h); err == nil {
				h = u.Hostname()
			}
		}
		h = strings.ToLower(h)
		if h == "" {
			continue
		}
		if hostname == h || strings.HasSuffix(hostname, "."+h) {
			return true
		}
	}
	return false
}

// JoinPath appends elem to base with exactly one "/" between them, leaving base's query (if any) alone.
func JoinPath(base string, elem string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(elem, "/")
}

// ExtractFromPath returns the first capture group of re matched against the path of rawURL.
func ExtractFromPath(rawURL string, re *regexp.Regexp) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	m := re.FindStringSubmatch(parsedURL.Path)
	if len(m) < 2 || m[1] == "" {
		return "", ErrNoMatch
	}
	return m[1], nil
}
