package opera_archiver

import (
	"strings"
	"unicode"
)

const (
	FilenameSeparator = " - "
	UnknownTitle      = "unknown"
)

// A Sanitizer replaces characters that can't appear in a filename.
type Sanitizer func(string) string

// Stem builds "<title> - <YYYY-MM-DD> - <conductor>" from the performance, omitting the date and conductor if unknown,
// and passes the result through sanitize.
func Stem(p *Performance, sanitize Sanitizer) string {
	title := p.Title
	if title == "" {
		title = UnknownTitle
	}
	parts := []string{title}
	if day := p.Day(); day != "" {
		parts = append(parts, day)
	}
	if conductor := p.Cast.Conductor(); conductor != "" {
		parts = append(parts, conductor)
	}
	return sanitize(strings.Join(parts, FilenameSeparator))
}

const allowedPunctuation = " -_.,()'"

// AllowList keeps letters, digits and a little punctuation, replacing everything else with "_".
func AllowList(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune(allowedPunctuation, r) {
			return r
		}
		return '_'
	}, s)
}

const forbiddenCharacters = `<>:"/\|?*`

// DenyList replaces only the characters Windows refuses in filenames (including control characters) with "_".
func DenyList(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(forbiddenCharacters, r) {
			return '_'
		}
		return r
	}, s)
}
