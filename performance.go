package opera_archiver

import (
	"strings"
)

type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

func (k MediaKind) String() string {
	return string(k)
}

// CastMember groups everyone credited under one role. Role and person names may be empty if the API omitted them.
type CastMember struct {
	Role   string
	People []string
}

// Cast is an ordered mapping of role to people, in order of first appearance.
type Cast []CastMember

// Add appends person to role, creating the role at the end if it hasn't been seen yet.
func (c *Cast) Add(role string, person string) {
	for i := range *c {
		if (*c)[i].Role == role {
			(*c)[i].People = append((*c)[i].People, person)
			return
		}
	}
	*c = append(*c, CastMember{Role: role, People: []string{person}})
}

// conductorRoles are lowercase substrings identifying the musical director, in English and German.
var conductorRoles = []string{"conductor", "leitung"}

// Conductor returns the first person credited under a conductor role, or "" if there isn't one.
func (c Cast) Conductor() string {
	for _, m := range c {
		role := strings.ToLower(m.Role)
		for _, r := range conductorRoles {
			if strings.Contains(role, r) {
				if len(m.People) > 0 {
					return m.People[0]
				}
				return ""
			}
		}
	}
	return ""
}

// Performance is one streamable performance as described by a provider's API.
type Performance struct {
	ID    string
	Title string

	// Date is an ISO 8601 date or timestamp, or empty if unknown.
	Date string
	Kind MediaKind
	Cast Cast

	// Availability is free text from the provider describing how long the recording stays available.
	Availability string
}

// Day is the date truncated to YYYY-MM-DD.
func (p *Performance) Day() string {
	if len(p.Date) > 10 {
		return p.Date[:10]
	}
	return p.Date
}

// Year is the first four characters of the date.
func (p *Performance) Year() string {
	if len(p.Date) > 4 {
		return p.Date[:4]
	}
	return p.Date
}

// InYear reports whether the date starts with year; an empty year matches everything.
func (p *Performance) InYear(year string) bool {
	return strings.HasPrefix(p.Date, year)
}
