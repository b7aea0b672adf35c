package wso

import (
	"fmt"
	"io"
	"strings"

	"github.com/alanbriolat/opera-archiver"
)

// DescribePerformance prints the title, date, availability and cast grouped by role.
func DescribePerformance(w io.Writer, p *opera_archiver.Performance) {
	title := p.Title
	if title == "" {
		title = opera_archiver.UnknownTitle
	}
	availability := p.Availability
	if availability == "" {
		availability = "?"
	}
	fmt.Fprintf(w, "\nTitle:      %s\n", title)
	fmt.Fprintf(w, "Date:       %s\n", p.Day())
	fmt.Fprintf(w, "VOD avail:  %s after broadcast\n", availability)
	for _, m := range p.Cast {
		role := m.Role
		if role == "" {
			role = "Unknown"
		}
		people := make([]string, len(m.People))
		for i, person := range m.People {
			if person == "" {
				person = "?"
			}
			people[i] = person
		}
		fmt.Fprintf(w, "%-12s %s\n", role+":", strings.Join(people, ", "))
	}
}

const yearRule = "──────────────────────────────────────"

// WriteListing prints performances grouped under a heading per year, in the order given, followed by a total.
func WriteListing(w io.Writer, performances []opera_archiver.Performance) {
	currentYear := ""
	for i, p := range performances {
		year := p.Year()
		if i == 0 || year != currentYear {
			currentYear = year
			fmt.Fprintf(w, "\n── %s %s\n", year, yearRule)
		}
		fmt.Fprintf(w, "  %s  %-40s  %s\n", p.Day(), p.Title, p.ID)
	}
	fmt.Fprintf(w, "\n%d events total\n", len(performances))
}
