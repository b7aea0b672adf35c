package opera_archiver

import (
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	assert := assert_.New(t)
	p := &Performance{
		Title: "Luisa Miller",
		Date:  "2020-06-17T19:00:00Z",
		Cast:  Cast{{Role: "Musikalische Leitung", People: []string{"Marco Armiliato"}}},
	}
	assert.Equal("Luisa Miller - 2020-06-17 - Marco Armiliato", Stem(p, DenyList))

	// Missing parts are left out rather than left blank
	assert.Equal("Tosca - 2024-01-01", Stem(&Performance{Title: "Tosca", Date: "2024-01-01"}, AllowList))
	assert.Equal("Tosca", Stem(&Performance{Title: "Tosca"}, AllowList))
	assert.Equal("unknown", Stem(&Performance{}, DenyList))
}

func TestStem_NeverContainsSeparators(t *testing.T) {
	assert := assert_.New(t)
	p := &Performance{
		Title: `AC/DC: Live\Dead * "Why?"`,
		Date:  "2019-01-01",
		Cast:  Cast{{Role: "Conductor", People: []string{"A/B"}}},
	}
	for name, sanitize := range map[string]Sanitizer{"allow": AllowList, "deny": DenyList} {
		stem := Stem(p, sanitize)
		assert.False(strings.ContainsAny(stem, `/\:*?`), "%s: %q", name, stem)
		assert.True(strings.HasPrefix(stem, "AC_DC_"), "%s: %q", name, stem)
	}
}

func TestAllowList(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("Così fan tutte (1990), Act 1 - Sc. 2_ 'Bella'", AllowList("Così fan tutte (1990), Act 1 - Sc. 2: 'Bella'"))
	assert.Equal("Die Frau ohne Schatten_", AllowList("Die Frau ohne Schatten!"))
	assert.Equal("a_b", AllowList("a\tb"))
	assert.Equal("", AllowList(""))
}

func TestDenyList(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("Così fan tutte! (1990) _ Act 1", DenyList("Così fan tutte! (1990) : Act 1"))
	assert.Equal("_________", DenyList(`<>:"/\|?*`))
	assert.Equal("a_b", DenyList("a\nb"))
	assert.Equal("Ariadne auf Naxos; Prolog & Oper", DenyList("Ariadne auf Naxos; Prolog & Oper"))
}
