package providers

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/alanbriolat/opera-archiver"
	"github.com/alanbriolat/opera-archiver/provider/met"
	"github.com/alanbriolat/opera-archiver/provider/wso"
)

func TestNewRegistry(t *testing.T) {
	assert := assert_.New(t)
	registry := NewRegistry(opera_archiver.DefaultConfig)

	assert.Equal([]string{met.Name, wso.Name}, registry.List())

	m, err := registry.MatchWith(wso.Name, opera_archiver.Input{Query: "Luisa Miller", Year: "2020"})
	if assert.NoError(err) {
		assert.Equal(wso.Name, m.ProviderName)
		assert.Equal(wso.LoginHint, m.LoginHint)
	}

	m, err = registry.Match(opera_archiver.Input{Query: "https://ondemand.metopera.org/performance/detail/abc"})
	if assert.NoError(err) {
		assert.Equal(met.Name, m.ProviderName)
	}

	m, err = registry.Match(opera_archiver.Input{Query: "https://play.wiener-staatsoper.at/event/2a4b6c8d-1e3f-4a5b-9c7d-0e1f2a3b4c5d"})
	if assert.NoError(err) {
		assert.Equal(wso.Name, m.ProviderName)
		assert.Equal(wso.LoginHint, m.LoginHint)
	}

	_, err = registry.Match(opera_archiver.Input{Query: "https://www.bbc.co.uk/iplayer/episode/x"})
	assert.ErrorIs(err, opera_archiver.ErrNoMatch)
	assert.ErrorContains(err, "not a Met Opera URL")
	assert.ErrorContains(err, "not a Wiener Staatsoper URL")

	_, err = registry.MatchWith("bbc", opera_archiver.Input{Query: "Tosca"})
	assert.ErrorIs(err, opera_archiver.ErrUnknownProvider)
}
