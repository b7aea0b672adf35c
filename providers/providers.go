// Package providers builds a registry of every supported streaming site.
package providers

import (
	"github.com/alanbriolat/opera-archiver"
	"github.com/alanbriolat/opera-archiver/provider/met"
	"github.com/alanbriolat/opera-archiver/provider/wso"
)

// NewRegistry returns a ProviderRegistry with all providers configured from cfg. Each provider only accepts URLs on its
// own site, so Match picks the right one for a pasted link.
func NewRegistry(cfg opera_archiver.Config) *opera_archiver.ProviderRegistry {
	registry := &opera_archiver.ProviderRegistry{}
	registry.MustAdd(met.NewConfig(cfg).Provider())
	registry.MustAdd(wso.NewConfig(cfg).Provider())
	return registry
}
