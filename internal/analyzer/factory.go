package analyzer

import (
	"fmt"

	"github.com/mokshchadha/invoice-ocr/internal/config"
	"github.com/mokshchadha/invoice-ocr/internal/domain"
	"github.com/mokshchadha/invoice-ocr/internal/port"
)

// ProviderFactory is a function that creates a DocumentAnalyzer from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.DocumentAnalyzer, error)

// registry of analyzer provider factories, populated by init() in each
// provider package or explicitly via Register.
var providers = map[domain.Provider]ProviderFactory{}

// Register registers an analyzer provider factory by name.
func Register(name domain.Provider, factory ProviderFactory) {
	providers[name] = factory
}

// New creates a DocumentAnalyzer for the named provider using the registered factory.
func New(name domain.Provider, cfg *config.ProviderConfig) (port.DocumentAnalyzer, error) {
	factory, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return factory(cfg)
}
