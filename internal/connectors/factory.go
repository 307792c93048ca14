package connectors

import (
	"fmt"

	"github.com/custodia-labs/harvester/internal/connectors/rest"
	"github.com/custodia-labs/harvester/internal/connectors/tracker"
	"github.com/custodia-labs/harvester/internal/connectors/wiki"
	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.SourceFactory = (*Factory)(nil)

// Factory builds the ItemSource for a run's service.
type Factory struct {
	clientOpts []rest.ClientOption
}

// NewFactory creates a factory. Options are passed to every REST client.
func NewFactory(opts ...rest.ClientOption) *Factory {
	return &Factory{clientOpts: opts}
}

// Parse validates a source's configuration.
func (f *Factory) Parse(source domain.Source) (*domain.RunSettings, error) {
	return ParseSettings(source)
}

// Create builds an authenticated client and wraps it in the service's connector.
func (f *Factory) Create(settings *domain.RunSettings) (driven.ItemSource, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: nil settings", domain.ErrInvalidInput)
	}

	rc, err := rest.NewClient(settings.Client, f.clientOpts...)
	if err != nil {
		return nil, err
	}

	switch settings.Source.Service {
	case domain.ServiceWiki:
		client := wiki.NewClient(rc, settings.PageSize, settings.MaxPages)
		return wiki.NewConnector(client, settings.Wiki), nil
	case domain.ServiceTracker:
		client := tracker.NewClient(rc, settings.PageSize, settings.MaxPages)
		return tracker.NewConnector(client, settings.Tracker), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, settings.Source.Service)
	}
}
