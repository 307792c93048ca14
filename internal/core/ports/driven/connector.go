package driven

import (
	"context"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

// ItemSource enumerates the top-level items of one service and the comments
// attached to each. The wiki and issue-tracker connectors implement it.
type ItemSource interface {
	// Service returns the service this source harvests.
	Service() domain.Service

	// ListItems streams every top-level item in server order. It returns the
	// first error from the listing itself or from each.
	ListItems(ctx context.Context, each func(domain.Item) error) error

	// ListComments streams the comments of one item in server order.
	ListComments(ctx context.Context, item domain.Item, each func(domain.Comment) error) error
}

// SourceFactory parses a source's configuration and builds its ItemSource.
type SourceFactory interface {
	// Parse validates the raw configuration. Failures are *domain.ConfigError.
	Parse(source domain.Source) (*domain.RunSettings, error)

	// Create builds an authenticated ItemSource for parsed settings.
	Create(settings *domain.RunSettings) (ItemSource, error)
}
