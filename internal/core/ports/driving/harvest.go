package driving

import (
	"context"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

// Harvester runs harvests on behalf of a driving adapter.
type Harvester interface {
	// Run harvests run.Source to completion. A configuration error aborts
	// the run and returns a nil summary; any other error is returned with
	// the summary of what was processed.
	Run(ctx context.Context, run domain.Run) (*domain.RunSummary, error)
}
