package driven

import (
	"context"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

// DocumentSink is the indexing boundary. Store is called concurrently from
// worker goroutines and must be safe for that.
type DocumentSink interface {
	Store(ctx context.Context, run domain.Run, doc map[string]any) error
}

// FailureRecorder persists one record per failed item. It is best-effort and
// never returns an error to the pipeline.
type FailureRecorder interface {
	Record(ctx context.Context, run domain.Run, errorKind, url string, cause error)
}

// FailureStore reads back recorded failures.
type FailureStore interface {
	ListFailures(ctx context.Context, runID string) ([]domain.FailureRecord, error)
}

// StatsRecorder observes item lifecycles. It is purely observational.
type StatsRecorder interface {
	Begin(key *domain.StatsKey)
	Record(key *domain.StatsKey, action domain.StatsAction)
	Discard(key *domain.StatsKey)
	Done(key *domain.StatsKey)
}
