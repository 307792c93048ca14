package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
)

var (
	_ driven.FailureRecorder = (*FailureStore)(nil)
	_ driven.FailureStore    = (*FailureStore)(nil)
)

// FailureStore records failures in memory and reads them back.
type FailureStore struct {
	mu      sync.RWMutex
	records []domain.FailureRecord
}

// NewFailureStore creates a new in-memory failure store.
func NewFailureStore() *FailureStore {
	return &FailureStore{}
}

// Record appends a failure record.
func (s *FailureStore) Record(_ context.Context, run domain.Run, errorKind, url string, cause error) {
	rec := domain.NewFailureRecord(uuid.NewString(), run, errorKind, url, cause)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// ListFailures returns the records of runID, or all records when runID is empty.
func (s *FailureStore) ListFailures(_ context.Context, runID string) ([]domain.FailureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.FailureRecord
	for _, rec := range s.records {
		if runID == "" || rec.RunID == runID {
			out = append(out, rec)
		}
	}
	return out, nil
}
