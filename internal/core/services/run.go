package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

// NewRun starts a run record for source with a fresh ID.
func NewRun(source domain.Source) domain.Run {
	return domain.Run{
		ID:        uuid.New().String(),
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}
