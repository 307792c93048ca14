package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
)

// Ensure DocumentSink implements the interface.
var _ driven.DocumentSink = (*DocumentSink)(nil)

// Document is one document received by the sink.
type Document struct {
	RunID  string
	Fields map[string]any
}

// DocumentSink is an in-memory implementation of driven.DocumentSink.
type DocumentSink struct {
	mu   sync.RWMutex
	docs []Document
}

// NewDocumentSink creates a new in-memory sink.
func NewDocumentSink() *DocumentSink {
	return &DocumentSink{}
}

// Store keeps a shallow copy of doc.
func (s *DocumentSink) Store(ctx context.Context, run domain.Run, doc map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields := make(map[string]any, len(doc))
	for k, v := range doc {
		fields[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, Document{RunID: run.ID, Fields: fields})
	return nil
}

// Documents returns the documents stored for a run in arrival order.
// An empty runID returns every document.
func (s *DocumentSink) Documents(runID string) []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, d := range s.docs {
		if runID == "" || d.RunID == runID {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of stored documents.
func (s *DocumentSink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
