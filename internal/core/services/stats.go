package services

import (
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
	"github.com/custodia-labs/harvester/internal/logger"
)

// Ensure CrawlStats implements the interface.
var _ driven.StatsRecorder = (*CrawlStats)(nil)

// CrawlStats counts item lifecycle events. It is safe for concurrent use.
type CrawlStats struct {
	opened    atomic.Int64
	discarded atomic.Int64
	prepared  atomic.Int64
	evaluated atomic.Int64
	finished  atomic.Int64
	exception atomic.Int64
	done      atomic.Int64

	mu       sync.Mutex
	inFlight map[*domain.StatsKey]domain.StatsAction
}

// NewCrawlStats creates an empty recorder.
func NewCrawlStats() *CrawlStats {
	return &CrawlStats{inFlight: make(map[*domain.StatsKey]domain.StatsAction)}
}

// Begin marks key as opened.
func (s *CrawlStats) Begin(key *domain.StatsKey) {
	s.Record(key, domain.ActionOpened)
}

// Discard marks key as discarded by the URL filter.
func (s *CrawlStats) Discard(key *domain.StatsKey) {
	s.Record(key, domain.ActionDiscarded)
}

// Record notes a state transition for key.
func (s *CrawlStats) Record(key *domain.StatsKey, action domain.StatsAction) {
	s.counter(action).Add(1)

	s.mu.Lock()
	s.inFlight[key] = action
	s.mu.Unlock()

	logger.Debug("%s %s", action, key.URL())
}

// Done closes key.
func (s *CrawlStats) Done(key *domain.StatsKey) {
	s.done.Add(1)

	s.mu.Lock()
	last, ok := s.inFlight[key]
	delete(s.inFlight, key)
	s.mu.Unlock()

	if ok && !last.IsTerminal() {
		logger.Warn("stats: %s closed in non-terminal state %s", key.URL(), last)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Opened    int64
	Discarded int64
	Prepared  int64
	Evaluated int64
	Finished  int64
	Exception int64
	Done      int64
	InFlight  int
}

// Snapshot returns the current counters.
func (s *CrawlStats) Snapshot() Snapshot {
	s.mu.Lock()
	inFlight := len(s.inFlight)
	s.mu.Unlock()

	return Snapshot{
		Opened:    s.opened.Load(),
		Discarded: s.discarded.Load(),
		Prepared:  s.prepared.Load(),
		Evaluated: s.evaluated.Load(),
		Finished:  s.finished.Load(),
		Exception: s.exception.Load(),
		Done:      s.done.Load(),
		InFlight:  inFlight,
	}
}

func (s *CrawlStats) counter(action domain.StatsAction) *atomic.Int64 {
	switch action {
	case domain.ActionOpened:
		return &s.opened
	case domain.ActionDiscarded:
		return &s.discarded
	case domain.ActionPrepared:
		return &s.prepared
	case domain.ActionEvaluated:
		return &s.evaluated
	case domain.ActionFinished:
		return &s.finished
	default:
		return &s.exception
	}
}
