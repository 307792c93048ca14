package domain

import (
	"sync"
	"time"
)

// StatsAction is a state an item passes through while it is processed.
type StatsAction string

const (
	ActionOpened    StatsAction = "opened"
	ActionDiscarded StatsAction = "discarded"
	ActionPrepared  StatsAction = "prepared"
	ActionEvaluated StatsAction = "evaluated"
	ActionFinished  StatsAction = "finished"
	ActionException StatsAction = "exception"
)

// IsTerminal reports whether no further transition can follow a.
func (a StatsAction) IsTerminal() bool {
	return a == ActionDiscarded || a == ActionFinished || a == ActionException
}

// StatsKey identifies one in-flight item by URL for the duration of its
// processing. The URL may be corrected once field evaluation yields the
// final document URL.
type StatsKey struct {
	mu      sync.RWMutex
	url     string
	started time.Time
}

// NewStatsKey opens a key for url.
func NewStatsKey(url string) *StatsKey {
	return &StatsKey{url: url, started: time.Now()}
}

// URL returns the current URL.
func (k *StatsKey) URL() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.url
}

// SetURL corrects the URL after evaluation.
func (k *StatsKey) SetURL(url string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.url = url
}

// Started is when the key was opened.
func (k *StatsKey) Started() time.Time {
	return k.started
}

// FailureRecord is written once per failed item and never retried.
type FailureRecord struct {
	ID    string
	RunID string

	// SourceConfig is the redacted run configuration.
	SourceConfig map[string]string

	// ErrorKind is derived from the root cause (see services.ClassifyFailure).
	ErrorKind string

	URL        string
	Cause      string
	RecordedAt time.Time
}

// NewFailureRecord builds the record for one failed item. The source
// configuration is copied in redacted form.
func NewFailureRecord(id string, run Run, errorKind, url string, cause error) FailureRecord {
	rec := FailureRecord{
		ID:           id,
		RunID:        run.ID,
		SourceConfig: run.Source.Redacted(),
		ErrorKind:    errorKind,
		URL:          url,
		RecordedAt:   time.Now().UTC(),
	}
	if cause != nil {
		rec.Cause = cause.Error()
	}
	return rec
}

// RunSummary counts what happened to the items of one run.
type RunSummary struct {
	RunID     string
	Submitted int64
	Finished  int64
	Discarded int64
	Failed    int64
	Elapsed   time.Duration
}
