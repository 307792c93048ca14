package domain

import "time"

// Defaults applied when a run configuration leaves an option unset.
const (
	DefaultThreads         = 1
	DefaultWikiPageSize    = 25
	DefaultTrackerPageSize = 50
	DefaultShutdownTimeout = 60 * time.Second
)

// IsValid returns true if the service is recognised.
func (s Service) IsValid() bool {
	switch s {
	case ServiceWiki, ServiceTracker:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Service) String() string {
	return string(s)
}

// SearchMethod selects how the tracker search endpoint is called.
type SearchMethod string

const (
	SearchGet  SearchMethod = "get"
	SearchPost SearchMethod = "post"
)

// RunSettings is the typed form of a run's configuration surface.
// It is built once per run and read-only thereafter.
type RunSettings struct {
	Source Source

	Client ClientConfig

	// Threads is the worker pool size (and queue capacity).
	Threads int

	// IgnoreError degrades extraction failures to empty text instead of
	// failing the item.
	IgnoreError bool

	IncludePatterns []string
	ExcludePatterns []string

	// PageSize is the per-request page size for listings and comments.
	PageSize int

	// MaxPages bounds requests per listing; 0 means unbounded.
	MaxPages int

	// Fields maps output field names to evaluator expressions.
	Fields map[string]string

	Wiki    WikiSettings
	Tracker TrackerSettings
}

// WikiSettings are options only the wiki service reads.
type WikiSettings struct {
	SpaceKey    string
	Expand      []string
	IncludeBlog bool
}

// TrackerSettings are options only the issue tracker reads.
type TrackerSettings struct {
	JQL          string
	Fields       []string
	SearchMethod SearchMethod
}

// DefaultFields is the field map used when a run configures none.
func DefaultFields() map[string]string {
	return map[string]string{
		"title":         "item.title",
		"content":       "item.content",
		"comments":      "item.comments",
		"last_modified": "item.last_modified",
		"url":           "item.view_url",
	}
}
