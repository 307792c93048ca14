package domain

import "time"

// ItemKind distinguishes the top-level entities a service yields.
type ItemKind string

const (
	KindPage     ItemKind = "page"
	KindBlogPost ItemKind = "blogpost"
	KindIssue    ItemKind = "issue"
)

// Item is one harvested top-level entity (wiki page, blog post or ticket).
// Comments are not carried on the item; they are fetched lazily through the
// ItemSource that produced it.
type Item struct {
	// ID is the service's stable identifier.
	ID string

	// Key is a human key where the service has one (issue key, space key).
	Key string

	Kind ItemKind

	Title string

	// BodyHTML is the rendered body as returned by the service.
	BodyHTML string

	LastModified time.Time

	// ViewURL is the canonical browser URL and the item's stats identity.
	ViewURL string

	// Metadata contains service-specific key-value pairs.
	Metadata map[string]any
}

// Comment is one comment attached to an Item.
type Comment struct {
	ID       string
	BodyHTML string
	Author   string
	Created  time.Time
}

// FormatTimestamp renders a last-modified instant in the normalised form
// handed to field evaluation (RFC 3339, UTC, millisecond precision).
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
