package rest

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

// ParseTimestamp parses s with the first layout that accepts it.
// An empty string yields the zero time.
func ParseTimestamp(s string, layouts ...string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if len(layouts) == 0 {
		layouts = []string{time.RFC3339Nano}
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &domain.ParseError{Target: "timestamp", Err: fmt.Errorf("%q: %w", s, lastErr)}
}
