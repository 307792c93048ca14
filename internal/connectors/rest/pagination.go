package rest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

// Style names how a service expresses paging and when a listing ends.
type Style int

const (
	// StyleOffsetLimit uses start/limit and ends on a short page.
	StyleOffsetLimit Style = iota
	// StyleStartAtTotal uses startAt/maxResults and ends once the
	// server-reported total drops below the page size.
	StyleStartAtTotal
)

// Params returns the offset and size parameter names for the style.
func (s Style) Params() (offset, size string) {
	if s == StyleStartAtTotal {
		return "startAt", "maxResults"
	}
	return "start", "limit"
}

// PageFunc fetches one page.
type PageFunc[T any] func(ctx context.Context, req domain.PageRequest) (domain.PageResult[T], error)

// Paginator drives a listing to completion.
type Paginator struct {
	Style    Style
	PageSize int

	// MaxPages stops a runaway listing; 0 disables the guard.
	MaxPages int

	Filters map[string]string
	Expand  []string
}

// First returns the request for the first page.
func (p Paginator) First() domain.PageRequest {
	return domain.PageRequest{
		Offset:   0,
		PageSize: p.PageSize,
		Filters:  p.Filters,
		Expand:   p.Expand,
	}
}

// Apply adds the page parameters of pr to req. Filters go first so a filter
// named like a page parameter cannot override the offset or size.
func (s Style) Apply(req Request, pr domain.PageRequest) Request {
	offset, size := s.Params()
	req = req.WithParams(pr.Filters).
		WithParam(offset, strconv.Itoa(pr.Offset)).
		WithParam(size, strconv.Itoa(pr.PageSize))
	if len(pr.Expand) > 0 {
		req = req.WithParam("expand", strings.Join(pr.Expand, ","))
	}
	return req
}

// FetchAll fetches pages until the style's termination condition holds and
// calls each for every item in server order. The first error from fetch or
// each stops the listing.
func FetchAll[T any](ctx context.Context, p Paginator, fetch PageFunc[T], each func(T) error) error {
	if p.PageSize <= 0 {
		return domain.NewConfigError("page_size", "must be positive")
	}

	req := p.First()
	for pages := 0; ; pages++ {
		if p.MaxPages > 0 && pages >= p.MaxPages {
			return fmt.Errorf("%w: %d pages", ErrPageLimitExceeded, p.MaxPages)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := fetch(ctx, req)
		if err != nil {
			return err
		}
		for _, item := range page.Items {
			if err := each(item); err != nil {
				return err
			}
		}

		if lastPage(p.Style, p.PageSize, page) {
			return nil
		}
		req = req.Next()
	}
}

// Collect gathers every item of a listing into a slice.
func Collect[T any](ctx context.Context, p Paginator, fetch PageFunc[T]) ([]T, error) {
	var all []T
	err := FetchAll(ctx, p, fetch, func(item T) error {
		all = append(all, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// lastPage reports whether page ends the listing.
// StartAt/total compares the reported total, not the page length; a server
// whose total never shrinks below the page size keeps the loop going until
// MaxPages trips.
func lastPage[T any](style Style, pageSize int, page domain.PageResult[T]) bool {
	if len(page.Items) == 0 {
		return true
	}
	if style == StyleStartAtTotal && page.HasTotal {
		return page.Total < pageSize
	}
	return len(page.Items) < pageSize
}
