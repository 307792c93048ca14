package domain

// PageRequest describes one page of a listing call. Both services use it;
// Offset advances by PageSize on each iteration.
type PageRequest struct {
	Offset   int
	PageSize int

	// Filters are extra query parameters sent with every page.
	Filters map[string]string

	// Expand lists nested fields the service should inline.
	Expand []string
}

// Next returns the request for the following page.
func (r PageRequest) Next() PageRequest {
	r.Offset += r.PageSize
	return r
}

// PageResult is one page of items. Neither service reports "has more";
// termination is inferred by the fetcher.
type PageResult[T any] struct {
	Items []T

	// Total is the server-reported total when HasTotal is set.
	Total    int
	HasTotal bool
}
