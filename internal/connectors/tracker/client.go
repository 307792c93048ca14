package tracker

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/harvester/internal/connectors/rest"
	"github.com/custodia-labs/harvester/internal/core/domain"
)

const apiPath = "/rest/api/2"

// DefaultFields are requested when a search names none.
var DefaultFields = []string{
	"summary", "description", "created", "updated", "labels",
	"status", "issuetype", "priority", "project", "assignee", "reporter",
}

// SearchQuery describes one issue search.
type SearchQuery struct {
	JQL    string
	Fields []string

	// UsePost sends the query as a JSON body, for JQL too long for a URL.
	UsePost bool
}

// Client wraps the issue tracker REST API.
type Client struct {
	rest     *rest.Client
	pageSize int
	maxPages int
}

// NewClient creates a tracker client over an authenticated REST client.
func NewClient(rc *rest.Client, pageSize, maxPages int) *Client {
	if pageSize <= 0 {
		pageSize = domain.DefaultTrackerPageSize
	}
	return &Client{rest: rc, pageSize: pageSize, maxPages: maxPages}
}

// Home returns the service base URL.
func (c *Client) Home() *url.URL {
	return c.rest.Home()
}

func (c *Client) paginator(expand string) rest.Paginator {
	return rest.Paginator{
		Style:    rest.StyleStartAtTotal,
		PageSize: c.pageSize,
		MaxPages: c.maxPages,
		Expand:   []string{expand},
	}
}

// Search streams every issue matching q.
func (c *Client) Search(ctx context.Context, q SearchQuery, each func(Issue) error) error {
	fields := q.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}

	fetch := func(ctx context.Context, pr domain.PageRequest) (domain.PageResult[Issue], error) {
		var req rest.Request
		if q.UsePost {
			req = rest.Post(apiPath + "/search").WithBody(searchRequest{
				JQL:        q.JQL,
				StartAt:    pr.Offset,
				MaxResults: pr.PageSize,
				Fields:     fields,
				Expand:     pr.Expand,
			})
		} else {
			req = rest.StyleStartAtTotal.Apply(rest.Get(apiPath+"/search"), pr).
				WithParam("jql", q.JQL).
				WithParam("fields", strings.Join(fields, ","))
		}

		result, err := rest.Call[searchResult](ctx, c.rest, req, "search result")
		if err != nil {
			return domain.PageResult[Issue]{}, err
		}
		return domain.PageResult[Issue]{Items: result.Issues, Total: result.Total, HasTotal: true}, nil
	}

	return rest.FetchAll(ctx, c.paginator("renderedFields"), fetch, each)
}

// ListComments streams the comments of one issue.
func (c *Client) ListComments(ctx context.Context, issueKey string, each func(IssueComment) error) error {
	path := fmt.Sprintf("%s/issue/%s/comment", apiPath, url.PathEscape(issueKey))

	fetch := func(ctx context.Context, pr domain.PageRequest) (domain.PageResult[IssueComment], error) {
		req := rest.StyleStartAtTotal.Apply(rest.Get(path), pr)
		list, err := rest.Call[commentList](ctx, c.rest, req, "comment page")
		if err != nil {
			return domain.PageResult[IssueComment]{}, err
		}
		return domain.PageResult[IssueComment]{Items: list.Comments, Total: list.Total, HasTotal: true}, nil
	}

	return rest.FetchAll(ctx, c.paginator("renderedBody"), fetch, each)
}

// GetIssue fetches one issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	req := rest.Get(fmt.Sprintf("%s/issue/%s", apiPath, url.PathEscape(key))).
		WithParam("expand", "renderedFields")
	issue, err := rest.Call[Issue](ctx, c.rest, req, "issue")
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// GetProject fetches one project by key.
func (c *Client) GetProject(ctx context.Context, key string) (*Project, error) {
	req := rest.Get(fmt.Sprintf("%s/project/%s", apiPath, url.PathEscape(key)))
	project, err := rest.Call[Project](ctx, c.rest, req, "project")
	if err != nil {
		return nil, err
	}
	return &project, nil
}
