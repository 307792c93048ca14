package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/harvester/internal/connectors/rest"
	"github.com/custodia-labs/harvester/internal/core/domain"
)

const apiPath = "/rest/api"

// Content types accepted by the listing endpoint.
const (
	TypePage     = "page"
	TypeBlogPost = "blogpost"
	TypeComment  = "comment"
)

var (
	// DefaultContentExpand is requested when a listing names no expansions.
	DefaultContentExpand = []string{"space", "version", "body.view"}

	// DefaultCommentExpand is requested for comment listings.
	DefaultCommentExpand = []string{"body.view", "version"}
)

// ContentQuery narrows a content listing.
type ContentQuery struct {
	// Type is "page" or "blogpost".
	Type string

	// SpaceKey limits the listing to one space when set.
	SpaceKey string

	// Expand overrides DefaultContentExpand.
	Expand []string
}

// Client wraps the wiki REST API.
type Client struct {
	rest     *rest.Client
	pageSize int
	maxPages int
}

// NewClient creates a wiki client over an authenticated REST client.
func NewClient(rc *rest.Client, pageSize, maxPages int) *Client {
	if pageSize <= 0 {
		pageSize = domain.DefaultWikiPageSize
	}
	return &Client{rest: rc, pageSize: pageSize, maxPages: maxPages}
}

// Home returns the service base URL.
func (c *Client) Home() *url.URL {
	return c.rest.Home()
}

func (c *Client) paginator(filters map[string]string, expand []string) rest.Paginator {
	return rest.Paginator{
		Style:    rest.StyleOffsetLimit,
		PageSize: c.pageSize,
		MaxPages: c.maxPages,
		Filters:  filters,
		Expand:   expand,
	}
}

// ListContent streams every content entity matching q.
func (c *Client) ListContent(ctx context.Context, q ContentQuery, each func(Content) error) error {
	expand := q.Expand
	if len(expand) == 0 {
		expand = DefaultContentExpand
	}
	filters := map[string]string{"type": q.Type, "spaceKey": q.SpaceKey}
	return rest.FetchAll(ctx, c.paginator(filters, expand), c.listPage(apiPath+"/content", "content page"), each)
}

// ListPages streams every page matching q.
func (c *Client) ListPages(ctx context.Context, q ContentQuery, each func(Content) error) error {
	q.Type = TypePage
	return c.ListContent(ctx, q, each)
}

// ListBlogPosts streams every blog post matching q.
func (c *Client) ListBlogPosts(ctx context.Context, q ContentQuery, each func(Content) error) error {
	q.Type = TypeBlogPost
	return c.ListContent(ctx, q, each)
}

// ListItems streams pages and then, if includeBlog is set, blog posts as
// one logical listing.
func (c *Client) ListItems(ctx context.Context, q ContentQuery, includeBlog bool, each func(Content) error) error {
	if err := c.ListPages(ctx, q, each); err != nil {
		return err
	}
	if !includeBlog {
		return nil
	}
	return c.ListBlogPosts(ctx, q, each)
}

// ListComments streams the comments attached to one content entity.
func (c *Client) ListComments(ctx context.Context, contentID string, each func(Content) error) error {
	path := fmt.Sprintf("%s/content/%s/child/comment", apiPath, url.PathEscape(contentID))
	return rest.FetchAll(ctx, c.paginator(nil, DefaultCommentExpand), c.listPage(path, "comment page"), each)
}

// GetContent fetches one content entity by id.
func (c *Client) GetContent(ctx context.Context, id string, expand ...string) (*Content, error) {
	if len(expand) == 0 {
		expand = DefaultContentExpand
	}
	req := rest.Get(fmt.Sprintf("%s/content/%s", apiPath, url.PathEscape(id))).
		WithParam("expand", strings.Join(expand, ","))
	content, err := rest.Call[Content](ctx, c.rest, req, "content")
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// GetSpace fetches one space by key.
func (c *Client) GetSpace(ctx context.Context, key string) (*Space, error) {
	req := rest.Get(fmt.Sprintf("%s/space/%s", apiPath, url.PathEscape(key)))
	space, err := rest.Call[Space](ctx, c.rest, req, "space")
	if err != nil {
		return nil, err
	}
	return &space, nil
}

// listPage returns a page fetcher for an offset/limit listing endpoint.
// Each result inherits the listing's base link when it has none of its own.
func (c *Client) listPage(path, target string) rest.PageFunc[Content] {
	return func(ctx context.Context, pr domain.PageRequest) (domain.PageResult[Content], error) {
		req := rest.StyleOffsetLimit.Apply(rest.Get(path), pr)
		list, err := rest.Call[contentList](ctx, c.rest, req, target)
		if err != nil {
			return domain.PageResult[Content]{}, err
		}
		for i := range list.Results {
			if list.Results[i].Links.Base == "" {
				list.Results[i].Links.Base = list.Links.Base
			}
		}
		return domain.PageResult[Content]{Items: list.Results}, nil
	}
}
