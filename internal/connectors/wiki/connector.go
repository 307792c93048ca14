package wiki

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/harvester/internal/connectors/rest"
	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
	"github.com/custodia-labs/harvester/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.ItemSource = (*Connector)(nil)

// Connector adapts the wiki client to an ItemSource.
type Connector struct {
	client   *Client
	settings domain.WikiSettings
}

// NewConnector creates a connector for one run.
func NewConnector(client *Client, settings domain.WikiSettings) *Connector {
	return &Connector{client: client, settings: settings}
}

// Service returns the service identifier.
func (c *Connector) Service() domain.Service {
	return domain.ServiceWiki
}

// ListItems streams pages and, unless disabled, blog posts.
func (c *Connector) ListItems(ctx context.Context, each func(domain.Item) error) error {
	q := ContentQuery{SpaceKey: c.settings.SpaceKey, Expand: c.settings.Expand}
	return c.client.ListItems(ctx, q, c.settings.IncludeBlog, func(content Content) error {
		return each(c.toItem(content))
	})
}

// ListComments streams the comments of a page or blog post.
func (c *Connector) ListComments(ctx context.Context, item domain.Item, each func(domain.Comment) error) error {
	return c.client.ListComments(ctx, item.ID, func(content Content) error {
		return each(toComment(content))
	})
}

func (c *Connector) toItem(content Content) domain.Item {
	item := domain.Item{
		ID:       content.ID,
		Kind:     itemKind(content.Type),
		Title:    content.Title,
		BodyHTML: content.HTML(),
		ViewURL:  c.viewURL(content.Links),
		Metadata: map[string]any{
			"type":   content.Type,
			"status": content.Status,
		},
	}

	if content.Space != nil {
		item.Key = content.Space.Key
		item.Metadata["space_key"] = content.Space.Key
		item.Metadata["space_name"] = content.Space.Name
	}
	if content.Version != nil {
		item.LastModified = parseWhen(content.ID, content.Version.When)
		item.Metadata["version"] = content.Version.Number
		if content.Version.By != nil {
			item.Metadata["author"] = content.Version.By.DisplayName
		}
	}
	return item
}

// viewURL joins the base link and web UI path. Without a base link the
// client home stands in.
func (c *Connector) viewURL(links Links) string {
	if links.WebUI == "" {
		return ""
	}
	base := links.Base
	if base == "" {
		base = c.client.Home().String()
	}
	return strings.TrimRight(base, "/") + links.WebUI
}

func toComment(content Content) domain.Comment {
	comment := domain.Comment{
		ID:       content.ID,
		BodyHTML: content.HTML(),
	}
	if content.Version != nil {
		comment.Created = parseWhen(content.ID, content.Version.When)
		if content.Version.By != nil {
			comment.Author = content.Version.By.DisplayName
		}
	}
	return comment
}

func itemKind(contentType string) domain.ItemKind {
	if contentType == TypeBlogPost {
		return domain.KindBlogPost
	}
	return domain.KindPage
}

// parseWhen parses a version timestamp; a bad value is logged and dropped
// rather than failing the listing.
func parseWhen(id, when string) time.Time {
	t, err := rest.ParseTimestamp(when)
	if err != nil {
		logger.Warn("wiki: content %s: %v", id, err)
	}
	return t
}
