package tracker

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/harvester/internal/connectors/rest"
	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
	"github.com/custodia-labs/harvester/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.ItemSource = (*Connector)(nil)

// Connector adapts the tracker client to an ItemSource.
type Connector struct {
	client   *Client
	settings domain.TrackerSettings
}

// NewConnector creates a connector for one run.
func NewConnector(client *Client, settings domain.TrackerSettings) *Connector {
	return &Connector{client: client, settings: settings}
}

// Service returns the service identifier.
func (c *Connector) Service() domain.Service {
	return domain.ServiceTracker
}

// ListItems streams every issue matched by the configured JQL.
func (c *Connector) ListItems(ctx context.Context, each func(domain.Item) error) error {
	q := SearchQuery{
		JQL:     c.settings.JQL,
		Fields:  c.settings.Fields,
		UsePost: c.settings.SearchMethod == domain.SearchPost,
	}
	return c.client.Search(ctx, q, func(issue Issue) error {
		return each(c.toItem(issue))
	})
}

// ListComments streams the comments of one issue.
func (c *Connector) ListComments(ctx context.Context, item domain.Item, each func(domain.Comment) error) error {
	key := item.Key
	if key == "" {
		key = item.ID
	}
	return c.client.ListComments(ctx, key, func(comment IssueComment) error {
		return each(toComment(comment))
	})
}

func (c *Connector) toItem(issue Issue) domain.Item {
	f := issue.Fields
	item := domain.Item{
		ID:           issue.ID,
		Key:          issue.Key,
		Kind:         domain.KindIssue,
		Title:        f.Summary,
		BodyHTML:     description(issue),
		LastModified: parseTime(issue.Key, f.Updated),
		ViewURL:      c.browseURL(issue.Key),
		Metadata: map[string]any{
			"labels":  f.Labels,
			"created": f.Created,
		},
	}
	if f.Status != nil {
		item.Metadata["status"] = f.Status.Name
	}
	if f.IssueType != nil {
		item.Metadata["issue_type"] = f.IssueType.Name
	}
	if f.Priority != nil {
		item.Metadata["priority"] = f.Priority.Name
	}
	if f.Project != nil {
		item.Metadata["project_key"] = f.Project.Key
		item.Metadata["project_name"] = f.Project.Name
	}
	if f.Assignee != nil {
		item.Metadata["assignee"] = f.Assignee.DisplayName
	}
	if f.Reporter != nil {
		item.Metadata["reporter"] = f.Reporter.DisplayName
	}
	return item
}

// browseURL is home/browse/KEY.
func (c *Connector) browseURL(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(c.client.Home().String(), "/") + "/browse/" + url.PathEscape(key)
}

// description prefers the rendered HTML over the raw wiki markup.
func description(issue Issue) string {
	if issue.RenderedFields != nil && issue.RenderedFields.Description != "" {
		return issue.RenderedFields.Description
	}
	return issue.Fields.Description
}

func toComment(comment IssueComment) domain.Comment {
	out := domain.Comment{
		ID:       comment.ID,
		BodyHTML: comment.HTML(),
		Created:  parseTime(comment.ID, comment.Created),
	}
	if comment.Author != nil {
		out.Author = comment.Author.DisplayName
	}
	return out
}

func parseTime(id, value string) time.Time {
	t, err := rest.ParseTimestamp(value, TimeLayout, time.RFC3339Nano)
	if err != nil {
		logger.Warn("tracker: %s: %v", id, err)
	}
	return t
}
