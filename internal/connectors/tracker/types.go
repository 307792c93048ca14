package tracker

// TimeLayout is the timestamp format used by issue and comment fields.
const TimeLayout = "2006-01-02T15:04:05.000-0700"

// Issue is one search hit with its raw and rendered fields.
type Issue struct {
	ID             string          `json:"id"`
	Key            string          `json:"key"`
	Self           string          `json:"self"`
	Fields         IssueFields     `json:"fields"`
	RenderedFields *RenderedFields `json:"renderedFields,omitempty"`
}

// IssueFields are the fields the connector maps.
type IssueFields struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Created     string   `json:"created"`
	Updated     string   `json:"updated"`
	Labels      []string `json:"labels"`
	Status      *Named   `json:"status,omitempty"`
	IssueType   *Named   `json:"issuetype,omitempty"`
	Priority    *Named   `json:"priority,omitempty"`
	Project     *Project `json:"project,omitempty"`
	Assignee    *User    `json:"assignee,omitempty"`
	Reporter    *User    `json:"reporter,omitempty"`
}

// RenderedFields holds HTML renderings requested with expand=renderedFields.
type RenderedFields struct {
	Description string `json:"description"`
}

// Named is any field with just a name (status, type, priority).
type Named struct {
	Name string `json:"name"`
}

// Project is an issue container.
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// User is the subset of a user profile the harvester reads.
type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// IssueComment is one comment on an issue.
type IssueComment struct {
	ID           string `json:"id"`
	Body         string `json:"body"`
	RenderedBody string `json:"renderedBody"`
	Author       *User  `json:"author,omitempty"`
	Created      string `json:"created"`
	Updated      string `json:"updated"`
}

// HTML returns the rendered body, falling back to the raw body.
func (c IssueComment) HTML() string {
	if c.RenderedBody != "" {
		return c.RenderedBody
	}
	return c.Body
}

type searchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

type commentList struct {
	StartAt    int            `json:"startAt"`
	MaxResults int            `json:"maxResults"`
	Total      int            `json:"total"`
	Comments   []IssueComment `json:"comments"`
}

// searchRequest is the JSON body of a POST search.
type searchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields,omitempty"`
	Expand     []string `json:"expand,omitempty"`
}
