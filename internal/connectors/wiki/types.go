package wiki

// Content is one page, blog post or comment as returned by /rest/api/content.
type Content struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Status  string   `json:"status"`
	Title   string   `json:"title"`
	Space   *Space   `json:"space,omitempty"`
	Version *Version `json:"version,omitempty"`
	Body    *Body    `json:"body,omitempty"`
	Links   Links    `json:"_links"`
}

// Space is a container of content.
type Space struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Links Links  `json:"_links"`
}

// Version carries the last-modified instant and author.
type Version struct {
	Number int    `json:"number"`
	When   string `json:"when"`
	By     *User  `json:"by,omitempty"`
}

// User is the subset of a user profile the harvester reads.
type User struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
}

// Body holds the representations requested through expand.
type Body struct {
	View    *Representation `json:"view,omitempty"`
	Storage *Representation `json:"storage,omitempty"`
}

// Representation is one rendering of a body.
type Representation struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// Links are the navigation links the service attaches to entities.
type Links struct {
	Base  string `json:"base,omitempty"`
	WebUI string `json:"webui,omitempty"`
	Self  string `json:"self,omitempty"`
}

// contentList is one page of a content listing.
type contentList struct {
	Results []Content `json:"results"`
	Start   int       `json:"start"`
	Limit   int       `json:"limit"`
	Size    int       `json:"size"`
	Links   Links     `json:"_links"`
}

// HTML returns the rendered body, or "" when none was expanded.
func (c Content) HTML() string {
	if c.Body == nil {
		return ""
	}
	if c.Body.View != nil {
		return c.Body.View.Value
	}
	if c.Body.Storage != nil {
		return c.Body.Storage.Value
	}
	return ""
}
