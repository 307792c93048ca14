package tracker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvester/internal/connectors/rest"
	"github.com/custodia-labs/harvester/internal/core/domain"
)

// fakeTracker serves issues and comments with a truthful total.
type fakeTracker struct {
	mu       sync.Mutex
	issues   []Issue
	comments map[string][]IssueComment
	requests []*http.Request
	bodies   []searchRequest
}

func (f *fakeTracker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	q := r.URL.Query()
	startAt, _ := strconv.Atoi(q.Get("startAt"))
	maxResults, _ := strconv.Atoi(q.Get("maxResults"))

	switch {
	case r.URL.Path == "/rest/api/2/search":
		if r.Method == http.MethodPost {
			data, _ := io.ReadAll(r.Body)
			var body searchRequest
			_ = json.Unmarshal(data, &body)
			f.mu.Lock()
			f.bodies = append(f.bodies, body)
			f.mu.Unlock()
			startAt, maxResults = body.StartAt, body.MaxResults
		}
		page := window(f.issues, startAt, maxResults)
		_ = json.NewEncoder(w).Encode(searchResult{StartAt: startAt, MaxResults: maxResults, Total: len(f.issues), Issues: page})
	case strings.HasSuffix(r.URL.Path, "/comment"):
		key := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/rest/api/2/issue/"), "/comment")
		all := f.comments[key]
		page := window(all, startAt, maxResults)
		_ = json.NewEncoder(w).Encode(commentList{StartAt: startAt, MaxResults: maxResults, Total: len(all), Comments: page})
	case r.URL.Path == "/rest/api/2/issue/ABC-1":
		_ = json.NewEncoder(w).Encode(f.issues[0])
	case r.URL.Path == "/rest/api/2/project/ABC":
		_ = json.NewEncoder(w).Encode(Project{ID: "10", Key: "ABC", Name: "Alpha"})
	default:
		http.NotFound(w, r)
	}
}

func window[T any](all []T, start, size int) []T {
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	if start > end {
		start = end
	}
	return all[start:end]
}

func issue(n int) Issue {
	key := "ABC-" + strconv.Itoa(n)
	return Issue{
		ID:  strconv.Itoa(1000 + n),
		Key: key,
		Fields: IssueFields{
			Summary:     "Issue " + key,
			Description: "h1. raw",
			Updated:     "2024-05-06T07:08:09.010+0200",
			Status:      &Named{Name: "Open"},
			Project:     &Project{Key: "ABC", Name: "Alpha"},
			Reporter:    &User{DisplayName: "Bo"},
		},
		RenderedFields: &RenderedFields{Description: "<h1>rendered " + key + "</h1>"},
	}
}

func newTestClient(t *testing.T, handler http.Handler, pageSize int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds, err := domain.NewBasicCredentials("user", "pass")
	require.NoError(t, err)
	home, err := url.Parse(srv.URL)
	require.NoError(t, err)

	rc, err := rest.NewClient(domain.ClientConfig{Home: home, Credentials: creds})
	require.NoError(t, err)
	return NewClient(rc, pageSize, 0)
}

func TestClient_Search(t *testing.T) {
	t.Run("get pages through all results", func(t *testing.T) {
		fake := &fakeTracker{issues: []Issue{issue(1), issue(2), issue(3)}}
		client := newTestClient(t, fake, 5)

		var keys []string
		err := client.Search(context.Background(), SearchQuery{JQL: "project = ABC"}, func(i Issue) error {
			keys = append(keys, i.Key)
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"ABC-1", "ABC-2", "ABC-3"}, keys)
		require.Len(t, fake.requests, 1)
		q := fake.requests[0].URL.Query()
		assert.Equal(t, "project = ABC", q.Get("jql"))
		assert.Equal(t, "renderedFields", q.Get("expand"))
		assert.Equal(t, strings.Join(DefaultFields, ","), q.Get("fields"))
		assert.Equal(t, "0", q.Get("startAt"))
		assert.Equal(t, "5", q.Get("maxResults"))
	})

	t.Run("post sends the query as a body", func(t *testing.T) {
		fake := &fakeTracker{issues: []Issue{issue(1), issue(2)}}
		client := newTestClient(t, fake, 5)

		var count int
		err := client.Search(context.Background(), SearchQuery{JQL: "x", Fields: []string{"summary"}, UsePost: true}, func(Issue) error {
			count++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		require.Len(t, fake.bodies, 1)
		assert.Equal(t, "x", fake.bodies[0].JQL)
		assert.Equal(t, []string{"summary"}, fake.bodies[0].Fields)
		assert.Equal(t, []string{"renderedFields"}, fake.bodies[0].Expand)
		assert.Equal(t, 5, fake.bodies[0].MaxResults)
		assert.Equal(t, http.MethodPost, fake.requests[0].Method)
	})

	t.Run("reported total at least the page size keeps fetching", func(t *testing.T) {
		fake := &fakeTracker{issues: []Issue{issue(1), issue(2), issue(3)}}
		client := newTestClient(t, fake, 2)

		var count int
		err := client.Search(context.Background(), SearchQuery{}, func(Issue) error {
			count++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, count)
		// total 3 >= 2 on every page, so only the empty third page stops it.
		assert.Len(t, fake.requests, 3)
	})
}

func TestClient_ListComments(t *testing.T) {
	fake := &fakeTracker{comments: map[string][]IssueComment{
		"ABC-1": {{ID: "1", Body: "raw", RenderedBody: "<p>one</p>"}, {ID: "2", Body: "two"}},
	}}
	client := newTestClient(t, fake, 50)

	var bodies []string
	err := client.ListComments(context.Background(), "ABC-1", func(c IssueComment) error {
		bodies = append(bodies, c.HTML())
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"<p>one</p>", "two"}, bodies)
	assert.Equal(t, "renderedBody", fake.requests[0].URL.Query().Get("expand"))
}

func TestClient_Get(t *testing.T) {
	fake := &fakeTracker{issues: []Issue{issue(1)}}
	client := newTestClient(t, fake, 50)

	t.Run("issue", func(t *testing.T) {
		got, err := client.GetIssue(context.Background(), "ABC-1")
		require.NoError(t, err)
		assert.Equal(t, "Issue ABC-1", got.Fields.Summary)
	})

	t.Run("project", func(t *testing.T) {
		got, err := client.GetProject(context.Background(), "ABC")
		require.NoError(t, err)
		assert.Equal(t, "Alpha", got.Name)
	})

	t.Run("unknown issue", func(t *testing.T) {
		_, err := client.GetIssue(context.Background(), "ZZZ-9")
		assert.True(t, rest.IsNotFound(err))
	})
}
