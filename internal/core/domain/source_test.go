package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestService_IsValid(t *testing.T) {
	assert.True(t, ServiceWiki.IsValid())
	assert.True(t, ServiceTracker.IsValid())
	assert.False(t, Service("chat").IsValid())
	assert.False(t, Service("").IsValid())
	assert.Equal(t, "wiki", ServiceWiki.String())
}

func TestSource_Redacted(t *testing.T) {
	src := Source{
		Name:    "eng",
		Service: ServiceTracker,
		Config: map[string]string{
			"home":               "https://tracker.example.com",
			"basic.username":     "bot",
			"basic.password":     "pw",
			"oauth.private_key":  "MIIE...",
			"oauth.token":        "tok",
			"oauth.verifier":     "ver",
			"oauth.consumer_key": "harvester",
			"client_secret":      "x",
		},
	}

	red := src.Redacted()

	assert.Equal(t, "https://tracker.example.com", red["home"])
	assert.Equal(t, "bot", red["basic.username"])
	assert.Equal(t, "harvester", red["oauth.consumer_key"])
	for _, k := range []string{"basic.password", "oauth.private_key", "oauth.token", "oauth.verifier", "client_secret"} {
		assert.Equal(t, "******", red[k], k)
	}
	assert.Equal(t, "pw", src.Config["basic.password"], "original is untouched")
}

func TestDefaultFields(t *testing.T) {
	fields := DefaultFields()
	assert.Equal(t, "item.view_url", fields["url"])
	assert.Len(t, fields, 5)

	fields["url"] = "changed"
	assert.Equal(t, "item.view_url", DefaultFields()["url"], "each call returns a fresh map")
}

func TestPageRequest_Next(t *testing.T) {
	req := PageRequest{Offset: 0, PageSize: 25, Filters: map[string]string{"type": "page"}}

	next := req.Next()
	assert.Equal(t, 25, next.Offset)
	assert.Equal(t, 0, req.Offset, "Next does not modify the receiver")
	assert.Equal(t, 50, next.Next().Offset)
	assert.Equal(t, "page", next.Filters["type"])
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 3, 1, 11, 0, 0, 123456789, loc)

	assert.Equal(t, "2024-03-01T10:00:00.123Z", FormatTimestamp(ts))
	assert.Empty(t, FormatTimestamp(time.Time{}))
}

func TestStatsAction_IsTerminal(t *testing.T) {
	terminal := map[StatsAction]bool{
		ActionOpened:    false,
		ActionPrepared:  false,
		ActionEvaluated: false,
		ActionDiscarded: true,
		ActionFinished:  true,
		ActionException: true,
	}
	for action, want := range terminal {
		assert.Equal(t, want, action.IsTerminal(), string(action))
	}
}

func TestStatsKey(t *testing.T) {
	key := NewStatsKey("https://wiki.example.com/a")
	assert.Equal(t, "https://wiki.example.com/a", key.URL())
	assert.False(t, key.Started().IsZero())

	key.SetURL("https://wiki.example.com/b")
	assert.Equal(t, "https://wiki.example.com/b", key.URL())
}

func TestNewFailureRecord(t *testing.T) {
	run := Run{ID: "run-1", Source: Source{Config: map[string]string{"basic.password": "pw", "home": "h"}}}

	rec := NewFailureRecord("f-1", run, "ParseError", "https://x/1", errors.New("bad json"))
	assert.Equal(t, "f-1", rec.ID)
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, "ParseError", rec.ErrorKind)
	assert.Equal(t, "bad json", rec.Cause)
	assert.Equal(t, "******", rec.SourceConfig["basic.password"])
	assert.Equal(t, "h", rec.SourceConfig["home"])
	assert.WithinDuration(t, time.Now(), rec.RecordedAt, time.Minute)

	assert.Empty(t, NewFailureRecord("f-2", run, "X", "u", nil).Cause)
}
