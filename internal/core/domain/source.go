package domain

import (
	"net/url"
	"strings"
	"time"
)

// Service identifies which remote product a run harvests.
type Service string

const (
	// ServiceWiki is the wiki-style content service (pages and blog posts).
	ServiceWiki Service = "wiki"
	// ServiceTracker is the issue-tracker service.
	ServiceTracker Service = "tracker"
)

// Source is one configured harvest target.
type Source struct {
	// Name is the human-readable name for this source.
	Name string

	// Service selects the connector.
	Service Service

	// Config holds the raw, flattened run parameters (e.g. "home", "basic.username").
	Config map[string]string
}

// Redacted returns Config with secret values masked, suitable for failure records.
func (s Source) Redacted() map[string]string {
	out := make(map[string]string, len(s.Config))
	for k, v := range s.Config {
		if isSecretParam(k) {
			out[k] = "******"
			continue
		}
		out[k] = v
	}
	return out
}

func isSecretParam(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "password") ||
		strings.Contains(k, "private_key") ||
		strings.HasSuffix(k, "token") ||
		strings.HasSuffix(k, "verifier") ||
		strings.HasSuffix(k, "secret")
}

// ClientConfig is everything a service client needs to reach its home.
// Built once per run and shared read-only across workers.
type ClientConfig struct {
	// Home is the service base URL; endpoint paths are relative to it.
	Home *url.URL

	Credentials Credentials

	// Proxy is nil when calls go direct.
	Proxy *Proxy

	// ConnectTimeout and ReadTimeout are zero when unset.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Run identifies one harvest execution.
type Run struct {
	ID        string
	Source    Source
	StartedAt time.Time
}
