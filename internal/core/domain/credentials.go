package domain

import (
	"crypto/rsa"
	"fmt"
	"net"
	"strconv"
)

// AuthType selects the credential variant.
type AuthType string

const (
	// AuthBasic is username/password Basic authentication.
	AuthBasic AuthType = "basic"
	// AuthOAuth is OAuth 1.0a with RSA-SHA1 request signing.
	AuthOAuth AuthType = "oauth"
)

// Credentials is a closed union over the supported authentication schemes.
// Exactly one of Basic or OAuth is non-nil. Values are immutable once built;
// use NewBasicCredentials or NewOAuthCredentials.
type Credentials struct {
	basic *BasicCredentials
	oauth *OAuthCredentials
}

// BasicCredentials holds a username and password.
type BasicCredentials struct {
	Username string
	Password string
}

// OAuthCredentials holds the OAuth 1.0a parameters used for RSA-SHA1 signing.
type OAuthCredentials struct {
	ConsumerKey string
	PrivateKey  *rsa.PrivateKey
	Token       string
	Verifier    string
}

// NewBasicCredentials builds Basic credentials. Both fields are required.
func NewBasicCredentials(username, password string) (Credentials, error) {
	if username == "" {
		return Credentials{}, missingCredential("basic.username")
	}
	if password == "" {
		return Credentials{}, missingCredential("basic.password")
	}
	return Credentials{basic: &BasicCredentials{Username: username, Password: password}}, nil
}

// NewOAuthCredentials builds OAuth 1.0a credentials. All fields are required.
func NewOAuthCredentials(consumerKey string, key *rsa.PrivateKey, token, verifier string) (Credentials, error) {
	switch {
	case consumerKey == "":
		return Credentials{}, missingCredential("oauth.consumer_key")
	case key == nil:
		return Credentials{}, missingCredential("oauth.private_key")
	case token == "":
		return Credentials{}, missingCredential("oauth.token")
	case verifier == "":
		return Credentials{}, missingCredential("oauth.verifier")
	}
	return Credentials{oauth: &OAuthCredentials{
		ConsumerKey: consumerKey,
		PrivateKey:  key,
		Token:       token,
		Verifier:    verifier,
	}}, nil
}

func missingCredential(param string) error {
	return &ConfigError{Param: param, Reason: "required", Err: ErrMissingCredential}
}

// Type returns the active variant, or "" for the zero value.
func (c Credentials) Type() AuthType {
	switch {
	case c.basic != nil:
		return AuthBasic
	case c.oauth != nil:
		return AuthOAuth
	default:
		return ""
	}
}

// Basic returns the Basic variant and whether it is active.
func (c Credentials) Basic() (BasicCredentials, bool) {
	if c.basic == nil {
		return BasicCredentials{}, false
	}
	return *c.basic, true
}

// OAuth returns the OAuth variant and whether it is active.
func (c Credentials) OAuth() (OAuthCredentials, bool) {
	if c.oauth == nil {
		return OAuthCredentials{}, false
	}
	return *c.oauth, true
}

// IsZero reports whether no variant was constructed.
func (c Credentials) IsZero() bool {
	return c.basic == nil && c.oauth == nil
}

// Proxy is an optional HTTP proxy for outbound calls.
type Proxy struct {
	Host string
	Port int
}

// NewProxy validates a host/port pair.
func NewProxy(host string, port int) (*Proxy, error) {
	if host == "" {
		return nil, NewConfigError("proxy_host", "required when proxy_port is set")
	}
	if port <= 0 || port > 65535 {
		return nil, NewConfigError("proxy_port", fmt.Sprintf("out of range: %d", port))
	}
	return &Proxy{Host: host, Port: port}, nil
}

// Address returns host:port.
func (p Proxy) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}
