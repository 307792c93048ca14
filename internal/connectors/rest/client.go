package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/logger"
)

const (
	// maxErrorBody bounds how much of a failed response is kept in the error.
	maxErrorBody = 512

	keepAlive = 30 * time.Second
)

// Client executes authenticated calls against one service home.
// It is safe for concurrent use; all state is fixed at construction.
type Client struct {
	home   *url.URL
	signer Signer
	http   *http.Client

	// readTimeout bounds the body read once headers have arrived.
	readTimeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	signerOpts []SignerOption
}

// WithHTTPClient replaces the HTTP client (proxy and timeouts are then the
// caller's responsibility).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithSignerOptions passes options through to the OAuth signer.
func WithSignerOptions(opts ...SignerOption) ClientOption {
	return func(o *clientOptions) {
		o.signerOpts = append(o.signerOpts, opts...)
	}
}

// NewClient builds a client from a ClientConfig.
func NewClient(cfg domain.ClientConfig, opts ...ClientOption) (*Client, error) {
	if cfg.Home == nil || cfg.Home.Scheme == "" || cfg.Home.Host == "" {
		return nil, domain.NewConfigError("home", "absolute URL required")
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	signer, err := NewSigner(cfg.Credentials, o.signerOpts...)
	if err != nil {
		return nil, err
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: newTransport(cfg)}
	}

	home := *cfg.Home
	home.Path = strings.TrimRight(home.Path, "/")
	home.RawQuery = ""
	home.Fragment = ""

	return &Client{home: &home, signer: signer, http: httpClient, readTimeout: cfg.ReadTimeout}, nil
}

// newTransport applies proxy and connect/read timeouts.
func newTransport(cfg domain.ClientConfig) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ConnectTimeout > 0 {
		dialer := &net.Dialer{Timeout: cfg.ConnectTimeout, KeepAlive: keepAlive}
		transport.DialContext = dialer.DialContext
		transport.TLSHandshakeTimeout = cfg.ConnectTimeout
	}
	if cfg.ReadTimeout > 0 {
		transport.ResponseHeaderTimeout = cfg.ReadTimeout
	}
	if cfg.Proxy != nil {
		transport.Proxy = http.ProxyURL(&url.URL{Scheme: "http", Host: cfg.Proxy.Address()})
	}
	return transport
}

// Home returns the service base URL.
func (c *Client) Home() *url.URL {
	h := *c.home
	return &h
}

// URL assembles home + path + "?" + query.
func (c *Client) URL(req Request) (*url.URL, error) {
	raw := c.home.String() + req.Path()
	if q := req.EncodedQuery(); q != "" {
		raw += "?" + q
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	return u, nil
}

// Do executes a request synchronously. Transport failures and non-2xx
// statuses both come back as *RequestError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if !req.Method().IsValid() {
		return nil, fmt.Errorf("%w: method %q", domain.ErrInvalidInput, req.Method())
	}

	u, err := c.URL(req)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body() != nil {
		data, err := json.Marshal(req.Body())
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	method := string(req.Method())
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &RequestError{Kind: KindTransport, Method: method, URL: u.String(), Err: err}
	}
	httpReq.Header.Set("Authorization", c.signer.Authorize(method, u))
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("%s %s", method, u.String())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Kind: KindTransport, Method: method, URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	if c.readTimeout > 0 {
		stalled := time.AfterFunc(c.readTimeout, cancel)
		defer stalled.Stop()
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Kind: KindTransport, Method: method, URL: u.String(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			Kind:       KindHTTPStatus,
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        u.String(),
			Err:        responseError(resp.StatusCode, data),
		}
	}

	return &Response{StatusCode: resp.StatusCode, Body: string(data)}, nil
}

func responseError(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return statusError(code)
	}
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return errors.New(msg)
}

// DecodeJSON parses a response body into T. A blank body yields the zero
// value; malformed JSON yields *domain.ParseError.
func DecodeJSON[T any](body, target string) (T, error) {
	var v T
	if strings.TrimSpace(body) == "" {
		return v, nil
	}
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return v, &domain.ParseError{Target: target, Err: err}
	}
	return v, nil
}

// Call executes req and decodes the body into T.
func Call[T any](ctx context.Context, c *Client, req Request, target string) (T, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeJSON[T](resp.Body, target)
}
