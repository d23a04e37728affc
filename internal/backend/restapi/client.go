// Package restapi implements the service.Service interface against the
// daylog REST backend.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"daylog/internal/apierr"
	"daylog/internal/logger"
	"daylog/internal/service"
	"daylog/internal/stream"
)

const (
	// DefaultTimeout bounds each non-streaming call.
	DefaultTimeout = 60 * time.Second

	// DashboardTTL is how long a dashboard summary is served from cache.
	DashboardTTL = 30 * time.Second

	maxResponseBody = 8 << 20
)

// Options configure a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// TokenSource authorizes every call except the auth endpoints.
	TokenSource oauth2.TokenSource
	// Token is consulted by streaming calls before any request is made.
	Token stream.TokenFunc

	Stream stream.Options

	// Interceptor receives every classified failure. Optional.
	Interceptor *apierr.Interceptor

	// Transport is the base round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper

	DashboardTTL time.Duration
	Logger       *slog.Logger
}

// Client implements service.Service over HTTP.
type Client struct {
	baseURL     string
	timeout     time.Duration
	public      *http.Client
	authed      *http.Client
	streams     *stream.Client
	interceptor *apierr.Interceptor
	cache       *cache
	logger      *slog.Logger
}

// New creates a REST client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("restapi: base URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.DashboardTTL <= 0 {
		opts.DashboardTTL = DashboardTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	traced := otelhttp.NewTransport(base)

	authed := &http.Client{Transport: traced}
	if opts.TokenSource != nil {
		authed.Transport = &oauth2.Transport{Source: opts.TokenSource, Base: traced}
	}

	token := opts.Token
	if token == nil {
		token = tokenFromSource(opts.TokenSource)
	}
	streamOpts := opts.Stream
	if streamOpts.Logger == nil {
		streamOpts.Logger = opts.Logger
	}

	c, err := newCache()
	if err != nil {
		return nil, fmt.Errorf("restapi: create cache: %w", err)
	}
	c.ttl = opts.DashboardTTL

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	return &Client{
		baseURL:     baseURL,
		timeout:     opts.Timeout,
		public:      &http.Client{Transport: traced},
		authed:      authed,
		streams:     stream.NewClient(baseURL, &http.Client{Transport: traced}, token, streamOpts),
		interceptor: opts.Interceptor,
		cache:       c,
		logger:      opts.Logger,
	}, nil
}

// Close releases the response cache.
func (c *Client) Close() {
	c.cache.close()
}

func tokenFromSource(ts oauth2.TokenSource) stream.TokenFunc {
	return func(context.Context) (string, bool) {
		if ts == nil {
			return "", false
		}
		tok, err := ts.Token()
		if err != nil || tok.AccessToken == "" {
			return "", false
		}
		return tok.AccessToken, true
	}
}

// envelope is the shape of every backend response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// get, post, patch and del call authenticated endpoints.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, c.authed, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, c.authed, http.MethodPost, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, c.authed, http.MethodPatch, path, body, out)
}

func (c *Client) del(ctx context.Context, path string) error {
	return c.do(ctx, c.authed, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx, reqID := logger.EnsureRequestID(ctx)
	log := c.logger.With("request_id", reqID, "method", method, "path", path)

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err)
		return c.failFor(ctx, hc, transportError(ctx, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return c.failFor(ctx, hc, apierr.Network(err))
	}
	log.Debug("request done", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.failFor(ctx, hc, apierr.FromStatus(resp.StatusCode, http.StatusText(resp.StatusCode), data))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return c.failFor(ctx, hc, &apierr.Error{Kind: apierr.KindRequest, Status: resp.StatusCode, Message: msg})
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (c *Client) fail(ctx context.Context, err error) error {
	return c.interceptor.Intercept(ctx, err)
}

// failFor routes err through the interceptor that matches hc.
func (c *Client) failFor(ctx context.Context, hc *http.Client, err error) error {
	if hc == c.public {
		return c.interceptor.InterceptPublic(ctx, err)
	}
	return c.fail(ctx, err)
}

// openStream starts a streaming call and routes open failures through the
// interceptor.
func (c *Client) openStream(ctx context.Context, path string, body any, cb service.StreamCallbacks) (service.Stream, error) {
	s, err := c.streams.Open(ctx, path, body, cb)
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	return s, nil
}

func transportError(ctx context.Context, err error) error {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &apierr.Error{Kind: apierr.KindNetwork, Message: "request timed out", Err: err}
	}
	return apierr.Network(err)
}

var _ service.Service = (*Client)(nil)
