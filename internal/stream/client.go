package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"daylog/internal/apierr"
	"daylog/internal/logger"
	"daylog/internal/service"
)

const maxErrorBody = 64 << 10

// TokenFunc returns the current bearer token, or false when signed out.
type TokenFunc func(ctx context.Context) (string, bool)

// Client opens streaming sessions against the AI endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
	opts    Options
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewClient creates a stream client. httpClient must not set a Timeout;
// sessions are bounded by opts.Timeout instead.
func NewClient(baseURL string, httpClient *http.Client, token TokenFunc, opts Options) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		token:   token,
		opts:    opts,
		tracer:  otel.Tracer("daylog/stream"),
		logger:  log,
	}
}

// Open posts body as JSON to path and returns the session consuming the
// response. It fails before any network activity when no token is available.
// Non-2xx responses are returned as *apierr.Error.
func (c *Client) Open(ctx context.Context, path string, body any, cb service.StreamCallbacks) (*Session, error) {
	token, ok := c.token(ctx)
	if !ok {
		return nil, apierr.Authentication("not logged in")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode stream request: %w", err)
	}

	ctx, reqID := logger.EnsureRequestID(ctx)
	ctx, span := c.tracer.Start(ctx, "stream.session", trace.WithAttributes(
		attribute.String("stream.path", path),
		attribute.String("request.id", reqID),
	))

	opts := c.opts
	opts.Logger = c.logger.With("request_id", reqID, "path", path)

	var cancel context.CancelFunc
	reqCtx := ctx
	if opts.Timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	fail := func(err error) (*Session, error) {
		cancel()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("build stream request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		return fail(apierr.Network(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return fail(apierr.FromStatus(resp.StatusCode, statusText(resp), data))
	}

	mode := DetectMode(resp, opts.Mode)
	opts.Logger.Debug("stream opened", "mode", mode.String(), "proto", resp.Proto)
	span.SetAttributes(attribute.String("stream.mode", mode.String()))

	respBody := resp.Body
	if respBody == nil {
		respBody = http.NoBody
	}
	// The request context already carries the timeout.
	opts.Timeout = 0
	s := newSession(reqCtx, respBody, mode, opts, cb, span)
	s.parent = ctx
	context.AfterFunc(s.ctx, cancel)
	return s, nil
}

func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
