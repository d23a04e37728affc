package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/coder/websocket"

	"daylog/internal/apierr"
)

// Message types pushed by the server.
const (
	TypeTaskUpdated  = "task.updated"
	TypeTaskDeleted  = "task.deleted"
	TypeNotification = "notification"
)

// Message is the envelope of every pushed message.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes one pushed message.
type Handler func(ctx context.Context, msg Message)

// TokenFunc returns the current bearer token, or false when signed out.
type TokenFunc func(ctx context.Context) (string, bool)

// Options configure a Client.
type Options struct {
	URL            string
	Token          TokenFunc
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	HTTPClient     *http.Client
	Logger         *slog.Logger
	// OnState, when set, is called after every transition.
	OnState func(Status)
}

// Client maintains the realtime connection.
type Client struct {
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	machine *Machine
}

// NewClient creates a realtime client.
func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = time.Second
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 30 * time.Second
	}
	return &Client{
		opts:    opts,
		logger:  opts.Logger.With("component", "realtime"),
		machine: NewMachine(opts.MaxAttempts),
	}
}

// State returns the current connection status.
func (c *Client) State() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Status()
}

// Run connects and dispatches messages to h until ctx is cancelled, the
// server rejects the credentials, or the retry budget is exhausted.
// Cancellation returns nil.
func (c *Client) Run(ctx context.Context, h Handler) error {
	if _, err := c.apply(EventConnect); err != nil {
		return err
	}
	defer c.apply(EventStop)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialBackoff
	b.MaxInterval = c.opts.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	b.Reset()

	for {
		conn, err := c.dial(ctx)
		if ctx.Err() != nil {
			if conn != nil {
				conn.CloseNow()
			}
			return nil
		}
		if err != nil {
			if apierr.KindOf(err) == apierr.KindAuthentication {
				return err
			}
			st, _ := c.apply(EventError)
			c.logger.Warn("realtime dial failed", "error", err, "attempt", st.Attempt)
			if st.GaveUp {
				return fmt.Errorf("realtime: giving up after %d attempts: %w", st.Attempt, err)
			}
		} else {
			c.apply(EventConnected)
			b.Reset()
			err = c.read(ctx, conn, h)
			conn.CloseNow()
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Info("realtime connection lost", "error", err)
			c.apply(EventDisconnected)
		}

		if !sleep(ctx, b.NextBackOff()) {
			return nil
		}
		c.apply(EventRetry)
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.opts.Token != nil {
		token, ok := c.opts.Token(ctx)
		if !ok {
			return nil, apierr.Authentication("not logged in")
		}
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.Dial(ctx, c.opts.URL, &websocket.DialOptions{
		HTTPClient: c.opts.HTTPClient,
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, apierr.FromStatus(resp.StatusCode, http.StatusText(resp.StatusCode), nil)
		}
		return nil, apierr.Network(err)
	}
	return conn, nil
}

func (c *Client) read(ctx context.Context, conn *websocket.Conn, h Handler) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("skipping malformed realtime message", "error", err)
			continue
		}
		c.logger.Debug("realtime message", "type", msg.Type)
		h(ctx, msg)
	}
}

func (c *Client) apply(ev Event) (Status, error) {
	c.mu.Lock()
	before := c.machine.Status()
	st, err := c.machine.Apply(ev)
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("ignored realtime event", "error", err)
		return st, err
	}
	if st != before {
		c.logger.Debug("realtime state", "from", before.String(), "to", st.String(), "event", ev.String())
		if c.opts.OnState != nil {
			c.opts.OnState(st)
		}
	}
	return st, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d == backoff.Stop {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
