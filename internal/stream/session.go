package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	"daylog/internal/apierr"
	"daylog/internal/service"
)

const readSize = 4096

// Messages of the error frames the session synthesizes itself.
const (
	msgUnexpectedEnd = "stream ended unexpectedly"
	msgTimeout       = "stream timed out"
	msgReadFailed    = "stream read failed"
)

// Options configure how a session consumes its body.
type Options struct {
	// Mode forces a consumption strategy. ModeAuto detects it per response.
	Mode Mode
	// TypingDelay spaces out frames in buffered mode. Zero delivers at once.
	TypingDelay time.Duration
	// Timeout bounds the whole session. Zero means no bound.
	Timeout time.Duration
	// StrictDependencies turns a complete frame whose breakdown has
	// forward or out-of-range dependencies into an error frame.
	StrictDependencies bool
	Logger             *slog.Logger
}

// Session is one streaming response being consumed.
// Frames may be ranged over once; Close may be called from any goroutine.
type Session struct {
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
	body   io.ReadCloser
	mode   Mode
	opts   Options
	cb     service.StreamCallbacks
	parser *Parser
	span   trace.Span
	logger *slog.Logger

	mu      sync.Mutex
	outcome service.Outcome
	started bool
	closed  bool
	ended   bool
}

// NewSession wraps body in a session consumed in the given mode.
// ModeAuto is treated as ModeIncremental since no response is available to inspect.
func NewSession(ctx context.Context, body io.Reader, mode Mode, opts Options, cb service.StreamCallbacks) *Session {
	rc, ok := body.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(body)
	}
	if mode == ModeAuto {
		mode = ModeIncremental
	}
	return newSession(ctx, rc, mode, opts, cb, noop.Span{})
}

func newSession(ctx context.Context, body io.ReadCloser, mode Mode, opts Options, cb service.StreamCallbacks, span trace.Span) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sctx context.Context
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		sctx, cancel = context.WithTimeout(ctx, opts.Timeout)
	} else {
		sctx, cancel = context.WithCancel(ctx)
	}

	s := &Session{
		parent: ctx,
		ctx:    sctx,
		cancel: cancel,
		body:   body,
		mode:   mode,
		opts:   opts,
		cb:     cb,
		parser: NewParser(logger),
		span:   span,
		logger: logger.With("stream_mode", mode.String()),
	}

	// Closing the body unblocks a pending Read when the context ends.
	context.AfterFunc(sctx, func() { body.Close() })
	return s
}

// Mode returns the consumption strategy in use.
func (s *Session) Mode() Mode {
	return s.mode
}

// Outcome implements service.Stream.
func (s *Session) Outcome() service.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Close implements service.Stream. A session closed before its frames were
// consumed ends as cancelled. No callback starts after Close returns; one
// already running on the consuming goroutine is allowed to finish.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	if !s.started {
		s.started = true
		s.setOutcomeLocked(service.OutcomeCancelled)
	}
	s.mu.Unlock()

	s.cancel()
	s.end()
	return nil
}

// Frames implements service.Stream. Callbacks fire for each frame just
// before it is yielded. Stopping the iteration early cancels the session.
func (s *Session) Frames() iter.Seq[service.Frame] {
	return func(yield func(service.Frame) bool) {
		s.mu.Lock()
		if s.started {
			s.mu.Unlock()
			return
		}
		s.started = true
		s.mu.Unlock()

		defer s.end()
		defer s.cancel()

		d := &deliverer{s: s, yield: yield}
		switch s.mode {
		case ModeBuffered:
			s.consumeBuffered(d)
		default:
			s.consumeIncremental(d)
		}
	}
}

// deliverer pushes frames to the callbacks and the iterator consumer and
// stops after the first terminal frame.
type deliverer struct {
	s       *Session
	yield   func(service.Frame) bool
	stopped bool
}

func (d *deliverer) deliver(f service.Frame) bool {
	if d.stopped {
		return false
	}
	s := d.s
	if f.Kind == service.FrameComplete && s.opts.StrictDependencies && f.Data != nil {
		if err := f.Data.CheckDependencies(); err != nil {
			s.logger.Warn("rejecting breakdown with invalid dependencies", "error", err)
			f = service.Frame{Kind: service.FrameError, Error: "invalid breakdown: " + err.Error()}
		}
	}

	if !s.beginCallback() {
		d.stopped = true
		return false
	}
	s.invoke(f)

	if f.IsTerminal() {
		if f.Kind == service.FrameComplete {
			s.setOutcome(service.OutcomeComplete)
		} else {
			s.setOutcome(service.OutcomeError)
		}
		d.stopped = true
		d.yield(f)
		return false
	}

	if !d.yield(f) {
		s.setOutcome(service.OutcomeCancelled)
		d.stopped = true
		return false
	}
	return true
}

// fail ends the session because of a local failure. Caller aborts end as
// cancelled; everything else becomes a synthesized error frame.
func (d *deliverer) fail(msg string, err error) {
	s := d.s
	if s.aborted() {
		s.setOutcome(service.OutcomeCancelled)
		return
	}
	if errors.Is(s.ctx.Err(), context.DeadlineExceeded) {
		msg = msgTimeout
	}
	s.logger.Warn("stream failed", "reason", msg, "error", err)
	d.deliver(service.Frame{Kind: service.FrameError, Error: msg})
}

// finish handles end of input after every line has been parsed.
func (d *deliverer) finish() {
	if d.stopped {
		return
	}
	for _, f := range d.s.parser.Flush() {
		if !d.deliver(f) {
			return
		}
	}
	if d.s.parser.Done() {
		d.s.setOutcome(service.OutcomeDone)
		return
	}
	d.fail(msgUnexpectedEnd, io.ErrUnexpectedEOF)
}

func (s *Session) consumeIncremental(d *deliverer) {
	buf := make([]byte, readSize)
	for {
		n, err := s.body.Read(buf)
		if n > 0 {
			for _, f := range s.parser.Feed(buf[:n]) {
				if !d.deliver(f) {
					return
				}
			}
			if s.parser.Done() {
				s.setOutcome(service.OutcomeDone)
				return
			}
		}
		if errors.Is(err, io.EOF) {
			d.finish()
			return
		}
		if err != nil {
			d.fail(msgReadFailed, err)
			return
		}
	}
}

func (s *Session) consumeBuffered(d *deliverer) {
	data, err := io.ReadAll(s.body)
	if err != nil {
		d.fail(msgReadFailed, err)
		return
	}

	var limiter *rate.Limiter
	if s.opts.TypingDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(s.opts.TypingDelay), 1)
	}

	for line := range bytes.Lines(data) {
		for _, f := range s.parser.Feed(line) {
			if limiter != nil {
				if err := limiter.Wait(s.ctx); err != nil {
					d.fail(msgTimeout, err)
					return
				}
			}
			if !d.deliver(f) {
				return
			}
		}
		if s.parser.Done() {
			s.setOutcome(service.OutcomeDone)
			return
		}
	}
	d.finish()
}

func (s *Session) invoke(f service.Frame) {
	switch f.Kind {
	case service.FrameChunk:
		if s.cb.OnChunk != nil {
			s.cb.OnChunk(f.Content)
		}
	case service.FrameComplete:
		if s.cb.OnComplete != nil {
			s.cb.OnComplete(f)
		}
	case service.FrameError:
		if s.cb.OnError != nil {
			s.cb.OnError(f.Error)
		}
	}
}

// beginCallback decides under s.mu whether a callback may start. Once Close
// has taken the lock, no later callback starts.
func (s *Session) beginCallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.parent.Err() != nil {
		s.setOutcomeLocked(service.OutcomeCancelled)
		return false
	}
	return true
}

// aborted reports whether the caller cancelled or closed the session.
// A session timeout is not an abort.
func (s *Session) aborted() bool {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	return closed || s.parent.Err() != nil
}

func (s *Session) setOutcome(o service.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setOutcomeLocked(o)
}

func (s *Session) setOutcomeLocked(o service.Outcome) {
	if s.outcome == service.OutcomePending {
		s.outcome = o
	}
}

func (s *Session) end() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	outcome := s.outcome
	s.mu.Unlock()

	s.body.Close()
	s.span.SetAttributes(attribute.String("stream.outcome", outcome.String()))
	if outcome == service.OutcomeError {
		s.span.SetStatus(codes.Error, "stream ended with error")
	}
	s.span.End()
	s.logger.Debug("stream ended", "outcome", outcome.String())
}

// Result is the accumulated content of a finished stream.
type Result struct {
	// Text is the concatenated chunk content, or the complete frame's
	// content when it carries one.
	Text      string
	Breakdown *service.TaskBreakdown
	Err       error
	Outcome   service.Outcome
}

// Collect drains st and accumulates its frames.
func Collect(st service.Stream) Result {
	defer st.Close()

	var res Result
	var text bytes.Buffer
	for f := range st.Frames() {
		switch f.Kind {
		case service.FrameChunk:
			text.WriteString(f.Content)
		case service.FrameComplete:
			if f.Content != "" {
				text.Reset()
				text.WriteString(f.Content)
			}
			res.Breakdown = f.Data
		case service.FrameError:
			res.Err = apierr.StreamProtocol(f.Error, nil)
		}
	}
	res.Text = text.String()
	res.Outcome = st.Outcome()
	return res
}

var _ service.Stream = (*Session)(nil)
