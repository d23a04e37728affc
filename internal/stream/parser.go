// Package stream consumes streaming AI responses: newline-delimited
// "data: <json>" frames terminated by "data: [DONE]".
package stream

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"daylog/internal/service"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// Parser splits a growing byte stream into lines and decodes data frames.
// The last incomplete line is carried over to the next Feed. Splitting only
// happens on '\n', so multi-byte UTF-8 sequences cut across reads are
// reassembled before decoding.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	buf    []byte
	done   bool
	logger *slog.Logger
}

// NewParser creates a parser. logger receives skipped malformed frames.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Feed appends data and returns the frames decoded from every complete line.
// Once the [DONE] sentinel is seen the parser is done: the rest of the
// buffer is dropped and later calls return nothing.
func (p *Parser) Feed(data []byte) []service.Frame {
	if p.done {
		return nil
	}
	p.buf = append(p.buf, data...)

	var frames []service.Frame
	for !p.done {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			break
		}
		line := p.buf[:i]
		p.buf = p.buf[i+1:]
		if f, ok := p.parseLine(line); ok {
			frames = append(frames, f)
		}
	}

	if p.done {
		p.buf = nil
	} else if len(p.buf) > 0 {
		p.buf = append([]byte(nil), p.buf...)
	}
	return frames
}

// Flush decodes the carried-over partial line, if any. Call it at end of input.
func (p *Parser) Flush() []service.Frame {
	if p.done || len(p.buf) == 0 {
		p.buf = nil
		return nil
	}
	line := p.buf
	p.buf = nil
	if f, ok := p.parseLine(line); ok {
		return []service.Frame{f}
	}
	return nil
}

// Done reports whether the [DONE] sentinel has been seen.
func (p *Parser) Done() bool {
	return p.done
}

// wireFrame is the JSON payload of a data line.
type wireFrame struct {
	Type    string                 `json:"type"`
	Content string                 `json:"content"`
	Data    *service.TaskBreakdown `json:"data"`
	Error   string                 `json:"error"`
}

func (p *Parser) parseLine(line []byte) (service.Frame, bool) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return service.Frame{}, false
	}
	payload := line[len(dataPrefix):]

	if string(payload) == doneSentinel {
		p.done = true
		return service.Frame{}, false
	}

	var w wireFrame
	if err := json.Unmarshal(payload, &w); err != nil {
		p.logger.Warn("skipping malformed stream frame", "error", err, "payload", truncate(payload, 120))
		return service.Frame{}, false
	}

	switch service.FrameKind(w.Type) {
	case service.FrameChunk:
		return service.Frame{Kind: service.FrameChunk, Content: w.Content}, true
	case service.FrameComplete:
		return service.Frame{Kind: service.FrameComplete, Content: w.Content, Data: w.Data}, true
	case service.FrameError:
		return service.Frame{Kind: service.FrameError, Error: w.Error}, true
	default:
		p.logger.Debug("skipping stream frame of unknown type", "type", w.Type)
		return service.Frame{}, false
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
