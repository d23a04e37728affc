package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"daylog/internal/service"
)

// StreamPrinter writes streamed chunks as they arrive.
type StreamPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	written bool
	lastNL  bool
}

// NewStreamPrinter creates a printer writing to w.
func NewStreamPrinter(w io.Writer) *StreamPrinter {
	return &StreamPrinter{w: w}
}

// Callbacks returns stream callbacks that print chunk content.
func (p *StreamPrinter) Callbacks() service.StreamCallbacks {
	return service.StreamCallbacks{OnChunk: p.Chunk}
}

// Chunk prints one piece of streamed text.
func (p *StreamPrinter) Chunk(content string) {
	if content == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, content)
	p.written = true
	p.lastNL = strings.HasSuffix(content, "\n")
}

// Wrote reports whether any chunk was printed.
func (p *StreamPrinter) Wrote() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}

// End terminates the streamed text with a newline if it lacks one.
func (p *StreamPrinter) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.written && !p.lastNL {
		fmt.Fprintln(p.w)
		p.lastNL = true
	}
}
