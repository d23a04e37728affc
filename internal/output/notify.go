package output

import (
	"context"
	"fmt"
	"io"
	"sync"

	"daylog/internal/apierr"
)

// Notifier prints notifications as single lines.
// Info notifications are dropped when quiet is set.
type Notifier struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
}

// NewNotifier creates a Notifier writing to w.
func NewNotifier(w io.Writer, quiet bool) *Notifier {
	return &Notifier{w: w, quiet: quiet}
}

// Notify implements apierr.Notifier.
// Format: "{LEVEL}: {TITLE}: {MESSAGE}\n"
func (n *Notifier) Notify(ctx context.Context, note apierr.Notification) {
	level := note.Level
	if level == "" {
		level = apierr.LevelInfo
	}
	if n.quiet && level == apierr.LevelInfo {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if note.Message == "" {
		fmt.Fprintf(n.w, "%s: %s\n", level, note.Title)
		return
	}
	fmt.Fprintf(n.w, "%s: %s: %s\n", level, note.Title, note.Message)
}

var _ apierr.Notifier = (*Notifier)(nil)
