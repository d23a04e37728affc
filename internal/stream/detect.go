package stream

import (
	"net/http"

	"daylog/internal/config"
)

// Mode is the strategy used to consume a response body.
type Mode int

const (
	// ModeAuto lets DetectMode decide per response.
	ModeAuto Mode = iota
	// ModeIncremental decodes the body as bytes arrive.
	ModeIncremental
	// ModeBuffered reads the whole body first and then delivers its lines
	// one at a time with an optional typing delay. The full response has
	// already arrived at that point, so no latency is hidden.
	ModeBuffered
)

func (m Mode) String() string {
	switch m {
	case ModeIncremental:
		return config.StreamModeIncremental
	case ModeBuffered:
		return config.StreamModeBuffered
	default:
		return config.StreamModeAuto
	}
}

// ParseMode converts a configured mode name. Unknown names map to ModeAuto.
func ParseMode(s string) Mode {
	switch s {
	case config.StreamModeIncremental:
		return ModeIncremental
	case config.StreamModeBuffered:
		return ModeBuffered
	default:
		return ModeAuto
	}
}

// DetectMode decides whether resp can be read incrementally.
// A forced mode other than ModeAuto always wins. Otherwise a body that is
// missing, has a declared Content-Length, or arrives over HTTP/1.0 is
// consumed in buffered mode.
func DetectMode(resp *http.Response, forced Mode) Mode {
	if forced == ModeIncremental || forced == ModeBuffered {
		return forced
	}
	if resp == nil || resp.Body == nil || resp.Body == http.NoBody {
		return ModeBuffered
	}
	if !resp.ProtoAtLeast(1, 1) {
		return ModeBuffered
	}
	if resp.ContentLength >= 0 {
		return ModeBuffered
	}
	return ModeIncremental
}
