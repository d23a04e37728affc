// Package apierr classifies backend, transport and stream failures.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind is the category of a failure.
type Kind int

const (
	// KindRequest is a client-side request failure that fits no other kind.
	KindRequest Kind = iota
	// KindAuthentication is a missing or rejected bearer credential.
	KindAuthentication
	// KindNetwork means the request never reached the server.
	KindNetwork
	// KindValidation is a 400/422 response or a failed pre-submission check.
	KindValidation
	// KindNotFound is a 404 response.
	KindNotFound
	// KindServer is a 5xx response.
	KindServer
	// KindStreamProtocol is a malformed or unexpectedly terminated stream.
	KindStreamProtocol
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindServer:
		return "server"
	case KindStreamProtocol:
		return "stream protocol"
	default:
		return "request"
	}
}

// Sentinels for errors.Is matching on Kind.
var (
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrNetwork        = &Error{Kind: KindNetwork}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrServer         = &Error{Kind: KindServer}
	ErrStreamProtocol = &Error{Kind: KindStreamProtocol}
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Status  int               // HTTP status, 0 if none
	Message string            // human readable
	Fields  map[string]string // field -> message, validation only
	Err     error             // underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString("]")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Authentication returns an authentication error.
func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// Network wraps a transport failure.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "request did not reach the server", Err: err}
}

// Validation returns a validation error with per-field messages.
func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// StreamProtocol returns a stream protocol error.
func StreamProtocol(msg string, err error) *Error {
	return &Error{Kind: KindStreamProtocol, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or KindRequest if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRequest
}

// envelope is the error shape of backend responses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// FromStatus classifies a non-2xx HTTP response.
// body may be nil; when it holds the backend envelope its message is used.
func FromStatus(status int, statusText string, body []byte) *Error {
	e := &Error{Status: status, Message: statusText}

	var env envelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil {
		if env.Message != "" {
			e.Message = env.Message
		} else if env.Error != "" {
			e.Message = env.Error
		}
		e.Fields = parseFieldErrors(env.Errors)
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuthentication
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status >= 500:
		e.Kind = KindServer
	default:
		e.Kind = KindRequest
	}
	return e
}

// parseFieldErrors accepts either {"field":"msg"} or [{"field":..,"message":..}].
func parseFieldErrors(raw json.RawMessage) map[string]string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err == nil && len(m) > 0 {
		return m
	}
	var list []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		m = make(map[string]string, len(list))
		for _, fe := range list {
			m[fe.Field] = fe.Message
		}
		return m
	}
	return nil
}
