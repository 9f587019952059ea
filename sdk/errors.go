package dkai

import (
	"fmt"
	"net/url"

	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
)

// Error is the canonical typed API error surfaced by all services.
type Error = gemini.Error

// Error types.
const (
	ErrInvalidRequest = gemini.ErrInvalidRequest
	ErrAuthentication = gemini.ErrAuthentication
	ErrPermission     = gemini.ErrPermission
	ErrNotFound       = gemini.ErrNotFound
	ErrRateLimit      = gemini.ErrRateLimit
	ErrAPI            = gemini.ErrAPI
	ErrOverloaded     = gemini.ErrOverloaded
	ErrProvider       = gemini.ErrProvider
)

// TransportError represents transport-level failures (DNS, timeouts,
// connection reset, TLS handshake, websocket dial) while talking to the
// API, as opposed to canonical API errors (*Error).
//
// Use errors.As(err, &transportErr) to distinguish the two.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Op != "" && e.URL != "":
		return fmt.Sprintf("transport error during %s %s: %v", e.Op, redactURLUserInfo(e.URL), e.Err)
	case e.Op != "":
		return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("transport error: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func redactURLUserInfo(raw string) string {
	if raw == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}
	parsed.User = nil
	// The live endpoint carries the API key as a query parameter.
	q := parsed.Query()
	if q.Has("key") {
		q.Set("key", "redacted")
		parsed.RawQuery = q.Encode()
	}
	return parsed.String()
}
