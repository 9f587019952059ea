package dkai

import (
	"context"
	"encoding/base64"
	"strings"
	"time"
)

// StripCodeFence removes a surrounding markdown code fence, with or
// without a language tag, and trims whitespace. Text without a fence is
// returned trimmed and otherwise unchanged.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s[3:]
	if idx := strings.Index(body, "\n"); idx >= 0 {
		// The first line holds an optional language tag.
		body = body[idx+1:]
	} else {
		body = strings.TrimLeft(body, "`")
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

// DataURI renders raw bytes as a data: URI for direct embedding.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// sleeper abstracts polling delays so tests run without real waits.
type sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
