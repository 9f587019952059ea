package dkai

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn is one completed conversational exchange: everything the user
// said and everything the model said between two turn boundaries.
type Turn struct {
	ID          string
	User        string
	Model       string
	CompletedAt time.Time
}

// TranscriptLog accumulates incremental transcription fragments from a
// live session and finalizes them into turns at each turn boundary.
// It is safe for concurrent use.
type TranscriptLog struct {
	mu    sync.Mutex
	user  strings.Builder
	model strings.Builder
	turns []Turn
}

// NewTranscriptLog creates an empty log.
func NewTranscriptLog() *TranscriptLog {
	return &TranscriptLog{}
}

// AppendUser adds a user transcript fragment to the in-progress turn.
func (l *TranscriptLog) AppendUser(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.user.WriteString(text)
}

// AppendModel adds a model transcript fragment to the in-progress turn.
func (l *TranscriptLog) AppendModel(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.model.WriteString(text)
}

// FinalizeTurn closes the in-progress turn and appends it to the log.
// A turn is appended even when both sides are empty so the turn count
// always matches the number of boundaries observed.
func (l *TranscriptLog) FinalizeTurn() Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	turn := Turn{
		ID:          uuid.NewString(),
		User:        l.user.String(),
		Model:       l.model.String(),
		CompletedAt: time.Now(),
	}
	l.user.Reset()
	l.model.Reset()
	l.turns = append(l.turns, turn)
	return turn
}

// Turns returns a copy of all finalized turns in completion order.
func (l *TranscriptLog) Turns() []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Interim returns the not-yet-finalized user and model text.
func (l *TranscriptLog) Interim() (user, model string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.user.String(), l.model.String()
}

// Apply folds a live event into the log. Unrelated events are ignored,
// so the full event stream can be fed through unchanged.
func (l *TranscriptLog) Apply(event LiveEvent) {
	switch e := event.(type) {
	case UserTranscriptEvent:
		l.AppendUser(e.Text)
	case ModelTranscriptEvent:
		l.AppendModel(e.Text)
	case TurnCompleteEvent:
		l.FinalizeTurn()
	}
}
