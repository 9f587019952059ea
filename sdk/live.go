package dkai

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
	"github.com/dineshkumar-ai/dkai-go/pkg/gemini/liveproto"
)

const (
	defaultLiveConnectTimeout = 15 * time.Second

	// DefaultLiveVoice is the synthetic voice used when none is set.
	DefaultLiveVoice = "Zephyr"

	// DefaultLiveSystem is the assistant persona for live conversations.
	DefaultLiveSystem = "You are DINESHKUMAR.AI, a friendly and helpful virtual assistant. Keep your responses concise and conversational."
)

// LiveService opens bidirectional live voice sessions.
type LiveService struct {
	client *Client
}

// LiveConnectRequest configures a live session. Zero values fall back to
// the platform defaults: audio-only responses, transcription enabled for
// both directions, the Zephyr voice, and the assistant persona.
type LiveConnectRequest struct {
	Model  string
	Voice  string
	System string
}

// SessionState is the lifecycle state of a live session.
type SessionState int32

const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateConnected
	StateError
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LiveEvent is an event emitted by LiveSession.Events().
//
// Events arrive in the order the remote produced them. Transcript and
// audio events belonging to the same turn may interleave in either
// order; handle each kind independently.
type LiveEvent interface {
	liveEventType() string
}

// UserTranscriptEvent carries an incremental user speech transcript.
type UserTranscriptEvent struct{ Text string }

func (e UserTranscriptEvent) liveEventType() string { return "user_transcript" }

// ModelTranscriptEvent carries an incremental model speech transcript.
type ModelTranscriptEvent struct{ Text string }

func (e ModelTranscriptEvent) liveEventType() string { return "model_transcript" }

// AudioChunkEvent carries decoded model audio: 16-bit signed
// little-endian PCM at 24 kHz mono.
type AudioChunkEvent struct{ Data []byte }

func (e AudioChunkEvent) liveEventType() string { return "audio_chunk" }

// TurnCompleteEvent marks a turn boundary.
type TurnCompleteEvent struct{}

func (e TurnCompleteEvent) liveEventType() string { return "turn_complete" }

// InterruptedEvent signals that the user spoke over the model; pending
// playback should be flushed immediately.
type InterruptedEvent struct{}

func (e InterruptedEvent) liveEventType() string { return "interrupted" }

// ErrorEvent carries a terminal session error.
type ErrorEvent struct{ Err error }

func (e ErrorEvent) liveEventType() string { return "error" }

// ClosedEvent marks a clean remote or local close. It is the last event
// before the events channel closes.
type ClosedEvent struct{}

func (e ClosedEvent) liveEventType() string { return "closed" }

// AudioFrame is one captured microphone frame, base64-encoded 16-bit PCM
// with its MIME descriptor.
type AudioFrame struct {
	Data     string
	MIMEType string
}

// LiveSession is a single logical bidirectional session to the live
// conversational model. Sessions are created by LiveService.Connect and
// are dead once an ErrorEvent or ClosedEvent has been delivered.
type LiveSession struct {
	id     string
	client *Client
	conn   *websocket.Conn

	events  chan LiveEvent
	sendCh  chan liveproto.ClientMessage
	done    chan struct{}
	closing chan struct{}

	state     atomic.Int32
	closeOnce sync.Once

	errMu sync.Mutex
	err   error
}

// Connect opens a live session. At most one session may be active per
// client; a second Connect while one is outstanding is rejected.
func (s *LiveService) Connect(ctx context.Context, req *LiveConnectRequest) (*LiveSession, error) {
	if s == nil || s.client == nil {
		return nil, gemini.NewInvalidRequest("live service is not initialized")
	}
	if req == nil {
		req = &LiveConnectRequest{}
	}
	model := req.Model
	if model == "" {
		model = ModelLive
	}
	voice := req.Voice
	if voice == "" {
		voice = DefaultLiveVoice
	}
	system := req.System
	if system == "" {
		system = DefaultLiveSystem
	}

	session := &LiveSession{
		id:      uuid.NewString(),
		client:  s.client,
		events:  make(chan LiveEvent, 256),
		sendCh:  make(chan liveproto.ClientMessage, 64),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
	if err := s.client.claimLiveSlot(session); err != nil {
		return nil, err
	}
	session.state.Store(int32(StateConnecting))

	conn, err := s.dial(ctx)
	if err != nil {
		session.state.Store(int32(StateError))
		s.client.releaseLiveSlot(session)
		return nil, err
	}
	session.conn = conn

	setup := liveproto.ClientMessage{
		Setup: &liveproto.Setup{
			Model: liveproto.NormalizeModel(model),
			GenerationConfig: &liveproto.GenerationConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig: &liveproto.SpeechConfig{
					VoiceConfig: &liveproto.VoiceConfig{
						PrebuiltVoiceConfig: &liveproto.PrebuiltVoiceConfig{VoiceName: voice},
					},
				},
			},
			SystemInstruction:        &liveproto.Content{Parts: []liveproto.Part{{Text: system}}},
			InputAudioTranscription:  &struct{}{},
			OutputAudioTranscription: &struct{}{},
		},
	}
	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		session.state.Store(int32(StateError))
		s.client.releaseLiveSlot(session)
		return nil, gemini.NewAPIError("send live setup: " + err.Error())
	}

	// The first server frame must acknowledge the setup before any
	// audio may flow.
	_ = conn.SetReadDeadline(time.Now().Add(defaultLiveConnectTimeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		session.state.Store(int32(StateError))
		s.client.releaseLiveSlot(session)
		return nil, gemini.NewAPIError("read setup acknowledgment: " + err.Error())
	}
	_ = conn.SetReadDeadline(time.Time{})

	ack, err := liveproto.DecodeServerMessage(payload)
	if err != nil || ack.SetupComplete == nil {
		_ = conn.Close()
		session.state.Store(int32(StateError))
		s.client.releaseLiveSlot(session)
		if err == nil {
			err = gemini.NewAPIError("unexpected first live frame")
		}
		return nil, err
	}

	session.state.Store(int32(StateConnected))
	s.client.logger.Debug("live session connected", "session_id", session.id, "model", model)
	go session.writeLoop()
	go session.readLoop()
	return session, nil
}

func (s *LiveService) dial(ctx context.Context) (*websocket.Conn, error) {
	endpoint := s.client.liveEndpoint
	if endpoint == "" {
		endpoint = liveproto.DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, gemini.NewInvalidRequest("invalid live endpoint URL")
	}
	q := u.Query()
	q.Set("key", s.client.apiKey)
	u.RawQuery = q.Encode()
	wsURL := u.String()

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, defaultLiveConnectTimeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, http.Header{})
	if err != nil {
		return nil, &TransportError{Op: "GET", URL: wsURL, Err: err}
	}
	return conn, nil
}

// ID returns the session identifier.
func (s *LiveSession) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// State returns the current lifecycle state.
func (s *LiveSession) State() SessionState {
	if s == nil {
		return StateDisconnected
	}
	return SessionState(s.state.Load())
}

// Events yields live session events in arrival order. The channel closes
// after the terminal ErrorEvent or ClosedEvent.
func (s *LiveSession) Events() <-chan LiveEvent {
	if s == nil {
		return nil
	}
	return s.events
}

// SendAudioFrame forwards one captured audio frame to the model. The
// send is a non-blocking enqueue. Frames produced while the session is
// not connected are dropped silently, never queued.
func (s *LiveSession) SendAudioFrame(frame AudioFrame) error {
	if s == nil {
		return gemini.NewInvalidRequest("session must not be nil")
	}
	if s.State() != StateConnected {
		return nil
	}
	msg := liveproto.AudioFrame(frame.Data)
	select {
	case s.sendCh <- msg:
	default:
		// Outbound queue full; drop rather than stall the capture path.
	}
	return nil
}

// Close tears the session down. It is idempotent: calling it multiple
// times, or after the session already died, is a no-op. Close returns
// once the read loop has finished and all events have been delivered.
func (s *LiveSession) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if s.State() == StateConnected {
			s.state.Store(int32(StateDisconnected))
		}
		close(s.closing)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second))
		_ = s.conn.Close()
	})
	<-s.done
	return nil
}

// Err returns the terminal session error, if any. It blocks until the
// session has fully shut down.
func (s *LiveSession) Err() error {
	if s == nil {
		return nil
	}
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *LiveSession) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// writeLoop serializes all outbound frames onto the websocket. Frames
// are written in enqueue order, which preserves capture order.
func (s *LiveSession) writeLoop() {
	for {
		select {
		case <-s.closing:
			return
		case <-s.done:
			return
		case msg := <-s.sendCh:
			if err := s.conn.WriteJSON(msg); err != nil {
				// The read loop observes the same failure and owns
				// error reporting and teardown.
				return
			}
		}
	}
}

// readLoop is the single receiver: it decodes server frames and emits
// events strictly in arrival order until the connection dies.
func (s *LiveSession) readLoop() {
	defer func() {
		s.client.releaseLiveSlot(s)
		close(s.events)
		close(s.done)
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closedLocally() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.state.Store(int32(StateDisconnected))
				s.emit(ClosedEvent{})
				return
			}
			s.state.Store(int32(StateError))
			s.setErr(err)
			s.emit(ErrorEvent{Err: err})
			return
		}

		msg, err := liveproto.DecodeServerMessage(data)
		if err != nil {
			s.state.Store(int32(StateError))
			s.setErr(err)
			s.emit(ErrorEvent{Err: err})
			_ = s.conn.Close()
			return
		}
		s.handleServerMessage(msg)
	}
}

// handleServerMessage fans a server frame out into events. Within one
// frame the emission order is: interruption first (so stale playback is
// flushed before anything else), then transcripts, then audio, then the
// turn boundary.
func (s *LiveSession) handleServerMessage(msg *liveproto.ServerMessage) {
	if msg.GoAway != nil {
		s.client.logger.Debug("live session going away", "session_id", s.id, "time_left", msg.GoAway.TimeLeft)
		return
	}
	sc := msg.ServerContent
	if sc == nil {
		return
	}

	if sc.Interrupted {
		s.emit(InterruptedEvent{})
	}
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		s.emit(UserTranscriptEvent{Text: sc.InputTranscription.Text})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		s.emit(ModelTranscriptEvent{Text: sc.OutputTranscription.Text})
	}
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				s.client.logger.Debug("dropping undecodable audio chunk", "session_id", s.id, "error", err)
				continue
			}
			s.emit(AudioChunkEvent{Data: pcm})
		}
	}
	if sc.TurnComplete {
		s.emit(TurnCompleteEvent{})
	}
}

// emit delivers an event preserving order. It blocks when the consumer
// lags, and unblocks on close so teardown can never deadlock.
func (s *LiveSession) emit(event LiveEvent) {
	select {
	case s.events <- event:
	case <-s.closing:
		// Consumer is gone; deliver best-effort without blocking.
		select {
		case s.events <- event:
		default:
		}
	}
}

func (s *LiveSession) closedLocally() bool {
	select {
	case <-s.closing:
		return true
	default:
		return false
	}
}
