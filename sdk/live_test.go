package dkai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newLiveWebsocketTestServer(t *testing.T, handler func(conn *websocket.Conn)) (string, func()) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handler(conn)
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	return wsURL, server.Close
}

// acceptSetup reads and acknowledges the client setup frame, returning
// the raw setup for assertions.
func acceptSetup(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	var frame map[string]any
	if err := conn.ReadJSON(&frame); err != nil {
		t.Errorf("read setup: %v", err)
		return nil
	}
	if err := conn.WriteJSON(map[string]any{"setupComplete": map[string]any{}}); err != nil {
		t.Errorf("write setupComplete: %v", err)
	}
	setup, _ := frame["setup"].(map[string]any)
	return setup
}

func closeNormally(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = conn.Close()
}

func TestLiveConnect_SetupFrameShape(t *testing.T) {
	t.Parallel()

	setupCh := make(chan map[string]any, 1)
	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		setupCh <- acceptSetup(t, conn)
		closeNormally(conn)
	})
	defer closeServer()

	client := NewClient(WithAPIKey("test-key"), WithLiveEndpoint(serverURL))
	session, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	setup := <-setupCh
	if setup == nil {
		t.Fatalf("no setup frame received")
	}
	if got := setup["model"]; got != "models/"+ModelLive {
		t.Fatalf("model=%v", got)
	}
	genCfg, _ := setup["generationConfig"].(map[string]any)
	modalities, _ := genCfg["responseModalities"].([]any)
	if len(modalities) != 1 || modalities[0] != "AUDIO" {
		t.Fatalf("responseModalities=%v", modalities)
	}
	speech, _ := genCfg["speechConfig"].(map[string]any)
	voiceCfg, _ := speech["voiceConfig"].(map[string]any)
	prebuilt, _ := voiceCfg["prebuiltVoiceConfig"].(map[string]any)
	if prebuilt["voiceName"] != DefaultLiveVoice {
		t.Fatalf("voiceName=%v", prebuilt["voiceName"])
	}
	if _, ok := setup["inputAudioTranscription"]; !ok {
		t.Fatalf("inputAudioTranscription missing")
	}
	if _, ok := setup["outputAudioTranscription"]; !ok {
		t.Fatalf("outputAudioTranscription missing")
	}

	if session.State() != StateConnected {
		t.Fatalf("state=%v", session.State())
	}
}

func TestLiveSession_TranscriptAndTurnEvents(t *testing.T) {
	t.Parallel()

	audioChunk := []byte{0x01, 0x02, 0x03, 0x04}
	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		acceptSetup(t, conn)
		frames := []map[string]any{
			{"serverContent": map[string]any{"inputTranscription": map[string]any{"text": "hel"}}},
			{"serverContent": map[string]any{"inputTranscription": map[string]any{"text": "lo"}}},
			{"serverContent": map[string]any{
				"outputTranscription": map[string]any{"text": "hi there"},
				"modelTurn": map[string]any{
					"parts": []any{map[string]any{
						"inlineData": map[string]any{
							"mimeType": "audio/pcm;rate=24000",
							"data":     base64.StdEncoding.EncodeToString(audioChunk),
						},
					}},
				},
			}},
			{"serverContent": map[string]any{"turnComplete": true}},
		}
		for _, f := range frames {
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}
		closeNormally(conn)
	})
	defer closeServer()

	client := NewClient(WithAPIKey("test-key"), WithLiveEndpoint(serverURL))
	session, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	log := NewTranscriptLog()
	var audio []byte
	var sawTurnComplete, sawClosed bool
	for event := range session.Events() {
		log.Apply(event)
		switch e := event.(type) {
		case AudioChunkEvent:
			audio = append(audio, e.Data...)
		case TurnCompleteEvent:
			sawTurnComplete = true
		case ErrorEvent:
			t.Fatalf("unexpected error event: %v", e.Err)
		case ClosedEvent:
			sawClosed = true
		}
	}

	if !sawTurnComplete || !sawClosed {
		t.Fatalf("turnComplete=%v closed=%v", sawTurnComplete, sawClosed)
	}
	turns := log.Turns()
	if len(turns) != 1 {
		t.Fatalf("turns=%d", len(turns))
	}
	if turns[0].User != "hello" {
		t.Fatalf("user transcript=%q", turns[0].User)
	}
	if turns[0].Model != "hi there" {
		t.Fatalf("model transcript=%q", turns[0].Model)
	}
	if string(audio) != string(audioChunk) {
		t.Fatalf("audio=%v", audio)
	}
}

func TestLiveSession_InterruptedOrderedFirst(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		acceptSetup(t, conn)
		// One frame carrying both an interruption and a transcript.
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{
			"interrupted":        true,
			"inputTranscription": map[string]any{"text": "stop"},
		}})
		closeNormally(conn)
	})
	defer closeServer()

	client := NewClient(WithAPIKey("test-key"), WithLiveEndpoint(serverURL))
	session, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	var got []LiveEvent
	for event := range session.Events() {
		got = append(got, event)
	}
	if len(got) < 2 {
		t.Fatalf("events=%d", len(got))
	}
	if _, ok := got[0].(InterruptedEvent); !ok {
		t.Fatalf("first event = %T, want InterruptedEvent", got[0])
	}
	if e, ok := got[1].(UserTranscriptEvent); !ok || e.Text != "stop" {
		t.Fatalf("second event = %#v", got[1])
	}
}

func TestLiveSession_SendAudioFrame(t *testing.T) {
	t.Parallel()

	frameCh := make(chan map[string]any, 1)
	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		acceptSetup(t, conn)
		var frame map[string]any
		if err := conn.ReadJSON(&frame); err == nil {
			frameCh <- frame
		}
		closeNormally(conn)
	})
	defer closeServer()

	client := NewClient(WithAPIKey("test-key"), WithLiveEndpoint(serverURL))
	session, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	frame := EncodeAudioFrame([]float32{0, 0.5, -0.5})
	if err := session.SendAudioFrame(frame); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case received := <-frameCh:
		ri, _ := received["realtimeInput"].(map[string]any)
		chunks, _ := ri["mediaChunks"].([]any)
		if len(chunks) != 1 {
			t.Fatalf("mediaChunks=%v", chunks)
		}
		chunk, _ := chunks[0].(map[string]any)
		if chunk["mimeType"] != "audio/pcm;rate=16000" {
			t.Fatalf("mimeType=%v", chunk["mimeType"])
		}
		if chunk["data"] != frame.Data {
			t.Fatalf("data mismatch")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server never received audio frame")
	}
}

func TestLiveSession_SendAfterCloseDropped(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		acceptSetup(t, conn)
		// Hold the connection open until the client closes.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer closeServer()

	client := NewClient(WithAPIKey("test-key"), WithLiveEndpoint(serverURL))
	session, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Sends after close are silent no-ops, never queued.
	if err := session.SendAudioFrame(EncodeAudioFrame([]float32{0.1})); err != nil {
		t.Fatalf("send after close: %v", err)
	}
	if session.State() == StateConnected {
		t.Fatalf("state=%v after close", session.State())
	}
}

func TestLiveSession_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		acceptSetup(t, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer closeServer()

	client := NewClient(WithAPIKey("test-key"), WithLiveEndpoint(serverURL))
	session, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := session.Close(); err != nil {
			t.Fatalf("close #%d: %v", i+1, err)
		}
	}

	var last LiveEvent
	for event := range session.Events() {
		last = event
	}
	if _, ok := last.(ClosedEvent); !ok {
		t.Fatalf("last event = %T, want ClosedEvent", last)
	}
}

func TestLiveConnect_SecondSessionRejected(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		acceptSetup(t, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer closeServer()

	client := NewClient(WithAPIKey("test-key"), WithLiveEndpoint(serverURL))
	first, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("first connect: %v", err)
	}

	if _, err := client.Live.Connect(context.Background(), nil); err == nil {
		t.Fatalf("expected second connect to be rejected")
	}

	first.Close()
	for range first.Events() {
	}

	// The slot frees once the first session is fully down.
	second, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("reconnect after close: %v", err)
	}
	second.Close()
}

func TestLiveConnect_BadFirstFrame(t *testing.T) {
	t.Parallel()

	serverURL, closeServer := newLiveWebsocketTestServer(t, func(conn *websocket.Conn) {
		var setup json.RawMessage
		_ = conn.ReadJSON(&setup)
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{"turnComplete": true}})
		_ = conn.Close()
	})
	defer closeServer()

	client := NewClient(WithAPIKey("test-key"), WithLiveEndpoint(serverURL))
	if _, err := client.Live.Connect(context.Background(), nil); err == nil {
		t.Fatalf("expected connect error on missing setupComplete")
	}
}
