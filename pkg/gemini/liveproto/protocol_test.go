package liveproto

import (
	"encoding/json"
	"testing"
)

func TestDecodeServerMessage_ServerContent(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"serverContent": {
			"modelTurn": {"parts": [{"inlineData": {"mimeType": "audio/pcm;rate=24000", "data": "AAA="}}]},
			"inputTranscription": {"text": "hel"},
			"outputTranscription": {"text": "Hi"},
			"turnComplete": true,
			"interrupted": false
		}
	}`)

	msg, err := DecodeServerMessage(raw)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	sc := msg.ServerContent
	if sc == nil {
		t.Fatalf("expected serverContent")
	}
	if !sc.TurnComplete || sc.Interrupted {
		t.Fatalf("turn markers: complete=%v interrupted=%v", sc.TurnComplete, sc.Interrupted)
	}
	if sc.InputTranscription.Text != "hel" || sc.OutputTranscription.Text != "Hi" {
		t.Fatalf("transcriptions: %+v / %+v", sc.InputTranscription, sc.OutputTranscription)
	}
	if len(sc.ModelTurn.Parts) != 1 || sc.ModelTurn.Parts[0].InlineData.MIMEType != OutputMIMEType {
		t.Fatalf("unexpected model turn: %+v", sc.ModelTurn)
	}
}

func TestDecodeServerMessage_SetupComplete(t *testing.T) {
	t.Parallel()

	msg, err := DecodeServerMessage([]byte(`{"setupComplete": {}}`))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if msg.SetupComplete == nil {
		t.Fatalf("expected setupComplete")
	}
}

func TestDecodeServerMessage_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := DecodeServerMessage([]byte(`{"setupComplete"`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestAudioFrame_Shape(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(AudioFrame("cGNt"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"realtimeInput":{"mediaChunks":[{"mimeType":"audio/pcm;rate=16000","data":"cGNt"}]}}`
	if string(raw) != want {
		t.Fatalf("frame = %s, want %s", raw, want)
	}
}

func TestNormalizeModel(t *testing.T) {
	t.Parallel()

	if got := NormalizeModel("gemini-2.5-flash"); got != "models/gemini-2.5-flash" {
		t.Fatalf("NormalizeModel = %q", got)
	}
	if got := NormalizeModel("models/gemini-2.5-flash"); got != "models/gemini-2.5-flash" {
		t.Fatalf("NormalizeModel kept prefix = %q", got)
	}
}
