// Package liveproto defines the websocket wire messages for the Gemini
// BidiGenerateContent live API. Client and server frames are JSON text
// messages; audio payloads travel base64-encoded inside inlineData parts.
package liveproto

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// DefaultEndpoint is the BidiGenerateContent websocket endpoint.
	DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// InputMIMEType is the required microphone frame encoding.
	InputMIMEType = "audio/pcm;rate=16000"

	// OutputMIMEType is the model audio chunk encoding.
	OutputMIMEType = "audio/pcm;rate=24000"
)

// Part is a single content part. Exactly one field is set.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob carries inline binary data, base64-encoded.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Content is an ordered list of parts with an optional role.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// PrebuiltVoiceConfig names a synthetic voice.
type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName,omitempty"`
}

// VoiceConfig selects the voice for audio responses.
type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

// SpeechConfig configures speech synthesis for the session.
type SpeechConfig struct {
	VoiceConfig *VoiceConfig `json:"voiceConfig,omitempty"`
}

// GenerationConfig holds the per-session generation settings.
type GenerationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

// Setup is the first client frame on a live connection.
type Setup struct {
	Model                    string            `json:"model"`
	GenerationConfig         *GenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction        *Content          `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *struct{}         `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}         `json:"outputAudioTranscription,omitempty"`
}

// RealtimeInput carries streamed media from the client. Each frame holds
// exactly one audio chunk in this implementation.
type RealtimeInput struct {
	MediaChunks []Blob `json:"mediaChunks,omitempty"`
}

// ClientMessage is the envelope for client -> server frames.
type ClientMessage struct {
	Setup         *Setup         `json:"setup,omitempty"`
	RealtimeInput *RealtimeInput `json:"realtimeInput,omitempty"`
}

// Transcription is an incremental transcript fragment.
type Transcription struct {
	Text string `json:"text,omitempty"`
}

// ServerContent carries model output and turn markers. Transcript and
// audio fields are independent; any combination may appear in one frame.
type ServerContent struct {
	ModelTurn           *Content       `json:"modelTurn,omitempty"`
	InputTranscription  *Transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *Transcription `json:"outputTranscription,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
}

// GoAway announces an imminent server-side disconnect.
type GoAway struct {
	TimeLeft string `json:"timeLeft,omitempty"`
}

// ServerMessage is the envelope for server -> client frames.
type ServerMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *ServerContent `json:"serverContent,omitempty"`
	GoAway        *GoAway        `json:"goAway,omitempty"`
}

// DecodeServerMessage parses a raw text frame into a ServerMessage.
func DecodeServerMessage(data []byte) (*ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode live frame: %w", err)
	}
	return &msg, nil
}

// AudioFrame builds a realtimeInput client frame for one captured chunk.
func AudioFrame(dataB64 string) ClientMessage {
	return ClientMessage{
		RealtimeInput: &RealtimeInput{
			MediaChunks: []Blob{{MIMEType: InputMIMEType, Data: dataB64}},
		},
	}
}

// NormalizeModel prefixes bare model names with "models/" as the live
// endpoint requires fully qualified resource names.
func NormalizeModel(model string) string {
	model = strings.TrimSpace(model)
	if model == "" || strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}
