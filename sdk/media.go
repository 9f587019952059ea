package dkai

import (
	"context"

	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
)

// MediaService analyzes uploaded images and audio.
type MediaService struct {
	client *Client
}

// AnalyzeImage answers a question about an image. imageB64 is the
// base64-encoded image payload.
func (s *MediaService) AnalyzeImage(ctx context.Context, prompt, imageB64, mimeType string) (string, error) {
	if imageB64 == "" {
		return "", gemini.NewInvalidRequest("image must not be empty")
	}
	resp, err := s.client.provider.GenerateContent(ctx, ModelFlash, gemini.InlineRequest(mimeType, imageB64, prompt))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// TranscribeAudio transcribes a recorded audio clip. audioB64 is the
// base64-encoded webm payload.
func (s *MediaService) TranscribeAudio(ctx context.Context, audioB64 string) (string, error) {
	if audioB64 == "" {
		return "", gemini.NewInvalidRequest("audio must not be empty")
	}
	resp, err := s.client.provider.GenerateContent(ctx, ModelFlash,
		gemini.InlineRequest("audio/webm", audioB64, "Transcribe the audio."))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
