package dkai

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/dineshkumar-ai/dkai-go/pkg/audio"
	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
)

// videoPollInterval is how long the video state machine waits between
// operation polls.
const videoPollInterval = 10 * time.Second

// CreativeService generates images, edited images, speech, and video.
type CreativeService struct {
	client *Client
}

// ImageResult is a generated or edited image with a ready-to-embed URI.
type ImageResult struct {
	MIMEType string
	Data     []byte
	URI      string
}

// GenerateImage produces one JPEG image for the prompt at the given
// aspect ratio ("1:1", "16:9", "9:16", ...).
func (s *CreativeService) GenerateImage(ctx context.Context, prompt, aspectRatio string) (*ImageResult, error) {
	images, err := s.client.provider.GenerateImages(ctx, ModelImagen, &gemini.ImageRequest{
		Prompt:         prompt,
		AspectRatio:    aspectRatio,
		SampleCount:    1,
		OutputMIMEType: "image/jpeg",
	})
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, gemini.NewAPIError("no image generated in response")
	}
	img := images[0]
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return &ImageResult{MIMEType: mime, Data: img.Data, URI: DataURI(mime, img.Data)}, nil
}

// EditImage applies a text instruction to an existing image and returns
// the edited PNG. imageB64 is the base64-encoded source image.
func (s *CreativeService) EditImage(ctx context.Context, prompt, imageB64, mimeType string) (*ImageResult, error) {
	if imageB64 == "" {
		return nil, gemini.NewInvalidRequest("source image must not be empty")
	}
	req := gemini.InlineRequest(mimeType, imageB64, prompt)
	req.GenerationConfig = &gemini.GenerationConfig{ResponseModalities: []string{"IMAGE"}}

	resp, err := s.client.provider.GenerateContent(ctx, ModelFlashImage, req)
	if err != nil {
		return nil, err
	}
	blob := resp.FirstInlineData()
	if blob == nil {
		return nil, gemini.NewAPIError("no image generated in response")
	}
	data, err := base64.StdEncoding.DecodeString(blob.Data)
	if err != nil {
		return nil, gemini.NewAPIError("edited image payload is not valid base64")
	}
	mime := blob.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &ImageResult{MIMEType: mime, Data: data, URI: DataURI(mime, data)}, nil
}

// Speech synthesizes text with the Kore voice and returns raw 24 kHz
// 16-bit PCM bytes.
func (s *CreativeService) Speech(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, gemini.NewInvalidRequest("text must not be empty")
	}
	req := gemini.TextRequest(text)
	req.GenerationConfig = &gemini.GenerationConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &gemini.SpeechConfig{
			VoiceConfig: &gemini.VoiceConfig{
				PrebuiltVoiceConfig: &gemini.PrebuiltVoiceConfig{VoiceName: "Kore"},
			},
		},
	}
	resp, err := s.client.provider.GenerateContent(ctx, ModelTTS, req)
	if err != nil {
		return nil, err
	}
	blob := resp.FirstInlineData()
	if blob == nil {
		return nil, gemini.NewAPIError("no audio generated in response")
	}
	pcm, err := base64.StdEncoding.DecodeString(blob.Data)
	if err != nil {
		return nil, gemini.NewAPIError("speech payload is not valid base64")
	}
	return pcm, nil
}

// SpeechWAV synthesizes text and wraps the PCM in a WAV container,
// ready to write to disk or serve to a browser.
func (s *CreativeService) SpeechWAV(ctx context.Context, text string) ([]byte, error) {
	pcm, err := s.Speech(ctx, text)
	if err != nil {
		return nil, err
	}
	return audio.PCMToWAV(pcm, audio.PlaybackConfig()), nil
}

// VideoRequest configures video generation.
type VideoRequest struct {
	Prompt      string
	AspectRatio string // "16:9" or "9:16"

	// Optional seed image for image-to-video.
	ImageB64      string
	ImageMIMEType string
}

// VideoState is a phase of a video generation job.
type VideoState string

const (
	VideoSubmitted VideoState = "submitted"
	VideoPolling   VideoState = "polling"
	VideoDone      VideoState = "done"
	VideoFailed    VideoState = "failed"
)

// VideoGeneration tracks one long-running video job through its phases:
// submitted, then polling, then done or failed. Wait drives the
// transitions.
type VideoGeneration struct {
	client *Client

	mu    sync.Mutex
	state VideoState
	op    *gemini.Operation
	uris  []string
	err   error
}

// StartVideo submits a video generation job. The returned handle is in
// the submitted state; call Wait to poll it to completion.
func (s *CreativeService) StartVideo(ctx context.Context, req VideoRequest) (*VideoGeneration, error) {
	op, err := s.client.provider.GenerateVideos(ctx, ModelVeo, &gemini.VideoRequest{
		Prompt:        req.Prompt,
		AspectRatio:   req.AspectRatio,
		Resolution:    "720p",
		SampleCount:   1,
		ImageB64:      req.ImageB64,
		ImageMIMEType: req.ImageMIMEType,
	})
	if err != nil {
		return nil, err
	}
	return &VideoGeneration{client: s.client, state: VideoSubmitted, op: op}, nil
}

// State returns the job's current phase.
func (g *VideoGeneration) State() VideoState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// URIs returns the result download URIs once the job is done.
func (g *VideoGeneration) URIs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.uris
}

// Err returns the terminal failure once the job has failed.
func (g *VideoGeneration) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Wait polls the operation until it finishes, the context is cancelled,
// or a poll fails. On success it returns the first video download URI.
func (g *VideoGeneration) Wait(ctx context.Context) (string, error) {
	g.mu.Lock()
	if g.state == VideoDone {
		uri := g.uris[0]
		g.mu.Unlock()
		return uri, nil
	}
	if g.state == VideoFailed {
		err := g.err
		g.mu.Unlock()
		return "", err
	}
	g.state = VideoPolling
	op := g.op
	g.mu.Unlock()

	for !op.Done {
		if err := g.client.sleeper.Sleep(ctx, videoPollInterval); err != nil {
			return "", g.fail(err)
		}
		next, err := g.client.provider.GetVideosOperation(ctx, op)
		if err != nil {
			return "", g.fail(err)
		}
		op = next
		g.mu.Lock()
		g.op = op
		g.mu.Unlock()
	}

	if op.Err != nil {
		return "", g.fail(op.Err)
	}
	if len(op.VideoURIs) == 0 {
		return "", g.fail(gemini.NewAPIError("video generation failed"))
	}

	g.mu.Lock()
	g.state = VideoDone
	g.uris = op.VideoURIs
	g.mu.Unlock()
	return op.VideoURIs[0], nil
}

func (g *VideoGeneration) fail(err error) error {
	g.mu.Lock()
	g.state = VideoFailed
	g.err = err
	g.mu.Unlock()
	return err
}

// GenerateVideo submits a job, waits for it, and downloads the result
// bytes. It is the one-call convenience over StartVideo, Wait, and
// DownloadVideo.
func (s *CreativeService) GenerateVideo(ctx context.Context, req VideoRequest) ([]byte, error) {
	gen, err := s.StartVideo(ctx, req)
	if err != nil {
		return nil, err
	}
	uri, err := gen.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return s.DownloadVideo(ctx, uri)
}

// DownloadVideo fetches a finished video by its result URI.
func (s *CreativeService) DownloadVideo(ctx context.Context, uri string) ([]byte, error) {
	return s.client.provider.DownloadVideo(ctx, uri)
}
