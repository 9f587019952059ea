// Package dkai provides the Go client SDK for the DINESHKUMAR.AI office
// automation platform. Every feature is a thin front-end over the Gemini
// generative API: document conversion, validation, chat and insights,
// creative generation, media analysis, and a bidirectional live voice
// session.
package dkai

import (
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
)

// Model identifiers used by the feature services.
const (
	ModelFlash      = "gemini-2.5-flash"
	ModelPro        = "gemini-2.5-pro"
	ModelFlashImage = "gemini-2.5-flash-image"
	ModelImagen     = "imagen-4.0-generate-001"
	ModelVeo        = "veo-3.1-fast-generate-preview"
	ModelTTS        = "gemini-2.5-flash-preview-tts"
	ModelLive       = "gemini-2.5-flash-native-audio-preview-09-2025"
)

// Client is the main entry point for the SDK.
type Client struct {
	Documents  *DocumentsService
	Validation *ValidationService
	Automation *AutomationService
	Insights   *InsightsService
	Creative   *CreativeService
	Media      *MediaService
	Assistant  *AssistantService
	Live       *LiveService

	// Internal
	apiKey       string
	baseURL      string
	liveEndpoint string
	httpClient   *http.Client
	logger       *slog.Logger
	provider     *gemini.Provider
	sleeper      sleeper

	liveMu     sync.Mutex
	activeLive *LiveSession
}

// NewClient creates a new client. The API key is taken from options or,
// when absent, from GEMINI_API_KEY / GOOGLE_API_KEY.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		logger:     slog.Default(),
		sleeper:    realSleeper{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	providerOpts := []gemini.Option{gemini.WithHTTPClient(c.httpClient)}
	if c.baseURL != "" {
		providerOpts = append(providerOpts, gemini.WithBaseURL(c.baseURL))
	}
	c.provider = gemini.New(c.apiKey, providerOpts...)

	c.Documents = &DocumentsService{client: c}
	c.Validation = &ValidationService{client: c}
	c.Automation = &AutomationService{client: c}
	c.Insights = &InsightsService{client: c}
	c.Creative = &CreativeService{client: c}
	c.Media = &MediaService{client: c}
	c.Assistant = &AssistantService{client: c}
	c.Live = &LiveService{client: c}
	return c
}

// Provider returns the underlying Gemini provider.
func (c *Client) Provider() *gemini.Provider {
	return c.provider
}

// claimLiveSlot reserves the client's single live-session slot.
// At most one live session may be active per client.
func (c *Client) claimLiveSlot(s *LiveSession) error {
	c.liveMu.Lock()
	defer c.liveMu.Unlock()
	if c.activeLive != nil {
		return gemini.NewInvalidRequest("a live session is already active; close it before connecting again")
	}
	c.activeLive = s
	return nil
}

// releaseLiveSlot frees the slot held by s, if s still owns it.
func (c *Client) releaseLiveSlot(s *LiveSession) {
	c.liveMu.Lock()
	defer c.liveMu.Unlock()
	if c.activeLive == s {
		c.activeLive = nil
	}
}
