// Package gemini implements a hand-rolled client for the Google Gemini
// REST API: generate-content calls, Imagen image generation, and Veo
// long-running video operations.
package gemini

import (
	"context"
	"net/http"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// Provider implements the Google Gemini API.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a new Gemini provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// APIKey exposes the configured credential for endpoints that carry the
// key as a query parameter (live websocket, video downloads).
func (p *Provider) APIKey() string {
	return p.apiKey
}

// GenerateContent sends a single non-streaming generate call.
func (p *Provider) GenerateContent(ctx context.Context, model string, req *GenerateRequest) (*GenerateResponse, error) {
	if model == "" {
		return nil, &Error{Type: ErrInvalidRequest, Message: "model must not be empty"}
	}
	respBody, err := p.doRequest(ctx, p.modelURL(model, "generateContent"), req)
	if err != nil {
		return nil, err
	}
	return parseGenerateResponse(respBody)
}
