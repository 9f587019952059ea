package dkai

import (
	"context"

	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
)

// InsightsService answers queries with optional grounding tools and
// extended reasoning.
type InsightsService struct {
	client *Client
}

// GroundedRequest selects the grounding and reasoning features for a
// query. With Thinking set the query runs on the pro model with a large
// reasoning budget; otherwise it runs on flash.
type GroundedRequest struct {
	Prompt   string
	Search   bool
	Maps     bool
	Thinking bool
}

const thinkingBudgetTokens = 32768

// Grounded runs a query with the requested tools. The full response is
// returned so callers can inspect grounding metadata alongside the text.
func (s *InsightsService) Grounded(ctx context.Context, req GroundedRequest) (*gemini.GenerateResponse, error) {
	if req.Prompt == "" {
		return nil, gemini.NewInvalidRequest("prompt must not be empty")
	}

	greq := gemini.TextRequest(req.Prompt)
	if req.Search {
		greq.Tools = append(greq.Tools, gemini.Tool{GoogleSearch: &gemini.GoogleSearch{}})
	}
	if req.Maps {
		greq.Tools = append(greq.Tools, gemini.Tool{GoogleMaps: &gemini.GoogleMaps{}})
	}

	model := ModelFlash
	if req.Thinking {
		model = ModelPro
		budget := thinkingBudgetTokens
		greq.GenerationConfig = &gemini.GenerationConfig{
			ThinkingConfig: &gemini.ThinkingConfig{ThinkingBudget: &budget},
		}
	}

	return s.client.provider.GenerateContent(ctx, model, greq)
}
