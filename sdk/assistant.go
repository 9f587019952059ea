package dkai

import (
	"context"

	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
)

// AssistantService is the DK.AI expert assistant.
type AssistantService struct {
	client *Client
}

const assistantSystemInstruction = `You are DK.AI, an expert AI assistant within the DINESHKUMAR.AI platform, specializing in office automation, data analysis, and productivity. Your goal is to provide helpful, accurate, and concise answers to user queries. Format your responses clearly using Markdown.`

// Ask answers a single query on the pro model with the DK.AI persona.
func (s *AssistantService) Ask(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", gemini.NewInvalidRequest("prompt must not be empty")
	}
	req := gemini.TextRequest(prompt)
	req.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: assistantSystemInstruction}}}

	resp, err := s.client.provider.GenerateContent(ctx, ModelPro, req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
