package dkai

import (
	"context"
	"sync"

	"github.com/dineshkumar-ai/dkai-go/pkg/gemini"
)

// Chat is a stateful multi-turn conversation. Each Send carries the full
// prior history so the model sees the whole exchange. Chats are safe for
// concurrent use, though turns serialize.
type Chat struct {
	client *Client
	model  string
	system string

	mu      sync.Mutex
	history []gemini.Content
}

// NewChat starts a conversation on the flash model with the given system
// instruction.
func (c *Client) NewChat(systemInstruction string) *Chat {
	return &Chat{
		client: c,
		model:  ModelFlash,
		system: systemInstruction,
	}
}

// Send appends the user message, queries the model with the accumulated
// history, records the reply, and returns its text. On error the user
// message is not recorded, so a failed turn can simply be retried.
func (ch *Chat) Send(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", gemini.NewInvalidRequest("message must not be empty")
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()

	contents := make([]gemini.Content, 0, len(ch.history)+1)
	contents = append(contents, ch.history...)
	contents = append(contents, gemini.Content{
		Role:  "user",
		Parts: []gemini.Part{{Text: message}},
	})

	req := &gemini.GenerateRequest{Contents: contents}
	if ch.system != "" {
		req.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: ch.system}}}
	}

	resp, err := ch.client.provider.GenerateContent(ctx, ch.model, req)
	if err != nil {
		return "", err
	}
	reply := resp.Text()

	ch.history = append(ch.history,
		gemini.Content{Role: "user", Parts: []gemini.Part{{Text: message}}},
		gemini.Content{Role: "model", Parts: []gemini.Part{{Text: reply}}},
	)
	return reply, nil
}

// History returns a copy of the recorded conversation so far.
func (ch *Chat) History() []gemini.Content {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	out := make([]gemini.Content, len(ch.history))
	copy(out, ch.history)
	return out
}
