package gemini

import (
	"context"
	"encoding/json"
	"fmt"
)

// ImageRequest configures Imagen generation via the :predict endpoint.
type ImageRequest struct {
	Prompt         string
	AspectRatio    string // e.g. "1:1", "16:9", "9:16"
	SampleCount    int    // default 1
	OutputMIMEType string // default "image/jpeg"
}

// GeneratedImage is a single generated image.
type GeneratedImage struct {
	MIMEType string
	Data     []byte
}

// predictRequest is the Imagen/Veo prediction request envelope.
type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string      `json:"prompt"`
	Image  *imageBytes `json:"image,omitempty"`
}

type imageBytes struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MIMEType           string `json:"mimeType,omitempty"`
}

type predictParameters struct {
	SampleCount    int    `json:"sampleCount,omitempty"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	OutputMIMEType string `json:"outputMimeType,omitempty"`
	Resolution     string `json:"resolution,omitempty"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded []byte `json:"bytesBase64Encoded"`
		MIMEType           string `json:"mimeType"`
	} `json:"predictions"`
}

// GenerateImages generates images from a text prompt.
func (p *Provider) GenerateImages(ctx context.Context, model string, req *ImageRequest) ([]GeneratedImage, error) {
	if req == nil || req.Prompt == "" {
		return nil, &Error{Type: ErrInvalidRequest, Message: "image prompt must not be empty"}
	}
	sampleCount := req.SampleCount
	if sampleCount <= 0 {
		sampleCount = 1
	}
	mimeType := req.OutputMIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	body := predictRequest{
		Instances: []predictInstance{{Prompt: req.Prompt}},
		Parameters: predictParameters{
			SampleCount:    sampleCount,
			AspectRatio:    req.AspectRatio,
			OutputMIMEType: mimeType,
		},
	}

	respBody, err := p.doRequest(ctx, p.modelURL(model, "predict"), body)
	if err != nil {
		return nil, err
	}

	var resp predictResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal predictions: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return nil, &Error{Type: ErrAPI, Message: "no images in response"}
	}

	images := make([]GeneratedImage, 0, len(resp.Predictions))
	for _, pred := range resp.Predictions {
		out := pred.MIMEType
		if out == "" {
			out = mimeType
		}
		images = append(images, GeneratedImage{MIMEType: out, Data: pred.BytesBase64Encoded})
	}
	return images, nil
}
