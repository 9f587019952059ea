package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// VideoRequest configures Veo generation via :predictLongRunning.
type VideoRequest struct {
	Prompt      string
	AspectRatio string // "16:9" or "9:16"
	Resolution  string // default "720p"
	SampleCount int    // default 1

	// Optional seed image, base64-encoded.
	ImageB64      string
	ImageMIMEType string
}

// Operation is a long-running video generation handle.
type Operation struct {
	Name string `json:"name"`
	Done bool   `json:"done"`

	// VideoURIs holds the downloadable result URIs once Done is set.
	VideoURIs []string `json:"-"`

	// Err holds the terminal failure once Done is set with an error.
	Err error `json:"-"`
}

type operationResponse struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// GenerateVideos submits a video generation request and returns the
// long-running operation handle. Callers poll with GetVideosOperation.
func (p *Provider) GenerateVideos(ctx context.Context, model string, req *VideoRequest) (*Operation, error) {
	if req == nil || req.Prompt == "" {
		return nil, &Error{Type: ErrInvalidRequest, Message: "video prompt must not be empty"}
	}
	sampleCount := req.SampleCount
	if sampleCount <= 0 {
		sampleCount = 1
	}
	resolution := req.Resolution
	if resolution == "" {
		resolution = "720p"
	}

	instance := predictInstance{Prompt: req.Prompt}
	if req.ImageB64 != "" {
		instance.Image = &imageBytes{
			BytesBase64Encoded: req.ImageB64,
			MIMEType:           req.ImageMIMEType,
		}
	}

	body := predictRequest{
		Instances: []predictInstance{instance},
		Parameters: predictParameters{
			SampleCount: sampleCount,
			AspectRatio: req.AspectRatio,
			Resolution:  resolution,
		},
	}

	respBody, err := p.doRequest(ctx, p.modelURL(model, "predictLongRunning"), body)
	if err != nil {
		return nil, err
	}
	return parseOperation(respBody)
}

// GetVideosOperation re-fetches the state of a video operation.
func (p *Provider) GetVideosOperation(ctx context.Context, op *Operation) (*Operation, error) {
	if op == nil || strings.TrimSpace(op.Name) == "" {
		return nil, &Error{Type: ErrInvalidRequest, Message: "operation name must not be empty"}
	}
	respBody, err := p.doGet(ctx, p.resourceURL(op.Name))
	if err != nil {
		return nil, err
	}
	return parseOperation(respBody)
}

func parseOperation(body []byte) (*Operation, error) {
	var resp operationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal operation: %w", err)
	}
	if resp.Name == "" {
		return nil, &Error{Type: ErrAPI, Message: "operation missing name"}
	}

	op := &Operation{Name: resp.Name, Done: resp.Done}
	if resp.Error != nil {
		op.Err = &Error{Type: ErrAPI, Message: resp.Error.Message, Code: resp.Error.Status}
	}
	if resp.Response != nil {
		for _, sample := range resp.Response.GenerateVideoResponse.GeneratedSamples {
			if sample.Video.URI != "" {
				op.VideoURIs = append(op.VideoURIs, sample.Video.URI)
			}
		}
	}
	return op, nil
}

// DownloadVideo fetches the bytes behind a result URI. The API key is
// appended as a query parameter, matching how result URIs are served.
func (p *Provider) DownloadVideo(ctx context.Context, rawURI string) ([]byte, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return nil, &Error{Type: ErrInvalidRequest, Message: "invalid video uri"}
	}
	q := u.Query()
	q.Set("key", p.apiKey)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, parseError(resp)
	}
	return io.ReadAll(resp.Body)
}
