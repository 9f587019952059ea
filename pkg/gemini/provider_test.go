package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	provider := New("test-key", WithBaseURL(server.URL))
	return provider, server.Close
}

func TestGenerateContent_SendsRequestAndParsesText(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	var gotReq GenerateRequest
	provider, closeServer := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(GenerateResponse{
			Candidates: []Candidate{{
				Content: Content{Role: "model", Parts: []Part{{Text: "hello "}, {Text: "world"}}},
			}},
		})
	})
	defer closeServer()

	resp, err := provider.GenerateContent(context.Background(), "gemini-2.5-flash", TextRequest("hi"))
	if err != nil {
		t.Fatalf("GenerateContent error: %v", err)
	}
	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "hi" {
		t.Fatalf("request contents = %+v", gotReq.Contents)
	}
	if resp.Text() != "hello world" {
		t.Fatalf("Text() = %q", resp.Text())
	}
}

func TestGenerateContent_EmptyModelRejected(t *testing.T) {
	t.Parallel()

	provider := New("k")
	_, err := provider.GenerateContent(context.Background(), "", TextRequest("hi"))
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Type != ErrInvalidRequest {
		t.Fatalf("err = %v, want invalid_request_error", err)
	}
}

func TestGenerateContent_NoCandidates(t *testing.T) {
	t.Parallel()

	provider, closeServer := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})
	defer closeServer()

	_, err := provider.GenerateContent(context.Background(), "gemini-2.5-flash", TextRequest("hi"))
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Type != ErrAPI {
		t.Fatalf("err = %v, want api_error", err)
	}
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		code     int
		status   string
		wantType ErrorType
	}{
		{"rate limit", 429, "RESOURCE_EXHAUSTED", ErrRateLimit},
		{"invalid key", 400, "INVALID_ARGUMENT", ErrInvalidRequest},
		{"unauthorized", 401, "UNAUTHENTICATED", ErrAuthentication},
		{"forbidden http override", 403, "INTERNAL", ErrAuthentication},
		{"overloaded", 503, "UNAVAILABLE", ErrOverloaded},
		{"not found", 404, "NOT_FOUND", ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider, closeServer := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": tc.code, "message": "boom", "status": tc.status},
				})
			})
			defer closeServer()

			_, err := provider.GenerateContent(context.Background(), "gemini-2.5-flash", TextRequest("hi"))
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *gemini.Error", err)
			}
			if apiErr.Type != tc.wantType {
				t.Fatalf("type = %q, want %q", apiErr.Type, tc.wantType)
			}
			if apiErr.Message != "boom" {
				t.Fatalf("message = %q", apiErr.Message)
			}
		})
	}
}

func TestGenerateImages_OneCallWithPromptAndRatio(t *testing.T) {
	t.Parallel()

	var calls int
	var gotBody predictRequest
	provider, closeServer := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/models/imagen-4.0-generate-001:predict" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"predictions": [{"bytesBase64Encoded": "anBn", "mimeType": "image/jpeg"}]}`))
	})
	defer closeServer()

	images, err := provider.GenerateImages(context.Background(), "imagen-4.0-generate-001", &ImageRequest{
		Prompt:      "A vibrant cyberpunk cityscape",
		AspectRatio: "16:9",
	})
	if err != nil {
		t.Fatalf("GenerateImages error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want exactly 1", calls)
	}
	if gotBody.Instances[0].Prompt != "A vibrant cyberpunk cityscape" {
		t.Fatalf("prompt = %q", gotBody.Instances[0].Prompt)
	}
	if gotBody.Parameters.AspectRatio != "16:9" || gotBody.Parameters.SampleCount != 1 {
		t.Fatalf("parameters = %+v", gotBody.Parameters)
	}
	if len(images) != 1 || string(images[0].Data) != "jpg" {
		t.Fatalf("images = %+v", images)
	}
}

func TestGenerateVideos_OperationLifecycle(t *testing.T) {
	t.Parallel()

	provider, closeServer := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`{"name": "models/veo/operations/op1"}`))
		case r.URL.Path == "/models/veo/operations/op1":
			_, _ = w.Write([]byte(`{
				"name": "models/veo/operations/op1",
				"done": true,
				"response": {"generateVideoResponse": {"generatedSamples": [{"video": {"uri": "https://example.com/v.mp4"}}]}}
			}`))
		default:
			http.NotFound(w, r)
		}
	})
	defer closeServer()

	op, err := provider.GenerateVideos(context.Background(), "veo-3.1-fast-generate-preview", &VideoRequest{
		Prompt:      "a drone shot",
		AspectRatio: "16:9",
	})
	if err != nil {
		t.Fatalf("GenerateVideos error: %v", err)
	}
	if op.Done {
		t.Fatalf("fresh operation should not be done")
	}

	op, err = provider.GetVideosOperation(context.Background(), op)
	if err != nil {
		t.Fatalf("GetVideosOperation error: %v", err)
	}
	if !op.Done || len(op.VideoURIs) != 1 || op.VideoURIs[0] != "https://example.com/v.mp4" {
		t.Fatalf("operation = %+v", op)
	}
}

func TestDownloadVideo_AppendsKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key query = %q", r.URL.Query().Get("key"))
		}
		_, _ = w.Write([]byte("video-bytes"))
	}))
	defer server.Close()

	provider := New("test-key")
	data, err := provider.DownloadVideo(context.Background(), server.URL+"/v.mp4")
	if err != nil {
		t.Fatalf("DownloadVideo error: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Fatalf("data = %q", data)
	}
}

func TestFirstInlineData(t *testing.T) {
	t.Parallel()

	resp := &GenerateResponse{Candidates: []Candidate{{
		Content: Content{Parts: []Part{
			{Text: "caption"},
			{InlineData: &Blob{MIMEType: "image/png", Data: "cGxn"}},
		}},
	}}}
	blob := resp.FirstInlineData()
	if blob == nil || blob.MIMEType != "image/png" {
		t.Fatalf("blob = %+v", blob)
	}

	empty := &GenerateResponse{Candidates: []Candidate{{Content: Content{Parts: []Part{{Text: "t"}}}}}}
	if empty.FirstInlineData() != nil {
		t.Fatalf("expected nil for text-only response")
	}
}
