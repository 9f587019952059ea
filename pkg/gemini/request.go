package gemini

// Note: the Gemini API uses camelCase for JSON field names.

// GenerateRequest is the generate-content request body.
type GenerateRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Tools             []Tool            `json:"tools,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content represents a content object in Gemini format.
type Content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []Part `json:"parts"`
}

// Part represents a single part within content.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob represents inline binary data, base64-encoded.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Tool enables a native tool for the request.
type Tool struct {
	GoogleSearch *GoogleSearch `json:"googleSearch,omitempty"`
	GoogleMaps   *GoogleMaps   `json:"googleMaps,omitempty"`
}

// GoogleSearch configures Google Search grounding.
type GoogleSearch struct{}

// GoogleMaps configures Google Maps grounding.
type GoogleMaps struct{}

// GenerationConfig contains generation configuration.
type GenerationConfig struct {
	Temperature        *float64        `json:"temperature,omitempty"`
	MaxOutputTokens    *int            `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string        `json:"responseModalities,omitempty"`
	ThinkingConfig     *ThinkingConfig `json:"thinkingConfig,omitempty"`
	SpeechConfig       *SpeechConfig   `json:"speechConfig,omitempty"`
}

// ThinkingConfig controls thinking/reasoning behavior.
type ThinkingConfig struct {
	ThinkingBudget *int `json:"thinkingBudget,omitempty"`
}

// SpeechConfig selects the synthetic voice for audio responses.
type SpeechConfig struct {
	VoiceConfig *VoiceConfig `json:"voiceConfig,omitempty"`
}

// VoiceConfig wraps the prebuilt voice selection.
type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

// PrebuiltVoiceConfig names a synthetic voice.
type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName,omitempty"`
}

// TextRequest builds a single-turn user request from a prompt string.
func TextRequest(prompt string) *GenerateRequest {
	return &GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
	}
}

// InlineRequest builds a single-turn request pairing inline binary data
// with a text instruction, e.g. "describe this image".
func InlineRequest(mimeType, dataB64, prompt string) *GenerateRequest {
	return &GenerateRequest{
		Contents: []Content{{
			Role: "user",
			Parts: []Part{
				{InlineData: &Blob{MIMEType: mimeType, Data: dataB64}},
				{Text: prompt},
			},
		}},
	}
}
