package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// GeminiCaller implements Caller for Google's generateContent API.
type GeminiCaller struct {
	cfg    Config
	client *http.Client
}

// NewGemini creates a new Gemini caller.
func NewGemini(cfg Config, client *http.Client) *GeminiCaller {
	return &GeminiCaller{cfg: cfg, client: client}
}

func (g *GeminiCaller) Config() Config { return g.cfg }

// Call sends prompt as the only content part. opts.SystemPrompt is not sent;
// the prompt already carries the JSON-only instruction.
func (g *GeminiCaller) Call(ctx context.Context, prompt, apiKey string, opts CallOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.cfg.MaxTokens
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &geminiGenConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()

	x, err := post(ctx, g.client, g.cfg, g.cfg.Endpoint(apiKey), g.cfg.Headers(apiKey), payload)
	if err != nil {
		return "", err
	}

	res := extractGeminiText(x.body)
	if res.problem != "" {
		return "", x.malformed(g.cfg, res.problem)
	}
	return res.text, nil
}

// Ping sends a one-token request.
func (g *GeminiCaller) Ping(ctx context.Context, apiKey string) error {
	payload, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: "Hi"}}}},
		GenerationConfig: &geminiGenConfig{MaxOutputTokens: 1},
	})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := withTimeout(ctx, PingTimeout)
	defer cancel()

	_, err = post(ctx, g.client, g.cfg, g.cfg.Endpoint(apiKey), g.cfg.Headers(apiKey), payload)
	return err
}

// geminiText is either the first part's text or the reason it is missing.
// Exactly one of the two fields is set.
type geminiText struct {
	text    string
	problem string
}

func extractGeminiText(body []byte) geminiText {
	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return geminiText{problem: "response body is not JSON"}
	}
	if len(result.Candidates) == 0 {
		if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			return geminiText{problem: "no candidates found (prompt blocked: " + result.PromptFeedback.BlockReason + ")"}
		}
		return geminiText{problem: "no candidates found"}
	}
	content := result.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return geminiText{problem: "no content parts found"}
	}
	if content.Parts[0].Text == "" {
		return geminiText{problem: "empty response text"}
	}
	return geminiText{text: content.Parts[0].Text}
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
}

type geminiCandidate struct {
	Content      *geminiContent `json:"content"`
	FinishReason string         `json:"finishReason,omitempty"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}
