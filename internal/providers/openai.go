package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// OpenAICaller implements Caller for OpenAI's chat completions API.
type OpenAICaller struct {
	cfg    Config
	client *http.Client
}

// NewOpenAI creates a new OpenAI caller.
func NewOpenAI(cfg Config, client *http.Client) *OpenAICaller {
	return &OpenAICaller{cfg: cfg, client: client}
}

func (o *OpenAICaller) Config() Config { return o.cfg }

func (o *OpenAICaller) Call(ctx context.Context, prompt, apiKey string, opts CallOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = o.cfg.MaxTokens
	}

	var messages []openaiMessage
	if opts.SystemPrompt != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, openaiMessage{Role: "user", Content: prompt})

	body := openaiRequest{
		Model:       o.cfg.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   maxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()

	x, err := post(ctx, o.client, o.cfg, o.cfg.Endpoint(apiKey), o.cfg.Headers(apiKey), payload)
	if err != nil {
		return "", err
	}

	var result openaiResponse
	if err := json.Unmarshal(x.body, &result); err != nil {
		return "", x.malformed(o.cfg, "response body is not JSON")
	}
	if len(result.Choices) == 0 {
		return "", x.malformed(o.cfg, "no choices found")
	}
	content := result.Choices[0].Message.Content
	if content == "" {
		return "", x.malformed(o.cfg, "empty message content")
	}
	return content, nil
}

// Ping sends a one-token request.
func (o *OpenAICaller) Ping(ctx context.Context, apiKey string) error {
	payload, err := json.Marshal(openaiRequest{
		Model:       o.cfg.Model,
		Messages:    []openaiMessage{{Role: "user", Content: "Hi"}},
		Temperature: Float(0),
		MaxTokens:   1,
	})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := withTimeout(ctx, PingTimeout)
	defer cancel()

	_, err = post(ctx, o.client, o.cfg, o.cfg.Endpoint(apiKey), o.cfg.Headers(apiKey), payload)
	return err
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}
