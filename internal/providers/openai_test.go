package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAICaller {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Defaults()[0]
	cfg.BaseURL = server.URL
	return NewOpenAI(cfg, server.Client())
}

func TestOpenAI_Call(t *testing.T) {
	var got openaiRequest
	o := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("Missing or wrong Authorization header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: `{"overall_score":80,"issues":[]}`}},
			},
		})
	})

	content, err := o.Call(context.Background(), "review this", "test-key", CallOptions{
		SystemPrompt: "json only",
		Temperature:  Float(0.3),
	})
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if content != `{"overall_score":80,"issues":[]}` {
		t.Errorf("Content = %q", content)
	}

	if got.Model != "gpt-3.5-turbo" {
		t.Errorf("Model = %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("Messages = %+v, want system then user", got.Messages)
	}
	if got.Messages[1].Content != "review this" {
		t.Errorf("user content = %q", got.Messages[1].Content)
	}
	if got.Temperature == nil || *got.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", got.Temperature)
	}
	if got.MaxTokens != 1500 {
		t.Errorf("MaxTokens = %d, want 1500", got.MaxTokens)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	o := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := o.Call(context.Background(), "p", "k", CallOptions{})
	kind, ok := KindOf(err)
	if !ok || kind != KindMalformedProviderResponse {
		t.Fatalf("KindOf(err) = %q, %v; want %q", kind, ok, KindMalformedProviderResponse)
	}
	pe, _ := AsError(err)
	if !pe.Dispatched() {
		t.Error("malformed response should count as dispatched")
	}
}

func TestOpenAI_EmptyContent(t *testing.T) {
	o := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":""}}]}`))
	})

	_, err := o.Call(context.Background(), "p", "k", CallOptions{})
	if kind, _ := KindOf(err); kind != KindMalformedProviderResponse {
		t.Errorf("kind = %q, want %q", kind, KindMalformedProviderResponse)
	}
}

func TestOpenAI_QuotaOn401(t *testing.T) {
	o := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota"}}`))
	})

	_, err := o.Call(context.Background(), "p", "k", CallOptions{})
	if kind, _ := KindOf(err); kind != KindQuotaExhausted {
		t.Errorf("kind = %q, want %q", kind, KindQuotaExhausted)
	}
	if !IsAuthError(err) {
		t.Error("quota exhaustion should be an auth error")
	}
}

func TestOpenAI_Ping(t *testing.T) {
	var got openaiRequest
	o := testOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"H"}}]}`))
	})

	if err := o.Ping(context.Background(), "k"); err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	if got.MaxTokens != 1 {
		t.Errorf("MaxTokens = %d, want 1", got.MaxTokens)
	}
	if len(got.Messages) != 1 {
		t.Errorf("Ping should send a single user message, got %d", len(got.Messages))
	}
	if got.Temperature == nil || *got.Temperature != 0 {
		t.Errorf("Temperature = %v, want explicit 0", got.Temperature)
	}
}
