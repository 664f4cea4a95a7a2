package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"TrendsAgent/internal/config"
	"TrendsAgent/internal/domain"
)

func TestOpenAIClientComplete(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotHeaders = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cmpl-1","object":"chat.completion","created":1,"model":"test-model",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Admit Card"}}]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(config.LLMConfig{
		BaseURL: server.URL,
		APIKey:  "key",
		Model:   "test-model",
		AppName: "Trends Agent",
		AppURL:  "https://example.org",
	})

	out, err := client.Complete(context.Background(), domain.CompletionRequest{
		System:      "classify",
		Prompt:      "SBI PO admit card",
		MaxTokens:   50,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if out != "Admit Card" {
		t.Fatalf("unexpected completion %q", out)
	}
	if gotHeaders.Get("Authorization") != "Bearer key" {
		t.Fatalf("missing bearer token, headers=%v", gotHeaders)
	}
	if gotHeaders.Get("X-Title") != "Trends Agent" || gotHeaders.Get("HTTP-Referer") != "https://example.org" {
		t.Fatalf("missing attribution headers, headers=%v", gotHeaders)
	}
	if gotBody["model"] != "test-model" || gotBody["max_tokens"] != float64(50) {
		t.Fatalf("unexpected request body %v", gotBody)
	}
	if msgs, ok := gotBody["messages"].([]any); !ok || len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", gotBody["messages"])
	}
}

func TestOpenAIClientErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		want   error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, want: domain.ErrRateLimited},
		{name: "server error", status: http.StatusInternalServerError, want: domain.ErrService},
		{name: "unauthorized", status: http.StatusUnauthorized, want: domain.ErrService},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope","type":"error"}}`)
			}))
			defer server.Close()

			client := NewOpenAIClient(config.LLMConfig{BaseURL: server.URL, APIKey: "key", Model: "m"})
			_, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "hi"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if calls.Load() != 1 {
				t.Fatalf("SDK retried the call: %d requests", calls.Load())
			}
		})
	}
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(config.LLMConfig{BaseURL: server.URL, APIKey: "key", Model: "m"})
	if _, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "hi"}); !errors.Is(err, domain.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
}

func TestAnthropicClientComplete(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude",
			"content":[{"type":"text","text":"Job "},{"type":"text","text":"Notification"}],
			"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":2}}`)
	}))
	defer server.Close()

	client := NewAnthropicClient(config.LLMConfig{BaseURL: server.URL, APIKey: "key", Model: "claude"})
	out, err := client.Complete(context.Background(), domain.CompletionRequest{System: "sys", Prompt: "SSC CGL notification"})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if out != "Job Notification" {
		t.Fatalf("unexpected completion %q", out)
	}
	if gotBody["max_tokens"] != float64(defaultAnthropicMaxTokens) {
		t.Fatalf("expected default max_tokens, got %v", gotBody["max_tokens"])
	}
}

func TestAnthropicClientRateLimited(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer server.Close()

	client := NewAnthropicClient(config.LLMConfig{BaseURL: server.URL, APIKey: "key", Model: "claude"})
	if _, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "x"}); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	t.Parallel()

	svc, err := New(config.LLMConfig{})
	if err != nil || svc != nil {
		t.Fatalf("expected nil service without key, got %v, %v", svc, err)
	}

	svc, err = New(config.LLMConfig{APIKey: "k", Model: "m", Provider: config.ProviderOpenAI})
	if _, ok := svc.(*OpenAIClient); !ok || err != nil {
		t.Fatalf("expected OpenAI client, got %T, %v", svc, err)
	}

	svc, err = New(config.LLMConfig{APIKey: "k", Model: "m", Provider: config.ProviderAnthropic})
	if _, ok := svc.(*AnthropicClient); !ok || err != nil {
		t.Fatalf("expected Anthropic client, got %T, %v", svc, err)
	}

	if _, err := New(config.LLMConfig{APIKey: "k", Model: "m", Provider: "gemini"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestClassifyMessage(t *testing.T) {
	t.Parallel()

	if err := classifyMessage("op", errors.New("Rate limit exceeded")); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if err := classifyMessage("op", errors.New("connection refused")); !errors.Is(err, domain.ErrService) {
		t.Fatalf("expected service error, got %v", err)
	}
	if err := classifyMessage("op", context.DeadlineExceeded); !errors.Is(err, domain.ErrService) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline, got %v", err)
	}
}
