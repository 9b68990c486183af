package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tinygen/model"
	"tinygen/provider/testutil"
)

func collect(t *testing.T, p model.Provider, messages []model.Message) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var sb strings.Builder
	err := p.Chat(ctx, messages, func(chunk string) error {
		sb.WriteString(chunk)
		return nil
	})
	return sb.String(), err
}

func TestOpenAIProviderStreams(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Hello", ", ", "world"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"gpt-4o-mini\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(Config{BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := collect(t, p, testutil.TestMessages())
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != "Hello, world" {
		t.Errorf("Chat() streamed %q, want %q", got, "Hello, world")
	}

	if body["temperature"] != 0.0 {
		t.Errorf("temperature = %v, want 0", body["temperature"])
	}
	if body["max_completion_tokens"] != float64(DefaultMaxTokens) {
		t.Errorf("max_completion_tokens = %v, want %d", body["max_completion_tokens"], DefaultMaxTokens)
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 4 {
		t.Errorf("request carried %d messages, want 4", len(msgs))
	}
}

func TestOpenAIProviderDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(Config{BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := collect(t, p, testutil.SingleUserMessage("hi")); err == nil {
		t.Fatal("expected error from failing backend")
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("backend hit %d times, want exactly 1", n)
	}
}

func TestAnthropicProviderStreams(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"```bash\n", "diff", "\n```"} {
			data, _ := json.Marshal(map[string]any{
				"type":  "content_block_delta",
				"index": 0,
				"delta": map[string]any{"type": "text_delta", "text": part},
			})
			fmt.Fprintf(w, "event: content_block_delta\ndata: %s\n\n", data)
		}
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider(Config{BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := collect(t, p, testutil.TestMessages())
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != "```bash\ndiff\n```" {
		t.Errorf("Chat() streamed %q", got)
	}

	system, _ := body["system"].([]any)
	if len(system) != 1 {
		t.Errorf("system blocks = %d, want 1", len(system))
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 3 {
		t.Errorf("messages = %d, want 3", len(msgs))
	}
	if body["max_tokens"] != float64(DefaultMaxTokens) {
		t.Errorf("max_tokens = %v, want %d", body["max_tokens"], DefaultMaxTokens)
	}
}

func TestAnthropicPingListsModels(t *testing.T) {
	requests := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r.Method + " " + r.URL.Path + "?limit=" + r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[],"has_more":false,"first_id":null,"last_id":null}`)
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider(Config{BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testProviderHealthCheck(t, p)
	if got := <-requests; got != "GET /v1/models?limit=1" {
		t.Errorf("Ping() sent %q, want GET /v1/models?limit=1", got)
	}
}

func TestOllamaProviderStreams(t *testing.T) {
	var req struct {
		Model    string           `json:"model"`
		Messages []map[string]any `json:"messages"`
		Options  map[string]any   `json:"options"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, part := range []string{"one ", "two"} {
			fmt.Fprintf(w, "{\"model\":\"llama3.1\",\"message\":{\"role\":\"assistant\",\"content\":%q},\"done\":false}\n", part)
		}
		fmt.Fprint(w, "{\"model\":\"llama3.1\",\"message\":{\"role\":\"assistant\",\"content\":\"\"},\"done\":true}\n")
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(Config{BaseURL: srv.URL, Model: "llama3.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := collect(t, p, testutil.TestMessages())
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != "one two" {
		t.Errorf("Chat() streamed %q, want %q", got, "one two")
	}
	if len(req.Messages) != 4 || req.Messages[0]["role"] != "system" {
		t.Errorf("unexpected request messages: %v", req.Messages)
	}
	if req.Options["num_predict"] != float64(DefaultMaxTokens) {
		t.Errorf("num_predict = %v", req.Options["num_predict"])
	}
}

func TestCallbackErrorAbortsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < 3; i++ {
			fmt.Fprint(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"x\"}}]}\n\n")
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(Config{BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stop := fmt.Errorf("stop")
	calls := 0
	err = p.Chat(context.Background(), testutil.SingleUserMessage("hi"), func(chunk string) error {
		calls++
		return stop
	})
	if err == nil || !strings.Contains(err.Error(), "stop") {
		t.Errorf("Chat() error = %v, want callback error", err)
	}
	if calls != 1 {
		t.Errorf("callback invoked %d times, want 1", calls)
	}
}
