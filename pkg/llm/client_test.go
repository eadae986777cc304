package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gitpraise/gitpraise/pkg/config"
)

func newTestClient(baseURL string) *Client {
	return New(config.LLMConfig{
		BaseURL:   baseURL + "/v1/",
		APIKey:    "sk-test",
		Model:     "test-model",
		MaxTokens: 1280,
	})
}

func chunkLine(fragment string) string {
	content, _ := json.Marshal(fragment)
	return fmt.Sprintf(`data: {"id":"chatcmpl-1","object":"chat.completion.chunk","created":1700000000,"model":"test-model","choices":[{"index":0,"delta":{"content":%s},"finish_reason":null}]}`, content)
}

func sseUpstream(fragments ...string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, f := range fragments {
			fmt.Fprintf(w, "%s\n\n", chunkLine(f))
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestStreamAccumulatesFragments(t *testing.T) {
	upstream := sseUpstream("Olá ", "Gabriel", "!")
	defer upstream.Close()

	c := newTestClient(upstream.URL)

	var emitted []string
	full, err := c.Stream(context.Background(), "system", "user", func(fragment string) error {
		emitted = append(emitted, fragment)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if full != "Olá Gabriel!" {
		t.Errorf("unexpected accumulated text: %q", full)
	}
	if joined := strings.Join(emitted, ""); joined != full {
		t.Errorf("emitted fragments %q do not concatenate to accumulated text %q", joined, full)
	}
	if len(emitted) != 3 {
		t.Errorf("expected 3 fragments, got %d", len(emitted))
	}
}

func TestStreamCapacityError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"overloaded","type":"rate_limit_error"}}`)
	}))
	defer upstream.Close()

	c := newTestClient(upstream.URL)

	_, err := c.Stream(context.Background(), "system", "user", func(string) error { return nil })
	if !errors.Is(err, ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}
}

func TestStreamGenerationError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer upstream.Close()

	c := newTestClient(upstream.URL)

	_, err := c.Stream(context.Background(), "system", "user", func(string) error { return nil })
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
	if errors.Is(err, ErrCapacity) {
		t.Error("a 500 must not be classified as a capacity error")
	}
}

func TestStreamMidStreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Announce more bytes than are sent, then drop the connection, so
		// the client observes an unexpected EOF after the first fragment.
		conn, bufrw, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()
		fmt.Fprintf(bufrw, "HTTP/1.1 200 OK\r\nContent-Type: text/event-stream\r\nContent-Length: 4096\r\n\r\n")
		fmt.Fprintf(bufrw, "%s\n\n", chunkLine("Hello"))
		bufrw.Flush()
	}))
	defer upstream.Close()

	c := newTestClient(upstream.URL)

	var emitted []string
	full, err := c.Stream(context.Background(), "system", "user", func(fragment string) error {
		emitted = append(emitted, fragment)
		return nil
	})
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if full != "" {
		t.Errorf("no accumulated text may be returned on failure, got %q", full)
	}
	if len(emitted) != 1 || emitted[0] != "Hello" {
		t.Errorf("expected the delivered fragment to remain delivered, got %v", emitted)
	}
}

func TestStreamEmitErrorPropagates(t *testing.T) {
	upstream := sseUpstream("Olá")
	defer upstream.Close()

	c := newTestClient(upstream.URL)

	sinkErr := errors.New("client gone")
	_, err := c.Stream(context.Background(), "system", "user", func(string) error { return sinkErr })
	if !errors.Is(err, sinkErr) {
		t.Errorf("expected emit error to propagate, got %v", err)
	}
}
