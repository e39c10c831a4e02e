package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/JaimeStill/halalcheck/internal/gemini"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, handler http.HandlerFunc) *gemini.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &gemini.Config{APIKey: "test-key", Model: "gemini-test", BaseURL: srv.URL, Timeout: "5s"}
	c, err := gemini.New(context.Background(), cfg, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

func TestGenerateReturnsFirstPart(t *testing.T) {
	var prompt atomic.Value

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			prompt.Store(req.Contents[0].Parts[0].Text)
		}

		respond(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Sugar: N/A: sweetener: Halal"},{"text":"ignored"}]}},{"content":{"parts":[{"text":"second"}]}}]}`)(w, r)
	})

	got, err := c.Generate(context.Background(), "list ingredients")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Sugar: N/A: sweetener: Halal" {
		t.Errorf("text = %q", got)
	}
	if p, _ := prompt.Load().(string); p != "list ingredients" {
		t.Errorf("prompt sent = %q", p)
	}
	if c.Model() != "gemini-test" {
		t.Errorf("Model() = %q", c.Model())
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	c := newClient(t, respond(`{"candidates":[]}`))

	_, err := c.Generate(context.Background(), "anything")
	if !errors.Is(err, gemini.ErrNoCandidates) {
		t.Fatalf("err = %v, want ErrNoCandidates", err)
	}
}

func TestGenerateCandidateWithoutText(t *testing.T) {
	c := newClient(t, respond(`{"candidates":[{"content":{"role":"model","parts":[]}}]}`))

	got, err := c.Generate(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "" {
		t.Errorf("text = %q, want empty", got)
	}
}

func TestGenerateTransportError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`)
	})

	_, err := c.Generate(context.Background(), "anything")
	if !errors.Is(err, gemini.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "from-env")

	cfg := gemini.Config{}
	if err := cfg.Finalize(&gemini.Env{APIKey: "TEST_GEMINI_KEY"}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.APIKey != "from-env" || cfg.Model != "gemini-2.0-flash" || cfg.TimeoutDuration().Seconds() != 60 {
		t.Errorf("unexpected config %+v", cfg)
	}

	missing := gemini.Config{}
	if err := missing.Finalize(nil); err == nil {
		t.Error("expected api_key required error")
	}
}
