package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lexdraftlabs/lexdraft/internal/config"
	letterdomain "github.com/lexdraftlabs/lexdraft/internal/letter/domain"
	"go.uber.org/zap"
)

func testConfig() config.Config {
	return config.Config{
		GeminiAPIKey:  "test-key",
		GeminiModel:   "gemini-2.0-flash-exp",
		GeminiTimeout: 5 * time.Second,
	}
}

func TestGenerateReturnsCandidateText(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": `{"title":"A","content":"B"}`}}}},
			},
		})
	}))
	defer srv.Close()

	client := New(testConfig(), zap.NewNop(), WithBaseURL(srv.URL))
	text, err := client.Generate(context.Background(), "draft a letter")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != `{"title":"A","content":"B"}` {
		t.Fatalf("unexpected text: %q", text)
	}

	if !strings.Contains(gotPath, "gemini-2.0-flash-exp:generateContent") {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotBody.GenerationConfig.Temperature != 0 {
		t.Fatalf("expected temperature 0, got %f", gotBody.GenerationConfig.Temperature)
	}
	if gotBody.GenerationConfig.MaxOutputTokens != 1200 {
		t.Fatalf("expected maxOutputTokens 1200, got %d", gotBody.GenerationConfig.MaxOutputTokens)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 || gotBody.Contents[0].Parts[0].Text != "draft a letter" {
		t.Fatalf("unexpected request contents: %+v", gotBody.Contents)
	}
}

func TestGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(testConfig(), zap.NewNop(), WithBaseURL(srv.URL))
	if _, err := client.Generate(context.Background(), "prompt"); !errors.Is(err, letterdomain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := New(testConfig(), zap.NewNop(), WithBaseURL(srv.URL))
	if _, err := client.Generate(context.Background(), "prompt"); !errors.Is(err, letterdomain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig()
	cfg.GeminiTimeout = 50 * time.Millisecond
	client := New(cfg, zap.NewNop(), WithBaseURL(srv.URL))

	if _, err := client.Generate(context.Background(), "prompt"); !errors.Is(err, letterdomain.ErrGenerationTimeout) {
		t.Fatalf("expected ErrGenerationTimeout, got %v", err)
	}
}
