package modelsdev

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/everstacklabs/modelfuse/internal/httpclient"
)

const snapshotResponse = `{
	"anthropic": {
		"id": "anthropic",
		"name": "Anthropic",
		"env": ["ANTHROPIC_API_KEY"],
		"models": {
			"claude-3-5-sonnet-20241022": {
				"id": "claude-3-5-sonnet-20241022",
				"name": "Claude 3.5 Sonnet",
				"attachment": true,
				"reasoning": false,
				"knowledge": "2024-04",
				"limit": {"context": 200000, "output": 8192},
				"modalities": {"input": ["text", "image"], "output": ["text"]}
			}
		}
	},
	"openai": {
		"id": "openai",
		"name": "OpenAI",
		"models": {
			"gpt-4o": {"id": "gpt-4o", "name": "GPT-4o"}
		}
	}
}`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(snapshotResponse))
	}))
	defer srv.Close()

	c := New(srv.URL, httpclient.New())
	snapshot, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(snapshot) != 2 {
		t.Fatalf("got %d providers, want 2", len(snapshot))
	}

	provider, ok := snapshot["anthropic"]
	if !ok {
		t.Fatal("anthropic provider missing")
	}
	if provider.Name != "Anthropic" || len(provider.Env) != 1 {
		t.Errorf("provider = %+v", provider)
	}

	model, ok := provider.Models["claude-3-5-sonnet-20241022"]
	if !ok {
		t.Fatal("model missing")
	}
	if model.Attachment == nil || !*model.Attachment {
		t.Errorf("Attachment = %v, want true", model.Attachment)
	}
	if model.Reasoning == nil || *model.Reasoning {
		t.Errorf("Reasoning = %v, want false", model.Reasoning)
	}
	// Absent booleans stay nil, distinct from false.
	if model.ToolCall != nil {
		t.Errorf("ToolCall = %v, want nil", model.ToolCall)
	}
	if model.Limit == nil || model.Limit.Context == nil || *model.Limit.Context != 200000 {
		t.Errorf("Limit = %+v", model.Limit)
	}
	if model.Limit.Input != nil {
		t.Errorf("Limit.Input = %v, want nil", model.Limit.Input)
	}

	// Sparse model parses clean.
	sparse := snapshot["openai"].Models["gpt-4o"]
	if sparse.Limit != nil || sparse.Modalities != nil {
		t.Errorf("sparse model = %+v", sparse)
	}
}

func TestFetchBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := New(srv.URL, httpclient.New())
	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatal("expected parse error for non-object payload")
	}
}
