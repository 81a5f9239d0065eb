package modelsdev

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/everstacklabs/modelfuse/internal/httpclient"
)

// DefaultURL is the models.dev dataset endpoint. The whole dataset ships as
// one JSON document; there is no per-provider endpoint.
const DefaultURL = "https://models.dev/api.json"

// Client fetches capability data from models.dev.
type Client struct {
	url  string
	http *httpclient.Client
}

// New creates a models.dev client.
func New(url string, http *httpclient.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{url: url, http: http}
}

// Fetch downloads the full capability snapshot.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	resp, err := c.http.Get(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("models.dev fetch: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(resp.Body, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing models.dev response: %w", err)
	}

	total := 0
	for _, p := range snapshot {
		total += len(p.Models)
	}
	slog.Info("capability fetch complete", "providers", len(snapshot), "models", total, "from_cache", resp.FromCache)
	return snapshot, nil
}
