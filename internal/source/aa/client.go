package aa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/everstacklabs/modelfuse/internal/cache"
	"github.com/everstacklabs/modelfuse/internal/httpclient"
)

// DefaultBaseURL is the Artificial Analysis API root.
const DefaultBaseURL = "https://artificialanalysis.ai/api/v2"

// Client fetches benchmark data from the Artificial Analysis API.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
	cache   *cache.FileCache
}

// New creates an Artificial Analysis client. The cache may be nil; quota
// tracking is then skipped.
func New(apiKey, baseURL string, http *httpclient.Client, fc *cache.FileCache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, http: http, cache: fc}
}

// Models fetches the benchmarked LLM list.
func (c *Client) Models(ctx context.Context) ([]Model, error) {
	url := c.baseURL + "/data/llms/models"

	headers := map[string]string{
		"x-api-key": c.apiKey,
	}

	resp, err := c.http.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("artificialanalysis models: %w", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing models response: %w", err)
	}

	c.recordQuota(resp)

	slog.Info("benchmark fetch complete", "models", len(envelope.Data), "from_cache", resp.FromCache)
	return envelope.Data, nil
}

// recordQuota persists rate-limit headers so `cache stats` can warn before
// the free tier runs out. Header is nil on cache hits.
func (c *Client) recordQuota(resp *httpclient.Response) {
	if c.cache == nil || resp.Header == nil {
		return
	}
	limit, err1 := strconv.Atoi(resp.Header.Get("x-ratelimit-limit"))
	remaining, err2 := strconv.Atoi(resp.Header.Get("x-ratelimit-remaining"))
	if err1 != nil || err2 != nil {
		return
	}
	q := &cache.Quota{
		Limit:     limit,
		Remaining: remaining,
		Reset:     resp.Header.Get("x-ratelimit-reset"),
	}
	if err := c.cache.SetQuota(q); err != nil {
		slog.Warn("failed to persist quota", "error", err)
	}
	if q.Low() {
		slog.Warn("API quota low", "remaining", q.Remaining, "limit", q.Limit)
	}
}
