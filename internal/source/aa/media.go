package aa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Media leaderboard endpoint paths.
const (
	MediaTextToImage  = "/data/media/text-to-image"
	MediaImageEditing = "/data/media/image-editing"
	MediaTextToSpeech = "/data/media/text-to-speech"
	MediaTextToVideo  = "/data/media/text-to-video"
	MediaImageToVideo = "/data/media/image-to-video"
)

// MediaEndpoint pairs a leaderboard's table name with its API path.
type MediaEndpoint struct {
	Table string
	Path  string
}

// MediaEndpoints lists the media leaderboards in refresh order.
var MediaEndpoints = []MediaEndpoint{
	{Table: "text_to_image", Path: MediaTextToImage},
	{Table: "image_editing", Path: MediaImageEditing},
	{Table: "text_to_speech", Path: MediaTextToSpeech},
	{Table: "text_to_video", Path: MediaTextToVideo},
	{Table: "image_to_video", Path: MediaImageToVideo},
}

// MediaModel is one entry on a media leaderboard (image, video, or speech
// generation). These models are ranked by ELO, not benchmark scores, and
// never join against the capability snapshot.
type MediaModel struct {
	ID                int64                    `json:"id"`
	Name              string                   `json:"name"`
	Slug              string                   `json:"slug"`
	Creator           Creator                  `json:"creator"`
	ELO               *float64                 `json:"elo,omitempty"`
	Rank              *int32                   `json:"rank,omitempty"`
	ReleaseDate       string                   `json:"release_date,omitempty"`
	CategoryBreakdown map[string]CategoryScore `json:"categoryBreakdown,omitempty"`
}

// CategoryScore is a per-category ELO and rank, e.g. "photorealistic" for
// text-to-image models.
type CategoryScore struct {
	ELO  *float64 `json:"elo,omitempty"`
	Rank *int32   `json:"rank,omitempty"`
}

type mediaEnvelope struct {
	Status string       `json:"status"`
	Data   []MediaModel `json:"data"`
}

// Media fetches one media leaderboard by endpoint path.
func (c *Client) Media(ctx context.Context, path string) ([]MediaModel, error) {
	headers := map[string]string{
		"x-api-key": c.apiKey,
	}

	resp, err := c.http.Get(ctx, c.baseURL+path, headers)
	if err != nil {
		return nil, fmt.Errorf("artificialanalysis media %s: %w", path, err)
	}

	var envelope mediaEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing media response: %w", err)
	}

	c.recordQuota(resp)

	slog.Info("media fetch complete", "endpoint", path, "models", len(envelope.Data), "from_cache", resp.FromCache)
	return envelope.Data, nil
}
