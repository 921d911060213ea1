package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/freeeve/autochess-gym/internal/repository"
)

const (
	episodesKey = "autochess:episodes"

	// Keep the list bounded so a long training run cannot grow it forever.
	episodesKeep = 100000
)

// PushEpisode appends a finished-episode summary to the episodes list.
func (c *Client) PushEpisode(ctx context.Context, summary repository.EpisodeSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode episode summary: %w", err)
	}
	if err := c.rdb.LPush(ctx, episodesKey, data).Err(); err != nil {
		return fmt.Errorf("push episode: %w", err)
	}
	return c.rdb.LTrim(ctx, episodesKey, 0, episodesKeep-1).Err()
}

// EpisodeCount returns how many episode summaries are stored.
func (c *Client) EpisodeCount(ctx context.Context) (int64, error) {
	return c.rdb.LLen(ctx, episodesKey).Result()
}

// RecentEpisodes returns up to n of the most recent episode summaries.
func (c *Client) RecentEpisodes(ctx context.Context, n int64) ([]repository.EpisodeSummary, error) {
	raw, err := c.rdb.LRange(ctx, episodesKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("range episodes: %w", err)
	}
	out := make([]repository.EpisodeSummary, 0, len(raw))
	for _, item := range raw {
		var s repository.EpisodeSummary
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			return nil, fmt.Errorf("decode episode summary: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}
