package repository

import "context"

// RosterRow is one stored opponent snapshot: the board a scripted player
// fielded at a given stage in a recorded game. The bot developer replays
// these rows to make scripted seats progress realistically.
type RosterRow struct {
	Stage int                `json:"stage"`
	Seat  int                `json:"seat"`
	Level int                `json:"level"`
	Board []RosterBoardEntry `json:"board"`
}

// RosterBoardEntry is one unit on a stored roster board.
type RosterBoardEntry struct {
	Species int `json:"species"`
	Stars   int `json:"stars"`
	Cell    int `json:"cell"`
}

// RosterStore provides opponent rosters keyed by stage.
type RosterStore interface {
	ListByStage(ctx context.Context, stage int) ([]RosterRow, error)
}

// EpisodeSummary is the terminal record of one training episode.
type EpisodeSummary struct {
	EpisodeID    string             `json:"episodeId"`
	Steps        int                `json:"steps"`
	FinalRank    int                `json:"finalRank"`
	FinalStage   int                `json:"finalStage"`
	TotalReward  float64            `json:"totalReward"`
	RewardTotals map[string]float64 `json:"rewardTotals"`
}

// EpisodeStore records finished-episode summaries for offline analysis.
type EpisodeStore interface {
	PushEpisode(ctx context.Context, summary EpisodeSummary) error
}
