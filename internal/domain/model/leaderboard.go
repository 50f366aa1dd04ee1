package model

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Score    int    `json:"score"`
}

// TeamScoreUpdate is the change-feed event published after a team's score
// commits. The new row image is enough for the projector to patch its view.
type TeamScoreUpdate struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Score    int    `json:"score"`
}
