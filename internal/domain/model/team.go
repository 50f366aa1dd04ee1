package model

import "time"

// Team is a registered contestant unit. Score is non-negative and only ever
// grows; CurrentQID is nil once the team has worked through every question
// (the terminal state).
type Team struct {
	ID         string    `json:"id"`
	TeamName   string    `json:"team_name"`
	Score      int       `json:"score"`
	CurrentQID *string   `json:"current_qid,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
