package model

import "time"

// Submission is an append-only audit record of one attempt. Rows are never
// updated or deleted; incorrect attempts are recorded alongside correct ones.
type Submission struct {
	ID         string    `json:"id"`
	TeamID     string    `json:"team_id"`
	QuestionID string    `json:"question_id"`
	Language   Language  `json:"language"`
	Code       string    `json:"code"`
	IsCorrect  bool      `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}
