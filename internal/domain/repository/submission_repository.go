package repository

import (
	"context"
	"database/sql"
	"debug_contest/internal/domain/model"
	"fmt"
)

type SubmissionRepository interface {
	// CreateSubmission appends one attempt to the audit trail. Submissions
	// are never updated or deleted.
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]model.Submission, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, team_id, question_id, language, code, is_correct)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, sub.ID, sub.TeamID, sub.QuestionID, sub.Language, sub.Code, sub.IsCorrect)
	} else {
		_, err = r.db.ExecContext(ctx, query, sub.ID, sub.TeamID, sub.QuestionID, sub.Language, sub.Code, sub.IsCorrect)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]model.Submission, error) {
	query := `SELECT id, team_id, question_id, language, code, is_correct, created_at
	          FROM submissions WHERE team_id = $1
	          ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, teamID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByTeam query: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.TeamID, &s.QuestionID, &s.Language, &s.Code, &s.IsCorrect, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByTeam scan: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByTeam rows.Err: %w", err)
	}
	return submissions, nil
}
